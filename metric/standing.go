package metric

import (
	"github.com/nsip/otf-benchmark/benchmark"
)

//
// Standing classifies a performing grade against the student's
// current grade.
//
type Standing string

const (
	AboveGradeLevel Standing = "above_grade_level"
	OnGradeLevel    Standing = "on_grade_level"
	BelowGradeLevel Standing = "below_grade_level"
)

// Classify compares the performing grade with the current grade.
func Classify(performing, current benchmark.Grade) Standing {
	switch {
	case performing > current:
		return AboveGradeLevel
	case performing < current:
		return BelowGradeLevel
	}
	return OnGradeLevel
}

//
// Findings groups subjects by standing. Subjects whose performing
// grade could not be calculated are listed under Unavailable.
//
type Findings struct {
	Above       []string `json:"above_grade_level"`
	On          []string `json:"on_grade_level"`
	Below       []string `json:"below_grade_level"`
	Unavailable []string `json:"unavailable,omitempty"`
}

//
// KeyFindings sorts each assessed subject into its standing group,
// keeping input order within a group.
//
func KeyFindings(results []CombinedResult) Findings {
	f := Findings{Above: []string{}, On: []string{}, Below: []string{}}
	for _, cr := range results {
		if cr.PerformingGrade == nil {
			f.Unavailable = append(f.Unavailable, cr.Subject)
			continue
		}
		switch cr.PerformingGrade.Standing {
		case AboveGradeLevel:
			f.Above = append(f.Above, cr.Subject)
		case BelowGradeLevel:
			f.Below = append(f.Below, cr.Subject)
		default:
			f.On = append(f.On, cr.Subject)
		}
	}
	return f
}
