package benchmark

import (
	"fmt"
)

// kinds of monotonicity violation
const (
	// a higher percentile has a lower score within one grade
	ViolationPercentile = "percentile"
	// a higher grade has a lower score at the same percentile
	ViolationGrade = "grade"
)

//
// Violation describes one break in benchmark ordering.
// Grade and Percentile identify the offending sample, PrevScore is the
// score of the neighbour it should not have fallen below.
//
type Violation struct {
	Kind       string `json:"kind"`
	Subject    string `json:"subject"`
	Grade      Grade  `json:"grade"`
	Percentile int    `json:"percentile"`
	Score      int    `json:"score"`
	PrevScore  int    `json:"prevScore"`
}

func (v Violation) String() string {
	switch v.Kind {
	case ViolationGrade:
		return fmt.Sprintf("%s: grade %s p%d score %d is below the previous grade's %d",
			v.Subject, v.Grade, v.Percentile, v.Score, v.PrevScore)
	default:
		return fmt.Sprintf("%s: grade %s p%d score %d is below the lower percentile's %d",
			v.Subject, v.Grade, v.Percentile, v.Score, v.PrevScore)
	}
}

//
// checkMonotonic walks every subject in load order and reports samples
// that break either ordering. Absent samples are ignored, they carry no
// score to compare. Across grades each sample is compared with the last
// present score at its percentile, skipping grades that lack one.
//
func checkMonotonic(t *Table) []Violation {
	var vv []Violation
	for _, subject := range t.subjects {
		lastByPct := make(map[int]int)
		for _, g := range t.Grades(subject) {
			ss := t.samples[cellKey{subject: subject, grade: g}]
			prev, havePrev := 0, false
			for _, s := range ss {
				if s.Absent {
					continue
				}
				if havePrev && s.Score < prev {
					vv = append(vv, Violation{
						Kind:       ViolationPercentile,
						Subject:    subject,
						Grade:      g,
						Percentile: s.Percentile,
						Score:      s.Score,
						PrevScore:  prev,
					})
				}
				if p, ok := lastByPct[s.Percentile]; ok && s.Score < p {
					vv = append(vv, Violation{
						Kind:       ViolationGrade,
						Subject:    subject,
						Grade:      g,
						Percentile: s.Percentile,
						Score:      s.Score,
						PrevScore:  p,
					})
				}
				prev, havePrev = s.Score, true
				lastByPct[s.Percentile] = s.Score
			}
		}
	}
	return vv
}
