package metric

import (
	"github.com/nsip/otf-benchmark/benchmark"
	"github.com/pkg/errors"
)

var (
	// ErrNoBenchmarkData means the table has nothing for the requested
	// subject/grade or subject/percentile anchor. Callers should render
	// "data not available" for the subject and carry on.
	ErrNoBenchmarkData = errors.New("no benchmark data")
	// ErrThresholdUnavailable means the subject and grade exist but the
	// threshold percentile was never sampled for them.
	ErrThresholdUnavailable = errors.New("threshold percentile not sampled")
)

const (
	// benchmark percentile a score must clear for a grade to count as mastered
	PerformingGradePercentile = 85
	// percentile of the current grade used as the on-track bar
	ThresholdPercentile = 70
)

//
// Engine derives student metrics from an immutable benchmark table.
// An Engine holds no other state and is safe for concurrent use.
//
type Engine struct {
	table *benchmark.Table
}

//
// New returns an engine that answers queries against t.
//
func New(t *benchmark.Table) *Engine {
	return &Engine{table: t}
}

// Table returns the benchmark table the engine reads from.
func (e *Engine) Table() *benchmark.Table {
	return e.table
}

//
// Percentile finds the highest sampled percentile whose benchmark score
// the student meets or exceeds in their current grade. A score below every
// sampled benchmark yields percentile 0.
//
func (e *Engine) Percentile(subject string, score int, grade benchmark.Grade) (PercentileResult, error) {
	res := PercentileResult{Subject: subject, Grade: grade, Score: score}

	samples, ok := e.table.Samples(subject, grade)
	if !ok {
		return res, errors.Wrapf(ErrNoBenchmarkData, "subject %q, grade %s", subject, grade)
	}
	for _, s := range samples {
		if !s.Absent && s.Score <= score && s.Percentile > res.Percentile {
			res.Percentile = s.Percentile
		}
	}
	return res, nil
}

//
// PerformingGrade finds the highest grade whose 85th percentile benchmark
// the score clears. Grades are scanned upward from the lowest one sampled at
// the 85th percentile and the scan stops at the first grade that is not
// cleared, so the answer is the top of the contiguous run of cleared grades.
// That matches the true maximum only while benchmarks rise with grade,
// which the loader checks. If no grade is cleared the current grade is returned.
//
func (e *Engine) PerformingGrade(subject string, score int, grade benchmark.Grade) (PerformingGradeResult, error) {
	res := PerformingGradeResult{
		Subject:         subject,
		Score:           score,
		CurrentGrade:    grade,
		PerformingGrade: grade,
	}

	found := false
	for _, g := range e.table.Grades(subject) {
		s, ok := e.table.Sample(subject, g, PerformingGradePercentile)
		if !ok {
			continue
		}
		found = true
		if s.Absent || score < s.Score {
			break
		}
		res.PerformingGrade = g
		res.Qualified = true
	}
	if !found {
		return res, errors.Wrapf(ErrNoBenchmarkData, "subject %q has no %dth percentile benchmark", subject, PerformingGradePercentile)
	}

	res.Standing = Classify(res.PerformingGrade, grade)
	return res, nil
}

//
// NextGradeThreshold returns the 70th percentile benchmark of the current
// grade, the score a student needs to be on track for promotion.
//
func (e *Engine) NextGradeThreshold(subject string, grade benchmark.Grade) (ThresholdResult, error) {
	res := ThresholdResult{Subject: subject, Grade: grade, Percentile: ThresholdPercentile}

	if _, ok := e.table.Samples(subject, grade); !ok {
		return res, errors.Wrapf(ErrNoBenchmarkData, "subject %q, grade %s", subject, grade)
	}
	s, ok := e.table.Sample(subject, grade, ThresholdPercentile)
	if !ok || s.Absent {
		return res, errors.Wrapf(ErrThresholdUnavailable, "no %dth percentile benchmark for %q grade %s", ThresholdPercentile, subject, grade)
	}
	res.Threshold = s.Score
	return res, nil
}

//
// All runs the percentile, performing grade and threshold calculations for
// one subject. A failure in one calculation never stops the others; each
// outcome is reported on its own.
//
func (e *Engine) All(subject string, score int, grade benchmark.Grade) CombinedResult {
	cr := CombinedResult{Subject: subject, Score: score, CurrentGrade: grade}

	if p, err := e.Percentile(subject, score, grade); err != nil {
		cr.PercentileErr = err
	} else {
		cr.Percentile = &p
	}

	if pg, err := e.PerformingGrade(subject, score, grade); err != nil {
		cr.PerformingGradeErr = err
	} else {
		cr.PerformingGrade = &pg
	}

	if th, err := e.NextGradeThreshold(subject, grade); err != nil {
		cr.ThresholdErr = err
	} else {
		cr.Threshold = &th
	}

	return cr
}

//
// SubjectScore is one subject result for a student, with the subject
// already mapped to its official benchmark name.
//
type SubjectScore struct {
	Subject string `json:"subject" form:"subject" query:"subject" validate:"required"`
	Score   int    `json:"score" form:"score" query:"score" validate:"gte=0"`
}

//
// Assess runs All for every subject score of a student in the given grade,
// returning results in input order.
//
func (e *Engine) Assess(grade benchmark.Grade, scores []SubjectScore) []CombinedResult {
	out := make([]CombinedResult, 0, len(scores))
	for _, ss := range scores {
		out = append(out, e.All(ss.Subject, ss.Score, grade))
	}
	return out
}
