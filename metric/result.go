package metric

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/nsip/otf-benchmark/benchmark"
	"github.com/pkg/errors"
)

type PercentileResult struct {
	Subject    string          `json:"subject"`
	Grade      benchmark.Grade `json:"grade"`
	Score      int             `json:"score"`
	Percentile int             `json:"percentile"`
}

// String renders the percentile the way reports quote it, e.g. "75th percentile".
func (r PercentileResult) String() string {
	return strconv.Itoa(r.Percentile) + "th percentile"
}

type PerformingGradeResult struct {
	Subject         string          `json:"subject"`
	Score           int             `json:"score"`
	CurrentGrade    benchmark.Grade `json:"currentGrade"`
	PerformingGrade benchmark.Grade `json:"performingGrade"`
	// Qualified is false when no grade was cleared and
	// PerformingGrade fell back to the current grade.
	Qualified bool     `json:"qualified"`
	Standing  Standing `json:"standing"`
}

func (r PerformingGradeResult) String() string {
	return r.PerformingGrade.String()
}

type ThresholdResult struct {
	Subject    string          `json:"subject"`
	Grade      benchmark.Grade `json:"grade"`
	Percentile int             `json:"percentile"`
	Threshold  int             `json:"threshold"`
}

func (r ThresholdResult) String() string {
	return strconv.Itoa(r.Threshold)
}

//
// CombinedResult packages the three metrics for one subject.
// Exactly one of each value/error pair is set.
//
type CombinedResult struct {
	Subject      string
	Score        int
	CurrentGrade benchmark.Grade

	Percentile    *PercentileResult
	PercentileErr error

	PerformingGrade    *PerformingGradeResult
	PerformingGradeErr error

	Threshold    *ThresholdResult
	ThresholdErr error
}

// OK reports whether every metric was calculated.
func (cr CombinedResult) OK() bool {
	return cr.PercentileErr == nil && cr.PerformingGradeErr == nil && cr.ThresholdErr == nil
}

const notAvailable = "Data not available"

func renderError(err error) string {
	switch {
	case err == nil:
		return notAvailable
	case errors.Is(err, ErrThresholdUnavailable):
		return fmt.Sprintf("N/A (No %dth percentile benchmark for this grade)", ThresholdPercentile)
	}
	return notAvailable + " (" + err.Error() + ")"
}

func (cr CombinedResult) percentileText() string {
	if cr.Percentile != nil {
		return cr.Percentile.String()
	}
	return renderError(cr.PercentileErr)
}

func (cr CombinedResult) performingGradeText() string {
	if cr.PerformingGrade != nil {
		return cr.PerformingGrade.String()
	}
	return renderError(cr.PerformingGradeErr)
}

func (cr CombinedResult) thresholdText() string {
	if cr.Threshold != nil {
		return cr.Threshold.String()
	}
	return renderError(cr.ThresholdErr)
}

//
// String renders the result as the short text block
// handed to report generation.
//
func (cr CombinedResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Subject: %s\n", cr.Subject)
	fmt.Fprintf(&sb, "Percentile: %s\n", cr.percentileText())
	fmt.Fprintf(&sb, "Performing Grade: %s\n", cr.performingGradeText())
	fmt.Fprintf(&sb, "Next Grade Threshold: %s", cr.thresholdText())
	return sb.String()
}

//
// MetricError is the wire form of a per-metric failure.
//
type MetricError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

func newMetricError(err error) *MetricError {
	if err == nil {
		return nil
	}
	return &MetricError{Code: ErrorCode(err), Message: err.Error()}
}

// error codes used on the wire
const (
	CodeNoBenchmarkData      = "no_benchmark_data"
	CodeThresholdUnavailable = "threshold_unavailable"
	CodeInternal             = "internal"
)

//
// ErrorCode maps a metric error to its wire code.
//
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrThresholdUnavailable):
		return CodeThresholdUnavailable
	case errors.Is(err, ErrNoBenchmarkData):
		return CodeNoBenchmarkData
	}
	return CodeInternal
}

func (cr CombinedResult) MarshalJSON() ([]byte, error) {
	type wire struct {
		Subject            string                 `json:"subject"`
		Score              int                    `json:"score"`
		CurrentGrade       benchmark.Grade        `json:"currentGrade"`
		Percentile         *PercentileResult      `json:"percentile,omitempty"`
		PercentileText     string                 `json:"percentileText"`
		PercentileErr      *MetricError           `json:"percentileError,omitempty"`
		PerformingGrade    *PerformingGradeResult `json:"performingGrade,omitempty"`
		PerformingGradeErr *MetricError           `json:"performingGradeError,omitempty"`
		Threshold          *ThresholdResult       `json:"nextGradeThreshold,omitempty"`
		ThresholdErr       *MetricError           `json:"nextGradeThresholdError,omitempty"`
	}
	return json.Marshal(wire{
		Subject:            cr.Subject,
		Score:              cr.Score,
		CurrentGrade:       cr.CurrentGrade,
		Percentile:         cr.Percentile,
		PercentileText:     cr.percentileText(),
		PercentileErr:      newMetricError(cr.PercentileErr),
		PerformingGrade:    cr.PerformingGrade,
		PerformingGradeErr: newMetricError(cr.PerformingGradeErr),
		Threshold:          cr.Threshold,
		ThresholdErr:       newMetricError(cr.ThresholdErr),
	})
}
