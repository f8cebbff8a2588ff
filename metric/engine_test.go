package metric

import (
	"encoding/json"
	"math/rand"
	"sync"
	"testing"

	"github.com/nsip/otf-benchmark/benchmark"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const testSource = `[
	{"title": "Math", "data": [
		{"Percentile": 10, "K": 120, "1": 160, "2": 200, "3": 250, "4": 300, "5": 340},
		{"Percentile": 50, "K": 160, "1": 200, "2": 260, "3": 330, "4": 450, "5": 480},
		{"Percentile": 70, "K": 180, "1": 230, "2": 300, "3": 380, "4": 500, "5": 540},
		{"Percentile": 85, "K": 200, "1": 260, "2": 330, "3": 420, "4": 540, "5": 600}
	]},
	{"title": "Reading", "data": [
		{"Percentile": 25, "3": 300, "4": 340},
		{"Percentile": 50, "3": 350, "4": 390},
		{"Percentile": 85, "3": 420, "4": 460}
	]},
	{"title": "Science", "data": [
		{"Percentile": 50, "6": 400},
		{"Percentile": 70, "6": null},
		{"Percentile": 85, "6": 480}
	]},
	{"title": "Writing", "data": [
		{"Percentile": 50, "2": 100, "3": 150}
	]}
]`

func testEngine(t *testing.T, src string, opts ...benchmark.LoadOption) *Engine {
	t.Helper()
	tbl, err := benchmark.Parse([]byte(src), opts...)
	require.NoError(t, err)
	return New(tbl)
}

func TestPercentile(t *testing.T) {
	e := testEngine(t, testSource)

	tests := []struct {
		name  string
		score int
		want  int
		text  string
	}{
		{name: "below lowest benchmark", score: 100, want: 0, text: "0th percentile"},
		{name: "exact match", score: 450, want: 50, text: "50th percentile"},
		{name: "between samples", score: 499, want: 50, text: "50th percentile"},
		{name: "on threshold", score: 500, want: 70, text: "70th percentile"},
		{name: "above highest", score: 10000, want: 85, text: "85th percentile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.Percentile("Math", tt.score, benchmark.Grade4)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Percentile)
			assert.Equal(t, tt.text, res.String())
		})
	}
}

func TestPercentile_NoBenchmarkData(t *testing.T) {
	e := testEngine(t, testSource)

	_, err := e.Percentile("Nonexistent Subject", 500, benchmark.Grade4)
	assert.True(t, errors.Is(err, ErrNoBenchmarkData))

	_, err = e.Percentile("Math", 500, benchmark.Grade9)
	assert.True(t, errors.Is(err, ErrNoBenchmarkData))

	// subject matching is exact
	_, err = e.Percentile("math", 500, benchmark.Grade4)
	assert.True(t, errors.Is(err, ErrNoBenchmarkData))
}

func TestPercentile_Idempotent(t *testing.T) {
	e := testEngine(t, testSource)

	a, errA := e.Percentile("Math", 333, benchmark.Grade3)
	b, errB := e.Percentile("Math", 333, benchmark.Grade3)
	assert.Equal(t, a, b)
	assert.Equal(t, errA, errB)
}

func TestPercentile_AbsentCells(t *testing.T) {
	src := `[{"title": "S", "data": [
		{"Percentile": 50, "4": 400},
		{"Percentile": 85, "4": null}
	]}]`

	// a missing benchmark never counts as met
	res, err := testEngine(t, src).Percentile("S", 1000, benchmark.Grade4)
	require.NoError(t, err)
	assert.Equal(t, 50, res.Percentile)

	// the legacy coercion treats the gap as a score of 0, which anyone meets
	res, err = testEngine(t, src, benchmark.ZeroMissing()).Percentile("S", 1000, benchmark.Grade4)
	require.NoError(t, err)
	assert.Equal(t, 85, res.Percentile)
}

func TestPercentile_MonotoneInScore(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pcts := []int{5, 10, 25, 50, 70, 85, 95}

	for round := 0; round < 25; round++ {
		var records []benchmark.Record
		score := rng.Intn(200)
		for _, p := range pcts {
			score += 1 + rng.Intn(50)
			records = append(records, benchmark.Record{Subject: "S", Grade: benchmark.Grade6, Percentile: p, Score: score})
		}
		e := New(benchmark.NewTable(records))

		prev := 0
		for s := 0; s <= score+10; s += 3 {
			res, err := e.Percentile("S", s, benchmark.Grade6)
			require.NoError(t, err)
			require.GreaterOrEqual(t, res.Percentile, prev, "round %d score %d", round, s)
			prev = res.Percentile
		}
		assert.Equal(t, 95, prev)
	}
}

func TestPerformingGrade(t *testing.T) {
	e := testEngine(t, testSource)

	tests := []struct {
		name      string
		subject   string
		score     int
		current   benchmark.Grade
		want      benchmark.Grade
		qualified bool
		standing  Standing
	}{
		{name: "no grade cleared defaults to current", subject: "Math", score: 100, current: benchmark.Grade3,
			want: benchmark.Grade3, qualified: false, standing: OnGradeLevel},
		{name: "below grade level", subject: "Math", score: 340, current: benchmark.Grade4,
			want: benchmark.Grade2, qualified: true, standing: BelowGradeLevel},
		{name: "on grade level", subject: "Math", score: 540, current: benchmark.Grade4,
			want: benchmark.Grade4, qualified: true, standing: OnGradeLevel},
		{name: "above grade level", subject: "Math", score: 600, current: benchmark.Grade4,
			want: benchmark.Grade5, qualified: true, standing: AboveGradeLevel},
		{name: "scan starts at lowest sampled grade", subject: "Reading", score: 430, current: benchmark.Grade4,
			want: benchmark.Grade3, qualified: true, standing: BelowGradeLevel},
		{name: "current grade outside sampled range", subject: "Reading", score: 430, current: benchmark.Grade8,
			want: benchmark.Grade3, qualified: true, standing: BelowGradeLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := e.PerformingGrade(tt.subject, tt.score, tt.current)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.PerformingGrade)
			assert.Equal(t, tt.qualified, res.Qualified)
			assert.Equal(t, tt.standing, res.Standing)
			assert.Equal(t, tt.want.String(), res.String())
		})
	}
}

func TestPerformingGrade_NoAnchor(t *testing.T) {
	e := testEngine(t, testSource)

	_, err := e.PerformingGrade("Writing", 500, benchmark.Grade3)
	assert.True(t, errors.Is(err, ErrNoBenchmarkData))

	_, err = e.PerformingGrade("Nonexistent Subject", 500, benchmark.Grade3)
	assert.True(t, errors.Is(err, ErrNoBenchmarkData))
}

func TestPerformingGrade_StopsAtFirstMiss(t *testing.T) {
	// grade 1 breaks monotonicity; the scan never reaches grade 2
	src := `[{"title": "S", "data": [{"Percentile": 85, "K": 200, "1": 500, "2": 300}]}]`
	e := testEngine(t, src)
	require.NotEmpty(t, e.Table().Violations())

	res, err := e.PerformingGrade("S", 350, benchmark.Grade2)
	require.NoError(t, err)
	assert.Equal(t, benchmark.GradeK, res.PerformingGrade)

	// an absent benchmark also ends the scan
	src = `[{"title": "S", "data": [{"Percentile": 85, "K": 200, "1": null, "2": 300}]}]`
	res, err = testEngine(t, src).PerformingGrade("S", 400, benchmark.Grade2)
	require.NoError(t, err)
	assert.Equal(t, benchmark.GradeK, res.PerformingGrade)
}

func TestNextGradeThreshold(t *testing.T) {
	e := testEngine(t, testSource)

	res, err := e.NextGradeThreshold("Math", benchmark.Grade4)
	require.NoError(t, err)
	assert.Equal(t, 500, res.Threshold)
	assert.Equal(t, "500", res.String())

	_, err = e.NextGradeThreshold("Reading", benchmark.Grade3)
	assert.True(t, errors.Is(err, ErrThresholdUnavailable))
	assert.False(t, errors.Is(err, ErrNoBenchmarkData))

	_, err = e.NextGradeThreshold("Science", benchmark.Grade6)
	assert.True(t, errors.Is(err, ErrThresholdUnavailable))

	_, err = e.NextGradeThreshold("Math", benchmark.Grade9)
	assert.True(t, errors.Is(err, ErrNoBenchmarkData))

	_, err = e.NextGradeThreshold("Nonexistent Subject", benchmark.Grade4)
	assert.True(t, errors.Is(err, ErrNoBenchmarkData))
}

func TestNextGradeThreshold_Duplicates(t *testing.T) {
	src := `[{"title": "S", "data": [
		{"Percentile": 70, "4": 510},
		{"Percentile": 70, "4": 530},
		{"Percentile": 70, "4": 520}
	]}]`

	res, err := testEngine(t, src).NextGradeThreshold("S", benchmark.Grade4)
	require.NoError(t, err)
	assert.Equal(t, 530, res.Threshold)
}

func TestAll_IndependentFailures(t *testing.T) {
	e := testEngine(t, testSource)

	cr := e.All("Reading", 400, benchmark.Grade4)
	assert.False(t, cr.OK())

	require.NoError(t, cr.PercentileErr)
	require.NotNil(t, cr.Percentile)
	assert.Equal(t, 50, cr.Percentile.Percentile)

	require.NoError(t, cr.PerformingGradeErr)
	assert.Equal(t, benchmark.Grade4, cr.PerformingGrade.PerformingGrade)

	assert.Nil(t, cr.Threshold)
	assert.True(t, errors.Is(cr.ThresholdErr, ErrThresholdUnavailable))

	text := cr.String()
	assert.Contains(t, text, "Percentile: 50th percentile")
	assert.Contains(t, text, "Performing Grade: 4")
	assert.Contains(t, text, "Next Grade Threshold: N/A (No 70th percentile benchmark for this grade)")
}

func TestAll_Success(t *testing.T) {
	cr := testEngine(t, testSource).All("Math", 520, benchmark.Grade4)
	require.True(t, cr.OK())

	assert.Equal(t, "Subject: Math\nPercentile: 70th percentile\nPerforming Grade: 3\nNext Grade Threshold: 500", cr.String())
}

func TestAll_UnknownSubject(t *testing.T) {
	cr := testEngine(t, testSource).All("Nonexistent Subject", 500, benchmark.Grade4)

	assert.True(t, errors.Is(cr.PercentileErr, ErrNoBenchmarkData))
	assert.True(t, errors.Is(cr.PerformingGradeErr, ErrNoBenchmarkData))
	assert.True(t, errors.Is(cr.ThresholdErr, ErrNoBenchmarkData))
	assert.Contains(t, cr.String(), "Percentile: Data not available (")
}

func TestCombinedResult_JSON(t *testing.T) {
	cr := testEngine(t, testSource).All("Reading", 400, benchmark.Grade4)

	b, err := json.Marshal(cr)
	require.NoError(t, err)

	doc := gjson.ParseBytes(b)
	assert.Equal(t, "Reading", doc.Get("subject").String())
	assert.Equal(t, "4", doc.Get("currentGrade").String())
	assert.Equal(t, int64(50), doc.Get("percentile.percentile").Int())
	assert.Equal(t, "50th percentile", doc.Get("percentileText").String())
	assert.Equal(t, "4", doc.Get("performingGrade.performingGrade").String())
	assert.Equal(t, "on_grade_level", doc.Get("performingGrade.standing").String())
	assert.False(t, doc.Get("nextGradeThreshold").Exists())
	assert.Equal(t, CodeThresholdUnavailable, doc.Get("nextGradeThresholdError.error").String())
	assert.False(t, doc.Get("percentileError").Exists())
}

func TestAssess_KeyFindings(t *testing.T) {
	e := testEngine(t, testSource)

	results := e.Assess(benchmark.Grade4, []SubjectScore{
		{Subject: "Math", Score: 600},
		{Subject: "Reading", Score: 400},
		{Subject: "Writing", Score: 100},
		{Subject: "Math", Score: 340},
	})
	require.Len(t, results, 4)
	assert.Equal(t, "Writing", results[2].Subject)

	f := KeyFindings(results)
	assert.Equal(t, []string{"Math"}, f.Above)
	assert.Equal(t, []string{"Reading"}, f.On)
	assert.Equal(t, []string{"Math"}, f.Below)
	assert.Equal(t, []string{"Writing"}, f.Unavailable)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, AboveGradeLevel, Classify(benchmark.Grade5, benchmark.Grade4))
	assert.Equal(t, OnGradeLevel, Classify(benchmark.GradeK, benchmark.GradeK))
	assert.Equal(t, BelowGradeLevel, Classify(benchmark.Grade2, benchmark.Grade10))
}

func TestEngine_ConcurrentUse(t *testing.T) {
	e := testEngine(t, testSource)
	want := e.All("Math", 520, benchmark.Grade4).String()

	var wg sync.WaitGroup
	got := make([]string, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = e.All("Math", 520, benchmark.Grade4).String()
		}(i)
	}
	wg.Wait()

	for _, g := range got {
		assert.Equal(t, want, g)
	}
}
