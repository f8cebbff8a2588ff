package benchmark

import (
	"sort"
)

//
// Record is a single normative data point: the score a student
// must reach to sit at Percentile for Subject in Grade.
//
type Record struct {
	Subject    string `json:"subject"`
	Grade      Grade  `json:"grade"`
	Percentile int    `json:"percentile"`
	Score      int    `json:"score"`
	// Absent marks a cell that was missing or non-numeric in the source.
	// Absent records never satisfy a score comparison.
	Absent bool `json:"absent,omitempty"`
}

//
// Sample is the aggregated view of every record sharing
// (subject, grade, percentile); duplicates collapse to the
// highest present score.
//
type Sample struct {
	Percentile int  `json:"percentile"`
	Score      int  `json:"score"`
	Absent     bool `json:"absent,omitempty"`
}

type cellKey struct {
	subject string
	grade   Grade
}

//
// Table is an immutable, indexed collection of benchmark records.
// A Table is safe for concurrent use once constructed.
//
type Table struct {
	rows       []Record
	subjects   []string
	samples    map[cellKey][]Sample
	violations []Violation
}

//
// NewTable indexes the given records. The records are copied,
// callers may reuse the slice.
//
func NewTable(records []Record) *Table {
	t := &Table{
		rows:    make([]Record, len(records)),
		samples: make(map[cellKey][]Sample),
	}
	copy(t.rows, records)

	seen := make(map[string]bool)
	agg := make(map[cellKey]map[int]Sample)
	for _, r := range t.rows {
		if !seen[r.Subject] {
			seen[r.Subject] = true
			t.subjects = append(t.subjects, r.Subject)
		}
		k := cellKey{subject: r.Subject, grade: r.Grade}
		byPct, ok := agg[k]
		if !ok {
			byPct = make(map[int]Sample)
			agg[k] = byPct
		}
		next := Sample{Percentile: r.Percentile, Score: r.Score, Absent: r.Absent}
		if cur, dup := byPct[r.Percentile]; dup {
			next = mergeSample(cur, next)
		}
		byPct[r.Percentile] = next
	}

	for k, byPct := range agg {
		ss := make([]Sample, 0, len(byPct))
		for _, s := range byPct {
			ss = append(ss, s)
		}
		sort.Slice(ss, func(i, j int) bool { return ss[i].Percentile < ss[j].Percentile })
		t.samples[k] = ss
	}

	t.violations = checkMonotonic(t)

	return t
}

//
// mergeSample resolves a duplicate (subject, grade, percentile).
// A present score always beats an absent one, otherwise the max wins.
//
func mergeSample(cur, next Sample) Sample {
	switch {
	case cur.Absent && !next.Absent:
		return next
	case !cur.Absent && next.Absent:
		return cur
	case next.Score > cur.Score:
		return next
	}
	return cur
}

// Len returns the number of records in the table.
func (t *Table) Len() int {
	return len(t.rows)
}

//
// Rows returns a copy of every record, in load order.
//
func (t *Table) Rows() []Record {
	out := make([]Record, len(t.rows))
	copy(out, t.rows)
	return out
}

//
// Subjects returns the official subject names in the order
// they first appear in the source.
//
func (t *Table) Subjects() []string {
	out := make([]string, len(t.subjects))
	copy(out, t.subjects)
	return out
}

// HasSubject reports whether the table holds any record for subject.
func (t *Table) HasSubject(subject string) bool {
	for _, s := range t.subjects {
		if s == subject {
			return true
		}
	}
	return false
}

//
// Grades returns, in ascending order, the grades for which
// subject has at least one record.
//
func (t *Table) Grades(subject string) []Grade {
	var gg []Grade
	for _, g := range Grades() {
		if _, ok := t.samples[cellKey{subject: subject, grade: g}]; ok {
			gg = append(gg, g)
		}
	}
	return gg
}

//
// Samples returns the aggregated samples for (subject, grade) ordered by
// percentile. ok is false when the table has no record for the pair.
//
func (t *Table) Samples(subject string, grade Grade) (samples []Sample, ok bool) {
	ss, ok := t.samples[cellKey{subject: subject, grade: grade}]
	if !ok {
		return nil, false
	}
	out := make([]Sample, len(ss))
	copy(out, ss)
	return out, true
}

//
// Sample returns the aggregated sample for one (subject, grade, percentile).
//
func (t *Table) Sample(subject string, grade Grade, percentile int) (Sample, bool) {
	for _, s := range t.samples[cellKey{subject: subject, grade: grade}] {
		if s.Percentile == percentile {
			return s, true
		}
	}
	return Sample{}, false
}

//
// Violations lists the monotonicity problems found when the table
// was built. An empty result means the data is well ordered.
//
func (t *Table) Violations() []Violation {
	out := make([]Violation, len(t.violations))
	copy(out, t.violations)
	return out
}
