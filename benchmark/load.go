package benchmark

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"
)

var (
	// ErrDataLoad is returned when the benchmark source is missing or malformed.
	ErrDataLoad = errors.New("benchmark data could not be loaded")
	// ErrDataShape is returned when the source parses but yields no usable table.
	ErrDataShape = errors.New("benchmark data has an unusable shape")
)

const (
	// title given to subject blocks that carry none
	UnknownSubject = "Unknown Subject"
	// the row key holding the percentile, every other key is a grade column
	percentileKey = "Percentile"
)

type loadConfig struct {
	zeroMissing bool
	strict      bool
}

//
// LoadOption tunes how a source is normalised.
//
type LoadOption func(*loadConfig)

//
// ZeroMissing records missing or non-numeric scores as a present score
// of 0 instead of marking them absent.
//
func ZeroMissing() LoadOption {
	return func(c *loadConfig) {
		c.zeroMissing = true
	}
}

//
// Strict fails the load with ErrDataShape when the
// table breaks benchmark monotonicity.
//
func Strict() LoadOption {
	return func(c *loadConfig) {
		c.strict = true
	}
}

//
// intermediate form shared by the json and yaml readers
//
type sourceBlock struct {
	title string
	rows  []sourceRow
}

type sourceRow struct {
	percentile sourceCell
	hasPct     bool
	cells      []gradeCell
}

type gradeCell struct {
	label string
	value sourceCell
}

type sourceCell struct {
	raw  string
	null bool
}

//
// LoadFile reads a benchmark source from disk. Files ending in
// .yaml or .yml are read as yaml, anything else as json.
//
func LoadFile(path string, opts ...LoadOption) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrDataLoad, "cannot read %s: %s", path, err)
	}
	if IsYAML(path) {
		return ParseYAML(data, opts...)
	}
	return Parse(data, opts...)
}

// IsYAML reports whether name carries a yaml extension.
func IsYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

//
// build melts the wide per-subject blocks into long records
// and indexes them.
//
func build(blocks []sourceBlock, opts []LoadOption) (*Table, error) {
	cfg := &loadConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var records []Record
	skipped := make(map[string]bool)
	for bi, b := range blocks {
		for ri, row := range b.rows {
			if !row.hasPct {
				return nil, errors.Wrapf(ErrDataLoad, "block %d (%s) row %d has no %s", bi, b.title, ri, percentileKey)
			}
			pct, err := parsePercentile(row.percentile)
			if err != nil {
				return nil, errors.Wrapf(ErrDataLoad, "block %d (%s) row %d: %s", bi, b.title, ri, err)
			}
			for _, c := range row.cells {
				grade, err := ParseGrade(c.label)
				if err != nil {
					key := b.title + "\x00" + c.label
					if !skipped[key] {
						skipped[key] = true
						log.Warnf("benchmark: skipping column %q in %q, not a grade", c.label, b.title)
					}
					continue
				}
				score, ok := parseScore(c.value)
				rec := Record{Subject: b.title, Grade: grade, Percentile: pct, Score: score}
				if !ok {
					rec.Score = 0
					rec.Absent = !cfg.zeroMissing
				}
				records = append(records, rec)
			}
		}
	}

	if len(records) == 0 {
		return nil, errors.Wrap(ErrDataShape, "no benchmark records found in source")
	}

	t := NewTable(records)
	if vv := t.violations; len(vv) > 0 {
		if cfg.strict {
			return nil, errors.Wrapf(ErrDataShape, "%d monotonicity violations, first: %s", len(vv), vv[0])
		}
		for _, v := range vv {
			log.Warnf("benchmark: %s", v)
		}
	}

	return t, nil
}

//
// percentiles must be whole numbers in [0,100]; anything
// else means the source is not a benchmark table.
//
func parsePercentile(c sourceCell) (int, error) {
	if c.null {
		return 0, errors.New("percentile is null")
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(c.raw), 64)
	if err != nil || f != math.Trunc(f) {
		return 0, errors.Errorf("percentile %q is not an integer", c.raw)
	}
	if f < 0 || f > 100 {
		return 0, errors.Errorf("percentile %v out of range", f)
	}
	return int(f), nil
}

// largest score a benchmark cell may carry
const maxScore = math.MaxInt32

//
// scores are truncated to integers; null, non-numeric, negative
// and values beyond maxScore report ok == false.
//
func parseScore(c sourceCell) (score int, ok bool) {
	if c.null {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(c.raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f > maxScore {
		return 0, false
	}
	return int(f), true
}
