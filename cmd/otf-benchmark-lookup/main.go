//
// one-shot metric lookups against a benchmark file, e.g.
//
//	otf-benchmark-lookup -grade 4 "End-of-Year Math: Overall (K-8)=520"
//
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/nsip/otf-benchmark/benchmark"
	"github.com/nsip/otf-benchmark/internal/tabulate"
	"github.com/nsip/otf-benchmark/metric"
	"github.com/peterbourgon/ff/v3"
	"github.com/pkg/errors"
)

func main() {

	fs := flag.NewFlagSet("otf-benchmark-lookup", flag.ExitOnError)
	var (
		_             = fs.String("config", "", "config file (optional), json format.")
		benchmarkFile = fs.String("benchmarkFile", "./assets/EOY_Grade_levels.json", "benchmark table file, json or yaml (.yaml/.yml)")
		grade         = fs.String("grade", "", "the student's current grade: K, 1 .. 12")
		strict        = fs.Bool("strict", false, "fail if benchmark scores are not ordered by percentile and grade")
		zeroMissing   = fs.Bool("zeroMissing", false, "treat missing benchmark scores as 0 instead of absent")
		asJSON        = fs.Bool("json", false, "print results as json instead of a table")
		subjects      = fs.Bool("subjects", false, "list the official subject names and exit")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.JSONParser),
		ff.WithEnvVarPrefix("OTF_BENCHMARK_LOOKUP"),
	); err != nil {
		fail(err)
	}

	var opts []benchmark.LoadOption
	if *strict {
		opts = append(opts, benchmark.Strict())
	}
	if *zeroMissing {
		opts = append(opts, benchmark.ZeroMissing())
	}
	tbl, err := benchmark.LoadFile(*benchmarkFile, opts...)
	if err != nil {
		fail(err)
	}

	if *subjects {
		for _, s := range tbl.Subjects() {
			fmt.Println(s)
		}
		return
	}

	g, err := benchmark.ParseGrade(*grade)
	if err != nil {
		fail(err)
	}
	scores, err := parseScores(fs.Args())
	if err != nil {
		fail(err)
	}

	results := metric.New(tbl).Assess(g, scores)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fail(err)
		}
		return
	}
	if err := tabulate.Write(os.Stdout, results); err != nil {
		fail(err)
	}

}

//
// each argument is subject=score, split on the last '='
// since subject names may contain one
//
func parseScores(args []string) ([]metric.SubjectScore, error) {
	if len(args) == 0 {
		return nil, errors.New("supply at least one subject=score argument")
	}
	scores := make([]metric.SubjectScore, 0, len(args))
	for _, arg := range args {
		i := strings.LastIndex(arg, "=")
		if i <= 0 {
			return nil, errors.Errorf("argument %q is not subject=score", arg)
		}
		n, err := strconv.Atoi(strings.TrimSpace(arg[i+1:]))
		if err != nil || n < 0 {
			return nil, errors.Errorf("argument %q has an invalid score", arg)
		}
		scores = append(scores, metric.SubjectScore{Subject: strings.TrimSpace(arg[:i]), Score: n})
	}
	return scores, nil
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "\notf-benchmark-lookup: %s\n\n", err)
	os.Exit(1)
}
