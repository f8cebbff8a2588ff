package otfbenchmark

import (
	"context"
	"net/http"
	"net/url"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/labstack/echo/v4"
	"github.com/nsip/otf-benchmark/benchmark"
	"github.com/nsip/otf-benchmark/internal/util"
	"github.com/nsip/otf-benchmark/metric"
	"github.com/pkg/errors"
)

//
// tableSource loads the benchmark table once and hands out an
// engine over it. Reloads build a complete new table and swap
// it in; a table is never modified once published.
//
type tableSource struct {
	load    func() (*benchmark.Table, error)
	once    sync.Once
	err     error
	current atomic.Pointer[metric.Engine]
}

func newTableSource(load func() (*benchmark.Table, error)) *tableSource {
	return &tableSource{load: load}
}

//
// Engine returns the engine over the current table, loading
// the table on first use. A failed first load is remembered
// and returned to every caller until a reload succeeds.
//
func (ts *tableSource) Engine() (*metric.Engine, error) {
	ts.once.Do(func() {
		tbl, err := ts.load()
		if err != nil {
			ts.err = err
			return
		}
		ts.publish(tbl)
	})
	if e := ts.current.Load(); e != nil {
		return e, nil
	}
	return nil, ts.err
}

//
// Reload rebuilds the table from source. On failure
// the previously published table stays in place.
//
func (ts *tableSource) Reload() error {
	tbl, err := ts.load()
	if err != nil {
		reloadsTotal.WithLabelValues("error").Inc()
		return err
	}
	ts.publish(tbl)
	reloadsTotal.WithLabelValues("ok").Inc()
	return nil
}

func (ts *tableSource) publish(tbl *benchmark.Table) {
	ts.current.Store(metric.New(tbl))
	observeTable(tbl)
}

//
// watch reloads the table each time the file at path is written,
// until ctx is cancelled.
//
func (ts *tableSource) watch(ctx context.Context, path string, logger echo.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}
	logger.Infof("watching benchmark file %s for changes", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// editors often save via rename, so creates count too
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := ts.Reload(); err != nil {
				logger.Errorf("benchmark reload failed, keeping previous table: %s", err)
			} else {
				logger.Infof("benchmark file %s reloaded", path)
			}
			// re-add in case an atomic save replaced the inode
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Errorf("benchmark watcher error: %s", err)
		}
	}
}

//
// builds the loader for whichever benchmark source the
// service was configured with, a local file taking
// precedence over a url
//
func (s *OtfBenchmarkService) loader() (func() (*benchmark.Table, error), error) {
	var opts []benchmark.LoadOption
	if s.strict {
		opts = append(opts, benchmark.Strict())
	}
	if s.zeroMissing {
		opts = append(opts, benchmark.ZeroMissing())
	}

	switch {
	case s.benchmarkFile != "":
		path := filepath.Clean(s.benchmarkFile)
		return func() (*benchmark.Table, error) {
			defer util.TimeTrack(time.Now(), "benchmark load")
			return benchmark.LoadFile(path, opts...)
		}, nil

	case s.benchmarkURL != "":
		u, err := url.Parse(s.benchmarkURL)
		if err != nil {
			return nil, errors.Wrap(err, "invalid benchmark url")
		}
		src := u.String()
		yml := benchmark.IsYAML(u.Path)
		return func() (*benchmark.Table, error) {
			defer util.TimeTrack(time.Now(), "benchmark fetch")
			ctx, cancel := context.WithTimeout(context.Background(), util.FetchTimeout)
			defer cancel()
			headers := map[string]string{"Accept": "application/json, application/yaml"}
			data, err := util.Fetch(ctx, http.MethodGet, src, headers, nil)
			if err != nil {
				return nil, errors.Wrapf(benchmark.ErrDataLoad, "cannot fetch %s: %s", src, err)
			}
			if yml {
				return benchmark.ParseYAML(data, opts...)
			}
			return benchmark.Parse(data, opts...)
		}, nil
	}

	return nil, errors.New("no benchmark source configured, supply a benchmark file or url")
}
