package otfbenchmark

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/nsip/otf-benchmark/benchmark"
	"github.com/nsip/otf-benchmark/metric"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type OtfBenchmarkService struct {
	// embedded web server to handle metric requests
	e *echo.Echo
	// the unique name of this service when running multiple instances
	serviceName string
	// the unique id of this service when running multiple instances
	serviceID string
	// the host address this service instance is running on
	serviceHost string
	// the port that this service instance is running on
	servicePort int
	// benchmark source, file takes precedence over url
	benchmarkFile string
	benchmarkURL  string
	// fail the load on monotonicity violations
	strict bool
	// coerce missing benchmark scores to 0
	zeroMissing bool
	// reload the benchmark file on change
	watch bool
	// memoised benchmark table
	source *tableSource
	// stops the file watcher
	stopWatch context.CancelFunc
}

//
// Query parameters sent to the single-subject metric
// endpoints.
// Params can be provided as json payload, via form components
// or as query params
//
type MetricRequest struct {
	//
	// official benchmark subject name, e.g. End-of-Year Math: Overall (K-8)
	//
	Subject string `json:"subject" form:"subject" query:"subject" validate:"required"`
	//
	// the student's score in the subject
	//
	StudentScore int `json:"studentScore" form:"studentScore" query:"studentScore" validate:"gte=0"`
	//
	// the student's current grade: K, 1 .. 12
	//
	CurrentGrade string `json:"currentGrade" form:"currentGrade" query:"currentGrade" validate:"required,grade"`
}

//
// all subject scores for one student,
// answered with one combined result per subject
//
type AssessRequest struct {
	CurrentGrade string                `json:"currentGrade" form:"currentGrade" query:"currentGrade" validate:"required,grade"`
	Subjects     []metric.SubjectScore `json:"subjects" validate:"required,min=1,dive"`
}

//
// create a new service instance, the benchmark table is
// loaded here so a bad source stops the service starting
//
func New(options ...Option) (*OtfBenchmarkService, error) {

	srvc := OtfBenchmarkService{}

	if err := srvc.setOptions(options...); err != nil {
		return nil, err
	}
	if err := srvc.setOptions(defaults(&srvc)...); err != nil {
		return nil, err
	}

	load, err := srvc.loader()
	if err != nil {
		return nil, err
	}
	srvc.source = newTableSource(load)
	if _, err := srvc.source.Engine(); err != nil {
		return nil, errors.Wrap(err, "cannot load benchmark table")
	}

	srvc.e = echo.New()
	srvc.e.HideBanner = true
	srvc.e.Logger.SetLevel(log.INFO)
	rv, err := newRequestValidator()
	if err != nil {
		return nil, err
	}
	srvc.e.Validator = rv
	srvc.e.Use(instrument)
	// add pingable method to know we're up
	srvc.e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, "OK")
	})
	srvc.e.GET("/subjects", srvc.buildSubjectsHandler())
	srvc.e.POST("/percentile", srvc.buildPercentileHandler())
	srvc.e.POST("/performing-grade", srvc.buildPerformingGradeHandler())
	srvc.e.POST("/threshold", srvc.buildThresholdHandler())
	srvc.e.POST("/metrics", srvc.buildMetricsHandler())
	srvc.e.POST("/assess", srvc.buildAssessHandler())
	srvc.e.GET("/prometheus", echo.WrapHandler(promhttp.Handler()))

	return &srvc, nil
}

//
// fill in identity settings the caller left blank
//
func defaults(s *OtfBenchmarkService) []Option {
	var opts []Option
	if s.serviceName == "" {
		opts = append(opts, Name(""))
	}
	if s.serviceID == "" {
		opts = append(opts, ID(""))
	}
	if s.serviceHost == "" {
		opts = append(opts, Host(""))
	}
	if s.servicePort == 0 {
		opts = append(opts, Port(0))
	}
	return opts
}

//
// start the service running
//
func (s *OtfBenchmarkService) Start() {

	if s.watch && s.benchmarkFile != "" {
		ctx, cancel := context.WithCancel(context.Background())
		s.stopWatch = cancel
		go func() {
			if err := s.source.watch(ctx, s.benchmarkFile, s.e.Logger); err != nil {
				s.e.Logger.Error("benchmark watcher stopped: ", err)
			}
		}()
	}

	address := fmt.Sprintf("%s:%d", s.serviceHost, s.servicePort)
	go func(addr string) {
		if err := s.e.Start(addr); err != nil {
			s.e.Logger.Info("error starting server: ", err, ", shutting down...")
			// attempt clean shutdown by raising sig int
			p, _ := os.FindProcess(os.Getpid())
			p.Signal(os.Interrupt)
		}
	}(address)

}

//
// returns the engine over the current benchmark table
//
func (s *OtfBenchmarkService) engine() (*metric.Engine, error) {
	e, err := s.source.Engine()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return e, nil
}

//
// binds and validates a single subject request,
// converting the grade label at the boundary
//
func bindMetricRequest(c echo.Context) (*MetricRequest, benchmark.Grade, error) {
	mr := &MetricRequest{}
	if err := c.Bind(mr); err != nil {
		return nil, 0, err
	}
	if err := c.Validate(mr); err != nil {
		return nil, 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	grade, err := benchmark.ParseGrade(mr.CurrentGrade)
	if err != nil {
		return nil, 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return mr, grade, nil
}

//
// lookup failures are data gaps, reported as 404
// with a code the caller can render as "data not available"
//
func lookupError(err error) error {
	code := metric.ErrorCode(err)
	status := http.StatusNotFound
	if code == metric.CodeInternal {
		status = http.StatusInternalServerError
	}
	return echo.NewHTTPError(status, metric.MetricError{Code: code, Message: err.Error()})
}

//
// wraps a result with the identity of this service instance
//
func (s *OtfBenchmarkService) respond(c echo.Context, key string, result interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		key:                    result,
		"benchmarkServiceID":   s.serviceID,
		"benchmarkServiceName": s.serviceName,
	})
}

func (s *OtfBenchmarkService) buildSubjectsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		e, err := s.engine()
		if err != nil {
			return err
		}
		return s.respond(c, "subjects", e.Table().Subjects())
	}
}

//
// percentile: highest sampled percentile the student's
// score meets in their current grade
//
func (s *OtfBenchmarkService) buildPercentileHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		mr, grade, err := bindMetricRequest(c)
		if err != nil {
			return err
		}
		e, err := s.engine()
		if err != nil {
			return err
		}
		res, err := e.Percentile(mr.Subject, mr.StudentScore, grade)
		observeLookup("percentile", err)
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"percentile":           res,
			"percentileText":       res.String(),
			"benchmarkServiceID":   s.serviceID,
			"benchmarkServiceName": s.serviceName,
		})
	}
}

//
// performing grade: highest grade whose 85th percentile
// benchmark the score clears
//
func (s *OtfBenchmarkService) buildPerformingGradeHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		mr, grade, err := bindMetricRequest(c)
		if err != nil {
			return err
		}
		e, err := s.engine()
		if err != nil {
			return err
		}
		res, err := e.PerformingGrade(mr.Subject, mr.StudentScore, grade)
		observeLookup("performing_grade", err)
		if err != nil {
			return lookupError(err)
		}
		return s.respond(c, "performingGrade", res)
	}
}

//
// threshold: 70th percentile benchmark of the current grade,
// the student's score is accepted but not used
//
func (s *OtfBenchmarkService) buildThresholdHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		mr, grade, err := bindMetricRequest(c)
		if err != nil {
			return err
		}
		e, err := s.engine()
		if err != nil {
			return err
		}
		res, err := e.NextGradeThreshold(mr.Subject, grade)
		observeLookup("threshold", err)
		if err != nil {
			return lookupError(err)
		}
		return s.respond(c, "nextGradeThreshold", res)
	}
}

//
// all three metrics for one subject, per-metric failures
// are reported inside the result rather than as an error status
//
func (s *OtfBenchmarkService) buildMetricsHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		mr, grade, err := bindMetricRequest(c)
		if err != nil {
			return err
		}
		e, err := s.engine()
		if err != nil {
			return err
		}
		cr := e.All(mr.Subject, mr.StudentScore, grade)
		observeCombined(cr)
		return c.JSON(http.StatusOK, map[string]interface{}{
			"metrics":              cr,
			"text":                 cr.String(),
			"benchmarkServiceID":   s.serviceID,
			"benchmarkServiceName": s.serviceName,
		})
	}
}

//
// every subject for a student in one call, a subject with
// missing data never fails the others
//
func (s *OtfBenchmarkService) buildAssessHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		ar := &AssessRequest{}
		if err := c.Bind(ar); err != nil {
			return err
		}
		if err := c.Validate(ar); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		grade, err := benchmark.ParseGrade(ar.CurrentGrade)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		e, err := s.engine()
		if err != nil {
			return err
		}

		results := e.Assess(grade, ar.Subjects)
		for _, cr := range results {
			observeCombined(cr)
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"currentGrade":         grade,
			"results":              results,
			"keyFindings":          metric.KeyFindings(results),
			"benchmarkServiceID":   s.serviceID,
			"benchmarkServiceName": s.serviceName,
		})
	}
}

//
// shut the server down gracefully
//
func (s *OtfBenchmarkService) Shutdown() {
	if s.stopWatch != nil {
		s.stopWatch()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.e.Shutdown(ctx); err != nil {
		fmt.Println("could not shut down server cleanly: ", err)
		s.e.Logger.Fatal(err)
	}

}

func (s *OtfBenchmarkService) PrintConfig() {

	fmt.Println("\n\tOTF-Benchmark Service Configuration")
	fmt.Println("\t-------------------------------------")
	fmt.Println()

	s.printID()
	s.printBenchmarkConfig()

}

func (s *OtfBenchmarkService) printID() {
	fmt.Println("\tservice name:\t\t", s.serviceName)
	fmt.Println("\tservice ID:\t\t", s.serviceID)
	fmt.Println("\tservice host:\t\t", s.serviceHost)
	fmt.Println("\tservice port:\t\t", s.servicePort)
}

func (s *OtfBenchmarkService) printBenchmarkConfig() {
	if s.benchmarkFile != "" {
		fmt.Println("\tbenchmark file:\t\t", s.benchmarkFile)
	} else {
		fmt.Println("\tbenchmark url:\t\t", s.benchmarkURL)
	}
	fmt.Println("\tstrict ordering:\t", s.strict)
	fmt.Println("\tmissing as zero:\t", s.zeroMissing)
	fmt.Println("\twatch file:\t\t", s.watch)
	if e, err := s.source.Engine(); err == nil {
		tbl := e.Table()
		fmt.Println("\tsubjects:\t\t", len(tbl.Subjects()))
		fmt.Println("\trecords:\t\t", tbl.Len())
		fmt.Println("\tordering warnings:\t", len(tbl.Violations()))
	}
}
