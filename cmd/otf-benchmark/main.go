package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	otfbench "github.com/nsip/otf-benchmark"
	"github.com/peterbourgon/ff/v3"
)

func main() {

	fs := flag.NewFlagSet("otf-benchmark", flag.ExitOnError)
	var (
		_             = fs.String("config", "", "config file (optional), json format.")
		serviceName   = fs.String("name", "", "name for this benchmark service instance")
		serviceID     = fs.String("id", "", "id for this benchmark service instance, leave blank to auto-generate a unique id")
		serviceHost   = fs.String("host", "localhost", "name/address of host for this service")
		servicePort   = fs.Int("port", 0, "port to run service on, if not specified will assign an available port automatically")
		benchmarkFile = fs.String("benchmarkFile", "./assets/EOY_Grade_levels.json", "benchmark table file, json or yaml (.yaml/.yml)")
		benchmarkURL  = fs.String("benchmarkURL", "", "url to fetch the benchmark table from, used when benchmarkFile is empty")
		strict        = fs.Bool("strict", false, "refuse to start if benchmark scores are not ordered by percentile and grade")
		zeroMissing   = fs.Bool("zeroMissing", false, "treat missing benchmark scores as 0 instead of absent")
		watch         = fs.Bool("watch", false, "reload the benchmark file when it changes")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.JSONParser),
		ff.WithEnvVarPrefix("OTF_BENCHMARK_SRVC"),
	); err != nil {
		fmt.Printf("\nCannot read otf-benchmark configuration:\n%s\n\n", err)
		os.Exit(1)
	}

	opts := []otfbench.Option{
		otfbench.Name(*serviceName),
		otfbench.ID(*serviceID),
		otfbench.Host(*serviceHost),
		otfbench.Port(*servicePort),
		otfbench.BenchmarkFile(*benchmarkFile),
		otfbench.BenchmarkURL(*benchmarkURL),
		otfbench.Strict(*strict),
		otfbench.ZeroMissing(*zeroMissing),
		otfbench.Watch(*watch),
	}

	srvc, err := otfbench.New(opts...)
	if err != nil {
		fmt.Printf("\nCannot create otf-benchmark service:\n%s\n\n", err)
		os.Exit(1)
	}

	srvc.PrintConfig()

	// signal handler for shutdown
	closed := make(chan struct{})
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGTERM, os.Interrupt)
	go func() {
		<-c
		fmt.Println("\notf-benchmark shutting down")
		srvc.Shutdown()
		fmt.Println("otf-benchmark closed")
		close(closed)
	}()

	srvc.Start()

	// block until shutdown by sig-handler
	<-closed

}
