package otfbenchmark

import (
	"github.com/nsip/otf-benchmark/internal/util"
	"github.com/pkg/errors"
)

type Option func(*OtfBenchmarkService) error

//
// apply all supplied options to the service
// returns any error encountered while applying the options
//
func (srvc *OtfBenchmarkService) setOptions(options ...Option) error {
	for _, opt := range options {
		if err := opt(srvc); err != nil {
			return err
		}
	}
	return nil
}

//
// set the name of this service instance,
// if none supplied a short unique name will be generated
//
func Name(name string) Option {
	return func(s *OtfBenchmarkService) error {
		if name != "" {
			s.serviceName = name
			return nil
		}
		s.serviceName = util.GenerateName()
		return nil
	}
}

//
// set the unique id of this service instance,
// if none supplied a nuid will be generated
//
func ID(id string) Option {
	return func(s *OtfBenchmarkService) error {
		if id != "" {
			s.serviceID = id
			return nil
		}
		s.serviceID = util.GenerateID()
		return nil
	}
}

//
// set the hostname/address for this service
//
func Host(hostName string) Option {
	return func(s *OtfBenchmarkService) error {
		if hostName != "" {
			s.serviceHost = hostName
			return nil
		}
		s.serviceHost = "localhost"
		return nil
	}
}

//
// set the port for this service to listen on,
// 0 finds a free port
//
func Port(port int) Option {
	return func(s *OtfBenchmarkService) error {
		if port != 0 {
			s.servicePort = port
			return nil
		}
		p, err := util.AvailablePort()
		if err != nil {
			return errors.Wrap(err, "Port() option unable to assign port")
		}
		s.servicePort = p
		return nil
	}
}

//
// path of the benchmark source file (json, or yaml
// by .yaml/.yml extension)
//
func BenchmarkFile(path string) Option {
	return func(s *OtfBenchmarkService) error {
		s.benchmarkFile = path
		return nil
	}
}

//
// url to fetch the benchmark source from, used
// when no benchmark file is given
//
func BenchmarkURL(url string) Option {
	return func(s *OtfBenchmarkService) error {
		s.benchmarkURL = url
		return nil
	}
}

//
// refuse to start on benchmark data that breaks
// score ordering across percentiles or grades
//
func Strict(strict bool) Option {
	return func(s *OtfBenchmarkService) error {
		s.strict = strict
		return nil
	}
}

//
// treat missing or non-numeric benchmark scores as 0
// rather than as absent
//
func ZeroMissing(zero bool) Option {
	return func(s *OtfBenchmarkService) error {
		s.zeroMissing = zero
		return nil
	}
}

//
// reload the benchmark file whenever it changes on disk
//
func Watch(watch bool) Option {
	return func(s *OtfBenchmarkService) error {
		s.watch = watch
		return nil
	}
}
