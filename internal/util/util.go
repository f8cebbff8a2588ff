package util

import (
	"context"
	"crypto/rand"
	"io"
	"log"
	"math/big"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nats-io/nuid"
	"github.com/pkg/errors"
	hashids "github.com/speps/go-hashids"
)

// FetchTimeout bounds a whole benchmark download.
const FetchTimeout = 30 * time.Second

// fallback when a name cannot be generated
const defaultName = "benchmarker"

var (
	clientOnce sync.Once
	client     *http.Client
)

//
// shared http client so repeated benchmark
// downloads reuse connections
//
func httpClient() *http.Client {
	clientOnce.Do(func() {
		client = &http.Client{
			Timeout: FetchTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	})
	return client
}

//
// GenerateName returns a short hashid to use as a service
// name when none is configured.
//
func GenerateName() string {
	n, err := rand.Int(rand.Reader, big.NewInt(10000000))
	if err != nil {
		log.Println("cannot generate service name:", err)
		return defaultName
	}

	hd := hashids.NewData()
	hd.Salt = "otf-benchmark service name"
	hd.MinLength = 5
	h, err := hashids.NewWithData(hd)
	if err != nil {
		log.Println("cannot generate service name:", err)
		return defaultName
	}
	name, err := h.EncodeInt64([]int64{n.Int64()})
	if err != nil {
		log.Println("cannot generate service name:", err)
		return defaultName
	}
	return name
}

// GenerateID returns a unique service instance id.
func GenerateID() string {
	return nuid.Next()
}

//
// Fetch issues a request and returns the body of a 200 response.
// Any other status is an error carrying the status code.
//
func Fetch(ctx context.Context, method, url string, header map[string]string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	for key, value := range header {
		req.Header.Add(key, value)
	}

	res, err := httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("%s %s: unexpected status %d", method, url, res.StatusCode)
	}
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read response from %s", url)
	}
	return b, nil
}

//
// TimeTrack logs how long an operation took, use as
// defer TimeTrack(time.Now(), "name")
//
func TimeTrack(start time.Time, name string) {
	log.Printf("%s took %s", name, time.Since(start).Truncate(time.Millisecond))
}

//
// AvailablePort asks the os for a free tcp port. The listener is
// released before returning so the caller can bind the port.
//
func AvailablePort() (int, error) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, errors.Wrap(err, "cannot acquire a tcp port")
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
