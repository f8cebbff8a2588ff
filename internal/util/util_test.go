package util

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateName(t *testing.T) {
	name := GenerateName()
	assert.GreaterOrEqual(t, len(name), 5)
}

func TestGenerateID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestAvailablePort_IsReleased(t *testing.T) {
	port, err := AvailablePort()
	require.NoError(t, err)
	require.Greater(t, port, 0)

	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	require.NoError(t, err, "port should be free to bind")
	l.Close()
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		body, _ := io.ReadAll(r.Body)
		fmt.Fprintf(w, "%s %s %s", r.Method, r.Header.Get("X-Test"), body)
	}))
	defer srv.Close()

	b, err := Fetch(context.Background(), "POST", srv.URL+"/echo", map[string]string{"X-Test": "yes"}, strings.NewReader("payload"))
	require.NoError(t, err)
	assert.Equal(t, "POST yes payload", string(b))

	_, err = Fetch(context.Background(), "GET", srv.URL+"/missing", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Fetch(ctx, "GET", srv.URL+"/echo", nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
