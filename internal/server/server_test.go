package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/mvarshney/nocontent/internal/metrics"
	"github.com/mvarshney/nocontent/internal/router"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// startServer serves the real router on an ephemeral port and returns its
// base URL.
func startServer(t *testing.T) string {
	t.Helper()
	inst, err := metrics.New(metricnoop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, discard, ln, router.New(tracenoop.NewTracerProvider(), inst))
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})
	return "http://" + ln.Addr().String()
}

func do(t *testing.T, c *http.Client, method, url string, body io.Reader) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func TestServe_GetRoot(t *testing.T) {
	base := startServer(t)

	status, body := do(t, http.DefaultClient, http.MethodGet, base+"/", nil)
	assert.Equal(t, http.StatusNoContent, status)
	assert.Empty(t, body)
}

func TestServe_Defaults(t *testing.T) {
	base := startServer(t)

	status, _ := do(t, http.DefaultClient, http.MethodPost, base+"/", strings.NewReader(`{"a":1}`))
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	status, _ = do(t, http.DefaultClient, http.MethodGet, base+"/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServe_Repeated(t *testing.T) {
	base := startServer(t)

	for i := 0; i < 100; i++ {
		status, body := do(t, http.DefaultClient, http.MethodGet, base+"/?i="+strings.Repeat("x", i), nil)
		require.Equal(t, http.StatusNoContent, status, "request %d", i)
		require.Empty(t, body, "request %d", i)
	}
}

func TestServe_ConcurrentClients(t *testing.T) {
	const clients = 50
	base := startServer(t)

	var eg errgroup.Group
	statuses := make([]int, clients)
	sizes := make([]int, clients)
	for i := 0; i < clients; i++ {
		i := i // per-iteration copy (go directive is 1.21)
		eg.Go(func() error {
			// separate transports so every client opens its own connection
			c := &http.Client{Transport: &http.Transport{}, Timeout: 5 * time.Second}
			defer c.CloseIdleConnections()
			resp, err := c.Get(base + "/")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			b, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			statuses[i] = resp.StatusCode
			sizes[i] = len(b)
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	for i := 0; i < clients; i++ {
		assert.Equal(t, http.StatusNoContent, statuses[i], "client %d", i)
		assert.Zero(t, sizes[i], "client %d", i)
	}
}

func TestListen_AddrInUse(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	_, err = Listen(ln.Addr().String())
	assert.ErrorContains(t, err, "listen on "+ln.Addr().String())
}

func TestServe_ClosedListener(t *testing.T) {
	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	err = Serve(context.Background(), discard, ln, http.NotFoundHandler())
	assert.Error(t, err)
}
