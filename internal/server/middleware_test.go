// If you are AI: This file contains unit tests for the HTTP middleware chain.

package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"trinity/internal/metrics"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/stream/abc":        "/stream/:id",
		"/ws/abc":            "/ws/:id",
		"/ws/publish/abc":    "/ws/publish/:id",
		"/create_stream/abc": "/create_stream/:id",
		"/load_chunk/x":      "/load_chunk/:id",
		"/streams/x":         "/streams/:id",
		"/api/streams/x":     "/api/streams/:id",
		"/api/streams":       "/api/streams",
		"/stream/":           "/stream/",
		"/login":             "/login",
		"/api/server":        "/api/server",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizePath(in), in)
	}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestRecovery(t *testing.T) {
	h := Recovery(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
}

func TestRecoveryRepanicsOnAbort(t *testing.T) {
	h := Recovery(zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	})
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), RequestLogger(zap.NewNop()), Metrics(m))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/stream/one", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/stream/two", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/stream/:id", "404")))
}

func TestResponseWriterCaptures(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := wrapResponse(rec)
	assert.Same(t, rw, wrapResponse(rw))

	_, err := rw.Write([]byte("hello"))
	require.NoError(t, err)
	rw.WriteHeader(http.StatusTeapot)
	rw.Flush()

	assert.Equal(t, http.StatusOK, rw.statusCode)
	assert.Equal(t, int64(5), rw.bytesWritten)
	assert.True(t, rec.Flushed)
	assert.Same(t, http.ResponseWriter(rec), rw.Unwrap())
}

func TestResponseWriterHijackUnsupported(t *testing.T) {
	rw := wrapResponse(httptest.NewRecorder())
	_, _, err := rw.Hijack()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "hijacking"))
}
