// If you are AI: This file contains unit tests for API handlers.
// Tests verify JSON responses and error handling.

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"trinity/internal/auth"
	"trinity/internal/config"
	"trinity/internal/core/bus"
	"trinity/internal/svc/reaper"
)

func newTestService(registry *bus.Registry, authn *auth.Authenticator) *Service {
	if authn == nil {
		authn = auth.NewAuthenticator(nil, zap.NewNop())
	}
	rp := reaper.NewManager(registry, time.Minute, time.Second, nil, zap.NewNop())
	return NewService(registry, rp, authn, nil, zap.NewNop(), []string{"http_stream", "ws_stream", "ingest"})
}

// fakeSession records Close.
type fakeSession struct{ closed bool }

// ID returns a fixed id.
func (f *fakeSession) ID() string { return "fake" }

// Close records the call.
func (f *fakeSession) Close() error {
	f.closed = true
	return nil
}

func TestHandleServer(t *testing.T) {
	service := newTestService(bus.MustNewRegistry(4), nil)

	req := httptest.NewRequest("GET", "/api/server", nil)
	w := httptest.NewRecorder()

	service.handleServer(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response ServerResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.Version == "" {
		t.Error("Version should not be empty")
	}
	if response.Uptime < 0 {
		t.Error("Uptime should be non-negative")
	}
	if response.GoVersion == "" {
		t.Error("GoVersion should not be empty")
	}
	if len(response.EnabledServices) != 3 {
		t.Errorf("Expected 3 enabled services, got %v", response.EnabledServices)
	}
}

func TestHandleStreams(t *testing.T) {
	registry := bus.MustNewRegistry(4)
	service := newTestService(registry, nil)

	// Test empty streams
	req := httptest.NewRequest("GET", "/api/streams", nil)
	w := httptest.NewRecorder()

	service.handleStreams(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response StreamsResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response.Streams) != 0 {
		t.Errorf("Expected 0 streams, got %d", len(response.Streams))
	}

	// Test with streams
	registry.Create("b", "Bravo", bus.Metadata{ProducerID: 9, HasProducer: true})
	a, _ := registry.Create("a", "Alpha", bus.Metadata{})
	a.LoadChunk([]byte{1, 2, 3, 4})

	w2 := httptest.NewRecorder()
	service.handleStreams(w2, httptest.NewRequest("GET", "/api/streams", nil))

	var response2 StreamsResponse
	if err := json.NewDecoder(w2.Body).Decode(&response2); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response2.Streams) != 2 {
		t.Fatalf("Expected 2 streams, got %d", len(response2.Streams))
	}
	if response2.Streams[0].ID != "a" || response2.Streams[0].Bytes != 4 {
		t.Errorf("Stream info incorrect: %+v", response2.Streams[0])
	}
	if !response2.Streams[1].HasProducer || response2.Streams[1].ProducerID != 9 {
		t.Errorf("Stream b should report producer 9: %+v", response2.Streams[1])
	}
}

func TestHandleStreamDelete(t *testing.T) {
	registry := bus.MustNewRegistry(4)
	service := newTestService(registry, nil)
	mux := http.NewServeMux()
	service.RegisterRoutes(mux)

	sess := &fakeSession{}
	registry.Create("radio1", "", bus.Metadata{Session: sess})

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/streams/radio1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !sess.closed {
		t.Error("Session should be closed on administrative removal")
	}
	if _, ok := registry.Get("radio1"); ok {
		t.Error("Stream should be removed")
	}

	w = httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/streams/radio1", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestHandleStreamDeleteRequiresAdmin(t *testing.T) {
	issuer := auth.NewIssuer(config.AuthConfig{Secret: "api-test-secret-0123456789", TokenTTL: time.Hour})
	registry := bus.MustNewRegistry(4)
	service := newTestService(registry, auth.NewAuthenticator(issuer, zap.NewNop()))
	mux := http.NewServeMux()
	service.RegisterRoutes(mux)
	registry.Create("radio1", "", bus.Metadata{})

	token, _ := issuer.Issue(auth.Identity{UserID: 5, Name: "dj"})
	req := httptest.NewRequest("DELETE", "/api/streams/radio1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
	if _, ok := registry.Get("radio1"); !ok {
		t.Error("Stream should survive a forbidden delete")
	}
}

func TestHandleReaper(t *testing.T) {
	service := newTestService(bus.MustNewRegistry(4), nil)

	w := httptest.NewRecorder()
	service.handleReaper(w, httptest.NewRequest("GET", "/api/reaper", nil))

	var stats reaper.Stats
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !stats.Enabled || stats.IdleTimeout != "1m0s" {
		t.Errorf("Unexpected reaper stats: %+v", stats)
	}

	w = httptest.NewRecorder()
	service.handleReaper(w, httptest.NewRequest("POST", "/api/reaper", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}
