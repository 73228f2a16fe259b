package sparql

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/mentions/internal/cache"
	"github.com/ppiankov/mentions/internal/model"
	"github.com/ppiankov/mentions/internal/util"
)

const sampleResults = `{
  "head": {"vars": ["sp", "date"]},
  "results": {"bindings": [
    {"sp": {"type": "uri", "value": "http://ldf.fi/semparl/speeches/s2015_1_081_154"},
     "date": {"type": "literal", "datatype": "http://www.w3.org/2001/XMLSchema#date", "value": "2015-10-01"}}
  ]}
}`

func noSleep(t *testing.T) {
	t.Helper()
	orig := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) {}
	t.Cleanup(func() { fetchSleepFunc = orig })
}

func testClient(endpoint string, opts ...Option) *Client {
	cfg := model.EndpointConfig{
		URL:          endpoint,
		Timeout:      5 * time.Second,
		UserAgent:    "mentions-test/0.1",
		MaxBodyBytes: 1 << 20,
		Retries:      3,
	}
	return NewClient(cfg, model.BreakerConfig{MaxFailures: 10, Timeout: time.Second}, opts...)
}

func TestSelect_Success(t *testing.T) {
	var gotQuery, gotAccept, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		gotQuery = form.Get("query")
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", resultsMediaType)
		_, _ = fmt.Fprint(w, sampleResults)
	}))
	defer server.Close()

	res, err := testClient(server.URL).Select(context.Background(), "SELECT ?sp WHERE { ?sp ?p ?o }")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotQuery != "SELECT ?sp WHERE { ?sp ?p ?o }" {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if gotAccept != resultsMediaType {
		t.Errorf("unexpected Accept %q", gotAccept)
	}
	if gotUA != "mentions-test/0.1" {
		t.Errorf("unexpected User-Agent %q", gotUA)
	}
	if len(res.Results.Bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(res.Results.Bindings))
	}
	if got := res.Results.Bindings[0]["date"].Datatype; got != XSDDate {
		t.Errorf("unexpected datatype %q", got)
	}
	if len(res.Head.Vars) != 2 {
		t.Errorf("expected 2 vars, got %v", res.Head.Vars)
	}
}

func TestSelect_TransientThenSuccess(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, sampleResults)
	}))
	defer server.Close()

	if _, err := testClient(server.URL).Select(context.Background(), "q"); err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestSelect_PermanentFailure(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Select(context.Background(), "q")
	if err == nil {
		t.Fatal("Expected error for 400, got nil")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected StatusError 400, got %v", err)
	}
	if attempts.Load() != 1 {
		t.Errorf("400 must not be retried, got %d attempts", attempts.Load())
	}
}

func TestSelect_AllRetriesExhausted(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	if _, err := testClient(server.URL).Select(context.Background(), "q"); err == nil {
		t.Fatal("Expected error after all retries exhausted")
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestSelect_CircuitOpens(t *testing.T) {
	noSleep(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := model.EndpointConfig{URL: server.URL, Timeout: time.Second, Retries: 5}
	client := NewClient(cfg, model.BreakerConfig{MaxFailures: 2, Timeout: time.Minute})

	_, err := client.Select(context.Background(), "q")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Expected ErrCircuitOpen, got %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("Expected the breaker to stop after 2 requests, got %d", attempts.Load())
	}
	if client.breaker.State() != "open" {
		t.Errorf("Expected open breaker, got %s", client.breaker.State())
	}
}

func TestSelect_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, sampleResults)
	}))
	defer server.Close()

	cfg := model.EndpointConfig{URL: server.URL, Timeout: time.Second, MaxBodyBytes: 16, Retries: 1}
	client := NewClient(cfg, model.BreakerConfig{})
	if _, err := client.Select(context.Background(), "q"); err == nil {
		t.Fatal("Expected error for oversized body")
	}
}

func TestSelect_Cache(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		_, _ = fmt.Fprint(w, sampleResults)
	}))
	defer server.Close()

	client := testClient(server.URL, WithCache(cache.NewMemoryCache(time.Minute, time.Minute)))

	for i := 0; i < 3; i++ {
		res, err := client.Select(context.Background(), "q")
		if err != nil {
			t.Fatalf("Select %d failed: %v", i, err)
		}
		if len(res.Results.Bindings) != 1 {
			t.Fatalf("Select %d: expected 1 binding", i)
		}
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected one request with cache enabled, got %d", attempts.Load())
	}
}

func TestSelect_RobotsDisallow(t *testing.T) {
	var queries atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nDisallow: /sparql\n")
			return
		}
		queries.Add(1)
		_, _ = fmt.Fprint(w, sampleResults)
	}))
	defer server.Close()

	cfg := model.EndpointConfig{URL: server.URL + "/sparql", Timeout: time.Second, Retries: 1, RespectRobots: true, UserAgent: "mentions/0.1"}
	client := NewClient(cfg, model.BreakerConfig{})

	_, err := client.Select(context.Background(), "q")
	if !errors.Is(err, util.ErrDisallowed) {
		t.Fatalf("Expected ErrDisallowed, got %v", err)
	}
	if queries.Load() != 0 {
		t.Errorf("Expected no query to reach the endpoint, got %d", queries.Load())
	}
}

func TestSelect_RobotsCrawlDelay(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nCrawl-delay: 30\n")
			return
		}
		_, _ = fmt.Fprint(w, sampleResults)
	}))
	defer server.Close()

	cfg := model.EndpointConfig{URL: server.URL + "/sparql", Timeout: time.Second, Retries: 1, RespectRobots: true, UserAgent: "mentions/0.1"}
	client := NewClient(cfg, model.BreakerConfig{})

	if _, err := client.Select(context.Background(), "q"); err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if client.limiter.Allow(server.URL + "/sparql") {
		t.Error("Expected crawl delay to throttle the endpoint host")
	}
}

func TestIsRetryableFetchError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"503", &StatusError{503, "503 Service Unavailable"}, true},
		{"500", &StatusError{500, "500 Internal Server Error"}, true},
		{"429", &StatusError{429, "429 Too Many Requests"}, true},
		{"404", &StatusError{404, "404 Not Found"}, false},
		{"400", &StatusError{400, "400 Bad Request"}, false},
		{"transport", errors.New("fetch: connection refused"), true},
		{"request", errors.New("create request: invalid URL"), false},
		{"body", errors.New("read body: unexpected EOF"), false},
		{"breaker", ErrCircuitOpen, false},
		{"deadline", fmt.Errorf("fetch: %w", context.DeadlineExceeded), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableFetchError(tt.err); got != tt.retryable {
				t.Errorf("isRetryableFetchError(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}
