package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func clearProxyEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HTTP_PROXY", "HTTPS_PROXY", "NO_PROXY", "http_proxy", "https_proxy", "no_proxy"} {
		t.Setenv(k, "")
	}
}

func TestNewProxyFunc_Override(t *testing.T) {
	clearProxyEnv(t)

	proxy := NewProxyFunc("http://proxy.local:3128", "", "ldf.fi")

	req, _ := http.NewRequest(http.MethodPost, "http://example.org/sparql", nil)
	u, err := proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u == nil || u.Host != "proxy.local:3128" {
		t.Errorf("expected proxy.local:3128, got %v", u)
	}

	req, _ = http.NewRequest(http.MethodPost, "http://ldf.fi/semparl/sparql", nil)
	u, err = proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u != nil {
		t.Errorf("expected no proxy for NO_PROXY host, got %v", u)
	}
}

func TestNewProxyFunc_Environment(t *testing.T) {
	clearProxyEnv(t)

	proxy := NewProxyFunc("", "", "")
	req, _ := http.NewRequest(http.MethodGet, "http://example.org/", nil)
	u, err := proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u != nil {
		t.Errorf("expected direct connection, got %v", u)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mentions/0.1 (+https://github.com/ppiankov/mentions)", "mentions"},
		{"curl/8.0", "curl"},
		{"Googlebot", "Googlebot"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeUserAgent(tt.in); got != tt.want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func robotsServer(t *testing.T, body string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(status)
		_, _ = fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRobotsChecker(t *testing.T) {
	server := robotsServer(t, "User-agent: mentions\nDisallow: /private\nCrawl-delay: 5\n\nUser-agent: *\nDisallow: /\n", http.StatusOK)
	checker := NewRobotsChecker(nil, "mentions/0.1")
	ctx := context.Background()

	delay, err := checker.Check(ctx, server.URL+"/sparql")
	if err != nil {
		t.Fatalf("expected /sparql to be allowed, got %v", err)
	}
	if delay != 5*time.Second {
		t.Errorf("expected crawl delay 5s, got %v", delay)
	}

	if _, err := checker.Check(ctx, server.URL+"/private/x"); !errors.Is(err, ErrDisallowed) {
		t.Errorf("expected ErrDisallowed, got %v", err)
	}

	other := NewRobotsChecker(nil, "otherbot/1.0")
	if _, err := other.Check(ctx, server.URL+"/sparql"); !errors.Is(err, ErrDisallowed) {
		t.Errorf("expected ErrDisallowed for other agents, got %v", err)
	}
}

func TestRobotsChecker_MissingRobots(t *testing.T) {
	server := robotsServer(t, "", http.StatusNotFound)
	checker := NewRobotsChecker(nil, "mentions/0.1")

	delay, err := checker.Check(context.Background(), server.URL+"/sparql")
	if err != nil || delay != 0 {
		t.Errorf("expected allow without delay, got %v, %v", delay, err)
	}
}

func TestRobotsChecker_Unreachable(t *testing.T) {
	checker := NewRobotsChecker(&http.Client{Timeout: time.Second}, "mentions/0.1")

	if _, err := checker.Check(context.Background(), "http://127.0.0.1:1/sparql"); err != nil {
		t.Errorf("unreachable robots.txt must allow, got %v", err)
	}
}
