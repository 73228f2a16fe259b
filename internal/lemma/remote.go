package lemma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ppiankov/mentions/internal/worker"
)

// RemoteAnalyzer queries an HTTP analysis service:
// GET <base>?word=<word> returning a JSON array of {"BASEFORM": ..., "CLASS": ...}
type RemoteAnalyzer struct {
	baseURL    string
	httpClient *http.Client
	limiter    *worker.Limiter
}

// NewRemoteAnalyzer creates a remote analyzer; limiter may be nil
func NewRemoteAnalyzer(baseURL string, timeout time.Duration, limiter *worker.Limiter) *RemoteAnalyzer {
	if limiter == nil {
		limiter = worker.NewLimiter(0, 1)
	}
	return &RemoteAnalyzer{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

// Analyze asks the service for the readings of word
func (r *RemoteAnalyzer) Analyze(ctx context.Context, word string) ([]Analysis, error) {
	if err := r.limiter.Wait(ctx, r.baseURL); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	u, err := url.Parse(r.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse analyzer URL: %w", err)
	}
	q := u.Query()
	q.Set("word", word)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("analyze %q: %w", word, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyze %q: unexpected status: %d", word, resp.StatusCode)
	}

	var analyses []Analysis
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&analyses); err != nil {
		return nil, fmt.Errorf("decode analyses for %q: %w", word, err)
	}
	return analyses, nil
}
