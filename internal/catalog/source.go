package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
)

// Source fetches the raw catalog records.
type Source interface {
	Fetch(ctx context.Context) ([]cards.Record, error)
	String() string
}

// FileSource reads a catalog from a local .json, .yaml or .yml file.
type FileSource struct {
	Path string
}

// NewFileSource creates a file source.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Fetch reads and decodes the file.
func (s *FileSource) Fetch(ctx context.Context) ([]cards.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", s.Path, err)
	}
	return decodeRecords(data, filepath.Ext(s.Path))
}

func (s *FileSource) String() string {
	return "file:" + s.Path
}

func decodeRecords(data []byte, ext string) ([]cards.Record, error) {
	var records []cards.Record
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse YAML catalog: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse JSON catalog: %w", err)
		}
	}
	if records == nil {
		records = []cards.Record{}
	}
	return records, nil
}

const (
	defaultRateLimitDelay = 500 * time.Millisecond
	defaultRequestTimeout = 30 * time.Second
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	maxBackoff            = 16 * time.Second
)

// HTTPSourceConfig configures an HTTPSource.
type HTTPSourceConfig struct {
	URL            string
	Timeout        time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	RateLimitDelay time.Duration
	UserAgent      string
	HTTPClient     *http.Client
}

// HTTPSource fetches a JSON catalog over HTTP with rate limiting and retry.
type HTTPSource struct {
	url            string
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	userAgent      string
	maxRetries     int
	initialBackoff time.Duration
}

// NewHTTPSource creates an HTTP source.
func NewHTTPSource(config HTTPSourceConfig) *HTTPSource {
	if config.Timeout == 0 {
		config.Timeout = defaultRequestTimeout
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = defaultMaxRetries
	}
	if config.InitialBackoff == 0 {
		config.InitialBackoff = defaultInitialBackoff
	}
	if config.RateLimitDelay == 0 {
		config.RateLimitDelay = defaultRateLimitDelay
	}
	if config.UserAgent == "" {
		config.UserAgent = "deckbuilder/1.0"
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	return &HTTPSource{
		url:            config.URL,
		httpClient:     client,
		rateLimiter:    rate.NewLimiter(rate.Every(config.RateLimitDelay), 1),
		userAgent:      config.UserAgent,
		maxRetries:     config.MaxRetries,
		initialBackoff: config.InitialBackoff,
	}
}

func (s *HTTPSource) String() string {
	return "http:" + s.url
}

// StatusError reports a non-retryable HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog request to %s failed with status %d", e.URL, e.StatusCode)
}

// Fetch downloads and decodes the catalog. Network errors, 429 and 5xx
// responses are retried with exponential backoff.
func (s *HTTPSource) Fetch(ctx context.Context) ([]cards.Record, error) {
	var lastErr error
	backoff := s.initialBackoff

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = min(backoff*2, maxBackoff)
		}

		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		records, wait, err := s.fetchOnce(ctx)
		if err == nil {
			return records, nil
		}
		lastErr = err

		if isPermanent(err) {
			return nil, err
		}
		if wait > 0 {
			backoff = wait
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (s *HTTPSource) fetchOnce(ctx context.Context) ([]cards.Record, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, 0, &permanentError{err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read response body: %w", err)
		}
		records, err := decodeRecords(body, ".json")
		if err != nil {
			return nil, 0, &permanentError{err: err}
		}
		return records, 0, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, retryAfter(resp.Header.Get("Retry-After")), fmt.Errorf("rate limited (HTTP 429)")
	case resp.StatusCode >= 500:
		return nil, 0, fmt.Errorf("server error (HTTP %d)", resp.StatusCode)
	default:
		return nil, 0, &StatusError{URL: s.url, StatusCode: resp.StatusCode}
	}
}

// permanentError marks a failure that retrying cannot fix, such as a body
// that arrived but could not be parsed.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func isPermanent(err error) bool {
	var statusErr *StatusError
	var permErr *permanentError
	return errors.As(err, &statusErr) || errors.As(err, &permErr)
}

func retryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
