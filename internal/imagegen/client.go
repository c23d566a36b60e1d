// Package imagegen is the client for the deck-sheet rendering service.
package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/deckbuilder/internal/cards"
	"github.com/ramonehamilton/deckbuilder/internal/deck"
)

var (
	// ErrNoLeader is returned when a render is requested for a deck without
	// an active leader. No request is sent.
	ErrNoLeader = errors.New("deck has no leader")

	// ErrRenderFailed is returned when the renderer answers with a non-2xx status.
	ErrRenderFailed = errors.New("image generation failed")

	// ErrNotConfigured is returned when no renderer URL is set.
	ErrNotConfigured = errors.New("image generator is not configured")
)

const (
	defaultTimeout        = 60 * time.Second
	defaultRateLimitDelay = 1 * time.Second
	defaultMaxImageBytes  = 20 << 20

	// DefaultFilename is the download name of a rendered sheet.
	DefaultFilename = "deck_image.png"
)

// Config configures a Client.
type Config struct {
	URL            string
	Timeout        time.Duration
	RateLimitDelay time.Duration
	UserAgent      string
	MaxImageBytes  int64
	HTTPClient     *http.Client
}

// Client posts decks to the renderer.
type Client struct {
	url           string
	httpClient    *http.Client
	rateLimiter   *rate.Limiter
	userAgent     string
	maxImageBytes int64
}

// NewClient creates a renderer client.
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.RateLimitDelay == 0 {
		config.RateLimitDelay = defaultRateLimitDelay
	}
	if config.UserAgent == "" {
		config.UserAgent = "deckbuilder/1.0"
	}
	if config.MaxImageBytes == 0 {
		config.MaxImageBytes = defaultMaxImageBytes
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		url:           config.URL,
		httpClient:    client,
		rateLimiter:   rate.NewLimiter(rate.Every(config.RateLimitDelay), 1),
		userAgent:     config.UserAgent,
		maxImageBytes: config.MaxImageBytes,
	}
}

// Request is the body posted to the renderer.
type Request struct {
	Deck     deck.CountMap  `json:"deck"`
	LeaderID string         `json:"leaderId"`
	AllCards []cards.Record `json:"allCards,omitempty"`
	DeckName string         `json:"deckName,omitempty"`
}

// NewRequest builds a request from a deck state. When catalog is non-empty
// the records of the cards it holds are forwarded as allCards.
func NewRequest(state deck.State, name string, catalog []cards.Card) Request {
	req := Request{
		Deck:     state.Deck.Normalize(),
		LeaderID: state.Leader(),
		DeckName: name,
	}
	if len(catalog) > 0 {
		req.AllCards = make([]cards.Record, 0, len(catalog))
		for _, c := range catalog {
			req.AllCards = append(req.AllCards, c.Source)
		}
	}
	return req
}

// Image is a rendered deck sheet.
type Image struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Render posts the deck and returns the rendered image.
func (c *Client) Render(ctx context.Context, req Request) (*Image, error) {
	if strings.TrimSpace(req.LeaderID) == "" {
		return nil, ErrNoLeader
	}
	if c.url == "" {
		return nil, ErrNotConfigured
	}
	if req.Deck == nil {
		req.Deck = deck.CountMap{}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode render request: %w", err)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "image/png, image/*")
	httpReq.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[ImageGen] Renderer returned %d for leader %s: %s", resp.StatusCode, req.LeaderID, strings.TrimSpace(string(msg)))
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image: %v", ErrRenderFailed, err)
	}
	if int64(len(data)) > c.maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrRenderFailed, c.maxImageBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	log.Printf("[ImageGen] Rendered %d bytes for leader %s in %v", len(data), req.LeaderID, time.Since(start))

	return &Image{
		Data:        data,
		ContentType: contentType,
		Filename:    DefaultFilename,
	}, nil
}

// StatusError carries the renderer's non-2xx status. It matches ErrRenderFailed.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("image generation failed: %s", e.Status)
}

// Is makes errors.Is(err, ErrRenderFailed) hold.
func (e *StatusError) Is(target error) bool {
	return target == ErrRenderFailed
}
