package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	manualPath = "/search/manual"
	promptPath = "/search/prompt"

	maxResponseBytes = 8 << 20
)

// StatusError is returned when the search backend answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("search: %s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("search: %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client talks to the remote search backend.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client for baseURL. rps <= 0 disables client-side rate limiting.
func NewClient(baseURL string, timeout time.Duration, rps float64) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: timeout,
		},
	}
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return c
}

func endpointFor(mode Mode) (string, error) {
	switch mode {
	case ModeManual:
		return manualPath, nil
	case ModePrompt:
		return promptPath, nil
	}
	return "", ErrInvalidMode
}

func requestBody(p Payload) (any, error) {
	switch p.Mode {
	case ModeManual:
		return manualBody{
			StartDate: formatDate(p.StartDate),
			EndDate:   formatDate(p.EndDate),
			Keywords:  p.Keywords,
			Preacher:  p.Preacher,
		}, nil
	case ModePrompt:
		return promptBody{Prompt: p.Prompt}, nil
	}
	return nil, ErrInvalidMode
}

// FetchResults posts the payload to the endpoint matching its mode and
// decodes the videos and audios from the answer.
func (c *Client) FetchResults(ctx context.Context, p Payload) (SearchResponse, error) {
	path, err := endpointFor(p.Mode)
	if err != nil {
		return SearchResponse{}, err
	}
	body, err := requestBody(p)
	if err != nil {
		return SearchResponse{}, err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: encode payload: %w", err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return SearchResponse{}, fmt.Errorf("search: rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return SearchResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return SearchResponse{}, fmt.Errorf("search: read %s: %w", path, err)
	}

	log.WithFields(log.Fields{
		"endpoint": path,
		"status":   resp.StatusCode,
		"took":     time.Since(start).Truncate(time.Millisecond).String(),
	}).Debug("search backend answered")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SearchResponse{}, &StatusError{
			Endpoint:   path,
			StatusCode: resp.StatusCode,
			Body:       snippet(raw),
		}
	}

	out, err := decodeResponse(raw)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
