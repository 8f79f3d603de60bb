package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultURL   = "https://exp.host/--/api/v2/push/send"
	maxChunkSize = 100
)

// Message is the payload delivered to one device.
type Message struct {
	To    string                 `json:"to"`
	Title string                 `json:"title,omitempty"`
	Body  string                 `json:"body"`
	Data  map[string]interface{} `json:"data,omitempty"`
	Sound string                 `json:"sound,omitempty"`
}

type ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details"`
}

type sendResponse struct {
	Data   []ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// Result counts outcomes per device.
type Result struct {
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}

type Config struct {
	URL         string
	AccessToken string
	HTTPClient  *http.Client
	// MaxRetries bounds retries of one chunk on 429 and 5xx responses.
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
}

// Client sends notifications through the Expo push API.
type Client struct {
	url    string
	token  string
	http   *http.Client
	config Config
}

func NewClient(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 500 * time.Millisecond
	}
	if cfg.MaxElapsedTime <= 0 {
		cfg.MaxElapsedTime = 30 * time.Second
	}
	return &Client{url: cfg.URL, token: cfg.AccessToken, http: cfg.HTTPClient, config: cfg}
}

// ValidToken reports whether token looks like an Expo push token.
func ValidToken(token string) bool {
	for _, prefix := range []string{"ExponentPushToken[", "ExpoPushToken["} {
		if strings.HasPrefix(token, prefix) && strings.HasSuffix(token, "]") && len(token) > len(prefix)+1 {
			return true
		}
	}
	return false
}

// Send delivers msg to every valid token in chunks. Chunks that still fail
// after retries are counted as failed and their errors are joined.
func (c *Client) Send(ctx context.Context, tokens []string, msg Message) (Result, error) {
	var res Result

	valid := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if ValidToken(t) {
			valid = append(valid, t)
		} else {
			res.Skipped++
		}
	}

	var errs []error
	for i := 0; i < len(valid); i += maxChunkSize {
		end := i + maxChunkSize
		if end > len(valid) {
			end = len(valid)
		}
		chunk := make([]Message, 0, end-i)
		for _, to := range valid[i:end] {
			m := msg
			m.To = to
			chunk = append(chunk, m)
		}

		tickets, err := c.sendChunk(ctx, chunk)
		if err != nil {
			res.Failed += len(chunk)
			errs = append(errs, err)
			continue
		}
		for _, t := range tickets {
			if t.Status == "ok" {
				res.Delivered++
			} else {
				res.Failed++
			}
		}
		// a short ticket list means the rest were not accepted
		if missing := len(chunk) - len(tickets); missing > 0 {
			res.Failed += missing
		}
	}
	return res, errors.Join(errs...)
}

func (c *Client) sendChunk(ctx context.Context, chunk []Message) ([]ticket, error) {
	payload, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("encoding push messages: %w", err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.config.InitialInterval
	b.MaxElapsedTime = c.config.MaxElapsedTime
	policy := backoff.WithContext(backoff.WithMaxRetries(b, c.config.MaxRetries), ctx)

	var tickets []ticket
	err = backoff.Retry(func() error {
		var err error
		tickets, err = c.post(ctx, payload)
		return err
	}, policy)
	return tickets, err
}

func (c *Client) post(ctx context.Context, payload []byte) ([]ticket, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating push request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending push request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading push response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("push service returned status %d", resp.StatusCode)
	case resp.StatusCode >= 300:
		return nil, backoff.Permanent(fmt.Errorf("push service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var out sendResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decoding push response: %w", err))
	}
	if len(out.Errors) > 0 {
		return nil, backoff.Permanent(fmt.Errorf("push service error %s: %s", out.Errors[0].Code, out.Errors[0].Message))
	}
	return out.Data, nil
}
