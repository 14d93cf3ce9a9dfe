// Package replay uploads a recorded entry history to a running server the
// way the desktop tracker does: only entries newer than the server's latest
// timestamp, several uploads in flight at once.
package replay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/aimtrack/pkg/logger"
)

const userHeader = "X-User-ID"

// Config holds configuration for a replay run.
type Config struct {
	BaseURL string        // Base URL of the service
	Token   string        // Bearer token; when empty User is sent as X-User-ID
	User    string        // User id for noop-auth servers
	Workers int           // Number of concurrent uploads
	Timeout time.Duration // HTTP request timeout
	// All uploads every entry instead of only those after the latest
	// timestamp the server knows.
	All bool
}

// Entry is the upload shape of one scenario attempt.
type Entry struct {
	ID            string  `json:"id,omitempty"`
	Scenario      string  `json:"scenario"`
	Hash          string  `json:"hash"`
	Score         float64 `json:"score"`
	CTime         int64   `json:"ctime"`
	SensScale     string  `json:"sens_scale,omitempty"`
	SensIncrement float64 `json:"sens_increment,omitempty"`
	DPI           int     `json:"dpi,omitempty"`
	FOVScale      string  `json:"fov_scale,omitempty"`
	FOV           float64 `json:"fov,omitempty"`
}

// Stats summarises a replay run.
type Stats struct {
	Skipped   int
	Submitted int
	Accepted  int
	Duplicate int
	Failed    int
	Duration  time.Duration
}

type timestampResponse struct {
	CTime int64 `json:"ctime"`
}

// LoadFile reads a JSON array of entries.
func LoadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open entries: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode reads a JSON array of entries from r.
func Decode(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	return entries, nil
}

// Client talks to the entry routes of a server.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a client for cfg.
func NewClient(cfg Config) *Client {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	} else if c.cfg.User != "" {
		req.Header.Set(userHeader, c.cfg.User)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// CheckHealth verifies the service answers on /healthz.
func (c *Client) CheckHealth(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnhealthy, resp.StatusCode)
	}
	return nil
}

// LatestTimestamp asks the server for the ctime of the newest stored entry.
func (c *Client) LatestTimestamp(ctx context.Context) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/me/latest-entry-timestamp", nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("latest timestamp: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: latest timestamp status %d", ErrBadResponse, resp.StatusCode)
	}
	var ts timestampResponse
	if err := json.NewDecoder(resp.Body).Decode(&ts); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBadResponse, err)
	}
	return ts.CTime, nil
}

// Outcome is how the server answered one upload.
type Outcome int

// Upload outcomes.
const (
	Accepted Outcome = iota
	Duplicate
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Duplicate:
		return "duplicate"
	default:
		return "failed"
	}
}

// Submit uploads one entry.
func (c *Client) Submit(ctx context.Context, e *Entry) (Outcome, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return Failed, fmt.Errorf("failed to marshal entry: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/me/entries", bytes.NewReader(body))
	if err != nil {
		return Failed, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return Failed, fmt.Errorf("submit entry: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	_, _ = io.Copy(io.Discard, resp.Body)
	switch resp.StatusCode {
	case http.StatusAccepted:
		return Accepted, nil
	case http.StatusOK:
		return Duplicate, nil
	default:
		return Failed, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}
}

// Run uploads entries concurrently. Individual upload failures are counted,
// not returned; Run fails only when the server is unreachable or ctx ends.
func Run(ctx context.Context, cfg Config, entries []Entry) (Stats, error) {
	log := logger.Get().Named("replay")
	start := time.Now()
	c := NewClient(cfg)

	if err := c.CheckHealth(ctx); err != nil {
		return Stats{}, err
	}

	pending := entries
	var stats Stats
	if !cfg.All {
		latest, err := c.LatestTimestamp(ctx)
		if err != nil {
			return Stats{}, err
		}
		pending = make([]Entry, 0, len(entries))
		for i := range entries {
			if entries[i].CTime > latest {
				pending = append(pending, entries[i])
			}
		}
		stats.Skipped = len(entries) - len(pending)
	}
	if len(pending) == 0 {
		log.Info(ctx, "nothing to upload", logger.Int("skipped", stats.Skipped))
		stats.Duration = time.Since(start)
		return stats, nil
	}

	log.Info(ctx, "uploading entries",
		logger.Int("entries", len(pending)),
		logger.Int("workers", c.cfg.Workers),
	)

	var acc, dup, fail atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)
	for i := range pending {
		e := &pending[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := c.Submit(gctx, e)
			switch out {
			case Accepted:
				acc.Add(1)
			case Duplicate:
				dup.Add(1)
			default:
				fail.Add(1)
				log.Debug(gctx, "upload failed", logger.Int64("ctime", e.CTime), logger.String("outcome", out.String()), logger.Error(err))
			}
			return nil
		})
	}
	err := g.Wait()

	stats.Accepted = int(acc.Load())
	stats.Duplicate = int(dup.Load())
	stats.Failed = int(fail.Load())
	stats.Submitted = stats.Accepted + stats.Duplicate + stats.Failed
	stats.Duration = time.Since(start)

	log.Info(ctx, "upload finished",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("skipped", stats.Skipped),
		logger.Duration("duration", stats.Duration),
	)
	if err != nil {
		return stats, fmt.Errorf("replay interrupted: %w", err)
	}
	return stats, nil
}
