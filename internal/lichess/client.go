// Package lichess is a client for the pieces of the Lichess API this toolkit
// consumes, chiefly the bulk user-stats endpoint.
package lichess

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/fanout"
)

// DefaultBaseURL is the public Lichess instance.
const DefaultBaseURL = "https://lichess.org"

// defaultChunkSize is the documented maximum number of ids per
// POST /api/users request.
const defaultChunkSize = 300

// Perf is a per-time-control rating block.
type Perf struct {
	Games  int  `json:"games"`
	Rating int  `json:"rating"`
	RD     int  `json:"rd"`
	Prog   int  `json:"prog"`
	Prov   bool `json:"prov,omitempty"`
}

// User mirrors the fields of the /api/users response this toolkit reads.
type User struct {
	ID        string          `json:"id"`
	Username  string          `json:"username"`
	Title     string          `json:"title,omitempty"`
	Patron    bool            `json:"patron,omitempty"`
	CreatedAt int64           `json:"createdAt"`
	SeenAt    int64           `json:"seenAt"`
	Perfs     map[string]Perf `json:"perfs"`
}

// Config configures the client.
type Config struct {
	BaseURL   string         // Defaults to DefaultBaseURL
	ChunkSize int            // Ids per bulk request, defaults to 300
	Workers   int            // Parallel bulk requests
	Timeout   time.Duration  // Per-request timeout, defaults to 30s
	Logger    zerolog.Logger // Logger
}

// Client talks to the Lichess API.
type Client struct {
	cfg Config
	hc  *http.Client
	log zerolog.Logger
}

// New creates a Lichess client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ChunkSize <= 0 || cfg.ChunkSize > defaultChunkSize {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
		log: cfg.Logger,
	}
}

// UsersByIDs fetches stats for the given usernames. Input is deduplicated
// case-insensitively and split into chunks the bulk endpoint accepts; chunks
// are fetched in parallel. Usernames without an account are silently absent
// from the result, so the output may be shorter than the input.
func (c *Client) UsersByIDs(ctx context.Context, usernames []string) ([]User, error) {
	ids := dedupe(usernames)
	if len(ids) == 0 {
		return nil, nil
	}

	chunks := chunk(ids, c.cfg.ChunkSize)
	c.log.Debug().Int("ids", len(ids)).Int("chunks", len(chunks)).Msg("fetching lichess users")

	batches, err := fanout.Map(ctx, chunks, c.cfg.Workers, c.fetchChunk)
	if err != nil {
		return nil, err
	}

	var users []User
	for _, b := range batches {
		users = append(users, b...)
	}
	return users, nil
}

func (c *Client) fetchChunk(ctx context.Context, ids []string) ([]User, error) {
	body := strings.NewReader(strings.Join(ids, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/users", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		c.log.Warn().Int("ids", len(ids)).Msg("lichess rate limit, backing off")
		return nil, &fanout.Retryable{Err: fmt.Errorf("lichess: %s", resp.Status)}
	case http.StatusNotFound:
		return nil, fmt.Errorf("lichess: %s: %w", resp.Status, fanout.ErrSkip)
	default:
		return nil, fmt.Errorf("lichess: unexpected status %s", resp.Status)
	}

	var users []User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("lichess: decode users: %w", err)
	}
	return users, nil
}

// dedupe trims, drops empties, and deduplicates case-insensitively while
// keeping first-seen order.
func dedupe(usernames []string) []string {
	seen := make(map[string]struct{}, len(usernames))
	out := make([]string, 0, len(usernames))
	for _, u := range usernames {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		key := strings.ToLower(u)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, u)
	}
	return out
}

func chunk(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > size {
		chunks = append(chunks, ids[:size])
		ids = ids[size:]
	}
	return append(chunks, ids)
}
