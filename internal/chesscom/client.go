// Package chesscom is a client for the Chess.com published-data API.
package chesscom

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/midnattssol/Chess-Statistics-Toolkit/internal/fanout"
)

// DefaultBaseURL is the public pub-API host.
const DefaultBaseURL = "https://api.chess.com"

// defaultUserAgent identifies the toolkit; the pub API throttles anonymous
// default agents aggressively.
const defaultUserAgent = "chess-statistics-toolkit/1.0"

// Profile mirrors /pub/player/{username}.
type Profile struct {
	PlayerID   int64  `json:"player_id"`
	Username   string `json:"username"`
	Name       string `json:"name,omitempty"`
	Title      string `json:"title,omitempty"`
	Country    string `json:"country,omitempty"` // URL of the country resource
	Status     string `json:"status"`
	Followers  int    `json:"followers"`
	Joined     int64  `json:"joined"`
	LastOnline int64  `json:"last_online"`
	IsStreamer bool   `json:"is_streamer"`
}

// RatingSnapshot is a rating at a point in time.
type RatingSnapshot struct {
	Rating int   `json:"rating"`
	Date   int64 `json:"date,omitempty"`
	RD     int   `json:"rd,omitempty"`
}

// Record is a win/loss/draw tally.
type Record struct {
	Win  int `json:"win"`
	Loss int `json:"loss"`
	Draw int `json:"draw"`
}

// ModeStats is the per-time-control block of the stats endpoint.
type ModeStats struct {
	Last   RatingSnapshot `json:"last"`
	Best   RatingSnapshot `json:"best"`
	Record Record         `json:"record"`
}

// Stats mirrors the game-mode fields of /pub/player/{username}/stats.
type Stats struct {
	ChessDaily  *ModeStats `json:"chess_daily,omitempty"`
	ChessRapid  *ModeStats `json:"chess_rapid,omitempty"`
	ChessBlitz  *ModeStats `json:"chess_blitz,omitempty"`
	ChessBullet *ModeStats `json:"chess_bullet,omitempty"`
}

// Player bundles a profile with its stats, the unit the batch lookup yields.
type Player struct {
	Profile Profile `json:"profile"`
	Stats   Stats   `json:"stats"`
}

// Config configures the client.
type Config struct {
	BaseURL           string         // Defaults to DefaultBaseURL
	UserAgent         string         // Defaults to defaultUserAgent
	Workers           int            // Parallel player lookups
	RequestsPerSecond float64        // Client-side rate limit, defaults to 10
	Timeout           time.Duration  // Per-request timeout, defaults to 30s
	Logger            zerolog.Logger // Logger
}

// Client talks to the Chess.com pub API.
type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// New creates a Chess.com client.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 10
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		log:     cfg.Logger,
	}
}

// PlayerProfile fetches /pub/player/{username}.
func (c *Client) PlayerProfile(ctx context.Context, username string) (Profile, error) {
	var p Profile
	err := c.get(ctx, "/pub/player/"+strings.ToLower(username), &p)
	return p, err
}

// PlayerStats fetches /pub/player/{username}/stats.
func (c *Client) PlayerStats(ctx context.Context, username string) (Stats, error) {
	var s Stats
	err := c.get(ctx, "/pub/player/"+strings.ToLower(username)+"/stats", &s)
	return s, err
}

// Player fetches profile and stats for one username.
func (c *Client) Player(ctx context.Context, username string) (Player, error) {
	var p Player
	var err error
	if p.Profile, err = c.PlayerProfile(ctx, username); err != nil {
		return Player{}, err
	}
	if p.Stats, err = c.PlayerStats(ctx, username); err != nil {
		return Player{}, err
	}
	return p, nil
}

// Players fetches profile and stats for each username through the bounded
// pool. Unknown accounts are silently dropped; result order is completion
// order.
func (c *Client) Players(ctx context.Context, usernames []string) ([]Player, error) {
	names := dedupe(usernames)
	if len(names) == 0 {
		return nil, nil
	}
	c.log.Debug().Int("players", len(names)).Msg("fetching chess.com players")
	return fanout.Map(ctx, names, c.cfg.Workers, c.Player)
}

// CountryPlayers fetches the usernames registered under an ISO 3166 alpha-2
// country code (including Chess.com's private-use codes like XW for Wales).
// Countries with very many accounts can exceed the API's response limits.
func (c *Client) CountryPlayers(ctx context.Context, isoAlpha2 string) ([]string, error) {
	code := strings.ToUpper(strings.TrimSpace(isoAlpha2))
	if len(code) != 2 {
		return nil, fmt.Errorf("chesscom: invalid country code %q", isoAlpha2)
	}
	var out struct {
		Players []string `json:"players"`
	}
	if err := c.get(ctx, "/pub/country/"+code+"/players", &out); err != nil {
		return nil, err
	}
	return out.Players, nil
}

// get performs one rate-limited GET and decodes the JSON body. A 404 comes
// back wrapping fanout.ErrSkip and a 429 as a fanout.Retryable so batch
// callers get the drop/retry behavior for free.
func (c *Client) get(ctx context.Context, path string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("chesscom: %s: %w", path, fanout.ErrSkip)
	case http.StatusTooManyRequests:
		c.log.Warn().Str("path", path).Msg("chess.com rate limit, backing off")
		return &fanout.Retryable{Err: fmt.Errorf("chesscom: %s: %s", path, resp.Status)}
	default:
		return fmt.Errorf("chesscom: %s: unexpected status %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("chesscom: %s: decode: %w", path, err)
	}
	return nil
}

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
