// internal/adapters/catalog/client.go
package catalog

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"gamerental/internal/adapters/observability"
	"gamerental/internal/domain"
)

// Client talks to the Strapi-style catalog service. Responses use a `data`
// envelope; list endpoints answer filter queries with zero or more items.
type Client struct {
	base  string
	hc    *http.Client
	token string
	rl    *rate.Limiter
}

func New(base, token string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("catalog base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		hc:    &http.Client{Timeout: 20 * time.Second},
		token: token,
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// Resource aliases: the catalog historically exposed Spanish collection names.
// Each read tries the modern name first and falls back on 404.
var resourceAliases = map[string][]string{
	"games":        {"games", "videojuegos"},
	"platforms":    {"platforms", "plataformas"},
	"reservations": {"reservations", "reservas"},
}

/********** Public API **********/

func (c *Client) ListPlatforms(ctx context.Context) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("populate", "image")
	return c.getList(ctx, "platforms", q)
}

func (c *Client) GetPlatformBySlug(ctx context.Context, slug string) (map[string]any, error) {
	q := url.Values{}
	q.Set("filters[slug][$eq]", slug)
	q.Set("populate[image]", "true")
	q.Set("populate[games][populate]", "cover,gallery,platforms")
	return c.getOne(ctx, "platforms", q)
}

func (c *Client) ListGames(ctx context.Context, gq domain.GamesQuery) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("populate", "cover,platforms")
	if gq.PlatformID != nil {
		q.Set("filters[platforms][id][$eq]", strconv.FormatInt(*gq.PlatformID, 10))
	}
	return c.getList(ctx, "games", q)
}

func (c *Client) GetGameBySlug(ctx context.Context, slug string) (map[string]any, error) {
	q := url.Values{}
	q.Set("filters[slug][$eq]", slug)
	q.Set("populate", "*")
	return c.getOne(ctx, "games", q)
}

func (c *Client) ResolveGameID(ctx context.Context, slug string) (int64, error) {
	q := url.Values{}
	q.Set("filters[slug][$eq]", slug)
	q.Set("fields[0]", "id")
	item, err := c.getOne(ctx, "games", q)
	if err != nil {
		return 0, err
	}
	switch v := item["id"].(type) {
	case float64:
		return int64(v), nil
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("catalog: game %q has no usable id", slug)
}

func (c *Client) ListReservationsOverlapping(ctx context.Context, gameID int64, r domain.DateRange) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("filters[game][id][$eq]", strconv.FormatInt(gameID, 10))
	// Inclusive overlap: existing.start <= candidate.end AND existing.end >= candidate.start.
	q.Set("filters[startDate][$lte]", r.End.Format(domain.DateLayout))
	q.Set("filters[endDate][$gte]", r.Start.Format(domain.DateLayout))
	return c.getList(ctx, "reservations", q)
}

// CreateReservation posts exactly one creation request. It is never retried:
// a duplicate POST could double-book, so transient failures surface to the
// caller instead.
func (c *Client) CreateReservation(ctx context.Context, req domain.Reservation, idemKey string) (map[string]any, error) {
	body := map[string]any{
		"data": map[string]any{
			"game":          req.GameID,
			"startDate":     req.Dates.Start.Format(domain.DateLayout),
			"endDate":       req.Dates.End.Format(domain.DateLayout),
			"customerName":  req.Customer.Name,
			"customerEmail": req.Customer.Email,
			"customerPhone": req.Customer.Phone,
		},
	}
	for _, res := range resourceAliases["reservations"] {
		out, err := c.post(ctx, c.base+"/"+res, body, idemKey)
		if errors.Is(err, domain.ErrNotFound) {
			continue // unknown collection name; nothing was created
		}
		return out, err
	}
	return nil, domain.ErrNotFound
}

/********** Envelope handling **********/

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

type apiError struct {
	Status  int    `json:"status"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (c *Client) getList(ctx context.Context, resource string, q url.Values) ([]map[string]any, error) {
	var env envelope
	if err := c.getFirst(ctx, c.candidates(resource, q), resource, &env); err != nil {
		return nil, err
	}
	return decodeItems(env.Data)
}

// getOne runs a filter query and returns the first item, or ErrNotFound when
// the filter matched nothing.
func (c *Client) getOne(ctx context.Context, resource string, q url.Values) (map[string]any, error) {
	items, err := c.getList(ctx, resource, q)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNotFound
	}
	return items[0], nil
}

// decodeItems tolerates both a JSON array and a single object under `data`.
func decodeItems(raw json.RawMessage) ([]map[string]any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var one map[string]any
		if err := json.Unmarshal(raw, &one); err != nil {
			return nil, fmt.Errorf("catalog: decode data object: %w", err)
		}
		return []map[string]any{one}, nil
	}
	var many []map[string]any
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("catalog: decode data array: %w", err)
	}
	return many, nil
}

func (c *Client) candidates(resource string, q url.Values) []string {
	names := resourceAliases[resource]
	if len(names) == 0 {
		names = []string{resource}
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		u := c.base + "/" + n
		if enc := q.Encode(); enc != "" {
			u += "?" + enc
		}
		out = append(out, u)
	}
	return out
}

func (c *Client) getFirst(ctx context.Context, urls []string, endpoint string, out any) error {
	var last error
	for _, u := range urls {
		if err := c.get(ctx, u, endpoint, out); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				last = err
				continue // try legacy collection name
			}
			return err // non-404: stop early
		}
		return nil
	}
	if last != nil {
		return last
	}
	return errors.New("catalog: no candidate URL succeeded")
}

/********** HTTP internals **********/

// get performs a GET with client-side rate limiting, retries, and JSON decode
// into out. Retries on 429 and transient 5xx, honoring Retry-After.
func (c *Client) get(ctx context.Context, u, endpoint string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		c.setHeaders(req)

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("catalog", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal("catalog", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusNoContent:
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrNotFound

		case http.StatusUnauthorized:
			resp.Body.Close()
			return domain.ErrUnauthorized

		case http.StatusForbidden:
			resp.Body.Close()
			return domain.ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	return lastErr
}

// post sends one write request, rate-limited but without retries.
func (c *Client) post(ctx context.Context, u string, body any, idemKey string) (map[string]any, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("catalog", "reservations.create", 0, time.Since(start))
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	defer resp.Body.Close()
	observability.ObserveExternal("catalog", "reservations.create", resp.StatusCode, time.Since(start))

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("catalog: decode create response: %w", err)
		}
		items, err := decodeItems(env.Data)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			return map[string]any{}, nil
		}
		return items[0], nil

	case http.StatusNotFound:
		return nil, domain.ErrNotFound

	case http.StatusUnauthorized:
		return nil, domain.ErrUnauthorized

	case http.StatusForbidden:
		return nil, domain.ErrForbidden

	case http.StatusConflict:
		return nil, fmt.Errorf("%w: %s", domain.ErrConflict, errMessage(raw))

	case http.StatusBadRequest:
		msg := errMessage(raw)
		// Some catalog backends report range collisions as a 400 validation
		// error rather than a 409.
		if low := strings.ToLower(msg); strings.Contains(low, "overlap") ||
			strings.Contains(low, "unavailable") || strings.Contains(low, "unique") ||
			strings.Contains(low, "taken") {
			return nil, fmt.Errorf("%w: %s", domain.ErrConflict, msg)
		}
		return nil, fmt.Errorf("catalog rejected reservation: %s", msg)

	default:
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "gamerental/1.0")
}

func errMessage(raw []byte) string {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% concurrency-safe jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
