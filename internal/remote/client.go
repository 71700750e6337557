// Package remote is the HTTP client for the emulsion API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vbonduro/emulsion/internal/cost"
	"github.com/vbonduro/emulsion/internal/domain"
)

// RollFilter narrows ListRolls. Zero fields are not sent.
type RollFilter struct {
	Status  *domain.Status
	OrderID string
	Search  string
	Limit   int
	Offset  int
}

type RollPage struct {
	Rolls []*domain.Roll `json:"rolls"`
	Total int            `json:"total"`
}

type ChemistryFilter struct {
	ActiveOnly    bool
	ChemistryType domain.ChemistryType
}

type chemistryList struct {
	Batches []*domain.ChemistryBatch `json:"batches"`
	Total   int                      `json:"total"`
}

type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// New returns a client for the API at baseURL. timeout bounds each call,
// including reading the response body.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, "health", http.MethodGet, "/health", nil, nil)
}

func (c *Client) ListRolls(ctx context.Context, f RollFilter) (*RollPage, error) {
	q := url.Values{}
	if f.Status != nil {
		q.Set("status", f.Status.String())
	}
	setIf(q, "order_id", f.OrderID)
	setIf(q, "search", f.Search)
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	var page RollPage
	if err := c.do(ctx, "list rolls", http.MethodGet, withQuery("/api/rolls", q), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetRoll(ctx context.Context, id string) (*domain.Roll, error) {
	return rollCall(ctx, c, "get roll", http.MethodGet, rollPath(id), nil)
}

func (c *Client) CreateRoll(ctx context.Context, d domain.RollDraft) (*domain.Roll, error) {
	return rollCall(ctx, c, "create roll", http.MethodPost, "/api/rolls", d)
}

// UpdateRoll sends a partial update; unset patch fields are omitted and
// null patch fields clear the value on the server.
func (c *Client) UpdateRoll(ctx context.Context, id string, p domain.RollPatch) (*domain.Roll, error) {
	return rollCall(ctx, c, "update roll", http.MethodPatch, rollPath(id), p)
}

func (c *Client) DeleteRoll(ctx context.Context, id string) error {
	return c.do(ctx, "delete roll", http.MethodDelete, rollPath(id), nil, nil)
}

func (c *Client) LoadRoll(ctx context.Context, id string, loaded domain.Date) (*domain.Roll, error) {
	body := map[string]domain.Date{"date_loaded": loaded}
	return rollCall(ctx, c, "load roll", http.MethodPatch, rollPath(id)+"/load", body)
}

func (c *Client) UnloadRoll(ctx context.Context, id string, unloaded domain.Date) (*domain.Roll, error) {
	body := map[string]domain.Date{"date_unloaded": unloaded}
	return rollCall(ctx, c, "unload roll", http.MethodPatch, rollPath(id)+"/unload", body)
}

func (c *Client) AssignChemistry(ctx context.Context, id, chemistryID string) (*domain.Roll, error) {
	body := map[string]string{"chemistry_id": chemistryID}
	return rollCall(ctx, c, "assign chemistry", http.MethodPatch, rollPath(id)+"/chemistry", body)
}

func (c *Client) RateRoll(ctx context.Context, id string, stars int, actualExposures *int) (*domain.Roll, error) {
	body := struct {
		Stars           int  `json:"stars"`
		ActualExposures *int `json:"actual_exposures,omitempty"`
	}{stars, actualExposures}
	return rollCall(ctx, c, "rate roll", http.MethodPatch, rollPath(id)+"/rating", body)
}

func (c *Client) ListChemistry(ctx context.Context, f ChemistryFilter) ([]*domain.ChemistryBatch, error) {
	q := url.Values{}
	if f.ActiveOnly {
		q.Set("active_only", "true")
	}
	setIf(q, "chemistry_type", string(f.ChemistryType))
	var list chemistryList
	if err := c.do(ctx, "list chemistry", http.MethodGet, withQuery("/api/chemistry", q), nil, &list); err != nil {
		return nil, err
	}
	return list.Batches, nil
}

func (c *Client) GetChemistry(ctx context.Context, id string) (*domain.ChemistryBatch, error) {
	return batchCall(ctx, c, "get chemistry", http.MethodGet, chemistryPath(id), nil)
}

func (c *Client) CreateChemistry(ctx context.Context, d domain.ChemistryDraft) (*domain.ChemistryBatch, error) {
	return batchCall(ctx, c, "create chemistry", http.MethodPost, "/api/chemistry", d)
}

func (c *Client) UpdateChemistry(ctx context.Context, id string, p domain.ChemistryPatch) (*domain.ChemistryBatch, error) {
	return batchCall(ctx, c, "update chemistry", http.MethodPatch, chemistryPath(id), p)
}

func (c *Client) DeleteChemistry(ctx context.Context, id string) error {
	return c.do(ctx, "delete chemistry", http.MethodDelete, chemistryPath(id), nil, nil)
}

func (c *Client) Stats(ctx context.Context) (*cost.Summary, error) {
	var s cost.Summary
	if err := c.do(ctx, "stats", http.MethodGet, "/api/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func rollCall(ctx context.Context, c *Client, op, method, path string, body any) (*domain.Roll, error) {
	var r domain.Roll
	if err := c.do(ctx, op, method, path, body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func batchCall(ctx context.Context, c *Client, op, method, path string, body any) (*domain.ChemistryBatch, error) {
	var b domain.ChemistryBatch
	if err := c.do(ctx, op, method, path, body, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// do performs one call. A nil body sends no payload; a nil out discards the
// response body. Every failure is returned as *Error.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindRejected, Op: op, Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		rd = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return &Error{Kind: KindRejected, Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Kind: KindUnavailable, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	c.logger.Debug("remote call", "op", op, "method", method, "path", path,
		"status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		// Non-JSON error bodies (a proxy's HTML page) leave eb empty.
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&eb)
		return statusError(op, resp.StatusCode, eb)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindUnavailable, Op: op, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func rollPath(id string) string {
	return "/api/rolls/" + url.PathEscape(id)
}

func chemistryPath(id string) string {
	return "/api/chemistry/" + url.PathEscape(id)
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
