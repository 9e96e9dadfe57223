// Package cli implements the ledgerctl subcommands on top of the ledger API.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hotteokboki/lseed-project/internal/interfaces/http/dto"
	"github.com/hotteokboki/lseed-project/internal/interfaces/http/handler"
	"github.com/hotteokboki/lseed-project/internal/interfaces/http/middleware"
)

// APIError is a non-2xx answer of the ledger API
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("ledger api: HTTP %d", e.Status)
	}
	return fmt.Sprintf("ledger api: %s: %s (HTTP %d)", e.Code, e.Message, e.Status)
}

// Scope narrows an analytics view
type Scope struct {
	From      string
	To        string
	ProgramID string
	UnitID    string
	Degrade   bool
}

func (s Scope) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("from", s.From)
	set("to", s.To)
	set("programId", s.ProgramID)
	set("unitId", s.UnitID)
	if s.Degrade {
		v.Set("degrade", "true")
	}
	return v
}

// Client talks to a running ledger service
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the API rooted at server
func NewClient(server string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{base: strings.TrimRight(server, "/") + "/api/v1", http: hc}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

// call sends one request and returns the data member of the envelope
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body []byte, header http.Header) (json.RawMessage, http.Header, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, resp.Header, nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, nil, &APIError{Status: resp.StatusCode, Message: string(raw)}
	}
	if resp.StatusCode >= 300 || !env.Success {
		apiErr := &APIError{Status: resp.StatusCode}
		if env.Error != nil {
			apiErr.Code, apiErr.Message = env.Error.Code, env.Error.Message
		}
		return nil, nil, apiErr
	}
	return env.Data, resp.Header, nil
}

// ImportPath maps a report kind to its upload endpoint
func ImportPath(kind string) (string, error) {
	switch kind {
	case "cash_in":
		return "/imports/cash-in", nil
	case "cash_out":
		return "/imports/cash-out", nil
	case "inventory":
		return "/imports/inventory", nil
	}
	return "", fmt.Errorf("unknown report kind %q (want cash_in, cash_out or inventory)", kind)
}

// Import uploads one payload. replayed is set when the server answered from
// a stored receipt.
func (c *Client) Import(ctx context.Context, kind string, body []byte, idempotencyKey string) (data json.RawMessage, replayed bool, err error) {
	path, err := ImportPath(kind)
	if err != nil {
		return nil, false, err
	}
	h := http.Header{}
	if idempotencyKey != "" {
		h.Set(middleware.IdempotencyKeyHeader, idempotencyKey)
	}
	data, respHeader, err := c.call(ctx, http.MethodPost, path, nil, body, h)
	if err != nil {
		return nil, false, err
	}
	return data, respHeader.Get(handler.ReplayedHeader) == "true", nil
}

// Reopen deletes the guard of a unit-month-kind
func (c *Client) Reopen(ctx context.Context, unitID, month, kind string) error {
	q := url.Values{"unitId": {unitID}, "month": {month}, "kind": {kind}}
	_, _, err := c.call(ctx, http.MethodDelete, "/imports/guards", q, nil, nil)
	return err
}

// Heatmap fetches the unit by indicator grid
func (c *Client) Heatmap(ctx context.Context, s Scope) (dto.HeatmapResponse, error) {
	var out dto.HeatmapResponse
	return out, c.get(ctx, "/analytics/heatmap", s, &out)
}

// CategoryHealth fetches the portfolio overview
func (c *Client) CategoryHealth(ctx context.Context, s Scope) (dto.OverviewResponse, error) {
	var out dto.OverviewResponse
	return out, c.get(ctx, "/analytics/category-health", s, &out)
}

// KPIs fetches the finance summary
func (c *Client) KPIs(ctx context.Context, s Scope) (dto.KPIResponse, error) {
	var out dto.KPIResponse
	return out, c.get(ctx, "/analytics/kpis", s, &out)
}

func (c *Client) get(ctx context.Context, path string, s Scope, out any) error {
	data, _, err := c.call(ctx, http.MethodGet, path, s.values(), nil, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
