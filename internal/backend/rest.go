package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/felixgeelhaar/pmos/internal/errors"
)

// APIError is an error body returned by the backend.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
	return e.Message
}

// Exists reports whether table has at least one row where column equals value.
func (c *Client) Exists(ctx context.Context, table, column, value string) (bool, error) {
	q := url.Values{}
	q.Set("select", column)
	q.Set(column, "eq."+value)
	q.Set("limit", "1")

	req, err := c.newRequest(ctx, http.MethodGet, "/rest/v1/"+url.PathEscape(table)+"?"+q.Encode(), nil, c.serverKey())
	if err != nil {
		return false, err
	}

	resp, err := c.do(ctx, "exists", table, req)
	if err != nil {
		return false, err
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return false, statusError("exists "+table, resp)
	}

	var rows []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return false, errors.Wrap(errors.ErrCodeBackendDecode, "failed to decode rows from "+table, err)
	}
	return len(rows) > 0, nil
}

// RPC invokes the stored procedure fn with args (nil sends an empty
// object) and returns the raw JSON result. A JSON error body from the backend
// is returned as *APIError.
func (c *Client) RPC(ctx context.Context, fn string, args any) (json.RawMessage, error) {
	if args == nil {
		args = struct{}{}
	}
	body, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rpc arguments: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/rest/v1/rpc/"+url.PathEscape(fn), bytes.NewReader(body), c.serverKey())
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, "rpc", fn, req)
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeBackendDecode, "failed to read rpc response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) == nil && apiErr.Message != "" {
			return nil, apiErr
		}
		return nil, errors.NewBackendStatusError("rpc "+fn, resp.StatusCode, truncate(string(raw)))
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(raw), nil
}

func statusError(operation string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	apiErr := &APIError{Status: resp.StatusCode}
	if json.Unmarshal(raw, apiErr) == nil && apiErr.Message != "" {
		return errors.Wrap(errors.ErrCodeBackendStatus, fmt.Sprintf("%s: status %d", operation, resp.StatusCode), apiErr)
	}
	return errors.NewBackendStatusError(operation, resp.StatusCode, truncate(string(raw)))
}

func truncate(s string) string {
	const limit = 200
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
