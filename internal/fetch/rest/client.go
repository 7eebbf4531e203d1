// Package rest calls the introspection procedure through a PostgREST-style
// RPC endpoint: POST <base>/rest/v1/rpc/<function> authenticated with the
// service key.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/schemadump/schemadump/internal/errs"
	"github.com/schemadump/schemadump/internal/schema"
)

const defaultTimeout = 30 * time.Second

// Client is an HTTP implementation of fetch.Client.
type Client struct {
	baseURL    string
	serviceKey string
	function   string
	httpc      *http.Client
}

// New returns a Client for the given endpoint. function is the name of the
// introspection procedure exposed under /rest/v1/rpc/.
func New(baseURL, serviceKey, function string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		function:   function,
		httpc:      &http.Client{Timeout: defaultTimeout},
	}
}

// FetchSchema issues the RPC once. Transport failures and non-2xx statuses
// map to the connection kind so the fetcher retries them.
func (c *Client) FetchSchema(ctx context.Context) (*schema.Info, []byte, error) {
	url := fmt.Sprintf("%s/rest/v1/rpc/%s", c.baseURL, c.function)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrKindInvalidInput, "build rpc request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrKindConnectionFailed, "rpc call failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrKindConnectionFailed, "read rpc response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, errs.New(errs.ErrKindConnectionFailed,
			fmt.Sprintf("rpc returned %d: %s", resp.StatusCode, snippet(body)))
	}

	if isNull(body) {
		return nil, body, nil
	}

	var info schema.Info
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, body, errs.Wrap(errs.ErrKindConnectionFailed, "decode rpc payload", err)
	}
	return &info, body, nil
}

// isNull reports whether the response body is an absent payload.
func isNull(body []byte) bool {
	s := strings.TrimSpace(string(body))
	return s == "" || s == "null"
}

// snippet truncates a response body for error messages.
func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
