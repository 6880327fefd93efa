// Package upstream is the typed REST client for the external school API
// that owns every entity the gateway renders. The gateway never holds
// authoritative state: all reads here are cache fills and all writes are
// followed by a re-fetch.
package upstream

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

	"go.uber.org/zap"

	"github.com/turma-apps/turma-web/pkg/config"
	appErrors "github.com/turma-apps/turma-web/pkg/errors"
)

// Observer is notified of every school API call, for instrumentation.
type Observer func(operation string, err error, duration time.Duration)

// Client talks to the school API. Calls carry the session's bearer token
// explicitly; the client itself is stateless and safe for concurrent use.
type Client struct {
	baseURL  *url.URL
	httpc    *http.Client
	logger   *zap.Logger
	observer Observer
}

// WithObserver attaches call instrumentation.
func (c *Client) WithObserver(observer Observer) *Client {
	c.observer = observer
	return c
}

// New builds a Client for the configured base URL.
func New(cfg config.UpstreamConfig, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: base,
		httpc:   &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}, nil
}

// errorBody is the FastAPI-style error payload.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func (c *Client) do(ctx context.Context, token, method, path string, query url.Values, body, out interface{}) (err error) {
	if c.observer != nil {
		start := time.Now()
		defer func() { c.observer(method+" "+path, err, time.Since(start)) }()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, token, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, appErrors.ErrUnavailable.Message)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= http.StatusBadRequest {
		return c.asError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "decode school API response")
	}
	return nil
}

// download fetches a binary resource, returning the body stream and its
// content type. The caller owns closing the stream.
func (c *Client) download(ctx context.Context, token, path string) (body io.ReadCloser, contentType string, err error) {
	if c.observer != nil {
		start := time.Now()
		defer func() { c.observer("GET "+path, err, time.Since(start)) }()
	}
	req, err := c.newRequest(ctx, token, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, appErrors.ErrUnavailable.Message)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close() //nolint:errcheck
		return nil, "", c.asError(resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) newRequest(ctx context.Context, token, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := *c.baseURL
	target.Path = strings.TrimRight(target.Path, "/") + path
	if query != nil {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build upstream request")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) asError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	detail := decodeDetail(raw)

	c.logger.Warn("school API error",
		zap.Int("status", resp.StatusCode),
		zap.String("detail", detail),
	)

	// The upstream reports the duplicate-session-date constraint as a bare
	// 500 with a descriptive detail, so sniff it into a conflict.
	if resp.StatusCode >= 500 && isDuplicateDetail(detail) {
		return appErrors.Clone(appErrors.ErrConflict, detail)
	}
	return appErrors.FromUpstreamStatus(resp.StatusCode, detail)
}

// decodeDetail extracts the human message from a FastAPI error body. The
// detail field is usually a string but validation failures ship an array.
func decodeDetail(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body.Detail, &items); err == nil && len(items) > 0 {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func isDuplicateDetail(detail string) bool {
	lower := strings.ToLower(detail)
	return strings.Contains(lower, "duplicate") || strings.Contains(lower, "already exists")
}
