package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"main/internal/session"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const (
	defaultTimeout = 20 * time.Second

	codeOK = 200
)

// Option defines the REST client configuration.
type Option struct {
	// BaseURL is the platform origin. Optional; default http://localhost:8080.
	BaseURL string
	// Timeout bounds each request. Optional; default 20s.
	Timeout time.Duration
	// HTTPClient overrides the transport. Optional.
	HTTPClient *http.Client
}

// Client wraps the platform REST surface. Every response travels in the
// `{code, msg, data}` envelope; a 401 clears the local session the same way
// the realtime forced-logout path does.
type Client struct {
	base    string
	http    *http.Client
	session *session.Store
}

// New builds a client bound to a session store.
func New(sess *session.Store, option ...Option) *Client {
	var opt Option
	if len(option) != 0 {
		opt = option[0]
	}
	if opt.BaseURL == "" {
		opt.BaseURL = "http://localhost:8080"
	}
	if opt.Timeout <= 0 {
		opt.Timeout = defaultTimeout
	}
	client := opt.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opt.Timeout}
	}
	return &Client{
		base:    strings.TrimRight(opt.BaseURL, "/"),
		http:    client,
		session: sess,
	}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	target := c.base + path
	if len(query) != 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encode body for %s", path)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Wrapf(err, "build request %s", path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// Mirror the forced-logout path: local state is cleared immediately.
		logs.Warnf("api: %s unauthorized, clearing session", path)
		c.session.Logout()
		return errors.Wrap(exception.ErrUnauthorized, path)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return errors.Wrapf(exception.ErrBadEnvelope, "%s: %+v", path, err)
	}
	if env.Code != codeOK {
		return errors.Wrapf(exception.ErrRequestRejected, "%s: code %d, %s", path, env.Code, env.Msg)
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrapf(exception.ErrBadEnvelope, "%s: decode data: %+v", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) put(ctx context.Context, path string, body any, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Page is the common paging query.
type Page struct {
	Page int
	Size int
}

func (p Page) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	return v
}
