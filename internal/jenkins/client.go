// Package jenkins is a small client for the parts of the Jenkins JSON API the bot uses.
package jenkins

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/altinukshini/jenkins-bot/internal/ci"
)

const maxErrorBody = 4096

type Client struct {
	http     *http.Client
	baseURL  string
	username string
	token    string
	log      logrus.FieldLogger
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient returns a client for the Jenkins server at baseURL. Reads use the
// username/token pair; triggers use the credentials of the requesting user.
func NewClient(baseURL, username, token string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid jenkins url %q", baseURL)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		baseURL:  baseURL,
		username: username,
		token:    token,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the absolute URL for a path relative to the server root.
func (c *Client) URL(path string) string {
	return c.baseURL + strings.TrimPrefix(path, "/")
}

// Get fetches path as JSON into result. A nil result discards the body.
func (c *Client) Get(ctx context.Context, path string, params url.Values, result interface{}) error {
	target := c.URL(path)
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.token)
	}

	resp, err := c.do(req, "GET "+path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if result == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Post sends an empty POST authenticated as creds. path may carry a query string.
func (c *Client) Post(ctx context.Context, path string, creds ci.Credentials) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(path), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(creds.User, creds.Token)

	resp, err := c.do(req, "POST "+path)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

func (c *Client) do(req *http.Request, op string) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c.log.WithFields(logrus.Fields{"op": op, "status": resp.StatusCode}).Debug("jenkins request")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &ci.ResponseError{Context: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

// jobPath maps a job's full name to its URL path; folders nest as job/a/job/b.
func jobPath(fullName string) string {
	segments := strings.Split(fullName, "/")
	for i, s := range segments {
		segments[i] = "job/" + url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func tree(spec string) url.Values {
	return url.Values{"tree": []string{spec}}
}
