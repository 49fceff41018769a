// Package actions serves GitHub Actions workflows as CI jobs: workflows are
// jobs, workflow runs are builds and workflow_dispatch inputs are parameters.
package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
	"github.com/sirupsen/logrus"

	"github.com/altinukshini/jenkins-bot/internal/ci"
)

const defaultHost = "github.com"

type Client struct {
	rest      *ghAPI.RESTClient
	owner     string
	repo      string
	ref       string
	host      string
	transport http.RoundTripper
	log       logrus.FieldLogger

	mu        sync.Mutex
	workflows map[string]Workflow
}

type Option func(*Client)

// WithRef sets the git ref workflow dispatches run on.
func WithRef(ref string) Option {
	return func(c *Client) {
		if ref != "" {
			c.ref = ref
		}
	}
}

func WithHost(host string) Option {
	return func(c *Client) {
		if host != "" {
			c.host = host
		}
	}
}

// WithTransport replaces the HTTP transport of every client created.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient returns a client for owner/repo. Reads use token, or the gh CLI
// credentials when token is empty; dispatches use the requesting user's token.
func NewClient(owner, repo, token string, opts ...Option) (*Client, error) {
	c := &Client{
		owner: owner,
		repo:  repo,
		ref:   "main",
		host:  defaultHost,
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	rest, err := c.restClient(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client (is gh authenticated?): %w", err)
	}
	c.rest = rest
	return c, nil
}

func (c *Client) restClient(token string) (*ghAPI.RESTClient, error) {
	if token == "" && c.transport == nil {
		return ghAPI.DefaultRESTClient()
	}
	return ghAPI.NewRESTClient(ghAPI.ClientOptions{
		AuthToken: token,
		Host:      c.host,
		Transport: c.transport,
	})
}

func (c *Client) repoPath(path string) string {
	return fmt.Sprintf("repos/%s/%s/%s", c.owner, c.repo, path)
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	err := c.rest.DoWithContext(ctx, http.MethodGet, c.repoPath(path), nil, result)
	return responseError("GET "+path, err)
}

func post(ctx context.Context, rest *ghAPI.RESTClient, path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}
	err = rest.DoWithContext(ctx, http.MethodPost, path, bytes.NewReader(data), nil)
	return responseError("POST "+path, err)
}

// responseError converts GitHub API errors into *ci.ResponseError so callers
// can treat both CI providers alike.
func responseError(op string, err error) error {
	if err == nil {
		return nil
	}
	var httpErr *ghAPI.HTTPError
	if errors.As(err, &httpErr) {
		return &ci.ResponseError{Context: op, StatusCode: httpErr.StatusCode, Body: httpErr.Message}
	}
	return fmt.Errorf("%s: %w", op, err)
}
