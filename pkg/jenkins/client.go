package jenkins

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryDelay     = 2 * time.Second
)

// ClientOption customises the Jenkins client.
type ClientOption func(*Client)

// WithHTTPClient injects a custom HTTP client (timeouts, proxies, transport
// stubs for tests).
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithCredentials sets the user and API token used for basic auth.
func WithCredentials(user, token string) ClientOption {
	return func(c *Client) {
		c.user = user
		c.token = token
	}
}

// WithRetry overrides the transient-failure retry policy.
func WithRetry(attempts uint, delay time.Duration) ClientOption {
	return func(c *Client) {
		c.retryAttempts = attempts
		c.retryDelay = delay
	}
}

// Client talks to a Jenkins controller's REST surface: probing for existing
// jobs and creating or updating their config.xml documents.
type Client struct {
	baseURL       string
	user          string
	token         string
	httpClient    *http.Client
	retryAttempts uint
	retryDelay    time.Duration
}

// NewClient constructs a Client for the controller at baseURL.
func NewClient(baseURL string, options ...ClientOption) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errors.New("jenkins: base URL is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("jenkins: invalid base URL %q: %w", baseURL, err)
	}

	client := &Client{
		baseURL:       trimmed,
		retryAttempts: defaultRetryAttempts,
		retryDelay:    defaultRetryDelay,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return client, nil
}

// JobExists probes for a job by name.
func (c *Client) JobExists(ctx context.Context, name string) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/job/%s/config.xml", c.baseURL, url.PathEscape(name)), "", nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("jenkins: probe job %q: unexpected status %s", name, resp.Status)
	}
}

// CreateOrUpdateJob pushes a rendered config.xml, creating the job when it
// does not exist yet and updating it in place when it does.
func (c *Client) CreateOrUpdateJob(ctx context.Context, name, configXML string) error {
	exists, err := c.JobExists(ctx, name)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/createItem?name=%s", c.baseURL, url.QueryEscape(name))
	if exists {
		endpoint = fmt.Sprintf("%s/job/%s/config.xml", c.baseURL, url.PathEscape(name))
	}

	return retry.Do(
		func() error {
			resp, err := c.do(ctx, http.MethodPost, endpoint, "text/xml", strings.NewReader(configXML))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)

			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
			return fmt.Errorf("jenkins: submit job %q: unexpected status %s", name, resp.Status)
		},
		retry.RetryIf(func(error) bool { return ctx.Err() == nil }),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
	)
}

// crumbResponse is the payload of Jenkins' CSRF crumb issuer.
type crumbResponse struct {
	Crumb             string `json:"crumb"`
	CrumbRequestField string `json:"crumbRequestField"`
}

func (c *Client) fetchCrumb(ctx context.Context) (*crumbResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/crumbIssuer/api/json", nil)
	if err != nil {
		return nil, fmt.Errorf("jenkins: crumb request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jenkins: fetch crumb: %w", err)
	}
	defer resp.Body.Close()

	// Controllers without CSRF protection respond 404; that is not an error.
	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("jenkins: fetch crumb: unexpected status %s", resp.Status)
	}

	var crumb crumbResponse
	if err := json.NewDecoder(resp.Body).Decode(&crumb); err != nil {
		return nil, fmt.Errorf("jenkins: decode crumb: %w", err)
	}
	return &crumb, nil
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body io.Reader) (*http.Response, error) {
	var payload []byte
	if body != nil {
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("jenkins: read request body: %w", err)
		}
		payload = data
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("jenkins: build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	c.authorize(req)

	if method == http.MethodPost {
		crumb, err := c.fetchCrumb(ctx)
		if err != nil {
			return nil, err
		}
		if crumb != nil && crumb.CrumbRequestField != "" {
			req.Header.Set(crumb.CrumbRequestField, crumb.Crumb)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jenkins: %s %s: %w", method, endpoint, err)
	}
	return resp, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.user != "" || c.token != "" {
		req.SetBasicAuth(c.user, c.token)
	}
}
