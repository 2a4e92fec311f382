package launchpad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIRoot is the anonymous Launchpad web-service endpoint.
const DefaultAPIRoot = "https://api.launchpad.net/devel"

// Publication statuses reported for sources and binaries.
const (
	StatusPending   = "Pending"
	StatusPublished = "Published"
)

// Build states reported for binary builds.
const (
	BuildStateNeedsBuilding     = "Needs building"
	BuildStateCurrentlyBuilding = "Currently building"
	BuildStateUploading         = "Uploading build"
	BuildStateSuccess           = "Successfully built"
)

// SourcePublication is one entry from getPublishedSources.
type SourcePublication struct {
	SourceName string `json:"source_package_name"`
	Version    string `json:"source_package_version"`
	Status     string `json:"status"`
}

// Build is one entry from getBuilds.
type Build struct {
	ArchTag    string `json:"arch_tag"`
	BuildState string `json:"buildstate"`
}

// BinaryPublication is one entry from getPublishedBinaries.
type BinaryPublication struct {
	BinaryName string `json:"binary_package_name"`
	Status     string `json:"status"`
}

// Archive identifies a PPA by its owning team and archive name.
type Archive struct {
	Team string
	PPA  string
}

func (a Archive) validate() error {
	if strings.TrimSpace(a.Team) == "" || strings.TrimSpace(a.PPA) == "" {
		return errors.New("launchpad: archive team and ppa are required")
	}
	return nil
}

// ClientOption customises the Launchpad client.
type ClientOption func(*Client)

// WithAPIRoot points the client at a different web-service root. Tests use it
// to target an httptest server.
func WithAPIRoot(root string) ClientOption {
	return func(c *Client) {
		trimmed := strings.TrimRight(strings.TrimSpace(root), "/")
		if trimmed != "" {
			c.apiRoot = trimmed
		}
	}
}

// WithClientHTTPClient injects a custom HTTP client.
func WithClientHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// Client performs anonymous read-only calls against the Launchpad web
// service: just enough surface to track a package through a PPA.
type Client struct {
	apiRoot    string
	httpClient *http.Client
}

// NewClient constructs a Client against the production API root unless
// overridden.
func NewClient(options ...ClientOption) *Client {
	client := &Client{
		apiRoot:    DefaultAPIRoot,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(client)
	}
	return client
}

// PublishedSources lists publication records for a source package version in
// the archive, most recent first.
func (c *Client) PublishedSources(ctx context.Context, archive Archive, sourceName, version string) ([]SourcePublication, error) {
	query := url.Values{
		"ws.op":         {"getPublishedSources"},
		"source_name":   {sourceName},
		"version":       {version},
		"order_by_date": {"true"},
	}
	var out []SourcePublication
	if err := c.collection(ctx, archive, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Builds lists binary builds for the archive.
func (c *Client) Builds(ctx context.Context, archive Archive) ([]Build, error) {
	var out []Build
	if err := c.collection(ctx, archive, url.Values{"ws.op": {"getBuilds"}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PublishedBinaries lists binary publication records for the archive.
func (c *Client) PublishedBinaries(ctx context.Context, archive Archive) ([]BinaryPublication, error) {
	var out []BinaryPublication
	if err := c.collection(ctx, archive, url.Values{"ws.op": {"getPublishedBinaries"}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// collectionEnvelope is the standard Launchpad collection wrapper.
type collectionEnvelope struct {
	Entries json.RawMessage `json:"entries"`
}

func (c *Client) collection(ctx context.Context, archive Archive, query url.Values, dest any) error {
	if err := archive.validate(); err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/~%s/+archive/ubuntu/%s?%s",
		c.apiRoot, url.PathEscape(archive.Team), url.PathEscape(archive.PPA), query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("launchpad: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("launchpad: %s: %w", query.Get("ws.op"), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("launchpad: %s against ~%s/%s: unexpected status %s",
			query.Get("ws.op"), archive.Team, archive.PPA, resp.Status)
	}

	var envelope collectionEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("launchpad: decode %s response: %w", query.Get("ws.op"), err)
	}
	if len(envelope.Entries) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Entries, dest); err != nil {
		return fmt.Errorf("launchpad: decode %s entries: %w", query.Get("ws.op"), err)
	}
	return nil
}
