package betydb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"hyperspectral/internal/config"
	"hyperspectral/internal/services"
)

// HTTPDoer describes the HTTP client used for submissions.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Submitter uploads a trait CSV.
type Submitter interface {
	Submit(ctx context.Context, csvPath string) error
}

// Disabled discards submissions.
type Disabled struct{}

func (Disabled) Submit(context.Context, string) error { return nil }

// Client posts trait CSVs to a BETYdb traits endpoint.
type Client struct {
	endpoint string
	key      string
	client   HTTPDoer
}

// NewConfiguredSubmitter returns a Client when BETYdb submission is enabled
// and configured, otherwise Disabled.
func NewConfiguredSubmitter(cfg *config.Config) Submitter {
	if cfg == nil || !cfg.BETYdb.Enabled {
		return Disabled{}
	}
	if strings.TrimSpace(cfg.BETYdb.URL) == "" || strings.TrimSpace(cfg.BETYdb.Key) == "" {
		return Disabled{}
	}
	return NewClient(cfg.BETYdb.URL, cfg.BETYdb.Key, http.DefaultClient)
}

// NewClient constructs a Client for the given traits.csv endpoint.
func NewClient(endpoint, key string, client HTTPDoer) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		endpoint: strings.TrimSpace(endpoint),
		key:      strings.TrimSpace(key),
		client:   client,
	}
}

// Submit posts the CSV at csvPath.
func (c *Client) Submit(ctx context.Context, csvPath string) error {
	data, err := os.ReadFile(csvPath)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "betydb", "read traits", csvPath, err)
	}
	target, err := url.Parse(c.endpoint)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "betydb", "parse url", c.endpoint, err)
	}
	query := target.Query()
	query.Set("key", c.key)
	target.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(data))
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "betydb", "build request", csvPath, err)
	}
	req.Header.Set("Content-Type", "text/csv")

	resp, err := c.client.Do(req)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "betydb", "submit traits", csvPath, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.Wrap(services.ErrExternalTool, "betydb", "submit traits",
			fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}
	return nil
}
