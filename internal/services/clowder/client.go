package clowder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"hyperspectral/internal/config"
	"hyperspectral/internal/services"
)

// HTTPDoer describes the HTTP client used by the Clowder service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Metadata is one JSON-LD metadata record attached to a dataset.
type Metadata struct {
	Agent struct {
		Name string `json:"name"`
	} `json:"agent"`
	Content map[string]any `json:"content"`
}

// Service defines the Clowder operations used by the pipeline.
type Service interface {
	DownloadMetadata(ctx context.Context, datasetID, extractor string) ([]Metadata, error)
	UploadFile(ctx context.Context, datasetID, path string) (string, error)
	EnsureDatasetHierarchy(ctx context.Context, names ...string) (string, error)
}

// Disabled is the Service used when Clowder is not configured; every call
// is a no-op.
type Disabled struct{}

func (Disabled) DownloadMetadata(context.Context, string, string) ([]Metadata, error) {
	return nil, nil
}

func (Disabled) UploadFile(context.Context, string, string) (string, error) { return "", nil }

func (Disabled) EnsureDatasetHierarchy(context.Context, ...string) (string, error) { return "", nil }

// Client is the HTTP-backed Service.
type Client struct {
	baseURL string
	key     string
	space   string
	client  HTTPDoer
}

// NewConfiguredService returns a Client when Clowder is enabled and fully
// configured, otherwise Disabled.
func NewConfiguredService(cfg *config.Config) Service {
	if cfg == nil || !cfg.Clowder.Enabled {
		return Disabled{}
	}
	if strings.TrimSpace(cfg.Clowder.URL) == "" || strings.TrimSpace(cfg.Clowder.Key) == "" {
		return Disabled{}
	}
	return NewClient(cfg.Clowder.URL, cfg.Clowder.Key, cfg.Clowder.Space, http.DefaultClient)
}

// NewClient constructs an HTTP-backed Clowder client.
func NewClient(baseURL, key, space string, client HTTPDoer) *Client {
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		key:     strings.TrimSpace(key),
		space:   strings.TrimSpace(space),
		client:  client,
	}
}

// DownloadMetadata returns the dataset's metadata records, filtered to one
// extractor when extractor is non-empty.
func (c *Client) DownloadMetadata(ctx context.Context, datasetID, extractor string) ([]Metadata, error) {
	query := url.Values{}
	if extractor != "" {
		query.Set("extractor", extractor)
	}
	var records []Metadata
	if err := c.getJSON(ctx, "/api/datasets/"+url.PathEscape(datasetID)+"/metadata.jsonld", query, &records); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "clowder", "download metadata", datasetID, err)
	}
	return records, nil
}

// HasExtractorMetadata reports whether any record was written by extractor.
func HasExtractorMetadata(records []Metadata, extractor string) bool {
	if extractor == "" {
		return false
	}
	for _, record := range records {
		if strings.Contains(record.Agent.Name, extractor) {
			return true
		}
	}
	return false
}

// UploadFile uploads path into the dataset and returns the new file ID.
func (c *Client) UploadFile(ctx context.Context, datasetID, path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "clowder", "open upload", path, err)
	}
	defer fh.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("File", filepath.Base(path))
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "clowder", "build upload", path, err)
	}
	if _, err := io.Copy(part, fh); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "clowder", "build upload", path, err)
	}
	if err := writer.Close(); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "clowder", "build upload", path, err)
	}

	var created struct {
		ID string `json:"id"`
	}
	endpoint := "/api/uploadToDataset/" + url.PathEscape(datasetID)
	if err := c.send(ctx, http.MethodPost, endpoint, writer.FormDataContentType(), &body, &created); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "clowder", "upload file", path, err)
	}
	return created.ID, nil
}

// EnsureDatasetHierarchy finds or creates a chain of collections named by
// all but the last element of names, then finds or creates a dataset named
// by the last element inside the innermost collection. It returns the
// dataset ID.
func (c *Client) EnsureDatasetHierarchy(ctx context.Context, names ...string) (string, error) {
	if len(names) == 0 {
		return "", services.Wrap(services.ErrExternalTool, "clowder", "ensure hierarchy", "no dataset name", nil)
	}
	parent := ""
	for _, name := range names[:len(names)-1] {
		id, err := c.ensureCollection(ctx, name, parent)
		if err != nil {
			return "", services.Wrap(services.ErrExternalTool, "clowder", "ensure collection", name, err)
		}
		parent = id
	}
	leaf := names[len(names)-1]
	id, err := c.ensureDataset(ctx, leaf, parent)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "clowder", "ensure dataset", leaf, err)
	}
	return id, nil
}

type namedResource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Client) ensureCollection(ctx context.Context, name, parent string) (string, error) {
	var found []namedResource
	query := url.Values{"title": {name}, "exact": {"true"}}
	if err := c.getJSON(ctx, "/api/collections", query, &found); err != nil {
		return "", err
	}
	for _, item := range found {
		if item.Name == name {
			return item.ID, nil
		}
	}

	payload := map[string]any{"name": name, "description": ""}
	endpoint := "/api/collections"
	if c.space != "" {
		payload["space"] = c.space
	}
	if parent != "" {
		payload["parent_collection"] = parent
		endpoint = "/api/collections/newCollectionWithParent"
	}
	var created namedResource
	if err := c.postJSON(ctx, endpoint, payload, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (c *Client) ensureDataset(ctx context.Context, name, collection string) (string, error) {
	var found []namedResource
	query := url.Values{"title": {name}, "exact": {"true"}}
	if err := c.getJSON(ctx, "/api/datasets", query, &found); err != nil {
		return "", err
	}
	for _, item := range found {
		if item.Name == name {
			return item.ID, nil
		}
	}

	payload := map[string]any{"name": name}
	if c.space != "" {
		payload["space"] = []string{c.space}
	}
	if collection != "" {
		payload["collection"] = []string{collection}
	}
	var created namedResource
	if err := c.postJSON(ctx, "/api/datasets/createempty", payload, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, endpoint, query, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.send(ctx, http.MethodPost, endpoint, "application/json", bytes.NewReader(data), out)
}

func (c *Client) send(ctx context.Context, method, endpoint, contentType string, body io.Reader, out any) error {
	req, err := c.newRequest(ctx, method, endpoint, nil, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader) (*http.Request, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("key", c.key)
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint+"?"+query.Encode(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s returned %d: %s", req.Method, req.URL.Path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}
