// Package client talks to the documents service over HTTP. It satisfies the
// autosave store interface so an editing session can run away from the
// database.
package client

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

	"takeoff/internal/annotation/models"
	"takeoff/internal/documents/repository"
)

// ============================================================
// Documents Client
// ============================================================

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sends an Authorization bearer header on every call.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, options ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) Load(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	if err := c.do(ctx, http.MethodGet, "/documents/"+url.PathEscape(id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) Save(ctx context.Context, id string, fields models.SaveFields) error {
	return c.do(ctx, http.MethodPatch, "/documents/"+url.PathEscape(id), fields, nil)
}

func (c *Client) Rename(ctx context.Context, id, name string) error {
	body := map[string]string{"name": name}
	return c.do(ctx, http.MethodPut, "/documents/"+url.PathEscape(id)+"/name", body, nil)
}

// Create registers doc with the service and fills in the generated fields.
func (c *Client) Create(ctx context.Context, doc *models.Document) error {
	return c.do(ctx, http.MethodPost, "/documents", doc, doc)
}

func (c *Client) List(ctx context.Context, projectID string) ([]models.Document, error) {
	path := "/documents"
	if projectID != "" {
		path += "?project=" + url.QueryEscape(projectID)
	}
	var out struct {
		Documents []models.Document `json:"documents"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/documents/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", repository.ErrNotFound, path)
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, errorMessage(data))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(data))
}
