package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wolfeidau/offices/internal/models"
	"github.com/wolfeidau/offices/internal/office"
)

// Config holds common client configuration
type Config struct {
	ServerURL string
	Token     string
	Timeout   time.Duration
	// CacheDir enables a persistent response cache. Empty keeps it in memory.
	CacheDir string
	Debug    bool
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		ServerURL: "http://localhost:8080",
		Timeout:   30 * time.Second,
		Debug:     false,
	}
}

// APIError is returned for any non-success response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// StatusCode returns the HTTP status of err when it is an *APIError, otherwise 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// Client talks to the offices REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the API at cfg.ServerURL.
func New(cfg Config) *Client {
	transport := &bearerTransport{token: cfg.Token, base: http.DefaultTransport}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.ServerURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newCachingTransport(cfg.CacheDir, transport),
			// PUT answers 303 with the office in the body
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// ListOffices returns one page. cursor is the value of the previous page's
// cursor field, passed through as received.
func (c *Client) ListOffices(ctx context.Context, cursor string) (*office.Page, error) {
	path := "/offices"
	if cursor != "" {
		path += "?cursor=" + cursor
	}

	var page office.Page
	if err := c.do(ctx, http.MethodGet, path, nil, &page, http.StatusOK); err != nil {
		return nil, err
	}
	return &page, nil
}

// WalkOffices calls fn for every office of the caller, following cursors
// until the server stops returning a next link.
func (c *Client) WalkOffices(ctx context.Context, fn func(*models.Office) error) error {
	cursor := ""
	for {
		page, err := c.ListOffices(ctx, cursor)
		if err != nil {
			return err
		}

		for _, o := range page.Offices {
			if err := fn(o); err != nil {
				return err
			}
		}

		if page.Next == "" || page.Cursor == "" {
			return nil
		}
		cursor = page.Cursor
	}
}

// GetOffice fetches a single office.
func (c *Client) GetOffice(ctx context.Context, id string) (*models.Office, error) {
	var o models.Office
	if err := c.do(ctx, http.MethodGet, "/offices/"+id, nil, &o, http.StatusOK); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOffice creates an office from fields.
func (c *Client) CreateOffice(ctx context.Context, fields map[string]any) (*models.Office, error) {
	var o models.Office
	if err := c.do(ctx, http.MethodPost, "/offices", fields, &o, http.StatusCreated); err != nil {
		return nil, err
	}
	return &o, nil
}

// ReplaceOffice overwrites every editable field of an office.
func (c *Client) ReplaceOffice(ctx context.Context, id string, fields map[string]any) (*models.Office, error) {
	var o models.Office
	if err := c.do(ctx, http.MethodPut, "/offices/"+id, fields, &o, http.StatusSeeOther); err != nil {
		return nil, err
	}
	return &o, nil
}

// PatchOffice updates the given fields of an office.
func (c *Client) PatchOffice(ctx context.Context, id string, fields map[string]any) (*models.Office, error) {
	var o models.Office
	if err := c.do(ctx, http.MethodPatch, "/offices/"+id, fields, &o, http.StatusOK); err != nil {
		return nil, err
	}
	return &o, nil
}

// DeleteOffice deletes an office and releases its employees.
func (c *Client) DeleteOffice(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/offices/"+id, nil, nil, http.StatusNoContent)
}

// Assign links an employee to an office.
func (c *Client) Assign(ctx context.Context, officeID, employeeID string) error {
	return c.do(ctx, http.MethodPut, "/offices/"+officeID+"/employees/"+employeeID, nil, nil, http.StatusNoContent)
}

// Unassign removes an employee from an office.
func (c *Client) Unassign(ctx context.Context, officeID, employeeID string) error {
	return c.do(ctx, http.MethodDelete, "/offices/"+officeID+"/employees/"+employeeID, nil, nil, http.StatusNoContent)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, want int) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	// GET on a single office is checked for the media type too
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// read to EOF, the cache only stores bodies that were fully consumed
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var e struct {
			Error string `json:"Error"`
		}
		_ = json.Unmarshal(payload, &e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
