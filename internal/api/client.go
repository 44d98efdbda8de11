// Package api talks to the legal-assistant backend: question answering and the
// administrator's document knowledge base.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/iksnae/lawchat/internal"
)

// Fallback messages used when the backend gives no detail
const (
	msgAskFailed    = "Failed to get answer"
	msgListFailed   = "Failed to fetch documents"
	msgUploadFailed = "Upload failed"
	msgDeleteFailed = "Delete failed"
)

// ClientConfig configures a Client
type ClientConfig struct {
	BaseURL string
	Token   string // sent as a bearer token when set
	Timeout time.Duration
}

// Client is the backend API client
type Client struct {
	client *resty.Client
}

// Document is a file in the knowledge base
type Document struct {
	Filename string `json:"filename" yaml:"filename"`
	Path     string `json:"path" yaml:"path"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// UploadResult is the backend's acknowledgement of an upload
type UploadResult struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

type askRequest struct {
	Question string `json:"question"`
}

type documentsResponse struct {
	Documents []Document `json:"documents"`
}

// NewClient creates a client for the backend at cfg.BaseURL
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = internal.DefaultAPIURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	}
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &Client{client: client}
}

// BaseURL returns the backend address
func (c *Client) BaseURL() string {
	return c.client.BaseURL
}

// Ask implements internal.Answerer
func (c *Client) Ask(ctx context.Context, question string) (*internal.Answer, error) {
	var answer internal.Answer
	res, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(askRequest{Question: question}).
		SetResult(&answer).
		ForceContentType("application/json").
		Post("/ask")
	if err != nil {
		return nil, &APIError{Op: "ask", Detail: msgAskFailed, Err: err}
	}
	if !res.IsSuccess() {
		return nil, newAPIError("ask", res, msgAskFailed)
	}

	if answer.Sources == nil {
		answer.Sources = []internal.Citation{}
	}
	internal.LogDebug("Answer received: %d source(s)", len(answer.Sources))
	return &answer, nil
}

// ListDocuments lists the knowledge base
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	var out documentsResponse
	res, err := c.client.R().
		SetContext(ctx).
		SetResult(&out).
		ForceContentType("application/json").
		Get("/documents")
	if err != nil {
		return nil, &APIError{Op: "list", Detail: msgListFailed, Err: err}
	}
	if !res.IsSuccess() {
		// the backend's detail is not surfaced for listing
		return nil, &APIError{Op: "list", StatusCode: res.StatusCode(), Detail: msgListFailed}
	}

	if out.Documents == nil {
		out.Documents = []Document{}
	}
	return out.Documents, nil
}

// UploadDocument uploads the file at path under category
func (c *Client) UploadDocument(ctx context.Context, path, category string) (*UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var result UploadResult
	res, err := c.client.R().
		SetContext(ctx).
		SetFileReader("file", filepath.Base(path), f).
		SetFormData(map[string]string{"category": category}).
		SetResult(&result).
		ForceContentType("application/json").
		Post("/upload")
	if err != nil {
		return nil, &APIError{Op: "upload", Detail: msgUploadFailed, Err: err}
	}
	if !res.IsSuccess() {
		return nil, newAPIError("upload", res, msgUploadFailed)
	}
	return &result, nil
}

// DeleteDocument removes filename from the knowledge base
func (c *Client) DeleteDocument(ctx context.Context, filename string) error {
	res, err := c.client.R().
		SetContext(ctx).
		SetPathParam("filename", filename).
		Delete("/delete/{filename}")
	if err != nil {
		return &APIError{Op: "delete", Detail: msgDeleteFailed, Err: err}
	}
	if !res.IsSuccess() {
		return newAPIError("delete", res, msgDeleteFailed)
	}
	return nil
}

// APIError is a failed backend call
type APIError struct {
	Op         string
	StatusCode int // zero when the request never got a response
	Detail     string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// newAPIError extracts the backend's "detail" or "error" message from a failed response
func newAPIError(op string, res *resty.Response, fallback string) *APIError {
	apiErr := &APIError{Op: op, StatusCode: res.StatusCode(), Detail: fallback}

	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(res.Body(), &body); err != nil {
		internal.LogDebug("%s: unreadable error body (status %d): %s", op, res.StatusCode(), res.String())
		return apiErr
	}

	var detail string
	if len(body.Detail) > 0 && json.Unmarshal(body.Detail, &detail) == nil && detail != "" {
		apiErr.Detail = detail
	} else if body.Error != "" {
		apiErr.Detail = body.Error
	}
	return apiErr
}
