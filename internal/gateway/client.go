// Package gateway is the HTTP client for the CMS API. It is how editing
// tools load and save the Related Links tree.
//
// Transport failures, unexpected statuses and undecodable bodies all come
// back as ErrBackendUnavailable. 400, 401, 403 and 404 answers map to the
// matching internal/domain error so callers can tell them apart.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"refexcms/internal/domain"
	"refexcms/internal/linktree"
	"refexcms/internal/models"
)

// ErrBackendUnavailable is returned when the CMS cannot be reached or
// answers with something that is not a usable response.
var ErrBackendUnavailable = errors.New("Backend not available")

const (
	relatedLinksPath = "/api/cms/investors/related-links"
	loginPath        = "/api/auth/login"

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 10 << 20
)

// Client talks to one CMS deployment.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the CMS at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetToken replaces the bearer token, typically after Login.
func (c *Client) SetToken(token string) {
	c.token = token
}

// LoginResult is the answer to a successful login.
type LoginResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Login exchanges credentials for a bearer token. The client keeps using
// its current token until SetToken is called.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("encode login: %w", err)
	}
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, loginPath, bytes.NewReader(payload), "application/json", &res); err != nil {
		return nil, err
	}
	if res.Token == "" {
		return nil, fmt.Errorf("%w: login response without token", ErrBackendUnavailable)
	}
	return &res, nil
}

// Load fetches the stored tree. An empty store yields an empty tree.
func (c *Client) Load(ctx context.Context) ([]models.Category, error) {
	var tree []models.Category
	if err := c.do(ctx, http.MethodGet, relatedLinksPath, nil, "", &tree); err != nil {
		return nil, err
	}
	if tree == nil {
		tree = []models.Category{}
	}
	return linktree.Normalize(tree), nil
}

// Save replaces the stored tree and returns it as the CMS stored it. The
// given tree is never modified, so a failed save leaves it intact.
func (c *Client) Save(ctx context.Context, tree []models.Category) ([]models.Category, error) {
	if tree == nil {
		tree = []models.Category{}
	}
	payload, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	var saved []models.Category
	if err := c.do(ctx, http.MethodPut, relatedLinksPath, bytes.NewReader(payload), "application/json", &saved); err != nil {
		return nil, err
	}
	return linktree.Normalize(saved), nil
}

// Findings returns advisory problems in the stored tree.
func (c *Client) Findings(ctx context.Context) ([]linktree.Finding, error) {
	var out []linktree.Finding
	err := c.do(ctx, http.MethodGet, relatedLinksPath+"/findings", nil, "", &out)
	return out, err
}

// Revisions lists saved versions of the tree, newest first.
func (c *Client) Revisions(ctx context.Context, limit int) ([]models.DocumentRevision, error) {
	path := relatedLinksPath + "/revisions"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out []models.DocumentRevision
	err := c.do(ctx, http.MethodGet, path, nil, "", &out)
	return out, err
}

// Restore makes a saved version current again and returns the new tree.
func (c *Client) Restore(ctx context.Context, revisionID int64) ([]models.Category, error) {
	path := relatedLinksPath + "/revisions/" + strconv.FormatInt(revisionID, 10) + "/restore"
	var tree []models.Category
	if err := c.do(ctx, http.MethodPost, path, nil, "", &tree); err != nil {
		return nil, err
	}
	return linktree.Normalize(tree), nil
}

// Upload sends a file to the image or PDF upload endpoint and returns the
// URL to store in the tree.
func (c *Client) Upload(ctx context.Context, kind models.UploadKind, filename string, r io.Reader) (string, error) {
	path := "/api/upload"
	if kind == models.UploadPDF {
		path = "/api/upload/pdf"
	}
	field, key := kind.FormField(), kind.URLField()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	var res map[string]string
	if err := c.do(ctx, http.MethodPost, path, &body, mw.FormDataContentType(), &res); err != nil {
		return "", err
	}
	if res[key] == "" {
		return "", fmt.Errorf("%w: upload response without %s", ErrBackendUnavailable, key)
	}
	return res[key], nil
}

// errorBody mirrors the server's JSON error shape.
type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// do performs a request and decodes a 2xx JSON answer into out.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrBackendUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrBackendUnavailable, err)
	}
	return nil
}

// statusError maps a non-2xx answer to a domain error, or to
// ErrBackendUnavailable for statuses a caller cannot act on.
func statusError(status int, data []byte) error {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil || eb.Error == "" {
		eb.Error = http.StatusText(status)
	}

	switch status {
	case http.StatusBadRequest:
		return &domain.ValidationError{Message: eb.Error, Fields: eb.Fields}
	case http.StatusUnauthorized:
		return &domain.UnauthorizedError{Message: eb.Error}
	case http.StatusForbidden:
		return &domain.ForbiddenError{Message: eb.Error}
	case http.StatusNotFound:
		return &domain.NotFoundError{Message: eb.Error}
	}
	return fmt.Errorf("%w: status %d: %s", ErrBackendUnavailable, status, eb.Error)
}
