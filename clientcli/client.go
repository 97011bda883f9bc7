package clientcli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sagarc03/livestow"
)

const (
	// DefaultResponseHeaderTimeout bounds how long the client waits for the
	// server to start answering. Bodies are unbounded because downloads of
	// a live object last as long as its upload.
	DefaultResponseHeaderTimeout = 30 * time.Second

	headerObjectID       = "X-Object-Id"
	headerObjectChunks   = "X-Object-Chunks"
	headerObjectSize     = "X-Object-Size"
	headerObjectComplete = "X-Object-Complete"
	headerStreamOutcome  = "X-Stream-Outcome"
)

// Client performs operations against a livestow server.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets an overall timeout on every request, including the
// time spent streaming the body.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// New creates a new Client with the given config and options.
func New(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = DefaultResponseHeaderTimeout

	c := &Client{
		config:     &Config{Endpoint: strings.TrimSuffix(cfg.Endpoint, "/")},
		httpClient: &http.Client{Transport: transport},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Upload sends a file, or Stdin when LocalPath is "-", as the body of a PUT.
// Stdin is sent with chunked framing so readers on the server see each
// piece as soon as it arrives. Upload returns once the body is exhausted.
func (c *Client) Upload(ctx context.Context, opts UploadOptions) (*UploadResult, error) {
	if opts.LocalPath == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyName)
	}

	name := opts.Name
	if name == "" && opts.LocalPath != "-" {
		name = NormalizeLocalToRemotePath(opts.LocalPath)
	}
	if name == "" {
		return nil, fmt.Errorf("upload: %w", ErrEmptyName)
	}

	var body io.Reader
	contentLength := int64(-1)

	if opts.LocalPath == "-" {
		body = opts.Stdin
		if body == nil {
			body = os.Stdin
		}
	} else {
		file, err := os.Open(opts.LocalPath) //#nosec G304 -- localPath is user-provided input
		if err != nil {
			return nil, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = file.Close() }()

		info, err := file.Stat()
		if err != nil {
			return nil, fmt.Errorf("stat file: %w", err)
		}
		body = file
		contentLength = info.Size()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(name), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = contentLength

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, parseServerError(resp.StatusCode, respBody)
	}

	var info ObjectInfo
	if err := json.Unmarshal(respBody, &info); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	return &UploadResult{
		LocalPath: opts.LocalPath,
		Name:      info.Name,
		ID:        info.ID,
		Chunks:    info.Chunks,
		Size:      info.Size,
		Complete:  info.Complete,
		CreatedAt: info.CreatedAt,
		UpdatedAt: info.UpdatedAt,
	}, nil
}

// Download tails an object until the server ends the stream. If
// opts.LocalPath is "-" the body is copied to opts.Stdout (os.Stdout when
// nil), otherwise it is written to a file.
func (c *Client) Download(ctx context.Context, opts DownloadOptions) (*DownloadResult, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("download: %w", ErrEmptyName)
	}
	name := strings.TrimPrefix(opts.Name, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(name), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseServerError(resp.StatusCode, body)
	}

	result := &DownloadResult{
		Name: name,
		ID:   resp.Header.Get(headerObjectID),
	}

	var dst io.Writer
	var file *os.File
	if opts.LocalPath == "-" {
		result.LocalPath = "-"
		dst = opts.Stdout
		if dst == nil {
			dst = os.Stdout
		}
	} else {
		localPath := opts.LocalPath
		if localPath == "" {
			localPath = filepath.Base(name)
		}
		result.LocalPath = localPath

		dir := filepath.Dir(localPath)
		if dir != "" && dir != "." {
			if mkdirErr := os.MkdirAll(dir, 0o750); mkdirErr != nil {
				return nil, fmt.Errorf("create directory: %w", mkdirErr)
			}
		}

		var createErr error
		file, createErr = os.Create(localPath) //#nosec G304 -- localPath is user-provided input
		if createErr != nil {
			return nil, fmt.Errorf("create file: %w", createErr)
		}
		dst = file
	}

	written, copyErr := io.Copy(dst, resp.Body)
	result.Size = written
	if file != nil {
		if closeErr := file.Close(); closeErr != nil && copyErr == nil {
			copyErr = fmt.Errorf("close file: %w", closeErr)
		}
	}
	if copyErr != nil {
		return result, fmt.Errorf("read stream: %w", copyErr)
	}

	// Trailers are only populated once the body has been read to EOF.
	if raw := resp.Trailer.Get(headerStreamOutcome); raw != "" {
		outcome, parseErr := livestow.ParseOutcome(raw)
		if parseErr != nil {
			return result, fmt.Errorf("download %s: %w", name, parseErr)
		}
		result.Outcome = outcome
	}

	return result, nil
}

// Stat fetches object metadata with a HEAD request.
func (c *Client) Stat(ctx context.Context, name string) (*ObjectInfo, error) {
	if name == "" {
		return nil, fmt.Errorf("stat: %w", ErrEmptyName)
	}
	name = strings.TrimPrefix(name, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.objectURL(name), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp.StatusCode, nil)
	}

	return objectInfoFromHeader(name, resp.Header)
}

func objectInfoFromHeader(name string, h http.Header) (*ObjectInfo, error) {
	info := &ObjectInfo{Name: name}

	id, err := uuid.Parse(h.Get(headerObjectID))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", headerObjectID, err)
	}
	info.ID = id

	if info.Chunks, err = strconv.Atoi(h.Get(headerObjectChunks)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", headerObjectChunks, err)
	}
	if info.Size, err = strconv.ParseInt(h.Get(headerObjectSize), 10, 64); err != nil {
		return nil, fmt.Errorf("parse %s: %w", headerObjectSize, err)
	}
	if info.Complete, err = strconv.ParseBool(h.Get(headerObjectComplete)); err != nil {
		return nil, fmt.Errorf("parse %s: %w", headerObjectComplete, err)
	}
	if lm := h.Get("Last-Modified"); lm != "" {
		if t, parseErr := http.ParseTime(lm); parseErr == nil {
			info.UpdatedAt = t
		}
	}

	return info, nil
}

// Delete deletes one or more objects from the server.
// Continues on error, collecting results for all names.
func (c *Client) Delete(ctx context.Context, opts DeleteOptions) ([]DeleteResult, error) {
	if len(opts.Names) == 0 {
		return nil, ErrNoNames
	}

	results := make([]DeleteResult, 0, len(opts.Names))

	for _, name := range opts.Names {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		results = append(results, c.deleteSingle(ctx, name))
	}

	return results, nil
}

func (c *Client) deleteSingle(ctx context.Context, name string) DeleteResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(strings.TrimPrefix(name, "/")), http.NoBody)
	if err != nil {
		return DeleteResult{Name: name, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return DeleteResult{Name: name, Err: fmt.Errorf("do request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
		return DeleteResult{Name: name, Deleted: true}
	}

	body, _ := io.ReadAll(resp.Body)
	return DeleteResult{
		Name: name,
		Err:  parseServerError(resp.StatusCode, body),
	}
}

// HasDeleteErrors returns true if any delete operation failed.
func HasDeleteErrors(results []DeleteResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// List returns the objects whose name starts with opts.Prefix.
func (c *Client) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	query := url.Values{}
	query.Set("format", "json")
	if opts.Prefix != "" {
		query.Set("prefix", opts.Prefix)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.Endpoint+"/?"+query.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseServerError(resp.StatusCode, body)
	}

	var result ListResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if result.Items == nil {
		result.Items = []ObjectInfo{}
	}

	return &result, nil
}

// TotalSize calculates the total size of all items in bytes.
func (r *ListResult) TotalSize() int64 {
	var total int64
	for _, item := range r.Items {
		total += item.Size
	}
	return total
}

func (c *Client) objectURL(name string) string {
	u := url.URL{Path: "/" + name}
	return c.config.Endpoint + u.EscapedPath()
}

// NormalizeLocalToRemotePath converts a local path to a clean object name.
// It handles:
//   - Leading "./" is stripped (./foo/bar.ts -> foo/bar.ts)
//   - Leading "/" is stripped (/abs/path/file.ts -> abs/path/file.ts)
//   - Parent traversal is resolved (../sibling/file.ts -> sibling/file.ts)
//   - Backslashes are converted to forward slashes (Windows)
func NormalizeLocalToRemotePath(localPath string) string {
	path := filepath.ToSlash(filepath.Clean(filepath.ToSlash(localPath)))

	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")

	for strings.HasPrefix(path, "../") {
		path = strings.TrimPrefix(path, "../")
	}

	if path == ".." || path == "." {
		return ""
	}

	return path
}

// parseServerError builds an APIError, using the server's JSON message
// when the body carries one.
func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var envelope serverErrorBody
	if len(body) > 0 && json.Unmarshal(body, &envelope) == nil {
		apiErr.Code = envelope.Error
		apiErr.Message = envelope.Message
	}

	return apiErr
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Message
	}
	if e.Body != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " " + http.StatusText(e.StatusCode)
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsNotFound returns true if the error is a 404.
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the requested object does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrBadRequest is returned for invalid object names or truncated uploads (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}
)
