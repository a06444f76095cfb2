// Package client is the typed HTTP client the operator console uses to talk to the API.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"fitreport/internal/database"
)

// MaxUploadBytes mirrors the server-side attachment limit (50MB).
const MaxUploadBytes = 50 << 20

// ErrFileTooLarge is returned before any request is sent for oversized uploads.
var ErrFileTooLarge = errors.New("파일 크기는 50MB를 초과할 수 없습니다")

// APIError is a non-2xx response. Message is the server's {"error"} text.
type APIError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error (status %d)", e.Status)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// Config configures a Client.
type Config struct {
	BaseURL string
	// APIKey is sent as the apikey header when set.
	APIKey  string
	Token   string
	Timeout time.Duration
}

// Client wraps a resty client. Requests are never retried.
type Client struct {
	http *resty.Client
}

// New builds a Client for cfg.BaseURL (e.g. http://localhost:8080).
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if cfg.APIKey != "" {
		rc.SetHeader("apikey", cfg.APIKey)
	}
	c := &Client{http: rc}
	c.SetToken(cfg.Token)
	return c
}

// SetToken changes the bearer token sent with every request. Empty clears it.
func (c *Client) SetToken(token string) {
	if token == "" {
		c.http.Token = ""
		return
	}
	c.http.SetAuthToken(token)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	req := c.http.R().SetContext(ctx).SetError(&APIError{})
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	return checkResponse(resp)
}

func checkResponse(resp *resty.Response) error {
	if !resp.IsError() {
		return nil
	}
	apiErr, ok := resp.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{}
	}
	apiErr.Status = resp.StatusCode()
	return apiErr
}

// Admin is the account returned by a successful login.
type Admin struct {
	ID          uint   `json:"id"`
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Status      string `json:"status"`
	CompanyName string `json:"company_name"`
	Position    *struct {
		Name  string `json:"name"`
		Level int    `json:"level"`
	} `json:"position"`
}

// LoginResponse is the body of POST /api/auth/login.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	Admin   Admin  `json:"admin"`
}

// Login authenticates and, on success, uses the returned token for later requests.
func (c *Client) Login(ctx context.Context, userID, password string) (*LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"user_id": userID, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Logout asks the server to clear the cookie and drops the local token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
	c.SetToken("")
	return err
}

// NewUser is the body of POST /api/users.
type NewUser struct {
	UserID        string `json:"user_id"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	PositionID    uint   `json:"position_id"`
	Phone         string `json:"phone,omitempty"`
	EmailDisplay  string `json:"email_display,omitempty"`
	Address       string `json:"address,omitempty"`
	AddressDetail string `json:"address_detail,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
	Status        string `json:"status,omitempty"`
}

type messageWith[T any] struct {
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func (c *Client) ListUsers(ctx context.Context) ([]database.User, error) {
	var out []database.User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, u NewUser) (*database.User, error) {
	var out messageWith[database.User]
	if err := c.do(ctx, http.MethodPost, "/api/users", u, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// UpdateUser sends a partial update; only the keys in values are written.
func (c *Client) UpdateUser(ctx context.Context, id uint, values map[string]any) error {
	return c.do(ctx, http.MethodPatch, userPath(id), values, nil)
}

func (c *Client) DeleteUser(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, userPath(id), nil, nil)
}

func userPath(id uint) string {
	return "/api/users/" + strconv.FormatUint(uint64(id), 10)
}

// CheckDuplicate reports whether userID is already taken.
func (c *Client) CheckDuplicate(ctx context.Context, userID string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("user_id", userID).
		SetResult(&out).
		SetError(&APIError{}).
		Get("/api/users/check-duplicate")
	if err != nil {
		return false, fmt.Errorf("check duplicate: %w", err)
	}
	if err := checkResponse(resp); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// UserStats is the body of GET /api/users/stats.
type UserStats struct {
	Total    int `json:"total"`
	ByStatus struct {
		Active   int `json:"active"`
		Inactive int `json:"inactive"`
	} `json:"byStatus"`
	ByPosition map[string]int `json:"byPosition"`
	ByCompany  map[string]int `json:"byCompany"`
}

func (c *Client) UserStats(ctx context.Context) (*UserStats, error) {
	var out UserStats
	if err := c.do(ctx, http.MethodGet, "/api/users/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListPositions(ctx context.Context) ([]database.Position, error) {
	var out []database.Position
	if err := c.do(ctx, http.MethodGet, "/api/positions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NewDocument is the body of POST /api/documents.
type NewDocument struct {
	UserID             string                  `json:"user_id"`
	UserName           string                  `json:"user_name,omitempty"`
	DocumentType       string                  `json:"document_type"`
	Title              string                  `json:"title"`
	CompanyName        string                  `json:"company_name,omitempty"`
	RepresentativeName string                  `json:"representative_name,omitempty"`
	ProgressDetails    string                  `json:"progress_details,omitempty"`
	Status             string                  `json:"status,omitempty"`
	ProgressStatus     string                  `json:"progress_status,omitempty"`
	SubmittedDate      string                  `json:"submitted_date,omitempty"`
	AttachedFiles      []database.AttachedFile `json:"attached_files,omitempty"`
}

func (c *Client) ListDocuments(ctx context.Context) ([]database.Document, error) {
	var out []database.Document
	if err := c.do(ctx, http.MethodGet, "/api/documents", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateDocument(ctx context.Context, d NewDocument) (*database.Document, error) {
	var out database.Document
	if err := c.do(ctx, http.MethodPost, "/api/documents", d, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDocument writes patch and returns the stored document.
func (c *Client) UpdateDocument(ctx context.Context, id uint, patch map[string]any) (*database.Document, error) {
	var out database.Document
	if err := c.do(ctx, http.MethodPut, documentPath(id), patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDocument(ctx context.Context, id uint) error {
	return c.do(ctx, http.MethodDelete, documentPath(id), nil, nil)
}

func documentPath(id uint) string {
	return "/api/documents/" + strconv.FormatUint(uint64(id), 10)
}

// Upload sends r as the multipart "file" to objectPath and returns the stored path.
func (c *Client) Upload(ctx context.Context, objectPath, filename string, r io.Reader, size int64) (string, error) {
	if size > MaxUploadBytes {
		return "", ErrFileTooLarge
	}
	var out struct {
		Message string `json:"message"`
		Path    string `json:"path"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", filename, r).
		SetFormData(map[string]string{"filePath": objectPath}).
		SetResult(&out).
		SetError(&APIError{}).
		Post("/api/documents/upload")
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if err := checkResponse(resp); err != nil {
		return "", err
	}
	return out.Path, nil
}

// NotificationCount is the body of GET /api/documents/notification-count.
type NotificationCount struct {
	Count    int `json:"count"`
	Revision int `json:"revision"`
	Rejected int `json:"rejected"`
}

func (c *Client) NotificationCount(ctx context.Context) (*NotificationCount, error) {
	var out NotificationCount
	if err := c.do(ctx, http.MethodGet, "/api/documents/notification-count", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
