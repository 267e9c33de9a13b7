package adminclient

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

	"golang.org/x/oauth2"

	"github.com/irkinnovations/portfolio/internal/domain"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details"`
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("api %d: %s", e.Status, e.Message)
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+" "+d.Message)
	}
	return fmt.Sprintf("api %d: %s (%s)", e.Status, e.Message, strings.Join(parts, "; "))
}

// Unwrap lets callers match API errors against the domain sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		if e.Code == "invalid_credentials" {
			return domain.ErrInvalidCredentials
		}
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	case http.StatusTooManyRequests:
		return domain.ErrRateLimited
	}
	return nil
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Client calls the project API.
type Client struct {
	baseURL string
	tokens  *TokenStore
	http    *http.Client
}

// NewClient creates a Client for the API rooted at baseURL, e.g. https://irk.example.com/api.
func NewClient(baseURL string, tokens *TokenStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Login authenticates and caches the returned token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, c.http, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	if err := c.tokens.Save(resp.Token); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout forgets the cached token.
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// LoggedIn reports whether a token is cached. The token is not checked against the server.
func (c *Client) LoggedIn() bool {
	_, err := c.tokens.Load()
	return err == nil
}

// Me returns the administrator the cached token belongs to.
func (c *Client) Me(ctx context.Context) (*domain.Admin, error) {
	var admin domain.Admin
	if err := c.authed(ctx, http.MethodGet, "/auth/me", nil, &admin); err != nil {
		return nil, err
	}
	return &admin, nil
}

// ListProjects returns every project, newest first.
func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	if err := c.do(ctx, c.http, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns one project.
func (c *Client) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	if err := c.do(ctx, c.http, http.MethodGet, projectPath(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, input domain.ProjectInput) (*domain.Project, error) {
	var p domain.Project
	if err := c.authed(ctx, http.MethodPost, "/projects", input, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProject applies patch to the project with id.
func (c *Client) UpdateProject(ctx context.Context, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	var p domain.Project
	if err := c.authed(ctx, http.MethodPut, projectPath(id), patch, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject removes the project with id.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, projectPath(id), nil, nil)
}

func projectPath(id string) string {
	return "/projects/" + url.PathEscape(id)
}

// authed sends a request carrying the cached bearer token. A 401 drops the token.
func (c *Client) authed(ctx context.Context, method, path string, in, out any) error {
	token, err := c.tokens.Load()
	if err != nil {
		return err
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))

	err = c.do(ctx, httpClient, method, path, in, out)
	if errors.Is(err, domain.ErrUnauthorized) {
		if clearErr := c.tokens.Clear(); clearErr != nil {
			return errors.Join(err, clearErr)
		}
	}
	return err
}

func (c *Client) do(ctx context.Context, httpClient *http.Client, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
