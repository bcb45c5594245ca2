package flora

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Credentials supplies the bearer tokens for one request and absorbs token
// rotation. Implementations are session-scoped.
type Credentials interface {
	AccessToken() string
	RefreshToken() string
	RotateAccess(access string)
	Clear()
}

type credentialsContextKey struct{}

// ContextWithCredentials attaches session credentials to a request context.
func ContextWithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsContextKey{}, creds)
}

// CredentialsFromContext extracts credentials, or nil when unauthenticated.
func CredentialsFromContext(ctx context.Context) Credentials {
	creds, _ := ctx.Value(credentialsContextKey{}).(Credentials)
	return creds
}

// ClientConfig configures the API client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client issues authenticated calls against the ChezFlora REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient constructs a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("flora: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Login exchanges operator credentials for a token pair via /token/.
func (c *Client) Login(ctx context.Context, username, password string) (TokenPair, error) {
	var pair TokenPair
	payload := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/token/", nil, payload, &pair); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// VerifyOTP confirms a one-time code for a pending account.
func (c *Client) VerifyOTP(ctx context.Context, userID, code string) error {
	payload := map[string]string{"user_id": userID, "code": code}
	return c.do(ctx, http.MethodPost, "/verify-otp/", nil, payload, nil)
}

// ResendOTP re-sends the one-time code.
func (c *Client) ResendOTP(ctx context.Context, userID string) error {
	payload := map[string]string{"user_id": userID}
	return c.do(ctx, http.MethodPost, "/resend-otp/", nil, payload, nil)
}

// RequestPasswordReset triggers the reset email flow.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	payload := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/reset_password/", nil, payload, nil)
}

// Me fetches the profile bound to the current access token.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/utilisateurs/me/", nil, nil, &user); err != nil {
		return User{}, err
	}
	return user, nil
}

// List fetches one page of a collection endpoint and returns the page
// items with the server-side total count.
func List[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, int, error) {
	var envelope ListEnvelope[T]
	if err := c.do(ctx, http.MethodGet, path, query, nil, &envelope); err != nil {
		return nil, 0, err
	}
	return envelope.Results, envelope.Count, nil
}

// Get fetches a single record.
func Get[T any](ctx context.Context, c *Client, path string) (T, error) {
	var out T
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Create POSTs a payload and decodes the created record.
func Create[T any](ctx context.Context, c *Client, path string, payload any) (T, error) {
	var out T
	if err := c.do(ctx, http.MethodPost, path, nil, payload, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Update PUTs a full payload and decodes the updated record.
func Update[T any](ctx context.Context, c *Client, path string, payload any) (T, error) {
	var out T
	if err := c.do(ctx, http.MethodPut, path, nil, payload, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Patch sends a partial payload and decodes the updated record.
func Patch[T any](ctx context.Context, c *Client, path string, payload any) (T, error) {
	var out T
	if err := c.do(ctx, http.MethodPatch, path, nil, payload, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Delete removes a record.
func Delete(ctx context.Context, c *Client, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Post issues a resource action (cancel, rembourser, simuler, ...) that
// returns no body the panel cares about.
func Post(ctx context.Context, c *Client, path string, payload any) error {
	return c.do(ctx, http.MethodPost, path, nil, payload, nil)
}

// Fetch decodes an arbitrary GET endpoint (stats, reports).
func Fetch[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	if err := c.do(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Upload sends one file as multipart form data plus extra fields.
func (c *Client) Upload(ctx context.Context, path, field, filename string, content io.Reader, extra map[string]string) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("flora: multipart: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("flora: multipart copy: %w", err)
	}
	for key, value := range extra {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("flora: multipart field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("flora: multipart close: %w", err)
	}

	run := func(token string) (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return c.httpClient.Do(req)
	}
	return c.execute(ctx, run, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any, target any) error {
	var encoded []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("flora: encode payload: %w", err)
		}
		encoded = data
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	run := func(token string) (*http.Response, error) {
		var body io.Reader
		if encoded != nil {
			body = bytes.NewReader(encoded)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if encoded != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return c.httpClient.Do(req)
	}
	return c.execute(ctx, run, target)
}

// execute runs a request once, attempting a single token refresh on 401.
// A second 401, or a 401 without a refresh token, clears the credentials
// and surfaces ErrAuthExpired.
func (c *Client) execute(ctx context.Context, run func(token string) (*http.Response, error), target any) error {
	creds := CredentialsFromContext(ctx)
	token := ""
	if creds != nil {
		token = creds.AccessToken()
	}

	resp, err := run(token)
	if err != nil {
		return fmt.Errorf("flora: request: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && creds != nil {
		drain(resp)
		refreshed, refreshErr := c.refreshAccess(ctx, creds)
		if refreshErr != nil {
			creds.Clear()
			return ErrAuthExpired
		}
		resp, err = run(refreshed)
		if err != nil {
			return fmt.Errorf("flora: request after refresh: %w", err)
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			creds.Clear()
			return ErrAuthExpired
		}
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthExpired
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return c.decodeError(resp)
	}

	if target == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("flora: decode response: %w", err)
	}
	return nil
}

func (c *Client) refreshAccess(ctx context.Context, creds Credentials) (string, error) {
	refresh := creds.RefreshToken()
	if refresh == "" {
		return "", ErrAuthExpired
	}
	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token/refresh/", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer drain(resp)
	if resp.StatusCode >= 400 {
		return "", ErrAuthExpired
	}
	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return "", err
	}
	if pair.Access == "" {
		return "", ErrAuthExpired
	}
	creds.RotateAccess(pair.Access)
	c.logger.Debug("access token refreshed")
	return pair.Access, nil
}

// decodeError turns a DRF error body into a typed error. Field errors
// arrive as {"field": ["msg", ...]}, general failures as {"detail": "..."}.
func (c *Client) decodeError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return &APIError{Status: resp.StatusCode}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return &APIError{Status: resp.StatusCode, Detail: strings.TrimSpace(string(body))}
	}

	detail := ""
	fields := make(map[string][]string)
	for key, value := range raw {
		var text string
		if err := json.Unmarshal(value, &text); err == nil {
			if key == "detail" || key == "error" {
				detail = text
			} else {
				fields[key] = []string{text}
			}
			continue
		}
		var list []string
		if err := json.Unmarshal(value, &list); err == nil {
			fields[key] = list
		}
	}

	if resp.StatusCode == http.StatusBadRequest && (len(fields) > 0 || detail != "") {
		return &ValidationError{Fields: fields, Detail: detail}
	}
	return &APIError{Status: resp.StatusCode, Detail: detail}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}
