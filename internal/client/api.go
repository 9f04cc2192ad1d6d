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

	"github.com/iliyamo/property-rental/internal/model"
)

// APIError is a failure envelope returned by the server.
type APIError struct {
	Status  int
	Message string
	Errors  []string
}

func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		return e.Message + ": " + strings.Join(e.Errors, "; ")
	}
	return e.Message
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Status
	}
	return 0
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  []string        `json:"errors,omitempty"`
}

// AuthData is what login and register return.
type AuthData struct {
	User  model.PublicUser `json:"user"`
	Token string           `json:"token"`
}

// RegisterRequest is the body of a registration.
type RegisterRequest struct {
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Role        model.Role `json:"role"`
	PhoneNumber string     `json:"phoneNumber,omitempty"`
}

// Identity is the principal reported by /auth/me.
type Identity struct {
	UserID uint64     `json:"userId"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
}

// API talks to the REST surface. Every response except those of the
// credential endpoints passes through Intercept, so 401 and 403 handling
// lives in one place.
type API struct {
	BaseURL string
	HTTP    *http.Client

	// Token supplies the bearer token; empty means anonymous.
	Token func() string
	// Intercept sees the status of every failed intercepted call.
	Intercept func(status int)
}

// NewAPI returns a client for baseURL, e.g. http://localhost:3000/api.
func NewAPI(baseURL string, hc *http.Client) *API {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &API{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: hc}
}

func (a *API) do(ctx context.Context, method, path string, in, out any, intercept bool) error {
	var body io.Reader = http.NoBody
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.Token != nil {
		if tok := a.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := a.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(res.Body).Decode(&env)

	if res.StatusCode >= 400 {
		if intercept && a.Intercept != nil {
			a.Intercept(res.StatusCode)
		}
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return &APIError{Status: res.StatusCode, Message: msg, Errors: env.Errors}
	}
	if decodeErr != nil {
		return fmt.Errorf("decode response: %w", decodeErr)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}

// Login exchanges credentials for a token.
func (a *API) Login(ctx context.Context, email, password string) (AuthData, error) {
	var out AuthData
	err := a.do(ctx, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &out, false)
	return out, err
}

// Register creates an account and returns its token.
func (a *API) Register(ctx context.Context, in RegisterRequest) (AuthData, error) {
	var out AuthData
	err := a.do(ctx, http.MethodPost, "/auth/register", in, &out, false)
	return out, err
}

// Verify asks the server whether the current token is still accepted.
func (a *API) Verify(ctx context.Context) error {
	return a.do(ctx, http.MethodGet, "/auth/verify", nil, nil, true)
}

// Me returns the server's view of the caller.
func (a *API) Me(ctx context.Context) (Identity, error) {
	var out Identity
	err := a.do(ctx, http.MethodGet, "/auth/me", nil, &out, true)
	return out, err
}

// Get fetches path and decodes the envelope data into out.
func (a *API) Get(ctx context.Context, path string, out any) error {
	return a.do(ctx, http.MethodGet, path, nil, out, true)
}
