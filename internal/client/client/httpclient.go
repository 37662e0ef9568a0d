package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient returns a client for the API at baseURL
// (e.g. "http://127.0.0.1:3000"). A bare host:port gets an http:// scheme.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type registerRequest struct {
	KickUsername    string `json:"kickUsername"`
	RainbetUsername string `json:"rainbetUsername"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type registerResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

type loginRequest struct {
	KickUsername string `json:"kickUsername"`
	Password     string `json:"password"`
}

func (c *HTTPClient) Register(ctx context.Context, kickUsername, rainbetUsername string, password, confirmPassword []byte) (*User, error) {
	var resp registerResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", registerRequest{
		KickUsername:    kickUsername,
		RainbetUsername: rainbetUsername,
		Password:        string(password),
		ConfirmPassword: string(confirmPassword),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.User, nil
}

func (c *HTTPClient) Login(ctx context.Context, kickUsername string, password []byte) (*Session, error) {
	var resp Session
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		KickUsername: kickUsername,
		Password:     string(password),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Health(ctx context.Context) (*Health, error) {
	var resp Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var e struct {
			Message string `json:"message"`
			Error   string `json:"error"`
			Code    string `json:"code"`
		}
		if json.NewDecoder(resp.Body).Decode(&e) == nil {
			apiErr.Message, apiErr.Code = e.Message, e.Code
			if apiErr.Message == "" {
				apiErr.Message = e.Error
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
