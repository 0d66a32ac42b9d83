package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"vibibay-client-go/internal/domain/session/model"
	"vibibay-client-go/internal/domain/session/store"
	"vibibay-client-go/internal/platform/errors"
	"vibibay-client-go/internal/platform/logging"
)

// Config carries the settings the client needs from the platform layer.
type Config struct {
	BaseURL string
	Profile string
	// HTTPClient overrides the transport, mainly for tests. Nil means a
	// default client without an explicit timeout.
	HTTPClient *http.Client
}

// Client is the single point of contact with the remote service. It owns the
// base URL and request construction and translates responses into typed
// results or typed errors. Business rules live above it.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions store.Store
	profile  string
	logger   *logging.Logger
}

func NewClient(cfg Config, sessions store.Store, logger *logging.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.KindConfig, "api.NewClient", "base URL required")
	}
	if sessions == nil {
		return nil, errors.New(errors.KindConfig, "api.NewClient", "session store required")
	}
	profile := cfg.Profile
	if profile == "" {
		profile = "default"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     httpClient,
		sessions: sessions,
		profile:  profile,
		logger:   logger,
	}, nil
}

// Profile returns the session profile this client reads and writes.
func (c *Client) Profile() string {
	return c.profile
}

// Session returns the stored session for this client's profile.
func (c *Client) Session(ctx context.Context) (model.Session, error) {
	return c.sessions.Get(ctx, c.profile)
}

// HasSession reports whether a live credential is stored for this profile.
func (c *Client) HasSession(ctx context.Context) bool {
	_, err := c.sessions.Get(ctx, c.profile)
	return err == nil
}

// Login authenticates and persists the returned token so subsequent calls
// carry it as a bearer credential.
func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	const op = "api.Login"
	resp, err := do[LoginResponse](ctx, c, op, http.MethodPost, "/auth/login", req)
	if err != nil {
		return LoginResponse{}, err
	}

	session := model.Session{
		Profile:   c.profile,
		Token:     resp.Token,
		Email:     resp.User.Email,
		UserID:    resp.User.ID,
		CreatedAt: time.Now(),
	}
	if resp.ExpiresAt != nil {
		session.Metadata = map[string]any{
			"expires_at": resp.ExpiresAt.Format(time.RFC3339),
		}
	}
	if err := c.sessions.Save(ctx, session); err != nil {
		return LoginResponse{}, errors.Wrap(errors.KindStorage, op, "persist session", err)
	}
	return resp, nil
}

// Register creates an account and returns the MFA bootstrap material. It does
// not authenticate; the caller logs in afterwards.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (RegisterResponse, error) {
	return do[RegisterResponse](ctx, c, "api.Register", http.MethodPost, "/auth/register", req)
}

// Logout discards the stored session. The remote service holds no
// client-visible session state, so no network call is made.
func (c *Client) Logout(ctx context.Context) error {
	const op = "api.Logout"
	if err := c.sessions.Remove(ctx, c.profile); err != nil {
		return errors.Wrap(errors.KindStorage, op, "remove session", err)
	}
	return nil
}

func (c *Client) UserProfile(ctx context.Context) (User, error) {
	return do[User](ctx, c, "api.UserProfile", http.MethodGet, "/user/profile", nil)
}

// Devices returns the device collection in server order. The client does not
// resort it.
func (c *Client) Devices(ctx context.Context) (DevicesResponse, error) {
	return do[DevicesResponse](ctx, c, "api.Devices", http.MethodGet, "/devices", nil)
}

func (c *Client) AddDevice(ctx context.Context) (AddDeviceResponse, error) {
	return do[AddDeviceResponse](ctx, c, "api.AddDevice", http.MethodPost, "/devices", nil)
}

func (c *Client) Device(ctx context.Context, id int64) (Device, error) {
	const op = "api.Device"
	if id <= 0 {
		return Device{}, errors.New(errors.KindBusiness, op, "device id must be positive")
	}
	return do[Device](ctx, c, op, http.MethodGet, fmt.Sprintf("/devices/%d", id), nil)
}

// DeleteDevice schedules deletion on the server side. The device stays in the
// list with a pending_delete status until the server removes it.
func (c *Client) DeleteDevice(ctx context.Context, id int64) (Message, error) {
	const op = "api.DeleteDevice"
	if id <= 0 {
		return Message{}, errors.New(errors.KindBusiness, op, "device id must be positive")
	}
	return do[Message](ctx, c, op, http.MethodDelete, fmt.Sprintf("/devices/%d", id), nil)
}

// PayDevice requests a payment link for extending a device subscription.
func (c *Client) PayDevice(ctx context.Context, id int64, months int) (PaymentResponse, error) {
	const op = "api.PayDevice"
	if id <= 0 {
		return PaymentResponse{}, errors.New(errors.KindBusiness, op, "device id must be positive")
	}
	if months <= 0 {
		return PaymentResponse{}, errors.New(errors.KindBusiness, op, "months must be positive")
	}
	req := PaymentRequest{DeviceID: id, Months: months}
	return do[PaymentResponse](ctx, c, op, http.MethodPost, fmt.Sprintf("/devices/%d/pay", id), req)
}

// DeviceKey fetches the connection key for a device.
func (c *Client) DeviceKey(ctx context.Context, id int64) (DeviceKeyResponse, error) {
	const op = "api.DeviceKey"
	if id <= 0 {
		return DeviceKeyResponse{}, errors.New(errors.KindBusiness, op, "device id must be positive")
	}
	return do[DeviceKeyResponse](ctx, c, op, http.MethodGet, fmt.Sprintf("/devices/%d/key", id), nil)
}

// do performs one request and decodes the result. Every call attaches the
// stored bearer token when one is present; the server decides whether the
// operation requires it. No retries: each call is at most once.
func do[T any](ctx context.Context, c *Client, op, method, path string, body any) (T, error) {
	var zero T

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return zero, errors.Wrap(errors.KindTransport, op, "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return zero, errors.Wrap(errors.KindTransport, op, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if session, err := c.sessions.Get(ctx, c.profile); err == nil {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return zero, errors.NewRemote(errors.KindTransport, op, errors.CodeNetworkError,
			"request failed: "+err.Error(), "", 0)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, errors.NewRemote(errors.KindTransport, op, errors.CodeNetworkError,
			"read response: "+err.Error(), "", resp.StatusCode)
	}

	if c.logger != nil {
		c.logger.Debug("%s %s -> %d (%d bytes)", method, path, resp.StatusCode, len(data))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return zero, decodeFailure(op, resp.StatusCode, data)
	}

	// An empty success body resolves to the zero value, never a parse error.
	if resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return zero, nil
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, errors.NewRemote(errors.KindTransport, op, errors.CodeNetworkError,
			"decode response: "+err.Error(), "", resp.StatusCode)
	}
	return out, nil
}

// decodeFailure maps a non-2xx response onto the error taxonomy. A body that
// does not parse as the structured failure shape collapses to the generic
// network-error code.
func decodeFailure(op string, status int, data []byte) error {
	var body ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		return errors.NewRemote(errors.KindTransport, op, errors.CodeNetworkError,
			"request failed", "", status)
	}

	kind := errors.KindBusiness
	switch {
	case body.Code == errors.CodeOTPRequired:
		kind = errors.KindStepUp
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = errors.KindAuth
	}
	return errors.NewRemote(kind, op, body.Code, body.Error, body.Details, status)
}
