package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/lifelink/internal/client/models"
	"github.com/dmitrijs2005/lifelink/internal/common"
	"github.com/dmitrijs2005/lifelink/internal/logging"
	"github.com/google/uuid"
)

const maxResponseBytes = 4 << 20

// HTTPClient talks to the directory service over its JSON REST API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	log     logging.Logger

	mu     sync.RWMutex
	tokens TokenSource

	events emitter
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

// WithTimeout sets a per-request timeout on the underlying *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

// NewHTTPClient returns a client rooted at baseURL, e.g.
// "http://localhost:5000/api".
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{},
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenSource swaps the credential source. The session installs itself
// here once it exists.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

func (c *HTTPClient) Subscribe(fn func(Event)) func() {
	return c.events.subscribe(fn)
}

type authResponse struct {
	Token string             `json:"token"`
	User  *models.UserRecord `json:"user"`
}

type userResponse struct {
	User *models.UserRecord `json:"user"`
}

type locationResponse struct {
	Location *models.GeoPoint `json:"location"`
}

type availabilityResponse struct {
	IsAvailable *bool `json:"isAvailable"`
}

type searchResponse struct {
	Donors []models.DonorResult `json:"donors"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (c *HTTPClient) Register(ctx context.Context, req models.RegisterRequest) (*models.Credential, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	return credentialFrom(resp)
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.Credential, error) {
	var resp authResponse
	body := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &resp); err != nil {
		return nil, err
	}
	return credentialFrom(resp)
}

func credentialFrom(resp authResponse) (*models.Credential, error) {
	if resp.Token == "" || resp.User == nil {
		return nil, fmt.Errorf("auth response: %w: token or user missing", ErrMalformedResponse)
	}
	return &models.Credential{Token: resp.Token, User: *resp.User}, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.UserRecord, error) {
	return c.getUser(ctx, http.MethodGet, "/auth/me", nil)
}

func (c *HTTPClient) GetUserProfile(ctx context.Context) (*models.UserRecord, error) {
	return c.getUser(ctx, http.MethodGet, "/user/profile", nil)
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) (*models.UserRecord, error) {
	return c.getUser(ctx, http.MethodPut, "/auth/update", upd)
}

func (c *HTTPClient) getUser(ctx context.Context, method, path string, body any) (*models.UserRecord, error) {
	var resp userResponse
	if err := c.do(ctx, method, path, nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("%s %s: %w: user missing", method, path, ErrMalformedResponse)
	}
	return resp.User, nil
}

func (c *HTTPClient) UpdateLocation(ctx context.Context, upd models.LocationUpdate) (*models.GeoPoint, error) {
	var resp locationResponse
	if err := c.do(ctx, http.MethodPut, "/user/update-location", nil, upd, &resp); err != nil {
		return nil, err
	}
	if resp.Location == nil {
		return nil, fmt.Errorf("update location: %w: location missing", ErrMalformedResponse)
	}
	return resp.Location, nil
}

func (c *HTTPClient) ToggleAvailability(ctx context.Context) (bool, error) {
	var resp availabilityResponse
	if err := c.do(ctx, http.MethodPut, "/user/toggle-availability", nil, nil, &resp); err != nil {
		return false, err
	}
	if resp.IsAvailable == nil {
		return false, fmt.Errorf("toggle availability: %w: isAvailable missing", ErrMalformedResponse)
	}
	return *resp.IsAvailable, nil
}

func (c *HTTPClient) SearchDonors(ctx context.Context, q models.SearchQuery) ([]models.DonorResult, error) {
	params := url.Values{}
	params.Set("bloodGroup", q.BloodGroup)
	params.Set("longitude", strconv.FormatFloat(q.Center.Longitude, 'f', -1, 64))
	params.Set("latitude", strconv.FormatFloat(q.Center.Latitude, 'f', -1, 64))
	params.Set("distance", strconv.Itoa(q.RadiusMeters))

	var resp searchResponse
	if err := c.do(ctx, http.MethodGet, "/medical/search", params, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Donors == nil {
		return []models.DonorResult{}, nil
	}
	return resp.Donors, nil
}

func (c *HTTPClient) GetDonorStats(ctx context.Context) (*models.DonorStats, error) {
	var stats models.DonorStats
	if err := c.do(ctx, http.MethodGet, "/medical/stats", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// do sends one request and decodes a 2xx body into out. Failures are
// classified as ErrUnavailable (no answer), *APIError (non-2xx) or
// ErrMalformedResponse (undecodable body). A 401 also emits
// EventSessionExpired.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), rdr)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.token(); tok != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "directory request failed",
			"method", method, "path", path, "duration", time.Since(start),
			"request_id", requestID, "error", err)
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.log.Debug(ctx, "directory request",
		"method", method, "path", path, "status", resp.StatusCode,
		"duration", time.Since(start), "request_id", requestID)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w: %w", method, path, ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.Unmarshal(data, &e)
		apiErr := &APIError{Status: resp.StatusCode, Message: e.Message, Err: statusError(resp.StatusCode)}
		if resp.StatusCode == http.StatusUnauthorized {
			c.log.Warn(ctx, "directory rejected credential", "path", path, "request_id", requestID)
			c.events.emit(EventSessionExpired)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrMalformedResponse, err)
	}
	return nil
}
