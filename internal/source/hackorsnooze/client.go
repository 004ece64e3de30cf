package hackorsnooze

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"story_client/internal/domain"
)

const (
	DefaultBaseURL   = "https://hack-or-snooze-v3.herokuapp.com"
	defaultUserAgent = "StoryClient/1.0"
)

// Config holds API client configuration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client talks to the Hack or Snooze story API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *slog.Logger
}

// New creates a new API client.
func New(cfg Config, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		logger:    logger.With("api", baseURL),
	}
}

// ListStories fetches the global feed in server order.
func (c *Client) ListStories(ctx context.Context) ([]domain.Story, error) {
	var resp storiesResponse
	if err := c.do(ctx, http.MethodGet, "/stories", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Stories == nil {
		return nil, malformed("response without stories")
	}

	stories, err := transformStories(*resp.Stories)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched stories", "count", len(stories))
	return stories, nil
}

func (c *Client) CreateStory(ctx context.Context, token string, story domain.NewStory) (*domain.Story, error) {
	var resp storyResponse
	body := createStoryRequest{Token: token, Story: story}
	if err := c.do(ctx, http.MethodPost, "/stories", nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.Story == nil {
		return nil, malformed("response without story")
	}
	if err := resp.Story.validate(); err != nil {
		return nil, err
	}

	created := resp.Story.toDomain()
	return &created, nil
}

func (c *Client) DeleteStory(ctx context.Context, token, storyID string) error {
	path := "/stories/" + url.PathEscape(storyID)
	return c.do(ctx, http.MethodDelete, path, nil, tokenRequest{Token: token}, nil)
}

func (c *Client) Signup(ctx context.Context, username, password, name string) (*domain.User, error) {
	body := credentialsRequest{User: credentialsPayload{
		Username: username,
		Password: password,
		Name:     name,
	}}
	return c.authenticate(ctx, "/signup", body)
}

func (c *Client) Login(ctx context.Context, username, password string) (*domain.User, error) {
	body := credentialsRequest{User: credentialsPayload{
		Username: username,
		Password: password,
	}}

	user, err := c.authenticate(ctx, "/login", body)

	// The API answers an unknown username with 404; to the caller that is a bad login.
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %w", domain.ErrAuth, err)
	}
	return user, err
}

// GetUser fetches a profile; the returned user keeps the supplied token.
func (c *Client) GetUser(ctx context.Context, token, username string) (*domain.User, error) {
	var resp userResponse
	path := "/users/" + url.PathEscape(username)
	query := url.Values{"token": {token}}
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, malformed("response without user")
	}
	return resp.User.toDomain(token)
}

func (c *Client) AddFavorite(ctx context.Context, token, username, storyID string) error {
	return c.do(ctx, http.MethodPost, favoritePath(username, storyID), nil, tokenRequest{Token: token}, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, token, username, storyID string) error {
	return c.do(ctx, http.MethodDelete, favoritePath(username, storyID), nil, tokenRequest{Token: token}, nil)
}

func favoritePath(username, storyID string) string {
	return fmt.Sprintf("/users/%s/favorites/%s", url.PathEscape(username), url.PathEscape(storyID))
}

func (c *Client) authenticate(ctx context.Context, path string, body credentialsRequest) (*domain.User, error) {
	var resp userResponse
	if err := c.do(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, malformed("response without user")
	}
	if resp.Token == "" {
		return nil, malformed("response without token")
	}
	return resp.User.toDomain(resp.Token)
}

// do sends one request. A nil out means the response body is ignored.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", domain.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return malformed("decode %s %s: %v", method, path, err)
	}

	return nil
}

func (c *Client) apiError(resp *http.Response) error {
	apiErr := &domain.APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}

	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Title = body.Error.Title
		apiErr.Message = body.Error.Message
	}

	return apiErr
}
