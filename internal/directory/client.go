package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/yaknet/monkeysync/internal/model"
)

var _ Directory = (*Client)(nil)

// ClientConfig configures the directory API client.
type ClientConfig struct {
	APIURL  string // e.g. https://example.monkeypod.io/api/v2
	Token   string
	Timeout time.Duration // Default: 30 seconds
}

// Client is a MonkeyPod API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// APIError is a non-2xx response from the directory API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("directory API error (status %d): %s", e.StatusCode, e.Message)
}

// Is maps 404 responses to ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// NewClient creates a directory client. A non-empty token is sent as a
// bearer token on every request.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{}
	if config.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}
	httpClient.Timeout = timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(config.APIURL, "/"),
	}
}

// Match returns entities matching q.
func (c *Client) Match(ctx context.Context, q model.MatchQuery) ([]model.Entity, error) {
	params := url.Values{}
	if q.ID != "" {
		params.Set("id", q.ID)
	}
	if q.Email != "" {
		params.Set("email", q.Email)
	}
	if q.Name != "" {
		params.Set("name", q.Name)
	}
	if q.Metadata != "" {
		params.Set("metadata", q.Metadata)
	}

	var entities []model.Entity
	if err := c.do(ctx, http.MethodGet, "entities/match?"+params.Encode(), nil, &entities); err != nil {
		return nil, fmt.Errorf("matching entities: %w", err)
	}
	return entities, nil
}

// Create creates an entity and returns the stored record.
func (c *Client) Create(ctx context.Context, e model.Entity) (model.Entity, error) {
	var created model.Entity
	if err := c.do(ctx, http.MethodPost, "entities", e, &created); err != nil {
		return model.Entity{}, fmt.Errorf("creating entity: %w", err)
	}
	return created, nil
}

// Delete removes an entity by id, or by email when the email matches
// exactly one entity.
func (c *Client) Delete(ctx context.Context, req DeleteRequest) error {
	id, err := ResolveDelete(ctx, c, req)
	if err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodDelete, "entities/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("deleting entity %s: %w", id, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp)
	}
	if out == nil {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Responses are wrapped in {"data": ...}; accept bare objects too.
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && len(env.Data) > 0 {
		data = env.Data
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseError builds an APIError from an error response.
func parseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "failed to read error response"}
	}

	var errResp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	msg := errResp.Error
	if errResp.Message != "" {
		msg = errResp.Message
	}
	if errResp.ErrorDescription != "" {
		msg = msg + " - " + errResp.ErrorDescription
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
