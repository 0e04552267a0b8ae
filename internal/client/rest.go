package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/corvino/roomboard/internal/protocol"
)

// HTTPClient talks to the board's REST API.
type HTTPClient struct {
	BaseURL string
	client  *http.Client
}

// NewHTTPClient creates a REST client for baseURL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPClient) url(path string) string {
	return c.BaseURL + path
}

// Rooms fetches the current board.
func (c *HTTPClient) Rooms() (*protocol.RoomList, error) {
	var list protocol.RoomList
	if err := c.get("/api/rooms", &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Health fetches server health.
func (c *HTTPClient) Health() (*protocol.HealthResponse, error) {
	var health protocol.HealthResponse
	if err := c.get("/api/health", &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// SetStatus sets room to a client token (OK, NOK, RESET).
func (c *HTTPClient) SetStatus(room, token string) (*protocol.UpdateResponse, error) {
	body, err := json.Marshal(protocol.UpdateRequest{Status: token})
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	u := c.url(fmt.Sprintf("/api/rooms/%s/status", url.PathEscape(room)))
	resp, err := c.client.Post(u, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var out protocol.UpdateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) get(path string, v any) error {
	u := c.url(path)
	resp, err := c.client.Get(u)
	if err != nil {
		return fmt.Errorf("GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readError(resp *http.Response) error {
	b, _ := io.ReadAll(resp.Body)
	var e protocol.ErrorResponse
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
}
