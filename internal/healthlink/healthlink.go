// Package healthlink mirrors training sessions to an external health
// platform. The link is strictly best-effort: the engine fires start/end
// calls and observes failures only through its failure hook, so nothing
// here may block or break a session.
package healthlink

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

// Client posts workout session events to a health-platform bridge (the
// phone-side agent that owns the actual HealthKit/Health Connect session).
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a Client targeting the given bridge base URL.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type startResponse struct {
	SessionID string `json:"session_id"`
}

// StartSession opens an external workout session and returns its handle.
func (c *Client) StartSession(ctx context.Context) (string, error) {
	body, err := c.post(ctx, "/v1/workout-sessions", map[string]string{
		"activity": "strength_training",
	})
	if err != nil {
		return "", err
	}

	var resp startResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding health session response: %w", err)
	}
	if resp.SessionID == "" {
		return "", fmt.Errorf("health bridge returned empty session id")
	}
	return resp.SessionID, nil
}

// EndSession closes an external workout session.
func (c *Client) EndSession(ctx context.Context, externalID string) error {
	_, err := c.post(ctx, "/v1/workout-sessions/"+externalID+"/end", nil)
	return err
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling health payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building health request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling health bridge: %w", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health bridge request failed (status %d): %s", resp.StatusCode, data)
	}
	return data, nil
}
