package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/dayplan/internal/engine"
	"github.com/claude/dayplan/internal/models"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the dayplan REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError is the server's error body shape.
type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, payload any) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("httpclient: encode payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Surface the engine's error taxonomy when the server sent one.
		var ae apiError
		if json.Unmarshal(data, &ae) == nil && ae.Code != "" {
			return nil, &engine.Error{Code: engine.ErrorCode(ae.Code), Message: ae.Error}
		}
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, data)
	}
	return data, nil
}

func userParams(userID int) url.Values {
	v := url.Values{}
	v.Set("user_id", strconv.Itoa(userID))
	return v
}

func (c *HTTPClient) anchor(ctx context.Context, method, path string, userID int, payload any) (models.DecisionAnchorData, error) {
	var params url.Values
	if method == http.MethodGet {
		params = userParams(userID)
	}
	data, err := c.do(ctx, method, path, params, payload)
	if err != nil {
		return models.DecisionAnchorData{}, err
	}
	var anchor models.DecisionAnchorData
	if err := json.Unmarshal(data, &anchor); err != nil {
		return models.DecisionAnchorData{}, fmt.Errorf("httpclient: decode anchor: %w", err)
	}
	return anchor, nil
}

func (c *HTTPClient) Resolve(ctx context.Context, userID int, date string) (models.DecisionAnchorData, error) {
	return c.anchor(ctx, http.MethodGet, "/api/v1/day/"+date+"/anchor", userID, nil)
}

func (c *HTTPClient) DayEvents(ctx context.Context, userID int, date string) ([]models.CalendarEvent, error) {
	data, err := c.do(ctx, http.MethodGet, "/api/v1/day/"+date+"/events", userParams(userID), nil)
	if err != nil {
		return nil, err
	}
	var events []models.CalendarEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("httpclient: decode events: %w", err)
	}
	return events, nil
}

func (c *HTTPClient) Focus(ctx context.Context, userID int, date string) (*models.WeeklyFocus, error) {
	params := userParams(userID)
	params.Set("week", date)
	data, err := c.do(ctx, http.MethodGet, "/api/v1/focus", params, nil)
	if err != nil {
		if engine.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var focus models.WeeklyFocus
	if err := json.Unmarshal(data, &focus); err != nil {
		return nil, fmt.Errorf("httpclient: decode focus: %w", err)
	}
	return &focus, nil
}

func (c *HTTPClient) Start(ctx context.Context, userID int, date string, source engine.StartSource) (models.DecisionAnchorData, error) {
	return c.anchor(ctx, http.MethodPost, "/api/v1/day/"+date+"/workout/start", userID,
		map[string]any{"user_id": userID, "source": source})
}

func (c *HTTPClient) Reschedule(ctx context.Context, userID int, date string, option models.RescheduleOption) (models.DecisionAnchorData, error) {
	return c.anchor(ctx, http.MethodPost, "/api/v1/day/"+date+"/workout/reschedule", userID,
		map[string]any{"user_id": userID, "type": option.Type, "minutes": option.Minutes, "time": option.Time})
}

func (c *HTTPClient) Shorten(ctx context.Context, userID int, date string, option models.ShortenOption) (models.DecisionAnchorData, error) {
	return c.anchor(ctx, http.MethodPost, "/api/v1/day/"+date+"/workout/shorten", userID,
		map[string]any{"user_id": userID, "duration": int(option)})
}

func (c *HTTPClient) Complete(ctx context.Context, userID int, date string) (models.DecisionAnchorData, error) {
	return c.anchor(ctx, http.MethodPost, "/api/v1/day/"+date+"/workout/complete", userID,
		map[string]any{"user_id": userID})
}

func (c *HTTPClient) Cancel(ctx context.Context, userID int, date string) (models.DecisionAnchorData, error) {
	return c.anchor(ctx, http.MethodPost, "/api/v1/day/"+date+"/workout/cancel", userID,
		map[string]any{"user_id": userID})
}

func (c *HTTPClient) Select(ctx context.Context, userID int, date string, workoutID uuid.UUID) (models.DecisionAnchorData, error) {
	return c.anchor(ctx, http.MethodPost, "/api/v1/day/"+date+"/workout/select", userID,
		map[string]any{"user_id": userID, "workout_id": workoutID.String()})
}
