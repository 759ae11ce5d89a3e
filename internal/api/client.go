// Package api is the thin client for the backend's action-based admin
// API. Every call is one JSON POST naming an action ("settings.get",
// "settings.site.save", ...) with a flat string parameter map; the
// transport carries no other semantics. Authentication is a bearer
// token passed through opaquely.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Action names for the settings surface. One save action per domain;
// the permalink domain saves through the system action.
const (
	ActionSettingsGet = "settings.get"

	ActionProfileSave     = "settings.user.profile.save"
	ActionUserOptionsSave = "settings.user.options.save"
	ActionSiteSave        = "settings.site.save"
	ActionStorageSave     = "settings.storage.save"
	ActionReadingSave     = "settings.content.save"
	ActionDiscussionSave  = "settings.discussion.save"
	ActionNotifySave      = "settings.notify.save"
	ActionPermalinkSave   = "settings.system.save"
)

// CodeRewriteCheckFailed is the machine-readable diagnostic the server
// attaches when it refuses the requested rewrite mode. Callers can
// offer an enable-anyway retry for exactly this code.
const CodeRewriteCheckFailed = "rewrite-check-failed"

// Error is a structured failure from an action call.
type Error struct {
	Action  string
	Code    string
	Message string
	Status  int // HTTP status, 0 for transport failures
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Action, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

// IsCapabilityRejected reports whether err is the server refusing the
// requested rewrite capability, as opposed to a generic failure.
// Uses errors.As to handle wrapped errors.
func IsCapabilityRejected(err error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == CodeRewriteCheckFailed
	}
	return false
}

// Client issues action calls against one backend.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests).
func WithHTTPClient(httpc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpc = httpc
	}
}

// NewClient creates a client for the action endpoint at baseURL.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request is the wire envelope for one action call.
type request struct {
	Action    string            `json:"action"`
	RequestID string            `json:"requestId"`
	Params    map[string]string `json:"params,omitempty"`
}

// response is the wire envelope for one action result.
type response struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *struct {
		Code    string `json:"code,omitempty"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Do issues one action call and returns the raw data payload.
// Server-side failures come back as *Error with the server's code and
// message; transport failures are wrapped plainly.
func (c *Client) Do(ctx context.Context, action string, params map[string]string) (json.RawMessage, error) {
	reqID := uuid.Must(uuid.NewV7()).String()

	body, err := json.Marshal(request{
		Action:    action,
		RequestID: reqID,
		Params:    params,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", action, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", action, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	slog.Debug("action call",
		"action", action,
		"request_id", reqID,
	)

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", action, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", action, err)
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &Error{
			Action:  action,
			Message: fmt.Sprintf("malformed response: %v", err),
			Status:  httpResp.StatusCode,
		}
	}

	if resp.Error != nil {
		return nil, &Error{
			Action:  action,
			Code:    resp.Error.Code,
			Message: resp.Error.Message,
			Status:  httpResp.StatusCode,
		}
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, &Error{
			Action:  action,
			Message: fmt.Sprintf("unexpected status %d", httpResp.StatusCode),
			Status:  httpResp.StatusCode,
		}
	}

	return resp.Data, nil
}
