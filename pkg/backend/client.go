package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpc"
)

const callServiceName = "call-backend"

// StartCallRequest asks the orchestration backend to place an outbound call.
type StartCallRequest struct {
	ElderID     string `json:"elderId"`
	PhoneNumber string `json:"phoneNumber"`
	Prompt      string `json:"prompt"`
}

var ErrMissingFields = errors.New("elderId, phoneNumber, prompt are required")

func (r StartCallRequest) Validate() error {
	if strings.TrimSpace(r.ElderID) == "" ||
		strings.TrimSpace(r.PhoneNumber) == "" ||
		strings.TrimSpace(r.Prompt) == "" {
		return ErrMissingFields
	}
	return nil
}

// StartCallResult is the backend's answer. Raw keeps the body verbatim.
type StartCallResult struct {
	Success   bool   `json:"success"`
	SessionID string `json:"sessionId"`
	CallSid   string `json:"callSid"`
	Error     string `json:"error,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// RejectedError is a backend refusal to place the call.
type RejectedError struct {
	Status  int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("call rejected (%d): %s", e.Status, e.Message)
}

// CallClient talks to the call-orchestration backend over HTTP.
type CallClient struct {
	baseURL string
	svc     httpc.Service
}

func NewCallClient(baseURL string, timeout time.Duration) *CallClient {
	return &CallClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		svc:     httpc.NewServiceWithClient(callServiceName, &http.Client{Timeout: timeout}),
	}
}

// StartCall posts the request to <baseURL>/call.
func (c *CallClient) StartCall(ctx context.Context, req StartCallRequest) (*StartCallResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := c.svc.Do(ctx, http.MethodPost, c.baseURL+"/call", req)
	if err != nil {
		return nil, fmt.Errorf("call backend: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read backend response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logx.WithContext(ctx).Errorf("backend rejected call for elder %s: %d %s", req.ElderID, resp.StatusCode, body)
		return nil, &RejectedError{
			Status:  resp.StatusCode,
			Message: "Backend server error: " + string(body),
		}
	}

	var result StartCallResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode backend response: %w", err)
	}
	result.Raw = body

	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "Backend server error: call was not started"
		}
		return nil, &RejectedError{Status: http.StatusBadGateway, Message: msg}
	}
	if result.SessionID == "" {
		return nil, &RejectedError{Status: http.StatusBadGateway, Message: "Backend server error: response has no sessionId"}
	}

	return &result, nil
}
