package types

import (
	"fmt"

	"github.com/Medicare-Call/Medicare-Call-Telephony-Frontend-JH/pkg/model"
)

type StartCallRequest struct {
	ElderID     string `json:"elderId,optional"`
	PhoneNumber string `json:"phoneNumber,optional"`
	Prompt      string `json:"prompt,optional"`
}

type StartCallResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type DashboardRequest struct {
	Query string `form:"q,optional"`
}

type DashboardResponse struct {
	model.DashboardSnapshot
	DefaultPrompt string `json:"defaultPrompt"`
}

type UpdateSessionRequest struct {
	Session map[string]any `json:"session,optional"`
}

type UpdateSessionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type ExportResponse struct {
	Filename string
	Content  string
}

type HealthResponse struct {
	Status     string `json:"status"`
	CallStatus string `json:"callStatus"`
}

// CallError carries the HTTP status a handler should answer with.
type CallError struct {
	Code    int
	Message string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}
