package models

import (
	"encoding/json"
	"time"
)

// ErrorResponse is the uniform failure body: {success:false, error, missingFields?}.
// Detail is usually a string but carries the upstream body verbatim for passthrough errors.
type ErrorResponse struct {
	Success       bool     `json:"success"`
	Detail        any      `json:"error"`
	MissingFields []string `json:"missingFields,omitempty"`
}

func NewErrorResponse(detail any) *ErrorResponse {
	return &ErrorResponse{Success: false, Detail: detail}
}

func (e *ErrorResponse) Error() string {
	if s, ok := e.Detail.(string); ok {
		return s
	}
	raw, _ := json.Marshal(e.Detail)
	return string(raw)
}

type GenerateResponse struct {
	Success     bool   `json:"success"`
	InterviewID string `json:"interviewId"`
}

type GenerateHealthResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type CreateCallResponse struct {
	Success bool            `json:"success"`
	Call    json.RawMessage `json:"call"`
}

type StartCallResponse struct {
	Success    bool   `json:"success"`
	WebCallURL string `json:"webCallUrl"`
	CallID     string `json:"callId"`
}

// AuthResult is what the gateway and the auth form report back to the browser.
type AuthResult struct {
	Success  bool                    `json:"success"`
	Message  string                  `json:"message"`
	Redirect string                  `json:"redirect,omitempty"`
	Details  []ValidationErrorDetail `json:"details,omitempty"`
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type InterviewsResponse struct {
	Total int               `json:"total"`
	Items []InterviewRecord `json:"items"`
}
