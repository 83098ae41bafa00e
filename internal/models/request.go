package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// FlexString accepts a JSON string, number or boolean. Voice platform variables
// arrive with whatever type the assistant extracted.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
		return nil
	case '{', '[':
		return errors.New("expected a scalar value")
	default:
		*f = FlexString(string(data))
		return nil
	}
}

// FlexList accepts either a comma separated string or an array of scalars.
type FlexList []string

func (l *FlexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []FlexString
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			if s := strings.TrimSpace(string(item)); s != "" {
				out = append(out, s)
			}
		}
		*l = out
		return nil
	}
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	*l = SplitTechstack(string(s))
	return nil
}

// SplitTechstack splits on commas and trims, never returning nil.
func SplitTechstack(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// generatePayload is the wire shape; the same fields may also be nested under "message".
type generatePayload struct {
	Type      FlexString       `json:"type"`
	Role      FlexString       `json:"role"`
	Level     FlexString       `json:"level"`
	Techstack *FlexList        `json:"techstack"`
	Amount    FlexString       `json:"amount"`
	UserID    FlexString       `json:"userid"`
	UserIDAlt FlexString       `json:"userId"`
	Message   *generatePayload `json:"message"`
}

// GenerateRequest is the canonical question generation request.
type GenerateRequest struct {
	Type      string
	Role      string
	Level     string
	Techstack []string
	Amount    string
	UserID    string
}

func (r *GenerateRequest) UnmarshalJSON(data []byte) error {
	var p generatePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = p.normalize()
	return nil
}

// flat fields win; anything absent falls back to the nested message
func (p *generatePayload) normalize() GenerateRequest {
	nested := GenerateRequest{}
	if p.Message != nil {
		nested = p.Message.normalize()
	}

	pick := func(flat FlexString, fallback string) string {
		if s := string(flat); s != "" {
			return s
		}
		return fallback
	}

	userID := string(p.UserID)
	if userID == "" {
		userID = string(p.UserIDAlt)
	}

	req := GenerateRequest{
		Type:   pick(p.Type, nested.Type),
		Role:   pick(p.Role, nested.Role),
		Level:  pick(p.Level, nested.Level),
		Amount: pick(p.Amount, nested.Amount),
		UserID: pick(FlexString(userID), nested.UserID),
	}
	switch {
	case p.Techstack != nil && len(*p.Techstack) > 0:
		req.Techstack = []string(*p.Techstack)
	case nested.Techstack != nil:
		req.Techstack = nested.Techstack
	default:
		req.Techstack = []string{}
	}
	return req
}

// MissingFields lists absent required fields in wire order.
func (r *GenerateRequest) MissingFields() []string {
	var missing []string
	if r.Type == "" {
		missing = append(missing, "type")
	}
	if r.Role == "" {
		missing = append(missing, "role")
	}
	if r.Level == "" {
		missing = append(missing, "level")
	}
	if r.Amount == "" {
		missing = append(missing, "amount")
	}
	if r.UserID == "" {
		missing = append(missing, "userid")
	}
	return missing
}

// implements the Validator interface
func (r *GenerateRequest) Validate() error {
	if missing := r.MissingFields(); len(missing) > 0 {
		return &ErrorResponse{
			Detail:        "Missing required fields: " + strings.Join(missing, ", "),
			MissingFields: missing,
		}
	}
	return nil
}

// QuestionLimit is the parsed amount when it is a positive integer, else MaxQuestions.
func (r *GenerateRequest) QuestionLimit() int {
	n, err := strconv.Atoi(strings.TrimSpace(r.Amount))
	if err != nil || n <= 0 || n > MaxQuestions {
		return MaxQuestions
	}
	return n
}

// CallRequest starts either kind of voice call for a signed in user.
type CallRequest struct {
	UserName string `json:"userName"`
	UserID   string `json:"userId"`
}

func (r *CallRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.UserName) == "" {
		missing = append(missing, "userName")
	}
	if strings.TrimSpace(r.UserID) == "" {
		missing = append(missing, "userId")
	}
	if len(missing) > 0 {
		return &ErrorResponse{
			Detail:        "Missing required fields: " + strings.Join(missing, ", "),
			MissingFields: missing,
		}
	}
	return nil
}
