package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"prepwise/internal/config"
)

// VariableValues are substituted into the assistant's prompts by the voice platform.
type VariableValues struct {
	Username string `json:"username"`
	UserID   string `json:"userid"`
}

type customer struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

type createCallRequest struct {
	AssistantID    string         `json:"assistantId"`
	Type           string         `json:"type"`
	Customer       customer       `json:"customer"`
	VariableValues VariableValues `json:"variableValues"`
}

type webCallRequest struct {
	AssistantID string `json:"assistantId"`
	Assistant   struct {
		VariableValues VariableValues `json:"variableValues"`
	} `json:"assistant"`
}

type WebCall struct {
	ID         string `json:"id"`
	WebCallURL string `json:"webCallUrl"`
}

// UpstreamError is a non-2xx answer from the voice platform. Body is the
// response JSON verbatim, or {"message": text} when it was not JSON.
type UpstreamError struct {
	Status int
	Body   json.RawMessage
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("vapi returned %d: %s", e.Status, string(e.Body))
}

type Client struct {
	baseURL     string
	privateKey  string
	assistantID string
	workflowID  string
	httpClient  *http.Client
}

func NewClient(cfg config.VapiConfig) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.vapi.ai"
	}
	return &Client{
		baseURL:     strings.TrimRight(base, "/"),
		privateKey:  cfg.PrivateKey,
		assistantID: cfg.AssistantID,
		workflowID:  cfg.WorkflowID,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateCall starts an assistant call for the user and returns the call object as sent.
func (c *Client) CreateCall(ctx context.Context, userName, userID string) (json.RawMessage, error) {
	body := createCallRequest{
		AssistantID:    c.assistantID,
		Type:           "assistant",
		Customer:       customer{Number: userID, Name: userName},
		VariableValues: VariableValues{Username: userName, UserID: userID},
	}

	raw, err := c.post(ctx, "/call", body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("vapi returned malformed JSON")
	}
	return json.RawMessage(raw), nil
}

// StartWebCall starts a browser call against the interview workflow.
func (c *Client) StartWebCall(ctx context.Context, userName, userID string) (*WebCall, error) {
	var body webCallRequest
	body.AssistantID = c.workflowID
	body.Assistant.VariableValues = VariableValues{Username: userName, UserID: userID}

	raw, err := c.post(ctx, "/call/web", body)
	if err != nil {
		return nil, err
	}

	var call WebCall
	if err := json.Unmarshal(raw, &call); err != nil {
		return nil, fmt.Errorf("decode web call: %w", err)
	}
	return &call, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.privateKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vapi request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read vapi response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: upstreamBody(raw)}
	}
	return raw, nil
}

func upstreamBody(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	wrapped, _ := json.Marshal(map[string]string{"message": string(raw)})
	return wrapped
}
