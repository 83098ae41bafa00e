package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeGenerate(t *testing.T, body string) *GenerateRequest {
	t.Helper()
	var req GenerateRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func TestGenerateRequestFlatPayload(t *testing.T) {
	req := decodeGenerate(t, `{"type":"technical","role":"Frontend Engineer","level":"Junior",
		"techstack":"React, TypeScript ,,Next.js","amount":5,"userid":"uid-1"}`)

	assert.Equal(t, "technical", req.Type)
	assert.Equal(t, "Frontend Engineer", req.Role)
	assert.Equal(t, "Junior", req.Level)
	assert.Equal(t, []string{"React", "TypeScript", "Next.js"}, req.Techstack)
	assert.Equal(t, "5", req.Amount)
	assert.Equal(t, "uid-1", req.UserID)
	assert.NoError(t, req.Validate())
}

func TestGenerateRequestNestedUnderMessage(t *testing.T) {
	req := decodeGenerate(t, `{"message":{"type":"mixed","role":"SRE","level":"Senior",
		"techstack":["Go","Kubernetes"],"amount":"3","userId":"uid-2"}}`)

	assert.Equal(t, "mixed", req.Type)
	assert.Equal(t, []string{"Go", "Kubernetes"}, req.Techstack)
	assert.Equal(t, "uid-2", req.UserID)
	assert.NoError(t, req.Validate())
}

func TestGenerateRequestFlatFieldsWinOverNested(t *testing.T) {
	req := decodeGenerate(t, `{"role":"Backend","message":{"role":"Frontend","type":"technical"}}`)

	assert.Equal(t, "Backend", req.Role)
	assert.Equal(t, "technical", req.Type)
}

func TestGenerateRequestMissingFields(t *testing.T) {
	req := decodeGenerate(t, `{"role":"Backend","techstack":"Go","userid":"uid"}`)

	err := req.Validate()
	require.Error(t, err)
	resp, ok := err.(*ErrorResponse)
	require.True(t, ok, "expected ErrorResponse, got %T", err)
	assert.Equal(t, []string{"type", "level", "amount"}, resp.MissingFields)
	assert.False(t, resp.Success)
	assert.True(t, strings.HasPrefix(resp.Error(), "Missing required fields"))
}

func TestGenerateRequestTechstackDefaultsToEmpty(t *testing.T) {
	req := decodeGenerate(t, `{"type":"technical"}`)
	assert.NotNil(t, req.Techstack)
	assert.Empty(t, req.Techstack)

	req = decodeGenerate(t, `{"techstack":null}`)
	assert.NotNil(t, req.Techstack)
}

func TestGenerateRequestRejectsObjectScalars(t *testing.T) {
	var req GenerateRequest
	assert.Error(t, json.Unmarshal([]byte(`{"role":{"name":"x"}}`), &req))
}

func TestQuestionLimit(t *testing.T) {
	cases := map[string]int{
		"5":    5,
		" 10 ": 10,
		"0":    MaxQuestions,
		"-2":   MaxQuestions,
		"five": MaxQuestions,
		"500":  MaxQuestions,
	}
	for amount, want := range cases {
		req := &GenerateRequest{Amount: amount}
		assert.Equal(t, want, req.QuestionLimit(), "amount %q", amount)
	}
}

func TestCallRequestValidate(t *testing.T) {
	err := (&CallRequest{UserName: "Ada"}).Validate()
	require.Error(t, err)
	assert.Equal(t, []string{"userId"}, err.(*ErrorResponse).MissingFields)

	assert.NoError(t, (&CallRequest{UserName: "Ada", UserID: "uid"}).Validate())
}

func TestNewInterviewRecord(t *testing.T) {
	req := &GenerateRequest{Type: "technical", Role: "Backend", Level: "Mid", Amount: "2", UserID: "uid"}
	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.FixedZone("X", 3600))

	record := NewInterviewRecord(req, []string{"Q1", "Q2"}, now)

	assert.True(t, record.Finalized)
	assert.Equal(t, []string{}, record.Techstack)
	assert.Equal(t, []string{"Q1", "Q2"}, record.Questions)
	assert.Equal(t, "2025-03-01T08:30:00.000Z", record.CreatedAt)
	assert.True(t, strings.HasPrefix(record.CoverImage, "/covers/"))
}

func TestErrorResponseErrorWithStructuredDetail(t *testing.T) {
	resp := NewErrorResponse(map[string]string{"message": "bad key"})
	assert.Equal(t, `{"message":"bad key"}`, resp.Error())
}
