package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNormalizeHelpers(t *testing.T) {
	if got := NormalizeEmail("  Ada@Example.COM "); got != "ada@example.com" {
		t.Fatalf("NormalizeEmail: expected ada@example.com, got %s", got)
	}
}

func TestStripFences(t *testing.T) {
	input := "```json\n[\"a\"]\n```\n"
	want := `["a"]`

	if got := StripFences(input); got != want {
		t.Fatalf("StripFences: expected %q, got %q", want, got)
	}

	raw := "  [\"a\"]  "
	if got := StripFences(raw); got != `["a"]` {
		t.Fatalf("StripFences (no fences): expected trimmed string, got %q", got)
	}

	if got := StripFences("```"); got != "" {
		t.Fatalf("StripFences (bare fence): expected empty string, got %q", got)
	}
}

func TestJSONHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	payload := map[string]string{"hello": "world"}

	JSON(rec, http.StatusCreated, payload)

	if rec.Code != http.StatusCreated {
		t.Fatalf("JSON: expected status %d, got %d", http.StatusCreated, rec.Code)
	}
	if contentType := rec.Header().Get("Content-Type"); contentType != "application/json" {
		t.Fatalf("JSON: expected content-type application/json, got %s", contentType)
	}

	var got map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("JSON decode failed: %v", err)
	}
	if got["hello"] != "world" {
		t.Fatalf("JSON body mismatch: %+v", got)
	}

	rec2 := httptest.NewRecorder()
	JSONError(rec2, http.StatusBadGateway, "upstream down")

	if rec2.Code != http.StatusBadGateway {
		t.Fatalf("JSONError: expected status %d, got %d", http.StatusBadGateway, rec2.Code)
	}
	if !strings.Contains(rec2.Body.String(), `"success":false`) {
		t.Fatalf("JSONError: expected success false, got %s", rec2.Body.String())
	}
}

func TestGetLoggerInitializesOnce(t *testing.T) {
	Logger = nil
	first := GetLogger()
	if first == nil || GetLogger() != first {
		t.Fatal("expected GetLogger to return the same initialized logger")
	}
}
