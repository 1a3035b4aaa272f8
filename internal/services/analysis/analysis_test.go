package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lesion.jpg")
	if err := os.WriteFile(path, []byte{0xFF, 0xD8, 0xFF, 0xE0}, 0o600); err != nil {
		t.Fatalf("writing image fixture: %v", err)
	}
	return path
}

func replyWithText(text string) string {
	body := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{"text": text}},
			},
		}},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func TestAnalyzeParsesFencedJSON(t *testing.T) {
	reply := "```json\n{\"condition\": \"Eczema\", \"confidence\": \"87.5\", \"severity\": \"moderate\", \"steps\": [\"Apply moisturizer\", \"Avoid hot water\"], \"warnings\": \"Spreading redness\"}\n```"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("expected api key in query, got %q", r.URL.RawQuery)
		}
		fmt.Fprint(w, replyWithText(reply))
	}))
	defer srv.Close()

	client := NewClient("test-key", "gemini-1.5-flash", srv.URL, WithHTTPClient(srv.Client()))
	env, err := client.Analyze(context.Background(), writeImage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Condition != "Eczema" {
		t.Errorf("condition = %q, want Eczema", env.Condition)
	}
	if float64(env.Confidence) != 87.5 {
		t.Errorf("confidence = %v, want 87.5", env.Confidence)
	}
	if len(env.Steps) != 2 || env.Steps[0] != "Apply moisturizer" {
		t.Errorf("steps = %v", env.Steps)
	}
	if len(env.Warnings) != 1 || env.Warnings[0] != "Spreading redness" {
		t.Errorf("scalar warning not promoted to list: %v", env.Warnings)
	}
}

func TestAnalyzeRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient("test-key", "gemini-1.5-flash", srv.URL, WithHTTPClient(srv.Client()))
	env, err := client.Analyze(context.Background(), writeImage(t))
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if env.Condition != "Analysis unavailable" {
		t.Errorf("expected fallback envelope, got condition %q", env.Condition)
	}
}

func TestAnalyzeMalformedReplyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, replyWithText("the image shows a rash, not JSON"))
	}))
	defer srv.Close()

	client := NewClient("test-key", "gemini-1.5-flash", srv.URL, WithHTTPClient(srv.Client()))
	env, err := client.Analyze(context.Background(), writeImage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Condition != "Analysis unavailable" {
		t.Errorf("expected fallback, got %q", env.Condition)
	}
	if env.Severity != "MINOR" {
		t.Errorf("fallback severity = %q, want MINOR", env.Severity)
	}
	if len(env.Warnings) == 0 {
		t.Error("fallback should carry the failure in warnings")
	}
}

func TestAnalyzeMissingAPIKey(t *testing.T) {
	client := NewClient("", "gemini-1.5-flash", "http://127.0.0.1:0")
	env, err := client.Analyze(context.Background(), writeImage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Condition != "Analysis unavailable" {
		t.Errorf("expected fallback, got %q", env.Condition)
	}
}

func TestAnalyzeSafetyBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"candidates": [], "promptFeedback": {"blockReason": "SAFETY"}}`)
	}))
	defer srv.Close()

	client := NewClient("test-key", "gemini-1.5-flash", srv.URL, WithHTTPClient(srv.Client()))
	env, err := client.Analyze(context.Background(), writeImage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Condition != "Analysis unavailable" {
		t.Errorf("expected fallback, got %q", env.Condition)
	}
	if env.Warnings[0] != "analysis request blocked: SAFETY" {
		t.Errorf("warnings = %v", env.Warnings)
	}
}

func TestAnalyzeAliasFields(t *testing.T) {
	reply := `{"diagnosis": "Psoriasis", "score": 64, "severity": "URGENT", "advice": ["See a dermatologist"]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, replyWithText(reply))
	}))
	defer srv.Close()

	client := NewClient("test-key", "gemini-1.5-flash", srv.URL, WithHTTPClient(srv.Client()))
	env, err := client.Analyze(context.Background(), writeImage(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env.Diagnosis != "Psoriasis" {
		t.Errorf("diagnosis = %q", env.Diagnosis)
	}
	if float64(env.Score) != 64 {
		t.Errorf("score = %v", env.Score)
	}
	if len(env.Advice) != 1 {
		t.Errorf("advice = %v", env.Advice)
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tc := range cases {
		if got := stripFences(tc.in); got != tc.want {
			t.Errorf("stripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
