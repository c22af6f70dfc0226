package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/heavyduty/heavyduty-backend/internal/logger"
)

func newOpenAITestClient(t *testing.T, baseURL string) AIClient {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", baseURL)
	t.Setenv("OPENAI_MODEL", "gpt-test")
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	client, err := NewOpenAIClient(log)
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	return client
}

func TestOpenAIClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	if _, err := NewOpenAIClient(log); err == nil {
		t.Fatalf("expected configuration error without OPENAI_API_KEY")
	}
}

func TestOpenAIClient_GenerateJSONText(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer auth")
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": `{"status":"GO"}`}},
			},
			"usage": map[string]any{"total_tokens": 99},
		})
	}))
	defer srv.Close()

	client := newOpenAITestClient(t, srv.URL)
	gen, err := client.GenerateJSONText(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("GenerateJSONText: %v", err)
	}
	if gen.Text != `{"status":"GO"}` || gen.TokensUsed != 99 || gen.Model != "gpt-test" {
		t.Fatalf("unexpected generation: %+v", gen)
	}

	if gotBody["temperature"] != 0.2 {
		t.Fatalf("temperature must be fixed at 0.2, got %v", gotBody["temperature"])
	}
	rf, _ := gotBody["response_format"].(map[string]any)
	if rf == nil || rf["type"] != "json_object" {
		t.Fatalf("expected json_object response_format, got %v", gotBody["response_format"])
	}
}

func TestOpenAIClient_NoRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newOpenAITestClient(t, srv.URL)
	if _, err := client.GenerateJSONText(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error on 500")
	}
	if calls.Load() != 1 {
		t.Fatalf("the advisor is called at most once per request, got %d calls", calls.Load())
	}
}

func TestOpenAIClient_EmptyContentIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": ""}},
			},
		})
	}))
	defer srv.Close()

	client := newOpenAITestClient(t, srv.URL)
	if _, err := client.GenerateJSONText(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error for empty content")
	}
}
