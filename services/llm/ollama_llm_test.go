package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestOllamaClient(t *testing.T, handler http.HandlerFunc) *OllamaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("OLLAMA_BASE_URL", srv.URL)
	t.Setenv("OLLAMA_MODEL", "testmodel")

	client, err := NewOllamaClient()
	if err != nil {
		t.Fatalf("NewOllamaClient: %v", err)
	}
	return client
}

func TestOllamaGenerateUsesChatEndpoint(t *testing.T) {
	t.Setenv("SPECMEND_SYSTEM_PROMPT", "review specs strictly")

	var gotPath string
	var gotReq ollamaChatRequest
	client := newTestOllamaClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: Message{Role: "assistant", Content: "VALID: YES"},
			Done:    true,
		})
	})

	reply, err := client.Generate(context.Background(), "check this spec", GenerationParams{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reply != "VALID: YES" {
		t.Errorf("reply = %q, want %q", reply, "VALID: YES")
	}
	if gotPath != "/api/chat" {
		t.Errorf("path = %q, want /api/chat", gotPath)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("messages = %v, want a system and a user turn", gotReq.Messages)
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "review specs strictly" {
		t.Errorf("system turn = %+v", gotReq.Messages[0])
	}
	if gotReq.Messages[1].Role != "user" || gotReq.Messages[1].Content != "check this spec" {
		t.Errorf("user turn = %+v", gotReq.Messages[1])
	}
}

func TestOllamaGenerateDefaultPersona(t *testing.T) {
	t.Setenv("SPECMEND_SYSTEM_PROMPT", "")

	var gotReq ollamaChatRequest
	client := newTestOllamaClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: Message{Role: "assistant", Content: "ok"},
			Done:    true,
		})
	})

	if _, err := client.Generate(context.Background(), "check", GenerationParams{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Content != defaultValidatorPersona {
		t.Errorf("system turn = %+v, want the default validator persona", gotReq.Messages)
	}
}

func TestOllamaChatModelNotFound(t *testing.T) {
	client := newTestOllamaClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "model 'testmodel' not found",
		})
	})

	_, err := client.Chat(context.Background(), []Message{
		{Role: "user", Content: "hello"},
	}, GenerationParams{})
	if err == nil {
		t.Fatal("expected an error for a missing model")
	}
	if !strings.Contains(err.Error(), "ollama pull testmodel") {
		t.Errorf("error = %v, want a pull hint", err)
	}
}
