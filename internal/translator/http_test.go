package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOpenAIService_Translate_NoAPIKey(t *testing.T) {
	svc := NewOpenAIService("", "", "")

	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "Hello",
		SourceLang: "en",
		TargetLang: "fr",
	})

	if err == nil {
		t.Error("expected error when no API key")
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if result.Error == "" {
		t.Error("expected error message in result")
	}
}

func TestOpenAIService_Translate(t *testing.T) {
	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected Authorization header: %q", auth)
		}
		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		gotPrompt = req.Messages[len(req.Messages)-1].Content

		json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "gpt-4o",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Bonjour __SEG__ le monde"}},
			},
		})
	}))
	defer server.Close()

	svc := NewOpenAIService("test-key", server.URL, "")
	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text:       "Hello __SEG__ world",
		SourceLang: "en",
		TargetLang: "fr",
		HasMarkers: true,
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "Bonjour __SEG__ le monde" {
		t.Errorf("unexpected translation: %q", result.TranslatedText)
	}
	if !strings.Contains(gotPrompt, "__SEG__") {
		t.Error("prompt should mention the markers for marked payloads")
	}
}

func TestOpenAIService_Translate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	}))
	defer server.Close()

	svc := NewOpenAIService("test-key", server.URL, "")
	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text: "Hello", TargetLang: "fr",
	})

	if err == nil {
		t.Error("expected error for non-OK status")
	}
	if result.Error == "" {
		t.Error("expected error message in result")
	}
}

func TestOpenAIService_CleansArtifacts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "Translation: \"Bonjour\""}},
			},
		})
	}))
	defer server.Close()

	svc := NewOpenAIService("test-key", server.URL, "")
	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text: "Hello", TargetLang: "fr",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "Bonjour" {
		t.Errorf("expected cleaned output, got %q", result.TranslatedText)
	}
}

func TestOllamaService_Translate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "Bonjour"})
	}))
	defer server.Close()

	svc := NewOllamaService(server.URL, "test-model")
	result, err := svc.Translate(context.Background(), ServiceConfig{}, TranslateRequest{
		Text: "Hello", SourceLang: "en", TargetLang: "fr",
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "Bonjour" {
		t.Errorf("unexpected translation: %q", result.TranslatedText)
	}
	if result.Metadata["model"] != "test-model" {
		t.Errorf("unexpected model metadata: %v", result.Metadata)
	}
}

func TestOllamaService_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewOllamaService(server.URL, "")
	if err := svc.IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestServiceNames(t *testing.T) {
	if got := NewOpenAIService("", "", "").Name(); got != "openai" {
		t.Errorf("expected 'openai', got %q", got)
	}
	if got := NewOllamaService("", "").Name(); got != "ollama" {
		t.Errorf("expected 'ollama', got %q", got)
	}
	if got := NewGoogleService("").Name(); got != "google" {
		t.Errorf("expected 'google', got %q", got)
	}
}
