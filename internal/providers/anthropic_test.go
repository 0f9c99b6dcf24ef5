package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropic_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Error("Missing API key header")
		}
		if r.Header.Get("anthropic-version") != anthropicAPIVersion {
			t.Error("Missing anthropic-version header")
		}
		var body anthropicRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.System != "instruction" {
			t.Errorf("System = %q, want %q", body.System, "instruction")
		}
		if len(body.Messages) != 1 || body.Messages[0].Content != "1: class A {}" {
			t.Errorf("Messages = %+v", body.Messages)
		}

		resp := anthropicResponse{
			Content: []anthropicBlock{{Type: "text", Text: "No issues found."}},
			Usage:   anthropicUsage{InputTokens: 100, OutputTokens: 10},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "test-key", model: "claude-sonnet-4-5", client: redirectClient(server.URL)}

	resp, err := a.Generate(context.Background(), Request{
		Instruction: "instruction",
		Input:       "1: class A {}",
		MaxTokens:   10,
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if resp.Text != "No issues found." {
		t.Errorf("Text = %q", resp.Text)
	}
	if resp.TokensUsed != 110 {
		t.Errorf("TokensUsed = %d, want 110", resp.TokensUsed)
	}
}

func TestAnthropic_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"error":"unauthorized"}`))
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "bad-key", model: "m", client: redirectClient(server.URL)}

	_, err := a.Generate(context.Background(), Request{Instruction: "x", Input: "y"})
	if err == nil {
		t.Fatal("Expected auth error")
	}
	if !IsAuthError(err) {
		t.Errorf("Expected auth error, got: %v", err)
	}
}

func TestAnthropic_ServerErrorRetried(t *testing.T) {
	fastBackoff(t)
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(500)
			w.Write([]byte(`{"error":"internal server error"}`))
			return
		}
		json.NewEncoder(w).Encode(anthropicResponse{
			Content: []anthropicBlock{{Type: "text", Text: "Line 2: unclear name"}},
		})
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "k", model: "m", client: redirectClient(server.URL)}

	resp, err := a.Generate(context.Background(), Request{Instruction: "x", Input: "y"})
	if err != nil {
		t.Fatalf("Generate should succeed after retries: %v", err)
	}
	if resp.Text != "Line 2: unclear name" {
		t.Errorf("Text = %q", resp.Text)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestAnthropic_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{Content: []anthropicBlock{}})
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "k", model: "m", client: redirectClient(server.URL)}
	if _, err := a.Generate(context.Background(), Request{}); err == nil {
		t.Error("Expected error for empty content")
	}
}

func TestAnthropic_DefaultMaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body anthropicRequest
		json.NewDecoder(r.Body).Decode(&body)
		if body.MaxTokens != 1000 {
			t.Errorf("Default MaxTokens = %d, want 1000", body.MaxTokens)
		}
		if body.Temperature == nil || *body.Temperature != 0.7 {
			t.Errorf("Temperature = %v, want 0.7", body.Temperature)
		}
		json.NewEncoder(w).Encode(anthropicResponse{Content: []anthropicBlock{{Type: "text", Text: "ok"}}})
	}))
	defer server.Close()

	a := &Anthropic{apiKey: "k", model: "m", client: redirectClient(server.URL)}
	if _, err := a.Generate(context.Background(), Request{Temperature: 0.7}); err != nil {
		t.Fatalf("Generate error: %v", err)
	}
}
