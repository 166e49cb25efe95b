package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestComplete(t *testing.T) {
	t.Run("returns content and usage", func(t *testing.T) {
		var gotReq map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				http.NotFound(w, r)
				return
			}
			if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
				t.Errorf("failed to decode request: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"choices":[{"message":{"content":"DEPLOYMENT: Batch"}}],"usage":{"prompt_tokens":50,"completion_tokens":10,"total_tokens":60}}`)
		}))
		defer srv.Close()

		c := NewClient(&Config{Model: "openai/gpt-4o-mini", APIKey: "key", BaseURL: srv.URL})
		text, usage, err := c.Complete(context.Background(), "classify this", 300, 0.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "DEPLOYMENT: Batch" {
			t.Errorf("unexpected content %q", text)
		}
		if usage == nil || usage.TotalTokens != 60 {
			t.Errorf("unexpected usage %+v", usage)
		}

		if gotReq["model"] != "openai/gpt-4o-mini" {
			t.Errorf("unexpected model %v", gotReq["model"])
		}
		msgs, ok := gotReq["messages"].([]interface{})
		if !ok || len(msgs) != 1 {
			t.Fatalf("expected 1 message, got %v", gotReq["messages"])
		}
		msg := msgs[0].(map[string]interface{})
		if msg["role"] != "user" || msg["content"] != "classify this" {
			t.Errorf("unexpected message %v", msg)
		}
	})

	t.Run("sends bearer auth", func(t *testing.T) {
		var auth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
		}))
		defer srv.Close()

		c := NewClient(&Config{APIKey: "secret", BaseURL: srv.URL})
		c.Complete(context.Background(), "hi", 10, 0.0)
		if auth != "Bearer secret" {
			t.Errorf("expected bearer header, got %q", auth)
		}
	})

	t.Run("http error surfaces message", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"rate limited","type":"rate_limit"}}`)
		}))
		defer srv.Close()

		c := NewClient(&Config{APIKey: "key", BaseURL: srv.URL})
		_, _, err := c.Complete(context.Background(), "hi", 10, 0.0)
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limited") {
			t.Errorf("unexpected error message: %v", err)
		}
	})

	t.Run("error payload with 200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"error":{"message":"model unavailable","type":"server"}}`)
		}))
		defer srv.Close()

		c := NewClient(&Config{APIKey: "key", BaseURL: srv.URL})
		_, _, err := c.Complete(context.Background(), "hi", 10, 0.0)
		if err == nil || !strings.Contains(err.Error(), "model unavailable") {
			t.Errorf("expected error payload to surface, got %v", err)
		}
	})

	t.Run("empty choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"choices":[]}`)
		}))
		defer srv.Close()

		c := NewClient(&Config{APIKey: "key", BaseURL: srv.URL})
		_, _, err := c.Complete(context.Background(), "hi", 10, 0.0)
		if err == nil || !strings.Contains(err.Error(), "no choices") {
			t.Errorf("expected no-choices error, got %v", err)
		}
	})
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(&Config{Model: "m", APIKey: "k"})
	if c.endpoint != "https://openrouter.ai/api/v1/chat/completions" {
		t.Errorf("unexpected default endpoint %q", c.endpoint)
	}
	if c.GetModel() != "m" {
		t.Errorf("unexpected model %q", c.GetModel())
	}
}
