package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"punto_kennedy_crm/internal/interfaces"
)

func TestCompleteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "openai/gpt-4o-mini" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "Hola, la alumna está interesada."}},
			},
		})
	}))
	defer server.Close()

	client := NewOpenRouterClient("test-key", "openai/gpt-4o-mini")
	client.SetTestTransport(server.URL)

	answer, err := client.Complete(context.Background(), []interfaces.GenMessage{{Role: "user", Content: "resumen"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Hola, la alumna está interesada." {
		t.Errorf("answer = %q", answer)
	}
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 402, "message": "Insufficient credits"},
		})
	}))
	defer server.Close()

	client := NewOpenRouterClient("test-key", "openai/gpt-4o-mini")
	client.SetTestTransport(server.URL)

	_, err := client.Complete(context.Background(), []interfaces.GenMessage{{Role: "user", Content: "hola"}})
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, interfaces.ErrNoChoices) {
		t.Error("api error must not be reported as empty choices")
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	client := NewOpenRouterClient("test-key", "openai/gpt-4o-mini")
	client.SetTestTransport(server.URL)

	_, err := client.Complete(context.Background(), []interfaces.GenMessage{{Role: "user", Content: "hola"}})
	if !errors.Is(err, interfaces.ErrNoChoices) {
		t.Errorf("err = %v, want ErrNoChoices", err)
	}
}
