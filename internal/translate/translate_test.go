package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		var req translateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Decode request: %v", err)
		}
		if req.SourceLang != "pl" {
			t.Errorf("Expected source_lang pl, got %s", req.SourceLang)
		}
		json.NewEncoder(w).Encode(translateResponse{Translation: "Good morning"})
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, time.Second)
	got, err := tr.Translate(context.Background(), "Dzień dobry", "pl")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "Good morning" {
		t.Errorf("Expected 'Good morning', got %q", got)
	}
}

func TestTranslate_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, time.Second)
	if _, err := tr.Translate(context.Background(), "tekst", "pl"); err == nil {
		t.Error("Expected error on server failure")
	}
}

func TestTranslate_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(translateResponse{})
	}))
	defer srv.Close()

	tr := NewHTTPTranslator(srv.URL, time.Second)
	if _, err := tr.Translate(context.Background(), "tekst", "pl"); err == nil {
		t.Error("Expected error on empty translation")
	}
}
