package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTemplates_RenderMessage(t *testing.T) {
	tpls, err := NewTemplates()
	if err != nil {
		t.Fatalf("NewTemplates: %v", err)
	}

	html, err := tpls.RenderMessage("Example Shop", "Ann", "ann@mail.com", "Order question", "Where is my order?")
	if err != nil {
		t.Fatalf("RenderMessage: %v", err)
	}

	for _, want := range []string{"Example Shop", "Ann", "ann@mail.com", "Order question", "Where is my order?"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered message missing %q", want)
		}
	}
}

func TestTemplates_RenderActivation(t *testing.T) {
	tpls, _ := NewTemplates()

	html, err := tpls.RenderActivation("Example Shop", "https://relay.test/api/activate/tok123")
	if err != nil {
		t.Fatalf("RenderActivation: %v", err)
	}
	if !strings.Contains(html, "https://relay.test/api/activate/tok123") {
		t.Error("activation URL not rendered")
	}
}

func TestTemplates_RenderAutoVerified(t *testing.T) {
	tpls, _ := NewTemplates()

	html, err := tpls.RenderAutoVerified("Example Shop", "example.com")
	if err != nil {
		t.Fatalf("RenderAutoVerified: %v", err)
	}
	if !strings.Contains(html, "example.com") {
		t.Error("identity not rendered")
	}
}

func TestResendSender_Send(t *testing.T) {
	var got resendRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if r.URL.Path != "/emails" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": "msg-001"})
	}))
	defer srv.Close()

	s := NewResendSender(ProviderConfig{ResendAPIKey: "key-123", ResendBaseURL: srv.URL})
	res, err := s.Send(context.Background(), "relay@contactfast.io", []string{"owner@example.com"}, "Subj", "<p>Hi</p>")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if res.MessageID != "msg-001" {
		t.Errorf("message id = %q", res.MessageID)
	}
	if res.Provider != "resend" {
		t.Errorf("provider = %q", res.Provider)
	}
	if auth != "Bearer key-123" {
		t.Errorf("auth header = %q", auth)
	}
	if got.From != "relay@contactfast.io" || len(got.To) != 1 || got.To[0] != "owner@example.com" {
		t.Errorf("request body = %+v", got)
	}
}

func TestResendSender_SendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "invalid to address"})
	}))
	defer srv.Close()

	s := NewResendSender(ProviderConfig{ResendAPIKey: "key-123", ResendBaseURL: srv.URL})
	_, err := s.Send(context.Background(), "relay@contactfast.io", []string{"bad"}, "Subj", "<p>Hi</p>")
	if err == nil {
		t.Fatal("expected error on 422 response")
	}
	if !strings.Contains(err.Error(), "invalid to address") {
		t.Errorf("error %q does not surface the provider message", err)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), ProviderConfig{Provider: "pigeon"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
