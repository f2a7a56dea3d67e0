package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/contactfast/relay/internal/pkg/httpretry"
)

// ResendSender sends emails through the Resend API over plain HTTP.
// Transient failures (429, 5xx, network errors) are retried with backoff.
type ResendSender struct {
	apiKey  string
	baseURL string
	client  httpretry.HTTPDoer
}

// NewResendSender creates a Resend API sender.
func NewResendSender(cfg ProviderConfig) *ResendSender {
	baseURL := cfg.ResendBaseURL
	if baseURL == "" {
		baseURL = "https://api.resend.com"
	}
	return &ResendSender{
		apiKey:  cfg.ResendAPIKey,
		baseURL: baseURL,
		client:  httpretry.NewRetryClient(&http.Client{Timeout: sendTimeout}, 2),
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"` // populated on errors
}

// Send delivers a single email through the Resend transmissions endpoint.
func (r *ResendSender) Send(ctx context.Context, from string, to []string, subject, html string) (*SendResult, error) {
	body, err := json.Marshal(resendRequest{
		From:    from,
		To:      to,
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal resend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build resend request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resend send: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var parsed resendResponse
	_ = json.Unmarshal(respBody, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("resend send: status %d: %s", resp.StatusCode, msg)
	}

	return &SendResult{MessageID: parsed.ID, Provider: "resend"}, nil
}
