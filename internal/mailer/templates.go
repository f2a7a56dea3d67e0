package mailer

import (
	"fmt"

	"github.com/osteele/liquid"
)

// Default Liquid templates for the three emails the relay sends. The
// message template carries the visitor's submission; the other two drive
// the verification flow.
const (
	messageTemplate = `<html>
  <body style="font-family: Arial, sans-serif; padding: 20px; color: #222;">
    <h2>New message via {{ website_name }}</h2>
    <table cellpadding="6">
      <tr><td><strong>From</strong></td><td>{{ name }} &lt;{{ email }}&gt;</td></tr>
      <tr><td><strong>Subject</strong></td><td>{{ subject }}</td></tr>
    </table>
    <hr>
    <p style="white-space: pre-wrap;">{{ message }}</p>
  </body>
</html>`

	activationTemplate = `<html>
  <body style="font-family: Arial, sans-serif; padding: 20px; color: #222;">
    <h2>Activate your ContactFast form</h2>
    <p>A contact form for <strong>{{ website_name }}</strong> wants to deliver
    messages to this mailbox. Click the link below to activate it. Until then,
    no messages will be forwarded.</p>
    <p><a href="{{ activation_url }}">Activate this form</a></p>
    <p>If you did not set up this form, ignore this email.</p>
  </body>
</html>`

	autoVerifiedTemplate = `<html>
  <body style="font-family: Arial, sans-serif; padding: 20px; color: #222;">
    <h2>ContactFast auto-verification complete</h2>
    <p>We detected the first message sent through ContactFast from
    <strong>{{ identity }}</strong>. The domain is now verified and all
    future messages from it will be delivered instantly.</p>
    <p>Website: {{ website_name }}<br>Domain: {{ identity }}</p>
  </body>
</html>`
)

// Templates renders the relay's outbound emails. Templates are parsed once
// at construction; rendering is concurrency-safe.
type Templates struct {
	message      *liquid.Template
	activation   *liquid.Template
	autoVerified *liquid.Template
}

// NewTemplates parses the built-in templates.
func NewTemplates() (*Templates, error) {
	engine := liquid.NewEngine()

	parse := func(name, src string) (*liquid.Template, error) {
		tpl, err := engine.ParseString(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		return tpl, nil
	}

	msg, err := parse("message", messageTemplate)
	if err != nil {
		return nil, err
	}
	act, err := parse("activation", activationTemplate)
	if err != nil {
		return nil, err
	}
	auto, err := parse("auto-verified", autoVerifiedTemplate)
	if err != nil {
		return nil, err
	}

	return &Templates{message: msg, activation: act, autoVerified: auto}, nil
}

// RenderMessage builds the forwarded-submission body.
func (t *Templates) RenderMessage(websiteName, name, email, subject, message string) (string, error) {
	out, err := t.message.RenderString(map[string]interface{}{
		"website_name": websiteName,
		"name":         name,
		"email":        email,
		"subject":      subject,
		"message":      message,
	})
	if err != nil {
		return "", fmt.Errorf("render message template: %w", err)
	}
	return out, nil
}

// RenderActivation builds the activation email body.
func (t *Templates) RenderActivation(websiteName, activationURL string) (string, error) {
	out, err := t.activation.RenderString(map[string]interface{}{
		"website_name":   websiteName,
		"activation_url": activationURL,
	})
	if err != nil {
		return "", fmt.Errorf("render activation template: %w", err)
	}
	return out, nil
}

// RenderAutoVerified builds the one-time auto-verification notice.
func (t *Templates) RenderAutoVerified(websiteName, identity string) (string, error) {
	out, err := t.autoVerified.RenderString(map[string]interface{}{
		"website_name": websiteName,
		"identity":     identity,
	})
	if err != nil {
		return "", fmt.Errorf("render auto-verified template: %w", err)
	}
	return out, nil
}
