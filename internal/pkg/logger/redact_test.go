package logger

import "testing"

func TestRedactEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"a@example.com", "***@example.com"},
		{"not-an-email", "***@***"},
		{"", "***@***"},
	}
	for _, tc := range cases {
		if got := RedactEmail(tc.in); got != tc.want {
			t.Errorf("RedactEmail(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRedactPIIValue(t *testing.T) {
	if got := redactPIIValue("recipient_email", "owner@example.com"); got != "ow***@example.com" {
		t.Errorf("recipient_email not redacted: %q", got)
	}
	if got := redactPIIValue("identity", "example.com"); got != "example.com" {
		t.Errorf("identity should pass through: %q", got)
	}
	// Emails embedded in generic fields are still masked.
	if got := redactPIIValue("error", "bounce for visitor@example.com"); got != "bounce for vi***@example.com" {
		t.Errorf("embedded email not redacted: %q", got)
	}
}
