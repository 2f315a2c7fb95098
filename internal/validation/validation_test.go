package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/ErlanBelekov/portfolio/internal/validation"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantMsg string
	}{
		{"  ada@example.com ", "ada@example.com", ""},
		{"not-an-email", "not-an-email", validation.MsgInvalidEmail},
		{"", "", validation.MsgInvalidEmail},
	}
	for _, tt := range tests {
		var v domain.ValidationError
		got := validation.Email(&v, "email", tt.in)
		if got != tt.want {
			t.Errorf("Email(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if msg := v.Fields["email"]; msg != tt.wantMsg {
			t.Errorf("Email(%q) message = %q, want %q", tt.in, msg, tt.wantMsg)
		}
	}
}

func TestEmail_TooLong(t *testing.T) {
	var v domain.ValidationError
	label := strings.Repeat("b", 60)
	long := "a@" + strings.Join([]string{label, label, label, label, label}, ".") + ".com"
	validation.Email(&v, "email", long)
	if v.Fields["email"] == "" {
		t.Fatal("expected a message for an address over 255 characters")
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12345", validation.MsgPasswordTooShort},
		{"123456", ""},
		{strings.Repeat("x", 72), ""},
		{strings.Repeat("x", 73), validation.MsgPasswordTooLong},
	}
	for _, tt := range tests {
		var v domain.ValidationError
		validation.Password(&v, "password", tt.in)
		if got := v.Fields["password"]; got != tt.want {
			t.Errorf("Password(len %d) = %q, want %q", len(tt.in), got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	var v domain.ValidationError
	if got := validation.Text(&v, "name", "  Ada  ", 100, "Name is required", "Name too long"); got != "Ada" {
		t.Errorf("Text trimmed = %q", got)
	}
	validation.Text(&v, "message", "   ", 1000, "Message is required", "Message too long")
	validation.Text(&v, "title", strings.Repeat("é", 101), 100, "Title is required", "Title too long")

	if v.Fields["message"] != "Message is required" {
		t.Errorf("message = %q", v.Fields["message"])
	}
	if v.Fields["title"] != "Title too long" {
		t.Errorf("title = %q", v.Fields["title"])
	}
	if _, ok := v.Fields["name"]; ok {
		t.Error("valid name should not be flagged")
	}
}

func TestTranslateErrors_NonValidation(t *testing.T) {
	fields := validation.TranslateErrors(errors.New("unexpected EOF"))
	if fields["detail"] != "unexpected EOF" {
		t.Errorf("fields = %v", fields)
	}
}
