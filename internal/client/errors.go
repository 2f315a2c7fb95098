package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ErlanBelekov/portfolio/internal/domain"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Unwrap lets callers match the domain sentinel the server reported.
func (e *APIError) Unwrap() error {
	if err, ok := messageErrors[e.Message]; ok {
		return err
	}
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	}
	return nil
}

var messageErrors = map[string]error{
	"Invalid login credentials":             domain.ErrInvalidCredentials,
	"User already registered":               domain.ErrEmailTaken,
	"Invalid or expired invite code":        domain.ErrInviteCodeInvalid,
	"Invite code is no longer valid":        domain.ErrInviteCodeNoLongerValid,
	"Failed to activate admin privileges":   domain.ErrAdminActivationFailed,
	"Token is invalid or expired":           domain.ErrTokenInvalid,
	"Current password is incorrect":         domain.ErrCurrentPasswordWrong,
	"Invite code not found":                 domain.ErrInviteCodeNotFound,
	"Expiry must be between 1 and 365 days": domain.ErrInvalidInviteExpiry,
	"Message not found":                     domain.ErrMessageNotFound,
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// decodeError turns an error response into an *APIError, or a
// *domain.ValidationError when the server named the failing fields.
func decodeError(status int, body []byte) error {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Error == "" {
		return &APIError{Status: status, Message: http.StatusText(status)}
	}
	if len(eb.Fields) > 0 {
		return &domain.ValidationError{Fields: eb.Fields}
	}
	return &APIError{Status: status, Message: eb.Error}
}

// isAuthFailure reports whether err means the stored credentials are no
// longer accepted.
func isAuthFailure(err error) bool {
	return errors.Is(err, domain.ErrTokenInvalid) || errors.Is(err, domain.ErrUnauthorized)
}
