// Package validation wires translated field errors into gin's binder and
// holds the form rules shared by the auth and contact flows.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/ErlanBelekov/portfolio/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	MsgInvalidEmail       = "Invalid email address"
	MsgEmailTooLong       = "Email too long"
	MsgPasswordTooShort   = "Password must be at least 6 characters"
	MsgPasswordTooLong    = "Password too long"
	MsgInviteCodeRequired = "Invite code is required"
	MsgInviteCodeFormat   = "Invalid invite code format"

	MaxEmailLen    = 255
	MinPasswordLen = 6
	MaxPasswordLen = 72
)

var (
	trans ut.Translator
	vars  = govalidator.New()
)

// Setup registers English translations on gin's binding engine and makes
// field names follow json tags. Call once at startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		v.RegisterTagNameFunc(jsonTagName)

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		_ = en_translations.RegisterDefaultTranslations(v, trans)
	}
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// TranslateErrors maps a binding error to field -> message. Errors that are
// not validation errors land under "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if trans != nil {
				fields[fe.Field()] = fe.Translate(trans)
			} else {
				fields[fe.Field()] = fe.Error()
			}
		}
		return fields
	}

	fields["detail"] = err.Error()
	return fields
}

// Email trims raw, records the first failing rule on v and returns the
// trimmed address.
func Email(v *domain.ValidationError, field, raw string) string {
	email := strings.TrimSpace(raw)
	if vars.Var(email, "required,email") != nil {
		v.Add(field, MsgInvalidEmail)
	} else if utf8.RuneCountInString(email) > MaxEmailLen {
		v.Add(field, MsgEmailTooLong)
	}
	return email
}

// Password checks length bounds. The upper bound is in bytes because
// bcrypt ignores anything past 72 bytes.
func Password(v *domain.ValidationError, field, password string) {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		v.Add(field, MsgPasswordTooShort)
	} else if len(password) > MaxPasswordLen {
		v.Add(field, MsgPasswordTooLong)
	}
}

// Text trims raw and checks it is present and at most max characters.
func Text(v *domain.ValidationError, field, raw string, max int, requiredMsg, tooLongMsg string) string {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		v.Add(field, requiredMsg)
	case utf8.RuneCountInString(s) > max:
		v.Add(field, tooLongMsg)
	}
	return s
}
