// Package invitecode generates and normalises human-entered invite codes of
// the form XXXX-XXXX-XXXX over an upper-case alphanumeric alphabet.
package invitecode

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	Alphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	groups    = 3
	groupSize = 4
	separator = "-"
)

var pattern = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)

// Generate returns a fresh random code. Uniqueness is the caller's problem.
func Generate() (string, error) {
	base := big.NewInt(int64(len(Alphabet)))
	parts := make([]string, groups)
	for g := range parts {
		buf := make([]byte, groupSize)
		for i := range buf {
			n, err := rand.Int(rand.Reader, base)
			if err != nil {
				return "", fmt.Errorf("generate invite code: %w", err)
			}
			buf[i] = Alphabet[n.Int64()]
		}
		parts[g] = string(buf)
	}
	return strings.Join(parts, separator), nil
}

// Normalize trims whitespace and upper-cases a code as typed by a person.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Valid reports whether code (already normalised) has the expected shape.
func Valid(code string) bool {
	return pattern.MatchString(code)
}
