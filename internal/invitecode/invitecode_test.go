package invitecode_test

import (
	"strings"
	"testing"

	"github.com/ErlanBelekov/portfolio/internal/invitecode"
)

func TestGenerate_Format(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := invitecode.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if !invitecode.Valid(code) {
			t.Fatalf("generated code %q does not match format", code)
		}
		for _, r := range strings.ReplaceAll(code, "-", "") {
			if !strings.ContainsRune(invitecode.Alphabet, r) {
				t.Fatalf("code %q contains %q outside alphabet", code, r)
			}
		}
	}
}

func TestGenerate_Varies(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := invitecode.Generate()
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		seen[code] = true
	}
	if len(seen) < 49 {
		t.Errorf("expected distinct codes, got %d unique of 50", len(seen))
	}
}

func TestNormalizeAndValid(t *testing.T) {
	tests := []struct {
		in    string
		norm  string
		valid bool
	}{
		{"ABCD-1234-WXYZ", "ABCD-1234-WXYZ", true},
		{"  abcd-1234-wxyz\n", "ABCD-1234-WXYZ", true},
		{"ABCD1234WXYZ", "ABCD1234WXYZ", false},
		{"ABC-1234-WXYZ", "ABC-1234-WXYZ", false},
		{"ABCD-1234-WXY!", "ABCD-1234-WXY!", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got := invitecode.Normalize(tt.in)
		if got != tt.norm {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.norm)
		}
		if invitecode.Valid(got) != tt.valid {
			t.Errorf("Valid(%q) = %v, want %v", got, !tt.valid, tt.valid)
		}
	}
}
