package coupon

import (
	"strings"
	"testing"
)

func TestNewCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := NewCode()
		if err != nil {
			t.Fatalf("code generation failed: %v", err)
		}
		if !strings.HasPrefix(code, "CP-") {
			t.Fatalf("expected CP- prefix, got %q", code)
		}
		parts := strings.Split(code, "-")
		if len(parts) != 3 {
			t.Fatalf("expected CP-<ts>-<suffix> shape, got %q", code)
		}
		if len(parts[2]) != 6 {
			t.Fatalf("expected 6-char suffix, got %q", code)
		}
		if code != strings.ToUpper(code) {
			t.Fatalf("expected uppercase code, got %q", code)
		}
		if seen[code] {
			t.Fatalf("duplicate code generated: %q", code)
		}
		seen[code] = true
	}
}
