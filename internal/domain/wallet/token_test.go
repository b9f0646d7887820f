package wallet

import (
	"encoding/hex"
	"testing"
)

func TestNewQRToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := NewQRToken()
		if err != nil {
			t.Fatalf("token generation failed: %v", err)
		}
		if len(token) != 32 {
			t.Fatalf("expected 32-char token, got %d chars", len(token))
		}
		if _, err := hex.DecodeString(token); err != nil {
			t.Fatalf("token is not hex: %q", token)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %q", token)
		}
		seen[token] = true
	}
}
