package qrcode_test

import (
	"strings"
	"testing"

	"github.com/pierpay/pierpay-api/internal/pkg/qrcode"
)

func TestDataURL(t *testing.T) {
	url, err := qrcode.DataURL("https://example.com/wallet/abc", 256)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("expected png data url, got %.40s", url)
	}
	if len(url) < 100 {
		t.Fatalf("suspiciously short data url: %d bytes", len(url))
	}
}

func TestDataURLDefaultSize(t *testing.T) {
	url, err := qrcode.DataURL("CP-ABC123", 0)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatal("expected png data url")
	}
}
