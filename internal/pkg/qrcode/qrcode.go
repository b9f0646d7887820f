package qrcode

import (
	"encoding/base64"

	qr "github.com/skip2/go-qrcode"
)

// DataURL renders the given content as a PNG QR code and returns it as a
// base64 data URL suitable for direct embedding in an <img> tag.
func DataURL(content string, size int) (string, error) {
	if size <= 0 {
		size = 300
	}

	png, err := qr.Encode(content, qr.High, size)
	if err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
