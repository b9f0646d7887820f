package wallet

import (
	"crypto/rand"
	"encoding/hex"
)

// NewQRToken returns a 32-character hex token from 16 random bytes. Used
// for both the permanent scan token and the rotating display token.
func NewQRToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
