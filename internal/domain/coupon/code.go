package coupon

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

const codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NewCode returns a coupon code like CP-M2K4X9-7FQJ2R: a base36 minute
// timestamp plus a random suffix from an alphabet without lookalike
// characters. Uniqueness is still enforced by the database constraint.
func NewCode() (string, error) {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().Unix(), 36))

	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	suffix := make([]byte, len(b))
	for i, v := range b {
		suffix[i] = codeAlphabet[int(v)%len(codeAlphabet)]
	}

	return "CP-" + ts + "-" + string(suffix), nil
}
