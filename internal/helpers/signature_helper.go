package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sign returns the hex HMAC-SHA256 of parts joined with ":".
func Sign(secretKey string, parts ...string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(mac.Sum(nil))
}

func VerifySignature(secretKey, signature string, parts ...string) bool {
	expected := Sign(secretKey, parts...)
	return hmac.Equal([]byte(expected), []byte(signature))
}
