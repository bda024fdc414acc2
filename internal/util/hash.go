package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// digestLen is long enough to tell retransmissions apart in logs.
const digestLen = 12

func SHA256Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// PayloadDigest is a short, stable fingerprint of a request body.
func PayloadDigest(body []byte) string {
	return SHA256Hex(body)[:digestLen]
}
