package utils

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// MD5Hash generates MD5 hash of input string
func MD5Hash(input string) string {
	hash := md5.Sum([]byte(input))
	return hex.EncodeToString(hash[:])
}

// CacheKey hashes the normalised parts into a stable key suffix.
func CacheKey(parts ...string) string {
	normalised := make([]string, len(parts))
	for i, p := range parts {
		normalised[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return MD5Hash(strings.Join(normalised, "|"))
}
