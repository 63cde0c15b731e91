// Package password derives and verifies salted credential digests.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	algorithm  = "pbkdf2-sha256"
	iterations = 120000
	saltSize   = 16
	keySize    = 32
)

// Hash derives a digest from plaintext using PBKDF2-HMAC-SHA256 with a
// fresh random salt. The returned digest is self-describing:
//
//	pbkdf2-sha256$<iterations>$<base64 salt>$<base64 key>
//
// so Verify needs no stored parameters beyond the digest itself.
func Hash(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(plaintext), salt, iterations, keySize, sha256.New)

	return fmt.Sprintf("%s$%d$%s$%s",
		algorithm,
		iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify re-derives a key from the candidate using the salt and
// iteration count embedded in digest and compares it in constant time.
// A malformed digest verifies as false, never panics.
func Verify(digest, candidate string) bool {
	parts := strings.Split(digest, "$")
	if len(parts) != 4 || parts[0] != algorithm {
		return false
	}

	iter, err := strconv.Atoi(parts[1])
	if err != nil || iter <= 0 {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil || len(key) == 0 {
		return false
	}

	derived := pbkdf2.Key([]byte(candidate), salt, iter, len(key), sha256.New)

	return subtle.ConstantTimeCompare(derived, key) == 1
}
