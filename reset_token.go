package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/goliatone/go-errors"
)

// DefaultResetTokenTTL bounds how long a reset secret remains redeemable.
const DefaultResetTokenTTL = 15 * time.Minute

const resetSecretBytes = 32

// GenerateResetSecret returns a hex encoded, high entropy secret. The
// plaintext is emailed to the user and never persisted; only its digest is
// stored on the user record.
func GenerateResetSecret() (string, error) {
	buf := make([]byte, resetSecretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to generate reset secret")
	}
	return hex.EncodeToString(buf), nil
}

// HashResetSecret returns the hex encoded sha256 digest of a reset secret.
// A fast deterministic hash is enough here: the entropy is server generated,
// so there is nothing for a slow KDF to protect against, and determinism is
// what allows lookup by digest.
func HashResetSecret(secret string) string {
	digest := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(digest[:])
}
