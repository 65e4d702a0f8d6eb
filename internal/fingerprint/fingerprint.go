// Package fingerprint derives stable cache keys from error descriptions.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/tinkerloft/errdoctor/internal/model"
)

// Size is the length of a fingerprint in hex characters.
const Size = sha256.Size * 2

// Of returns the SHA-256 hex digest of the canonical form of text.
// Texts that normalize to the same string always share a fingerprint.
func Of(text string) string {
	sum := sha256.Sum256([]byte(Canonical(text)))
	return hex.EncodeToString(sum[:])
}

// Canonical normalizes text and drops punctuation, so "KeyError: 'id'" and "keyerror id"
// share a key.
func Canonical(text string) string {
	var b strings.Builder
	for _, r := range model.Normalize(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return model.Normalize(b.String())
}

// Short returns the prefix used when logging a fingerprint.
func Short(fp string) string {
	if len(fp) > 16 {
		return fp[:16]
	}
	return fp
}
