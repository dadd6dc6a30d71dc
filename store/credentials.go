package store

import (
	"fmt"

	amoghecrypt "github.com/amoghe/go-crypt"
	sergeymakinencrypt "github.com/sergeymakinen/go-crypt"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a new bcrypt credential hash for a player.
// Network transport and session/auth handling are out of scope (§1); the
// core only needs a credential representation a Player can carry.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether plaintext matches a bcrypt hash produced
// by HashPassword.
func CheckPassword(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// ImportLegacyCredential re-hashes a player record carried over from a
// LambdaMOO-family world file, where crypt(3)-format password hashes
// (traditional DES, and the newer MD5/SHA "modular crypt" dialects) are
// the norm. Two libraries are wired deliberately: amoghe/go-crypt covers
// the traditional 2-character-salt DES format, sergeymakinen/go-crypt
// covers the "$id$salt$hash" modular formats DES crypt cannot express.
// The legacy hash is verified against the supplied plaintext and, on
// success, replaced with a fresh bcrypt hash so importing a world never
// leaves a player on the weaker legacy scheme.
func ImportLegacyCredential(legacyHash, plaintext string) (string, error) {
	if len(legacyHash) >= 2 && legacyHash[0] == '$' {
		ok, err := sergeymakinencrypt.Match(legacyHash, plaintext)
		if err != nil {
			return "", fmt.Errorf("import modular-crypt credential: %w", err)
		}
		if !ok {
			return "", fmt.Errorf("import modular-crypt credential: password mismatch")
		}
		return HashPassword(plaintext)
	}

	salt := legacyHash
	if len(salt) > 2 {
		salt = salt[:2]
	}
	candidate, err := amoghecrypt.Crypt(plaintext, salt)
	if err != nil {
		return "", fmt.Errorf("import des-crypt credential: %w", err)
	}
	if candidate != legacyHash {
		return "", fmt.Errorf("import des-crypt credential: password mismatch")
	}
	return HashPassword(plaintext)
}
