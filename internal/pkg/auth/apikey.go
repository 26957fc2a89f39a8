package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidKey indicates the presented API key does not match the
// configured hash.
var ErrInvalidKey = errors.New("invalid api key")

// HashKey produces a bcrypt hash for an API key. Used by deployment tooling
// to generate the ADMIN_API_KEY_HASH value.
func HashKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyKey compares a presented API key against the configured bcrypt hash.
func VerifyKey(hash, key string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
		return ErrInvalidKey
	}
	return nil
}
