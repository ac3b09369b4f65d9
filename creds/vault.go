// Package creds stores named database connections. Connect strings and user
// names are kept in the clear; passwords are sealed with a key derived from a
// passphrase, so the connections file is safe to keep under version control
// alongside the rest of a project.
package creds

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Argon2id parameters per OWASP recommendations
// https://cheatsheetseries.owasp.org/cheatsheets/Password_Storage_Cheat_Sheet.html
const (
	argon2Time    = 1         // Number of iterations
	argon2Memory  = 64 * 1024 // Memory in KiB (64 MiB)
	argon2Threads = 4         // Parallelism
	saltLen       = 16        // Salt length in bytes
)

// ErrDecrypt is returned when a sealed value cannot be opened, typically a
// wrong passphrase or a corrupted entry.
var ErrDecrypt = errors.New("cannot decrypt stored password")

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, chacha20poly1305.KeySize)
}

// Seal encrypts plaintext under a key derived from the passphrase. The
// result is base64(salt || nonce || ciphertext); each call uses a fresh salt
// and nonce.
func Seal(passphrase, plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	aead, err := chacha20poly1305.NewX(deriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("failed to initialise cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	blob := append(append(salt, nonce...), sealed...)
	return base64.RawStdEncoding.EncodeToString(blob), nil
}

// Open decrypts a value produced by Seal.
func Open(passphrase, sealed string) (string, error) {
	blob, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrDecrypt
	}
	if len(blob) < saltLen+chacha20poly1305.NonceSizeX {
		return "", ErrDecrypt
	}

	salt := blob[:saltLen]
	nonce := blob[saltLen : saltLen+chacha20poly1305.NonceSizeX]
	ciphertext := blob[saltLen+chacha20poly1305.NonceSizeX:]

	aead, err := chacha20poly1305.NewX(deriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("failed to initialise cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plaintext), nil
}
