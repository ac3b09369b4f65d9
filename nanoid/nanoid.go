// Package nanoid generates short, URL-safe, cryptographically random IDs.
package nanoid

import "crypto/rand"

// 64 characters, so a 6-bit mask maps random bytes onto it uniformly.
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-_"

const idLen = 21

// New returns a 21-character random ID drawn from a URL-safe alphabet.
func New() string {
	var buf [idLen]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("nanoid: read random bytes: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = alphabet[b&63]
	}
	return string(buf[:])
}
