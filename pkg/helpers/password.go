package helpers

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

const (
	saltLen     = 16
	argonTime   = 1
	argonMemory = 64 * 1024
	argonKeyLen = 32
	argonLanes  = 4
)

// HashPassword derives an argon2id hash from plain with a fresh random salt.
// Both values are hex encoded.
func HashPassword(plain string) (hash string, salt string, err error) {
	s := make([]byte, saltLen)
	if _, err := rand.Read(s); err != nil {
		return "", "", err
	}
	key := argon2.IDKey([]byte(plain), s, argonTime, argonMemory, argonLanes, argonKeyLen)
	return hex.EncodeToString(key), hex.EncodeToString(s), nil
}

// VerifyPassword reports whether plain matches hash under salt.
func VerifyPassword(plain, hash, salt string) bool {
	s, err := hex.DecodeString(salt)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(hash)
	if err != nil {
		return false
	}
	got := argon2.IDKey([]byte(plain), s, argonTime, argonMemory, argonLanes, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
