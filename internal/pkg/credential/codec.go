// Package credential implements the keyed transformations applied to
// usernames and passwords before they are stored.
//
// Usernames are obfuscated with a deterministic AES-GCM construction whose
// nonce is an HMAC of the plaintext, so the same name always yields the same
// token (usable as a lookup key) and the server alone can recover the name.
// Passwords are stored as "salt,hash" where hash is an HMAC over
// salt+password+username.
//
// All key material is derived with HKDF from a single secret; rotating the
// secret rotates every derived key.
package credential

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const (
	saltBytes = 12
	keyBytes  = 32
)

var (
	ErrEmptySecret    = errors.New("credential: empty secret")
	ErrMalformedToken = errors.New("credential: malformed username token")
	ErrInvalidSalt    = errors.New("credential: salt must not contain a comma")
)

var tokenEncoding = base64.RawURLEncoding

// Codec holds the derived keys. It is safe for concurrent use.
type Codec struct {
	aead     cipher.AEAD
	nonceKey []byte
	hashKey  []byte
}

// NewCodec derives the username and password keys from secret.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	encKey, err := derive(secret, "username-encryption")
	if err != nil {
		return nil, err
	}
	nonceKey, err := derive(secret, "username-nonce")
	if err != nil {
		return nil, err
	}
	hashKey, err := derive(secret, "password-hash")
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("credential: cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("credential: gcm: %w", err)
	}

	return &Codec{aead: aead, nonceKey: nonceKey, hashKey: hashKey}, nil
}

func derive(secret []byte, info string) ([]byte, error) {
	key := make([]byte, keyBytes)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, fmt.Errorf("credential: derive %s: %w", info, err)
	}
	return key, nil
}

// Obfuscate returns the stable token for rawUsername.
func (c *Codec) Obfuscate(rawUsername string) string {
	mac := hmac.New(sha256.New, c.nonceKey)
	mac.Write([]byte(rawUsername))
	nonce := mac.Sum(nil)[:c.aead.NonceSize()]

	sealed := c.aead.Seal(nonce, nonce, []byte(rawUsername), nil)
	return tokenEncoding.EncodeToString(sealed)
}

// Deobfuscate is the exact inverse of Obfuscate for tokens produced with the
// same secret.
func (c *Codec) Deobfuscate(token string) (string, error) {
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return "", ErrMalformedToken
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", ErrMalformedToken
	}

	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrMalformedToken
	}
	return string(plain), nil
}

// MakeSalt returns a fresh random salt. It never contains a comma.
func (c *Codec) MakeSalt() (string, error) {
	b := make([]byte, saltBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("credential: salt: %w", err)
	}
	return tokenEncoding.EncodeToString(b), nil
}

// MakePasswordRecord returns "salt,hash". The username is part of the hashed
// input so a record only verifies for the user it was made for.
func (c *Codec) MakePasswordRecord(rawUsername, rawPassword, salt string) (string, error) {
	if strings.Contains(salt, ",") {
		return "", ErrInvalidSalt
	}
	return salt + "," + c.hash(salt, rawPassword, rawUsername), nil
}

// Verify splits record on its first comma and compares the recomputed hash.
func (c *Codec) Verify(rawUsername, rawPassword, record string) bool {
	salt, stored, ok := strings.Cut(record, ",")
	if !ok {
		return false
	}
	want := c.hash(salt, rawPassword, rawUsername)
	return hmac.Equal([]byte(want), []byte(stored))
}

func (c *Codec) hash(salt, password, username string) string {
	mac := hmac.New(sha256.New, c.hashKey)
	mac.Write([]byte(salt + password + username))
	return hex.EncodeToString(mac.Sum(nil))
}
