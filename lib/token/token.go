// Package token issues and verifies browser session tokens.
//
// Tokens carry a session id and issue time, packed with msgpack and either
// HMAC-signed (visible but tamper-proof) or AES-256-GCM encrypted (fully
// opaque). They back the anonymous-session cookie: every unauthenticated
// browser gets its own signed session id instead of sharing one bucket.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Sentinel errors for token verification.
var (
	ErrInvalidFormat    = errors.New("token: invalid format")
	ErrSignatureInvalid = errors.New("token: signature verification failed")
	ErrDecryptFailed    = errors.New("token: decryption failed")
	ErrExpired          = errors.New("token: expired")
)

// Claims is the payload carried by a token.
type Claims struct {
	SessionID string    `msgpack:"sid"`
	IssuedAt  time.Time `msgpack:"iat"`
}

// Minter mints and verifies session tokens with a single symmetric key.
type Minter struct {
	key []byte
	gcm cipher.AEAD
}

// NewMinter creates a minter. Keys shorter than 32 bytes are stretched
// through SHA-256 so AES-256 always gets a full-length key.
func NewMinter(key []byte) (*Minter, error) {
	if len(key) < 32 {
		h := sha256.Sum256(key)
		key = h[:]
	}

	block, err := aes.NewCipher(key[:32])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Minter{key: key, gcm: gcm}, nil
}

// Mint packs the claims and returns the token string. Opaque tokens are
// encrypted; otherwise the payload is visible but HMAC-signed.
func (m *Minter) Mint(claims Claims, opaque bool) (string, error) {
	packed, err := msgpack.Marshal(claims)
	if err != nil {
		return "", err
	}
	if opaque {
		return m.encrypt(packed)
	}
	return m.sign(packed), nil
}

// Verify checks a token and returns its claims. maxAge of zero disables
// the freshness check; otherwise tokens older than maxAge fail with
// ErrExpired.
func (m *Minter) Verify(tok string, opaque bool, maxAge time.Duration) (Claims, error) {
	var (
		packed []byte
		err    error
	)
	if opaque {
		packed, err = m.decrypt(tok)
	} else {
		packed, err = m.verify(tok)
	}
	if err != nil {
		return Claims{}, err
	}

	var claims Claims
	if err := msgpack.Unmarshal(packed, &claims); err != nil {
		return Claims{}, ErrInvalidFormat
	}

	if maxAge > 0 && time.Since(claims.IssuedAt) > maxAge {
		return Claims{}, ErrExpired
	}
	return claims, nil
}

// sign creates a signed (but visible) token: base64.signature
func (m *Minter) sign(data []byte) string {
	b64 := base64.RawURLEncoding.EncodeToString(data)
	mac := hmac.New(sha256.New, m.key)
	mac.Write(data)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16])
	return b64 + "." + sig
}

// verify checks the signature and decodes the payload.
func (m *Minter) verify(tok string) ([]byte, error) {
	parts := strings.SplitN(tok, ".", 2)
	if len(parts) != 2 {
		return nil, ErrInvalidFormat
	}

	data, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidFormat
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidFormat
	}

	mac := hmac.New(sha256.New, m.key)
	mac.Write(data)
	expected := mac.Sum(nil)[:16]

	if !hmac.Equal(sig, expected) {
		return nil, ErrSignatureInvalid
	}
	return data, nil
}

// encrypt produces an opaque token using AES-256-GCM.
func (m *Minter) encrypt(data []byte) (string, error) {
	nonce := make([]byte, m.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ciphertext := m.gcm.Seal(nonce, nonce, data, nil)
	return base64.RawURLEncoding.EncodeToString(ciphertext), nil
}

// decrypt decodes and decrypts an opaque token.
func (m *Minter) decrypt(tok string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil {
		return nil, ErrInvalidFormat
	}
	if len(ciphertext) < m.gcm.NonceSize() {
		return nil, ErrInvalidFormat
	}

	nonce := ciphertext[:m.gcm.NonceSize()]
	plain, err := m.gcm.Open(nil, nonce, ciphertext[m.gcm.NonceSize():], nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plain, nil
}
