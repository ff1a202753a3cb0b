// Package anonymization derives every pseudonymous value the engine stores.
// All derivations are keyed HMAC-SHA256 under sub-keys expanded from one
// server secret, so none of them can be recomputed without that secret.
package anonymization

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"surveycore/internal/structures"

	"golang.org/x/crypto/hkdf"
)

const (
	defaultIDLength = 24
	secretBytes     = 36
)

type HasherInterface interface {
	AnonymousID(tokenID string) string
	Fingerprint(secret string) string
	HashIP(ip string) string
	HashDevice(fingerprint string) string
}

type Hasher struct {
	anonKey   []byte
	tokenKey  []byte
	ipKey     []byte
	deviceKey []byte
	idLength  int
}

func NewHasher(conf *structures.Config) (HasherInterface, error) {
	return NewHasherFromSecret([]byte(conf.Anonymity.Secret), conf.Anonymity.AnonymousIDLength)
}

func NewHasherFromSecret(secret []byte, idLength int) (*Hasher, error) {
	if len(secret) < 32 {
		return nil, errors.New("anonymity secret must be at least 32 bytes")
	}
	if idLength == 0 {
		idLength = defaultIDLength
	}
	if idLength < 16 || idLength > sha256.Size*2 {
		return nil, fmt.Errorf("anonymous id length %d outside 16..%d", idLength, sha256.Size*2)
	}

	h := &Hasher{idLength: idLength}
	for label, dst := range map[string]*[]byte{
		"survey/anonymous-id": &h.anonKey,
		"survey/token":        &h.tokenKey,
		"survey/ip":           &h.ipKey,
		"survey/device":       &h.deviceKey,
	} {
		key, err := derive(secret, label)
		if err != nil {
			return nil, err
		}
		*dst = key
	}
	return h, nil
}

func derive(secret []byte, label string) ([]byte, error) {
	key := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(label)), key); err != nil {
		return nil, fmt.Errorf("derive %s key: %w", label, err)
	}
	return key, nil
}

func mac(key []byte, value string) string {
	m := hmac.New(sha256.New, key)
	m.Write([]byte(value))
	return hex.EncodeToString(m.Sum(nil))
}

// AnonymousID is stable for a token id and reveals nothing about it.
func (h *Hasher) AnonymousID(tokenID string) string {
	return mac(h.anonKey, tokenID)[:h.idLength]
}

// Fingerprint is the lookup key a token is stored under.
func (h *Hasher) Fingerprint(secret string) string {
	return mac(h.tokenKey, secret)
}

func (h *Hasher) HashIP(ip string) string {
	if ip == "" {
		return ""
	}
	return mac(h.ipKey, ip)
}

func (h *Hasher) HashDevice(fingerprint string) string {
	if fingerprint == "" {
		return ""
	}
	return mac(h.deviceKey, fingerprint)
}

// EqualHash compares two hex digests in constant time.
func EqualHash(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// NewSecret returns a random URL-safe token secret of 48 characters.
func NewSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
