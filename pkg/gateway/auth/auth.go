// Package auth resolves gateway API keys into caller principals.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
)

// Principal identifies the caller of one interview API request. Only the key
// fingerprint travels through the request context; the raw key is checked
// once and discarded. Anonymous principals appear under optional auth when
// the caller presented no key.
type Principal struct {
	KeyID     string
	Anonymous bool
}

// Anonymous is the principal attached to unauthenticated requests that the
// configured auth mode lets through.
var Anonymous = Principal{Anonymous: true}

// KeyID derives the loggable fingerprint of an API key.
func KeyID(key string) string {
	sum := sha256.Sum256([]byte(key))
	return "key_" + hex.EncodeToString(sum[:4])
}

// Keyring holds the configured API keys, indexed by fingerprint so lookup
// compares full digests rather than raw key bytes.
type Keyring struct {
	byID map[string]string
}

// NewKeyring builds a keyring from the configured key set.
func NewKeyring(keys map[string]struct{}) *Keyring {
	kr := &Keyring{byID: make(map[string]string, len(keys))}
	for k := range keys {
		kr.byID[KeyID(k)] = k
	}
	return kr
}

// Resolve checks a presented key against the ring and returns its principal.
func (kr *Keyring) Resolve(key string) (Principal, bool) {
	if kr == nil {
		return Principal{}, false
	}
	id := KeyID(key)
	known, ok := kr.byID[id]
	if !ok || subtle.ConstantTimeCompare([]byte(known), []byte(key)) != 1 {
		return Principal{}, false
	}
	return Principal{KeyID: id}, true
}

// BearerToken extracts the bearer token from an Authorization header.
// Missing header, wrong scheme, and empty token all report false.
func BearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const scheme = "Bearer "
	if !strings.HasPrefix(header, scheme) {
		return "", false
	}
	token := strings.TrimSpace(header[len(scheme):])
	return token, token != ""
}
