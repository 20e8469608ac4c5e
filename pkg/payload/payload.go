// Package payload implements the signed payload exchange used by Discourse
// connect-style SSO: URL-encoded key/value pairs, base64 transport encoding,
// and an HMAC-SHA256 signature computed over the transport-encoded form.
package payload

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrSignatureInvalid is returned when an inbound payload's signature does
// not verify. The reason is deliberately not exposed.
var ErrSignatureInvalid = errors.New("payload signature invalid")

// Outbound is the field set sent back to the forum after a member has been
// authenticated. Optional fields left empty are omitted from the encoded
// form entirely; the forum distinguishes absent from empty.
type Outbound struct {
	Nonce      string
	Email      string
	ExternalID string
	AvatarURL  string
	Name       string // optional
	AddGroups  string // optional, comma-joined group slugs
}

// Signer holds the HMAC key derived from the shared forum secret. It is
// created once at startup and is safe for concurrent use.
type Signer struct {
	key []byte
}

// NewSigner derives the signing key from the configured shared secret.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("payload: signing secret must not be empty")
	}
	return &Signer{key: []byte(secret)}, nil
}

// DecodeAndVerify checks the hex signature against the still-encoded payload
// string and only then decodes it. Unauthenticated input is never parsed.
func (s *Signer) DecodeAndVerify(encoded, hexSig string) (url.Values, error) {
	sig, err := hex.DecodeString(hexSig)
	if err != nil {
		return nil, ErrSignatureInvalid
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(encoded))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return nil, ErrSignatureInvalid
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("payload: malformed base64: %w", err)
	}

	values, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("payload: malformed query string: %w", err)
	}
	return values, nil
}

// EncodeAndSign serializes the outbound payload, base64-encodes it and signs
// the base64 string, mirroring the verification order on the inbound side.
// Field order is fixed so the encoded form is deterministic.
func (s *Signer) EncodeAndSign(p *Outbound) (encoded, hexSig string) {
	pairs := make([]string, 0, 6)
	add := func(key, value string) {
		pairs = append(pairs, key+"="+url.QueryEscape(value))
	}

	add("nonce", p.Nonce)
	add("email", p.Email)
	add("external_id", p.ExternalID)
	add("avatar_url", p.AvatarURL)
	if p.Name != "" {
		add("name", p.Name)
	}
	if p.AddGroups != "" {
		add("add_groups", p.AddGroups)
	}

	encoded = base64.StdEncoding.EncodeToString([]byte(strings.Join(pairs, "&")))
	return encoded, s.Sign(encoded)
}

// Sign computes the hex HMAC-SHA256 signature of an already transport-encoded
// payload string.
func (s *Signer) Sign(encoded string) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}
