package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCookie = errors.New("invalid or expired password cookie")
	ErrMissingSecret = errors.New("cookie secret is not configured")
)

const (
	// PasswordCookieName matches the cookie the management layer's pages
	// already expect.
	PasswordCookieName = "stub_link_password"
	// PasswordCookieTTL is how long a satisfied password challenge stays
	// valid.
	PasswordCookieTTL = 7 * 24 * time.Hour
)

// CookieSigner mints and checks the HMAC token proving a password
// challenge was satisfied for one specific (hostname, key). The raw
// password never round-trips through the cookie.
type CookieSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewCookieSigner returns a signer with the standard password-cookie TTL.
func NewCookieSigner(secret []byte) *CookieSigner {
	return &CookieSigner{
		secret: secret,
		ttl:    PasswordCookieTTL,
	}
}

// Issue mints a token bound to (hostname, key).
func (s *CookieSigner) Issue(hostname, key string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}

	payload := make([]byte, 12) // 4 bytes expiry + 8 random bytes
	expires := uint32(time.Now().Add(s.ttl).Unix())
	binary.BigEndian.PutUint32(payload[:4], expires)
	if _, err := rand.Read(payload[4:]); err != nil {
		return "", err
	}

	payloadEnc := base64.RawURLEncoding.EncodeToString(payload)
	signature := s.sign(hostname, key, payload)
	sigEnc := base64.RawURLEncoding.EncodeToString(signature[:16])
	return fmt.Sprintf("%s.%s", payloadEnc, sigEnc), nil
}

// Validate checks signature integrity, binding and TTL of the token.
func (s *CookieSigner) Validate(hostname, key, token string) error {
	if len(s.secret) == 0 {
		return ErrMissingSecret
	}

	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return ErrInvalidCookie
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidCookie
	}

	sigProvided, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrInvalidCookie
	}
	if len(sigProvided) != 16 {
		return ErrInvalidCookie
	}

	expected := s.sign(hostname, key, payload)
	if !hmac.Equal(sigProvided, expected[:16]) {
		return ErrInvalidCookie
	}

	if len(payload) < 4 {
		return ErrInvalidCookie
	}
	expires := binary.BigEndian.Uint32(payload[:4])
	if time.Now().Unix() > int64(expires) {
		return ErrInvalidCookie
	}

	return nil
}

func (s *CookieSigner) sign(hostname, key string, payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(hostname))
	mac.Write([]byte("|"))
	mac.Write([]byte(key))
	mac.Write([]byte("|"))
	mac.Write(payload)
	return mac.Sum(nil)
}
