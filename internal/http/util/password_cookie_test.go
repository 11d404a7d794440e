package util

import (
	"errors"
	"testing"
	"time"
)

func TestCookieSigner_IssueValidate(t *testing.T) {
	signer := NewCookieSigner([]byte("secret"))

	token, err := signer.Issue("stub.sh", "abc")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if err := signer.Validate("stub.sh", "abc", token); err != nil {
		t.Fatalf("Validate rejected a fresh token: %v", err)
	}
}

func TestCookieSigner_BoundToLink(t *testing.T) {
	signer := NewCookieSigner([]byte("secret"))
	token, err := signer.Issue("stub.sh", "abc")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	if err := signer.Validate("stub.sh", "other", token); !errors.Is(err, ErrInvalidCookie) {
		t.Fatalf("expected rejection for a different key, got %v", err)
	}
	if err := signer.Validate("evil.sh", "abc", token); !errors.Is(err, ErrInvalidCookie) {
		t.Fatalf("expected rejection for a different hostname, got %v", err)
	}
}

func TestCookieSigner_Expired(t *testing.T) {
	signer := NewCookieSigner([]byte("secret"))
	signer.ttl = -time.Minute

	token, err := signer.Issue("stub.sh", "abc")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if err := signer.Validate("stub.sh", "abc", token); !errors.Is(err, ErrInvalidCookie) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestCookieSigner_Garbage(t *testing.T) {
	signer := NewCookieSigner([]byte("secret"))

	for _, token := range []string{"", "no-dot", "a.b", "!!!.###"} {
		if err := signer.Validate("stub.sh", "abc", token); !errors.Is(err, ErrInvalidCookie) {
			t.Fatalf("Validate(%q) = %v, want ErrInvalidCookie", token, err)
		}
	}
}

func TestCookieSigner_MissingSecret(t *testing.T) {
	signer := NewCookieSigner(nil)

	if _, err := signer.Issue("stub.sh", "abc"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret on Issue, got %v", err)
	}
	if err := signer.Validate("stub.sh", "abc", "x.y"); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret on Validate, got %v", err)
	}
}

func TestCookieSigner_DifferentSecretsDisagree(t *testing.T) {
	a := NewCookieSigner([]byte("secret-a"))
	b := NewCookieSigner([]byte("secret-b"))

	token, err := a.Issue("stub.sh", "abc")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if err := b.Validate("stub.sh", "abc", token); !errors.Is(err, ErrInvalidCookie) {
		t.Fatalf("expected cross-secret rejection, got %v", err)
	}
}
