package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stubhq/stublink/internal/app/model"
	"github.com/stubhq/stublink/internal/app/repository"
	httputil "github.com/stubhq/stublink/internal/http/util"
	"golang.org/x/crypto/bcrypt"
)

type mockLinkStore struct {
	getFn func(ctx context.Context, hostname, key string) (*model.LinkRecord, error)
}

func (m *mockLinkStore) Get(ctx context.Context, hostname, key string) (*model.LinkRecord, error) {
	if m.getFn != nil {
		return m.getFn(ctx, hostname, key)
	}
	return nil, repository.ErrLinkNotFound
}

func newTestResolver(store repository.LinkStore) *Resolver {
	return NewResolver(ResolverDeps{
		Links:   store,
		Cookies: httputil.NewCookieSigner([]byte("test-secret")),
	})
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt hash: %v", err)
	}
	return string(hash)
}

const (
	crawlerUA = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
	androidUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) Mobile"
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
)

func TestResolver_NotFound(t *testing.T) {
	store := &mockLinkStore{
		getFn: func(ctx context.Context, hostname, key string) (*model.LinkRecord, error) {
			return nil, repository.ErrLinkNotFound
		},
	}

	r := newTestResolver(store)
	_, err := r.Resolve(context.Background(), Request{Hostname: "stub.sh", Key: "missing"})
	if !errors.Is(err, repository.ErrLinkNotFound) {
		t.Fatalf("expected ErrLinkNotFound, got %v", err)
	}
}

func TestResolver_StoreError(t *testing.T) {
	storeErr := errors.New("connection refused")
	store := &mockLinkStore{
		getFn: func(ctx context.Context, hostname, key string) (*model.LinkRecord, error) {
			return nil, storeErr
		},
	}

	r := newTestResolver(store)
	_, err := r.Resolve(context.Background(), Request{Hostname: "stub.sh", Key: "abc"})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
	if errors.Is(err, repository.ErrLinkNotFound) {
		t.Fatal("store failure must not masquerade as not-found")
	}
}

func TestResolver_PlainRedirect(t *testing.T) {
	store := &mockLinkStore{
		getFn: func(ctx context.Context, hostname, key string) (*model.LinkRecord, error) {
			return &model.LinkRecord{URL: "https://example.com"}, nil
		},
	}

	r := newTestResolver(store)
	decision, err := r.Resolve(context.Background(), Request{
		Hostname:  "stub.sh",
		Key:       "abc",
		UserAgent: desktopUA,
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if decision.Action != ActionRedirect {
		t.Fatalf("expected redirect, got action %d", decision.Action)
	}
	if decision.Target != "https://example.com" {
		t.Fatalf("unexpected target %q", decision.Target)
	}
	if decision.Cookie != CookieNone {
		t.Fatal("plain redirect must not touch cookies")
	}
}

func TestResolver_PasswordValidCookie(t *testing.T) {
	signer := httputil.NewCookieSigner([]byte("test-secret"))
	token, err := signer.Issue("stub.sh", "abc")
	if err != nil {
		t.Fatalf("issue cookie: %v", err)
	}

	store := &mockLinkStore{
		getFn: func(ctx context.Context, hostname, key string) (*model.LinkRecord, error) {
			return &model.LinkRecord{
				URL:          "https://example.com",
				Password:     true,
				PasswordHash: mustHash(t, "hunter2"),
			}, nil
		},
	}

	r := NewResolver(ResolverDeps{Links: store, Cookies: signer})
	decision, err := r.Resolve(context.Background(), Request{
		Hostname: "stub.sh",
		Key:      "abc",
		Cookie:   token,
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if decision.Action != ActionRedirect {
		t.Fatalf("expected redirect with valid cookie, got action %d", decision.Action)
	}
	if decision.Cookie != CookieNone {
		t.Fatal("a valid cookie must not be re-issued")
	}
}

func TestResolver_PasswordQueryVerifies(t *testing.T) {
	store := &mockLinkStore{
		getFn: func(ctx context.Context, hostname, key string) (*model.LinkRecord, error) {
			return &model.LinkRecord{
				URL:          "https://example.com",
				Password:     true,
				PasswordHash: mustHash(t, "hunter2"),
			}, nil
		},
	}

	r := newTestResolver(store)
	decision, err := r.Resolve(context.Background(), Request{
		Hostname: "stub.sh",
		Key:      "abc",
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if decision.Action != ActionRedirect {
		t.Fatalf("expected redirect on verified password, got action %d", decision.Action)
	}
	if decision.Cookie != CookieSet {
		t.Fatal("expected proof cookie to be set")
	}
	if decision.CookieToken == "" {
		t.Fatal("expected a cookie token")
	}
}

func TestResolver_PasswordChallenge(t *testing.T) {
	store := &mockLinkStore{
		getFn: func(ctx context.Context, hostname, key string) (*model.LinkRecord, error) {
			return &model.LinkRecord{
				URL:          "https://example.com",
				Password:     true,
				PasswordHash: mustHash(t, "hunter2"),
			}, nil
		},
	}

	r := newTestResolver(store)

	t.Run("no credentials", func(t *testing.T) {
		decision, err := r.Resolve(context.Background(), Request{
			Hostname: "stub.sh",
			Key:      "abc",
		})
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if decision.Action != ActionPasswordChallenge {
			t.Fatalf("expected challenge, got action %d", decision.Action)
		}
		if decision.Cookie != CookieNone {
			t.Fatal("nothing to clear when no cookie came in")
		}
	})

	t.Run("wrong password echoed back", func(t *testing.T) {
		decision, err := r.Resolve(context.Background(), Request{
			Hostname: "stub.sh",
			Key:      "abc",
			Password: "wrong-guess",
		})
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if decision.Action != ActionPasswordChallenge {
			t.Fatalf("expected challenge, got action %d", decision.Action)
		}
		if decision.EchoPassword != "wrong-guess" {
			t.Fatalf("expected attempted password to be echoed, got %q", decision.EchoPassword)
		}
	})

	t.Run("stale cookie cleared", func(t *testing.T) {
		decision, err := r.Resolve(context.Background(), Request{
			Hostname: "stub.sh",
			Key:      "abc",
			Cookie:   "garbage-token",
		})
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if decision.Action != ActionPasswordChallenge {
			t.Fatalf("expected challenge, got action %d", decision.Action)
		}
		if decision.Cookie != CookieClear {
			t.Fatal("expected stale cookie to be cleared")
		}
	})
}

func TestResolver_PasswordPrecedesBotEmbed(t *testing.T) {
	// A record with both flags set is handled by the password gate first.
	store := &mockLinkStore{
		getFn: func(ctx context.Context, hostname, key string) (*model.LinkRecord, error) {
			return &model.LinkRecord{
				URL:          "https://example.com",
				Password:     true,
				PasswordHash: mustHash(t, "hunter2"),
				Proxy:        true,
			}, nil
		},
	}

	r := newTestResolver(store)
	decision, err := r.Resolve(context.Background(), Request{
		Hostname:  "stub.sh",
		Key:       "abc",
		UserAgent: crawlerUA,
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if decision.Action != ActionPasswordChallenge {
		t.Fatalf("expected password gate to win, got action %d", decision.Action)
	}
}

func TestResolver_BotEmbed(t *testing.T) {
	store := &mockLinkStore{
		getFn: func(ctx context.Context, hostname, key string) (*model.LinkRecord, error) {
			return &model.LinkRecord{URL: "https://example.com", Proxy: true}, nil
		},
	}

	r := newTestResolver(store)

	decision, err := r.Resolve(context.Background(), Request{
		Hostname:  "stub.sh",
		Key:       "abc",
		UserAgent: crawlerUA,
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if decision.Action != ActionEmbed {
		t.Fatalf("expected embed for crawler, got action %d", decision.Action)
	}

	// Humans on a proxy-flagged link still get redirected.
	decision, err = r.Resolve(context.Background(), Request{
		Hostname:  "stub.sh",
		Key:       "abc",
		UserAgent: desktopUA,
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if decision.Action != ActionRedirect {
		t.Fatalf("expected redirect for human client, got action %d", decision.Action)
	}
}

func TestResolver_DeepLink(t *testing.T) {
	store := &mockLinkStore{
		getFn: func(ctx context.Context, hostname, key string) (*model.LinkRecord, error) {
			return &model.LinkRecord{URL: "https://youtube.com/watch?v=abc123"}, nil
		},
	}

	r := newTestResolver(store)

	decision, err := r.Resolve(context.Background(), Request{
		Hostname:  "stub.sh",
		Key:       "abc",
		UserAgent: androidUA,
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if decision.Action != ActionDeepLink {
		t.Fatalf("expected deep link for android client, got action %d", decision.Action)
	}
	if decision.Target != "vnd.youtube:abc123" {
		t.Fatalf("unexpected deep-link target %q", decision.Target)
	}
	if decision.Fallback != "https://youtube.com/watch?v=abc123" {
		t.Fatalf("unexpected fallback %q", decision.Fallback)
	}

	// Desktop clients skip deep-link synthesis entirely.
	decision, err = r.Resolve(context.Background(), Request{
		Hostname:  "stub.sh",
		Key:       "abc",
		UserAgent: desktopUA,
	})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if decision.Action != ActionRedirect {
		t.Fatalf("expected plain redirect for desktop, got action %d", decision.Action)
	}
	if decision.Target != "https://youtube.com/watch?v=abc123" {
		t.Fatalf("unexpected target %q", decision.Target)
	}
}
