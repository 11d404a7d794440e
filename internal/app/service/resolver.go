package service

import (
	"context"
	"fmt"

	"github.com/stubhq/stublink/internal/app/deeplink"
	"github.com/stubhq/stublink/internal/app/repository"
	"github.com/stubhq/stublink/internal/app/ua"
	httputil "github.com/stubhq/stublink/internal/http/util"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Action names the response shape a resolution ends in.
type Action int

const (
	// ActionRedirect sends the client straight to Decision.Target.
	ActionRedirect Action = iota
	// ActionPasswordChallenge serves the password form.
	ActionPasswordChallenge
	// ActionEmbed serves crawler-facing preview HTML.
	ActionEmbed
	// ActionDeepLink serves the app hand-off page for Decision.Target
	// with a timed fallback to Decision.Fallback.
	ActionDeepLink
)

// CookieOp says what to do with the password-proof cookie.
type CookieOp int

const (
	CookieNone CookieOp = iota
	// CookieSet stores Decision.CookieToken scoped to the link's path.
	CookieSet
	// CookieClear expires a stale cookie immediately.
	CookieClear
)

// Request carries everything a resolution decision may depend on. The
// decision is a pure function of this snapshot plus the fetched record.
type Request struct {
	Hostname  string
	Key       string
	Password  string // query parameter, may be empty
	Cookie    string // password-proof cookie value, may be empty
	UserAgent string
}

// Decision is the finalized routing outcome for one request.
type Decision struct {
	Action      Action
	Target      string
	Fallback    string
	Cookie      CookieOp
	CookieToken string
	// EchoPassword is the attempted password handed back to the form.
	EchoPassword string
}

// Resolver is the policy engine turning a link record plus request
// context into a Decision. It holds no per-request state.
type Resolver struct {
	logger  *zap.Logger
	links   repository.LinkStore
	cookies *httputil.CookieSigner
}

// ResolverDeps groups the resolver's collaborators.
type ResolverDeps struct {
	Logger  *zap.Logger
	Links   repository.LinkStore
	Cookies *httputil.CookieSigner
}

// NewResolver creates a Resolver with the provided dependencies.
func NewResolver(deps ResolverDeps) *Resolver {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		logger:  logger,
		links:   deps.Links,
		cookies: deps.Cookies,
	}
}

// Resolve fetches the link record once and walks the policy states in
// order: password gate, bot embed, deep link, plain redirect. A nil error
// means a Decision was reached and a click should be recorded; not-found
// surfaces as repository.ErrLinkNotFound.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Decision, error) {
	link, err := r.links.Get(ctx, req.Hostname, req.Key)
	if err != nil {
		return Decision{}, fmt.Errorf("resolve %s/%s: %w", req.Hostname, req.Key, err)
	}

	if link.Password {
		return r.resolvePassword(req, link.URL, link.PasswordHash)
	}

	if link.Proxy && ua.DetectBot(req.UserAgent) {
		return Decision{Action: ActionEmbed, Target: link.URL}, nil
	}

	device := ua.ClassifyDevice(req.UserAgent)
	if target := deeplink.Translate(link.URL, device); target != link.URL {
		return Decision{
			Action:   ActionDeepLink,
			Target:   target,
			Fallback: link.URL,
		}, nil
	}

	return Decision{Action: ActionRedirect, Target: link.URL}, nil
}

func (r *Resolver) resolvePassword(req Request, target, hash string) (Decision, error) {
	if req.Cookie != "" && r.cookies.Validate(req.Hostname, req.Key, req.Cookie) == nil {
		return Decision{Action: ActionRedirect, Target: target}, nil
	}

	if req.Password != "" && passwordMatches(hash, req.Password) {
		token, err := r.cookies.Issue(req.Hostname, req.Key)
		if err != nil {
			// The proof cookie is a convenience; the verified password
			// still unlocks this request.
			r.logger.Error("failed to issue password cookie", zap.Error(err))
			return Decision{Action: ActionRedirect, Target: target}, nil
		}
		return Decision{
			Action:      ActionRedirect,
			Target:      target,
			Cookie:      CookieSet,
			CookieToken: token,
		}, nil
	}

	decision := Decision{
		Action:       ActionPasswordChallenge,
		EchoPassword: req.Password,
	}
	if req.Cookie != "" {
		decision.Cookie = CookieClear
	}
	return decision, nil
}

func passwordMatches(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
