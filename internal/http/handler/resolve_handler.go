package handler

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stubhq/stublink/internal/app/model"
	"github.com/stubhq/stublink/internal/app/repository"
	"github.com/stubhq/stublink/internal/app/service"
	"github.com/stubhq/stublink/internal/http/util"
	"github.com/stubhq/stublink/internal/http/view"
	"github.com/stubhq/stublink/internal/infra/metrics"
	"go.uber.org/zap"
)

// Recorder is the click-recording seam the handler fires after a routing
// decision. service.ClickRecorder satisfies it.
type Recorder interface {
	Record(hostname, key string, click service.ClickContext)
}

// ResolveDeps groups dependencies required by the resolve handler.
type ResolveDeps struct {
	Logger   *zap.Logger
	Resolver *service.Resolver
	Recorder Recorder
	// TrustProxy / TrustProxyHeader drive client IP resolution.
	TrustProxy       bool
	TrustProxyHeader string
	// RedirectStatus is the status for redirect decisions; 302 when zero.
	RedirectStatus int
	// FallbackDelayMS bounds the deep-link page's fallback timer.
	FallbackDelayMS int
}

// ResolveHandler serves the link resolution path.
type ResolveHandler struct {
	logger *zap.Logger
	deps   ResolveDeps

	renderPassword func(view.PasswordPageData) (string, error)
	renderEmbed    func(view.EmbedPageData) (string, error)
	renderDeepLink func(view.DeepLinkPageData) (string, error)
}

// NewResolveHandler creates a resolve handler with the provided
// dependencies.
func NewResolveHandler(deps ResolveDeps) *ResolveHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolveHandler{
		logger:         logger,
		deps:           deps,
		renderPassword: view.RenderPasswordPage,
		renderEmbed:    view.RenderEmbedPage,
		renderDeepLink: view.RenderDeepLinkPage,
	}
}

// Register wires resolution routes onto the provided router. The root
// path resolves the hostname's index link, so health lives under a
// reserved prefix.
func (h *ResolveHandler) Register(router fiber.Router) {
	router.Get("/_health", h.Health)
	router.Get("/", h.Resolve)
	router.Get("/:key", h.Resolve)
}

// Health is a simple endpoint so we know the service is running.
func (h *ResolveHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "stublink",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Resolve handles GET / and GET /:key.
func (h *ResolveHandler) Resolve(c *fiber.Ctx) error {
	hostname := requestHostname(c)
	if hostname == "" {
		// Unroutable without a host; rejected before any store access.
		metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing host header",
		})
	}

	key := linkKey(c.Params("key"))

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	decision, err := h.deps.Resolver.Resolve(ctx, service.Request{
		Hostname:  hostname,
		Key:       key,
		Password:  c.Query("password"),
		Cookie:    c.Cookies(util.PasswordCookieName),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	})
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "short link not found",
			})
		}
		h.logger.Error("failed to resolve link",
			zap.String("hostname", hostname),
			zap.String("key", key),
			zap.Error(err))
		metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	h.applyCookie(c, key, decision)

	// The click is tied to the terminal response shape: it fires only once
	// the page rendered (or just before the redirect, which cannot fail).
	switch decision.Action {
	case service.ActionPasswordChallenge:
		html, err := h.renderPassword(view.PasswordPageData{
			Prefill: decision.EchoPassword,
		})
		if err != nil {
			return h.renderFailure(c, "password", err)
		}
		metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomePassword).Inc()
		h.recordClick(c, hostname, key)
		return c.Type("html", "utf-8").SendString(html)
	case service.ActionEmbed:
		html, err := h.renderEmbed(view.EmbedPageData{
			Hostname: hostname,
			Key:      key,
		})
		if err != nil {
			return h.renderFailure(c, "embed", err)
		}
		metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeEmbed).Inc()
		h.recordClick(c, hostname, key)
		return c.Type("html", "utf-8").SendString(html)
	case service.ActionDeepLink:
		html, err := h.renderDeepLink(view.DeepLinkPageData{
			DeepLink:        decision.Target,
			Fallback:        decision.Fallback,
			FallbackDelayMS: h.deps.FallbackDelayMS,
		})
		if err != nil {
			return h.renderFailure(c, "deep-link", err)
		}
		metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeDeepLink).Inc()
		h.recordClick(c, hostname, key)
		return c.Type("html", "utf-8").SendString(html)
	default:
		metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeRedirect).Inc()
		h.logger.Debug("redirecting short link",
			zap.String("hostname", hostname),
			zap.String("key", key))
		h.recordClick(c, hostname, key)
		return c.Redirect(decision.Target, h.redirectStatus())
	}
}

// recordClick fires the detached click write for a served response.
func (h *ResolveHandler) recordClick(c *fiber.Ctx, hostname, key string) {
	h.deps.Recorder.Record(hostname, key, service.ClickContext{
		IP:        util.ClientIP(c, h.deps.TrustProxy, h.deps.TrustProxyHeader),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Referer:   c.Get(fiber.HeaderReferer),
	})
}

func (h *ResolveHandler) renderFailure(c *fiber.Ctx, page string, err error) error {
	h.logger.Error("failed to render "+page+" page", zap.Error(err))
	metrics.ResolutionsTotal.WithLabelValues(metrics.OutcomeError).Inc()
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "failed to render page",
	})
}

func (h *ResolveHandler) redirectStatus() int {
	if h.deps.RedirectStatus != 0 {
		return h.deps.RedirectStatus
	}
	return fiber.StatusFound
}

// applyCookie sets or immediately expires the password-proof cookie,
// scoped to the link's own path.
func (h *ResolveHandler) applyCookie(c *fiber.Ctx, key string, decision service.Decision) {
	switch decision.Cookie {
	case service.CookieSet:
		c.Cookie(&fiber.Cookie{
			Name:     util.PasswordCookieName,
			Value:    decision.CookieToken,
			Path:     cookiePath(key),
			Expires:  time.Now().Add(util.PasswordCookieTTL),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	case service.CookieClear:
		c.Cookie(&fiber.Cookie{
			Name:     util.PasswordCookieName,
			Value:    "",
			Path:     cookiePath(key),
			Expires:  time.Unix(0, 0),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}

// requestHostname extracts the lowercased host header without its port.
func requestHostname(c *fiber.Ctx) string {
	host := c.Hostname()
	if host == "" {
		return ""
	}
	if stripped, _, err := net.SplitHostPort(host); err == nil {
		host = stripped
	}
	return strings.ToLower(host)
}

// linkKey maps the path segment to a store key; the root path resolves
// the hostname's index link.
func linkKey(raw string) string {
	if raw == "" {
		return model.IndexKey
	}
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// cookiePath scopes the password cookie to exactly this link.
func cookiePath(key string) string {
	return "/" + url.PathEscape(key)
}
