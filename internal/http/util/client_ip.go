package util

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DefaultProxyHeader is consulted when proxy trust is enabled but no
// header name was configured.
const DefaultProxyHeader = "cf-connecting-ip"

// forwardedHeader is the fallback when the configured header is absent.
const forwardedHeader = "X-Forwarded-For"

// ClientIP resolves the client address for a request. Without proxy trust
// it is the socket peer. With proxy trust the named header wins, falling
// back to X-Forwarded-For; list-valued headers yield their first entry.
func ClientIP(c *fiber.Ctx, trustProxy bool, proxyHeader string) string {
	if !trustProxy {
		return c.IP()
	}

	header := proxyHeader
	if header == "" {
		header = DefaultProxyHeader
	}

	value := c.Get(header)
	if value == "" {
		value = c.Get(forwardedHeader)
	}
	if value == "" {
		return c.IP()
	}

	first, _, _ := strings.Cut(value, ",")
	if ip := parseIP(first); ip != "" {
		return ip
	}
	return c.IP()
}

// parseIP validates and normalizes an IP address string, returning ""
// when it is not a valid address.
func parseIP(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	ip := net.ParseIP(raw)
	if ip == nil {
		return ""
	}
	return ip.String()
}
