package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Resolver.TrustProxy {
		t.Fatal("proxy trust must be off by default")
	}
	if cfg.Resolver.RedirectStatus != 0 {
		t.Fatalf("unexpected default redirect status %d", cfg.Resolver.RedirectStatus)
	}
}

func TestLoadLegacyEnvNames(t *testing.T) {
	t.Setenv("TRUST_PROXY", "true")
	t.Setenv("TRUST_PROXY_HEADER", "do-connecting-ip")
	t.Setenv("COOKIE_SECRET", "s3cret")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("GEOIP_DB", "/var/lib/geoip/city.mmdb")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !cfg.Resolver.TrustProxy {
		t.Fatal("expected TRUST_PROXY to enable proxy trust")
	}
	if cfg.Resolver.TrustProxyHeader != "do-connecting-ip" {
		t.Fatalf("TrustProxyHeader = %q", cfg.Resolver.TrustProxyHeader)
	}
	if cfg.Resolver.CookieSecret != "s3cret" {
		t.Fatalf("CookieSecret = %q", cfg.Resolver.CookieSecret)
	}
	if cfg.Redis.Host != "redis.internal" {
		t.Fatalf("Redis.Host = %q", cfg.Redis.Host)
	}
	if cfg.Geo.DatabasePath != "/var/lib/geoip/city.mmdb" {
		t.Fatalf("Geo.DatabasePath = %q", cfg.Geo.DatabasePath)
	}
}
