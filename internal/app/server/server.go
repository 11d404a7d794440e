package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/stubhq/stublink/config"
	"github.com/stubhq/stublink/internal/app/service"
	inthttp "github.com/stubhq/stublink/internal/http/handler"
	"github.com/stubhq/stublink/internal/http/middleware"
	"go.uber.org/zap"
)

// Dependencies bundles infrastructure dependencies required by the HTTP
// server.
type Dependencies struct {
	Logger    *zap.Logger
	Postgres  *pgxpool.Pool
	Redis     *redis.Client
	NATS      *nats.Conn
	JetStream nats.JetStreamContext
	Resolver  *service.Resolver
	Recorder  *service.ClickRecorder
	Config    *config.Config
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.Logger(s.deps.Logger))
	if s.deps.Redis != nil {
		s.app.Use(middleware.RateLimit(s.deps.Redis, middleware.DefaultRateLimitConfig(), s.deps.Logger))
	}

	resolver := s.deps.Config.Resolver
	resolveHandler := inthttp.NewResolveHandler(inthttp.ResolveDeps{
		Logger:           s.deps.Logger,
		Resolver:         s.deps.Resolver,
		Recorder:         s.deps.Recorder,
		TrustProxy:       resolver.TrustProxy,
		TrustProxyHeader: resolver.TrustProxyHeader,
		RedirectStatus:   resolver.RedirectStatus,
		FallbackDelayMS:  resolver.DeepLinkFallbackMS,
	})
	resolveHandler.Register(s.app)
}
