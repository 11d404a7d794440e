package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stubhq/stublink/config"
	"github.com/stubhq/stublink/internal/app/geo"
	appmodel "github.com/stubhq/stublink/internal/app/model"
	apprepository "github.com/stubhq/stublink/internal/app/repository"
	appserver "github.com/stubhq/stublink/internal/app/server"
	appservice "github.com/stubhq/stublink/internal/app/service"
	httputil "github.com/stubhq/stublink/internal/http/util"
	"github.com/stubhq/stublink/internal/infra/logger"
	infraNATS "github.com/stubhq/stublink/internal/infra/nats"
	infraPostgres "github.com/stubhq/stublink/internal/infra/postgres"
	infraPrometheus "github.com/stubhq/stublink/internal/infra/prometheus"
	infraRedis "github.com/stubhq/stublink/internal/infra/redis"
	"go.uber.org/zap"
)

const (
	defaultArchiveRetention = 90 * 24 * time.Hour
	shutdownTimeout         = 10 * time.Second
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
		zap.Bool("trust_proxy", cfg.Resolver.TrustProxy),
	)

	if cfg.Resolver.CookieSecret == "" {
		log.Warn("COOKIE_SECRET is not set; password-protected links will always challenge")
	}

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB, &appmodel.ClickArchive{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	log.Info("Connected to Postgres successfully")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))

	geoLookup := geo.Lookup(geo.Unavailable())
	if cfg.Geo.DatabasePath != "" {
		maxmind, err := geo.OpenMaxMind(cfg.Geo.DatabasePath)
		if err != nil {
			log.Fatal("Failed to open GeoIP database", zap.Error(err))
		}
		defer maxmind.Close()
		geoLookup = maxmind
		log.Info("GeoIP database loaded", zap.String("path", cfg.Geo.DatabasePath))
	} else {
		log.Info("No GeoIP database configured; clicks record unknown geo")
	}

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	resolver := appservice.NewResolver(appservice.ResolverDeps{
		Logger:  log,
		Links:   apprepository.NewRedisLinkStore(redisClient),
		Cookies: httputil.NewCookieSigner([]byte(cfg.Resolver.CookieSecret)),
	})

	recorder := appservice.NewClickRecorder(appservice.ClickRecorderDeps{
		Logger:    log,
		Clicks:    apprepository.NewRedisClickLog(redisClient),
		Geo:       geoLookup,
		JetStream: js,
	})

	archiveRepo := apprepository.NewClickArchiveRepository(gormDB)

	consumer := appservice.NewClickConsumer(js, log, archiveRepo)
	if err := consumer.Start(); err != nil {
		log.Fatal("Failed to start click archive consumer", zap.Error(err))
	}
	defer consumer.Stop()

	retention := defaultArchiveRetention
	if cfg.Archive.Retention != "" {
		parsed, err := time.ParseDuration(cfg.Archive.Retention)
		if err != nil {
			log.Fatal("Invalid archive retention", zap.String("value", cfg.Archive.Retention), zap.Error(err))
		}
		retention = parsed
	}
	pruner := appservice.NewClickPruner(log, archiveRepo, retention)
	pruner.Start()
	defer pruner.Stop()

	server := appserver.New(appserver.Dependencies{
		Logger:    log,
		Postgres:  pool,
		Redis:     redisClient,
		NATS:      natsConn,
		JetStream: js,
		Resolver:  resolver,
		Recorder:  recorder,
		Config:    cfg,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shut down server", zap.Error(err))
		}
	}()

	if err := server.Listen(":8080"); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
