package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"safari_tours/internal/adapters/auth"
	"safari_tours/internal/adapters/events"
	server "safari_tours/internal/adapters/http_server"
	"safari_tours/internal/adapters/mailer"
	"safari_tours/internal/adapters/media"
	"safari_tours/internal/adapters/observability"
	redisad "safari_tours/internal/adapters/redis"
	"safari_tours/internal/adapters/telegram"
	"safari_tours/internal/app"
	"safari_tours/internal/domain"
	"safari_tours/internal/export"
	"safari_tours/internal/opslog"
	"safari_tours/internal/shared"
	"safari_tours/internal/storage/memory"
	mysqlrepo "safari_tours/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, "safari-api", cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	store := openStore(ctx, cfg)

	// cache; without Redis the catalog reads straight from the store
	var cache domain.Cache
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, catalog cache may miss")
		}
		defer rc.Close()
		cache = rc
	}

	mail := mailer.New(mailer.Config{
		Host: cfg.SMTPHost, Port: cfg.SMTPPort, Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword, From: cfg.MailFrom, RPS: cfg.MailRPS,
	})

	var publisher domain.EventPublisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		p := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer p.Close()
		publisher = p
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("booking events enabled")
	}

	var alerter domain.Alerter = telegram.Noop{}
	if cfg.TelegramToken != "" {
		if a, err := telegram.New(cfg.TelegramToken, cfg.TelegramChatID); err != nil {
			log.Warn().Err(err).Msg("telegram alerts disabled")
		} else {
			alerter = a
		}
	}

	// admin verifiers; any one accepting the token is enough
	var verifiers auth.Chain
	if cfg.AdminJWTSecret != "" {
		verifiers = append(verifiers, auth.NewHMAC(cfg.AdminJWTSecret))
	}
	if cfg.AdminOIDCIssuer != "" {
		if v, err := auth.NewOIDC(ctx, cfg.AdminOIDCIssuer, cfg.AdminOIDCClientID); err != nil {
			log.Error().Err(err).Msg("oidc verifier unavailable")
		} else {
			verifiers = append(verifiers, v)
		}
	}

	ops := opslog.New()
	audit := app.NewAuditor(store, ops)
	catalog := app.NewCatalogService(store, store, cache, cfg.CacheTTL)

	var logo export.Logo
	if cfg.ExportLogoPath != "" {
		l, err := export.LoadLogo(cfg.ExportLogoPath)
		if err != nil {
			log.Warn().Err(err).Msg("exports will have no logo")
		}
		logo = l
	}

	h := &server.Handlers{
		Catalog: catalog,
		Bookings: app.NewBookingService(app.BookingDeps{
			Store: store, Mailer: mail, Events: publisher, Alerter: alerter,
			Audit: audit, Ops: ops, SiteURL: cfg.PublicSiteURL, Workers: cfg.Workers, Logo: logo,
		}),
		Content:   app.NewContentService(store, catalog, audit),
		Customers: app.NewCustomerService(store, mail, audit, cfg.Workers).WithLogo(logo),
		Reports:   app.NewReportService(store),
		Audit:     audit,
		Ops:       ops,
		Media: media.NewSigner(media.Config{
			CloudName: cfg.MediaCloudName, APIKey: cfg.MediaAPIKey,
			APISecret: cfg.MediaAPISecret, Folder: cfg.MediaFolder,
		}),
		Verifier: verifiers,
	}

	// http
	srv := server.New(cfg.HTTPTimeout, cfg.BulkTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("storage", cfg.StorageDriver).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}

func openStore(ctx context.Context, cfg shared.Config) domain.Store {
	if cfg.StorageDriver == "memory" {
		log.Warn().Msg("using in-memory storage; data is lost on restart")
		return memory.New()
	}
	if cfg.AutoMigrate {
		if err := mysqlrepo.Migrate(cfg.MySQLDSN); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}
	db, err := mysqlrepo.Open(cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open mysql")
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")
	return mysqlrepo.New(db)
}
