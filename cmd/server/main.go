package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rundetips/platform/modules/auth"
	"github.com/rundetips/platform/modules/manager"
	"github.com/rundetips/platform/pkg/config"
	"github.com/rundetips/platform/pkg/cookie"
	"github.com/rundetips/platform/pkg/email"
	"github.com/rundetips/platform/pkg/httpserver"
	"github.com/rundetips/platform/pkg/logger"
	"github.com/rundetips/platform/pkg/mongo"
	"github.com/rundetips/platform/pkg/redis"
	"github.com/rundetips/platform/pkg/session"
)

type appConfig struct {
	// Environment selects logger presets: development, staging, production.
	Environment string `env:"APP_ENV" envDefault:"development"`

	// AppURL is the public base URL, used in login email deep links.
	AppURL string `env:"APP_URL" envDefault:"http://localhost:8080"`

	Database string `env:"MONGODB_DATABASE" envDefault:"rundetips"`

	// SessionStore selects the session backend: mongo, redis or memory.
	SessionStore string `env:"SESSION_STORE" envDefault:"mongo"`

	// DevMailDir receives outgoing mails as files when Postmark is not
	// configured.
	DevMailDir string `env:"DEV_MAIL_DIR" envDefault:"./tmp/mail"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(logger.WithEnvironment(cfg.Environment, "rundetips"))

	var mongoCfg mongo.Config
	config.MustLoad(&mongoCfg)
	db, err := mongo.NewWithDatabase(ctx, mongoCfg, cfg.Database)
	if err != nil {
		log.ErrorContext(ctx, "mongodb connection failed", logger.Error(err))
		os.Exit(1)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	accounts := auth.NewMongoAccountStore(db)
	if err := accounts.EnsureIndexes(ctx); err != nil {
		log.ErrorContext(ctx, "account index creation failed", logger.Error(err))
		os.Exit(1)
	}

	var cookieCfg cookie.Config
	config.MustLoad(&cookieCfg)
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		log.ErrorContext(ctx, "cookie manager setup failed", logger.Error(err))
		os.Exit(1)
	}

	var sessionCfg session.Config
	config.MustLoad(&sessionCfg)

	healthProbes := []func(context.Context) error{mongo.Healthcheck(db.Client())}

	var sessionStore session.Store
	switch cfg.SessionStore {
	case "redis":
		var redisCfg redis.Config
		config.MustLoad(&redisCfg)
		redisClient, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			log.ErrorContext(ctx, "redis connection failed", logger.Error(err))
			os.Exit(1)
		}
		defer func() { _ = redisClient.Close() }()
		sessionStore = session.NewRedisStore(redisClient)
		healthProbes = append(healthProbes, redis.Healthcheck(redisClient))
	case "memory":
		sessionStore = session.NewMemoryStore()
	default:
		mongoStore := session.NewMongoStore(db)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			log.ErrorContext(ctx, "session index creation failed", logger.Error(err))
			os.Exit(1)
		}
		sessionStore = mongoStore
	}

	sessions := session.NewFromConfig(sessionCfg,
		session.WithStore(sessionStore),
		session.WithTransport(session.NewCookieTransport(cookies, sessionCfg.CookieName, sessionCfg.SecureCookies)),
	)
	defer sessions.Close()

	mailer := newMailer(cfg, log)
	codes := auth.NewLoginCodeService(accounts, mailer, cfg.AppURL)
	authSvc := auth.NewService(codes, sessions, log)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log, healthProbes...))

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(sessions))
		r.Use(auth.CurrentUser())
		r.Mount("/manager", manager.Router())
		r.Mount("/", authSvc.Handle())
	})

	var serverCfg httpserver.Config
	config.MustLoad(&serverCfg)
	srv := httpserver.NewFromConfig(serverCfg, httpserver.WithLogger(log))

	if err := srv.Run(ctx, r); err != nil {
		log.ErrorContext(ctx, "server stopped with error", logger.Error(err))
		os.Exit(1)
	}
}

// newMailer returns the Postmark sender when tokens are configured and
// falls back to writing mails to disk for local development.
func newMailer(cfg appConfig, log *slog.Logger) email.EmailSender {
	var mailCfg email.Config
	if err := config.Load(&mailCfg); err == nil && mailCfg.PostmarkServerToken != "" {
		return email.MustNewPostmarkClient(mailCfg)
	}

	log.Warn("postmark not configured, writing mails to disk", "dir", cfg.DevMailDir)
	return email.NewDevSender(cfg.DevMailDir)
}
