package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/contractvault/modules/twofa"
	"github.com/dmitrymomot/contractvault/modules/vault"
	"github.com/dmitrymomot/contractvault/pkg/blobstore"
	"github.com/dmitrymomot/contractvault/pkg/config"
	"github.com/dmitrymomot/contractvault/pkg/cookie"
	"github.com/dmitrymomot/contractvault/pkg/email"
	"github.com/dmitrymomot/contractvault/pkg/httpserver"
	"github.com/dmitrymomot/contractvault/pkg/httpx"
	"github.com/dmitrymomot/contractvault/pkg/logger"
	"github.com/dmitrymomot/contractvault/pkg/pg"
	"github.com/dmitrymomot/contractvault/pkg/redis"
	"github.com/dmitrymomot/contractvault/pkg/session"
	"github.com/dmitrymomot/contractvault/pkg/totp"
	"github.com/dmitrymomot/contractvault/svc/auth"
)

type appConfig struct {
	AppEnv       string `env:"APP_ENV" envDefault:"development"`
	HTTPAddr     string `env:"HTTP_ADDR" envDefault:":8080"`
	SessionStore string `env:"SESSION_STORE" envDefault:"memory"` // memory or redis
	EmailDriver  string `env:"EMAIL_DRIVER" envDefault:"dev"`     // dev or postmark
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("service exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(
		logger.WithEnvironment(appCfg.AppEnv, "contractvault"),
		logger.WithContextValue("request_id", middleware.RequestIDKey),
	)
	logger.SetAsDefault(log)

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}

	var cookieCfg cookie.Config
	config.MustLoad(&cookieCfg)
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}

	var sessionCfg session.Config
	config.MustLoad(&sessionCfg)

	sessionStore, cleanup, err := newSessionStore(ctx, appCfg, sessionCfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	sessions := session.New(
		session.WithStore(sessionStore),
		session.WithTransport(session.NewCookieTransport(cookies, sessionCfg.CookieName, sessionCfg.SecureCookies)),
		session.WithConfig(sessionCfg),
	)

	var totpCfg totp.Config
	config.MustLoad(&totpCfg)
	encKey, err := totp.EncryptionKey(totpCfg)
	if err != nil {
		return err
	}

	mailer, err := newMailer(appCfg)
	if err != nil {
		return err
	}

	var twofaCfg twofa.Config
	config.MustLoad(&twofaCfg)

	twofaSvc, err := twofa.NewService(
		twofa.NewPostgresStorage(pool), encKey, twofaCfg,
		twofa.WithMailer(mailer),
		twofa.WithLogger(log),
	)
	if err != nil {
		return err
	}

	var vaultCfg vault.Config
	config.MustLoad(&vaultCfg)
	verifier := vault.NewVerifier(cookies, vaultCfg)

	blobs, err := newBlobStorage(ctx, appCfg)
	if err != nil {
		return err
	}

	users := auth.NewRepository(pool)
	twofaHandler := twofa.NewHandler(twofaSvc, verifier, log)
	vaultHandler := vault.NewHandler(vault.NewPostgresDocumentStore(pool), blobs, vaultCfg.MaxUploadBytes, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(sessions.Middleware)

	r.Get("/health", httpserver.HealthCheckHandler(ctx, log, pg.Healthcheck(pool)))

	r.Route("/vault", func(r chi.Router) {
		r.Use(auth.RequireUser(users))
		r.Mount("/2fa", twofaHandler.Router())
		r.Route("/documents", func(r chi.Router) {
			r.Use(verifier.Guard)
			r.Mount("/", vaultHandler.Router())
		})
	})

	if appCfg.AppEnv == "development" {
		mountDevRoutes(r, users, sessions, log)
		log.Warn("development login routes are enabled")
	}

	srv := httpserver.New(
		httpserver.WithAddr(appCfg.HTTPAddr),
		httpserver.WithLogger(log),
	)
	return srv.Run(ctx, r)
}

// newSessionStore picks the session backend. Redis keeps sessions across
// restarts and instances; memory is enough for a single dev process.
func newSessionStore(ctx context.Context, appCfg appConfig, sessionCfg session.Config, log *slog.Logger) (session.Store, func(), error) {
	if appCfg.SessionStore != "redis" {
		store := session.NewMemoryStore(sessionCfg.CleanupInterval)
		return store, func() { _ = store.Close() }, nil
	}

	var redisCfg redis.Config
	config.MustLoad(&redisCfg)

	client, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return nil, nil, err
	}

	log.Info("using redis session store")
	return session.NewRedisStore(client), func() { _ = client.Close() }, nil
}

func newMailer(appCfg appConfig) (email.Sender, error) {
	var emailCfg email.Config
	config.MustLoad(&emailCfg)

	if appCfg.EmailDriver == "postmark" {
		return email.NewPostmarkSender(emailCfg)
	}
	return email.NewDevSender(emailCfg.DevOutputDir), nil
}

func newBlobStorage(ctx context.Context, appCfg appConfig) (blobstore.Storage, error) {
	var storageCfg blobstore.Config
	config.MustLoad(&storageCfg)

	if storageCfg.Driver == "s3" {
		return blobstore.NewS3Storage(ctx, storageCfg, nil)
	}
	return blobstore.NewLocalStorage(storageCfg.LocalDir)
}

// mountDevRoutes adds a passwordless login so the two-factor flow can be
// exercised without the production identity provider. Never enabled
// outside development.
func mountDevRoutes(r chi.Router, users *auth.Repository, sessions *session.Manager, log *slog.Logger) {
	r.Post("/dev/login", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Email string `json:"email"`
		}
		if err := httpx.Decode(req, &body); err != nil || body.Email == "" {
			httpx.WriteError(w, http.StatusBadRequest, "email is required")
			return
		}

		user, err := users.GetByEmail(req.Context(), body.Email)
		if errors.Is(err, auth.ErrUserNotFound) {
			user, err = users.Create(req.Context(), body.Email)
		}
		if err != nil {
			log.ErrorContext(req.Context(), "dev login failed", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, "something went wrong")
			return
		}

		if _, err := sessions.Authenticate(req.Context(), w, req, user.ID); err != nil {
			log.ErrorContext(req.Context(), "dev login failed", slog.Any("error", err))
			httpx.WriteError(w, http.StatusInternalServerError, "something went wrong")
			return
		}

		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"userId":  user.ID,
		})
	})
}
