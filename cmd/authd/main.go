package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth_service/internal/auth"
	"auth_service/internal/config"
	"auth_service/internal/http_server/handlers/forgotpassword"
	"auth_service/internal/http_server/handlers/googleauth"
	"auth_service/internal/http_server/handlers/login"
	"auth_service/internal/http_server/handlers/me"
	"auth_service/internal/http_server/handlers/register"
	"auth_service/internal/http_server/handlers/resetpassword"
	"auth_service/internal/http_server/handlers/verify"
	jwtlib "auth_service/internal/lib/jwt"
	"auth_service/internal/middleware/authn"
	"auth_service/internal/oauth"
	"auth_service/internal/rabbitmq"
	"auth_service/internal/storage/postgres"
	_ "auth_service/migrations"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad("./config/config.yaml")

	log := setupLogger(cfg.Env)

	log.Info("starting auth service", slog.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Info("Shutdown signal received")
		cancel()
	}()

	if err := runMigrations(cfg); err != nil {
		log.Error("failed to run migrations", slog.String("err", err.Error()))
		os.Exit(1)
	}

	storage, err := postgres.New(ctx, cfg)
	if err != nil {
		log.Error("failed to connect postgres", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer storage.Close()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer msgBroker.Close()

	tokens := jwtlib.NewIssuer(cfg.Tokens.SessionTokenKey, cfg.Tokens.SessionTokenTTL)

	authService := auth.New(
		log,
		storage,
		storage,
		storage,
		msgBroker,
		tokens,
		cfg.Tokens.ResetTokenTTL,
		cfg.FrontendURL,
	)

	googleClient := oauth.NewGoogle(cfg.Google)

	router := setupRouter(log, authService, googleClient, tokens, storage, cfg.FrontendURL)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", slog.String("err", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", slog.String("err", err.Error()))
	} else {
		log.Info("Server stopped gracefully")
	}

	log.Info("Main service stopped")
}

func setupRouter(
	log *slog.Logger,
	authService *auth.Auth,
	googleClient *oauth.Google,
	tokens *jwtlib.Issuer,
	storage *postgres.PostgresRepo,
	frontendURL string,
) *chi.Mux {
	validate := validator.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/register",
		register.New(log, validate, authService),
	)
	r.Post("/login",
		login.New(log, validate, authService),
	)
	r.Post("/forgot-password",
		forgotpassword.New(log, validate, authService),
	)
	r.Put("/reset-password/{token}",
		resetpassword.New(log, validate, authService),
	)
	r.Get("/verify-email/{token}",
		verify.New(log, authService),
	)

	r.Get("/auth/google",
		googleauth.NewLogin(log, googleClient),
	)
	r.Get("/auth/google/callback",
		googleauth.NewCallback(log, googleClient, authService, frontendURL),
	)

	r.Group(func(r chi.Router) {
		r.Use(authn.New(log, tokens, storage))

		r.Get("/me", me.New(log))
	})

	return r
}

func runMigrations(cfg *config.Config) error {
	db, err := sql.Open("pgx", postgres.DSN(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.Up(db, "migrations")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
