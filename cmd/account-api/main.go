package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/account-api/internal/config"
	"github.com/vasapolrittideah/account-api/internal/handler"
	"github.com/vasapolrittideah/account-api/internal/middleware"
	"github.com/vasapolrittideah/account-api/internal/repository"
	"github.com/vasapolrittideah/account-api/internal/usecase"
	"github.com/vasapolrittideah/account-api/shared/auth"
	"github.com/vasapolrittideah/account-api/shared/mailer"
	"github.com/vasapolrittideah/account-api/shared/security"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.NewConfig(&logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from MongoDB")
		}
	}()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping MongoDB")
	}

	db := client.Database(cfg.Mongo.Database)

	accountRepo := repository.NewAccountMongoRepository(ctx, &logger, db)

	tokenService := auth.NewTokenService(auth.TokenConfig{
		AccessTokenSecret:  cfg.Token.AccessTokenSecret,
		RefreshTokenSecret: cfg.Token.RefreshTokenSecret,
		AccessTokenTTL:     cfg.Token.AccessTokenExpiresIn,
		RefreshTokenTTL:    cfg.Token.RefreshTokenExpiresIn,
		Issuer:             cfg.Token.Issuer,
		Audience:           cfg.Token.Audience,
	})

	hasher := security.NewHasher(security.HasherParams{
		TimeCost:    cfg.Hash.TimeCost,
		MemoryCost:  cfg.Hash.MemoryCost,
		Parallelism: cfg.Hash.Parallelism,
	})

	notifier := mailer.NewEmailNotifier(mailer.NewMailer(&logger), mailer.NotifierConfig{
		VerificationBaseURL:  cfg.App.VerificationURL,
		PasswordResetBaseURL: cfg.App.PasswordResetURL,
		VerificationTokenTTL: cfg.Token.VerificationTokenExpiresIn,
		PasswordResetTTL:     cfg.Token.PasswordResetTokenExpiresIn,
	}, &logger)

	authUsecase := usecase.NewAuthUsecase(accountRepo, tokenService, hasher, notifier, cfg, &logger)
	verificationUsecase := usecase.NewVerificationUsecase(accountRepo, notifier, cfg, &logger)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(accountRepo, hasher, notifier, cfg, &logger)
	lifecycleUsecase := usecase.NewLifecycleUsecase(accountRepo, &logger)

	guard := middleware.NewGuard(tokenService, accountRepo, &logger)
	validator := handler.NewValidator(&logger)

	authHandler := handler.NewAuthHandler(
		authUsecase,
		verificationUsecase,
		passwordResetUsecase,
		validator,
		cfg,
		&logger,
	)
	accountHandler := handler.NewAccountHandler(lifecycleUsecase, validator, &logger)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(&logger))
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authHandler.RegisterRoutes(router, guard)
	accountHandler.RegisterRoutes(router, guard)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("starting HTTP server")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down HTTP server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shut down HTTP server gracefully")
	}
}
