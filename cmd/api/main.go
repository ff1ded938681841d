package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"compassevent/config"
	_ "compassevent/docs"
	"compassevent/internal/adapters/auth"
	"compassevent/internal/adapters/email"
	"compassevent/internal/app"
	httpapi "compassevent/internal/delivery/http"
	"compassevent/internal/delivery/http/controllers"
	"compassevent/internal/services"
)

// @title           Compass Event API
// @version         1.0
// @description     Event registration backend: users, events and registrations.

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment, cfg.Server.LogLevel)
	slog.SetDefault(logger)
	logger.Info("starting application",
		"env", cfg.Environment,
		"port", cfg.Server.Port,
		"store", cfg.Store.Driver,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := app.OpenRepositories(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer repos.Close()

	uploader, err := app.NewUploader(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize uploader: %w", err)
	}
	mailer, err := app.NewMailer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}

	timeout := cfg.Server.RequestTimeout
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewJWT(cfg.Auth.JWTSecret)

	emailService := services.NewEmailService(mailer,
		email.NewTemplateRenderer(),
		email.NewCalendarBuilder(cfg.Email.FrontendURL),
		cfg.Email.FrontendURL,
		logger,
	)
	userService := services.NewUserService(repos.Users, hasher, uploader, emailService, logger, timeout)
	eventService := services.NewEventService(repos.Events, userService, uploader, emailService, logger, timeout)
	registrationService := services.NewRegistrationService(repos.Registrations, eventService, userService, emailService, logger, timeout)
	authService := services.NewAuthService(userService, hasher, tokens, cfg.Auth.JWTExpiresIn)
	accessService := services.NewAccessService(repos.Users)

	handler := httpapi.NewRouter(httpapi.Controllers{
		Auth:         controllers.NewAuthController(logger, authService),
		User:         controllers.NewUserController(logger, userService, cfg.Server.MaxUploadBytes),
		Event:        controllers.NewEventController(logger, eventService, cfg.Server.MaxUploadBytes),
		Registration: controllers.NewRegistrationController(logger, registrationService),
	}, httpapi.RouterConfig{
		Verifier:       tokens,
		Access:         accessService,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exited properly")
	return nil
}
