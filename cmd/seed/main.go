package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"compassevent/config"
	"compassevent/internal/adapters/auth"
	"compassevent/internal/app"
	"compassevent/internal/domain"
	"compassevent/internal/services"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := config.NewLogger(cfg.Environment, cfg.Server.LogLevel)

	seed := cfg.Seed
	if seed.DefaultUserName == "" || seed.DefaultUserEmail == "" || seed.DefaultUserPassword == "" {
		return fmt.Errorf("DEFAULT_USER_NAME, DEFAULT_USER_EMAIL and DEFAULT_USER_PASSWORD are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := app.OpenRepositories(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer repos.Close()

	// The admin is created confirmed and without an image, so no uploader or mailer is needed.
	userService := services.NewUserService(repos.Users, auth.NewBcryptHasher(cfg.Auth.BcryptCost), nil, nil, logger, cfg.Server.RequestTimeout)

	existing, err := userService.FindByEmail(ctx, seed.DefaultUserEmail)
	if err != nil {
		return fmt.Errorf("failed to look up default user: %w", err)
	}
	if existing != nil {
		logger.Info("default user already exists", "email", seed.DefaultUserEmail)
		return nil
	}

	user, err := userService.CreateWithoutImage(ctx, domain.CreateUserInput{
		Name:     seed.DefaultUserName,
		Email:    seed.DefaultUserEmail,
		Password: seed.DefaultUserPassword,
		Phone:    seed.DefaultUserPhone,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("failed to create default user: %w", err)
	}
	logger.Info("default user created", "id", user.ID, "email", user.Email)
	return nil
}
