package main

import (
	"context"
	"errors"

	"fintrack/internal/auth"
	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/ports"
)

// newProvider builds the identity provider over the opened repository.
// Non-persistent backends start empty, so a demo user is seeded there to
// make the credential form usable out of the box.
func newProvider(ctx context.Context, cfg *config.Config, result *backend.Result, logger *log.Logger) *auth.Provider {
	provider := auth.NewProvider(result.Repo, logger)

	if backend.Type(cfg.DataBackend) != backend.Memory {
		return provider
	}

	if _, err := provider.Register(ctx, cfg.SeedUserEmail, cfg.SeedUserSecret); err != nil {
		if !errors.Is(err, ports.ErrUserExists) {
			logger.Warn("Failed to seed demo user", log.FieldError, err, "email", cfg.SeedUserEmail)
		}
		return provider
	}

	logger.Info("Seeded demo user", "email", cfg.SeedUserEmail)
	return provider
}
