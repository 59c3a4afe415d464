package main

import (
	"context"
	"fmt"

	"github.com/expotoworld/programs-service/internal/db"
	"github.com/expotoworld/programs-service/internal/logging"
	"github.com/expotoworld/programs-service/internal/service"
)

// openStore connects to PostgreSQL when it is configured and fails if it cannot
// be reached. The in-memory store is used only when no database is configured.
func openStore(ctx context.Context, cfg db.Config) (service.Store, func(), error) {
	if !cfg.Configured() {
		logging.LogKV("warn", "no database configured, using in-memory store", nil)
		return db.NewMemoryStore(), func() {}, nil
	}
	database, err := db.NewDatabaseWithRetry(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := database.InitSchema(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to initialise schema: %w", err)
	}
	return database, database.Close, nil
}
