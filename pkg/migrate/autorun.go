package migrate

import (
	"context"
	"database/sql"

	"github.com/pizzaro/pizzaro-backend/pkg/config"
	"github.com/pizzaro/pizzaro-backend/pkg/logger"
)

// MaybeRunDev applies pending migrations at startup when running in dev with
// PIZZARO_AUTO_MIGRATE enabled. Production deployments run cmd/migrate explicitly.
func MaybeRunDev(ctx context.Context, cfg *config.Config, db *sql.DB, log *logger.Logger) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !cfg.App.IsDev() || !cfg.App.AutoMigrate {
		return nil
	}

	ctx = log.WithField(ctx, "dir", DefaultDir)
	log.Info(ctx, "running dev auto-migration")

	if err := Run(ctx, db, DefaultDir, "up"); err != nil {
		return err
	}

	log.Info(ctx, "dev auto-migration complete")
	return nil
}
