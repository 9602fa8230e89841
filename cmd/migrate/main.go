// Command migrate applies the SQL migrations to the configured database.
package main

import (
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"

	"example.com/runtracker/internal/config"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "runtracker-migrate").Logger()

	down := flag.Bool("down", false, "roll back all migrations instead of applying them")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	m, err := migrate.New("file://"+cfg.MigrationsPath, migrateDSN(cfg.DatabaseURL))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialise migrations")
	}
	defer m.Close()

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info().Msg("no migrations to apply")
			return
		}
		logger.Fatal().Err(err).Msg("migration failed")
	}

	logger.Info().Msg("migrations applied")
}

// migrateDSN rewrites the connection URL onto the pgx/v5 migrate driver
// scheme.
func migrateDSN(databaseURL string) string {
	if scheme, rest, ok := strings.Cut(databaseURL, "://"); ok && (scheme == "postgres" || scheme == "postgresql") {
		return "pgx5://" + rest
	}
	return databaseURL
}
