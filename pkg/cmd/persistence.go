package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/chatflow-dev/chatflow/pkg/persistence"
	"github.com/chatflow-dev/chatflow/pkg/persistence/file"
	"github.com/chatflow-dev/chatflow/pkg/persistence/postgresql"
)

// NewPersistence creates a persistence backend from the database URL.
// postgres:// and postgresql:// URLs select PostgreSQL; anything else is
// treated as a file path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) persistence.Persistence {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create postgresql persistence: %w", err))
		}

		return p
	default:
		p, err := file.NewPersistence(databaseURL)
		if err != nil {
			panic(fmt.Errorf("failed to create file persistence: %w", err))
		}

		return p
	}
}
