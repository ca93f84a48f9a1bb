package repository

import (
	"context"
	"fmt"
	"time"

	"braindump-service/internal/metrics"
	"braindump-service/internal/models"

	"go.uber.org/zap"
)

// Store is a brain dump gateway plus the reads that back the dashboard.
type Store interface {
	InsertAuditRecord(ctx context.Context, audit *models.BrainDumpAudit) error
	InsertTasks(ctx context.Context, tasks []models.PersistedTask) error
	InsertNotes(ctx context.Context, notes []models.PersistedNote) error

	// ListAudits returns the newest audit records of a user first.
	ListAudits(ctx context.Context, userID string, limit int) ([]models.BrainDumpAudit, error)
	GetStats(ctx context.Context, userID string) (*models.UserStats, error)
	Close() error
}

// Config selects and locates the backing database.
type Config struct {
	Type string // sqlite or postgres
	Path string
	URL  string
}

// Open connects the configured store and brings its schema up to date.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (Store, error) {
	switch cfg.Type {
	case "", "sqlite":
		return NewSQLiteGateway(ctx, cfg.Path, logger)
	case "postgres":
		return NewPostgresGateway(ctx, cfg.URL, logger)
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}

func observe(operation, table string, start time.Time) {
	metrics.RecordDBQueryDuration(operation, table, time.Since(start))
}
