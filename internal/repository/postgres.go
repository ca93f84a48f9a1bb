package repository

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"braindump-service/internal/models"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresGateway stores brain dumps in PostgreSQL
type PostgresGateway struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresGateway connects to the database and runs pending migrations.
func NewPostgresGateway(ctx context.Context, dataSourceName string, logger *zap.Logger) (*PostgresGateway, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := MigratePostgres(db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Successfully connected to the database!")
	return &PostgresGateway{db: db, logger: logger}, nil
}

// MigratePostgres applies the embedded migrations.
func MigratePostgres(db *sqlx.DB, logger *zap.Logger) error {
	driver, err := postgres.WithInstance(db.DB, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("couldn't get database instance for running migrations: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("couldn't open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "braindump", driver)
	if err != nil {
		return fmt.Errorf("couldn't create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("couldn't run database migration: %w", err)
	}

	logger.Info("Database migration was run successfully")
	return nil
}

func (g *PostgresGateway) InsertAuditRecord(ctx context.Context, audit *models.BrainDumpAudit) error {
	defer observe("insert", "brain_dumps", time.Now())

	processed, err := json.Marshal(audit.ProcessedData)
	if err != nil {
		return fmt.Errorf("failed to encode processed data: %w", err)
	}

	query := `
		INSERT INTO brain_dumps (user_id, raw_text, processed_data)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err = g.db.QueryRowContext(ctx, query, audit.UserID, audit.RawText, processed).
		Scan(&audit.ID, &audit.CreatedAt)
	if err != nil {
		g.logger.Error("Failed to create brain dump", zap.String("user_id", audit.UserID), zap.Error(err))
		return err
	}

	return nil
}

func (g *PostgresGateway) InsertTasks(ctx context.Context, tasks []models.PersistedTask) error {
	if len(tasks) == 0 {
		return nil
	}
	defer observe("insert", "tasks", time.Now())

	query := `
		INSERT INTO tasks (user_id, text, completed, priority, due_date, subject)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return g.inTx(ctx, func(tx *sqlx.Tx) error {
		for i := range tasks {
			t := &tasks[i]
			err := tx.QueryRowxContext(ctx, query,
				t.UserID, t.Text, t.Completed, string(t.Priority), t.DueDate, t.Subject,
			).Scan(&t.ID, &t.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to save task: %w", err)
			}
		}
		return nil
	})
}

func (g *PostgresGateway) InsertNotes(ctx context.Context, notes []models.PersistedNote) error {
	if len(notes) == 0 {
		return nil
	}
	defer observe("insert", "notes", time.Now())

	query := `
		INSERT INTO notes (user_id, title, content, subject, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return g.inTx(ctx, func(tx *sqlx.Tx) error {
		for i := range notes {
			n := &notes[i]
			err := tx.QueryRowxContext(ctx, query,
				n.UserID, n.Title, n.Content, n.Subject, pq.Array(nonNilTags(n.Tags)),
			).Scan(&n.ID, &n.CreatedAt)
			if err != nil {
				return fmt.Errorf("failed to save note: %w", err)
			}
		}
		return nil
	})
}

type auditRow struct {
	ID            int64     `db:"id"`
	UserID        string    `db:"user_id"`
	RawText       string    `db:"raw_text"`
	ProcessedData []byte    `db:"processed_data"`
	CreatedAt     time.Time `db:"created_at"`
}

func (g *PostgresGateway) ListAudits(ctx context.Context, userID string, limit int) ([]models.BrainDumpAudit, error) {
	defer observe("select", "brain_dumps", time.Now())

	var rows []auditRow
	query := `
		SELECT id, user_id, raw_text, processed_data, created_at
		FROM brain_dumps
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	if err := g.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		g.logger.Error("Failed to list brain dumps", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	audits := make([]models.BrainDumpAudit, 0, len(rows))
	for _, row := range rows {
		a := models.BrainDumpAudit{
			ID:        row.ID,
			UserID:    row.UserID,
			RawText:   row.RawText,
			CreatedAt: row.CreatedAt,
		}
		if err := json.Unmarshal(row.ProcessedData, &a.ProcessedData); err != nil {
			g.logger.Error("Failed to decode processed data", zap.Int64("id", row.ID), zap.Error(err))
			continue
		}
		audits = append(audits, a)
	}

	return audits, nil
}

func (g *PostgresGateway) GetStats(ctx context.Context, userID string) (*models.UserStats, error) {
	defer observe("count", "all", time.Now())

	stats := &models.UserStats{UserID: userID}
	query := `
		SELECT
			(SELECT COUNT(*) FROM brain_dumps WHERE user_id = $1) AS brain_dumps,
			(SELECT COUNT(*) FROM tasks WHERE user_id = $1) AS tasks,
			(SELECT COUNT(*) FROM notes WHERE user_id = $1) AS notes
	`
	err := g.db.QueryRowxContext(ctx, query, userID).Scan(&stats.BrainDumps, &stats.Tasks, &stats.Notes)
	if err != nil {
		g.logger.Error("Failed to get user stats", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return stats, nil
}

func (g *PostgresGateway) Close() error {
	return g.db.Close()
}

func (g *PostgresGateway) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := g.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
