package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"braindump-service/internal/models"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteGateway stores brain dumps in a local SQLite file
type SQLiteGateway struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// NewSQLiteGateway opens the database file and creates missing tables
func NewSQLiteGateway(ctx context.Context, dbPath string, logger *zap.Logger) (*SQLiteGateway, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// concurrent group inserts would otherwise hit SQLITE_BUSY
	db.SetMaxOpenConns(1)

	g := &SQLiteGateway{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}

	if err := g.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("SQLite gateway initialized", zap.String("db_path", dbPath))

	return g, nil
}

func (g *SQLiteGateway) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS brain_dumps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		raw_text TEXT NOT NULL,
		processed_data TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_brain_dumps_user ON brain_dumps(user_id, created_at);

	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		text TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT 0,
		priority TEXT NOT NULL,
		due_date TEXT,
		subject TEXT,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_id);

	CREATE TABLE IF NOT EXISTS notes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		subject TEXT,
		tags TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notes_user ON notes(user_id);
	`

	_, err := g.db.ExecContext(ctx, schema)
	return err
}

// InsertAuditRecord saves the raw text and the result it produced
func (g *SQLiteGateway) InsertAuditRecord(ctx context.Context, audit *models.BrainDumpAudit) error {
	defer observe("insert", "brain_dumps", time.Now())

	processed, err := json.Marshal(audit.ProcessedData)
	if err != nil {
		return fmt.Errorf("failed to encode processed data: %w", err)
	}

	createdAt := g.now()
	result, err := g.db.ExecContext(ctx,
		`INSERT INTO brain_dumps (user_id, raw_text, processed_data, created_at) VALUES (?, ?, ?, ?)`,
		audit.UserID, audit.RawText, string(processed), createdAt)
	if err != nil {
		return fmt.Errorf("failed to save brain dump: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	audit.ID = id
	audit.CreatedAt = createdAt
	return nil
}

// InsertTasks saves all tasks of one submission in a single transaction
func (g *SQLiteGateway) InsertTasks(ctx context.Context, tasks []models.PersistedTask) error {
	if len(tasks) == 0 {
		return nil
	}
	defer observe("insert", "tasks", time.Now())

	createdAt := g.now()
	return g.inTx(ctx, func(tx *sql.Tx) error {
		for i := range tasks {
			t := &tasks[i]
			result, err := tx.ExecContext(ctx, `
				INSERT INTO tasks (user_id, text, completed, priority, due_date, subject, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				t.UserID, t.Text, t.Completed, string(t.Priority), t.DueDate, t.Subject, createdAt)
			if err != nil {
				return fmt.Errorf("failed to save task: %w", err)
			}
			if t.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get last insert id: %w", err)
			}
			t.CreatedAt = createdAt
		}
		return nil
	})
}

// InsertNotes saves all notes of one submission in a single transaction
func (g *SQLiteGateway) InsertNotes(ctx context.Context, notes []models.PersistedNote) error {
	if len(notes) == 0 {
		return nil
	}
	defer observe("insert", "notes", time.Now())

	createdAt := g.now()
	return g.inTx(ctx, func(tx *sql.Tx) error {
		for i := range notes {
			n := &notes[i]
			tags, err := json.Marshal(nonNilTags(n.Tags))
			if err != nil {
				return fmt.Errorf("failed to encode tags: %w", err)
			}
			result, err := tx.ExecContext(ctx, `
				INSERT INTO notes (user_id, title, content, subject, tags, created_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				n.UserID, n.Title, n.Content, n.Subject, string(tags), createdAt)
			if err != nil {
				return fmt.Errorf("failed to save note: %w", err)
			}
			if n.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get last insert id: %w", err)
			}
			n.CreatedAt = createdAt
		}
		return nil
	})
}

// ListAudits returns up to limit audit records of the user, newest first
func (g *SQLiteGateway) ListAudits(ctx context.Context, userID string, limit int) ([]models.BrainDumpAudit, error) {
	defer observe("select", "brain_dumps", time.Now())

	rows, err := g.db.QueryContext(ctx, `
		SELECT id, user_id, raw_text, processed_data, created_at
		FROM brain_dumps
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query brain dumps: %w", err)
	}
	defer rows.Close()

	audits := []models.BrainDumpAudit{}
	for rows.Next() {
		var (
			a         models.BrainDumpAudit
			processed string
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.RawText, &processed, &a.CreatedAt); err != nil {
			g.logger.Error("Failed to scan brain dump", zap.Error(err))
			continue
		}
		if err := json.Unmarshal([]byte(processed), &a.ProcessedData); err != nil {
			g.logger.Error("Failed to decode processed data", zap.Int64("id", a.ID), zap.Error(err))
			continue
		}
		audits = append(audits, a)
	}

	return audits, rows.Err()
}

// GetStats counts what has been stored for the user
func (g *SQLiteGateway) GetStats(ctx context.Context, userID string) (*models.UserStats, error) {
	defer observe("count", "all", time.Now())

	stats := &models.UserStats{UserID: userID}
	counts := []struct {
		table string
		dst   *int
	}{
		{"brain_dumps", &stats.BrainDumps},
		{"tasks", &stats.Tasks},
		{"notes", &stats.Notes},
	}
	for _, c := range counts {
		query := "SELECT COUNT(*) FROM " + c.table + " WHERE user_id = ?"
		if err := g.db.QueryRowContext(ctx, query, userID).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}

	return stats, nil
}

// Close closes the database connection
func (g *SQLiteGateway) Close() error {
	return g.db.Close()
}

func (g *SQLiteGateway) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
