package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/retail-lens/backend/internal/storage/models"
	"github.com/retail-lens/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	logger.Info("history store initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		endpoint TEXT NOT NULL,
		filename TEXT,
		rows_kept INTEGER NOT NULL DEFAULT 0,
		rows_dropped INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_endpoint ON analysis_runs(endpoint);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON analysis_runs(created_at);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (c *Client) InsertRun(run *models.AnalysisRun) error {
	_, err := c.db.Exec(`
		INSERT INTO analysis_runs
		(id, endpoint, filename, rows_kept, rows_dropped, duration_ms, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Endpoint, run.Filename, run.RowsKept, run.RowsDropped,
		run.DurationMS, run.Status, run.Error, run.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return nil
}

func (c *Client) RecentRuns(limit int) ([]models.AnalysisRun, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := c.db.Query(`
		SELECT id, endpoint, filename, rows_kept, rows_dropped, duration_ms, status, COALESCE(error, ''), created_at
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer rows.Close()

	var runs []models.AnalysisRun
	for rows.Next() {
		var run models.AnalysisRun
		var createdAt int64
		if err := rows.Scan(&run.ID, &run.Endpoint, &run.Filename, &run.RowsKept,
			&run.RowsDropped, &run.DurationMS, &run.Status, &run.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		run.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
