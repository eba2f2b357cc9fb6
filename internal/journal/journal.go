// Package journal keeps a SQLite history of backup runs.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// fixed width so that started_at sorts chronologically as text
const tsLayout = "2006-01-02T15:04:05.000000000Z"

// Journal stores Runs in a SQLite database.
type Journal struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open opens (creating if needed) the journal at path and migrates it.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	// one writer; the worker is the only producer
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	insert, err := db.Prepare(`
		INSERT INTO runs (id, started_at, finished_at, category, status, reason, archive, entries, bytes, pruned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}

	return &Journal{db: db, insert: insert}, nil
}

// Record stores r, assigning an ID when it has none.
func (j *Journal) Record(ctx context.Context, r Run) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	_, err := j.insert.ExecContext(ctx,
		r.ID,
		r.StartedAt.UTC().Format(tsLayout),
		r.FinishedAt.UTC().Format(tsLayout),
		r.Category,
		string(r.Status),
		r.Reason,
		r.Archive,
		r.Entries,
		r.Bytes,
		r.Pruned,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, category, status, reason, archive, entries, bytes, pruned
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
			status            string
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Category, &status, &r.Reason, &r.Archive, &r.Entries, &r.Bytes, &r.Pruned); err != nil {
			return nil, err
		}
		r.Status = Status(status)
		if r.StartedAt, err = time.Parse(tsLayout, started); err != nil {
			return nil, fmt.Errorf("parse started_at: %w", err)
		}
		if r.FinishedAt, err = time.Parse(tsLayout, finished); err != nil {
			return nil, fmt.Errorf("parse finished_at: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// Close releases the database.
func (j *Journal) Close() error {
	j.insert.Close()
	return j.db.Close()
}
