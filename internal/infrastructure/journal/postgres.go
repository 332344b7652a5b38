// Package journal records processed submissions in Postgres so re-delivered
// issues are skipped instead of creating duplicate events.
package journal

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq" // postgres driver

	"IncidentIngest/internal/domain"
	"IncidentIngest/internal/ports"
)

// PostgresJournal persists run records into Postgres.
type PostgresJournal struct {
	db *sql.DB
}

var _ ports.Journal = (*PostgresJournal)(nil)

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Open connects to Postgres with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	return db, nil
}

// New wires a sql.DB implementation.
func New(db *sql.DB) *PostgresJournal {
	return &PostgresJournal{db: db}
}

// AlreadyProcessed reports whether a successful run for the issue exists.
func (j *PostgresJournal) AlreadyProcessed(ctx context.Context, issueNumber int) (bool, error) {
	if j.db == nil {
		return false, nil
	}

	query, args, err := builder.
		Select("1").
		From("processed_submissions").
		Where(sq.Eq{"issue_number": issueNumber, "status": string(domain.RunSucceeded)}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	switch err := j.db.QueryRowContext(ctx, query, args...).Scan(&one); err {
	case nil:
		return true, nil
	case sql.ErrNoRows:
		return false, nil
	default:
		return false, fmt.Errorf("query processed: %w", err)
	}
}

// RecordRun upserts the run outcome for an issue.
func (j *PostgresJournal) RecordRun(ctx context.Context, record domain.RunRecord) error {
	if j.db == nil {
		return nil
	}

	query, args, err := builder.
		Insert("processed_submissions").
		Columns("run_id", "issue_number", "event_id", "event_type", "status", "detail").
		Values(record.RunID, record.IssueNumber, record.EventID, record.EventType, string(record.Status), record.Detail).
		Suffix(`ON CONFLICT (issue_number) DO UPDATE
                SET run_id = EXCLUDED.run_id,
                    event_id = EXCLUDED.event_id,
                    status = EXCLUDED.status,
                    detail = EXCLUDED.detail,
                    updated_at = NOW()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := j.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}

	return nil
}
