package history

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	_ "modernc.org/sqlite"

	"github.com/hermitcli/hermit/pkg/domain/model"
	"github.com/hermitcli/hermit/pkg/domain/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	owner TEXT NOT NULL,
	repo TEXT NOT NULL,
	tag TEXT NOT NULL,
	commit_sha TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_legs (
	run_id TEXT NOT NULL REFERENCES runs(id),
	triple TEXT NOT NULL,
	status TEXT NOT NULL,
	archive TEXT NOT NULL DEFAULT '',
	error TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (run_id, triple)
);
`

// Store keeps an audit log of pipeline runs in a local SQLite database.
// Recording is best-effort from the pipeline's point of view: a failed
// write never fails a run.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the per-user history database location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve user config directory")
	}
	return filepath.Join(dir, types.AppName, "history.db"), nil
}

// Open opens the history database, creating it and its schema if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create history directory", goerr.V("path", path))
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open history database", goerr.V("path", path))
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to apply history schema")
	}
	return &Store{db: db}, nil
}

// SaveRun records a finished pipeline run with its matrix legs.
func (s *Store) SaveRun(ctx context.Context, run *model.PipelineRun) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin history transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, owner, repo, tag, commit_sha, status, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Owner, run.Repo, run.Tag, run.CommitSHA, string(run.Status),
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(),
	); err != nil {
		return goerr.Wrap(err, "failed to insert run", goerr.V("run_id", run.ID))
	}

	for _, leg := range run.Legs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_legs (run_id, triple, status, archive, error, duration_ms)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, leg.Target.Triple, string(leg.Status), leg.ArchiveName, leg.Error,
			leg.Duration.Milliseconds(),
		); err != nil {
			return goerr.Wrap(err, "failed to insert run leg",
				goerr.V("run_id", run.ID), goerr.V("triple", leg.Target.Triple))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit history transaction")
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*model.PipelineRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner, repo, tag, commit_sha, status, started_at, finished_at
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query runs")
	}
	defer rows.Close()

	var runs []*model.PipelineRun
	for rows.Next() {
		var run model.PipelineRun
		var status string
		var started, finished int64
		if err := rows.Scan(&run.ID, &run.Owner, &run.Repo, &run.Tag, &run.CommitSHA,
			&status, &started, &finished); err != nil {
			return nil, goerr.Wrap(err, "failed to scan run row")
		}
		run.Status = model.RunStatus(status)
		run.StartedAt = time.UnixMilli(started)
		run.FinishedAt = time.UnixMilli(finished)
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate run rows")
	}

	for _, run := range runs {
		legs, err := s.listLegs(ctx, run.ID)
		if err != nil {
			return nil, err
		}
		run.Legs = legs
	}
	return runs, nil
}

func (s *Store) listLegs(ctx context.Context, runID string) ([]model.LegResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT triple, status, archive, error, duration_ms
		 FROM run_legs WHERE run_id = ? ORDER BY triple`, runID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query run legs", goerr.V("run_id", runID))
	}
	defer rows.Close()

	var legs []model.LegResult
	for rows.Next() {
		var leg model.LegResult
		var triple, status string
		var durationMS int64
		if err := rows.Scan(&triple, &status, &leg.ArchiveName, &leg.Error, &durationMS); err != nil {
			return nil, goerr.Wrap(err, "failed to scan run leg row")
		}
		if target, ok := model.TargetByTriple(triple); ok {
			leg.Target = target
		} else {
			leg.Target = model.Target{Triple: triple}
		}
		leg.Status = model.RunStatus(status)
		leg.Duration = time.Duration(durationMS) * time.Millisecond
		legs = append(legs, leg)
	}
	return legs, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
