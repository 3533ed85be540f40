package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type trialRepo struct {
	db *sql.DB
}

var trialColumns = []string{
	"id", "run_id", "created_at", "source", "model",
	"temperature", "samples", "accuracy", "metrics",
}

func (r *trialRepo) Save(ctx context.Context, t *Trial) error {
	if t.RunID == uuid.Nil {
		t.RunID = uuid.New()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	metrics := t.Metrics
	if len(metrics) == 0 {
		metrics = json.RawMessage("{}")
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(trialsTable).
		Columns(trialColumns[1:]...).
		Values(
			t.RunID.String(),
			t.CreatedAt,
			t.Source,
			t.Model,
			t.Temperature,
			t.Samples,
			t.Accuracy,
			string(metrics),
		).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save trial: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("trial id: %w", err)
	}
	t.ID = int(id)
	return nil
}

func (r *trialRepo) List(ctx context.Context, opts QueryOpts) ([]Trial, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(trialColumns...).
		From(entsql.Table(trialsTable)).
		OrderBy(entsql.Desc("id"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query trials: %w", err)
	}
	defer rows.Close()

	var trials []Trial
	for rows.Next() {
		var (
			t       Trial
			runID   string
			metrics string
		)
		err := rows.Scan(&t.ID, &runID, &t.CreatedAt, &t.Source, &t.Model,
			&t.Temperature, &t.Samples, &t.Accuracy, &metrics)
		if err != nil {
			return nil, fmt.Errorf("scan trial: %w", err)
		}
		if t.RunID, err = uuid.Parse(runID); err != nil {
			return nil, fmt.Errorf("trial %d: run id: %w", t.ID, err)
		}
		t.Metrics = json.RawMessage(metrics)
		trials = append(trials, t)
	}
	return trials, rows.Err()
}
