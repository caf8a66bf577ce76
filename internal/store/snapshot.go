package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// snapshotRepo implements SnapshotRepo with ent's SQL builder.
type snapshotRepo struct {
	db *sql.DB
}

func (r *snapshotRepo) Save(ctx context.Context, snap *Snapshot) error {
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("marshal snapshot data: %w", err)
	}
	ts := snap.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query, args := builder().Insert(snapshotsTable).
		Columns("sequence", "timestamp", "data").
		Values(snap.Sequence, ts.UTC(), string(data)).
		Returning("id").
		Query()
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&snap.ID); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *snapshotRepo) Latest(ctx context.Context) (*Snapshot, error) {
	b := builder()
	query, args := b.Select("id", "sequence", "timestamp", "data").
		From(b.Table(snapshotsTable)).
		OrderBy(entsql.Desc("timestamp"), entsql.Desc("id")).
		Limit(1).
		Query()

	var s Snapshot
	var raw []byte
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.Sequence, &s.Timestamp, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	if err := json.Unmarshal(raw, &s.Data); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot data: %w", err)
	}
	return &s, nil
}

func (r *snapshotRepo) Prune(ctx context.Context, keep int) error {
	// Collect the IDs of the newest keep snapshots; everything else goes.
	b := builder()
	query, args := b.Select("id").
		From(b.Table(snapshotsTable)).
		OrderBy(entsql.Desc("timestamp"), entsql.Desc("id")).
		Limit(max(keep, 0)).
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}
	var ids []any
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan snapshot id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("query snapshots for prune: %w", err)
	}

	query, args = builder().Delete(snapshotsTable).Where(entsql.NotIn("id", ids...)).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune snapshots: %w", err)
	}
	return nil
}
