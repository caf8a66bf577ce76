package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo backed by SQL builders and the global
// sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

// insert assigns the next sequence and writes one event row.
func (r *eventRepo) insert(ctx context.Context, table string, columns []string, values ...any) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	query, args := builder().Insert(table).
		Columns(append([]string{"sequence", "timestamp"}, columns...)...).
		Values(append([]any{seqNum, time.Now().UTC()}, values...)...).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save %s: %w", table, err)
	}
	return nil
}

func (r *eventRepo) AppendClassification(ctx context.Context, data ClassificationEventData) error {
	return r.insert(ctx, classificationTable,
		[]string{"user_id", "goal", "self_assessment", "dominant", "score_conservador", "score_moderado", "score_agressivo", "confidence", "match_count", "fallback"},
		data.UserID, data.Goal, data.SelfAssessment, data.Dominant, data.Conservative, data.Moderate, data.Aggressive, data.Confidence, data.MatchCount, data.Fallback,
	)
}

func (r *eventRepo) AppendContent(ctx context.Context, data ContentEventData) error {
	return r.insert(ctx, contentTable,
		[]string{"user_id", "profile", "strategy", "source", "content"},
		data.UserID, data.Profile, data.Strategy, data.Source, data.Content,
	)
}

func (r *eventRepo) AppendSimulation(ctx context.Context, data SimulationEventData) error {
	var userID any
	if data.UserID != 0 {
		userID = data.UserID
	}
	return r.insert(ctx, simulationTable,
		[]string{"user_id", "profile", "initial_amount", "monthly_deposit", "years", "annual_rate", "final_value", "total_invested"},
		userID, data.Profile, data.InitialAmount, data.MonthlyDeposit, data.Years, data.AnnualRate, data.FinalValue, data.TotalInvested,
	)
}

func (r *eventRepo) AppendFeedback(ctx context.Context, data FeedbackEventData) error {
	payload, err := json.Marshal(data.Payload)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	return r.insert(ctx, feedbackTable, []string{"user_hash", "payload"}, data.UserHash, string(payload))
}

func (r *eventRepo) Classifications(ctx context.Context, userID int, opts QueryOpts) ([]ClassificationEvent, error) {
	query, args := eventQuery(classificationTable, opts, entsql.EQ("user_id", userID),
		"id", "sequence", "timestamp", "user_id", "goal", "self_assessment", "dominant",
		"score_conservador", "score_moderado", "score_agressivo", "confidence", "match_count", "fallback")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query classifications: %w", err)
	}
	defer rows.Close()

	var out []ClassificationEvent
	for rows.Next() {
		var e ClassificationEvent
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.UserID, &e.Goal, &e.SelfAssessment, &e.Dominant,
			&e.Conservative, &e.Moderate, &e.Aggressive, &e.Confidence, &e.MatchCount, &e.Fallback); err != nil {
			return nil, fmt.Errorf("scan classification: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) ContentHistory(ctx context.Context, userID int, opts QueryOpts) ([]ContentEvent, error) {
	query, args := eventQuery(contentTable, opts, entsql.EQ("user_id", userID),
		"id", "sequence", "timestamp", "user_id", "profile", "strategy", "source", "content")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query content history: %w", err)
	}
	defer rows.Close()

	var out []ContentEvent
	for rows.Next() {
		var e ContentEvent
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.UserID, &e.Profile, &e.Strategy, &e.Source, &e.Content); err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) Simulations(ctx context.Context, userID int, opts QueryOpts) ([]SimulationEvent, error) {
	query, args := eventQuery(simulationTable, opts, entsql.EQ("user_id", userID),
		"id", "sequence", "timestamp", "user_id", "profile", "initial_amount", "monthly_deposit",
		"years", "annual_rate", "final_value", "total_invested")
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query simulations: %w", err)
	}
	defer rows.Close()

	var out []SimulationEvent
	for rows.Next() {
		var e SimulationEvent
		var uid sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &uid, &e.Profile, &e.InitialAmount, &e.MonthlyDeposit,
			&e.Years, &e.AnnualRate, &e.FinalValue, &e.TotalInvested); err != nil {
			return nil, fmt.Errorf("scan simulation: %w", err)
		}
		e.UserID = int(uid.Int64)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) ProfileDistribution(ctx context.Context) (map[string]int, error) {
	b := builder()
	query, args := b.Select("profile", entsql.Count("*")).
		From(b.Table(usersTable)).
		Where(entsql.NEQ("profile", "")).
		GroupBy("profile").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query profile distribution: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var profile string
		var n int
		if err := rows.Scan(&profile, &n); err != nil {
			return nil, fmt.Errorf("scan profile distribution: %w", err)
		}
		out[profile] = n
	}
	return out, rows.Err()
}

func (r *eventRepo) LastSequence(ctx context.Context) (int64, error) {
	return r.seq.Current(ctx)
}

// eventQuery builds a newest-first select over an event table.
func eventQuery(table string, opts QueryOpts, where *entsql.Predicate, columns ...string) (string, []any) {
	b := builder()
	preds := []*entsql.Predicate{}
	if where != nil {
		preds = append(preds, where)
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}

	sel := b.Select(columns...).From(b.Table(table)).OrderBy(entsql.Desc("sequence"))
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel.Query()
}
