// Package jobs runs the periodic work of a serving agent: checkpointing
// the learning state and refreshing the Selic rate.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/malu-oliver/agent-financeiro/internal/content"
	"github.com/malu-oliver/agent-financeiro/internal/metrics"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/store"
)

// snapshotVersion is bumped when SnapshotData changes incompatibly.
const snapshotVersion = 1

// Checkpointer saves and restores the in-memory learning state.
type Checkpointer struct {
	Engine    *profiling.Engine
	Generator *content.Generator
	Snapshots store.SnapshotRepo
	Events    store.EventRepo
	Metrics   *metrics.Metrics
	// Keep is how many snapshots survive a prune. Zero keeps all.
	Keep   int
	Logger *slog.Logger
}

func (c *Checkpointer) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// Checkpoint stores the current learning state as a new snapshot.
func (c *Checkpointer) Checkpoint(ctx context.Context) (err error) {
	defer func() { c.Metrics.ObserveCheckpoint(err) }()

	data, err := c.encode()
	if err != nil {
		return err
	}
	var seq int64
	if c.Events != nil {
		if seq, err = c.Events.LastSequence(ctx); err != nil {
			return fmt.Errorf("last sequence: %w", err)
		}
	}
	snap := &store.Snapshot{Sequence: seq, Data: data}
	if err := c.Snapshots.Save(ctx, snap); err != nil {
		return err
	}
	if c.Keep > 0 {
		if err := c.Snapshots.Prune(ctx, c.Keep); err != nil {
			return err
		}
	}
	c.logger().Debug("checkpoint saved", "snapshot_id", snap.ID, "sequence", seq,
		"users", len(data.Histories), "interactions", len(data.Interactions))
	return nil
}

func (c *Checkpointer) encode() (store.SnapshotData, error) {
	st := c.Engine.Export()
	data := store.SnapshotData{
		Version:       snapshotVersion,
		Effectiveness: st.Effectiveness,
		Histories:     make(map[string]json.RawMessage, len(st.Histories)),
	}
	for id, h := range st.Histories {
		raw, err := json.Marshal(h)
		if err != nil {
			return data, fmt.Errorf("encode history of %s: %w", id, err)
		}
		data.Histories[id] = raw
	}
	if c.Generator != nil {
		ics := c.Generator.Export()
		data.Interactions = make(map[string]json.RawMessage, len(ics))
		for id, ic := range ics {
			raw, err := json.Marshal(ic)
			if err != nil {
				return data, fmt.Errorf("encode interaction of %s: %w", id, err)
			}
			data.Interactions[id] = raw
		}
	}
	return data, nil
}

// Restore loads the newest snapshot into the engine and the generator.
// It reports false when there is nothing to restore.
func (c *Checkpointer) Restore(ctx context.Context) (bool, error) {
	snap, err := c.Snapshots.Latest(ctx)
	if err != nil {
		return false, err
	}
	if snap == nil {
		return false, nil
	}
	if snap.Data.Version != snapshotVersion {
		return false, fmt.Errorf("snapshot %d has version %d, want %d", snap.ID, snap.Data.Version, snapshotVersion)
	}

	st := profiling.State{
		Effectiveness: snap.Data.Effectiveness,
		Histories:     make(map[string][]profiling.Record, len(snap.Data.Histories)),
	}
	for id, raw := range snap.Data.Histories {
		var h []profiling.Record
		if err := json.Unmarshal(raw, &h); err != nil {
			return false, fmt.Errorf("decode history of %s: %w", id, err)
		}
		st.Histories[id] = h
	}
	c.Engine.Restore(st)

	if c.Generator != nil {
		ics := make(map[string]content.Interaction, len(snap.Data.Interactions))
		for id, raw := range snap.Data.Interactions {
			var ic content.Interaction
			if err := json.Unmarshal(raw, &ic); err != nil {
				return false, fmt.Errorf("decode interaction of %s: %w", id, err)
			}
			ics[id] = ic
		}
		c.Generator.Restore(ics)
	}

	c.logger().Info("learning state restored", "snapshot_id", snap.ID,
		"users", len(st.Histories), "taken_at", snap.Timestamp)
	return true, nil
}
