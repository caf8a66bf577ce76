package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malu-oliver/agent-financeiro/internal/content"
	"github.com/malu-oliver/agent-financeiro/internal/metrics"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func newCheckpointer(st *store.Store) *Checkpointer {
	return &Checkpointer{
		Engine:    profiling.New(profiling.DefaultConfig(), nil, nil),
		Generator: content.NewGenerator(nil, content.DefaultConfig(), nil),
		Snapshots: st.SnapshotRepo(),
		Events:    st.EventRepo(),
		Keep:      2,
	}
}

func TestCheckpointRoundTrip(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()

	src := newCheckpointer(st)
	src.Engine.Classify(profiling.Input{Goal: "Quero segurança e baixo risco para minha aposentadoria", UserID: "1"})
	_, err := src.Generator.Generate(ctx, content.Request{Profile: profiling.Conservative, UserID: "1", Goal: "aposentar"})
	require.NoError(t, err)
	require.NoError(t, src.Checkpoint(ctx))

	dst := newCheckpointer(st)
	ok, err := dst.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	got := dst.Engine.History("1")
	require.Len(t, got, 1)
	assert.Equal(t, profiling.Conservative, got[0].Profile)
	assert.True(t, src.Engine.History("1")[0].At.Equal(got[0].At))
	assert.Equal(t, src.Engine.Weights(), dst.Engine.Weights())
	ic, found := dst.Generator.Interaction("1")
	require.True(t, found)
	assert.Equal(t, 1, ic.Count)
}

func TestRestoreEmpty(t *testing.T) {
	ok, err := newCheckpointer(openStore(t)).Restore(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckpointPrunes(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	c := newCheckpointer(st)
	m := metrics.New()
	c.Metrics = m

	for range 4 {
		require.NoError(t, c.Checkpoint(ctx))
	}
	var n int
	require.NoError(t, st.DB().QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n))
	assert.Equal(t, 2, n)
	want := `
# HELP agentfin_checkpoints_total Learning-state checkpoints by outcome.
# TYPE agentfin_checkpoints_total counter
agentfin_checkpoints_total{outcome="ok"} 4
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(want), "agentfin_checkpoints_total"))
}

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (c *countingRefresher) Refresh(context.Context) (float64, error) {
	c.calls.Add(1)
	return 14.9, c.err
}

func TestSchedulerRunsJobs(t *testing.T) {
	st := openStore(t)
	ref := &countingRefresher{err: errors.New("offline")}
	s, err := New(newCheckpointer(st), ref, Options{
		CheckpointSchedule: "@every 1s",
		SelicSchedule:      "@every 1s",
	}, nil)
	require.NoError(t, err)

	s.Start()
	assert.Eventually(t, func() bool { return ref.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	snap, err := st.SnapshotRepo().Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, snapshotVersion, snap.Data.Version)
}

func TestSchedulerRejectsBadSchedule(t *testing.T) {
	_, err := New(newCheckpointer(openStore(t)), nil, Options{CheckpointSchedule: "every minute"}, nil)
	assert.Error(t, err)
}
