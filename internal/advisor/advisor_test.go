package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malu-oliver/agent-financeiro/internal/analytics"
	"github.com/malu-oliver/agent-financeiro/internal/content"
	"github.com/malu-oliver/agent-financeiro/internal/invest"
	"github.com/malu-oliver/agent-financeiro/internal/metrics"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/store"
)

const conservativeGoal = "Quero segurança e baixo risco para minha aposentadoria"

type fixedRate float64

func (f fixedRate) Current(context.Context) float64 { return float64(f) }

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := New(Deps{
		Engine:     profiling.New(profiling.DefaultConfig(), nil, nil),
		Generator:  content.NewGenerator(nil, content.DefaultConfig(), nil),
		Calculator: invest.NewCalculator(fixedRate(10)),
		Analyzer:   analytics.New(st.UserRepo()),
		Users:      st.UserRepo(),
		Events:     st.EventRepo(),
		Metrics:    metrics.New(),
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, st
}

func validRequest() UserRequest {
	return UserRequest{
		Name:   "Ana Souza",
		Email:  "ana@example.com",
		Age:    34,
		Income: 5000,
		Goal:   conservativeGoal,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*UserRequest)
		field string
	}{
		{"valid", func(*UserRequest) {}, ""},
		{"short name", func(r *UserRequest) { r.Name = "A" }, "name"},
		{"bad email", func(r *UserRequest) { r.Email = "not-an-email" }, "email"},
		{"age zero", func(r *UserRequest) { r.Age = 0 }, "age"},
		{"age 120", func(r *UserRequest) { r.Age = 120 }, "age"},
		{"no income", func(r *UserRequest) { r.Income = 0 }, "income"},
		{"short goal", func(r *UserRequest) { r.Goal = "curto" }, "goal"},
		{"long reference", func(r *UserRequest) { r.Reference = strings.Repeat("a", 2001) }, "reference"},
		{"negative amount", func(r *UserRequest) { r.Amount = -1 }, "amount"},
		{"years 51", func(r *UserRequest) { r.Years = 51 }, "years"},
		{"unknown self assessment", func(r *UserRequest) { r.SelfAssessment = "ousado" }, "self_assessment"},
		{"undefined self assessment", func(r *UserRequest) { r.SelfAssessment = "Indefinido" }, ""},
		{"english alias", func(r *UserRequest) { r.SelfAssessment = "aggressive" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mod(&r)
			err := r.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestUserHash(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := UserHash("Ana@Example.com", "Ana", now)
	b := UserHash("ana@example.com", " ana ", now.Add(time.Hour))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	anon1 := UserHash("", "Ana", now)
	anon2 := UserHash("", "Ana", now.Add(time.Nanosecond))
	assert.True(t, strings.HasPrefix(anon1, "anonymous_ana_"))
	assert.NotEqual(t, anon1, anon2)
}

func TestGenerateContent(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	req := validRequest()
	req.Amount = 1000
	req.Years = 5
	resp, err := svc.GenerateContent(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, profiling.Conservative, resp.Profile)
	assert.False(t, resp.Fallback)
	assert.Equal(t, content.SourceFallback, resp.Source)
	assert.Len(t, resp.Paragraphs, 3)
	assert.Contains(t, resp.Content, "Ana Souza")
	require.NotNil(t, resp.Scenarios)
	assert.Equal(t, 10.0, resp.Scenarios.CurrentSelic)
	assert.Equal(t, 60, resp.Scenarios.Profile.Months)
	require.NotNil(t, resp.Peers)
	assert.Equal(t, 0, resp.Peers.TotalPeers)
	assert.Equal(t, 0, resp.Metadata.PreviousInteractions)
	assert.Equal(t, 1, resp.Agent.Evolution.HistoryLength)

	u, err := st.UserRepo().Get(ctx, resp.Metadata.UserID)
	require.NoError(t, err)
	assert.Equal(t, "conservador", u.Profile)
	assert.Equal(t, resp.Metadata.UserHash, u.Hash)

	cls, err := st.EventRepo().Classifications(ctx, u.ID, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, cls, 1)
	assert.Equal(t, "conservador", cls[0].Dominant)

	contents, err := st.EventRepo().ContentHistory(ctx, u.ID, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Equal(t, resp.Content, contents[0].Content)
}

func TestGenerateContent_ReturningUser(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	first, err := svc.GenerateContent(ctx, validRequest())
	require.NoError(t, err)

	req := validRequest()
	req.Income = 8000
	second, err := svc.GenerateContent(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, first.Metadata.UserID, second.Metadata.UserID)
	assert.Equal(t, 1, second.Metadata.PreviousInteractions)
	assert.Nil(t, second.Scenarios)

	u, err := st.UserRepo().Get(ctx, first.Metadata.UserID)
	require.NoError(t, err)
	assert.Equal(t, 8000.0, u.Income)

	ic, ok := svc.Generator.Interaction(engineID(u.ID))
	require.True(t, ok)
	assert.Equal(t, 2, ic.Count)
}

func TestGenerateContent_ValidationError(t *testing.T) {
	svc, _ := newTestService(t)
	req := validRequest()
	req.Age = 0
	_, err := svc.GenerateContent(context.Background(), req)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUserHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.GenerateContent(ctx, validRequest())
	require.NoError(t, err)
	_, err = svc.Simulate(ctx, resp.Metadata.UserID, invest.SimulationRequest{InitialAmount: 1000, Years: 1, AnnualRate: 12})
	require.NoError(t, err)

	h, err := svc.UserHistory(ctx, resp.Metadata.UserHash)
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", h.Name)
	assert.Equal(t, 1, h.TotalInteractions)
	assert.Equal(t, 1, h.TotalSimulations)
	require.Len(t, h.Interactions, 1)
	assert.Equal(t, profiling.Conservative, h.Interactions[0].Profile)

	_, err = svc.UserHistory(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSimulate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sim, err := svc.Simulate(ctx, 0, invest.SimulationRequest{InitialAmount: 1000, Years: 1})
	require.NoError(t, err)
	assert.True(t, sim.RateFromSelic)
	assert.Equal(t, profiling.Moderate, sim.Request.Profile)

	_, err = svc.Simulate(ctx, 0, invest.SimulationRequest{Years: 0})
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Simulate(ctx, 999, invest.SimulationRequest{Years: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAgentEndpoints(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.GenerateContent(ctx, validRequest())
	require.NoError(t, err)
	id := resp.Metadata.UserID

	evo, err := svc.Evolution(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, evo.HistoryLength)

	sugg, err := svc.Suggestions(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, sugg.InteractionCount)

	require.NoError(t, svc.Feedback(ctx, id, map[string]any{"useful": true}))
	var ve *ValidationError
	assert.ErrorAs(t, svc.Feedback(ctx, id, nil), &ve)
	assert.ErrorIs(t, svc.Feedback(ctx, 999, map[string]any{"x": 1}), ErrNotFound)

	_, err = svc.Evolution(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	status := svc.Status()
	assert.True(t, status.Active)
	assert.Equal(t, 1, status.TrackedUsers)
	assert.Equal(t, 1, status.TotalInteractions)
	assert.False(t, status.Capabilities["llm_content"])
	assert.Equal(t, 15, status.Triggers["history_limit"])
}

func TestUserCRUD(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, validRequest())
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, validRequest())
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve, "duplicate email and name")

	req := validRequest()
	req.Age = 40
	updated, err := svc.UpdateUser(ctx, u.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Age)
	assert.Equal(t, u.Hash, updated.Hash)

	users, err := svc.ListUsers(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, svc.DeleteUser(ctx, u.ID))
	_, err = svc.GetUser(ctx, u.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.ErrorIs(t, svc.DeleteUser(ctx, u.ID), ErrNotFound)
}

func TestDeleteUserForgetsLearning(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.GenerateContent(ctx, validRequest())
	require.NoError(t, err)
	uid := engineID(resp.Metadata.UserID)
	require.Len(t, svc.Engine.History(uid), 1)

	require.NoError(t, svc.DeleteUser(ctx, resp.Metadata.UserID))
	assert.Empty(t, svc.Engine.History(uid))
	_, ok := svc.Generator.Interaction(uid)
	assert.False(t, ok)
}

func TestBenchmark(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.GenerateContent(ctx, validRequest())
	require.NoError(t, err)

	b, err := svc.Benchmark(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, b.TotalUsers)
	assert.Equal(t, "conservador", b.MostCommon)
}
