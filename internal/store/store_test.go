package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createUser(t *testing.T, s *Store, hash string) *User {
	t.Helper()
	u := &User{Hash: hash, Name: "Ana " + hash, Age: 30, Income: 5000, Profile: "moderado"}
	if err := s.UserRepo().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so journal_mode is not checked here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
		{"busy_timeout", "5000"},
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestWithPragmas(t *testing.T) {
	got := withPragmas("agentfin.db")
	if !strings.HasPrefix(got, "agentfin.db?_pragma=journal_mode(WAL)&") {
		t.Errorf("got %q", got)
	}
	got = withPragmas("file:x?mode=memory")
	if !strings.HasPrefix(got, "file:x?mode=memory&_pragma=") {
		t.Errorf("got %q", got)
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, want := range []string{"users", "classification_events", "content_events", "simulation_events", "feedback_events", "llm_request_events", "snapshots", "global_sequence"} {
		var name string
		err := s.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", want).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", want, err)
		}
	}
}

func TestUserCRUD(t *testing.T) {
	s := openTestStore(t)
	repo := s.UserRepo()
	ctx := context.Background()

	u := createUser(t, s, "abc")
	if u.ID == 0 {
		t.Fatal("expected ID to be assigned")
	}

	got, err := repo.FindByHash(ctx, "abc")
	if err != nil {
		t.Fatalf("find by hash: %v", err)
	}
	if got.ID != u.ID || got.Name != "Ana abc" || got.Income != 5000 {
		t.Errorf("got %+v, want %+v", got, u)
	}

	got.Profile = "agressivo"
	got.Goal = "comprar um apartamento"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, err := repo.Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if again.Profile != "agressivo" || again.Goal != "comprar um apartamento" {
		t.Errorf("got profile %q goal %q after update", again.Profile, again.Goal)
	}

	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v after delete, want ErrNotFound", err)
	}
	if err := repo.Delete(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete got %v, want ErrNotFound", err)
	}
}

func TestUserList(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		createUser(t, s, fmt.Sprintf("h%d", i))
	}
	ctx := context.Background()

	page, err := s.UserRepo().List(ctx, 2, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].Hash != "h1" || page[1].Hash != "h2" {
		t.Errorf("got page %+v, want h1,h2", page)
	}

	tail, err := s.UserRepo().List(ctx, 0, 3)
	if err != nil {
		t.Fatalf("list offset only: %v", err)
	}
	if len(tail) != 2 {
		t.Errorf("got %d users, want 2", len(tail))
	}

	all, err := s.UserRepo().All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("got %d users, want 5", len(all))
	}
}

func TestDuplicateHashRejected(t *testing.T) {
	s := openTestStore(t)
	createUser(t, s, "dup")
	err := s.UserRepo().Create(context.Background(), &User{Hash: "dup", Name: "Outro", Age: 40, Income: 1})
	if err == nil {
		t.Fatal("expected unique constraint error")
	}
}

func TestClassificationEvents(t *testing.T) {
	s := openTestStore(t)
	u := createUser(t, s, "c1")
	repo := s.EventRepo()
	ctx := context.Background()

	for i, dom := range []string{"conservador", "moderado", "agressivo"} {
		err := repo.AppendClassification(ctx, ClassificationEventData{
			UserID:     u.ID,
			Goal:       fmt.Sprintf("objetivo %d", i),
			Dominant:   dom,
			Confidence: 0.5,
			MatchCount: i,
		})
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	events, err := repo.Classifications(ctx, u.ID, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("classifications: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Dominant != "agressivo" || events[1].Dominant != "moderado" {
		t.Errorf("got %q, %q, want newest first", events[0].Dominant, events[1].Dominant)
	}
	if events[0].Sequence <= events[1].Sequence {
		t.Errorf("sequence %d should be after %d", events[0].Sequence, events[1].Sequence)
	}

	after, err := repo.Classifications(ctx, u.ID, QueryOpts{After: events[1].Sequence})
	if err != nil {
		t.Fatalf("classifications after: %v", err)
	}
	if len(after) != 1 {
		t.Errorf("got %d events after sequence %d, want 1", len(after), events[1].Sequence)
	}
}

func TestDeleteUserCascades(t *testing.T) {
	s := openTestStore(t)
	u := createUser(t, s, "cascade")
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendContent(ctx, ContentEventData{UserID: u.ID, Profile: "moderado", Strategy: "educativo", Source: "fallback", Content: "texto"}); err != nil {
		t.Fatalf("append content: %v", err)
	}
	if err := repo.AppendSimulation(ctx, SimulationEventData{UserID: u.ID, InitialAmount: 1000, Years: 1, AnnualRate: 10, FinalValue: 1100, TotalInvested: 1000}); err != nil {
		t.Fatalf("append simulation: %v", err)
	}
	if err := s.UserRepo().Delete(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	content, err := repo.ContentHistory(ctx, u.ID, QueryOpts{})
	if err != nil {
		t.Fatalf("content history: %v", err)
	}
	if len(content) != 0 {
		t.Errorf("got %d content events after delete, want 0", len(content))
	}

	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM simulation_events WHERE user_id IS NULL").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("got %d orphaned simulations, want 1", n)
	}
}

func TestAnonymousSimulationAndFeedback(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	if err := repo.AppendSimulation(ctx, SimulationEventData{InitialAmount: 500, Years: 2, AnnualRate: 12}); err != nil {
		t.Fatalf("append anonymous simulation: %v", err)
	}
	if err := repo.AppendFeedback(ctx, FeedbackEventData{UserHash: "h", Payload: map[string]any{"rating": 5}}); err != nil {
		t.Fatalf("append feedback: %v", err)
	}
	seq, err := repo.LastSequence(ctx)
	if err != nil {
		t.Fatalf("last sequence: %v", err)
	}
	if seq != 2 {
		t.Errorf("got last sequence %d, want 2", seq)
	}
}

func TestProfileDistribution(t *testing.T) {
	s := openTestStore(t)
	createUser(t, s, "a")
	createUser(t, s, "b")
	u := createUser(t, s, "c")
	u.Profile = "conservador"
	if err := s.UserRepo().Update(context.Background(), u); err != nil {
		t.Fatalf("update: %v", err)
	}

	dist, err := s.EventRepo().ProfileDistribution(context.Background())
	if err != nil {
		t.Fatalf("distribution: %v", err)
	}
	if dist["moderado"] != 2 || dist["conservador"] != 1 {
		t.Errorf("got %v", dist)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "content", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true, RequestBody: "req", ResponseBody: "resp"},
		{Provider: "anthropic", Model: "claude-sonnet-4-5", Purpose: "content", InputTokens: 300, OutputTokens: 150, LatencyMs: 400, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "suggestion", InputTokens: 10, LatencyMs: 50, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	list, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d events, want 3", len(list))
	}
	if list[0].ErrorMessage != "boom" || list[0].Success {
		t.Errorf("newest event = %+v", list[0])
	}

	got, err := repo.GetLLMEvent(ctx, list[2].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RequestBody != "req" || got.ResponseBody != "resp" {
		t.Errorf("got bodies %q/%q", got.RequestBody, got.ResponseBody)
	}
	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil || missing != nil {
		t.Errorf("missing event = %v, %v; want nil, nil", missing, err)
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purposes, want 2", len(byPurpose))
	}
	content := byPurpose[0]
	if content.Purpose != "content" || content.Calls != 2 || content.InputTokens != 400 || content.OutputTokens != 200 || content.AvgLatencyMs != 300 {
		t.Errorf("content usage = %+v", content)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 2 || byModel[1].Model != "gpt-4o-mini" {
		t.Errorf("model usage = %+v", byModel)
	}
}

func TestSnapshotSaveAndLatest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	// No snapshot yet.
	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest (empty): %v", err)
	}
	if snap != nil {
		t.Fatal("expected nil snapshot when none exist")
	}

	now := time.Now().UTC().Truncate(time.Second)
	err = repo.Save(ctx, &Snapshot{
		Sequence:  42,
		Timestamp: now,
		Data: SnapshotData{
			Version:       1,
			Effectiveness: map[string]float64{"tesouro": 1.25},
		},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	snap, err = repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap == nil {
		t.Fatal("expected non-nil snapshot")
	}
	if snap.Sequence != 42 {
		t.Errorf("sequence = %d, want 42", snap.Sequence)
	}
	if snap.Data.Effectiveness["tesouro"] != 1.25 {
		t.Errorf("effectiveness = %v, want tesouro 1.25", snap.Data.Effectiveness)
	}
}

func TestSnapshotLatestReturnsNewest(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		err := repo.Save(ctx, &Snapshot{
			Sequence:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Data:      SnapshotData{Version: i + 1},
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Sequence != 3 {
		t.Errorf("sequence = %d, want 3", snap.Sequence)
	}
	if snap.Data.Version != 3 {
		t.Errorf("data.version = %d, want 3", snap.Data.Version)
	}
}

func countSnapshots(t *testing.T, s *Store) int {
	t.Helper()
	var n int
	if err := s.DB().QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestSnapshotPrune(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 7; i++ {
		err := repo.Save(ctx, &Snapshot{
			Sequence:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Data:      SnapshotData{Version: 1},
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	if err := repo.Prune(ctx, 5); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if count := countSnapshots(t, s); count != 5 {
		t.Errorf("remaining snapshots = %d, want 5", count)
	}

	snap, err := repo.Latest(ctx)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap.Sequence != 7 {
		t.Errorf("latest sequence = %d, want 7", snap.Sequence)
	}
}

func TestSnapshotPruneWithFewerThanKeep(t *testing.T) {
	s := openTestStore(t)
	repo := s.SnapshotRepo()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 2; i++ {
		err := repo.Save(ctx, &Snapshot{
			Sequence:  int64(i + 1),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Data:      SnapshotData{Version: 1},
		})
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	// Prune with keep=5 should be a no-op.
	if err := repo.Prune(ctx, 5); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if count := countSnapshots(t, s); count != 2 {
		t.Errorf("remaining snapshots = %d, want 2", count)
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	u := createUser(t, s, "r")
	ctx := context.Background()
	if err := s.EventRepo().AppendClassification(ctx, ClassificationEventData{UserID: u.ID, Dominant: "moderado"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	all, err := s.UserRepo().All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("got %d users after reset, want 0", len(all))
	}
}
