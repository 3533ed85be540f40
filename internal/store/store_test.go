package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
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

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)

	for _, name := range []string{llmEventsTable, trialsTable, "global_sequence"} {
		var got string
		err := s.DB().QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name,
		).Scan(&got)
		if err != nil {
			t.Errorf("table %s: %v", name, err)
		}
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.EventRepo().AppendLLMRequest(ctx, LLMRequestEventData{Provider: "mock", Success: true}); err != nil {
		t.Fatalf("append: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	events, err := s.EventRepo().QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events after reopen, want 1", len(events))
	}
}

func TestSequenceCounterMonotonic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if seq <= prev {
			t.Fatalf("sequence %d not greater than %d", seq, prev)
		}
		prev = seq
	}
	if prev != 5 {
		t.Errorf("last sequence = %d, want 5", prev)
	}
}

func TestLLMEventAppendAndQuery(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	events := []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o", Purpose: "reflection-classify", InputTokens: 100, OutputTokens: 20, LatencyMs: 300, Success: true, RequestBody: `{"q":1}`, ResponseBody: `{"labels":["Github"]}`},
		{Provider: "openai", Model: "gpt-4o", Purpose: "reflection-classify", InputTokens: 50, OutputTokens: 10, LatencyMs: 100, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "other", Success: false, ErrorMessage: "rate limited"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
	if got[0].Sequence <= got[1].Sequence || got[1].Sequence <= got[2].Sequence {
		t.Errorf("events not newest first: %d, %d, %d", got[0].Sequence, got[1].Sequence, got[2].Sequence)
	}
	if got[0].ErrorMessage != "rate limited" || got[0].Success {
		t.Errorf("newest event = %+v, want failed call", got[0].LLMRequestEventData)
	}

	limited, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("query limited: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d events with limit, want 2", len(limited))
	}

	first := got[2]
	one, err := repo.GetLLMEvent(ctx, first.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if one == nil {
		t.Fatal("expected event, got nil")
	}
	if one.ResponseBody != `{"labels":["Github"]}` || one.InputTokens != 100 {
		t.Errorf("get = %+v", one.LLMRequestEventData)
	}
	if one.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}

	missing, err := repo.GetLLMEvent(ctx, 9999)
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing event, got %+v", missing)
	}
}

func TestLLMEventQueryByRun(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, run := range []string{"run-a", "run-b", "run-a", ""} {
		data := LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: "reflection-classify", Success: true, RunID: run}
		if err := repo.AppendLLMRequest(ctx, data); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{RunID: "run-a"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events for run-a, want 2", len(got))
	}
	for _, e := range got {
		if e.RunID != "run-a" {
			t.Errorf("event %d has run %q", e.ID, e.RunID)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 4 || all[0].RunID != "" {
		t.Errorf("unfiltered query = %d events, newest run %q", len(all), all[0].RunID)
	}
}

func TestLLMEventQueryByPurpose(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	// Newest first: two "other" events sit on top of the classify ones.
	for _, purpose := range []string{"reflection-classify", "reflection-classify", "other", "other"} {
		data := LLMRequestEventData{Provider: "mock", Model: "mock", Purpose: purpose, Success: true}
		if err := repo.AppendLLMRequest(ctx, data); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := repo.QueryLLMEvents(ctx, QueryOpts{Limit: 2, Purpose: "reflection-classify"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2 after filtering then limiting", len(got))
	}
	for _, e := range got {
		if e.Purpose != "reflection-classify" {
			t.Errorf("event %d has purpose %q", e.ID, e.Purpose)
		}
	}
}

func TestLLMUsage(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, e := range []LLMRequestEventData{
		{Provider: "openai", Model: "gpt-4o", Purpose: "reflection-classify", InputTokens: 100, OutputTokens: 20, LatencyMs: 300, Success: true},
		{Provider: "openai", Model: "gpt-4o", Purpose: "reflection-classify", InputTokens: 50, OutputTokens: 10, LatencyMs: 100, Success: true},
		{Provider: "openai", Model: "gpt-4o-mini", Purpose: "other", InputTokens: 7, Success: false},
	} {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	byPurpose, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("usage by purpose: %v", err)
	}
	if len(byPurpose) != 2 {
		t.Fatalf("got %d purposes, want 2", len(byPurpose))
	}
	rc := byPurpose[1]
	if rc.Purpose != "reflection-classify" || rc.Calls != 2 || rc.InputTokens != 150 || rc.OutputTokens != 30 || rc.AvgLatencyMs != 200 {
		t.Errorf("reflection-classify usage = %+v", rc)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("usage by model: %v", err)
	}
	if len(byModel) != 1 {
		t.Fatalf("got %d models, want 1 (failed calls excluded)", len(byModel))
	}
	if byModel[0].Model != "gpt-4o" || byModel[0].InputTokens != 150 {
		t.Errorf("model usage = %+v", byModel[0])
	}
}

func TestTrialSaveAndList(t *testing.T) {
	s := openTestStore(t)
	repo := s.TrialRepo()
	ctx := context.Background()

	runID := uuid.New()
	first := &Trial{
		RunID:       runID,
		Source:      SourceLLM,
		Model:       "gpt-4o",
		Temperature: 0.5,
		Samples:     150,
		Accuracy:    0.81,
		Metrics:     json.RawMessage(`{"accuracy":0.81}`),
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID == 0 || first.CreatedAt.IsZero() {
		t.Errorf("save did not fill ID/CreatedAt: %+v", first)
	}

	second := &Trial{Source: SourceImport, Samples: 10, Accuracy: 0.5}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("save: %v", err)
	}
	if second.RunID == uuid.Nil {
		t.Error("save did not assign a run id")
	}

	trials, err := repo.List(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(trials) != 2 {
		t.Fatalf("got %d trials, want 2", len(trials))
	}
	if trials[0].ID != second.ID {
		t.Errorf("trials not newest first: %d", trials[0].ID)
	}
	if string(trials[0].Metrics) != "{}" {
		t.Errorf("empty metrics stored as %q, want {}", trials[0].Metrics)
	}
	got := trials[1]
	if got.RunID != runID || got.Model != "gpt-4o" || got.Temperature != 0.5 || got.Samples != 150 {
		t.Errorf("listed trial = %+v", got)
	}
	if string(got.Metrics) != `{"accuracy":0.81}` {
		t.Errorf("metrics = %s", got.Metrics)
	}

	limited, err := repo.List(ctx, QueryOpts{Limit: 1})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("got %d trials with limit, want 1", len(limited))
	}
}
