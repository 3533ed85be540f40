package llm

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mlcompare/mlcompare/internal/store"
)

func TestLogging_RecordsEvents(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "llm.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"labels":["Github"]}`), Usage: Usage{InputTokens: 12, OutputTokens: 4}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}},
	)
	p := WithLogging(mock, "mock", s.EventRepo())

	ctx := WithRun(WithPurpose(context.Background(), "reflection-classify"), "run-1")
	req := Request{
		System:      "You are a professor.",
		Messages:    []Message{{Role: RoleUser, Content: "classify this"}},
		Temperature: 0.5,
	}
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := p.Generate(ctx, req); err == nil {
		t.Fatal("second call should fail")
	}

	events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	failed, ok := events[0], events[1]
	if failed.Success || !strings.Contains(failed.ErrorMessage, "slow down") {
		t.Errorf("failed event = %+v", failed.LLMRequestEventData)
	}
	if !ok.Success || ok.InputTokens != 12 || ok.OutputTokens != 4 {
		t.Errorf("ok event = %+v", ok.LLMRequestEventData)
	}
	if ok.Provider != "mock" || ok.Model != "mock" || ok.Purpose != "reflection-classify" || ok.RunID != "run-1" {
		t.Errorf("ok event labels = %q/%q/%q/%q", ok.Provider, ok.Model, ok.Purpose, ok.RunID)
	}
	if !strings.Contains(ok.RequestBody, "[system]\nYou are a professor.") ||
		!strings.Contains(ok.RequestBody, "[temperature: 0.5]") {
		t.Errorf("request body = %q", ok.RequestBody)
	}
	if ok.ResponseBody != `{"labels":["Github"]}` {
		t.Errorf("response body = %q", ok.ResponseBody)
	}
}

func TestLogging_RecordsAfterCancel(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "llm.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer s.Close()

	mock := NewMockProvider(MockResponse{Err: context.DeadlineExceeded})
	p := WithLogging(mock, "mock", s.EventRepo())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Generate(ctx, Request{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}

	events, err := s.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 1 || events[0].Success {
		t.Fatalf("events = %+v, want one failed call", events)
	}
}

func TestLogging_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"ok"`)})
	p := WithLogging(mock, "mock", nil)

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `"ok"` {
		t.Fatalf("unexpected content: %s", resp.Content)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("model id = %q", p.ModelID())
	}
}

func TestSerializeRequest_Schema(t *testing.T) {
	out := serializeRequest(Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
		Schema: &Schema{
			Name:       "reflection-labels",
			Definition: map[string]any{"type": "object"},
		},
	})
	want := "[user]\nhi\n\n[schema: reflection-labels]\n{\"type\":\"object\"}\n"
	if out != want {
		t.Fatalf("serializeRequest = %q, want %q", out, want)
	}
}
