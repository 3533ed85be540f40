package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// QueryOpts configures list queries.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	RunID   string // only events tagged with this run, when set
	Purpose string // only events with this purpose, when set
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
	RunID        string // trial run that issued the call, empty when untagged
}

// LLMRequestEvent is a recorded LLM call.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM calls sharing a purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// ModelUsage aggregates LLM calls served by one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records LLM calls and answers usage queries over them.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event, or nil if id does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates tokens and latency per purpose label.
	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)

	// LLMUsageByModel aggregates tokens per model, for cost estimates.
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// Trial sources.
const (
	SourceLLM    = "llm"
	SourceImport = "import"
)

// Trial is one scored set of predictions.
type Trial struct {
	ID          int
	RunID       uuid.UUID // groups the trials of one invocation
	CreatedAt   time.Time
	Source      string // SourceLLM or SourceImport
	Model       string
	Temperature float64
	Samples     int
	Accuracy    float64
	Metrics     json.RawMessage
}

// TrialRepo persists scored trials.
type TrialRepo interface {
	// Save stores t, assigning RunID and CreatedAt when unset.
	Save(ctx context.Context, t *Trial) error

	// List returns trials newest first.
	List(ctx context.Context, opts QueryOpts) ([]Trial, error)
}
