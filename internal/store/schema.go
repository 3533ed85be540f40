package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names shared by the repositories.
const (
	llmEventsTable = "llm_request_events"
	trialsTable    = "trials"
)

var (
	// LLMRequestEventsColumns records every LLM API call for cost tracking
	// and debugging. sequence and timestamp are the event fields every
	// event table carries.
	LLMRequestEventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
		{Name: "provider", Type: field.TypeString},
		{Name: "model", Type: field.TypeString},
		{Name: "purpose", Type: field.TypeString},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Default: ""},
		{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		{Name: "run_id", Type: field.TypeString, Default: ""},
	}
	LLMRequestEventsTable = &schema.Table{
		Name:       llmEventsTable,
		Columns:    LLMRequestEventsColumns,
		PrimaryKey: []*schema.Column{LLMRequestEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_timestamp", Columns: []*schema.Column{LLMRequestEventsColumns[2]}},
			{Name: "llmrequestevent_provider", Columns: []*schema.Column{LLMRequestEventsColumns[3]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{LLMRequestEventsColumns[5]}},
			{Name: "llmrequestevent_success", Columns: []*schema.Column{LLMRequestEventsColumns[9]}},
			{Name: "llmrequestevent_run_id", Columns: []*schema.Column{LLMRequestEventsColumns[13]}},
		},
	}

	// TrialsColumns holds one row per scored prediction run.
	TrialsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "run_id", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "source", Type: field.TypeString},
		{Name: "model", Type: field.TypeString, Default: ""},
		{Name: "temperature", Type: field.TypeFloat64, Default: 0},
		{Name: "samples", Type: field.TypeInt},
		{Name: "accuracy", Type: field.TypeFloat64},
		{Name: "metrics", Type: field.TypeString, Size: 2147483647},
	}
	TrialsTable = &schema.Table{
		Name:       trialsTable,
		Columns:    TrialsColumns,
		PrimaryKey: []*schema.Column{TrialsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "trial_run_id", Columns: []*schema.Column{TrialsColumns[1]}},
			{Name: "trial_created_at", Columns: []*schema.Column{TrialsColumns[2]}},
		},
	}

	// Tables holds every table managed by auto-migration.
	Tables = []*schema.Table{
		LLMRequestEventsTable,
		TrialsTable,
	}
)
