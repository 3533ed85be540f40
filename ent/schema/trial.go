package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Trial is one scored prediction run: an LLM classification at a single
// temperature or an imported prediction matrix.
type Trial struct {
	ent.Schema
}

func (Trial) Fields() []ent.Field {
	return []ent.Field{
		field.String("run_id").
			Immutable().
			Comment("UUID shared by the trials of one invocation"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Enum("source").
			Values("llm", "import"),
		field.String("model").
			Default(""),
		field.Float("temperature").
			Default(0),
		field.Int("samples").
			Comment("Number of reflections scored"),
		field.Float("accuracy"),
		field.Text("metrics").
			Comment("Per-label confusion counts as JSON"),
	}
}

func (Trial) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("run_id"),
		index.Fields("created_at"),
	}
}
