package schema_test

import (
	"testing"

	"entgo.io/ent"
	sqlschema "entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/mlcompare/mlcompare/ent/schema"
	"github.com/mlcompare/mlcompare/internal/store"
)

// The store migrates hand-declared tables; these tests keep them in step
// with the entity schemas.

func TestLLMRequestEventMatchesStore(t *testing.T) {
	s := schema.LLMRequestEvent{}
	var fields []ent.Field
	for _, m := range s.Mixin() {
		fields = append(fields, m.Fields()...)
	}
	fields = append(fields, s.Fields()...)
	assertColumns(t, fields, store.LLMRequestEventsColumns)
}

func TestTrialMatchesStore(t *testing.T) {
	assertColumns(t, schema.Trial{}.Fields(), store.TrialsColumns)
}

func assertColumns(t *testing.T, fields []ent.Field, columns []*sqlschema.Column) {
	t.Helper()
	// columns[0] is the implicit id.
	if len(columns) != len(fields)+1 {
		t.Fatalf("store has %d columns, schema declares %d fields plus id", len(columns), len(fields))
	}
	if columns[0].Name != "id" {
		t.Fatalf("first column = %q, want id", columns[0].Name)
	}
	for i, f := range fields {
		d := f.Descriptor()
		col := columns[i+1]
		if d.Name != col.Name {
			t.Errorf("column %d: name = %q, schema field = %q", i+1, col.Name, d.Name)
		}
		want := d.Info.Type
		if want == field.TypeEnum {
			want = field.TypeString
		}
		if col.Type != want {
			t.Errorf("column %q: type = %s, schema type = %s", col.Name, col.Type, want)
		}
	}
}
