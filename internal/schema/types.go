// Package schema defines the catalog snapshot model returned by the
// server-side get_schema_info procedure.
//
// Every run reconstructs the whole model from one JSON document; nothing
// here is persisted or mutated after Normalize. Nullable catalog scalars
// are pointers, nullable sequences are slices that Normalize converts from
// nil to empty exactly once at the fetch boundary.
package schema

// Column describes a single column in a table.
type Column struct {
	Name        string  `json:"column_name"`
	DataType    string  `json:"data_type"`
	IsNullable  string  `json:"is_nullable"` // YES / NO, as reported by the catalog
	Default     *string `json:"column_default"`
	Description *string `json:"description"`
}

// Constraint describes a table constraint and its raw DDL fragment.
type Constraint struct {
	Name       string   `json:"constraint_name"`
	Type       string   `json:"constraint_type"` // PRIMARY KEY / FOREIGN KEY / UNIQUE / CHECK
	Columns    []string `json:"column_names"`
	Definition string   `json:"definition"`
}

// ForeignKey describes a single-column reference to another table.
// The target is named by convention only — it may dangle, and rendering
// must tolerate that.
type ForeignKey struct {
	Column        string `json:"column_name"`
	ForeignTable  string `json:"foreign_table_name"`
	ForeignColumn string `json:"foreign_column_name"`
	Constraint    string `json:"constraint_name"`
}

// Index carries an index name and its raw CREATE INDEX statement.
type Index struct {
	Name       string `json:"indexname"`
	Definition string `json:"indexdef"`
}

// Trigger describes a trigger and the definition of its backing function.
type Trigger struct {
	Name               string `json:"trigger_name"`
	ActionTiming       string `json:"action_timing"`      // BEFORE / AFTER / INSTEAD OF
	EventManipulation  string `json:"event_manipulation"` // INSERT / UPDATE / DELETE
	ActionStatement    string `json:"action_statement"`
	FunctionDefinition string `json:"function_definition"`
}

// Policy describes a row-level security policy.
type Policy struct {
	Name       string   `json:"policyname"`
	Command    string   `json:"command"`
	Permissive string   `json:"permissive"`
	Roles      []string `json:"roles"`
	Using      *string  `json:"using"`
	WithCheck  *string  `json:"with_check"`
}

// Table is one table's full catalog snapshot.
type Table struct {
	Name        string       `json:"table_name"`
	Columns     []Column     `json:"columns"`
	Constraints []Constraint `json:"constraints"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
	Indexes     []Index      `json:"indexes"`
	Triggers    []Trigger    `json:"triggers"`
	Policies    []Policy     `json:"policies"`
}

// Function describes a user-defined database function.
type Function struct {
	Name          string  `json:"function_name"`
	Language      string  `json:"language"`
	ReturnType    string  `json:"return_type"`
	ArgumentTypes string  `json:"argument_types"` // raw signature string
	Definition    string  `json:"definition"`
	Description   *string `json:"description"`
}

// View carries a view name and its defining query.
type View struct {
	Name       string `json:"view_name"`
	Definition string `json:"definition"`
}

// Info is the top-level catalog snapshot. After Normalize, Tables and
// Functions are never nil, even when the source returned null.
type Info struct {
	Tables    []Table    `json:"tables"`
	Functions []Function `json:"functions"`
	Views     []View     `json:"views,omitempty"`
}

// Empty returns a well-typed zero snapshot, used when the procedure
// succeeds but returns a null payload.
func Empty() *Info {
	return &Info{Tables: []Table{}, Functions: []Function{}}
}

// Normalize converts every nil collection in the snapshot to an empty one.
// It runs once, at the fetch boundary; render code relies on it and never
// re-checks for nil slices.
func (s *Info) Normalize() *Info {
	if s.Tables == nil {
		s.Tables = []Table{}
	}
	if s.Functions == nil {
		s.Functions = []Function{}
	}
	for i := range s.Tables {
		s.Tables[i].normalize()
	}
	return s
}

func (t *Table) normalize() {
	if t.Columns == nil {
		t.Columns = []Column{}
	}
	if t.Constraints == nil {
		t.Constraints = []Constraint{}
	}
	if t.ForeignKeys == nil {
		t.ForeignKeys = []ForeignKey{}
	}
	if t.Indexes == nil {
		t.Indexes = []Index{}
	}
	if t.Triggers == nil {
		t.Triggers = []Trigger{}
	}
	if t.Policies == nil {
		t.Policies = []Policy{}
	}
}

// FindTable returns the table with the given name, or nil when absent.
// Matching is exact; the lookup is a linear scan over the snapshot.
func (s *Info) FindTable(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
