package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_NilCollections(t *testing.T) {
	s := &Info{Tables: []Table{{Name: "users"}}}

	s.Normalize()

	require.NotNil(t, s.Functions)
	tbl := s.Tables[0]
	assert.NotNil(t, tbl.Columns)
	assert.NotNil(t, tbl.Constraints)
	assert.NotNil(t, tbl.ForeignKeys)
	assert.NotNil(t, tbl.Indexes)
	assert.NotNil(t, tbl.Triggers)
	assert.NotNil(t, tbl.Policies)
}

func TestNormalize_PreservesData(t *testing.T) {
	s := &Info{
		Tables: []Table{{
			Name:    "users",
			Columns: []Column{{Name: "id", DataType: "integer", IsNullable: "NO"}},
		}},
		Functions: []Function{{Name: "touch_updated_at", Language: "plpgsql"}},
	}

	s.Normalize()

	require.Len(t, s.Tables, 1)
	assert.Equal(t, "id", s.Tables[0].Columns[0].Name)
	require.Len(t, s.Functions, 1)
	assert.Equal(t, "touch_updated_at", s.Functions[0].Name)
}

func TestNormalize_NullJSONPayload(t *testing.T) {
	// The procedure reports absent collections as JSON null.
	payload := []byte(`{"tables":null,"functions":null}`)

	var s Info
	require.NoError(t, json.Unmarshal(payload, &s))
	s.Normalize()

	assert.NotNil(t, s.Tables)
	assert.NotNil(t, s.Functions)
	assert.Empty(t, s.Tables)
}

func TestFindTable(t *testing.T) {
	s := &Info{Tables: []Table{{Name: "users"}, {Name: "orders"}}}

	tests := []struct {
		name  string
		table string
		found bool
	}{
		{name: "first", table: "users", found: true},
		{name: "second", table: "orders", found: true},
		{name: "missing", table: "ghost_table", found: false},
		{name: "case sensitive", table: "Users", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.FindTable(tt.table)
			if tt.found {
				require.NotNil(t, got)
				assert.Equal(t, tt.table, got.Name)
			} else {
				assert.Nil(t, got)
			}
		})
	}
}

func TestEmpty(t *testing.T) {
	s := Empty()

	assert.NotNil(t, s.Tables)
	assert.NotNil(t, s.Functions)
	assert.Empty(t, s.Tables)
	assert.Empty(t, s.Functions)
}
