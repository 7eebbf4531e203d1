package render

import (
	"fmt"
	"strings"

	"github.com/schemadump/schemadump/internal/schema"
)

// sqlBanner opens every full-schema script. An empty snapshot renders as
// the banner alone.
const sqlBanner = "-- Database Schema\n\n"

// SQL renders the snapshot as a DDL script. Function definitions come
// first (triggers may reference them), then one block per table.
func SQL(info *schema.Info) string {
	var b strings.Builder
	b.WriteString(sqlBanner)

	for _, f := range info.Functions {
		fmt.Fprintf(&b, "-- Function: %s\n", f.Name)
		b.WriteString(terminate(f.Definition))
		b.WriteString("\n\n")
	}

	for i := range info.Tables {
		writeTableSQL(&b, &info.Tables[i])
	}

	return b.String()
}

// TableSQL renders one table's DDL as a self-contained script, without the
// schema-wide function section.
func TableSQL(t *schema.Table) string {
	var b strings.Builder
	writeTableSQL(&b, t)
	return b.String()
}

func writeTableSQL(b *strings.Builder, t *schema.Table) {
	fmt.Fprintf(b, "-- Table: %s\n", t.Name)
	fmt.Fprintf(b, "CREATE TABLE IF NOT EXISTS %s (\n", t.Name)
	colDefs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		colDefs[i] = columnDef(c)
	}
	b.WriteString(strings.Join(colDefs, ",\n"))
	b.WriteString("\n);\n\n")

	// Constraints whose definition already starts with PRIMARY KEY are
	// skipped and no equivalent DDL is emitted anywhere else. This mirrors
	// the introspection payload, which reports the PK both as a constraint
	// and through the column list.
	emitted := false
	for _, c := range t.Constraints {
		if strings.HasPrefix(c.Definition, "PRIMARY KEY") {
			continue
		}
		fmt.Fprintf(b, "ALTER TABLE %s ADD CONSTRAINT %s %s;\n", t.Name, c.Name, c.Definition)
		emitted = true
	}
	if emitted {
		b.WriteString("\n")
	}

	if len(t.Indexes) > 0 {
		for _, ix := range t.Indexes {
			b.WriteString(terminate(ix.Definition))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(t.Triggers) > 0 {
		for _, tr := range t.Triggers {
			fmt.Fprintf(b, "CREATE TRIGGER %s %s %s ON %s %s;\n",
				tr.Name, tr.ActionTiming, tr.EventManipulation, t.Name, tr.ActionStatement)
		}
		b.WriteString("\n")
	}

	if len(t.Policies) > 0 {
		fmt.Fprintf(b, "ALTER TABLE %s ENABLE ROW LEVEL SECURITY;\n", t.Name)
		for _, p := range t.Policies {
			b.WriteString(policyDDL(t.Name, p))
		}
		b.WriteString("\n")
	}
}

// columnDef builds one column line: name, type, then NOT NULL and DEFAULT
// clauses when applicable.
func columnDef(c schema.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s %s", c.Name, c.DataType)
	if c.IsNullable == "NO" {
		b.WriteString(" NOT NULL")
	}
	if c.Default != nil && *c.Default != "" {
		fmt.Fprintf(&b, " DEFAULT %s", *c.Default)
	}
	return b.String()
}

func policyDDL(table string, p schema.Policy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE POLICY %s ON %s FOR %s", p.Name, table, p.Command)
	if len(p.Roles) > 0 {
		fmt.Fprintf(&b, " TO %s", strings.Join(p.Roles, ", "))
	}
	if p.Using != nil && *p.Using != "" {
		fmt.Fprintf(&b, " USING (%s)", *p.Using)
	}
	if p.WithCheck != nil && *p.WithCheck != "" {
		fmt.Fprintf(&b, " WITH CHECK (%s)", *p.WithCheck)
	}
	b.WriteString(";\n")
	return b.String()
}

// terminate trims whitespace and guarantees a trailing semicolon on a raw
// DDL fragment from the catalog.
func terminate(ddl string) string {
	s := strings.TrimSpace(ddl)
	if !strings.HasSuffix(s, ";") {
		s += ";"
	}
	return s
}
