package render

import (
	"fmt"
	"strings"

	"github.com/schemadump/schemadump/internal/schema"
)

// Placeholder strings for absent catalog values in Markdown tables.
const (
	mdDash = "-"    // descriptions, using / with_check expressions
	mdNull = "NULL" // column defaults
)

// Markdown renders the full snapshot as a human-readable document:
// overview counts, a table of contents, per-table sections, then
// per-function sections. Section headers are always emitted, even for an
// empty snapshot; per-table subsections are omitted when their collection
// is empty.
func Markdown(info *schema.Info) string {
	var b strings.Builder

	b.WriteString("# Database Schema Documentation\n\n")

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "- Tables: %d\n", len(info.Tables))
	fmt.Fprintf(&b, "- Functions: %d\n\n", len(info.Functions))

	b.WriteString("## Table of Contents\n\n")
	b.WriteString("### Tables\n\n")
	for _, t := range info.Tables {
		fmt.Fprintf(&b, "- [%s](#%s)\n", t.Name, strings.ToLower(t.Name))
	}
	b.WriteString("\n### Functions\n\n")
	for _, f := range info.Functions {
		fmt.Fprintf(&b, "- [%s](#%s)\n", f.Name, strings.ToLower(f.Name))
	}
	b.WriteString("\n## Tables\n\n")
	for i := range info.Tables {
		writeTableSection(&b, &info.Tables[i])
	}

	b.WriteString("## Functions\n\n")
	for i := range info.Functions {
		writeFunctionSection(&b, &info.Functions[i])
	}

	return b.String()
}

// TableMarkdown renders a single table's section as a standalone document.
func TableMarkdown(t *schema.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Table: %s\n\n", t.Name)
	writeTableSection(&b, t)
	return b.String()
}

func writeTableSection(b *strings.Builder, t *schema.Table) {
	fmt.Fprintf(b, "### %s\n\n", t.Name)

	if len(t.Columns) > 0 {
		b.WriteString("#### Columns\n\n")
		b.WriteString("| Column | Type | Nullable | Default | Description |\n")
		b.WriteString("|--------|------|----------|---------|-------------|\n")
		for _, c := range t.Columns {
			fmt.Fprintf(b, "| %s | %s | %s | %s | %s |\n",
				c.Name, c.DataType, c.IsNullable,
				orElse(c.Default, mdNull), orElse(c.Description, mdDash))
		}
		b.WriteString("\n")
	}

	if len(t.Constraints) > 0 {
		b.WriteString("#### Constraints\n\n")
		b.WriteString("| Name | Type | Columns | Definition |\n")
		b.WriteString("|------|------|---------|------------|\n")
		for _, c := range t.Constraints {
			cols := mdDash
			if len(c.Columns) > 0 {
				cols = strings.Join(c.Columns, ", ")
			}
			fmt.Fprintf(b, "| %s | %s | %s | %s |\n", c.Name, c.Type, cols, c.Definition)
		}
		b.WriteString("\n")
	}

	if len(t.ForeignKeys) > 0 {
		b.WriteString("#### Foreign Keys\n\n")
		b.WriteString("| Column | References | Constraint |\n")
		b.WriteString("|--------|------------|------------|\n")
		for _, fk := range t.ForeignKeys {
			fmt.Fprintf(b, "| %s | %s.%s | %s |\n",
				fk.Column, fk.ForeignTable, fk.ForeignColumn, fk.Constraint)
		}
		b.WriteString("\n")
	}

	if len(t.Indexes) > 0 {
		b.WriteString("#### Indexes\n\n")
		b.WriteString("| Name | Definition |\n")
		b.WriteString("|------|------------|\n")
		for _, ix := range t.Indexes {
			fmt.Fprintf(b, "| %s | %s |\n", ix.Name, ix.Definition)
		}
		b.WriteString("\n")
	}

	if len(t.Triggers) > 0 {
		b.WriteString("#### Triggers\n\n")
		for _, tr := range t.Triggers {
			fmt.Fprintf(b, "**%s** (%s %s): %s\n\n",
				tr.Name, tr.ActionTiming, tr.EventManipulation, tr.ActionStatement)
			if tr.FunctionDefinition != "" {
				fmt.Fprintf(b, "```sql\n%s\n```\n\n", strings.TrimSpace(tr.FunctionDefinition))
			}
		}
	}

	if len(t.Policies) > 0 {
		b.WriteString("#### Policies\n\n")
		b.WriteString("| Name | Command | Permissive | Roles | Using | With Check |\n")
		b.WriteString("|------|---------|------------|-------|-------|------------|\n")
		for _, p := range t.Policies {
			roles := mdDash
			if len(p.Roles) > 0 {
				roles = strings.Join(p.Roles, ", ")
			}
			fmt.Fprintf(b, "| %s | %s | %s | %s | %s | %s |\n",
				p.Name, p.Command, p.Permissive, roles,
				orElse(p.Using, mdDash), orElse(p.WithCheck, mdDash))
		}
		b.WriteString("\n")
	}
}

func writeFunctionSection(b *strings.Builder, f *schema.Function) {
	fmt.Fprintf(b, "### %s\n\n", f.Name)
	fmt.Fprintf(b, "- Language: %s\n", f.Language)
	fmt.Fprintf(b, "- Returns: %s\n", f.ReturnType)
	fmt.Fprintf(b, "- Arguments: %s\n\n", f.ArgumentTypes)
	if f.Description != nil && *f.Description != "" {
		fmt.Fprintf(b, "%s\n\n", *f.Description)
	}
	fmt.Fprintf(b, "```sql\n%s\n```\n\n", strings.TrimSpace(f.Definition))
}

func orElse(v *string, placeholder string) string {
	if v == nil || *v == "" {
		return placeholder
	}
	return *v
}
