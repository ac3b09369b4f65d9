package tapi

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tapigen/tapigen/dbstrings"
	"github.com/tapigen/tapigen/internal/config"
)

// Fragment builders. Each walks the table's columns in catalog order and
// produces one textual fragment for splicing into a procedure template.
//
// The leader/separator contract: the first emitted item carries a short
// leader (the template line supplies its indent), every later item starts a
// new line indented by softTabs soft tabs and leads with the separator
// (comma or "and"). Skipped columns never consume a position, so the first
// kept column always gets the first-item leader.

// tabs returns softTabs soft-tab placeholders.
func tabs(softTabs int) string {
	return strings.Repeat(stab, softTabs)
}

// alignWidth is the padding applied to column names in SET assignment lists.
const alignWidth = 30

// sigAlignWidth is the padding applied before an appended parameter default.
const sigAlignWidth = 75

// columnList renders a comma separated column list, one column per line,
// optionally prefixed (e.g. "p_").
func (g *Generator) columnList(skip []string, softTabs int, prefix string) string {
	t := tabs(softTabs)
	var b strings.Builder
	n := 0
	for _, col := range g.table.Columns {
		if slices.Contains(skip, col.Name) {
			continue
		}
		n++
		if n == 1 {
			fmt.Fprintf(&b, "  %s%s", prefix, col.Name)
		} else {
			fmt.Fprintf(&b, "\n%s, %s%s", t, prefix, col.Name)
		}
	}
	return b.String()
}

// parameterList renders the values list of an insert (or merge source),
// resolving each column through the assignment resolver.
func (g *Generator) parameterList(style SignatureStyle, op assignOp, skip []string, softTabs int) string {
	t := tabs(softTabs)
	var b strings.Builder
	n := 0
	for _, col := range g.table.Columns {
		if slices.Contains(skip, col.Name) {
			continue
		}
		n++
		assign := g.columnExpression(style, op, col.Name)
		if n == 1 {
			fmt.Fprintf(&b, "  %s", assign)
		} else {
			fmt.Fprintf(&b, "\n%s, %s", t, assign)
		}
	}
	return b.String()
}

// predicates renders the AND-joined key equality predicates over the primary
// key columns.
func (g *Generator) predicates(style SignatureStyle, softTabs int) string {
	t := tabs(softTabs)
	var b strings.Builder
	n := 0
	for _, name := range g.table.PKColumns() {
		n++
		param := "p_" + name
		if style == StyleRowType {
			param = "p_row." + name
		}
		if n == 1 {
			fmt.Fprintf(&b, "   %s = %s", name, param)
		} else {
			fmt.Fprintf(&b, "\n%s  and %s = %s", t, name, param)
		}
	}
	return b.String()
}

// noopAssignment wraps a column assignment in a CASE preserving the current
// value when the parameter equals the no-op sentinel. Columns with a declared
// default, keyed columns and the row-version column are exempt and get "".
func (g *Generator) noopAssignment(col TableColumn, softTabs int) string {
	if col.HasDefault || col.Keyed || col.RowVersion {
		return ""
	}
	noop := g.cfg.API.NoopColumnString
	t := tabs(softTabs)

	var b strings.Builder
	b.WriteString("case\n")
	fmt.Fprintf(&b, "%s%s  when p_%s = '%s' then %s\n", t, stab, col.Name, noop, col.Name)
	fmt.Fprintf(&b, "%s%s  else p_%s\n", t, stab, col.Name)
	fmt.Fprintf(&b, "%s  end", t)
	return b.String()
}

// updateAssignments renders the SET list of an update statement. Primary key
// columns never appear. Under the coltype style with a no-op sentinel
// configured, eligible assignments are wrapped in the no-op CASE; the
// rowtype style additionally drops the row-version column when a trigger
// maintains it.
func (g *Generator) updateAssignments(style SignatureStyle, op assignOp, noop bool, skip []string, softTabs int) string {
	withNoop := noop && style == StyleColType && g.cfg.API.NoopColumnString != ""
	t := tabs(softTabs)
	var b strings.Builder
	n := 0
	for _, col := range g.table.Columns {
		if col.PK || slices.Contains(skip, col.Name) {
			continue
		}
		if style == StyleRowType && col.RowVersion && g.cfg.API.AutoMaintainMethod == config.MaintainByTrigger {
			continue
		}
		n++

		assign := ""
		if withNoop {
			assign = g.noopAssignment(col, 14)
		}
		if assign == "" {
			assign = g.columnExpression(style, op, col.Name)
		}

		if n == 1 {
			fmt.Fprintf(&b, " %s = %s", dbstrings.PadRight(col.Name, alignWidth), assign)
		} else {
			fmt.Fprintf(&b, "\n%s, %s = %s", t, dbstrings.PadRight(col.Name, alignWidth), assign)
		}
	}
	return b.String()
}

// returningColumns renders the RETURNING column list over the in-out and
// out-only columns.
func (g *Generator) returningColumns(skip []string, softTabs int) string {
	t := tabs(softTabs)
	var b strings.Builder
	b.WriteString("returning\n")
	n := 0
	for _, name := range g.table.ReturnColumns() {
		if slices.Contains(skip, name) {
			continue
		}
		n++
		if n == 1 {
			fmt.Fprintf(&b, "%s  %s\n", t, name)
		} else {
			fmt.Fprintf(&b, "%s, %s\n", t, name)
		}
	}
	return b.String()
}

// intoParameters renders the INTO counterpart of returningColumns.
func (g *Generator) intoParameters(style SignatureStyle, skip []string, softTabs int) string {
	t := tabs(softTabs)
	var b strings.Builder
	fmt.Fprintf(&b, "%sinto\n", t)
	n := 0
	for _, name := range g.table.ReturnColumns() {
		if slices.Contains(skip, name) {
			continue
		}
		n++
		param := "p_" + name
		if style == StyleRowType {
			param = "p_row." + name
		}
		if n == 1 {
			fmt.Fprintf(&b, "%s  %s", t, param)
		} else {
			fmt.Fprintf(&b, "\n%s, %s", t, param)
		}
	}
	return b.String()
}

// returningIntoClause pairs returningColumns with intoParameters.
func (g *Generator) returningIntoClause(style SignatureStyle, skip []string, softTabs int) string {
	return g.returningColumns(skip, softTabs) + g.intoParameters(style, skip, softTabs)
}

// returnParameterList renders the parameters receiving returned values, each
// on its own line.
func (g *Generator) returnParameterList(style SignatureStyle, softTabs int) string {
	t := tabs(softTabs)
	var b strings.Builder
	n := 0
	for _, name := range g.table.ReturnColumns() {
		n++
		param := "p_" + name
		if style == StyleRowType {
			param = "p_row." + name
		}
		if n == 1 {
			fmt.Fprintf(&b, "\n%s  %s", t, param)
		} else {
			fmt.Fprintf(&b, "\n%s, %s", t, param)
		}
	}
	return b.String()
}

// returnColumnsList renders the columns whose values are returned, each on
// its own line.
func (g *Generator) returnColumnsList(softTabs int) string {
	t := tabs(softTabs)
	var b strings.Builder
	n := 0
	for _, name := range g.table.ReturnColumns() {
		n++
		if n == 1 {
			fmt.Fprintf(&b, "\n%s  %s", t, name)
		} else {
			fmt.Fprintf(&b, "\n%s, %s", t, name)
		}
	}
	return b.String()
}

// mrgParamAliasList renders the merge source select list, aliasing each
// parameter to its column name.
func (g *Generator) mrgParamAliasList(style SignatureStyle, skip []string, softTabs int) string {
	t := tabs(softTabs)
	var b strings.Builder
	n := 0
	for _, col := range g.table.Columns {
		if slices.Contains(skip, col.Name) {
			continue
		}
		n++
		prefix := "p_"
		if style == StyleRowType {
			prefix = "p_row."
		}
		padded := prefix + dbstrings.PadRight(col.Name, alignWidth)
		if n == 1 {
			fmt.Fprintf(&b, "  %s as %s", padded, col.Name)
		} else {
			fmt.Fprintf(&b, "\n%s, %s as %s", t, padded, col.Name)
		}
	}
	return b.String()
}

// mrgPredicates renders the merge ON clause predicates joining target to
// source over the primary key. Both signature styles produce the same text:
// the source alias already carries the parameter values.
func (g *Generator) mrgPredicates(softTabs int) string {
	t := tabs(softTabs)
	var b strings.Builder
	n := 0
	for _, name := range g.table.PKColumns() {
		n++
		if n == 1 {
			fmt.Fprintf(&b, "  tgt.%s = src.%s", name, name)
		} else {
			fmt.Fprintf(&b, "\n%sand tgt.%s = src.%s", t, name, name)
		}
	}
	return b.String()
}

// mrgUpdateAssignments renders the merge WHEN MATCHED set list. Primary key
// columns never appear.
func (g *Generator) mrgUpdateAssignments(style SignatureStyle, op assignOp, skip []string, softTabs int) string {
	t := tabs(softTabs)
	var b strings.Builder
	n := 0
	for _, col := range g.table.Columns {
		if col.PK || slices.Contains(skip, col.Name) {
			continue
		}
		n++
		assign := g.columnExpression(style, op, col.Name)
		if n == 1 {
			fmt.Fprintf(&b, "  %s = %s", dbstrings.PadRight(col.Name, alignWidth), assign)
		} else {
			fmt.Fprintf(&b, "\n%s, %s = %s", t, dbstrings.PadRight(col.Name, alignWidth), assign)
		}
	}
	return b.String()
}

// mrgSrcColumnList renders the merge WHEN NOT MATCHED insert values, one
// resolved assignment per column.
func (g *Generator) mrgSrcColumnList(style SignatureStyle, op assignOp, skip []string, softTabs int) string {
	t := tabs(softTabs)
	var b strings.Builder
	n := 0
	for _, col := range g.table.Columns {
		if slices.Contains(skip, col.Name) {
			continue
		}
		n++
		assign := g.columnExpression(style, op, col.Name)
		if n == 1 {
			fmt.Fprintf(&b, "  %s", assign)
		} else {
			fmt.Fprintf(&b, "\n%s, %s", t, assign)
		}
	}
	return b.String()
}
