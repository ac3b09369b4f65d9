package tapi

import (
	"fmt"
	"slices"
	"strings"

	"github.com/tapigen/tapigen/dbstrings"
)

// Signature assembly. Signatures are rendered with literal indentation (the
// soft tab resolved to spaces) because they are substituted into templates as
// finished text.

// banner renders the comment block preceding each procedure declaration.
func (g *Generator) banner(desc string) string {
	ind := g.indent()
	dashes := strings.Repeat("-", 80-len(ind))

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(ind + dashes + "\n")
	fmt.Fprintf(&b, "%s-- %s TAPI for: %s.%s\n", ind, desc, g.table.Schema, g.table.Name)
	b.WriteString(ind + dashes + "\n")
	return b.String()
}

// Parameter directions, padded so the type column lines up.
func (g *Generator) dirInOut() string { return g.indent() + "in out" }
func (g *Generator) dirOut() string   { return g.indent() + "   out" }
func (g *Generator) dirIn() string    { return g.indent() + "in    " }

// paramLine renders one parameter declaration line, without trailing newline.
func (g *Generator) paramLine(first bool, name, direction, typ string) string {
	ind := g.indent()
	leader := ", "
	if first {
		leader = "  "
	}
	padded := dbstrings.PadRight(name, g.table.MaxNameLen+g.cfg.Format.IndentSpaces)
	return ind + ind + leader + "p_" + padded + direction + ind + typ
}

// colRef is the %type reference anchoring a parameter to its column.
func (g *Generator) colRef(name string) string {
	return g.table.Name + "." + name + "%type"
}

// sigOpen renders the procedure line and opening parenthesis.
func (g *Generator) sigOpen(procName string) string {
	ind := g.indent()
	return fmt.Sprintf("%sprocedure %s\n%s(\n", ind, procName, ind)
}

// sigClose terminates the parameter list: with a semicolon for a package
// spec, with "is" for a package body.
func (g *Generator) sigClose(spec bool) string {
	ind := g.indent()
	if spec {
		return ind + ");\n"
	}
	return ind + ")\n" + ind + "is"
}

// inAutoList reports membership in the configured auto_maintained_cols list.
// Unlike isAutoMaintained this does not imply the row-version column.
func (g *Generator) inAutoList(name string) bool {
	return slices.Contains(g.cfg.API.AutoMaintainedCols, name)
}

// signature renders the procedure signature for an operation. Delete ignores
// the signature style: its parameter list is the primary key plus the
// row-version column regardless.
func (g *Generator) signature(op Operation, style SignatureStyle, spec bool, procName string) string {
	if op == OpDelete {
		return g.deleteSig(spec, procName)
	}
	if style == StyleRowType {
		return g.rowtypeSig(op, spec, procName)
	}
	return g.coltypeSig(op, spec, procName)
}

func (g *Generator) coltypeSig(op Operation, spec bool, procName string) string {
	var b strings.Builder
	b.WriteString(g.banner(op.description()))
	b.WriteString(g.sigOpen(procName))

	ind := g.indent()
	n := 0
	for _, col := range g.table.Columns {
		// Select exposes every column; the writing operations leave the
		// auto-maintained ones to the maintenance policy.
		if op != OpSelect && g.inAutoList(col.Name) {
			continue
		}
		n++

		var dir string
		switch {
		case col.Keyed:
			dir = g.dirInOut()
		case op == OpSelect:
			dir = g.dirOut()
		case col.RowVersion:
			dir = g.dirOut()
		default:
			dir = g.dirIn()
		}

		param := g.paramLine(n == 1, col.Name, dir, g.colRef(col.Name))

		switch {
		case op == OpInsert && g.cfg.API.IncludeDefaults && col.HasDefault && !(col.RowVersion && !col.Keyed):
			param = dbstrings.PadRight(param, sigAlignWidth)
			param += ind + " := " + col.Default
		case op == OpUpdate && g.cfg.API.NoopColumnString != "" && !col.Keyed && !col.RowVersion:
			param = dbstrings.PadRight(param, sigAlignWidth)
			param += ind + " := '" + g.cfg.API.NoopColumnString + "'"
		}

		b.WriteString(param + "\n")
	}

	if g.cfg.API.IncludeRowID {
		b.WriteString(g.paramLine(n == 0, "rowid", g.dirInOut(), "rowid") + "\n")
	}

	b.WriteString(g.sigClose(spec))
	return b.String()
}

func (g *Generator) rowtypeSig(op Operation, spec bool, procName string) string {
	var b strings.Builder
	b.WriteString(g.banner(op.description()))
	b.WriteString(g.sigOpen(procName))

	n := 0
	for _, col := range g.table.Columns {
		if g.inAutoList(col.Name) || !col.PK {
			continue
		}
		n++
		b.WriteString(g.paramLine(n == 1, col.Name, g.dirIn(), g.colRef(col.Name)) + "\n")
	}

	if g.cfg.API.IncludeRowID {
		b.WriteString(g.paramLine(n == 0, "rowid", g.dirInOut(), "rowid") + "\n")
		n++
	}

	rowDir := g.dirInOut()
	if op == OpSelect {
		rowDir = g.dirOut()
	}
	b.WriteString(g.paramLine(false, "row", rowDir, g.table.Name+"%rowtype") + "\n")

	b.WriteString(g.sigClose(spec))
	return b.String()
}

func (g *Generator) deleteSig(spec bool, procName string) string {
	var b strings.Builder
	b.WriteString(g.banner(OpDelete.description()))
	b.WriteString(g.sigOpen(procName))

	ind := g.indent()
	n := 0
	for _, col := range g.table.Columns {
		if !col.PK && !col.RowVersion {
			continue
		}
		n++
		param := g.paramLine(n == 1, col.Name, g.dirInOut(), g.colRef(col.Name))
		if g.cfg.API.IncludeDefaults && col.HasDefault {
			param += ind + " := " + col.Default
		}
		b.WriteString(param + "\n")
	}

	if g.cfg.API.IncludeRowID {
		b.WriteString(g.paramLine(n == 0, "rowid", g.dirInOut(), "rowid") + "\n")
	}

	b.WriteString(g.sigClose(spec))
	return b.String()
}
