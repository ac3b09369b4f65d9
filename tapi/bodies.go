package tapi

import (
	"fmt"
	"strings"

	"github.com/tapigen/tapigen/subst"
)

// Body assembly. Each operation loads its procedure template and splices in
// the rendered signature and fragments. Fragments are supplied in lowercase
// and uppercase forms; soft-tab placeholders survive the case conversion and
// resolve on render.

func upper(s string) string {
	return strings.ToUpper(s)
}

// body renders one procedure implementation for the package body.
func (g *Generator) body(op Operation, style SignatureStyle, procName string) (string, error) {
	tpl, err := g.store.Load("packages", "procedures", op.String())
	if err != nil {
		return "", fmt.Errorf("%s body for %s.%s: %w", op, g.table.Schema, g.table.Name, err)
	}

	subs := g.bodySubstitutions(op, style)
	subs["procedure_signature"] = g.signature(op, style, false, procName)
	subs["procedure_name"] = procName

	return g.render(tpl, subs), nil
}

func (g *Generator) bodySubstitutions(op Operation, style SignatureStyle) subst.Context {
	switch op {
	case OpInsert:
		return g.insertSubstitutions(style)
	case OpSelect:
		return g.selectSubstitutions(style)
	case OpUpdate:
		return g.updateSubstitutions(style)
	case OpUpsert:
		return g.upsertSubstitutions(style)
	case OpDelete:
		return g.deleteSubstitutions(style)
	case OpMerge:
		return g.mergeSubstitutions(style)
	}
	panic(fmt.Sprintf("tapi: invalid operation %d", int(op)))
}

func (g *Generator) insertSubstitutions(style SignatureStyle) subst.Context {
	skip := g.triggerSkipList()
	columnList := g.columnList(skip, 4, "")
	parameterList := g.parameterList(style, assignCreate, skip, 4)

	returning := ""
	if g.cfg.API.ReturnKeyColumns {
		returning = g.returningIntoClause(style, nil, 4)
	}

	return subst.Context{
		"column_list_string_lc":    columnList,
		"column_list_string":       upper(columnList),
		"parameter_list_string_lc": parameterList,
		"parameter_list_string":    upper(parameterList),
		"returning_clause_lc":      returning,
		"returning_clause":         upper(returning),
	}
}

func (g *Generator) selectSubstitutions(style SignatureStyle) subst.Context {
	columnList := g.columnList(nil, 3, "")
	parameterList := g.parameterList(style, assignCreate, nil, 3)
	predicates := g.predicates(style, 2)

	return subst.Context{
		"column_list_string_lc":    columnList,
		"column_list_string":       upper(columnList),
		"parameter_list_string_lc": parameterList,
		"parameter_list_string":    upper(parameterList),
		"key_predicates_string_lc": predicates,
		"key_predicates_string":    upper(predicates),
	}
}

func (g *Generator) updateSubstitutions(style SignatureStyle) subst.Context {
	skip := g.triggerSkipList()
	predicates := g.predicates(style, 3)
	assignments := g.updateAssignments(style, assignModify, true, skip, 3)
	returnColumns := g.returnColumnsList(3)
	returnParams := g.returnParameterList(style, 3)

	returning := ""
	if g.cfg.API.ReturnKeyColumns {
		returning = g.returningIntoClause(style, nil, 4)
	}

	return subst.Context{
		"key_predicates_string_lc":     predicates,
		"key_predicates_string":        upper(predicates),
		"update_assignments_string_lc": assignments,
		"update_assignments_string":    upper(assignments),
		"return_columns_list_lc":       returnColumns,
		"return_columns_list":          upper(returnColumns),
		"return_parameter_list_lc":     returnParams,
		"return_parameter_list":        upper(returnParams),
		"returning_clause_lc":          returning,
		"returning_clause":             upper(returning),
	}
}

// upsertSkipList mirrors the update-side trigger skip, but only when a
// row-version column is configured at all.
func (g *Generator) upsertSkipList() []string {
	if g.cfg.API.RowVersionColumn == "" {
		return nil
	}
	return g.triggerSkipList()
}

func (g *Generator) upsertSubstitutions(style SignatureStyle) subst.Context {
	skip := g.upsertSkipList()
	columnList := g.columnList(skip, 4, "")
	parameterList := g.parameterList(style, assignCreate, skip, 4)
	predicates := g.predicates(style, 3)
	assignments := g.updateAssignments(style, assignModify, false, skip, 3)

	insReturning := ""
	updReturning := ""
	if g.cfg.API.ReturnKeyColumns {
		insReturning = g.returningIntoClause(style, nil, 3)
		updReturning = g.returningIntoClause(style, nil, 3)
	}

	return subst.Context{
		"column_list_string_lc":        columnList,
		"column_list_string":           upper(columnList),
		"parameter_list_string_lc":     parameterList,
		"parameter_list_string":        upper(parameterList),
		"key_predicates_string_lc":     predicates,
		"key_predicates_string":        upper(predicates),
		"update_assignments_string_lc": assignments,
		"update_assignments_string":    upper(assignments),
		"ins_returning_clause_lc":      insReturning,
		"ins_returning_clause":         upper(insReturning),
		"upd_returning_clause_lc":      updReturning,
		"upd_returning_clause":         upper(updReturning),
	}
}

func (g *Generator) deleteSubstitutions(style SignatureStyle) subst.Context {
	// Delete predicates always bind per-column parameters; the delete
	// signature has no rowtype form.
	predicates := g.predicates(StyleColType, 3)

	returning := ""
	if g.cfg.API.ReturnKeyColumns {
		returning = g.returningIntoClause(style, g.table.AKColumns(), 4)
	}

	return subst.Context{
		"key_predicates_string_lc": predicates,
		"key_predicates_string":    upper(predicates),
		"returning_clause_lc":      returning,
		"returning_clause":         upper(returning),
	}
}

func (g *Generator) mergeSubstitutions(style SignatureStyle) subst.Context {
	skip := append([]string(nil), g.cfg.API.AutoMaintainedCols...)
	if rv := g.table.RowVersionColumn(); rv != "" {
		skip = append(skip, rv)
	}

	aliasList := g.mrgParamAliasList(style, skip, 6)
	predicates := g.mrgPredicates(5)
	assignments := g.mrgUpdateAssignments(style, assignMergeModify, skip, 4)
	columnList := g.columnList(skip, 5, "")
	srcColumnList := g.mrgSrcColumnList(style, assignMergeCreate, skip, 5)

	return subst.Context{
		"mrg_param_alias_list_lc":       aliasList,
		"mrg_param_alias_list":          upper(aliasList),
		"mrg_predicates_string_lc":      predicates,
		"mrg_predicates_string":         upper(predicates),
		"key_predicates_string_lc":      predicates,
		"key_predicates_string":         upper(predicates),
		"update_assignments_string_lc":  assignments,
		"update_assignments_string":     upper(assignments),
		"column_list_string_lc":         columnList,
		"column_list_string":            upper(columnList),
		"mrg_src_column_list_string_lc": srcColumnList,
		"mrg_src_column_list_string":    upper(srcColumnList),
	}
}
