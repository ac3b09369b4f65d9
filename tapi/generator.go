package tapi

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tapigen/tapigen/internal/config"
	"github.com/tapigen/tapigen/subst"
	"github.com/tapigen/tapigen/templates"
)

// stab is the soft-tab placeholder which the substitution engine expands to
// the configured indent width.
const stab = "%" + subst.IndentKey + "%"

// Options configures a Generator beyond what tapigen.ini supplies.
type Options struct {
	// PackageOwner is the schema the generated packages are created in.
	PackageOwner string

	// Operations are the procedures to generate, in output order.
	Operations []Operation

	// RunDate appears in generated headers. Zero means time.Now.
	RunDate time.Time

	// Extra substitutions are layered over the configured ones and win on
	// key collisions.
	Extra map[string]string
}

// Generator renders the table API artifacts for one table. A Generator is
// cheap and single-use; the controller builds one per table. The template
// store and expression store may be shared across generators.
type Generator struct {
	cfg    *config.Config
	table  *Table
	store  *templates.Store
	exprs  *templates.ExpressionStore
	ops    []Operation
	styles []SignatureStyle
	owner  string
	global subst.Context
}

// NewGenerator wires a generator for one table. The signature styles come
// from configuration; the operations from opts.
func NewGenerator(cfg *config.Config, table *Table, store *templates.Store, exprs *templates.ExpressionStore, opts Options) (*Generator, error) {
	if len(opts.Operations) == 0 {
		return nil, fmt.Errorf("no api types requested for %s.%s", table.Schema, table.Name)
	}

	styles := make([]SignatureStyle, 0, len(cfg.API.SignatureStyles))
	for _, s := range cfg.API.SignatureStyles {
		st, err := ParseSignatureStyle(s)
		if err != nil {
			return nil, err
		}
		styles = append(styles, st)
	}

	g := &Generator{
		cfg:    cfg,
		table:  table,
		store:  store,
		exprs:  exprs,
		ops:    opts.Operations,
		styles: styles,
		owner:  strings.ToLower(opts.PackageOwner),
	}
	g.global = g.globalSubstitutions(opts)
	return g, nil
}

// globalSubstitutions builds the substitution layer shared by every template:
// the full configuration key space plus per-run and per-table values.
func (g *Generator) globalSubstitutions(opts Options) subst.Context {
	ctx := subst.Context{}
	for k, v := range g.cfg.Substitutions() {
		ctx[k] = v
	}

	runDate := opts.RunDate
	if runDate.IsZero() {
		runDate = time.Now()
	}
	if ctx["copyright_year"] == "current" {
		ctx["copyright_year"] = runDate.Format("2006")
	}

	ctx["spec_suffix"] = g.cfg.Files.SpecSuffix
	ctx["body_suffix"] = g.cfg.Files.BodySuffix
	ctx["run_date_time"] = runDate.Format("2006-01-02 15:04:05")
	ctx["package_owner_lc"] = g.owner
	ctx["schema_name_lc"] = g.table.Schema
	ctx["table_name_lc"] = g.table.Name
	ctx["table_name"] = strings.ToUpper(g.table.Name)
	ctx["schema_name"] = strings.ToUpper(g.table.Schema)

	for k, v := range opts.Extra {
		ctx[k] = v
	}
	return ctx
}

// indent returns the literal soft tab, an indent's worth of spaces.
func (g *Generator) indent() string {
	return strings.Repeat(" ", g.cfg.Format.IndentSpaces)
}

// render resolves placeholders in text against the global layer merged with
// extra, injecting the soft tab.
func (g *Generator) render(text string, extra subst.Context) string {
	ctx := g.global
	if len(extra) > 0 {
		ctx = subst.Merge(g.global, extra)
	}
	return subst.Render(text, ctx, g.cfg.Format.IndentSpaces)
}

// isAutoMaintained reports whether the column is system-maintained: listed in
// auto_maintained_cols or the row-version column.
func (g *Generator) isAutoMaintained(name string) bool {
	rv := g.cfg.API.RowVersionColumn
	if rv != "" && name == rv {
		return true
	}
	for _, c := range g.cfg.API.AutoMaintainedCols {
		if c == name {
			return true
		}
	}
	return false
}

// triggerSkipList returns the columns excluded from insert/update statements
// when a trigger maintains them; empty under the expression method.
func (g *Generator) triggerSkipList() []string {
	if g.cfg.API.AutoMaintainMethod != config.MaintainByTrigger {
		return nil
	}
	skip := append([]string(nil), g.cfg.API.AutoMaintainedCols...)
	if rv := g.cfg.API.RowVersionColumn; rv != "" {
		skip = append(skip, rv)
	}
	return skip
}

// MissingExpressionsError reports every auto-maintained column that lacks an
// insert or update expression template.
type MissingExpressionsError struct {
	Inserts []string
	Updates []string
}

func (e *MissingExpressionsError) Error() string {
	var b strings.Builder
	if len(e.Inserts) > 0 {
		fmt.Fprintf(&b, "columns missing insert expression templates: %s", strings.Join(e.Inserts, ", "))
		b.WriteString("\n  Expression templates belong under templates/column_expressions/inserts")
	}
	if len(e.Updates) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "columns missing update expression templates: %s", strings.Join(e.Updates, ", "))
		b.WriteString("\n  Expression templates belong under templates/column_expressions/updates")
	}
	return b.String()
}

// CheckExpressions verifies that every auto-maintained column has both an
// insert and an update expression template. All gaps are collected into one
// error so a single run reports the full list. Only the expression
// maintenance method requires expressions; under the trigger method this is
// a no-op.
func CheckExpressions(cfg *config.Config, exprs *templates.ExpressionStore) error {
	if cfg.API.AutoMaintainMethod != config.MaintainByExpression {
		return nil
	}

	seen := map[string]bool{}
	for _, c := range cfg.API.AutoMaintainedCols {
		seen[c] = true
	}
	if rv := cfg.API.RowVersionColumn; rv != "" {
		seen[rv] = true
	}
	cols := make([]string, 0, len(seen))
	for c := range seen {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	miss := &MissingExpressionsError{}
	for _, col := range cols {
		if _, ok := exprs.Inserts[col]; !ok {
			miss.Inserts = append(miss.Inserts, col)
		}
		if _, ok := exprs.Updates[col]; !ok {
			miss.Updates = append(miss.Updates, col)
		}
	}
	if len(miss.Inserts) > 0 || len(miss.Updates) > 0 {
		return miss
	}
	return nil
}

// columnExpression resolves the value expression assigned to a column in an
// insert, update or merge statement. Auto-maintained columns draw from the
// expression stores under the expression maintenance method; everything else
// binds the corresponding parameter (or source alias for merges).
func (g *Generator) columnExpression(style SignatureStyle, op assignOp, name string) string {
	if g.cfg.API.AutoMaintainMethod == config.MaintainByExpression && g.isAutoMaintained(name) {
		switch op {
		case assignCreate, assignMergeCreate:
			if expr, ok := g.exprs.Inserts[name]; ok && expr != "" {
				return expr
			}
		case assignModify, assignMergeModify:
			if expr, ok := g.exprs.Updates[name]; ok && expr != "" {
				return expr
			}
		default:
			panic(fmt.Sprintf("tapi: invalid assignment operation %d", int(op)))
		}
	}

	switch op {
	case assignCreate, assignModify:
		if style == StyleRowType {
			return "p_row." + name
		}
		return "p_" + name
	case assignMergeCreate, assignMergeModify:
		return "src." + name
	}
	panic(fmt.Sprintf("tapi: invalid assignment operation %d", int(op)))
}
