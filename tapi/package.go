package tapi

import (
	"fmt"

	"github.com/tapigen/tapigen/subst"
)

// Package assembly: header, one block per requested operation and signature
// style, footer. Delete is emitted once in coltype form no matter how many
// styles are configured; its parameter list does not vary by style.
//
// Assembly is deterministic: identical configuration, metadata, templates
// and run date produce byte-identical output.

// procName returns the configured name for an operation's procedure.
func (g *Generator) procName(op Operation) string {
	return g.cfg.ProcName(op.String())
}

// opStyles returns the signature styles an operation is generated for.
func (g *Generator) opStyles(op Operation) []SignatureStyle {
	if op == OpDelete {
		return []SignatureStyle{StyleColType}
	}
	return g.styles
}

// PackageSpec renders the package specification source.
func (g *Generator) PackageSpec() (string, error) {
	header, footer, err := g.packageFrame("spec")
	if err != nil {
		return "", err
	}

	out := header
	for _, op := range g.ops {
		for _, style := range g.opStyles(op) {
			out += g.signature(op, style, true, g.procName(op)) + "\n"
		}
		out = g.render(out, nil)
	}
	out += footer
	return out, nil
}

// PackageBody renders the package body source.
func (g *Generator) PackageBody() (string, error) {
	header, footer, err := g.packageFrame("body")
	if err != nil {
		return "", err
	}

	out := header
	for _, op := range g.ops {
		for _, style := range g.opStyles(op) {
			block, err := g.body(op, style, g.procName(op))
			if err != nil {
				return "", err
			}
			out += block
		}
		out = g.render(out, nil)
	}
	out += "\n" + footer
	return out, nil
}

// packageFrame loads and renders the header and footer templates for a
// package spec or body.
func (g *Generator) packageFrame(typ string) (header, footer string, err error) {
	header, err = g.store.Load("packages", typ, "package_header")
	if err != nil {
		return "", "", fmt.Errorf("package %s for %s.%s: %w", typ, g.table.Schema, g.table.Name, err)
	}
	footer, err = g.store.Load("packages", typ, "package_footer")
	if err != nil {
		return "", "", fmt.Errorf("package %s for %s.%s: %w", typ, g.table.Schema, g.table.Name, err)
	}
	return g.render(header, nil), g.render(footer, nil), nil
}

// SpecFileName is the artifact name the spec is written under.
func (g *Generator) SpecFileName() string {
	return g.table.Name + "_tapi" + g.cfg.Files.SpecSuffix
}

// BodyFileName is the artifact name the body is written under.
func (g *Generator) BodyFileName() string {
	return g.table.Name + "_tapi" + g.cfg.Files.BodySuffix
}

// Triggers renders every trigger template against this table. The result
// maps artifact file names to source text.
func (g *Generator) Triggers() (map[string]string, error) {
	return g.auxArtifacts("triggers")
}

// Views renders every view template against this table.
func (g *Generator) Views() (map[string]string, error) {
	return g.auxArtifacts("views")
}

// auxArtifacts renders each template of a category once per table. The
// artifact name combines the table and template names, so employees with a
// "biu" trigger template yields employees_biu.sql.
func (g *Generator) auxArtifacts(category string) (map[string]string, error) {
	names, err := g.store.List(category, "")
	if err != nil {
		return nil, err
	}

	extra := subst.Context{
		"column_list_string_lc": g.columnList(nil, 2, ""),
		"column_list_string":    upper(g.columnList(nil, 2, "")),
	}

	out := make(map[string]string, len(names))
	for _, name := range names {
		tpl, err := g.store.Load(category, "", name)
		if err != nil {
			return nil, err
		}
		artifact := fmt.Sprintf("%s_%s.sql", g.table.Name, name)
		out[artifact] = g.render(tpl, extra)
	}
	return out, nil
}
