package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/tapigen/tapigen/internal/config"
	"github.com/tapigen/tapigen/sink"
	"github.com/tapigen/tapigen/tapi"
	"github.com/tapigen/tapigen/templates"
)

const testINI = `[project]
company_name = Acme

[api_controls]
row_vers_column_name = row_version
signature_types = coltype
col_auto_maintain_method = trigger
return_key_columns = true
`

// testProject lays out a project directory with config and default templates
// and returns the loaded config plus the template root.
func testProject(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFilename), []byte(testINI), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	tplRoot := filepath.Join(dir, "templates")
	if err := templates.WriteDefaults(tplRoot); err != nil {
		t.Fatalf("WriteDefaults() error: %v", err)
	}
	return cfg, tplRoot
}

func testTable() *tapi.Table {
	return &tapi.Table{
		Schema: "hr",
		Name:   "employees",
		Columns: []tapi.TableColumn{
			{Name: "employee_id", DataType: "number", PK: true, Keyed: true},
			{Name: "first_name", DataType: "varchar2", Nullable: true},
			{Name: "row_version", DataType: "number", RowVersion: true},
		},
		MaxNameLen: len("employee_id"),
	}
}

func TestGenerateTableWritesAllArtifacts(t *testing.T) {
	cfg, tplRoot := testProject(t)
	store := templates.NewStore(tplRoot)
	exprs, err := templates.LoadExpressions(tplRoot)
	if err != nil {
		t.Fatal(err)
	}

	buf := sink.NewBuffer()
	job := tableJob{table: testTable(), packages: true}
	err = generateTable(context.Background(), cfg, store, exprs, buf,
		generateOptions{owner: "hr"}, tapi.Operations, job)
	if err != nil {
		t.Fatalf("generateTable() error: %v", err)
	}
	if buf.Len() != 2 {
		t.Errorf("wrote %d artifacts, want spec and body: %v", buf.Len(), buf.Names())
	}
}

func TestGenerateTableFailureWritesNothing(t *testing.T) {
	cfg, tplRoot := testProject(t)

	// The body is the only consumer of the per-operation procedure
	// templates; removing one makes body rendering fail after the spec has
	// already rendered.
	if err := os.Remove(filepath.Join(tplRoot, "packages", "procedures", "insert.tpt")); err != nil {
		t.Fatal(err)
	}

	store := templates.NewStore(tplRoot)
	exprs, err := templates.LoadExpressions(tplRoot)
	if err != nil {
		t.Fatal(err)
	}

	buf := sink.NewBuffer()
	job := tableJob{table: testTable(), packages: true}
	err = generateTable(context.Background(), cfg, store, exprs, buf,
		generateOptions{owner: "hr"}, tapi.Operations, job)
	if err == nil {
		t.Fatal("generateTable() should fail when a procedure template is missing")
	}
	if buf.Len() != 0 {
		t.Errorf("partial output written for failed table: %v", buf.Names())
	}
}
