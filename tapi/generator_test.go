package tapi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tapigen/tapigen/catalog"
	"github.com/tapigen/tapigen/internal/config"
	"github.com/tapigen/tapigen/templates"
)

const employeesINI = `[project]
company_name = Acme
copyright_year = current

[api_controls]
row_vers_column_name = row_version
auto_maintained_cols = created_by, created_on, updated_by, updated_on
signature_types = coltype, rowtype
col_auto_maintain_method = trigger
include_defaults = true
return_key_columns = true
noop_column_string = auto
`

// testConfig loads a Config from the given tapigen.ini content.
func testConfig(t *testing.T, ini string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFilename), []byte(ini), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("config.Load() error: %v", err)
	}
	return cfg
}

// employeesTable is the reference table the output tests assert against:
// a keyed id, three plain columns (one with a default), the four audit
// columns and a row-version column.
func employeesTable() *Table {
	return &Table{
		Schema: "hr",
		Name:   "employees",
		Columns: []TableColumn{
			{Name: "employee_id", DataType: "number", PK: true, Keyed: true},
			{Name: "first_name", DataType: "varchar2", Nullable: true},
			{Name: "last_name", DataType: "varchar2"},
			{Name: "salary", DataType: "number", Default: "0", HasDefault: true},
			{Name: "created_by", DataType: "varchar2"},
			{Name: "created_on", DataType: "timestamp"},
			{Name: "updated_by", DataType: "varchar2"},
			{Name: "updated_on", DataType: "timestamp"},
			{Name: "row_version", DataType: "number", RowVersion: true},
		},
		MaxNameLen: 11,
	}
}

// testGenerator wires a generator over the starter templates.
func testGenerator(t *testing.T, cfg *config.Config, table *Table, opts Options) *Generator {
	t.Helper()
	root := filepath.Join(t.TempDir(), "templates")
	if err := templates.WriteDefaults(root); err != nil {
		t.Fatal(err)
	}
	store := templates.NewStore(root)
	exprs, err := templates.LoadExpressions(root)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Operations == nil {
		opts.Operations = Operations
	}
	if opts.PackageOwner == "" {
		opts.PackageOwner = "hr"
	}
	if opts.RunDate.IsZero() {
		opts.RunDate = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	}
	g, err := NewGenerator(cfg, table, store, exprs, opts)
	if err != nil {
		t.Fatalf("NewGenerator() error: %v", err)
	}
	return g
}

func TestNewGeneratorRequiresOperations(t *testing.T) {
	cfg := testConfig(t, employeesINI)
	store := templates.NewStore(t.TempDir())
	exprs := &templates.ExpressionStore{}

	_, err := NewGenerator(cfg, employeesTable(), store, exprs, Options{PackageOwner: "hr"})
	if err == nil {
		t.Fatal("NewGenerator() should reject an empty operation list")
	}
}

func TestPackageSpecContent(t *testing.T) {
	cfg := testConfig(t, employeesINI)
	g := testGenerator(t, cfg, employeesTable(), Options{})

	spec, err := g.PackageSpec()
	if err != nil {
		t.Fatalf("PackageSpec() error: %v", err)
	}

	if !strings.HasPrefix(spec, "create or replace package hr.employees_tapi\n") {
		t.Errorf("spec header wrong:\n%s", spec[:min(len(spec), 200)])
	}
	if !strings.HasSuffix(spec, "end employees_tapi;\n/\n") {
		t.Errorf("spec footer wrong:\n%s", spec[len(spec)-60:])
	}
	if !strings.Contains(spec, "Copyright (c) 2026 Acme") {
		t.Error("spec should resolve copyright_year=current to the run year")
	}
	if !strings.Contains(spec, "2026-03-14 09:30:00") {
		t.Error("spec should carry the run date")
	}

	for _, proc := range []string{"ins", "get", "upd", "ups", "del", "mrg"} {
		if !strings.Contains(spec, "procedure "+proc+"\n") {
			t.Errorf("spec missing procedure %q", proc)
		}
	}

	// Two styles configured: every operation except delete appears twice.
	if got := strings.Count(spec, "procedure ins\n"); got != 2 {
		t.Errorf("insert declared %d times, want 2 (one per signature style)", got)
	}
	if got := strings.Count(spec, "procedure del\n"); got != 1 {
		t.Errorf("delete declared %d times, want exactly 1", got)
	}

	if strings.Contains(spec, "%STAB%") {
		t.Error("spec contains unresolved soft tabs")
	}
	for _, key := range []string{"%procedure_signature%", "%table_name_lc%", "%column_list_string_lc%"} {
		if strings.Contains(spec, key) {
			t.Errorf("spec contains unresolved placeholder %s", key)
		}
	}
}

func TestPackageBodyContent(t *testing.T) {
	cfg := testConfig(t, employeesINI)
	g := testGenerator(t, cfg, employeesTable(), Options{})

	body, err := g.PackageBody()
	if err != nil {
		t.Fatalf("PackageBody() error: %v", err)
	}

	if !strings.HasPrefix(body, "create or replace package body hr.employees_tapi\n") {
		t.Errorf("body header wrong:\n%s", body[:min(len(body), 200)])
	}
	if !strings.Contains(body, "insert into hr.employees\n") {
		t.Error("body missing insert statement")
	}
	if !strings.Contains(body, "merge into hr.employees tgt\n") {
		t.Error("body missing merge statement")
	}
	// The merge insert leg reads from the USING source row, not parameters.
	mergeStart := strings.Index(body, "merge into hr.employees")
	mergeEnd := strings.Index(body[mergeStart:], "end mrg;")
	mergeBlock := body[mergeStart : mergeStart+mergeEnd]
	if !strings.Contains(mergeBlock, ", src.first_name") {
		t.Error("merge values should reference the source alias")
	}
	if !strings.Contains(body, "delete from hr.employees\n") {
		t.Error("body missing delete statement")
	}
	// Trigger maintenance: the audit columns stay out of the insert list.
	insertStart := strings.Index(body, "insert into hr.employees")
	insertEnd := strings.Index(body[insertStart:], "end ins;")
	insertBlock := body[insertStart : insertStart+insertEnd]
	if strings.Contains(insertBlock, "created_by") {
		t.Error("insert body should not reference trigger-maintained columns")
	}
	if !strings.Contains(insertBlock, "returning\n") {
		t.Error("insert body should return key columns")
	}

	if strings.Contains(body, "%STAB%") {
		t.Error("body contains unresolved soft tabs")
	}
}

func TestUpsertSkipsAuditColumnsWithoutRowVersion(t *testing.T) {
	cfg := testConfig(t, employeesINI)

	// The skip is driven by the configured row-version column name, not by
	// the table actually carrying such a column.
	tbl := &Table{
		Schema: "hr",
		Name:   "lookups",
		Columns: []TableColumn{
			{Name: "lookup_id", DataType: "number", PK: true, Keyed: true},
			{Name: "label", DataType: "varchar2"},
			{Name: "created_by", DataType: "varchar2"},
			{Name: "updated_on", DataType: "timestamp"},
		},
		MaxNameLen: len("created_by"),
	}
	g := testGenerator(t, cfg, tbl, Options{})

	skip := g.upsertSkipList()
	if len(skip) == 0 {
		t.Fatal("upsertSkipList() = empty, want the auto-maintained columns")
	}

	subs := g.upsertSubstitutions(StyleColType)
	list, _ := subs["column_list_string_lc"].(string)
	if strings.Contains(list, "created_by") || strings.Contains(list, "updated_on") {
		t.Errorf("upsert column list should skip auto-maintained columns:\n%s", list)
	}
	if !strings.Contains(list, "label") {
		t.Errorf("upsert column list missing a plain column:\n%s", list)
	}
}

func TestPackageOutputDeterministic(t *testing.T) {
	cfg := testConfig(t, employeesINI)
	run := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	var specs, bodies []string
	for i := 0; i < 3; i++ {
		g := testGenerator(t, cfg, employeesTable(), Options{RunDate: run})
		spec, err := g.PackageSpec()
		if err != nil {
			t.Fatal(err)
		}
		body, err := g.PackageBody()
		if err != nil {
			t.Fatal(err)
		}
		specs = append(specs, spec)
		bodies = append(bodies, body)
	}

	for i := 1; i < len(specs); i++ {
		if specs[i] != specs[0] {
			t.Error("PackageSpec() output differs between identical runs")
		}
		if bodies[i] != bodies[0] {
			t.Error("PackageBody() output differs between identical runs")
		}
	}
}

func TestAuxArtifacts(t *testing.T) {
	cfg := testConfig(t, employeesINI)
	g := testGenerator(t, cfg, employeesTable(), Options{})

	triggers, err := g.Triggers()
	if err != nil {
		t.Fatalf("Triggers() error: %v", err)
	}
	trg, ok := triggers["employees_biu.sql"]
	if !ok {
		t.Fatalf("expected employees_biu.sql artifact, got %v", keysOf(triggers))
	}
	if !strings.Contains(trg, "create or replace trigger hr.employees_biu") {
		t.Errorf("trigger content wrong:\n%s", trg)
	}
	if !strings.Contains(trg, ":new.row_version := coalesce(:old.row_version, 0) + 1;") {
		t.Error("trigger should resolve the configured row-version column")
	}

	views, err := g.Views()
	if err != nil {
		t.Fatalf("Views() error: %v", err)
	}
	vw, ok := views["employees_base.sql"]
	if !ok {
		t.Fatalf("expected employees_base.sql artifact, got %v", keysOf(views))
	}
	if !strings.Contains(vw, "create or replace view hr.employees_v") {
		t.Errorf("view content wrong:\n%s", vw)
	}
	if !strings.Contains(vw, "  employee_id\n") || !strings.Contains(vw, ", row_version\n") {
		t.Error("view should list every column")
	}
}

func keysOf(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestFileNames(t *testing.T) {
	cfg := testConfig(t, employeesINI)
	g := testGenerator(t, cfg, employeesTable(), Options{})

	if got := g.SpecFileName(); got != "employees_tapi.pks" {
		t.Errorf("SpecFileName() = %q", got)
	}
	if got := g.BodyFileName(); got != "employees_tapi.pkb" {
		t.Errorf("BodyFileName() = %q", got)
	}
}

func TestCheckExpressionsTriggerMethod(t *testing.T) {
	cfg := testConfig(t, employeesINI)
	// Trigger maintenance needs no expression templates at all.
	if err := CheckExpressions(cfg, &templates.ExpressionStore{}); err != nil {
		t.Errorf("CheckExpressions() under trigger method = %v, want nil", err)
	}
}

const expressionINI = `[api_controls]
row_vers_column_name = row_version
auto_maintained_cols = created_by, created_on, updated_by, updated_on
col_auto_maintain_method = expression
`

func TestCheckExpressionsReportsEveryGap(t *testing.T) {
	cfg := testConfig(t, expressionINI)
	exprs := &templates.ExpressionStore{
		Inserts: map[string]string{"created_by": "user", "created_on": "current_timestamp"},
		Updates: map[string]string{"updated_by": "user"},
	}

	err := CheckExpressions(cfg, exprs)
	if err == nil {
		t.Fatal("CheckExpressions() should report missing expressions")
	}

	var miss *MissingExpressionsError
	if !errors.As(err, &miss) {
		t.Fatalf("error type = %T, want *MissingExpressionsError", err)
	}
	wantInserts := []string{"row_version", "updated_by", "updated_on"}
	wantUpdates := []string{"created_by", "created_on", "row_version", "updated_on"}
	if strings.Join(miss.Inserts, ",") != strings.Join(wantInserts, ",") {
		t.Errorf("Inserts = %v, want %v", miss.Inserts, wantInserts)
	}
	if strings.Join(miss.Updates, ",") != strings.Join(wantUpdates, ",") {
		t.Errorf("Updates = %v, want %v", miss.Updates, wantUpdates)
	}
	if !strings.Contains(err.Error(), "column_expressions/inserts") {
		t.Error("error should point at the expression directory")
	}
}

func TestCheckExpressionsDefaultsComplete(t *testing.T) {
	cfg := testConfig(t, expressionINI)
	root := filepath.Join(t.TempDir(), "templates")
	if err := templates.WriteDefaults(root); err != nil {
		t.Fatal(err)
	}
	exprs, err := templates.LoadExpressions(root)
	if err != nil {
		t.Fatal(err)
	}
	if err := CheckExpressions(cfg, exprs); err != nil {
		t.Errorf("starter expression templates should satisfy the check: %v", err)
	}
}

func TestExpressionMethodInsertUsesExpressions(t *testing.T) {
	ini := expressionINI + "signature_types = coltype\n"
	cfg := testConfig(t, ini)
	g := testGenerator(t, cfg, employeesTable(), Options{Operations: []Operation{OpInsert}})

	body, err := g.PackageBody()
	if err != nil {
		t.Fatal(err)
	}
	// The expression method keeps the audit columns in the statement and
	// binds their configured expressions instead of parameters.
	if !strings.Contains(body, ", created_on") {
		t.Error("expression method should keep audit columns in the insert list")
	}
	if !strings.Contains(body, ", current_timestamp") {
		t.Error("insert values should carry the created_on expression")
	}
	if strings.Contains(body, "p_created_on") {
		t.Error("auto-maintained columns must not appear as parameters")
	}
}

// fakeProvider serves canned column metadata for LoadTable tests.
type fakeProvider struct {
	columns []catalog.Column
	pk      map[string]bool
	keyed   map[string]bool
}

func (f *fakeProvider) ListColumns(context.Context, string, string) ([]catalog.Column, error) {
	return f.columns, nil
}

func (f *fakeProvider) IsPrimaryKey(_ context.Context, _, _, column string) (bool, error) {
	return f.pk[strings.ToLower(column)], nil
}

func (f *fakeProvider) IsKeyed(_ context.Context, _, _, column string) (bool, error) {
	return f.keyed[strings.ToLower(column)], nil
}

func (f *fakeProvider) TableExists(context.Context, string, string) (bool, error) {
	return len(f.columns) > 0, nil
}

func (f *fakeProvider) ListTables(context.Context, string) ([]string, error) {
	return nil, nil
}

func TestLoadTable(t *testing.T) {
	def := "0 "
	prov := &fakeProvider{
		columns: []catalog.Column{
			{Name: "Employee_ID", DataType: "number"},
			{Name: "Email", DataType: "varchar2"},
			{Name: "Salary", DataType: "number", Default: &def},
			{Name: "Row_Version", DataType: "number"},
		},
		pk:    map[string]bool{"employee_id": true},
		keyed: map[string]bool{"employee_id": true, "email": true},
	}

	tbl, err := LoadTable(context.Background(), prov, "HR", "Employees", "ROW_VERSION")
	if err != nil {
		t.Fatalf("LoadTable() error: %v", err)
	}

	if tbl.Schema != "hr" || tbl.Name != "employees" {
		t.Errorf("names should be lower-cased: %s.%s", tbl.Schema, tbl.Name)
	}
	if tbl.MaxNameLen != len("employee_id") {
		t.Errorf("MaxNameLen = %d", tbl.MaxNameLen)
	}

	id, _ := tbl.Column("employee_id")
	if !id.PK || !id.Keyed || id.AK {
		t.Errorf("employee_id classification = %+v", id)
	}
	email, _ := tbl.Column("EMAIL")
	if email.PK || !email.AK || !email.Keyed {
		t.Errorf("email classification = %+v", email)
	}
	salary, _ := tbl.Column("salary")
	if !salary.HasDefault || salary.Default != "0" {
		t.Errorf("salary default = %q (should be trimmed)", salary.Default)
	}
	rv, _ := tbl.Column("row_version")
	if !rv.RowVersion || rv.Keyed {
		t.Errorf("row_version classification = %+v", rv)
	}

	if got := strings.Join(tbl.ReturnColumns(), ","); got != "employee_id,email,row_version" {
		t.Errorf("ReturnColumns = %q", got)
	}
}

func TestLoadTableEmpty(t *testing.T) {
	prov := &fakeProvider{}
	_, err := LoadTable(context.Background(), prov, "hr", "ghost", "")
	if !errors.Is(err, catalog.ErrTableNotFound) {
		t.Errorf("LoadTable() on empty column set = %v, want ErrTableNotFound", err)
	}
}

func TestParseOperation(t *testing.T) {
	for _, op := range Operations {
		parsed, err := ParseOperation(op.String())
		if err != nil || parsed != op {
			t.Errorf("ParseOperation(%q) = %v, %v", op.String(), parsed, err)
		}
	}
	if _, err := ParseOperation("truncate"); err == nil {
		t.Error("ParseOperation should reject unknown names")
	}
}
