package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// writeConfig writes a tapigen.ini with the given content into a temp dir
// and returns the dir.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ConfigFilename), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := writeConfig(t, "[api_controls]\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ConfigDir != dir {
		t.Errorf("ConfigDir = %q, want %q", cfg.ConfigDir, dir)
	}
	if !reflect.DeepEqual(cfg.API.SignatureStyles, []string{StyleColType}) {
		t.Errorf("default SignatureStyles = %v", cfg.API.SignatureStyles)
	}
	if cfg.API.AutoMaintainMethod != MaintainByTrigger {
		t.Errorf("default AutoMaintainMethod = %q", cfg.API.AutoMaintainMethod)
	}
	if !cfg.API.ReturnKeyColumns {
		t.Error("ReturnKeyColumns should default to true")
	}
	if cfg.Format.IndentSpaces != 3 {
		t.Errorf("default IndentSpaces = %d, want 3", cfg.Format.IndentSpaces)
	}
	if cfg.Files.SpecDir != "package_spec" || cfg.Files.BodyDir != "package_body" {
		t.Errorf("default dirs = %q / %q", cfg.Files.SpecDir, cfg.Files.BodyDir)
	}
	if cfg.Files.SpecSuffix != ".pks" || cfg.Files.BodySuffix != ".pkb" {
		t.Errorf("default suffixes = %q / %q", cfg.Files.SpecSuffix, cfg.Files.BodySuffix)
	}
	if !cfg.Behavior.SkipOnMissingTable {
		t.Error("SkipOnMissingTable should default to true")
	}
	if cfg.API.InsertProc != "ins" || cfg.API.SelectProc != "get" || cfg.API.MergeProc != "mrg" {
		t.Errorf("default proc names = %q/%q/%q", cfg.API.InsertProc, cfg.API.SelectProc, cfg.API.MergeProc)
	}
}

func TestLoadFull(t *testing.T) {
	dir := writeConfig(t, `
[api_controls]
row_vers_column_name = Row_Version
auto_maintained_cols = Created_By, created_on
signature_types = coltype, rowtype
col_auto_maintain_method = expression
include_defaults = true
return_key_columns = no
include_rowid = 1
noop_column_string = auto
update_procname = modify

[formatting]
indent_spaces = 4

[file_controls]
spec_dir = specs
body_dir = bodies
spec_suffix = .sql
body_suffix = .sql
csv_path = control/tables.csv

[behaviour]
skip_on_missing_table = false
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.API.RowVersionColumn != "row_version" {
		t.Errorf("RowVersionColumn = %q, should be lower-cased", cfg.API.RowVersionColumn)
	}
	if !reflect.DeepEqual(cfg.API.AutoMaintainedCols, []string{"created_by", "created_on"}) {
		t.Errorf("AutoMaintainedCols = %v", cfg.API.AutoMaintainedCols)
	}
	if !reflect.DeepEqual(cfg.API.SignatureStyles, []string{StyleColType, StyleRowType}) {
		t.Errorf("SignatureStyles = %v", cfg.API.SignatureStyles)
	}
	if cfg.API.AutoMaintainMethod != MaintainByExpression {
		t.Errorf("AutoMaintainMethod = %q", cfg.API.AutoMaintainMethod)
	}
	if !cfg.API.IncludeDefaults || cfg.API.ReturnKeyColumns || !cfg.API.IncludeRowID {
		t.Errorf("bool flags = %v/%v/%v", cfg.API.IncludeDefaults, cfg.API.ReturnKeyColumns, cfg.API.IncludeRowID)
	}
	if cfg.API.NoopColumnString != "auto" {
		t.Errorf("NoopColumnString = %q", cfg.API.NoopColumnString)
	}
	if cfg.API.UpdateProc != "modify" {
		t.Errorf("UpdateProc = %q", cfg.API.UpdateProc)
	}
	if cfg.Format.IndentSpaces != 4 {
		t.Errorf("IndentSpaces = %d", cfg.Format.IndentSpaces)
	}
	if cfg.Files.CSVPath != "control/tables.csv" {
		t.Errorf("CSVPath = %q", cfg.Files.CSVPath)
	}
	if cfg.Behavior.SkipOnMissingTable {
		t.Error("SkipOnMissingTable should be false")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "bad signature type",
			content: "[api_controls]\nsignature_types = coltype, banana\n",
			wantMsg: "signature_types",
		},
		{
			name:    "bad maintain method",
			content: "[api_controls]\ncol_auto_maintain_method = cron\n",
			wantMsg: "col_auto_maintain_method",
		},
		{
			name:    "bad boolean",
			content: "[api_controls]\ninclude_defaults = maybe\n",
			wantMsg: "include_defaults",
		},
		{
			name:    "negative indent",
			content: "[formatting]\nindent_spaces = -2\n",
			wantMsg: "indent_spaces",
		},
		{
			name:    "non-integer indent",
			content: "[formatting]\nindent_spaces = three\n",
			wantMsg: "indent_spaces",
		},
		{
			name:    "colliding spec and body outputs",
			content: "[file_controls]\nspec_dir = out\nbody_dir = out\nspec_suffix = .sql\nbody_suffix = .sql\n",
			wantMsg: "must be distinct",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, tt.content)
			_, err := Load(dir)
			if err == nil {
				t.Fatal("Load() should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("Load() should fail when tapigen.ini is absent")
	}
	if !strings.Contains(err.Error(), "tapigen init") {
		t.Errorf("error should hint at 'tapigen init': %v", err)
	}
}

func TestSubstitutions(t *testing.T) {
	dir := writeConfig(t, `
[project]
company_name = Acme
copyright_year = current

[api_controls]
row_vers_column_name = row_version
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	subs := cfg.Substitutions()
	if subs["company_name"] != "Acme" {
		t.Errorf("Substitutions missing company_name: %v", subs)
	}
	if subs["row_vers_column_name"] != "row_version" {
		t.Errorf("Substitutions missing row_vers_column_name: %v", subs)
	}

	// The returned map is a copy.
	subs["company_name"] = "mutated"
	if cfg.Substitutions()["company_name"] != "Acme" {
		t.Error("Substitutions should return a fresh copy each call")
	}
}

func TestProcName(t *testing.T) {
	dir := writeConfig(t, "[api_controls]\nupsert_procname = put\n")
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct{ op, want string }{
		{"insert", "ins"},
		{"select", "get"},
		{"update", "upd"},
		{"delete", "del"},
		{"upsert", "put"},
		{"merge", "mrg"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		if got := cfg.ProcName(tt.op); got != tt.want {
			t.Errorf("ProcName(%q) = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestExists(t *testing.T) {
	dir := writeConfig(t, "[api_controls]\n")

	ok, err := Exists(dir)
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v, want true", ok, err)
	}

	ok, err = Exists(t.TempDir())
	if err != nil || ok {
		t.Errorf("Exists on empty dir = %v, %v, want false", ok, err)
	}
}
