// Package config provides unified configuration loading from tapigen.ini.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tapigen/tapigen/dbstrings"
	"github.com/tapigen/tapigen/inifile"
)

// ConfigFilename is the name of the unified config file.
const ConfigFilename = "tapigen.ini"

// Maintenance methods for auto-maintained columns.
const (
	MaintainByTrigger    = "trigger"
	MaintainByExpression = "expression"
)

// Signature styles accepted in api_controls.signature_types.
const (
	StyleColType = "coltype"
	StyleRowType = "rowtype"
)

// Config holds the complete configuration from tapigen.ini. It is built once
// at startup and read-only afterwards.
type Config struct {
	// ConfigDir is the directory containing tapigen.ini (the project root).
	ConfigDir string

	API      APIControls
	Format   Formatting
	Files    FileControls
	Behavior Behavior

	// flat holds every section's key/value pairs merged, for use as the
	// global substitution layer.
	flat map[string]string
}

// APIControls holds generation policy from the [api_controls] section.
type APIControls struct {
	RowVersionColumn   string   // lower-case, "" = none configured
	AutoMaintainedCols []string // lower-case
	SignatureStyles    []string // subset of {coltype, rowtype}, in file order
	AutoMaintainMethod string   // trigger | expression
	IncludeDefaults    bool
	ReturnKeyColumns   bool
	IncludeRowID       bool
	NoopColumnString   string // "" = no-op sentinel disabled

	// Generated procedure names, per operation.
	InsertProc string
	SelectProc string
	UpdateProc string
	DeleteProc string
	UpsertProc string
	MergeProc  string
}

// Formatting holds settings from the [formatting] section.
type Formatting struct {
	IndentSpaces int
}

// FileControls holds artifact destinations from the [file_controls] section.
// Directories are relative to the staging area supplied at run time.
type FileControls struct {
	SpecDir    string
	BodyDir    string
	TriggerDir string
	ViewDir    string
	SpecSuffix string
	BodySuffix string
	CSVPath    string // per-table toggle file; "" = tapigen.csv next to the config
}

// Behavior holds settings from the [behaviour] section.
type Behavior struct {
	SkipOnMissingTable bool
}

// Load reads tapigen.ini from the given directory (or CWD if empty) and
// validates it. Configuration errors are fatal before any table is processed.
func Load(dir string) (*Config, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	iniPath := filepath.Join(dir, ConfigFilename)
	if _, err := os.Stat(iniPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found in %s\n"+
			"  Hint: Run 'tapigen init' to create a starter project", ConfigFilename, dir)
	}

	f, err := inifile.ParseFile(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFilename, err)
	}

	cfg := &Config{
		ConfigDir: dir,
		API:       defaultAPIControls(),
		Format:    Formatting{IndentSpaces: 3},
		Files:     defaultFileControls(),
		Behavior:  Behavior{SkipOnMissingTable: true},
		flat:      f.Flatten(),
	}

	if err := parseAPIControls(f, &cfg.API); err != nil {
		return nil, err
	}
	if err := parseFormatting(f, &cfg.Format); err != nil {
		return nil, err
	}
	if err := parseFileControls(f, &cfg.Files); err != nil {
		return nil, err
	}
	if err := parseBehavior(f, &cfg.Behavior); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Substitutions returns a copy of every configured key/value pair, merged
// across sections. This is the global substitution layer for templates.
func (c *Config) Substitutions() map[string]string {
	out := make(map[string]string, len(c.flat))
	for k, v := range c.flat {
		out[k] = v
	}
	return out
}

// ProcName returns the configured procedure name for an operation keyword
// (insert, select, update, delete, upsert, merge).
func (c *Config) ProcName(op string) string {
	switch op {
	case "insert":
		return c.API.InsertProc
	case "select":
		return c.API.SelectProc
	case "update":
		return c.API.UpdateProc
	case "delete":
		return c.API.DeleteProc
	case "upsert":
		return c.API.UpsertProc
	case "merge":
		return c.API.MergeProc
	}
	return op
}

func defaultAPIControls() APIControls {
	return APIControls{
		SignatureStyles:    []string{StyleColType},
		AutoMaintainMethod: MaintainByTrigger,
		ReturnKeyColumns:   true,
		InsertProc:         "ins",
		SelectProc:         "get",
		UpdateProc:         "upd",
		DeleteProc:         "del",
		UpsertProc:         "ups",
		MergeProc:          "mrg",
	}
}

func defaultFileControls() FileControls {
	return FileControls{
		SpecDir:    "package_spec",
		BodyDir:    "package_body",
		TriggerDir: "triggers",
		ViewDir:    "views",
		SpecSuffix: ".pks",
		BodySuffix: ".pkb",
	}
}

func parseAPIControls(f *inifile.File, cfg *APIControls) error {
	const section = "api_controls"

	if v, ok := f.Lookup(section, "row_vers_column_name"); ok {
		cfg.RowVersionColumn = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := f.Lookup(section, "auto_maintained_cols"); ok {
		cfg.AutoMaintainedCols = dbstrings.LowerList(dbstrings.SplitList(v))
	}

	if v, ok := f.Lookup(section, "signature_types"); ok {
		styles := dbstrings.LowerList(dbstrings.SplitList(v))
		for _, s := range styles {
			if s != StyleColType && s != StyleRowType {
				return fmt.Errorf("%s: invalid api_controls.signature_types value %q (expected %s or %s)",
					ConfigFilename, s, StyleColType, StyleRowType)
			}
		}
		if len(styles) > 0 {
			cfg.SignatureStyles = styles
		}
	}

	if v, ok := f.Lookup(section, "col_auto_maintain_method"); ok {
		m := strings.ToLower(strings.TrimSpace(v))
		if m != MaintainByTrigger && m != MaintainByExpression {
			return fmt.Errorf("%s: invalid api_controls.col_auto_maintain_method value %q (expected %s or %s)",
				ConfigFilename, v, MaintainByTrigger, MaintainByExpression)
		}
		cfg.AutoMaintainMethod = m
	}

	boolKeys := []struct {
		key string
		dst *bool
	}{
		{"include_defaults", &cfg.IncludeDefaults},
		{"return_key_columns", &cfg.ReturnKeyColumns},
		{"include_rowid", &cfg.IncludeRowID},
	}
	for _, bk := range boolKeys {
		if v, ok := f.Lookup(section, bk.key); ok {
			b, err := parseBool(v, section+"."+bk.key)
			if err != nil {
				return err
			}
			*bk.dst = b
		}
	}

	cfg.NoopColumnString = f.Get(section, "noop_column_string")

	cfg.InsertProc = f.GetDefault(section, "insert_procname", cfg.InsertProc)
	cfg.SelectProc = f.GetDefault(section, "select_procname", cfg.SelectProc)
	cfg.UpdateProc = f.GetDefault(section, "update_procname", cfg.UpdateProc)
	cfg.DeleteProc = f.GetDefault(section, "delete_procname", cfg.DeleteProc)
	cfg.UpsertProc = f.GetDefault(section, "upsert_procname", cfg.UpsertProc)
	cfg.MergeProc = f.GetDefault(section, "merge_procname", cfg.MergeProc)

	return nil
}

func parseFormatting(f *inifile.File, cfg *Formatting) error {
	if v, ok := f.Lookup("formatting", "indent_spaces"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: formatting.indent_spaces value %q is non-integer", ConfigFilename, v)
		}
		if n < 0 {
			return fmt.Errorf("%s: formatting.indent_spaces must not be negative, got %d", ConfigFilename, n)
		}
		cfg.IndentSpaces = n
	}
	return nil
}

func parseFileControls(f *inifile.File, cfg *FileControls) error {
	const section = "file_controls"

	cfg.SpecDir = f.GetDefault(section, "spec_dir", cfg.SpecDir)
	cfg.BodyDir = f.GetDefault(section, "body_dir", cfg.BodyDir)
	cfg.TriggerDir = f.GetDefault(section, "trigger_dir", cfg.TriggerDir)
	cfg.ViewDir = f.GetDefault(section, "view_dir", cfg.ViewDir)
	cfg.SpecSuffix = f.GetDefault(section, "spec_suffix", cfg.SpecSuffix)
	cfg.BodySuffix = f.GetDefault(section, "body_suffix", cfg.BodySuffix)
	cfg.CSVPath = f.Get(section, "csv_path")

	// Spec and body artifacts would overwrite each other otherwise.
	if cfg.SpecDir == cfg.BodyDir && cfg.SpecSuffix == cfg.BodySuffix {
		return fmt.Errorf("%s: file_controls.spec_dir and body_dir must be distinct when spec_suffix and body_suffix are the same",
			ConfigFilename)
	}

	return nil
}

func parseBehavior(f *inifile.File, cfg *Behavior) error {
	if v, ok := f.Lookup("behaviour", "skip_on_missing_table"); ok {
		b, err := parseBool(v, "behaviour.skip_on_missing_table")
		if err != nil {
			return err
		}
		cfg.SkipOnMissingTable = b
	}
	return nil
}

// parseBool parses a boolean value from a string.
func parseBool(s, key string) (bool, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%s: invalid boolean value for %s: %q (expected true/false/1/0)", ConfigFilename, key, s)
	}
}

// Exists checks if tapigen.ini exists in the given directory.
func Exists(dir string) (bool, error) {
	if dir == "" {
		var err error
		dir, err = os.Getwd()
		if err != nil {
			return false, err
		}
	}

	iniPath := filepath.Join(dir, ConfigFilename)
	_, err := os.Stat(iniPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
