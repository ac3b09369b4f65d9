package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tapigen/tapigen/cli"
	"github.com/tapigen/tapigen/csvtab"
	"github.com/tapigen/tapigen/internal/config"
	"github.com/tapigen/tapigen/templates"
)

// defaultConfig is the starter tapigen.ini written by "tapigen init". Every
// key is optional; the values here match the built-in defaults so a fresh
// project generates sensible output before any editing.
const defaultConfig = `[project]
company_name = Your Company
copyright_year = current

[api_controls]
row_vers_column_name = row_version
auto_maintained_cols = created_by, created_on, updated_by, updated_on
signature_types = coltype, rowtype
col_auto_maintain_method = trigger
include_defaults = true
return_key_columns = true
include_rowid = false
noop_column_string = auto
insert_procname = ins
select_procname = get
update_procname = upd
delete_procname = del
upsert_procname = ups
merge_procname = mrg

[formatting]
indent_spaces = 3

[file_controls]
spec_dir = package_spec
body_dir = package_body
trigger_dir = triggers
view_dir = views
spec_suffix = .pks
body_suffix = .pkb
csv_path = tapigen.csv

[behaviour]
skip_on_missing_table = true
`

// initCmd implements the "tapigen init" command. It scaffolds a project
// directory: tapigen.ini, the starter template tree and the per-table
// control file.
func initCmd(args []string) {
	dir := ""
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			fmt.Println("tapigen init - Initialize a new tapigen project")
			fmt.Println("")
			fmt.Println("Usage:  tapigen init [--project <path>]")
			fmt.Println("")
			fmt.Println("Creates tapigen.ini, a templates/ directory with starter templates,")
			fmt.Println("and an empty tapigen.csv control file. Existing files are left alone.")
			os.Exit(0)
		case arg == "--project":
			if i+1 >= len(args) {
				cli.Fatal("--project requires a path argument")
			}
			dir = args[i+1]
			i++
		case strings.HasPrefix(arg, "--project="):
			dir = strings.TrimPrefix(arg, "--project=")
		default:
			cli.Fatalf("unknown argument: %s", arg)
		}
	}

	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cli.FatalErr("failed to get current directory", err)
		}
		dir = cwd
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		cli.FatalErr("failed to create project directory", err)
	}

	createdIni := false
	exists, err := config.Exists(dir)
	if err != nil {
		cli.FatalErr("failed to check for "+config.ConfigFilename, err)
	}
	if !exists {
		iniPath := filepath.Join(dir, config.ConfigFilename)
		if err := os.WriteFile(iniPath, []byte(defaultConfig), 0o644); err != nil {
			cli.FatalErr("failed to create "+config.ConfigFilename, err)
		}
		createdIni = true
	}

	templateRoot := filepath.Join(dir, "templates")
	if err := templates.WriteDefaults(templateRoot); err != nil {
		cli.FatalErr("failed to write starter templates", err)
	}

	if _, err := csvtab.Load(filepath.Join(dir, "tapigen.csv")); err != nil {
		cli.FatalErr("failed to create control file", err)
	}

	if createdIni {
		cli.Success("Initialized new tapigen project")
		cli.Infof("  Created %s", config.ConfigFilename)
		cli.Info("  Created templates/ (starter templates)")
		cli.Info("  Created tapigen.csv")
	} else {
		cli.Infof("Project already initialized (%s exists); templates and control file refreshed", config.ConfigFilename)
	}
}
