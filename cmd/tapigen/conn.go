package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tapigen/tapigen/cli"
	"github.com/tapigen/tapigen/creds"
)

const connSaveUsage = `tapigen conn save - Save a named database connection

Usage:
  tapigen conn save --name <name> --driver <driver> --dsn <dsn> [flags]

Flags:
  --name <name>         Connection name used by 'tapigen generate --conn'
  --driver <driver>     Database driver: postgres | mysql | sqlite
  --dsn <dsn>           Connection string; may contain %user% and %password%
  --user <user>         Database user substituted into the DSN
  --password <pass>     Database password (encrypted at rest; or set TAPIGEN_DB_PASSWORD)
  --project <path>      Project directory (default: CWD)

Environment:
  TAPIGEN_PASSPHRASE    Passphrase protecting stored passwords (required)
  TAPIGEN_DB_PASSWORD   Database password, if --password is not given
`

// connSaveCmd implements "tapigen conn save".
func connSaveCmd(args []string) {
	var conn creds.Connection
	var project string

	stringFlags := map[string]*string{
		"--name":     &conn.Name,
		"--driver":   &conn.Driver,
		"--dsn":      &conn.DSN,
		"--user":     &conn.User,
		"--password": &conn.Password,
		"--project":  &project,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-h" || arg == "--help" {
			os.Stdout.WriteString(connSaveUsage)
			os.Exit(0)
		}

		name, value := arg, ""
		hasValue := false
		if eq := strings.IndexByte(arg, '='); eq >= 0 {
			name, value = arg[:eq], arg[eq+1:]
			hasValue = true
		}
		dst, ok := stringFlags[name]
		if !ok {
			cli.Fatalf("unknown argument: %s (run 'tapigen conn save --help' for usage)", arg)
		}
		if !hasValue {
			if i+1 >= len(args) {
				cli.Fatalf("%s requires a value", name)
			}
			value = args[i+1]
			i++
		}
		*dst = value
	}

	if conn.Name == "" {
		cli.Fatal("--name is required")
	}
	switch conn.Driver {
	case "postgres", "mysql", "sqlite":
	case "":
		cli.Fatal("--driver is required")
	default:
		cli.Fatalf("unknown driver %q (expected postgres, mysql or sqlite)", conn.Driver)
	}
	if conn.DSN == "" {
		cli.Fatal("--dsn is required")
	}
	if conn.Password == "" {
		conn.Password = os.Getenv("TAPIGEN_DB_PASSWORD")
	}

	pass := os.Getenv("TAPIGEN_PASSPHRASE")
	if pass == "" {
		cli.Fatal("TAPIGEN_PASSPHRASE must be set to save a connection")
	}

	store, err := creds.OpenStore(storePath(project))
	if err != nil {
		cli.FatalErr("failed to open connection store", err)
	}
	if err := store.Save(conn, pass); err != nil {
		cli.FatalErr("failed to save connection", err)
	}
	cli.Successf("Saved connection %q (%s)", conn.Name, conn.Driver)
}

// connListCmd implements "tapigen conn list". Passwords are never shown.
func connListCmd(args []string) {
	var project string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			fmt.Println("tapigen conn list - List saved connections")
			fmt.Println("")
			fmt.Println("Usage:  tapigen conn list [--project <path>]")
			os.Exit(0)
		case arg == "--project":
			if i+1 >= len(args) {
				cli.Fatal("--project requires a path argument")
			}
			project = args[i+1]
			i++
		case strings.HasPrefix(arg, "--project="):
			project = strings.TrimPrefix(arg, "--project=")
		default:
			cli.Fatalf("unknown argument: %s", arg)
		}
	}

	store, err := creds.OpenStore(storePath(project))
	if err != nil {
		cli.FatalErr("failed to open connection store", err)
	}

	conns := store.List()
	if len(conns) == 0 {
		cli.Info("No saved connections")
		return
	}
	for _, c := range conns {
		cli.Infof("%-20s %-10s %s", c.Name, c.Driver, c.DSN)
	}
}

// storePath resolves the connection store file inside the project directory.
func storePath(project string) string {
	if project == "" {
		cwd, err := os.Getwd()
		if err != nil {
			cli.FatalErr("failed to get current directory", err)
		}
		project = cwd
	}
	return filepath.Join(project, creds.StoreFilename)
}
