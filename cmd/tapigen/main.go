package main

import (
	"fmt"
	"os"
)

// Version is the tapigen release version, overridable at build time.
var Version = "dev"

const usage = `tapigen - Table API generator for database packages

Usage:
  tapigen <command> [arguments]

Commands:
  init          Initialize a new tapigen project (creates tapigen.ini and templates)
  generate      Generate table API packages, views and triggers
  conn          Manage saved database connections (save|list)

Options:
  -h, --help    Show this help message
  -v, --version Show version information

Run 'tapigen <command> --help' for more information on a specific command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]

	switch cmd {
	case "-h", "--help", "help":
		fmt.Print(usage)
		os.Exit(0)

	case "-v", "--version", "version":
		fmt.Printf("tapigen version %s\n", Version)
		os.Exit(0)

	case "init":
		initCmd(os.Args[2:])

	case "generate", "gen":
		generateCmd(os.Args[2:])

	case "conn":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "error: 'tapigen conn' requires a subcommand")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Available subcommands:")
			fmt.Fprintln(os.Stderr, "  save          Save a named connection (credentials encrypted at rest)")
			fmt.Fprintln(os.Stderr, "  list          List saved connections")
			os.Exit(1)
		}

		subCmd := os.Args[2]
		switch subCmd {
		case "save":
			connSaveCmd(os.Args[3:])

		case "list":
			connListCmd(os.Args[3:])

		case "-h", "--help", "help":
			fmt.Println("tapigen conn - Saved connection management")
			fmt.Println("")
			fmt.Println("Subcommands:")
			fmt.Println("  save          Save a named connection (credentials encrypted at rest)")
			fmt.Println("  list          List saved connections")
			os.Exit(0)

		default:
			fmt.Fprintf(os.Stderr, "error: unknown conn subcommand: %s\n", subCmd)
			fmt.Fprintln(os.Stderr, "Run 'tapigen conn --help' for usage.")
			os.Exit(1)
		}

	default:
		fmt.Fprintf(os.Stderr, "error: unknown command: %s\n", cmd)
		fmt.Fprintln(os.Stderr, "Run 'tapigen --help' for usage.")
		os.Exit(1)
	}
}
