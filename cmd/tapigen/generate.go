package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/tapigen/tapigen/catalog"
	"github.com/tapigen/tapigen/cli"
	"github.com/tapigen/tapigen/creds"
	"github.com/tapigen/tapigen/csvtab"
	"github.com/tapigen/tapigen/internal/config"
	"github.com/tapigen/tapigen/logging"
	"github.com/tapigen/tapigen/sink"
	"github.com/tapigen/tapigen/tapi"
	"github.com/tapigen/tapigen/templates"
)

const generateUsage = `tapigen generate - Generate table API packages, views and triggers

Usage:
  tapigen generate [flags]

Connection (one of):
  --conn <name>         Use a saved connection (see 'tapigen conn save')
  --driver <driver>     Database driver: postgres | mysql | sqlite
  --dsn <dsn>           Connection string (or file path for sqlite)

Selection:
  --schema <name>       Schema to read table metadata from
  --tables <list>       Comma-separated table names, or % for all (default: %)
  --ops <list>          Operations to generate (default: insert,select,update,upsert,delete,merge)

Output:
  --owner <schema>      Schema the generated packages belong to (default: --schema)
  --staging <dir>       Output directory root (default: <project>/staging)
  --dry-run             Render everything in memory and list artifacts without writing
  --s3-bucket <name>    Write artifacts to an S3 bucket instead of the staging directory
  --s3-prefix <prefix>  Key prefix inside the bucket
  --s3-region <region>  Bucket region (default: us-east-1)
  --s3-endpoint <url>   Custom S3 endpoint (for S3-compatible stores)

Other:
  --project <path>      Project directory containing tapigen.ini (default: CWD)
  --workers <n>         Concurrent render workers (default: 4)
  --watch               Keep running and regenerate when a template changes
  --dev                 Pretty-printed development logging

Environment:
  TAPIGEN_PASSPHRASE    Passphrase unlocking saved connection credentials
  AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY
                        Credentials for --s3-bucket output
`

// generateOptions holds the parsed command line for "tapigen generate".
type generateOptions struct {
	connName string
	driver   string
	dsn      string
	schema   string
	tables   string
	ops      string
	owner    string
	project  string
	staging  string
	workers  int
	dryRun   bool
	watch    bool
	dev      bool

	s3Bucket   string
	s3Prefix   string
	s3Region   string
	s3Endpoint string
}

// generateCmd implements the "tapigen generate" command.
func generateCmd(args []string) {
	opts := parseGenerateArgs(args)

	if opts.schema == "" {
		cli.Fatal("--schema is required")
	}
	if opts.owner == "" {
		opts.owner = opts.schema
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(opts.project)
	if err != nil {
		cli.FatalErr("configuration error", err)
	}
	if opts.staging == "" {
		opts.staging = filepath.Join(cfg.ConfigDir, "staging")
	}

	logger, runID := logging.NewRunLogger(opts.dev)
	logger.Info("generate_run", "schema", opts.schema, "tables", opts.tables)

	ops, err := parseOps(opts.ops)
	if err != nil {
		cli.FatalErr("invalid --ops value", err)
	}

	prov, closeProv, err := openProvider(ctx, cfg, opts)
	if err != nil {
		cli.FatalErr("failed to connect", err)
	}
	defer closeProv()

	store := templates.NewStore(filepath.Join(cfg.ConfigDir, "templates"))
	exprs, err := templates.LoadExpressions(store.Root())
	if err != nil {
		cli.FatalErr("failed to load column expressions", err)
	}
	if err := tapi.CheckExpressions(cfg, exprs); err != nil {
		cli.FatalErr("column expression check failed", err)
	}

	out, finish, err := openSink(cfg, opts)
	if err != nil {
		cli.FatalErr("failed to prepare output", err)
	}

	control, err := csvtab.Load(controlPath(cfg))
	if err != nil {
		cli.FatalErr("failed to load control file", err)
	}

	run := func() {
		names, err := resolveTables(ctx, prov, opts.schema, opts.tables)
		if err != nil {
			cli.FatalErr("failed to resolve table list", err)
		}
		generateAll(ctx, cfg, logger, prov, store, exprs, control, out, opts, ops, names)
		if control.Dirty() {
			if err := control.Save(); err != nil {
				cli.FatalErr("failed to save control file", err)
			}
		}
		finish()
	}

	run()
	cli.Successf("Generation complete (run %s)", runID)

	if opts.watch {
		watchTemplates(ctx, store, logger, run)
	}
}

// parseGenerateArgs parses the flag list for generateCmd. Unknown flags are
// fatal; flags accept both "--flag value" and "--flag=value" forms.
func parseGenerateArgs(args []string) generateOptions {
	opts := generateOptions{
		tables:   "%",
		workers:  4,
		s3Region: "us-east-1",
	}

	stringFlags := map[string]*string{
		"--conn":        &opts.connName,
		"--driver":      &opts.driver,
		"--dsn":         &opts.dsn,
		"--schema":      &opts.schema,
		"--tables":      &opts.tables,
		"--ops":         &opts.ops,
		"--owner":       &opts.owner,
		"--project":     &opts.project,
		"--staging":     &opts.staging,
		"--s3-bucket":   &opts.s3Bucket,
		"--s3-prefix":   &opts.s3Prefix,
		"--s3-region":   &opts.s3Region,
		"--s3-endpoint": &opts.s3Endpoint,
	}
	boolFlags := map[string]*bool{
		"--dry-run": &opts.dryRun,
		"--watch":   &opts.watch,
		"--dev":     &opts.dev,
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-h" || arg == "--help" {
			os.Stdout.WriteString(generateUsage)
			os.Exit(0)
		}
		if dst, ok := boolFlags[arg]; ok {
			*dst = true
			continue
		}
		if arg == "--workers" || strings.HasPrefix(arg, "--workers=") {
			v := strings.TrimPrefix(arg, "--workers=")
			if v == "--workers" || v == "" {
				if i+1 >= len(args) {
					cli.Fatal("--workers requires a value")
				}
				v = args[i+1]
				i++
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				cli.Fatalf("--workers value %q is not a positive integer", v)
			}
			opts.workers = n
			continue
		}

		name, value := arg, ""
		hasValue := false
		if eq := strings.IndexByte(arg, '='); eq >= 0 {
			name, value = arg[:eq], arg[eq+1:]
			hasValue = true
		}
		dst, ok := stringFlags[name]
		if !ok {
			cli.Fatalf("unknown argument: %s (run 'tapigen generate --help' for usage)", arg)
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

	return opts
}

// parseOps turns the --ops flag into an ordered operation list. An empty
// flag means every operation, in canonical order.
func parseOps(s string) ([]tapi.Operation, error) {
	if strings.TrimSpace(s) == "" {
		return tapi.Operations, nil
	}
	var ops []tapi.Operation
	for _, part := range strings.Split(s, ",") {
		op, err := tapi.ParseOperation(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// openProvider connects to the database named on the command line or in the
// saved connection and returns the metadata provider plus its closer.
func openProvider(ctx context.Context, cfg *config.Config, opts generateOptions) (catalog.Provider, func(), error) {
	driver, dsn := opts.driver, opts.dsn

	if opts.connName != "" {
		store, err := creds.OpenStore(filepath.Join(cfg.ConfigDir, creds.StoreFilename))
		if err != nil {
			return nil, nil, err
		}
		conn, err := store.Get(opts.connName, passphrase())
		if err != nil {
			return nil, nil, err
		}
		driver = conn.Driver
		dsn = expandDSN(conn)
	}

	switch driver {
	case "postgres":
		p, err := catalog.ConnectPostgres(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close(context.Background()) }, nil
	case "mysql":
		p, err := catalog.ConnectMySQL(dsn)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	case "sqlite":
		p, err := catalog.ConnectSQLite(dsn)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { _ = p.Close() }, nil
	case "":
		return nil, nil, fmt.Errorf("no connection given (use --conn, or --driver with --dsn)")
	default:
		return nil, nil, fmt.Errorf("unknown driver %q (expected postgres, mysql or sqlite)", driver)
	}
}

// expandDSN substitutes the saved user and password into a DSN containing
// %user% and %password% placeholders, so credentials never sit in the DSN
// at rest.
func expandDSN(conn creds.Connection) string {
	dsn := strings.ReplaceAll(conn.DSN, "%user%", conn.User)
	return strings.ReplaceAll(dsn, "%password%", conn.Password)
}

// passphrase reads the credential passphrase from the environment.
func passphrase() string {
	return os.Getenv("TAPIGEN_PASSPHRASE")
}

// openSink picks the artifact destination: an in-memory buffer for dry runs,
// S3 when a bucket is named, otherwise the staging directory tree. The
// returned finish func reports dry-run results after each run.
func openSink(cfg *config.Config, opts generateOptions) (sink.Sink, func(), error) {
	if opts.dryRun {
		buf := sink.NewBuffer()
		finish := func() {
			cli.Infof("Dry run: %d artifacts rendered", buf.Len())
			for _, name := range buf.Names() {
				cli.Infof("  %s", name)
			}
		}
		return buf, finish, nil
	}

	if opts.s3Bucket != "" {
		s := sink.NewS3(sink.S3Options{
			Bucket:     opts.s3Bucket,
			Prefix:     opts.s3Prefix,
			Region:     opts.s3Region,
			Endpoint:   opts.s3Endpoint,
			AccessKey:  os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SpecDir:    cfg.Files.SpecDir,
			BodyDir:    cfg.Files.BodyDir,
			TriggerDir: cfg.Files.TriggerDir,
			ViewDir:    cfg.Files.ViewDir,
		})
		return s, func() {}, nil
	}

	d := sink.NewDir(opts.staging, cfg.Files.SpecDir, cfg.Files.BodyDir, cfg.Files.TriggerDir, cfg.Files.ViewDir)
	if err := os.MkdirAll(opts.staging, 0o755); err != nil {
		return nil, nil, err
	}
	if err := d.Prepare(); err != nil {
		return nil, nil, err
	}
	return d, func() {}, nil
}

// controlPath resolves the per-table control file location: the configured
// path (relative to the project) or tapigen.csv next to tapigen.ini.
func controlPath(cfg *config.Config) string {
	p := cfg.Files.CSVPath
	if p == "" {
		p = "tapigen.csv"
	}
	if !filepath.IsAbs(p) {
		p = filepath.Join(cfg.ConfigDir, p)
	}
	return p
}

// resolveTables expands the --tables flag. A single % selects every base
// table in the schema.
func resolveTables(ctx context.Context, prov catalog.Provider, schema, tables string) ([]string, error) {
	if strings.TrimSpace(tables) == "%" {
		return prov.ListTables(ctx, schema)
	}
	var names []string
	for _, part := range strings.Split(tables, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no tables selected")
	}
	return names, nil
}

// tableJob is one table's metadata plus its control-file toggles.
type tableJob struct {
	table    *tapi.Table
	packages bool
	views    bool
	triggers bool
}

// generateAll reads metadata for every selected table, then renders and
// writes artifacts with a bounded worker pool. Metadata reads stay on one
// goroutine: the postgres provider holds a single connection.
func generateAll(ctx context.Context, cfg *config.Config, logger *slog.Logger,
	prov catalog.Provider, store *templates.Store, exprs *templates.ExpressionStore,
	control *csvtab.File, out sink.Sink, opts generateOptions, ops []tapi.Operation, names []string) {

	var jobs []tableJob
	for _, name := range names {
		exists, err := prov.TableExists(ctx, opts.schema, name)
		if err != nil {
			cli.FatalErr("failed to check table "+name, err)
		}
		if !exists {
			if cfg.Behavior.SkipOnMissingTable {
				cli.Warnf("table %s.%s not found, skipping", opts.schema, name)
				logger.Warn("table_skipped", "schema", opts.schema, "table", name, "reason", "not found")
				continue
			}
			cli.Fatalf("table %s.%s not found", opts.schema, name)
		}

		tbl, err := tapi.LoadTable(ctx, prov, opts.schema, name, cfg.API.RowVersionColumn)
		if err != nil {
			cli.FatalErr("failed to read metadata for "+name, err)
		}

		jobs = append(jobs, tableJob{
			table:    tbl,
			packages: control.Enabled(opts.schema, name, csvtab.Packages),
			views:    control.Enabled(opts.schema, name, csvtab.Views),
			triggers: control.Enabled(opts.schema, name, csvtab.Triggers),
		})
	}

	var (
		wg   sync.WaitGroup
		sem  = make(chan struct{}, opts.workers)
		mu   sync.Mutex
		errs []error
	)

	for _, j := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(j tableJob) {
			defer wg.Done()
			defer func() { <-sem }()

			tlog := logging.ForTable(logger, j.table.Schema, j.table.Name)
			done := logging.Timed(tlog, "generate_table")
			err := generateTable(ctx, cfg, store, exprs, out, opts, ops, j)
			done()
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s.%s: %w", j.table.Schema, j.table.Name, err))
				mu.Unlock()
				tlog.Error("table_generation_failed", "error", err)
			}
		}(j)
	}
	wg.Wait()

	if len(errs) > 0 {
		cli.Fatalf("%d table(s) failed to generate", len(errs))
	}
}

// tableArtifact is one fully rendered artifact waiting to be written.
type tableArtifact struct {
	kind    sink.Kind
	name    string
	content string
}

// generateTable renders one table's enabled artifacts and writes them to the
// sink. Every artifact is rendered before the first write, so a failing table
// leaves nothing behind.
func generateTable(ctx context.Context, cfg *config.Config, store *templates.Store,
	exprs *templates.ExpressionStore, out sink.Sink, opts generateOptions,
	ops []tapi.Operation, j tableJob) error {

	gen, err := tapi.NewGenerator(cfg, j.table, store, exprs, tapi.Options{
		PackageOwner: opts.owner,
		Operations:   ops,
	})
	if err != nil {
		return err
	}

	var artifacts []tableArtifact

	if j.packages {
		spec, err := gen.PackageSpec()
		if err != nil {
			return err
		}
		body, err := gen.PackageBody()
		if err != nil {
			return err
		}
		artifacts = append(artifacts,
			tableArtifact{sink.KindSpec, gen.SpecFileName(), spec},
			tableArtifact{sink.KindBody, gen.BodyFileName(), body},
		)
	}

	if j.triggers {
		rendered, err := gen.Triggers()
		if err != nil {
			return err
		}
		for name, content := range rendered {
			artifacts = append(artifacts, tableArtifact{sink.KindTrigger, name, content})
		}
	}

	if j.views {
		rendered, err := gen.Views()
		if err != nil {
			return err
		}
		for name, content := range rendered {
			artifacts = append(artifacts, tableArtifact{sink.KindView, name, content})
		}
	}

	for _, a := range artifacts {
		if err := out.WriteArtifact(ctx, a.kind, a.name, []byte(a.content)); err != nil {
			return err
		}
	}
	return nil
}

// watchTemplates blocks, rerunning the generation whenever a template file
// changes, until the context is cancelled.
func watchTemplates(ctx context.Context, store *templates.Store, logger *slog.Logger, run func()) {
	changed := make(chan string, 1)
	errc := make(chan error, 1)
	go func() {
		errc <- store.Watch(ctx, changed)
	}()

	cli.Info("Watching templates for changes (Ctrl-C to stop)")
	for {
		select {
		case <-ctx.Done():
			cli.Info("Watch stopped")
			return
		case err := <-errc:
			if err != nil && ctx.Err() == nil {
				cli.FatalErr("template watch failed", err)
			}
			return
		case path := <-changed:
			logger.Info("template_changed", "path", path)
			cli.Infof("Template changed: %s, regenerating", path)
			run()
		}
	}
}
