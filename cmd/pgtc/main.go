package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/riftdata/pgtc/internal/codegen"
	"github.com/riftdata/pgtc/internal/discover"
	"github.com/riftdata/pgtc/internal/envcfg"
	"github.com/riftdata/pgtc/internal/introspect"
	"github.com/riftdata/pgtc/internal/pgcat"
	"github.com/riftdata/pgtc/internal/pgerr"
	"github.com/riftdata/pgtc/internal/pgwire"
	"github.com/riftdata/pgtc/internal/selfupdate"
	"github.com/riftdata/pgtc/internal/sqlparse"
	"github.com/riftdata/pgtc/internal/ui"
	"github.com/riftdata/pgtc/pkg/logger"
)

// Build-time variables
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global flags
var (
	quiet      bool
	verbose    bool
	srcDir     string
	destDir    string
	pkgName    string
	pattern    string
	dotEnvFile string
)

var out *ui.Output

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if out != nil {
			out.Error(err.Error())
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

var rootCmd = &cobra.Command{
	Use:     "pgtc",
	Short:   "Compile-time SQL code generator for Postgres",
	Version: version,
	Long: `pgtc introspects annotated .sql files against a live Postgres server
and emits typed Go call sites for each query — no ORM, no runtime reflection.

Get started:
  pgtc init --database-url postgres://localhost:5432/mydb
  pgtc generate --src ./queries --dest ./db
  pgtc check --src ./queries --dest ./db

Documentation: https://riftdata.io/docs/pgtc`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}
		out = ui.NewOutput(os.Stderr, quiet)
		if verbose {
			logger.SetLevel("debug")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = cmd.Usage()
		return &pgerr.ConfigError{Setting: "subcommand", Err: fmt.Errorf("missing subcommand")}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out.Title("pgtc")
		out.Printf("Version: %s", version)
		out.Printf("Commit:  %s", commit)
		out.Printf("Built:   %s", buildTime)
		out.Printf("Go:      %s", runtime.Version())
		out.Printf("OS/Arch: %s/%s", runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Check for a newer pgtc release",
	Long: `Check GitHub Releases for a pgtc build newer than this one. This is
the only command that talks to anything other than the configured Postgres
server — "generate" and "check" never make this call.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rel, newer, err := selfupdate.CheckLatest(cmd.Context(), version)
		if err != nil {
			return fmt.Errorf("checking for updates: %w", err)
		}
		if !newer {
			out.Success(fmt.Sprintf("pgtc %s is up to date", version))
			return nil
		}
		out.Info(fmt.Sprintf("pgtc %s is available (you have %s)", rel.TagName, version))
		out.Print("  " + rel.HTMLURL)
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a .env file with the Postgres connection pgtc will use",
	Long: `Prompt for a Postgres connection and write it to .env as
DATABASE_URL, the variable envcfg.Load resolves for every other command.`,
	RunE: runInit,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Introspect annotated .sql files and emit typed Go call sites",
	Example: `  pgtc generate --src ./queries --dest ./db
  pgtc generate --src ./queries --dest ./db --package db`,
	RunE: runGenerate,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify generated output matches a fresh render, byte for byte",
	Long: `Regenerate in memory and diff the result against --dest without
writing anything. Exits non-zero if any file would change — for CI, to
catch .sql changes that were never followed by "pgtc generate".`,
	Example: `  pgtc check --src ./queries --dest ./db`,
	RunE:    runCheck,
}

func init() {
	// "-v" is reserved for --version (cobra binds it automatically once
	// Command.Version is set and "v" is otherwise free); verbose logging
	// has no shorthand.
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose logging")
	rootCmd.PersistentFlags().StringVar(&dotEnvFile, "env-file", envcfg.DefaultDotEnvFile, "path to a .env file carrying DATABASE_URL")

	for _, cmd := range []*cobra.Command{generateCmd, checkCmd} {
		cmd.Flags().StringVar(&srcDir, "src", "", "directory of annotated .sql files (required)")
		cmd.Flags().StringVar(&destDir, "dest", "", "directory to write (or compare) generated Go files (required)")
		cmd.Flags().StringVar(&pkgName, "package", "db", "Go package name for generated files")
		cmd.Flags().StringVar(&pattern, "pattern", discover.DefaultPattern, "doublestar glob selecting .sql files under --src")
		cmd.MarkFlagRequired("src")
		cmd.MarkFlagRequired("dest")
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	out.Title("pgtc init")

	details, err := ui.ConnectionForm(nil)
	if err != nil {
		return err
	}

	content := fmt.Sprintf("DATABASE_URL=%s\n", details.DatabaseURL())
	if err := os.WriteFile(dotEnvFile, []byte(content), 0o600); err != nil {
		return &pgerr.ConfigError{Setting: "DATABASE_URL", Err: fmt.Errorf("writing %s: %w", dotEnvFile, err)}
	}

	out.Success(fmt.Sprintf("wrote %s", dotEnvFile))
	out.Info("Next: pgtc generate --src ./queries --dest ./db")
	return nil
}

// loadQueries discovers and parses every .sql file under srcDir, in
// deterministic file order.
func loadQueries() ([]sqlparse.UntypedQuery, error) {
	var queries []sqlparse.UntypedQuery
	err := discover.Walk(srcDir, pattern, func(path string, contents []byte) error {
		fileQueries, err := sqlparse.ParseFile(path, contents)
		if err != nil {
			return &pgerr.FileError{Path: path, Err: err}
		}
		queries = append(queries, fileQueries...)
		return nil
	})
	return queries, err
}

// introspectAll connects to the configured Postgres server, resolves
// every query's parameter and column types, and reports per-query
// failures without aborting the run.
func introspectAll(ctx context.Context, queries []sqlparse.UntypedQuery) (*introspect.Result, error) {
	cfg, err := envcfg.Load(dotEnvFile)
	if err != nil {
		return nil, err
	}

	spinner := ui.NewSimpleSpinner(fmt.Sprintf("Connecting to %s", cfg.Address()))
	spinner.Start()

	conn, err := pgwire.Connect(ctx, cfg.Address())
	if err != nil {
		spinner.StopFail("Connection failed")
		return nil, &pgerr.ConnectionError{Address: cfg.Address(), Err: err}
	}
	defer conn.Terminate()

	if err := conn.Handshake(cfg.User, cfg.Database, pgwire.StaticPassword(cfg.Password)); err != nil {
		spinner.StopFail("Handshake failed")
		return nil, err
	}
	spinner.Stop(fmt.Sprintf("Connected to %s as %s", cfg.Address(), cfg.User))

	warnedOIDs := make(map[uint32]bool)
	onUnknown := func(u pgcat.Unknown) {
		if warnedOIDs[u.OID] {
			return
		}
		warnedOIDs[u.OID] = true
		out.Warning(fmt.Sprintf("unrecognized type OID %d, falling back to text", u.OID))
	}

	return introspect.Run(conn, queries, onUnknown)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	queries, err := loadQueries()
	if err != nil {
		return err
	}

	result, err := introspectAll(cmd.Context(), queries)
	if err != nil {
		return err
	}
	for _, qerr := range result.Errors {
		out.QueryError(qerr)
	}

	rendered, err := codegen.Emit(pkgName, result.Queries)
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}

	if err := os.RemoveAll(destDir); err != nil {
		return fmt.Errorf("clearing %s: %w", destDir, err)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}
	for _, name := range rendered.Files() {
		path := filepath.Join(destDir, name)
		if err := os.WriteFile(path, rendered.Content(name), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	out.Summary(len(queries), len(result.Queries), len(result.Errors))
	if len(result.Errors) > 0 {
		return fmt.Errorf("%d quer(y/ies) failed", len(result.Errors))
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	queries, err := loadQueries()
	if err != nil {
		return err
	}

	result, err := introspectAll(cmd.Context(), queries)
	if err != nil {
		return err
	}
	for _, qerr := range result.Errors {
		out.QueryError(qerr)
	}

	rendered, err := codegen.Emit(pkgName, result.Queries)
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}

	var drifted []string
	for _, name := range rendered.Files() {
		path := filepath.Join(destDir, name)
		onDisk, err := os.ReadFile(path)
		if err != nil {
			drifted = append(drifted, path)
			continue
		}
		if string(onDisk) != string(rendered.Content(name)) {
			drifted = append(drifted, path)
		}
	}

	if len(result.Errors) > 0 || len(drifted) > 0 {
		for _, path := range drifted {
			out.Warning(fmt.Sprintf("%s is out of date, run 'pgtc generate'", path))
		}
		out.Summary(len(queries), len(result.Queries), len(result.Errors)+len(drifted))
		return fmt.Errorf("check failed: %d drifted file(s), %d query error(s)", len(drifted), len(result.Errors))
	}

	out.Summary(len(queries), len(result.Queries), 0)
	return nil
}
