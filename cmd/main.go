package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/victorlunam/schemr/internal/comparator"
	"github.com/victorlunam/schemr/internal/config"
	"github.com/victorlunam/schemr/internal/database"
	"github.com/victorlunam/schemr/internal/logging"
	"github.com/victorlunam/schemr/internal/report"
	"github.com/victorlunam/schemr/internal/snapshot"
	"github.com/victorlunam/schemr/internal/ui"
)

const usage = `schemr - database schema dump & diff

Usage:
  schemr dump --env NAME [--output DIR] [--config FILE]
  schemr compare [--env1 NAME --env2 NAME] [--output DIR] [--report FILE]
  schemr envs [--output DIR] [--config FILE]

Add --verbose to any command for debug logs. Set SCHEMR_SEQ_URL to also send
logs to a Seq server.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "dump":
		err = dumpCmd(os.Args[2:], os.Stdout)
	case "compare":
		err = compareCmd(os.Args[2:], os.Stdout)
	case "envs":
		err = envsCmd(os.Args[2:], os.Stdout)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// setupLogger installs the process logger, tagged with a fresh run id.
func setupLogger(verbose bool) func() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	logger, closeFn := logging.SetupLogger(os.Stderr, logging.Options{
		Level:  level,
		SeqURL: os.Getenv("SCHEMR_SEQ_URL"),
	})
	slog.SetDefault(logger.With("run_id", uuid.NewString()))
	return closeFn
}

func dumpCmd(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("dump", flag.ContinueOnError)
	var env, output, configFile string
	var verbose bool
	flags.StringVar(&env, "env", "", "Environment name to dump (must exist in the config file)")
	flags.StringVar(&output, "output", snapshot.DefaultRoot, "Output directory for JSON files")
	flags.StringVar(&configFile, "config", config.DefaultFile, "Configuration file")
	flags.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if env == "" {
		return errors.New("--env is required")
	}

	closeFn := setupLogger(verbose)
	defer closeFn()

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("%w; create %s first", err, configFile)
	}
	params, err := cfg.ResolveEnvironment(env)
	if err != nil {
		return err
	}

	db, err := database.Connect(params)
	if err != nil {
		return fmt.Errorf("error connecting to '%s': %w", env, err)
	}
	defer db.Close()
	color.New(color.FgGreen).Fprintf(stdout, "Successfully connected to '%s'\n", env)

	w, err := snapshot.Create(output, env)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	manifest, err := database.Dump(ctx, db, w)
	if err != nil {
		return err
	}

	color.New(color.FgGreen).Fprintf(stdout, "Schema for '%s' dumped to %s (%d tables)\n", env, w.Path(), len(manifest.Tables))
	return nil
}

func compareCmd(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("compare", flag.ContinueOnError)
	var env1, env2, output, reportFile string
	var verbose bool
	flags.StringVar(&env1, "env1", "", "First environment")
	flags.StringVar(&env2, "env2", "", "Second environment")
	flags.StringVar(&output, "output", snapshot.DefaultRoot, "Directory holding the snapshots")
	flags.StringVar(&reportFile, "report", report.DefaultFile, "HTML report file")
	flags.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	if err := flags.Parse(args); err != nil {
		return err
	}

	closeFn := setupLogger(verbose)
	defer closeFn()

	if env1 == "" || env2 == "" {
		envs, err := snapshot.Environments(output)
		if err != nil {
			return err
		}
		env1, env2, err = ui.SelectEnvironments(envs)
		if err != nil {
			return err
		}
	}

	comp := comparator.NewComparator(snapshot.Open(output, env1), snapshot.Open(output, env2), slog.Default())
	result, err := comp.Compare()
	if err != nil {
		return err
	}
	slog.Info("comparison finished", "summary", comparator.Describe(result))

	printLines(stdout, report.ConsoleLines(result))

	if err := os.WriteFile(reportFile, []byte(report.Document(result)), 0644); err != nil {
		return fmt.Errorf("error writing report: %w", err)
	}
	color.New(color.FgGreen).Fprintf(stdout, "Comparison completed. The report is in the '%s' file\n", reportFile)
	return nil
}

func printLines(w io.Writer, lines []string) {
	header := color.New(color.FgCyan)
	table := color.New(color.FgYellow)
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "Comparing "), strings.HasPrefix(line, "Tables only in "):
			header.Fprintln(w, line)
		case strings.HasPrefix(line, "Table: "):
			table.Fprintln(w, line)
		default:
			fmt.Fprintln(w, line)
		}
	}
}

func envsCmd(args []string, stdout io.Writer) error {
	flags := flag.NewFlagSet("envs", flag.ContinueOnError)
	var output, configFile string
	flags.StringVar(&output, "output", snapshot.DefaultRoot, "Directory holding the snapshots")
	flags.StringVar(&configFile, "config", config.DefaultFile, "Configuration file")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)

	cfg, err := config.Load(configFile)
	if err != nil {
		color.New(color.FgYellow).Fprintf(stdout, "No configuration loaded: %v\n", err)
	} else {
		cyan.Fprintf(stdout, "Configured environments (%s):\n", configFile)
		for _, name := range cfg.Names() {
			env := cfg.Environments[name]
			fmt.Fprintf(stdout, "  %s\t%s %s/%s\n", name, env.Driver, env.Host, env.Database)
		}
	}

	envs, err := snapshot.Environments(output)
	if err != nil {
		return err
	}
	cyan.Fprintf(stdout, "Snapshots (%s):\n", output)
	for _, name := range envs {
		fmt.Fprintf(stdout, "  %s\n", name)
	}
	return nil
}
