package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/holocron/internal/paths"
)

// app carries the state shared by every subcommand of one invocation.
type app struct {
	stdout, stderr io.Writer

	flagConfigDir string
	flagDataDir   string
	verbose       bool
	colorMode     string

	cfg    *viper.Viper
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, logger: slog.Default()}

	root := &cobra.Command{
		Use:           "holocron",
		Short:         "Star Wars sample data for SQL test suites",
		Long:          "holocron loads the Star Wars movies and characters fixture into SQLite or\nPostgres, checks that it is intact, and serves or exports it.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flagConfigDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/holocron)")
	pf.StringVar(&a.flagDataDir, "data-dir", "", "data directory for the SQLite file (default: $XDG_DATA_HOME/holocron)")
	pf.String(cfgKeyDriver, defaultDriver, "database/sql driver: sqlite, pgx or postgres")
	pf.String(cfgKeyDSN, "", "data source name (SQLite path or Postgres connection string)")
	pf.String(cfgKeyVariant, "", "fixture variant: generic or postgres (default depends on driver)")
	pf.String(cfgKeySchema, "", "Postgres schema to work in")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	pf.StringVar(&a.colorMode, "color", "auto", "color output: always, auto or never")

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		a.logger = newLogger(stderr, a.verbose)
		if err := setColorMode(a.colorMode, stdout); err != nil {
			return err
		}
		configDir, err := paths.ResolveConfigDir(a.flagConfigDir)
		if err != nil {
			return fmt.Errorf("resolve config dir: %w", err)
		}
		cfg, err := loadConfig(configDir, pf)
		if err != nil {
			return err
		}
		a.cfg = cfg
		a.logger.Debug("config loaded", "dir", configDir, "file", cfg.ConfigFileUsed())
		return nil
	}

	root.AddCommand(
		newLoadCmd(a),
		newVerifyCmd(a),
		newListCmd(a),
		newExportCmd(a),
		newServeCmd(a),
		newDropCmd(a),
		newSQLCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setColorMode configures fatih/color. "auto" colors only when stdout is a
// terminal.
func setColorMode(mode string, stdout io.Writer) error {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
		f, ok := stdout.(*os.File)
		color.NoColor = !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	default:
		return fmt.Errorf("%w: invalid --color value %q: must be always, auto or never", errUsage, mode)
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
