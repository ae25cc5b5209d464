package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/undeadops/goshort/internal/config"
	"github.com/undeadops/goshort/internal/logging"
)

const (
	appName = "goshort"
)

var (
	version string
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Keyword shortcuts for your address bar",
		Long:          `goshort maps short keywords to URLs and resolves them from the browser address bar, a terminal popup, or the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (yaml, json or toml)")
	flags.String("backend", "", "storage backend: file, sqlite, dynamodb or memory")
	flags.String("store-path", "", "path of the JSON file or SQLite database")
	flags.String("search-url", "", "search URL used when no shortcut matches")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("debug", false, "enable debug mode")

	for key, flag := range map[string]string{
		"store.backend": "backend",
		"store.path":    "store-path",
		"search_url":    "search-url",
		"log_level":     "log-level",
		"debug":         "debug",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newVersionCmd(),
		newServeCmd(a),
		newPopupCmd(a),
		newListCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newRemoveCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newSuggestCmd(a),
		newOpenCmd(a),
	)

	return root
}

// init loads and validates configuration and builds the logger.
func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Debug && cfg.LogLevel == "info" {
		cfg.LogLevel = "debug"
	}
	a.cfg = cfg

	// Structured JSON for the server, readable console output for everything else.
	a.logger = logging.New(appName, logging.Options{
		Version: version,
		Level:   cfg.LogLevel,
		JSON:    cmd.Name() == "serve",
	})
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			v := version
			if v == "" {
				v = "dev"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, v)
		},
	}
}
