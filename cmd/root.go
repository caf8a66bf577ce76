package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/malu-oliver/agent-financeiro/internal/config"
	"github.com/malu-oliver/agent-financeiro/internal/store"
	"github.com/spf13/cobra"
)

// logLevel is shared by every handler so serve can change it on reload.
var logLevel = new(slog.LevelVar)

var rootCmd = &cobra.Command{
	Use:   "agentfin",
	Short: "Investor profile advisor",
	Long: "agentfin classifies investor risk profiles from free text, learns from every " +
		"interaction and simulates investments.",
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, false)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides AGENTFIN_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides AGENTFIN_CONFIG env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(evolutionCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// setupLogging installs the default slog handler. The terminal UI owns the
// screen, so without --log-file its logs are discarded.
func setupLogging(cmd *cobra.Command, args []string) error {
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if err := logLevel.UnmarshalText([]byte(lvl)); err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", lvl, err)
		}
	}

	var w io.Writer = os.Stderr
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		w = f
	} else if usesTUI(cmd) {
		w = io.Discard
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel})))
	return nil
}

// usesTUI must not refer to rootCmd, whose initializer reaches it through
// setupLogging.
func usesTUI(cmd *cobra.Command) bool {
	return !cmd.HasParent() || cmd.Name() == "ask"
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file, then AGENTFIN_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}

// openStore opens the database named by --db, the config file or the
// environment, without wiring the services.
func openStore(cmd *cobra.Command) (*store.Store, string, error) {
	flagPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(flagPath)
	if err != nil {
		return nil, "", fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg.DBPath)
	if err != nil {
		return nil, "", fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	return s, dbPath, nil
}
