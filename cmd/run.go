package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/malu-oliver/agent-financeiro/internal/advisor"
	"github.com/malu-oliver/agent-financeiro/internal/analytics"
	"github.com/malu-oliver/agent-financeiro/internal/app"
	"github.com/malu-oliver/agent-financeiro/internal/config"
	"github.com/malu-oliver/agent-financeiro/internal/content"
	"github.com/malu-oliver/agent-financeiro/internal/invest"
	"github.com/malu-oliver/agent-financeiro/internal/jobs"
	"github.com/malu-oliver/agent-financeiro/internal/llm"
	"github.com/malu-oliver/agent-financeiro/internal/metrics"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/store"
	"github.com/spf13/cobra"
)

// runtime holds everything a command needs, restored from the latest
// learning snapshot.
type runtime struct {
	cfg        config.Config
	configPath string
	store      *store.Store
	engine     *profiling.Engine
	generator  *content.Generator
	selic      *invest.SelicClient
	provider   llm.Provider
	metrics    *metrics.Metrics
	service    *advisor.Service
	ckpt       *jobs.Checkpointer
	logger     *slog.Logger
}

// openRuntime loads the config, opens the store and wires the services.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	ctx := cmd.Context()
	logger := slog.Default()

	flagPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(flagPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl == "" {
		logLevel.Set(cfg.Level())
	}
	configPath, _ := config.Path(flagPath)

	dbPath, err := resolveDBPath(cmd, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	m := metrics.New()
	provider, err := llm.NewProvider(ctx, cfg.LLM, llm.Deps{
		Events:   st.EventRepo(),
		Observer: m,
		Logger:   logger,
	})
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Info("no LLM API key found, using built-in content")
		provider = nil
	case err != nil:
		logger.Warn("LLM provider unavailable, using built-in content", "error", err)
		provider = nil
	}
	model := ""
	if provider != nil {
		model = provider.ModelID()
	}

	engine := profiling.New(cfg.Profiling, nil, logger)
	generator := content.NewGenerator(provider, content.DefaultConfig(), logger)
	selic := invest.NewSelicClient(cfg.Selic.URL, cfg.Selic.FallbackRate, cfg.Selic.Timeout, invest.WithLogger(logger))

	rt := &runtime{
		cfg:        cfg,
		configPath: configPath,
		store:      st,
		engine:     engine,
		generator:  generator,
		selic:      selic,
		provider:   provider,
		metrics:    m,
		logger:     logger,
		service: advisor.New(advisor.Deps{
			Engine:     engine,
			Generator:  generator,
			Calculator: invest.NewCalculator(selic),
			Analyzer:   analytics.New(st.UserRepo()),
			Users:      st.UserRepo(),
			Events:     st.EventRepo(),
			Metrics:    m,
			Logger:     logger,
			Model:      model,
		}),
		ckpt: &jobs.Checkpointer{
			Engine:    engine,
			Generator: generator,
			Snapshots: st.SnapshotRepo(),
			Events:    st.EventRepo(),
			Metrics:   m,
			Keep:      cfg.Jobs.KeepSnapshots,
			Logger:    logger,
		},
	}

	if _, err := rt.ckpt.Restore(ctx); err != nil {
		st.Close()
		return nil, fmt.Errorf("restore learning state: %w", err)
	}
	return rt, nil
}

// close saves the learning state and closes the store.
func (rt *runtime) close(ctx context.Context) {
	if err := rt.ckpt.Checkpoint(ctx); err != nil {
		rt.logger.Error("final checkpoint failed", "error", err)
	}
	if err := rt.store.Close(); err != nil {
		rt.logger.Error("closing store", "error", err)
	}
}

// runApp builds the dependencies and launches the TUI.
func runApp(cmd *cobra.Command, startAsk bool) error {
	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.close(context.WithoutCancel(cmd.Context()))

	return app.Run(app.Options{
		Agent:    rt.service,
		Selic:    rt.selic,
		StartAsk: startAsk,
	})
}
