package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/malu-oliver/agent-financeiro/internal/config"
	"github.com/malu-oliver/agent-financeiro/internal/jobs"
	"github.com/malu-oliver/agent-financeiro/internal/llm"
	"github.com/malu-oliver/agent-financeiro/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := rt.store.Close(); err != nil {
				rt.logger.Error("closing store", "error", err)
			}
		}()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			rt.cfg.Server.Addr = addr
		}

		sched, err := jobs.New(rt.ckpt, rt.selic, jobs.Options{
			CheckpointSchedule: rt.cfg.Jobs.CheckpointSchedule,
			SelicSchedule:      rt.cfg.Jobs.SelicSchedule,
		}, rt.logger)
		if err != nil {
			return fmt.Errorf("schedule jobs: %w", err)
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(context.WithoutCancel(ctx)); err != nil {
				rt.logger.Error("stopping jobs", "error", err)
			}
		}()

		err = config.Watch(ctx, rt.configPath, rt.logger, func(c config.Config) {
			if lvl, _ := cmd.Flags().GetString("log-level"); lvl == "" {
				logLevel.Set(c.Level())
			}
			rt.logger.Info("config reloaded", "path", rt.configPath, "log_level", c.LogLevel)
		})
		if err != nil {
			rt.logger.Warn("config reload disabled", "error", err)
		}

		if c, ok := rt.provider.(llm.Checker); ok {
			checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if err := c.Check(checkCtx); err != nil {
				rt.logger.Warn("LLM check failed, texts may fall back to templates", "error", err)
			}
			cancel()
		}

		rt.logger.Info("serving", "addr", rt.cfg.Server.Addr, "version", versionString())
		return server.New(rt.service, rt.metrics, rt.logger).Run(ctx, server.Options{
			Addr:            rt.cfg.Server.Addr,
			ReadTimeout:     rt.cfg.Server.ReadTimeout,
			WriteTimeout:    rt.cfg.Server.WriteTimeout,
			ShutdownTimeout: rt.cfg.Server.ShutdownTimeout,
		})
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
