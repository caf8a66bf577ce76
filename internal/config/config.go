// Package config loads agentfin settings from an optional YAML file with
// AGENTFIN_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/malu-oliver/agent-financeiro/internal/llm"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
)

// DefaultSelicURL is the Banco Central SGS endpoint for series 11.
const DefaultSelicURL = "https://api.bcb.gov.br/dados/serie/bcdata.sgs.11/dados/ultimos/1?formato=json"

type Config struct {
	Server    ServerConfig     `yaml:"server"`
	DBPath    string           `yaml:"db_path"`
	LogLevel  string           `yaml:"log_level"`
	LLM       llm.Config       `yaml:"llm"`
	Profiling profiling.Config `yaml:"profiling"`
	Selic     SelicConfig      `yaml:"selic"`
	Jobs      JobsConfig       `yaml:"jobs"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type SelicConfig struct {
	URL string `yaml:"url"`
	// FallbackRate is the annual Selic percentage used when the API is
	// unreachable.
	FallbackRate float64       `yaml:"fallback_rate"`
	Timeout      time.Duration `yaml:"timeout"`
}

type JobsConfig struct {
	CheckpointSchedule string `yaml:"checkpoint_schedule"`
	SelicSchedule      string `yaml:"selic_schedule"`
	KeepSnapshots      int    `yaml:"keep_snapshots"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		LogLevel:  "info",
		LLM:       llm.DefaultConfig(),
		Profiling: profiling.DefaultConfig(),
		Selic: SelicConfig{
			URL:          DefaultSelicURL,
			FallbackRate: 11.75,
			Timeout:      5 * time.Second,
		},
		Jobs: JobsConfig{
			CheckpointSchedule: "@every 5m",
			SelicSchedule:      "@hourly",
			KeepSnapshots:      10,
		},
	}
}

// Load reads path (or $AGENTFIN_CONFIG when path is empty) over the
// defaults and applies environment overrides. A missing file is an error
// only when it was asked for explicitly.
func Load(path string) (Config, error) {
	cfg := Default()
	path, explicit := Path(path)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("reading config: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	envOverride(&cfg.Server.Addr, "AGENTFIN_ADDR")
	envOverride(&cfg.DBPath, "AGENTFIN_DB")
	envOverride(&cfg.LogLevel, "AGENTFIN_LOG_LEVEL")
	envOverride(&cfg.Selic.URL, "AGENTFIN_SELIC_URL")
	envOverride(&cfg.Jobs.CheckpointSchedule, "AGENTFIN_CHECKPOINT_SCHEDULE")
	envOverride(&cfg.Jobs.SelicSchedule, "AGENTFIN_SELIC_SCHEDULE")
	if err := envOverrideFloat(&cfg.Selic.FallbackRate, "AGENTFIN_SELIC_FALLBACK"); err != nil {
		return err
	}
	if err := envOverrideInt(&cfg.Jobs.KeepSnapshots, "AGENTFIN_KEEP_SNAPSHOTS"); err != nil {
		return err
	}
	if err := envOverrideInt(&cfg.Profiling.HistoryLimit, "AGENTFIN_HISTORY_LIMIT"); err != nil {
		return err
	}
	cfg.LLM.ApplyEnv()
	return nil
}

// Path resolves the config file location: path itself, then
// AGENTFIN_CONFIG, then agentfin.yaml in the working directory. explicit
// reports whether the caller or the environment named the file.
func Path(path string) (resolved string, explicit bool) {
	if path != "" {
		return path, true
	}
	if env := os.Getenv("AGENTFIN_CONFIG"); env != "" {
		return env, true
	}
	return "agentfin.yaml", false
}

// Level maps LogLevel onto a slog level. Unknown names map to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.Selic.FallbackRate <= 0 {
		return fmt.Errorf("selic.fallback_rate must be positive, got %v", c.Selic.FallbackRate)
	}
	if c.Jobs.KeepSnapshots < 1 {
		return fmt.Errorf("jobs.keep_snapshots must be >= 1, got %d", c.Jobs.KeepSnapshots)
	}
	for name, spec := range map[string]string{
		"jobs.checkpoint_schedule": c.Jobs.CheckpointSchedule,
		"jobs.selic_schedule":      c.Jobs.SelicSchedule,
	} {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, spec, err)
		}
	}
	p := c.Profiling
	if p.MaxEffectiveness <= p.MinEffectiveness {
		return fmt.Errorf("profiling: max_effectiveness (%v) must exceed min_effectiveness (%v)",
			p.MaxEffectiveness, p.MinEffectiveness)
	}
	if p.HistoryLimit < 1 {
		return fmt.Errorf("profiling.history_limit must be >= 1, got %d", p.HistoryLimit)
	}
	if p.FallbackConfidence < 0 || p.FallbackConfidence > 1 {
		return fmt.Errorf("profiling.fallback_confidence must be between 0 and 1, got %v", p.FallbackConfidence)
	}
	for key := range p.ExtraSignatures {
		if _, ok := profiling.ParseProfile(string(key)); !ok {
			return fmt.Errorf("profiling.extra_signatures: unknown profile %q", key)
		}
	}
	return nil
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}
