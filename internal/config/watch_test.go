package config

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForLevel drains reloads until one carries want. A write may surface
// as a truncate followed by the content, so intermediate configs are skipped.
func waitForLevel(t *testing.T, got <-chan Config, want string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case c := <-got:
			if c.LogLevel == want {
				return
			}
		case <-deadline:
			t.Fatalf("no reload with log_level %q", want)
		}
	}
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	t.Setenv("AGENTFIN_LOG_LEVEL", "")
	path := writeConfig(t, "log_level: info\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Config, 16)
	require.NoError(t, Watch(ctx, path, nil, func(c Config) { got <- c }))

	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))
	waitForLevel(t, got, "debug")
}

func TestWatch_SkipsInvalid(t *testing.T) {
	t.Setenv("AGENTFIN_LOG_LEVEL", "")
	path := writeConfig(t, "log_level: info\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var delivered []string
	got := make(chan Config, 16)
	require.NoError(t, Watch(ctx, path, nil, func(c Config) {
		got <- c
	}))

	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("log_level: error\n"), 0o644))
	deadline := time.After(3 * time.Second)
	for {
		select {
		case c := <-got:
			delivered = append(delivered, c.LogLevel)
			if c.LogLevel == "error" {
				assert.NotContains(t, delivered, "loud")
				return
			}
		case <-deadline:
			t.Fatalf("no reload after valid write, got %v", delivered)
		}
	}
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), "/nonexistent/dir/agentfin.yaml", nil, func(Config) {})
	assert.Error(t, err)
}

func TestLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := (Config{LogLevel: in}).Level(); got != want {
			t.Errorf("Level(%q): got %v, want %v", in, got, want)
		}
	}
}

func TestPath(t *testing.T) {
	t.Setenv("AGENTFIN_CONFIG", "")
	p, explicit := Path("")
	assert.Equal(t, "agentfin.yaml", p)
	assert.False(t, explicit)

	t.Setenv("AGENTFIN_CONFIG", "/etc/agentfin.yaml")
	p, explicit = Path("")
	assert.Equal(t, "/etc/agentfin.yaml", p)
	assert.True(t, explicit)

	p, explicit = Path("local.yaml")
	assert.Equal(t, "local.yaml", p)
	assert.True(t, explicit)
}
