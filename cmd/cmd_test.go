package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/malu-oliver/agent-financeiro/internal/profiling"
)

// execute runs the root command with args and returns what it printed.
// Flags are reset afterwards because the command tree is package state.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		for name, def := range map[string]string{"json": "false", "user": "0", "self": "", "reference": ""} {
			_ = classifyCmd.Flags().Set(name, def)
		}
		_ = rootCmd.PersistentFlags().Set("db", "")
	})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("AGENTFIN_CONFIG", "")
	t.Setenv("AGENTFIN_DB", "")
	t.Setenv("AGENTFIN_LLM_PROVIDER", "mock")
	return filepath.Join(t.TempDir(), "agentfin.db")
}

func TestVersion(t *testing.T) {
	out := execute(t, "version")
	assert.True(t, strings.HasPrefix(out, "agentfin "), out)
}

func TestClassifyJSON(t *testing.T) {
	db := isolate(t)
	out := execute(t, "--db", db, "classify", "--json", "Quero segurança e baixo risco para minha aposentadoria")

	var res profiling.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, profiling.Conservative, res.Dominant)
	assert.Equal(t, 3, res.MatchCount)
	assert.InDelta(t, 100, res.Distribution.Sum(), 1e-6)
}

func TestClassifyText(t *testing.T) {
	db := isolate(t)
	out := execute(t, "--db", db, "classify", "xyz", "qwerty")
	assert.Contains(t, out, "Perfil:")
	assert.Contains(t, out, "Nenhum padrão reconhecido")
}

func TestLearningSurvivesRestart(t *testing.T) {
	db := isolate(t)
	execute(t, "--db", db, "classify", "--user", "7", "quero investir tesouro direto")
	execute(t, "--db", db, "classify", "--user", "7", "quero investir tesouro direto")

	out := execute(t, "--db", db, "stats")
	assert.Regexp(t, `Users tracked\s+1\n`, out)
	assert.Regexp(t, `Classifications\s+2\n`, out)
	assert.Contains(t, out, "Dados insuficientes para comparação")
}

func TestUsesTUI(t *testing.T) {
	assert.True(t, usesTUI(rootCmd))
	assert.True(t, usesTUI(askCmd))
	assert.False(t, usesTUI(classifyCmd))
	assert.False(t, usesTUI(llmListCmd))
}
