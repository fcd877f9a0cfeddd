package config

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(apiKeyEnv, "")

	cfg, err := LoadConfig(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 8001, cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Quotes.PollInterval)
	assert.Equal(t, 2.0, cfg.Risk.MaxRiskPct)
	assert.Equal(t, 0.8, cfg.Risk.DailyBudgetFraction)
	assert.Equal(t, -3.0, cfg.Risk.MinRMultiple)
	assert.Equal(t, 20, cfg.Reports.PageSize)
	assert.Empty(t, cfg.Quotes.ApiKey)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yml := `
logger:
  level: debug
  format: json
server:
  port: 9090
quotes:
  api_key: from-file
  instruments: [EURUSD, XAUUSD]
risk:
  max_risk_pct: 1
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(yml), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TRADERMADE_API_KEY=from-dotenv\n"), 0o644))
	t.Setenv(apiKeyEnv, "")
	os.Unsetenv(apiKeyEnv)
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := LoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, []string{"EURUSD", "XAUUSD"}, cfg.Quotes.Instruments)
	assert.Equal(t, 1.0, cfg.Risk.MaxRiskPct)
	assert.Equal(t, 1.5, cfg.Risk.WarnRiskPct)
	assert.Equal(t, "from-dotenv", cfg.Quotes.ApiKey)
}

func TestLoadConfig_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("server: [unclosed"), 0o644))

	_, err := LoadConfig(dir)

	assert.Error(t, err)
}
