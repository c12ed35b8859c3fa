package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/azyu/publishgpt/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigManager_UsesXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cm, err := NewConfigManager()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "publishgpt", "config.yaml"), cm.Path())
}

func TestConfigManager_LoadGlobalConfig(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cm := NewConfigManagerAt(filepath.Join(t.TempDir(), "config.yaml"))

		cfg, err := cm.LoadGlobalConfig()
		require.NoError(t, err)
		assert.Equal(t, types.DefaultGlobalConfig(), cfg)
	})

	t.Run("parses providers and expands env references", func(t *testing.T) {
		t.Setenv("PUBLISHGPT_TEST_GEMINI_KEY", "gem-from-env")
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `version: 1
providers:
  openai:
    api_key: sk-literal
    default_model: gpt-4o
  gemini:
    api_key: ${PUBLISHGPT_TEST_GEMINI_KEY}
defaults:
  provider: gemini
logging:
  level: debug
  format: json
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cm := NewConfigManagerAt(path)
		cfg, err := cm.LoadGlobalConfig()
		require.NoError(t, err)

		assert.Equal(t, "sk-literal", cfg.Providers["openai"].APIKey)
		assert.Equal(t, "gpt-4o", cfg.Providers["openai"].DefaultModel)
		assert.Equal(t, "gem-from-env", cfg.Providers["gemini"].APIKey)
		assert.Equal(t, "gemini", cfg.Defaults.Provider)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "json", cfg.Logging.Format)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: info\n"), 0600))

		cfg, err := NewConfigManagerAt(path).LoadGlobalConfig()
		require.NoError(t, err)
		assert.Equal(t, "openai", cfg.Defaults.Provider)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.NotNil(t, cfg.Providers)
	})

	t.Run("malformed yaml is invalid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("providers: [unclosed"), 0600))

		_, err := NewConfigManagerAt(path).LoadGlobalConfig()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestConfigManager_SaveGlobalConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cm := NewConfigManagerAt(path)

	cfg := types.DefaultGlobalConfig()
	cfg.Providers["openai"] = &types.ProviderConfig{APIKey: "sk-test", DefaultModel: "gpt-4o"}
	cfg.Defaults.Provider = "openai"

	require.NoError(t, cm.SaveGlobalConfig(cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "keys are not world readable")

	reloaded, err := NewConfigManagerAt(path).LoadGlobalConfig()
	require.NoError(t, err)
	assert.Equal(t, "sk-test", reloaded.Providers["openai"].APIKey)
	assert.Equal(t, "gpt-4o", reloaded.Providers["openai"].DefaultModel)

	pc, err := cm.GetProviderConfig("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-test", pc.APIKey)

	_, err = cm.GetProviderConfig("gemini")
	assert.Error(t, err)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("PUBLISHGPT_TEST_VALUE", "expanded")

	assert.Equal(t, "expanded", expandEnv("${PUBLISHGPT_TEST_VALUE}"))
	assert.Equal(t, "", expandEnv("${PUBLISHGPT_TEST_UNSET_VALUE}"))
	assert.Equal(t, "plain", expandEnv("plain"))
	assert.Equal(t, "prefix-${X}", expandEnv("prefix-${X}"))
}
