package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeErrorMessage(t *testing.T) {
	fallback := "操作失败"
	testErr := errors.New("internal database error")

	// nil err 返回 fallback
	assert.Equal(t, fallback, SafeErrorMessage(nil, fallback))

	// release 模式返回 fallback，不暴露错误详情
	GlobalConfig = &Config{Server: ServerConfig{Mode: "release"}}
	defer func() { GlobalConfig = nil }()
	assert.Equal(t, fallback, SafeErrorMessage(testErr, fallback))

	// debug 模式返回 err.Error()
	GlobalConfig = &Config{Server: ServerConfig{Mode: "debug"}}
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))

	// GlobalConfig 为 nil 时返回 err.Error()（视为开发环境）
	GlobalConfig = nil
	assert.Equal(t, "internal database error", SafeErrorMessage(testErr, fallback))
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.LLM.Provider)
	// 模型与地址留给各供应商决定
	assert.Empty(t, cfg.LLM.Model)
	assert.Empty(t, cfg.LLM.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 4, cfg.Review.BatchWorkers)
	assert.Equal(t, time.Minute, cfg.Webhook.RateWindow)
	assert.Same(t, cfg, GlobalConfig)
}

func TestLoadConfig_ExternalOverride(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("llm:\n  provider: anthropic\n  timeout_seconds: 5\ndatabase:\n  max_open_conns: 2\nreview:\n  batch_workers: 16\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	// 并发数被连接池大小截断
	assert.Equal(t, 2, cfg.Review.BatchWorkers)
	// 未覆盖的项保持默认值
	assert.Equal(t, "utf8mb4", cfg.Database.Charset)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	defer func() { GlobalConfig = nil }()
	t.Setenv("SMSLEDGER_LLM_MODEL", "deepseek-reasoner")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "deepseek-reasoner", cfg.LLM.Model)
}

func TestLoadConfig_ProviderSwitch(t *testing.T) {
	defer func() { GlobalConfig = nil }()

	for _, provider := range []string{"anthropic", "gemini"} {
		t.Run(provider, func(t *testing.T) {
			t.Setenv("SMSLEDGER_LLM_PROVIDER", provider)

			cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
			require.NoError(t, err)
			assert.Equal(t, provider, cfg.LLM.Provider)
			assert.Empty(t, cfg.LLM.Model)
			assert.Empty(t, cfg.LLM.BaseURL)
		})
	}
}
