package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// DefaultConfigYAML 内置默认配置
//
//go:embed default.yaml
var DefaultConfigYAML []byte

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Email    EmailConfig    `mapstructure:"email"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Review   ReviewConfig   `mapstructure:"review"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
	BaseURL string `mapstructure:"base_url"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql | sqlite
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	Charset      string `mapstructure:"charset"`
	SQLitePath   string `mapstructure:"sqlite_path"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// JWTConfig JWT配置
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	ExpireHours int           `mapstructure:"expire_hours"`
	ExpireTime  time.Duration `mapstructure:"-"`
}

// EmailConfig 邮件配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// LLMConfig 短信解析所用的大模型配置
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"` // openai | anthropic | gemini
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	TimeoutSeconds int           `mapstructure:"timeout_seconds"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Timeout        time.Duration `mapstructure:"-"`
}

// WebhookConfig Webhook 限流配置
type WebhookConfig struct {
	RateLimit         int           `mapstructure:"rate_limit"`
	RateWindowSeconds int           `mapstructure:"rate_window_seconds"`
	RateWindow        time.Duration `mapstructure:"-"`
}

// ReviewConfig 审核与批量确认配置
type ReviewConfig struct {
	BatchWorkers    int `mapstructure:"batch_workers"`
	MaxBatchSize    int `mapstructure:"max_batch_size"`
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

var (
	// GlobalConfig 全局配置实例
	GlobalConfig *Config
)

// LoadConfig 加载配置
// 优先级: 环境变量 > 外部配置文件 > 嵌入的默认配置
// configPath: 可选的外部配置文件路径
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// 1. 首先加载嵌入的默认配置
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}

	// 2. 尝试加载外部配置文件（可选，用于覆盖默认配置）
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			log.Warn().Err(err).Str("path", configPath).Msg("无法读取指定配置文件")
		} else {
			log.Info().Str("path", configPath).Msg("已合并外部配置文件")
		}
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/smsledger")
		externalViper.AddConfigPath("$HOME/.smsledger")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				log.Warn().Err(err).Msg("合并外部配置失败")
			} else {
				log.Info().Str("path", externalViper.ConfigFileUsed()).Msg("已合并外部配置文件")
			}
		}
	}

	// 3. 环境变量覆盖，如 SMSLEDGER_LLM_API_KEY
	v.SetEnvPrefix("SMSLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	cfg.normalize()

	GlobalConfig = &cfg
	return &cfg, nil
}

// normalize 填充派生字段与缺省值
func (cfg *Config) normalize() {
	if cfg.JWT.ExpireHours <= 0 {
		cfg.JWT.ExpireHours = 24
	}
	cfg.JWT.ExpireTime = time.Duration(cfg.JWT.ExpireHours) * time.Hour

	if cfg.LLM.TimeoutSeconds <= 0 {
		cfg.LLM.TimeoutSeconds = 30
	}
	cfg.LLM.Timeout = time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = 500
	}

	if cfg.Webhook.RateLimit <= 0 {
		cfg.Webhook.RateLimit = 30
	}
	if cfg.Webhook.RateWindowSeconds <= 0 {
		cfg.Webhook.RateWindowSeconds = 60
	}
	cfg.Webhook.RateWindow = time.Duration(cfg.Webhook.RateWindowSeconds) * time.Second

	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 100
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 10
	}

	// 批量确认的并发不超过连接池大小
	if cfg.Review.BatchWorkers <= 0 {
		cfg.Review.BatchWorkers = 4
	}
	if cfg.Review.BatchWorkers > cfg.Database.MaxOpenConns {
		cfg.Review.BatchWorkers = cfg.Database.MaxOpenConns
	}
	if cfg.Review.MaxBatchSize <= 0 {
		cfg.Review.MaxBatchSize = 100
	}
	if cfg.Review.DefaultPageSize <= 0 {
		cfg.Review.DefaultPageSize = 20
	}
	if cfg.Review.MaxPageSize <= 0 {
		cfg.Review.MaxPageSize = 100
	}
}

// MustLoadConfig 加载配置，失败则 panic
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("加载配置失败: %v", err))
	}
	return cfg
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if GlobalConfig == nil {
		panic("配置未初始化，请先调用 LoadConfig")
	}
	return GlobalConfig
}

// PrintConfig 打印当前配置（隐藏敏感信息）
func PrintConfig() {
	if GlobalConfig == nil {
		return
	}
	c := GlobalConfig
	log.Info().
		Str("port", c.Server.Port).
		Str("mode", c.Server.Mode).
		Str("db_driver", c.Database.Driver).
		Str("db", fmt.Sprintf("%s@%s:%s/%s", c.Database.Username, c.Database.Host, c.Database.Port, c.Database.DBName)).
		Str("llm_provider", c.LLM.Provider).
		Str("llm_model", c.LLM.Model).
		Bool("llm_key_set", c.LLM.APIKey != "").
		Bool("email", c.Email.Enabled).
		Msg("当前配置")
}
