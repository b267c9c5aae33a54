package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 RELEASE_TRACKER_DATABASE_DSN
const EnvPrefix = "RELEASE_TRACKER"

// DefaultSteps 默认发布检查项（所有发布共用）
var DefaultSteps = []string{
	"All PRs merged",
	"CHANGELOG updated",
	"Tests passing",
	"Release created in GitHub",
	"Deployed to staging",
	"Tested in staging",
	"Deployed to production",
}

// Config 服务配置结构
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Checklist ChecklistConfig `mapstructure:"checklist"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"` // debug, release
	BasePath     string        `mapstructure:"base_path"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, mysql, postgres
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// LogConfig 日志配置
type LogConfig struct {
	Level         string `mapstructure:"level"`  // debug, info, warn, error
	Format        string `mapstructure:"format"` // json, console
	DisableStdout bool   `mapstructure:"disable_stdout"`
	OutputPath    string `mapstructure:"output_path"`
	MaxSize       int    `mapstructure:"max_size"`    // MB
	MaxBackups    int    `mapstructure:"max_backups"` // 保留的旧日志文件数
	MaxAge        int    `mapstructure:"max_age"`     // 天
	Compress      bool   `mapstructure:"compress"`
}

// MetricsConfig Prometheus指标配置
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ChecklistConfig 检查项配置
type ChecklistConfig struct {
	Steps []string `mapstructure:"steps"`
}

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// 环境变量覆盖
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// metrics.enabled 未配置时默认开启，bool 零值无法区分
	v.SetDefault("metrics.enabled", true)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(config)

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Default 返回全部使用默认值的配置
func Default() *Config {
	config := &Config{Metrics: MetricsConfig{Enabled: true}}
	setDefaults(config)
	return config
}

// setDefaults 设置默认值
func setDefaults(config *Config) {
	// Server默认值
	if config.Server.Host == "" {
		config.Server.Host = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 3001
	}
	if config.Server.Mode == "" {
		config.Server.Mode = "release"
	}
	if config.Server.BasePath == "" {
		config.Server.BasePath = "/api"
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 30 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 30 * time.Second
	}
	if len(config.Server.CORSOrigins) == 0 {
		config.Server.CORSOrigins = []string{"*"}
	}

	// Database默认值
	if config.Database.Driver == "" {
		config.Database.Driver = "sqlite"
	}
	if config.Database.DSN == "" && config.Database.Driver == "sqlite" {
		config.Database.DSN = "release-tracker.db"
	}
	if config.Database.MaxIdleConns == 0 {
		config.Database.MaxIdleConns = 10
	}
	if config.Database.MaxOpenConns == 0 {
		config.Database.MaxOpenConns = 100
	}
	if config.Database.ConnMaxLifetime == 0 {
		config.Database.ConnMaxLifetime = time.Hour
	}
	if config.Database.LogLevel == "" {
		config.Database.LogLevel = "warn"
	}

	// Log默认值
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "json"
	}
	if config.Log.OutputPath == "" {
		config.Log.OutputPath = "logs/release-tracker.log"
	}
	if config.Log.MaxSize == 0 {
		config.Log.MaxSize = 100
	}
	if config.Log.MaxBackups == 0 {
		config.Log.MaxBackups = 10
	}
	if config.Log.MaxAge == 0 {
		config.Log.MaxAge = 30
	}

	// Metrics默认值
	if config.Metrics.Path == "" {
		config.Metrics.Path = "/metrics"
	}

	// Checklist默认值
	if len(config.Checklist.Steps) == 0 {
		config.Checklist.Steps = append([]string(nil), DefaultSteps...)
	}
}

// validate 验证配置
func validate(config *Config) error {
	validModes := map[string]bool{
		"debug":   true,
		"release": true,
		"test":    true,
	}
	if !validModes[config.Server.Mode] {
		return fmt.Errorf("invalid server mode: %s", config.Server.Mode)
	}

	if !strings.HasPrefix(config.Server.BasePath, "/") {
		return fmt.Errorf("server base_path must start with '/': %s", config.Server.BasePath)
	}

	validDrivers := map[string]bool{
		"sqlite":   true,
		"mysql":    true,
		"postgres": true,
	}
	if !validDrivers[config.Database.Driver] {
		return fmt.Errorf("invalid database driver: %s", config.Database.Driver)
	}

	if config.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.Log.Level] {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}
	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("invalid log format: %s", config.Log.Format)
	}

	seen := make(map[string]bool, len(config.Checklist.Steps))
	for i, step := range config.Checklist.Steps {
		name := strings.TrimSpace(step)
		if name == "" {
			return fmt.Errorf("checklist step %d has an empty name", i)
		}
		if seen[name] {
			return fmt.Errorf("duplicate checklist step: %s", name)
		}
		seen[name] = true
	}

	return nil
}

// Address 返回HTTP服务监听地址
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
