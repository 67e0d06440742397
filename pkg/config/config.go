package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ServerConfig 服务配置
type ServerConfig struct {
	Listen     string `yaml:"listen"`      // HTTP 监听地址
	Production bool   `yaml:"production"`  // 生产模式（影响 cookie Secure 属性与 gin 模式）
	APIBaseURL string `yaml:"api_base_url"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	OutputFile string `yaml:"output_file"`
}

// Config 仪表盘全量配置
type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// DefaultAPIBaseURL 远程交易 API 默认地址
const DefaultAPIBaseURL = "https://crypto-test.duckdns.org"

// Default 返回默认配置
func Default() Config {
	return Config{
		Server: ServerConfig{
			Listen:     ":3000",
			APIBaseURL: DefaultAPIBaseURL,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load 加载配置：默认值 <- yaml 文件（可选）<- 环境变量
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv 环境变量覆盖（CTDASH_ 前缀）
func applyEnv(cfg *Config) {
	if v := os.Getenv("CTDASH_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("CTDASH_API_BASE_URL"); v != "" {
		cfg.Server.APIBaseURL = v
	}
	if v := os.Getenv("CTDASH_PRODUCTION"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Server.Production = b
		}
	}
	if v := os.Getenv("CTDASH_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CTDASH_LOG_FILE"); v != "" {
		cfg.Log.OutputFile = v
	}
}
