package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig               `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig             `mapstructure:"database"` // PostgreSQL配置
	AI       map[string]AIServiceConfig `mapstructure:"ai"`       // 多AI服务独立配置（vision/assistant）
	Upload   UploadConfig               `mapstructure:"upload"`   // 截图上传限制
	Report   ReportConfig               `mapstructure:"report"`   // 报表导出配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         int      `mapstructure:"port"`          // 服务端口
	Mode         string   `mapstructure:"mode"`          // Gin运行模式：debug/release/test
	AllowOrigins []string `mapstructure:"allow_origins"` // 前端跨域白名单
}

// DatabaseConfig PostgreSQL数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// AIServiceConfig 单个AI服务的独立配置（OpenAI兼容接口）
type AIServiceConfig struct {
	BaseURL     string  `mapstructure:"base_url"`    // API基础地址（含 /v1）
	APIKey      string  `mapstructure:"api_key"`     // 认证Key
	Model       string  `mapstructure:"model"`       // 模型名称
	Timeout     int     `mapstructure:"timeout"`     // 请求超时（秒）
	RetryCount  int     `mapstructure:"retry_count"` // 重试次数
	MaxTokens   int     `mapstructure:"max_tokens"`  // 单次回复token上限
	Temperature float64 `mapstructure:"temperature"` // 采样温度（识别场景建议0）
	Proxy       string  `mapstructure:"proxy"`       // 代理地址
}

// UploadConfig 截图上传限制
type UploadConfig struct {
	MaxSizeMB    int      `mapstructure:"max_size_mb"`   // 单张截图大小上限（MB）
	AllowedTypes []string `mapstructure:"allowed_types"` // 允许的MIME类型
}

// ReportConfig 报表导出配置
type ReportConfig struct {
	Timeout   int `mapstructure:"timeout"`    // 渲染超时（秒）
	PageWidth int `mapstructure:"page_width"` // 渲染视口宽度（像素）
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v, ok := cfg.AI["vision"]; ok {
		if e := os.Getenv("VISION_API_KEY"); e != "" {
			v.APIKey = e
		}
		if e := os.Getenv("VISION_PROXY"); e != "" {
			v.Proxy = e
		}
		cfg.AI["vision"] = v
	}
	if a, ok := cfg.AI["assistant"]; ok {
		if e := os.Getenv("ASSISTANT_API_KEY"); e != "" {
			a.APIKey = e
		}
		if e := os.Getenv("ASSISTANT_PROXY"); e != "" {
			a.Proxy = e
		}
		cfg.AI["assistant"] = a
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}
