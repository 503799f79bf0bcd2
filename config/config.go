package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Storage   StorageConfig   `yaml:"storage"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	LinkedIn  LinkedInConfig  `yaml:"linkedin"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

type DatabaseConfig struct {
	Type string `yaml:"type"` // sqlite, mysql, postgres
	DSN  string `yaml:"dsn"`
}

type LLMConfig struct {
	Provider  string        `yaml:"provider"` // http, openai, eino
	APIURL    string        `yaml:"api_url"`
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

type IngestConfig struct {
	MaxFileBytes   int64         `yaml:"max_file_bytes"`
	URLTimeout     time.Duration `yaml:"url_timeout"`
	URLConcurrency int           `yaml:"url_concurrency"`
	// AllowPrivateURLs 允许抓取内网地址，仅用于本地开发
	AllowPrivateURLs bool `yaml:"allow_private_urls"`
}

// StorageConfig 上传样本原文件的归档位置
type StorageConfig struct {
	Type      string `yaml:"type"` // local, minio
	Dir       string `yaml:"dir"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type RateLimitConfig struct {
	Enabled       bool          `yaml:"enabled"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	Prefix        string        `yaml:"prefix"`
	Limit         int           `yaml:"limit"`
	Window        time.Duration `yaml:"window"`
}

type LinkedInConfig struct {
	APIURL string `yaml:"api_url"`
}

var (
	cfg  *Config
	once sync.Once
)

// GetConfig 返回进程级配置，只在启动时加载一次
func GetConfig() *Config {
	once.Do(func() {
		configPath := os.Getenv("CONFIG_PATH")
		if configPath == "" {
			configPath = "config.yaml"
		}
		cfg = Load(configPath)
	})
	return cfg
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Type: "sqlite",
			DSN:  "./data/penwise.db",
		},
		LLM: LLMConfig{
			Provider:  "http",
			APIURL:    "https://api.openai.com/v1",
			Model:     "gpt-4o",
			MaxTokens: 1000,
			Timeout:   2 * time.Minute,
		},
		Ingest: IngestConfig{
			MaxFileBytes:   5 << 20,
			URLTimeout:     15 * time.Second,
			URLConcurrency: 4,
		},
		Storage: StorageConfig{
			Type:   "local",
			Dir:    "./data/samples",
			Bucket: "penwise-samples",
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Prefix:  "penwise:ratelimit",
			Limit:   30,
			Window:  time.Minute,
		},
		LinkedIn: LinkedInConfig{
			APIURL: "https://api.linkedin.com/v2",
		},
	}
}

// Load 读取配置文件并叠加环境变量，文件不存在时使用默认值
func Load(path string) *Config {
	config := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, config); err != nil {
			klog.Warningf("解析配置文件失败 %s: %v", path, err)
		}
	}

	applyEnv(config)
	return config
}

// applyEnv 环境变量优先级高于配置文件
func applyEnv(config *Config) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		config.Server.Port = port
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		config.Server.Mode = mode
	}

	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		config.LLM.Provider = provider
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.LLM.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.LLM.APIURL = strings.TrimRight(baseURL, "/")
	}
	if model := os.Getenv("OPENAI_MODEL_NAME"); model != "" {
		config.LLM.Model = model
	}

	// 数据库环境变量
	if dbType := os.Getenv("DB_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if dbDSN := os.Getenv("DB_DSN"); dbDSN != "" {
		config.Database.DSN = dbDSN
	}

	if storageType := os.Getenv("STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}
	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		config.Storage.Endpoint = endpoint
	}
	if accessKey := os.Getenv("MINIO_ACCESS_KEY"); accessKey != "" {
		config.Storage.AccessKey = accessKey
	}
	if secretKey := os.Getenv("MINIO_SECRET_KEY"); secretKey != "" {
		config.Storage.SecretKey = secretKey
	}
	if bucket := os.Getenv("MINIO_BUCKET"); bucket != "" {
		config.Storage.Bucket = bucket
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		config.RateLimit.RedisAddr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.RateLimit.RedisPassword = password
	}
	if enabled := os.Getenv("RATE_LIMIT_ENABLED"); enabled != "" {
		if v, err := strconv.ParseBool(enabled); err == nil {
			config.RateLimit.Enabled = v
		}
	}

	if apiURL := os.Getenv("LINKEDIN_API_URL"); apiURL != "" {
		config.LinkedIn.APIURL = strings.TrimRight(apiURL, "/")
	}
}
