package config

import (
	"time"

	pkgconfig "inboxagent/pkg/config"
)

// PromptsConfig points at the default prompt definitions.
type PromptsConfig struct {
	SeedFile string `yaml:"seed_file"`
	// SeedOnStart inserts missing defaults at startup without touching edits.
	SeedOnStart bool `yaml:"seed_on_start"`
}

// WorkerConfig 异步批处理 worker 配置. BatchTimeout bounds how long a started
// batch keeps running after shutdown begins.
type WorkerConfig struct {
	Queue          string        `yaml:"queue"`
	MaxRedelivery  int64         `yaml:"max_redelivery"`
	RetryCountTTL  time.Duration `yaml:"retry_count_ttl"`
	BatchTimeout   time.Duration `yaml:"batch_timeout"`
	ResultsEnabled bool          `yaml:"results_enabled"`
}

type Config struct {
	LogLevel string                 `yaml:"log_level"`
	DB       pkgconfig.DBConfig     `yaml:"db"`
	MQ       pkgconfig.MQConfig     `yaml:"mq"`
	Redis    pkgconfig.RedisConfig  `yaml:"redis"`
	JWT      pkgconfig.JWTConfig    `yaml:"jwt"`
	Server   pkgconfig.ServerConfig `yaml:"server"`
	LLM      pkgconfig.LLMConfig    `yaml:"llm"`
	Prompts  PromptsConfig          `yaml:"prompts"`
	Worker   WorkerConfig           `yaml:"worker"`
}

// Load reads config/<CONFIG_ENV> layers from dir, then the environment
// overrides, then fills defaults.
func Load(dir string) (*Config, error) {
	var cfg Config
	if err := pkgconfig.Load(pkgconfig.GetConfigEnv(), dir, &cfg); err != nil {
		return nil, err
	}

	// 环境变量覆盖（生产环境使用）
	pkgconfig.OverrideDBFromEnv(&cfg.DB)
	pkgconfig.OverrideMQFromEnv(&cfg.MQ)
	pkgconfig.OverrideRedisFromEnv(&cfg.Redis)
	pkgconfig.OverrideJWTFromEnv(&cfg.JWT)
	pkgconfig.OverrideServerFromEnv(&cfg.Server)
	pkgconfig.OverrideLLMFromEnv(&cfg.LLM)
	if level := pkgconfig.GetEnv("LOG_LEVEL", ""); level != "" {
		cfg.LogLevel = level
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8000"
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
	if cfg.Redis.DedupTTL <= 0 {
		cfg.Redis.DedupTTL = 24 * time.Hour
	}
	if cfg.Prompts.SeedFile == "" {
		cfg.Prompts.SeedFile = "config/prompts.yaml"
	}
	if cfg.Worker.Queue == "" {
		cfg.Worker.Queue = "email.batch.submitted.q"
	}
	if cfg.Worker.MaxRedelivery <= 0 {
		cfg.Worker.MaxRedelivery = 5
	}
	if cfg.Worker.RetryCountTTL <= 0 {
		cfg.Worker.RetryCountTTL = time.Hour
	}
	if cfg.Worker.BatchTimeout <= 0 {
		cfg.Worker.BatchTimeout = 10 * time.Minute
	}
}
