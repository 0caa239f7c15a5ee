package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	OpenAI    OpenAIConfig    `mapstructure:"openai"`
	Retry     RetryConfig     `mapstructure:"retry"`
	Screening ScreeningConfig `mapstructure:"screening"`
	Worker    WorkerConfig    `mapstructure:"worker"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// AccessToken enables the bearer check on /api/v1 when set.
	AccessToken    string        `mapstructure:"access_token"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"name"`
}

type GeminiConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	BaseURL         string        `mapstructure:"base_url"`
	Temperature     float32       `mapstructure:"temperature"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type OpenAIConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	Multiplier  float64       `mapstructure:"multiplier"`
	MaxJitter   time.Duration `mapstructure:"max_jitter"`
}

type ScreeningConfig struct {
	QualityReview bool    `mapstructure:"quality_review"`
	RenderDPI     float64 `mapstructure:"render_dpi"`
	MaxFileSize   int64   `mapstructure:"max_file_size"`
	DefaultRole   string  `mapstructure:"default_role"`
	RolesFile     string  `mapstructure:"roles_file"`
}

type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	QueueSize   int `mapstructure:"queue_size"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

var defaults = map[string]any{
	"server.port":            "3000",
	"server.env":             "development",
	"server.read_timeout":    "30s",
	"server.write_timeout":   "5m",
	"server.access_token":    "",
	"server.session_timeout": "2h",

	"database.enabled":  false,
	"database.host":     "localhost",
	"database.port":     "5432",
	"database.user":     "postgres",
	"database.password": "postgres",
	"database.name":     "resume_screener",

	"gemini.api_key":           "",
	"gemini.model":             "gemini-2.5-flash",
	"gemini.base_url":          "",
	"gemini.temperature":       0.1,
	"gemini.max_output_tokens": 8192,
	"gemini.timeout":           "120s",

	"openai.api_key":  "",
	"openai.model":    "gpt-5.2",
	"openai.base_url": "",
	"openai.timeout":  "180s",

	"retry.max_attempts": 3,
	"retry.base_delay":   "2s",
	"retry.multiplier":   2.0,
	"retry.max_jitter":   "0s",

	"screening.quality_review": true,
	"screening.render_dpi":     150.0,
	"screening.max_file_size":  10485760,
	"screening.default_role":   "genai-delivery-lead",
	"screening.roles_file":     "",

	"worker.concurrency": 2,
	"worker.queue_size":  16,

	"log.json":  false,
	"log.debug": false,
}

// Load reads .env (if present), the optional YAML config file and the
// environment, in increasing order of precedence. Environment keys are the
// upper-cased config keys with dots replaced by underscores, e.g. GEMINI_API_KEY.
func Load(configFile string) (*Config, error) {
	// a missing .env is the normal case in containers
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// legacy names kept from the original deployment
	if err := v.BindEnv("server.port", "SERVER_PORT", "PORT"); err != nil {
		return nil, errors.Wrap(err, "bind PORT")
	}

	if configFile == "" {
		configFile = v.GetString("config_file")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges. Missing API keys are not an error here: they
// can still come from the session cache or an interactive prompt.
func (c *Config) Validate() error {
	if c.Retry.MaxAttempts < 1 {
		return errors.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelay < 0 {
		return errors.Errorf("retry.base_delay must not be negative, got %s", c.Retry.BaseDelay)
	}
	if c.Screening.RenderDPI <= 0 {
		return errors.Errorf("screening.render_dpi must be positive, got %v", c.Screening.RenderDPI)
	}
	if c.Screening.MaxFileSize <= 0 {
		return errors.Errorf("screening.max_file_size must be positive, got %d", c.Screening.MaxFileSize)
	}
	if strings.TrimSpace(c.Screening.DefaultRole) == "" {
		return errors.New("screening.default_role is required")
	}
	if c.Worker.Concurrency < 1 {
		return errors.Errorf("worker.concurrency must be at least 1, got %d", c.Worker.Concurrency)
	}
	if c.Worker.QueueSize < 0 {
		return errors.Errorf("worker.queue_size must not be negative, got %d", c.Worker.QueueSize)
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}
