package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingEnvironmentVariables = errors.New("missing required environment variables")
	ErrInvalidConfig               = errors.New("invalid configuration")
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Env              string     `mapstructure:"env"`        // current application environment (local, dev, production)
	TelegramAPIToken string     `mapstructure:"-"`          // Telegram API token loaded from environment
	Vocabulary       Vocabulary `mapstructure:"vocabulary"` // where the HSK dataset comes from
	Quiz             Quiz       `mapstructure:"quiz"`
	Exam             Exam       `mapstructure:"exam"`
	Session          Session    `mapstructure:"session"`
	Speech           Speech     `mapstructure:"speech"`
	DB               DB         `mapstructure:"database"` // database configuration section
}

// Vocabulary selects the dataset backend.
type Vocabulary struct {
	Source string `mapstructure:"source"` // "file" or "postgres"
	Path   string `mapstructure:"path"`   // JSON or YAML dataset, used by the file source and by imports
}

type Quiz struct {
	Size int `mapstructure:"size"`
}

type Exam struct {
	Size      int           `mapstructure:"size"`
	Duration  time.Duration `mapstructure:"duration"`
	PassRatio float64       `mapstructure:"pass_ratio"` // share of correct answers needed to pass
}

// Session controls how long idle chat state is kept in memory.
type Session struct {
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// Speech configures text-to-speech.
type Speech struct {
	APIKey   string        `mapstructure:"-"` // Gemini API key loaded from environment, optional
	CacheDir string        `mapstructure:"cache_dir"`
	Model    string        `mapstructure:"model"`
	Voice    string        `mapstructure:"voice"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DB contains database-related configuration parameters.
type DB struct {
	URL             string        `mapstructure:"-"`                 // database connection string loaded from environment
	MaxConnections  int32         `mapstructure:"max_connections"`   // maximum number of open connections in the pool
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"` // maximum lifetime of a single connection
}

// DSN returns the database connection string if it is configured.
func (db DB) DSN() (string, error) {
	if db.URL == "" {
		return "", fmt.Errorf("%w: DATABASE_URL", ErrMissingEnvironmentVariables)
	}
	return db.URL, nil
}

// Load reads configuration from the .env file, config files and environment variables.
// The Telegram token is required; set requireToken to false for tools that never talk to Telegram.
func Load(requireToken bool) (*Config, error) {
	// Populate the environment from .env when present; real env vars win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // map nested keys to ENV style names
	v.AutomaticEnv()

	_ = v.BindEnv("telegram_api_token", "TELEGRAM_API_TOKEN")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("gemini_api_key", "GEMINI_API_KEY")
	_ = v.BindEnv("env", "APP_ENV")

	if err := v.ReadInConfig(); err != nil {
		var fileLookupErr viper.ConfigFileNotFoundError
		if !errors.As(err, &fileLookupErr) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// Load sensitive values from environment variables.
	cfg.TelegramAPIToken = v.GetString("telegram_api_token")
	cfg.DB.URL = v.GetString("database_url")
	cfg.Speech.APIKey = v.GetString("gemini_api_key")

	if requireToken && cfg.TelegramAPIToken == "" {
		return nil, fmt.Errorf("%w: TELEGRAM_API_TOKEN", ErrMissingEnvironmentVariables)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks value ranges and source-specific requirements.
func (c *Config) Validate() error {
	switch c.Vocabulary.Source {
	case SourceFile:
		if c.Vocabulary.Path == "" {
			return fmt.Errorf("%w: vocabulary.path is empty", ErrInvalidConfig)
		}
	case SourcePostgres:
		if _, err := c.DB.DSN(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown vocabulary.source %q", ErrInvalidConfig, c.Vocabulary.Source)
	}

	if c.Quiz.Size <= 0 || c.Exam.Size <= 0 {
		return fmt.Errorf("%w: quiz.size and exam.size must be positive", ErrInvalidConfig)
	}
	if c.Exam.Duration <= 0 {
		return fmt.Errorf("%w: exam.duration must be positive", ErrInvalidConfig)
	}
	if c.Exam.PassRatio <= 0 || c.Exam.PassRatio > 1 {
		return fmt.Errorf("%w: exam.pass_ratio must be in (0, 1]", ErrInvalidConfig)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("vocabulary.source", SourceFile)
	v.SetDefault("vocabulary.path", "assets/data/hsk.json")
	v.SetDefault("quiz.size", 10)
	v.SetDefault("exam.size", 15)
	v.SetDefault("exam.duration", "600s")
	v.SetDefault("exam.pass_ratio", 0.6)
	v.SetDefault("session.idle_ttl", "30m")
	v.SetDefault("session.sweep_interval", "5m")
	v.SetDefault("speech.cache_dir", "cache/speech")
	v.SetDefault("speech.model", "gemini-2.5-flash-preview-tts")
	v.SetDefault("speech.voice", "Kore")
	v.SetDefault("speech.timeout", "15s")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.max_conn_lifetime", "30s")
}
