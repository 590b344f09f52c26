package timedquiz

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all the configuration for the application
type Config struct {
	Quiz     QuizConfig     `yaml:"quiz"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Verbose  bool           `yaml:"verbose"`
}

// QuizConfig shapes every attempt session
type QuizConfig struct {
	QuestionCount int           `yaml:"questionCount" validate:"gt=0"`
	Duration      time.Duration `yaml:"duration" validate:"gt=0"`
	PassRatio     float64       `yaml:"passRatio" validate:"gt=0,lte=1"`
	RequireAnswer bool          `yaml:"requireAnswer"`
	SubmitTimeout time.Duration `yaml:"submitTimeout" validate:"gt=0"`
}

// DatabaseConfig selects the question/result store
type DatabaseConfig struct {
	Driver string `yaml:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `yaml:"dsn" validate:"required"`
}

// ServerConfig contains the web server settings
type ServerConfig struct {
	Port          string `yaml:"port" validate:"required,numeric"`
	SessionSecret string `yaml:"sessionSecret" validate:"required,min=32"`
	SessionStore  string `yaml:"sessionStore" validate:"oneof=cookie filesystem"`
	SessionDir    string `yaml:"sessionDir"`
}

// OpenAIConfig is only needed for question generation
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseURL" validate:"omitempty,url"`
}

// defaultSessionSecret is public; it only suits local development
const defaultSessionSecret = "change-me-change-me-change-me-change-me"

// DefaultConfig returns the configuration used when nothing overrides it
func DefaultConfig() *Config {
	return &Config{
		Quiz: QuizConfig{
			QuestionCount: 24,
			Duration:      45 * time.Minute,
			PassRatio:     0.75,
			RequireAnswer: true,
			SubmitTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "./quiz.db",
		},
		Server: ServerConfig{
			Port:          "8180",
			SessionSecret: defaultSessionSecret,
			SessionStore:  "filesystem",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o",
		},
	}
}

// LoadConfig builds the configuration from defaults, a .env file, the optional
// YAML file at path and environment variables, in that order
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QUIZ_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("QUIZ_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Server.SessionSecret = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
}

// Validate checks the struct tags
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// UsesDefaultSecret reports whether cookies would be signed with the built-in secret
func (c ServerConfig) UsesDefaultSecret() bool {
	return c.SessionSecret == defaultSessionSecret
}

// PassMark is the minimum score needed to pass a session of total questions.
// It scales passRatio to the actual session size, so 0.75 of 24 gives 18.
func (q QuizConfig) PassMark(total int) int {
	return passMark(q.PassRatio, total)
}

// Options converts the quiz section into engine options
func (q QuizConfig) Options() Options {
	return Options{
		QuestionCount: q.QuestionCount,
		Duration:      q.Duration,
		PassRatio:     q.PassRatio,
		RequireAnswer: q.RequireAnswer,
		SubmitTimeout: q.SubmitTimeout,
	}
}
