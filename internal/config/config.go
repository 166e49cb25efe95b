package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig        `mapstructure:"server"`
	Database DatabaseConfig      `mapstructure:"database"`
	GitHub   GitHubConfig        `mapstructure:"github"`
	LLM      LLMConfig           `mapstructure:"llm"`
	Pipeline PipelineConfig      `mapstructure:"pipeline"`
	Courses  map[string][]string `mapstructure:"courses"`
	Storage  StorageConfig       `mapstructure:"storage"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres
	Path   string `mapstructure:"path"`   // sqlite file path
	DSN    string `mapstructure:"dsn"`    // postgres DSN
}

type GitHubConfig struct {
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

type LLMConfig struct {
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type PipelineConfig struct {
	Workers      int `mapstructure:"workers"`       // concurrent project workers
	FetchWorkers int `mapstructure:"fetch_workers"` // per-project file fetch sub-pool
	MaxFiles     int `mapstructure:"max_files"`     // files fetched per repository
}

type StorageConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/projlens.db")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("llm.model", "openai/gpt-4o-mini")
	v.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("pipeline.workers", 5)
	v.SetDefault("pipeline.fetch_workers", 5)
	v.SetDefault("pipeline.max_files", 10)
	v.SetDefault("courses", map[string][]string{})
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.bucket", "projlens-datasets")
	v.SetDefault("storage.region", "auto")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("llm.api_key", "OPENROUTER_API_KEY")
	v.BindEnv("llm.base_url", "OPENROUTER_BASE_URL")
	v.BindEnv("llm.model", "LLM_MODEL")
	v.BindEnv("database.dsn", "DATABASE_DSN")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.public_url", "STORAGE_PUBLIC_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that credentials required for a pipeline run are present.
// Missing credentials are the only process-fatal condition; everything else
// degrades per project.
func (c *Config) Validate() error {
	var missing []string
	if c.GitHub.Token == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	if c.LLM.APIKey == "" {
		missing = append(missing, "OPENROUTER_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// DeploymentTypesFor returns the valid deployment types for a course,
// falling back to the full taxonomy when the course has no override.
func (c *Config) DeploymentTypesFor(course string) []string {
	if types, ok := c.Courses[course]; ok && len(types) > 0 {
		return types
	}
	return []string{"Batch", "Streaming", "Web Service"}
}
