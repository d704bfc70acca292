package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode     string `mapstructure:"mode"`
	Dotenv   string `mapstructure:"dotenv"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Repositories struct {
		Postgres struct {
			Host              string `mapstructure:"host"`
			Password          string `mapstructure:"password"`
			Port              string `mapstructure:"port"`
			Username          string `mapstructure:"username"`
			DB                string `mapstructure:"db"`
			SSLMODE           string `mapstructure:"SSLMODE"`
			MAXCONWAITINGTIME int    `mapstructure:"MAXCONWAITINGTIME"`
		} `mapstructure:"postgres"`
		Redis struct {
			Enabled  bool   `mapstructure:"enabled"`
			Addr     string `mapstructure:"addr"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"repositories"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Backend struct {
		BaseURL string        `mapstructure:"baseURL"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"backend"`
	Mapbox struct {
		BaseURL           string        `mapstructure:"baseURL"`
		AccessToken       string        `mapstructure:"accessToken"`
		RequestsPerSecond float64       `mapstructure:"requestsPerSecond"`
		Burst             int           `mapstructure:"burst"`
		CacheTTL          time.Duration `mapstructure:"cacheTTL"`
		SearchLimit       int           `mapstructure:"searchLimit"`
		Timeout           time.Duration `mapstructure:"timeout"`
	} `mapstructure:"mapbox"`
	LLM struct {
		Provider string        `mapstructure:"provider"`
		Model    string        `mapstructure:"model"`
		CacheTTL time.Duration `mapstructure:"cacheTTL"`
		OpenAI   struct {
			BaseURL string `mapstructure:"baseURL"`
			Model   string `mapstructure:"model"`
		} `mapstructure:"openai"`
	} `mapstructure:"llm"`
	Auth struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"auth"`
	Workspace struct {
		TTL             time.Duration `mapstructure:"ttl"`
		CleanupInterval time.Duration `mapstructure:"cleanupInterval"`
		History         int           `mapstructure:"history"`
	} `mapstructure:"workspace"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.applyEnv()
	fmt.Println("Successfully loaded app configs...")
	return config, nil
}

// applyEnv lets secrets from the environment win over the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("MAPBOX_ACCESS_TOKEN"); v != "" {
		c.Mapbox.AccessToken = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		c.Repositories.Postgres.Password = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Repositories.Redis.Password = v
	}
	if v := os.Getenv("BACKEND_BASE_URL"); v != "" {
		c.Backend.BaseURL = v
	}
}
