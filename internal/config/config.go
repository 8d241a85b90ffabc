package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string   `mapstructure:"PORT"`
	Env                string   `mapstructure:"ENV"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32    `mapstructure:"DB_MIN_CONNS"`
	FHIRBaseURL        string   `mapstructure:"FHIR_BASE_URL"`
	FHIRTimeoutSeconds int      `mapstructure:"FHIR_TIMEOUT_SECONDS"`
	FHIRPageSize       int      `mapstructure:"FHIR_PAGE_SIZE"`
	DefaultActor       string   `mapstructure:"DEFAULT_ACTOR"`
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("FHIR_BASE_URL", "https://hapi.fhir.org/baseR4")
	v.SetDefault("FHIR_TIMEOUT_SECONDS", 10)
	v.SetDefault("FHIR_PAGE_SIZE", 10)
	v.SetDefault("DEFAULT_ACTOR", "system")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("FHIR_BASE_URL")
	v.BindEnv("FHIR_TIMEOUT_SECONDS")
	v.BindEnv("FHIR_PAGE_SIZE")
	v.BindEnv("DEFAULT_ACTOR")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. The FHIR upstream
// settings must be usable because the search client builds its request URL
// and timeout from them at startup.
func (c *Config) Validate() error {
	if c.FHIRBaseURL == "" {
		return fmt.Errorf("FHIR_BASE_URL is required")
	}
	if !strings.HasPrefix(c.FHIRBaseURL, "http://") && !strings.HasPrefix(c.FHIRBaseURL, "https://") {
		return fmt.Errorf("FHIR_BASE_URL must be an http(s) URL, got %q", c.FHIRBaseURL)
	}
	if c.FHIRTimeoutSeconds <= 0 {
		return fmt.Errorf("FHIR_TIMEOUT_SECONDS must be positive, got %d", c.FHIRTimeoutSeconds)
	}
	if c.FHIRPageSize <= 0 {
		return fmt.Errorf("FHIR_PAGE_SIZE must be positive, got %d", c.FHIRPageSize)
	}
	if c.DefaultActor == "" {
		return fmt.Errorf("DEFAULT_ACTOR must not be empty")
	}
	return nil
}
