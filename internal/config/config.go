package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Extractor ExtractorConfig
	Layout    LayoutConfig
	Render    RenderConfig
	S3        S3Config
	Auth      AuthConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// ExtractorConfig holds extraction-model settings. Endpoint and Deployment
// are required; the decoding parameters default to low temperature and low
// top_p, favoring determinism over creativity.
type ExtractorConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Deployment  string  `mapstructure:"deployment"`
	APIVersion  string  `mapstructure:"api_version"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	TimeoutSecs int     `mapstructure:"timeout_secs"`
}

// LayoutConfig holds layout-analysis settings. An empty Endpoint disables
// the layout path entirely for the "azure" provider; the "tesseract"
// provider runs locally and needs no endpoint.
type LayoutConfig struct {
	Provider         string `mapstructure:"provider"`
	Endpoint         string `mapstructure:"endpoint"`
	APIVersion       string `mapstructure:"api_version"`
	MaxRetries       int    `mapstructure:"max_retries"`
	Strict           bool   `mapstructure:"strict"`
	TimeoutSecs      int    `mapstructure:"timeout_secs"`
	PollIntervalMSec int    `mapstructure:"poll_interval_msec"`
}

// RenderConfig holds page rasterization settings.
type RenderConfig struct {
	PdftoppmPath string `mapstructure:"pdftoppm_path"`
	DPI          int    `mapstructure:"dpi"`
}

// S3Config holds fetch-only object storage settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// AuthConfig holds credentials: APIKey guards the inbound HTTP surface when
// set; BearerToken is presented to the layout and extraction services.
type AuthConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BearerToken string `mapstructure:"bearer_token"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the DOCEX_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Extractor defaults
	v.SetDefault("extractor.endpoint", "")
	v.SetDefault("extractor.deployment", "")
	v.SetDefault("extractor.api_version", "2024-12-01-preview")
	v.SetDefault("extractor.max_tokens", 4096)
	v.SetDefault("extractor.temperature", 0.1)
	v.SetDefault("extractor.top_p", 0.1)
	v.SetDefault("extractor.timeout_secs", 120)

	// Layout defaults
	v.SetDefault("layout.provider", "azure")
	v.SetDefault("layout.endpoint", "")
	v.SetDefault("layout.api_version", "2024-11-30")
	v.SetDefault("layout.max_retries", 2)
	v.SetDefault("layout.strict", false)
	v.SetDefault("layout.timeout_secs", 120)
	v.SetDefault("layout.poll_interval_msec", 2000)

	// Render defaults
	v.SetDefault("render.pdftoppm_path", "pdftoppm")
	v.SetDefault("render.dpi", 150)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")

	// Auth defaults
	v.SetDefault("auth.api_key", "")
	v.SetDefault("auth.bearer_token", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "DOCEX_SERVER_PORT",
		"server.read_timeout":       "DOCEX_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "DOCEX_SERVER_WRITE_TIMEOUT",
		"server.environment":        "DOCEX_SERVER_ENVIRONMENT",
		"extractor.endpoint":        "DOCEX_EXTRACTOR_ENDPOINT",
		"extractor.deployment":      "DOCEX_EXTRACTOR_DEPLOYMENT",
		"extractor.api_version":     "DOCEX_EXTRACTOR_API_VERSION",
		"extractor.max_tokens":      "DOCEX_EXTRACTOR_MAX_TOKENS",
		"extractor.temperature":     "DOCEX_EXTRACTOR_TEMPERATURE",
		"extractor.top_p":           "DOCEX_EXTRACTOR_TOP_P",
		"extractor.timeout_secs":    "DOCEX_EXTRACTOR_TIMEOUT_SECS",
		"layout.provider":           "DOCEX_LAYOUT_PROVIDER",
		"layout.endpoint":           "DOCEX_LAYOUT_ENDPOINT",
		"layout.api_version":        "DOCEX_LAYOUT_API_VERSION",
		"layout.max_retries":        "DOCEX_LAYOUT_MAX_RETRIES",
		"layout.strict":             "DOCEX_LAYOUT_STRICT",
		"layout.timeout_secs":       "DOCEX_LAYOUT_TIMEOUT_SECS",
		"layout.poll_interval_msec": "DOCEX_LAYOUT_POLL_INTERVAL_MSEC",
		"render.pdftoppm_path":      "DOCEX_RENDER_PDFTOPPM_PATH",
		"render.dpi":                "DOCEX_RENDER_DPI",
		"s3.region":                 "DOCEX_S3_REGION",
		"s3.bucket":                 "DOCEX_S3_BUCKET",
		"s3.endpoint":               "DOCEX_S3_ENDPOINT",
		"s3.access_key":             "DOCEX_S3_ACCESS_KEY",
		"s3.secret_key":             "DOCEX_S3_SECRET_KEY",
		"auth.api_key":              "DOCEX_AUTH_API_KEY",
		"auth.bearer_token":         "DOCEX_AUTH_BEARER_TOKEN",
		"log.level":                 "DOCEX_LOG_LEVEL",
		"log.format":                "DOCEX_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DOCEX_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCEX_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Extractor = ExtractorConfig{
		Endpoint:    v.GetString("extractor.endpoint"),
		Deployment:  v.GetString("extractor.deployment"),
		APIVersion:  v.GetString("extractor.api_version"),
		MaxTokens:   v.GetInt("extractor.max_tokens"),
		Temperature: v.GetFloat64("extractor.temperature"),
		TopP:        v.GetFloat64("extractor.top_p"),
		TimeoutSecs: v.GetInt("extractor.timeout_secs"),
	}
	cfg.Layout = LayoutConfig{
		Provider:         v.GetString("layout.provider"),
		Endpoint:         v.GetString("layout.endpoint"),
		APIVersion:       v.GetString("layout.api_version"),
		MaxRetries:       v.GetInt("layout.max_retries"),
		Strict:           v.GetBool("layout.strict"),
		TimeoutSecs:      v.GetInt("layout.timeout_secs"),
		PollIntervalMSec: v.GetInt("layout.poll_interval_msec"),
	}
	cfg.Render = RenderConfig{
		PdftoppmPath: v.GetString("render.pdftoppm_path"),
		DPI:          v.GetInt("render.dpi"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Auth = AuthConfig{
		APIKey:      v.GetString("auth.api_key"),
		BearerToken: v.GetString("auth.bearer_token"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
