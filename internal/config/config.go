package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Catalog   CatalogConfig
	Scraper   ScraperConfig
	Pipeline  PipelineConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// StoreConfig addresses the content store the pipeline persists into.
type StoreConfig struct {
	Host string
	Port string
}

// BaseURL returns the store's API root, addressed by its own host:port.
func (c StoreConfig) BaseURL() string {
	return fmt.Sprintf("http://%s:%s", c.Host, c.Port)
}

type CatalogConfig struct {
	BaseURL string
}

type ScraperConfig struct {
	BaseURL string
}

type PipelineConfig struct {
	MaxConcurrent   int           // bound on simultaneous product tasks
	ProductDelay    time.Duration // pause after each product's assets finish
	ImagesPerSecond float64       // pacing for image download/upload traffic
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// RateLimitConfig throttles the populate trigger endpoint.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("STORE_HOST", "localhost")
	viper.SetDefault("STORE_PORT", "1337")
	viper.SetDefault("CATALOG_BASE_URL", "https://www.gog.com")
	viper.SetDefault("SCRAPER_BASE_URL", "https://www.gog.com")
	viper.SetDefault("PIPELINE_MAX_CONCURRENT", 8)
	viper.SetDefault("PIPELINE_PRODUCT_DELAY", "2s")
	viper.SetDefault("PIPELINE_IMAGES_PER_SECOND", 4.0)
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 10)
	viper.SetDefault("RATE_LIMIT_WINDOW", "1m")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Store: StoreConfig{
			Host: viper.GetString("STORE_HOST"),
			Port: viper.GetString("STORE_PORT"),
		},
		Catalog: CatalogConfig{
			BaseURL: viper.GetString("CATALOG_BASE_URL"),
		},
		Scraper: ScraperConfig{
			BaseURL: viper.GetString("SCRAPER_BASE_URL"),
		},
		Pipeline: PipelineConfig{
			MaxConcurrent:   viper.GetInt("PIPELINE_MAX_CONCURRENT"),
			ProductDelay:    viper.GetDuration("PIPELINE_PRODUCT_DELAY"),
			ImagesPerSecond: viper.GetFloat64("PIPELINE_IMAGES_PER_SECOND"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   viper.GetDuration("RATE_LIMIT_WINDOW"),
		},
	}
}
