package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EngineConfig holds the network identity and transport knobs passed
// through to the extraction engine unchanged.
type EngineConfig struct {
	UserAgent          string `yaml:"userAgent"`
	Referer            string `yaml:"referer"`
	Retries            int    `yaml:"retries"`
	SocketTimeoutSec   int    `yaml:"socketTimeoutSec"`
	GeoBypass          bool   `yaml:"geoBypass"`
	NoCheckCertificate bool   `yaml:"noCheckCertificate"`
	ForceIPv4          bool   `yaml:"forceIPv4"`
	MetadataTimeoutMs  int    `yaml:"metadataTimeoutMs"`
	CookieFile         string `yaml:"cookieFile"`
}

type StorageConfig struct {
	TempDir       string `yaml:"tempDir"`
	PublicBaseURL string `yaml:"publicBaseURL"`
}

// RetentionConfig controls how long a completed job's artifact and
// registry entry survive before the sweeper removes them.
type RetentionConfig struct {
	DelaySeconds int `yaml:"delaySeconds"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type RateLimitConfig struct {
	DefaultPerMinute int `yaml:"defaultPerMinute"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Engine    EngineConfig    `yaml:"engine"`
	Storage   StorageConfig   `yaml:"storage"`
	Retention RetentionConfig `yaml:"retention"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

func Load(path string) *Config {
	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills zero values so that a minimal config file still
// yields a runnable service.
func (c *Config) ApplyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5000
	}
	if c.Engine.UserAgent == "" {
		c.Engine.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	if c.Engine.Referer == "" {
		c.Engine.Referer = "https://www.youtube.com/"
	}
	if c.Engine.Retries == 0 {
		c.Engine.Retries = 10
	}
	if c.Engine.SocketTimeoutSec == 0 {
		c.Engine.SocketTimeoutSec = 30
	}
	if c.Engine.MetadataTimeoutMs == 0 {
		c.Engine.MetadataTimeoutMs = 30000
	}
	if c.Storage.TempDir == "" {
		c.Storage.TempDir = os.TempDir()
	}
	if c.Retention.DelaySeconds == 0 {
		c.Retention.DelaySeconds = 600
	}
}
