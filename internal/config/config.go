package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort  string `yaml:"http-port" env:"HTTP_PORT" env-default:"8080"`
	StaticDir string `yaml:"static-dir" env:"STATIC_DIR" env-default:"./web"`

	// TurnTimeout moves turn enforcement into the server; 0 leaves the
	// countdown to the client.
	TurnTimeout time.Duration `yaml:"turn-timeout" env:"TURN_TIMEOUT" env-default:"0s"`
	// MatchTTL is how long a finished match survives before eviction.
	MatchTTL time.Duration `yaml:"match-ttl" env:"MATCH_TTL" env-default:"15m"`

	Telemetry Telemetry `yaml:"telemetry"`
}

type Telemetry struct {
	Enabled      bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	OTLPEndpoint string `yaml:"otlp-endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
}

// MustLoad reads the yaml config at path, falling back to environment
// variables when the file does not exist.
func MustLoad(path string) *Config {
	config := &Config{}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, config); err != nil {
			panic(fmt.Errorf("unable to load config file: %w", err))
		}
		return config
	}

	if err := cleanenv.ReadEnv(config); err != nil {
		panic(fmt.Errorf("unable to read config from environment: %w", err))
	}

	return config
}
