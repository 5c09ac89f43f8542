package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis    Redis  `yaml:"redis"`
	Match    Match  `yaml:"match"`
	Stats    Stats  `yaml:"stats"`
	Stream   Stream `yaml:"stream"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	DB   int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Match holds the ruleset and the timings of every match session.
type Match struct {
	GridSize        int           `yaml:"grid-size" env-default:"3"`
	MatchCount      int           `yaml:"match-count" env-default:"3"`
	SettleDelay     time.Duration `yaml:"settle-delay" env-default:"500ms"`
	AICheckInterval time.Duration `yaml:"ai-check-interval" env-default:"100ms"`
	ResultsTimeout  time.Duration `yaml:"results-timeout" env-default:"5s"`
	LoopQueueSize   int           `yaml:"loop-queue-size" env-default:"64"`
}

type Stats struct {
	QueueSize int `yaml:"queue-size" env-default:"64"`
}

type Stream struct {
	OutboxSize int `yaml:"outbox-size" env-default:"32"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the config file at path; environment variables override file values.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
