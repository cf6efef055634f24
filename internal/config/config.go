package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

var (
	ErrInvalidWinCondition  = errors.New("win-condition must be at least 1")
	ErrInvalidMaxBoardCells = errors.New("max-board-cells must be at least 1")
)

type Config struct {
	LogLevel        string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort        string        `yaml:"http-port" env:"HTTP_PORT" env-default:"8080"`
	WinCondition    int           `yaml:"win-condition" env:"WIN_CONDITION" env-default:"4"`
	MaxBoardCells   int           `yaml:"max-board-cells" env:"MAX_BOARD_CELLS" env-default:"1000000"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	Redis           Redis         `yaml:"redis"`
}

// Redis is only needed when move events are published.
type Redis struct {
	Enabled       bool   `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host          string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port          string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	ChannelPrefix string `yaml:"channel-prefix" env:"REDIS_CHANNEL_PREFIX" env-default:"drop_token"`
}

// Load reads the config file at path when it exists and the environment otherwise.
// Environment variables override values from the file.
func Load(path string) (*Config, error) {
	config := &Config{}

	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, config)
	} else {
		err = cleanenv.ReadEnv(config)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}

	if config.WinCondition < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWinCondition, config.WinCondition)
	}

	if config.MaxBoardCells < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxBoardCells, config.MaxBoardCells)
	}

	return config, nil
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
