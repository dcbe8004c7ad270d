package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ModeWeb      = "web"
	ModeTerminal = "terminal"
)

type Config struct {
	LogLevel   string     `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFile    string     `yaml:"log-file" env:"LOG_FILE" env-default:"tictactoe.log"`
	Mode       string     `yaml:"mode" env:"MODE" env-default:"web"`
	HTTPPort   string     `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	GameServer GameServer `yaml:"game-server"`
	Web        Web        `yaml:"web"`
}

type GameServer struct {
	URL     string        `yaml:"url" env:"GAME_SERVER_URL" env-default:"http://localhost:8080"`
	Timeout time.Duration `yaml:"timeout" env:"GAME_SERVER_TIMEOUT" env-default:"5s"`
}

type Web struct {
	SessionTTL time.Duration `yaml:"session-ttl" env:"WEB_SESSION_TTL" env-default:"30m"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if config.Mode != ModeWeb && config.Mode != ModeTerminal {
		return nil, fmt.Errorf("unknown mode %q", config.Mode)
	}

	return config, nil
}

func (that *Config) IsTerminal() bool {
	return that.Mode == ModeTerminal
}
