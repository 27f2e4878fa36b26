package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

var ErrUnknownBackend = errors.New("unknown leaderboard backend")

type Config struct {
	LogLevel    string      `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort    string      `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort  string      `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Redis       Redis       `yaml:"redis"`
	Leaderboard Leaderboard `yaml:"leaderboard"`
	Game        Game        `yaml:"game"`
	Socket      Socket      `yaml:"socket"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Leaderboard struct {
	Backend    string `yaml:"backend" env:"LEADERBOARD_BACKEND" env-default:"memory"`
	SQLitePath string `yaml:"sqlite-path" env:"LEADERBOARD_SQLITE_PATH" env-default:"leaderboard.db"`
}

type Game struct {
	RunLength       int           `yaml:"run-length" env:"GAME_RUN_LENGTH" env-default:"5"`
	ExactRun        bool          `yaml:"exact-run" env:"GAME_EXACT_RUN" env-default:"false"`
	MaxMoves        int           `yaml:"max-moves" env:"GAME_MAX_MOVES" env-default:"0"`
	CoordinateLimit int64         `yaml:"coordinate-limit" env:"GAME_COORDINATE_LIMIT" env-default:"1000000000"`
	RequireReady    bool          `yaml:"require-ready" env:"GAME_REQUIRE_READY" env-default:"false"`
	WaitTimeout     time.Duration `yaml:"wait-timeout" env:"GAME_WAIT_TIMEOUT" env-default:"5m"`
	JanitorInterval time.Duration `yaml:"janitor-interval" env:"GAME_JANITOR_INTERVAL" env-default:"30s"`
	MaxChatLength   int           `yaml:"max-chat-length" env:"GAME_MAX_CHAT_LENGTH" env-default:"500"`
	MaxNameLength   int           `yaml:"max-name-length" env:"GAME_MAX_NAME_LENGTH" env-default:"32"`
}

type Socket struct {
	SendBuffer   int           `yaml:"send-buffer" env:"SOCKET_SEND_BUFFER" env-default:"64"`
	WriteTimeout time.Duration `yaml:"write-timeout" env:"SOCKET_WRITE_TIMEOUT" env-default:"10s"`
	PongTimeout  time.Duration `yaml:"pong-timeout" env:"SOCKET_PONG_TIMEOUT" env-default:"60s"`
	ReadLimit    int64         `yaml:"read-limit" env:"SOCKET_READ_LIMIT" env-default:"4096"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid config: %w", err))
	}

	return config
}

func (that *Config) Validate() error {
	switch that.Leaderboard.Backend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, that.Leaderboard.Backend)
	}

	if that.Game.RunLength < 1 {
		return fmt.Errorf("game.run-length must be positive, got %d", that.Game.RunLength)
	}

	if that.Socket.SendBuffer < 1 {
		return fmt.Errorf("socket.send-buffer must be positive, got %d", that.Socket.SendBuffer)
	}

	if that.Socket.PongTimeout <= 0 || that.Socket.WriteTimeout <= 0 {
		return errors.New("socket timeouts must be positive")
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
