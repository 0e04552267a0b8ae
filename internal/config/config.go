package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/corvino/roomboard/internal/protocol"
	"github.com/corvino/roomboard/internal/rooms"
)

// DefaultRooms is the reference deployment: two prayer halls and the garage.
var DefaultRooms = []string{"prayer-ground", "prayer-first", "garage"}

// Config holds everything the server needs at startup.
type Config struct {
	Env      string
	HTTPAddr string

	Rooms      []string
	Vocabulary protocol.Vocabulary

	LogLevel  string
	LogFormat string

	CORSAllow []string

	RedisAddr     string // empty disables the mirror
	RedisPassword string
	RedisDB       int
	MirrorKey     string
	MirrorQueue   int
}

// MirrorEnabled reports whether a Redis mirror is configured.
func (c Config) MirrorEnabled() bool { return c.RedisAddr != "" }

// LoadDotEnv seeds the environment from a .env file when one exists.
// Variables already set win.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	env := getEnv("APP_ENV", "dev")
	defLevel, defFormat := "debug", "console"
	if env == "prod" {
		defLevel, defFormat = "info", "json"
	}

	cfg := Config{
		Env:           env,
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		Rooms:         splitCSV(getEnv("ROOMBOARD_ROOMS", strings.Join(DefaultRooms, ","))),
		LogLevel:      getEnv("LOG_LEVEL", defLevel),
		LogFormat:     getEnv("LOG_FORMAT", defFormat),
		CORSAllow:     splitCSV(getEnv("CORS_ALLOW", "*")),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		MirrorKey:     getEnv("MIRROR_KEY", "roomboard:status"),
		MirrorQueue:   getEnvInt("MIRROR_QUEUE", 64),
	}

	vocab, err := protocol.ParseVocabulary(getEnv("ROOMBOARD_WIRE_VOCABULARY", string(protocol.VocabularyDisplay)))
	if err != nil {
		return Config{}, &rooms.ConfigurationError{Reason: err.Error()}
	}
	cfg.Vocabulary = vocab

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the room set and queue size. Flag overrides call it again.
func (c Config) Validate() error {
	if _, err := rooms.New(c.Rooms); err != nil {
		return err
	}
	if c.MirrorQueue <= 0 {
		return &rooms.ConfigurationError{Reason: fmt.Sprintf("mirror queue must be positive, got %d", c.MirrorQueue)}
	}
	return nil
}

// getEnv returns the env var or a default
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt parses an int env var, falling back on absent or bad input
func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			return i
		}
	}
	return def
}

// SplitCSV trims and filters a comma-separated list
func SplitCSV(v string) []string { return splitCSV(v) }

func splitCSV(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
