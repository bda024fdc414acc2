package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"sensor-relay/internal/geo"
	"sensor-relay/internal/logging"
)

type Config struct {
	Port            string
	GeoEndpoint     string
	GeoTimeout      time.Duration
	LogLevel        slog.Level
	LogFormat       string
	AccessLog       bool
	TraceStdout     bool
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	BodyLimit       int
}

// Invalid is one setting that was present but unusable and fell back to its
// default.
type Invalid struct {
	Key     string
	Value   string
	Default string
}

func Default() Config {
	return Config{
		Port:            "1234",
		GeoEndpoint:     geo.DefaultEndpoint,
		GeoTimeout:      geo.DefaultTimeout,
		LogLevel:        slog.LevelInfo,
		LogFormat:       "json",
		AccessLog:       true,
		TraceStdout:     false,
		ReadTimeout:     10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
		BodyLimit:       4 * 1024 * 1024,
	}
}

// Load reads the optional env file into the process environment, then builds
// a Config from it. A missing env file is not an error. The logger is not
// built yet when Load runs, so rejected values are returned for the caller
// to report.
func Load(envFile string) (Config, []Invalid, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, invalid := FromLookup(os.LookupEnv)
	return cfg, invalid, nil
}

// FromLookup builds a Config from any key lookup, starting from Default.
func FromLookup(lookup func(string) (string, bool)) (Config, []Invalid) {
	cfg := Default()
	p := parser{lookup: lookup}

	cfg.Port = p.port("PORT", cfg.Port)
	cfg.GeoEndpoint = p.str("GEO_ENDPOINT", cfg.GeoEndpoint)
	cfg.GeoTimeout = p.duration("GEO_TIMEOUT", cfg.GeoTimeout)
	cfg.LogLevel = p.level("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = p.format("LOG_FORMAT", cfg.LogFormat)
	cfg.AccessLog = p.boolean("ACCESS_LOG", cfg.AccessLog)
	cfg.TraceStdout = p.boolean("TRACE_STDOUT", cfg.TraceStdout)
	cfg.ReadTimeout = p.duration("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.ShutdownTimeout = p.duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.BodyLimit = p.positiveInt("BODY_LIMIT", cfg.BodyLimit)

	return cfg, p.invalid
}

func (c Config) Addr() string {
	return ":" + c.Port
}

type parser struct {
	lookup  func(string) (string, bool)
	invalid []Invalid
}

func (p *parser) get(key string) (string, bool) {
	v, ok := p.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) reject(key, val, def string) {
	p.invalid = append(p.invalid, Invalid{Key: key, Value: val, Default: def})
}

func (p *parser) str(key, def string) string {
	if v, ok := p.get(key); ok {
		return v
	}
	return def
}

func (p *parser) port(key, def string) string {
	v, ok := p.get(key)
	if !ok {
		return def
	}
	if n, err := strconv.Atoi(v); err != nil || n < 1 || n > 65535 {
		p.reject(key, v, def)
		return def
	}
	return v
}

func (p *parser) positiveInt(key string, def int) int {
	v, ok := p.get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		p.reject(key, v, strconv.Itoa(def))
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v, ok := p.get(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		p.reject(key, v, def.String())
		return def
	}
	return d
}

func (p *parser) boolean(key string, def bool) bool {
	v, ok := p.get(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.reject(key, v, strconv.FormatBool(def))
		return def
	}
	return b
}

func (p *parser) level(key string, def slog.Level) slog.Level {
	v, ok := p.get(key)
	if !ok {
		return def
	}
	lvl, valid := logging.ParseLevel(v)
	if !valid {
		p.reject(key, v, def.String())
		return def
	}
	return lvl
}

func (p *parser) format(key, def string) string {
	v, ok := p.get(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "json", "text":
		return strings.ToLower(v)
	default:
		p.reject(key, v, def)
		return def
	}
}
