package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/altin/brunoview/internal/cache"
	"github.com/altin/brunoview/internal/model"
)

type Config struct {
	// File is the local results JSON. Mutually exclusive with Server.
	File string `yaml:"file"`
	// Server is the base URL of another brunoview server to read results from.
	Server string `yaml:"server"`
	// Token guards /api/* when serving and is sent when reading from Server.
	Token string `yaml:"token"`

	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	PublicDir string `yaml:"public_dir"`
	NoOpen    bool   `yaml:"no_open"`
	Watch     bool   `yaml:"watch"`

	Sort      string `yaml:"sort"`
	CacheSize int    `yaml:"cache_size"` // minimum blob cache capacity; grown to the dataset size on load

	Log LogConfig `yaml:"log"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

const (
	defaultHost     = "127.0.0.1"
	defaultLogLevel = "info"
	envPrefix       = "BRUNOVIEW_"
)

var logLevels = []string{"debug", "info", "warn", "error"}

func Default() *Config {
	return &Config{
		Host:      defaultHost,
		Sort:      string(model.SortStatus),
		CacheSize: cache.DefaultSize,
		Log: LogConfig{
			Level: defaultLogLevel,
			File:  DefaultLogFile(),
		},
	}
}

// Load layers configuration sources, later ones winning: defaults, the user
// config file, the project config file, .env, environment and finally flags.
func Load(flagOverrides *Config) (*Config, error) {
	cfg := Default()

	for _, path := range []string{homeConfigPath(), projectConfigPath()} {
		fileCfg, err := loadFromPath(path)
		if err != nil {
			return nil, err
		}
		if fileCfg != nil {
			cfg = merge(cfg, fileCfg)
		}
	}

	// .env never overrides variables already present in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := applyEnv(cfg)
	if err != nil {
		return nil, err
	}

	if flagOverrides != nil {
		cfg = merge(cfg, flagOverrides)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.File != "" && c.Server != "" {
		return fmt.Errorf("file and server are mutually exclusive")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if !model.ValidSortKey(c.Sort) {
		return fmt.Errorf("unknown sort %q", c.Sort)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache size must be positive, got %d", c.CacheSize)
	}
	valid := false
	for _, l := range logLevels {
		if c.Log.Level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown log level %q (want one of %s)", c.Log.Level, strings.Join(logLevels, ", "))
	}
	return nil
}

// Addr is the listen address for the server.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DefaultLogFile follows the XDG state directory convention.
func DefaultLogFile() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "brunoview.log")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "brunoview", "brunoview.log")
}

func homeConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "brunoview", "config.yaml")
}

func projectConfigPath() string {
	if override := strings.TrimSpace(os.Getenv(envPrefix + "CONFIG")); override != "" {
		return override
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ".brunoview.yaml")
}

func loadFromPath(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) (*Config, error) {
	env := func(key string) string { return strings.TrimSpace(os.Getenv(envPrefix + key)) }

	mergeStr(&cfg.File, env("FILE"))
	mergeStr(&cfg.Server, env("SERVER"))
	mergeStr(&cfg.Token, env("TOKEN"))
	mergeStr(&cfg.Host, env("HOST"))
	mergeStr(&cfg.PublicDir, env("PUBLIC_DIR"))
	mergeStr(&cfg.Sort, env("SORT"))
	mergeStr(&cfg.Log.Level, env("LOG_LEVEL"))
	mergeStr(&cfg.Log.File, env("LOG_FILE"))

	for key, dst := range map[string]*int{"PORT": &cfg.Port, "CACHE_SIZE": &cfg.CacheSize} {
		v := env(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s%s: %w", envPrefix, key, err)
		}
		*dst = n
	}

	if v := env("NO_OPEN"); isTrue(v) {
		cfg.NoOpen = true
	}
	if v := env("WATCH"); isTrue(v) {
		cfg.Watch = true
	}
	return cfg, nil
}

func isTrue(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

func merge(dst, src *Config) *Config {
	mergeStr(&dst.File, src.File)
	mergeStr(&dst.Server, src.Server)
	mergeStr(&dst.Token, src.Token)
	mergeStr(&dst.Host, src.Host)
	mergeInt(&dst.Port, src.Port)
	mergeStr(&dst.PublicDir, src.PublicDir)
	if src.NoOpen {
		dst.NoOpen = true
	}
	if src.Watch {
		dst.Watch = true
	}
	mergeStr(&dst.Sort, src.Sort)
	mergeInt(&dst.CacheSize, src.CacheSize)
	mergeStr(&dst.Log.Level, src.Log.Level)
	mergeStr(&dst.Log.File, src.Log.File)
	return dst
}
