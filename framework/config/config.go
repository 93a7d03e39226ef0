// Package config loads the application configuration.
//
// Sources, lowest precedence first: an optional YAML or JSON file, .env
// files, then the process environment. Environment keys map onto the file
// layout by their first underscore: APP_PORT is app.port, REGISTRY_LIFETIME
// is registry.lifetime.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/km-arc/go-resolver/framework/container"
)

// Config is the central typed configuration struct.
type Config struct {
	App      AppConfig      `json:"app"`
	DB       DBConfig       `json:"db"`
	Registry RegistryConfig `json:"registry"`
	Log      LogConfig      `json:"log"`
}

type AppConfig struct {
	Name  string `json:"name"`
	Env   string `json:"env"` // local | dev | production | testing
	Debug bool   `json:"debug"`
	Port  string `json:"port"`
}

type DBConfig struct {
	Driver   string `json:"driver"`   // memory | sqlite
	Database string `json:"database"` // sqlite path, ":memory:" allowed
}

type RegistryConfig struct {
	Lifetime string `json:"lifetime"` // singleton | scoped | transient
	Codec    string `json:"codec"`    // json | yaml
}

type LogConfig struct {
	Level string `json:"level"`
}

var sections = []string{"app_", "db_", "registry_", "log_"}

// Load reads envFiles (".env" when none are given; missing files are not an
// error) and the environment.
func Load(envFiles ...string) (*Config, error) {
	return LoadFile("", envFiles...)
}

// LoadFile is Load with a YAML or JSON file beneath the environment. An empty
// path skips the file.
func LoadFile(path string, envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// .env may not exist in production
	_ = godotenv.Load(files...)

	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("config: unsupported format %s", path)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	if err := k.Load(env.ProviderWithValue("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps APP_NAME to app.name. Empty variables and variables outside
// the known sections are dropped.
func envKey(key, value string) (string, any) {
	if value == "" {
		return "", nil
	}
	key = strings.ToLower(key)
	for _, prefix := range sections {
		if strings.HasPrefix(key, prefix) && len(key) > len(prefix) {
			return strings.Replace(key, "_", ".", 1), value
		}
	}
	return "", nil
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	def := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	def(&c.App.Name, "go-resolver")
	def(&c.App.Env, "local")
	def(&c.App.Port, "8000")
	def(&c.DB.Driver, "memory")
	def(&c.DB.Database, "registry.db")
	def(&c.Registry.Lifetime, "singleton")
	def(&c.Registry.Codec, "json")
	def(&c.Log.Level, "info")
}

// Validate rejects unknown drivers, lifetimes, codecs and log levels.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DB.Driver) {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("config: unknown db driver %q", c.DB.Driver)
	}
	if _, err := container.ParseLifetime(strings.ToLower(c.Registry.Lifetime)); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.Registry.Codec) {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("config: unknown registry codec %q", c.Registry.Codec)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Log.Level)
	}
	return nil
}

// Lifetime returns the parsed registry lifetime.
func (c *Config) Lifetime() container.Lifetime {
	l, _ := container.ParseLifetime(strings.ToLower(c.Registry.Lifetime))
	return l
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string { return ":" + c.App.Port }

func (c *Config) IsLocal() bool { return c.App.Env == "local" || c.App.Env == "dev" }
