package config_test

import (
	"os"
	"testing"

	"github.com/km-arc/go-resolver/framework/config"
	"github.com/km-arc/go-resolver/framework/container"
)

// ── helpers ──────────────────────────────────────────────────────────────────

var keys = []string{
	"APP_NAME", "APP_ENV", "APP_DEBUG", "APP_PORT",
	"DB_DRIVER", "DB_DATABASE", "REGISTRY_LIFETIME", "REGISTRY_CODEC", "LOG_LEVEL",
}

// clearEnv blanks every key, so blank values fall back to defaults. Keys in
// unset are removed instead, leaving them for a .env file to fill; the
// original values come back after the test either way.
func clearEnv(t *testing.T, unset ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
	for _, k := range unset {
		_ = os.Unsetenv(k)
	}
}

func mustLoad(t *testing.T, path string, envFiles ...string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFile(path, envFiles...)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return cfg
}

// ── Load ─────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := mustLoad(t, "", "testdata/empty.env")

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"App.Name", cfg.App.Name, "go-resolver"},
		{"App.Env", cfg.App.Env, "local"},
		{"App.Port", cfg.App.Port, "8000"},
		{"DB.Driver", cfg.DB.Driver, "memory"},
		{"DB.Database", cfg.DB.Database, "registry.db"},
		{"Registry.Lifetime", cfg.Registry.Lifetime, "singleton"},
		{"Registry.Codec", cfg.Registry.Codec, "json"},
		{"Log.Level", cfg.Log.Level, "info"},
		{"Addr", cfg.Addr(), ":8000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
	if cfg.App.Debug {
		t.Error("expected App.Debug to default to false")
	}
	if !cfg.IsLocal() {
		t.Error("expected local environment")
	}
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_NAME", "MyApp")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_PORT", "9000")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("REGISTRY_LIFETIME", "Transient")

	cfg := mustLoad(t, "", "testdata/empty.env")

	if cfg.App.Name != "MyApp" {
		t.Errorf("App.Name: got %q want %q", cfg.App.Name, "MyApp")
	}
	if cfg.App.Env != "production" || cfg.IsLocal() {
		t.Errorf("App.Env: got %q want %q", cfg.App.Env, "production")
	}
	if cfg.App.Port != "9000" {
		t.Errorf("App.Port: got %q want %q", cfg.App.Port, "9000")
	}
	if !cfg.App.Debug {
		t.Error("expected App.Debug to be true")
	}
	if cfg.Lifetime() != container.Transient {
		t.Errorf("Lifetime: got %v want transient", cfg.Lifetime())
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t, "DB_DRIVER", "DB_DATABASE")
	cfg := mustLoad(t, "", "testdata/app.env")

	if cfg.DB.Driver != "sqlite" {
		t.Errorf("DB.Driver: got %q want %q", cfg.DB.Driver, "sqlite")
	}
	if cfg.DB.Database != "/tmp/registry-test.db" {
		t.Errorf("DB.Database: got %q", cfg.DB.Database)
	}
}

func TestLoadFile_YAML_EnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_PORT", "9200")

	cfg := mustLoad(t, "testdata/registry.yaml", "testdata/empty.env")

	if cfg.App.Name != "catalog-admin" {
		t.Errorf("App.Name: got %q", cfg.App.Name)
	}
	if cfg.App.Port != "9200" {
		t.Errorf("App.Port: got %q want env value 9200", cfg.App.Port)
	}
	if cfg.Lifetime() != container.Scoped || cfg.Registry.Codec != "yaml" {
		t.Errorf("Registry: got %+v", cfg.Registry)
	}
}

func TestLoadFile_JSON(t *testing.T) {
	clearEnv(t)
	cfg := mustLoad(t, "testdata/registry.json", "testdata/empty.env")
	if cfg.App.Name != "from-json" || !cfg.App.Debug {
		t.Errorf("App: got %+v", cfg.App)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	clearEnv(t)
	if _, err := config.LoadFile("testdata/registry.toml", "testdata/empty.env"); err == nil {
		t.Error("expected unsupported format error")
	}
	if _, err := config.LoadFile("testdata/missing.yaml", "testdata/empty.env"); err == nil {
		t.Error("expected missing file error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*config.Config)
	}{
		{"driver", func(c *config.Config) { c.DB.Driver = "mysql" }},
		{"lifetime", func(c *config.Config) { c.Registry.Lifetime = "forever" }},
		{"codec", func(c *config.Config) { c.Registry.Codec = "toml" }},
		{"log level", func(c *config.Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg config.Config
			cfg.SetDefaults()
			if err := cfg.Validate(); err != nil {
				t.Fatalf("defaults should validate: %v", err)
			}
			tt.mut(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	clearEnv(t)
	t.Setenv("DB_DRIVER", "oracle")
	if _, err := config.Load("testdata/empty.env"); err == nil {
		t.Error("Load should validate")
	}
}
