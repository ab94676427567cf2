package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Catalog.Source != "csv" || cfg.OCR.Language != "spa" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: 8081
database:
  driver: postgres
  host: db
  port: 5432
  user: rx
  password: secret
  name: rxscan
catalog:
  source: database
  cacheTTL: 30s
llm:
  provider: openai
  model: gpt-4o-mini
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Catalog.CacheTTL != 30*time.Second {
		t.Errorf("cacheTTL = %s", cfg.Catalog.CacheTTL)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("api key from env not applied")
	}
	if cfg.OCR.Command != "tesseract" {
		t.Errorf("default ocr command lost: %q", cfg.OCR.Command)
	}
	dsn := cfg.PostgresDSN()
	for _, want := range []string{"host=db", "port=5432", "dbname=rxscan", "sslmode=disable"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn %q missing %q", dsn, want)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(env(map[string]string{
		"PORT":           "9000",
		"TESSERACT_CMD":  "/usr/local/bin/tesseract",
		"GOOGLE_API_KEY": "g-key",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9000 || cfg.OCR.Command != "/usr/local/bin/tesseract" || cfg.LLM.APIKey != "g-key" {
		t.Fatalf("env not applied: %+v", cfg)
	}

	if err := Default().applyEnv(env(map[string]string{"PORT": "abc"})); err == nil {
		t.Fatal("expected error for bad PORT")
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"driver":                   func(c *Config) { c.Database.Driver = "sqlite" },
		"provider":                 func(c *Config) { c.LLM.Provider = "claude" },
		"source":                   func(c *Config) { c.Catalog.Source = "s3" },
		"db source without driver": func(c *Config) { c.Catalog.Source = "database" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
