package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Ensure a clean environment for the keys we read.
	for _, key := range []string{"PORT", "SQLITE_DB_PATH", "GEMINI_API_KEY", "GEMINI_MODEL", "MAX_IMPORT_BYTES"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, want 8080", cfg.Port)
	}
	if cfg.SQLiteDBPath != "./data/financewise.db" {
		t.Errorf("SQLiteDBPath = %s", cfg.SQLiteDBPath)
	}
	if cfg.GeminiModel != "gemini-3-flash-preview" {
		t.Errorf("GeminiModel = %s", cfg.GeminiModel)
	}
	if cfg.GeminiAPIKey != "" {
		t.Errorf("GeminiAPIKey = %s, want empty default", cfg.GeminiAPIKey)
	}
	if cfg.MaxImportBytes != 10<<20 {
		t.Errorf("MaxImportBytes = %d, want %d", cfg.MaxImportBytes, 10<<20)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SQLITE_DB_PATH", "/tmp/test.db")
	t.Setenv("GEMINI_API_KEY", "key-123")
	t.Setenv("GEMINI_MODEL", "gemini-test")
	t.Setenv("MAX_IMPORT_BYTES", "1024")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Errorf("Port = %s, want 9000", cfg.Port)
	}
	if cfg.SQLiteDBPath != "/tmp/test.db" {
		t.Errorf("SQLiteDBPath = %s", cfg.SQLiteDBPath)
	}
	if cfg.GeminiAPIKey != "key-123" {
		t.Errorf("GeminiAPIKey = %s", cfg.GeminiAPIKey)
	}
	if cfg.GeminiModel != "gemini-test" {
		t.Errorf("GeminiModel = %s", cfg.GeminiModel)
	}
	if cfg.MaxImportBytes != 1024 {
		t.Errorf("MaxImportBytes = %d", cfg.MaxImportBytes)
	}
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("MAX_IMPORT_BYTES", "lots")

	cfg := Load()
	if cfg.MaxImportBytes != 10<<20 {
		t.Errorf("MaxImportBytes = %d, want default on malformed value", cfg.MaxImportBytes)
	}
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		t.Helper()
		return &Config{
			Port:           "8080",
			SQLiteDBPath:   filepath.Join(t.TempDir(), "test.db"),
			GeminiModel:    "gemini-3-flash-preview",
			MaxImportBytes: 1024,
		}
	}

	tests := []struct {
		name     string
		mutate   func(*Config)
		wantErr  bool
		errLikes string
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty api key is allowed",
			mutate:  func(c *Config) { c.GeminiAPIKey = "" },
			wantErr: false,
		},
		{
			name:     "non-numeric port",
			mutate:   func(c *Config) { c.Port = "http" },
			wantErr:  true,
			errLikes: "invalid port",
		},
		{
			name:     "port out of range",
			mutate:   func(c *Config) { c.Port = "70000" },
			wantErr:  true,
			errLikes: "invalid port",
		},
		{
			name:     "empty db path",
			mutate:   func(c *Config) { c.SQLiteDBPath = "" },
			wantErr:  true,
			errLikes: "database path",
		},
		{
			name:     "empty model",
			mutate:   func(c *Config) { c.GeminiModel = "" },
			wantErr:  true,
			errLikes: "model",
		},
		{
			name:     "zero import limit",
			mutate:   func(c *Config) { c.MaxImportBytes = 0 },
			wantErr:  true,
			errLikes: "max import size",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !strings.Contains(err.Error(), tt.errLikes) {
					t.Errorf("Validate() = %v, want mention of %q", err, tt.errLikes)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := &Config{Port: "abc", SQLiteDBPath: "", GeminiModel: "", MaxImportBytes: 0}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	for _, want := range []string{"invalid port", "database path", "model", "max import size"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("combined error missing %q: %v", want, err)
		}
	}
}
