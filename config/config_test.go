package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// -------------------- Load Tests --------------------

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
	if cfg.Model.Provider != "mock" {
		t.Errorf("Model.Provider = %q, want %q", cfg.Model.Provider, "mock")
	}
	if cfg.Memory.Strategy != "recency" {
		t.Errorf("Memory.Strategy = %q, want %q", cfg.Memory.Strategy, "recency")
	}
	if cfg.Memory.Keep != 10 {
		t.Errorf("Memory.Keep = %d, want 10", cfg.Memory.Keep)
	}
	if cfg.Memory.Bank != "memory" {
		t.Errorf("Memory.Bank = %q, want %q", cfg.Memory.Bank, "memory")
	}
	if cfg.Scheduler.Enabled {
		t.Error("Scheduler.Enabled = true, want false")
	}
	if cfg.Scheduler.IdleAfter != 30*time.Minute {
		t.Errorf("Scheduler.IdleAfter = %v, want 30m", cfg.Scheduler.IdleAfter)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "attache.yaml")

	content := strings.Join([]string{
		"server:",
		"  addr: :9090",
		"model:",
		"  provider: openai",
		"  name: gpt-4o-mini",
		"memory:",
		"  strategy: importance",
		"  keep: 6",
		"scheduler:",
		"  enabled: true",
		"  idle_after: 45m",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":9090")
	}
	if cfg.Model.Provider != "openai" {
		t.Errorf("Model.Provider = %q, want %q", cfg.Model.Provider, "openai")
	}
	if cfg.Model.Name != "gpt-4o-mini" {
		t.Errorf("Model.Name = %q, want %q", cfg.Model.Name, "gpt-4o-mini")
	}
	if cfg.Memory.Strategy != "importance" {
		t.Errorf("Memory.Strategy = %q, want %q", cfg.Memory.Strategy, "importance")
	}
	if cfg.Memory.Keep != 6 {
		t.Errorf("Memory.Keep = %d, want 6", cfg.Memory.Keep)
	}
	if !cfg.Scheduler.Enabled {
		t.Error("Scheduler.Enabled = false, want true")
	}
	if cfg.Scheduler.IdleAfter != 45*time.Minute {
		t.Errorf("Scheduler.IdleAfter = %v, want 45m", cfg.Scheduler.IdleAfter)
	}

	// Untouched keys keep their defaults.
	if cfg.Memory.Bank != "memory" {
		t.Errorf("Memory.Bank = %q, want default %q", cfg.Memory.Bank, "memory")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ATTACHE_SERVER_ADDR", ":7070")
	t.Setenv("ATTACHE_MODEL_PROVIDER", "anthropic")
	t.Setenv("ATTACHE_MEMORY_KEEP", "4")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":7070" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":7070")
	}
	if cfg.Model.Provider != "anthropic" {
		t.Errorf("Model.Provider = %q, want %q", cfg.Model.Provider, "anthropic")
	}
	if cfg.Memory.Keep != 4 {
		t.Errorf("Memory.Keep = %d, want 4", cfg.Memory.Keep)
	}
}

func TestLoad_EnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "attache.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: :9090\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ATTACHE_SERVER_ADDR", ":6060")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":6060" {
		t.Errorf("Server.Addr = %q, want env value %q", cfg.Server.Addr, ":6060")
	}
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() with missing explicit file should fail")
	}
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "attache.yaml")
	if err := os.WriteFile(path, []byte("model:\n  provider: cohere\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should reject unknown provider")
	}
	if !strings.Contains(err.Error(), "cohere") {
		t.Errorf("error = %v, want mention of the bad provider", err)
	}
}

// -------------------- Validate Tests --------------------

func TestConfig_Validate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	base, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "bad provider", mutate: func(c *Config) { c.Model.Provider = "llama" }, wantErr: true},
		{name: "bad strategy", mutate: func(c *Config) { c.Memory.Strategy = "lru" }, wantErr: true},
		{name: "bad bank", mutate: func(c *Config) { c.Memory.Bank = "dynamo" }, wantErr: true},
		{name: "file bank without path", mutate: func(c *Config) { c.Memory.Bank = "file" }, wantErr: true},
		{
			name: "file bank with path",
			mutate: func(c *Config) {
				c.Memory.Bank = "file"
				c.Memory.BankPath = "/tmp/bank.json"
			},
			wantErr: false,
		},
		{name: "negative keep", mutate: func(c *Config) { c.Memory.Keep = -1 }, wantErr: true},
		{name: "redis bank", mutate: func(c *Config) { c.Memory.Bank = "redis" }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := *base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
