package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Timeout != 1*time.Second {
		t.Errorf("Database.Timeout = %v, want 1s", cfg.Database.Timeout)
	}

	if cfg.Paging.PageSize != 10 {
		t.Errorf("Paging.PageSize = %d, want 10", cfg.Paging.PageSize)
	}
	if cfg.Paging.ScrollThreshold != 20 {
		t.Errorf("Paging.ScrollThreshold = %d, want 20", cfg.Paging.ScrollThreshold)
	}
	if cfg.Paging.Debounce != 500*time.Millisecond {
		t.Errorf("Paging.Debounce = %v, want 500ms", cfg.Paging.Debounce)
	}

	if cfg.Cache.Backend != "memory" {
		t.Errorf("Cache.Backend = %s, want 'memory'", cfg.Cache.Backend)
	}
	if cfg.Source.Mode != "offset" {
		t.Errorf("Source.Mode = %s, want 'offset'", cfg.Source.Mode)
	}
	if cfg.Source.UserAgent == "" {
		t.Error("Source.UserAgent should not be empty")
	}
	if cfg.Server.MaxLimit != 200 {
		t.Errorf("Server.MaxLimit = %d, want 200", cfg.Server.MaxLimit)
	}

	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.Keys.Bindings.Quit != "q" {
		t.Errorf("Keys.Bindings.Quit = %s, want 'q'", cfg.Keys.Bindings.Quit)
	}
}

func TestLoad_DefaultConfig(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	if cfg.Paging.Debounce != 500*time.Millisecond {
		t.Errorf("Paging.Debounce = %v, want 500ms", cfg.Paging.Debounce)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "test-config.toml")
	configContent := `
[database]
path = "/tmp/test.db"
timeout = "10s"

[paging]
page_size = 25

[cache]
backend = "redis"

[cache.redis]
addr = "redis:6379"

[source]
mode = "server"
user_agent = "test-agent"

[ui.colors]
primary = "#FF0000"
`

	if writeErr := os.WriteFile(configPath, []byte(configContent), 0o644); writeErr != nil {
		t.Fatal(writeErr)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %s, want '/tmp/test.db'", cfg.Database.Path)
	}
	if cfg.Database.Timeout != 10*time.Second {
		t.Errorf("Database.Timeout = %v, want 10s", cfg.Database.Timeout)
	}
	if cfg.Paging.PageSize != 25 {
		t.Errorf("Paging.PageSize = %d, want 25", cfg.Paging.PageSize)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Paging.ScrollThreshold != 20 {
		t.Errorf("Paging.ScrollThreshold = %d, want 20", cfg.Paging.ScrollThreshold)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Redis.Addr != "redis:6379" {
		t.Errorf("Cache = %+v, want redis at redis:6379", cfg.Cache)
	}
	if cfg.Cache.Codec != "msgpack" {
		t.Errorf("Cache.Codec = %s, want default 'msgpack'", cfg.Cache.Codec)
	}
	if cfg.Source.Mode != "server" {
		t.Errorf("Source.Mode = %s, want 'server'", cfg.Source.Mode)
	}
	if cfg.Source.UserAgent != "test-agent" {
		t.Errorf("Source.UserAgent = %s, want 'test-agent'", cfg.Source.UserAgent)
	}
	if cfg.UI.Colors.Primary != "#FF0000" {
		t.Errorf("UI.Colors.Primary = %s, want '#FF0000'", cfg.UI.Colors.Primary)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("LAZYLOAD_LOG_BACKEND", "zap")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Backend != "zap" {
		t.Errorf("Log.Backend = %s, want 'zap'", cfg.Log.Backend)
	}
}

func TestSave(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-save-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	cfg := defaultConfig()
	cfg.Database.Path = "/test/path.db"
	cfg.Paging.Debounce = 250 * time.Millisecond
	cfg.Source.UserAgent = "test-save-agent"
	cfg.Cache.Codec = "cbor"
	cfg.Keys.Modifier = "alt"

	savePath := filepath.Join(tmpDir, "saved-config.toml")
	if saveErr := Save(cfg, savePath); saveErr != nil {
		t.Fatalf("Save() error = %v", saveErr)
	}

	if _, statErr := os.Stat(savePath); os.IsNotExist(statErr) {
		t.Fatal("Save() did not create config file")
	}

	loaded, err := Load(savePath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Database.Path != cfg.Database.Path {
		t.Errorf("Loaded Database.Path = %s, want %s", loaded.Database.Path, cfg.Database.Path)
	}
	if loaded.Paging.Debounce != cfg.Paging.Debounce {
		t.Errorf("Loaded Paging.Debounce = %v, want %v", loaded.Paging.Debounce, cfg.Paging.Debounce)
	}
	if loaded.Source.UserAgent != cfg.Source.UserAgent {
		t.Errorf("Loaded Source.UserAgent = %s, want %s", loaded.Source.UserAgent, cfg.Source.UserAgent)
	}
	if loaded.Cache.Codec != "cbor" {
		t.Errorf("Loaded Cache.Codec = %s, want cbor", loaded.Cache.Codec)
	}
	if loaded.Keys.Modifier != cfg.Keys.Modifier {
		t.Errorf("Loaded Keys.Modifier = %s, want %s", loaded.Keys.Modifier, cfg.Keys.Modifier)
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-gen-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	configPath := filepath.Join(tmpDir, "generated.toml")
	if genErr := GenerateDefaultConfig(configPath); genErr != nil {
		t.Fatalf("GenerateDefaultConfig() error = %v", genErr)
	}

	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		t.Fatal("GenerateDefaultConfig() did not create file")
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load generated config: %v", err)
	}

	if cfg.Keys.Modifier != "ctrl" {
		t.Errorf("Generated config has Keys.Modifier = %s, want 'ctrl'", cfg.Keys.Modifier)
	}
	if cfg.Paging.PageSize != 10 {
		t.Errorf("Generated config has Paging.PageSize = %d, want 10", cfg.Paging.PageSize)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()
	if got := expandPath("~/x.db"); got != filepath.Join(home, "x.db") {
		t.Errorf("expandPath(~/x.db) = %s", got)
	}
	if got := expandPath(""); got != "" {
		t.Errorf("expandPath(\"\") = %q, want empty", got)
	}
	if got := expandPath("rel.db"); !filepath.IsAbs(got) {
		t.Errorf("expandPath(rel.db) = %s, want absolute", got)
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()

	if cfg == nil {
		t.Fatal("TestConfig() returned nil")
	}

	if cfg.Database.Path != ":memory:" {
		t.Errorf("TestConfig Database.Path = %s, want ':memory:'", cfg.Database.Path)
	}
	if cfg.Source.UserAgent != "lazyload-test/1.0" {
		t.Errorf("TestConfig Source.UserAgent = %s, want 'lazyload-test/1.0'", cfg.Source.UserAgent)
	}
}

func TestLoad_OpenSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `[open]
opener = "my-opener"
mail = ["neomutt", "thunderbird"]

[keys.bindings]
mail = "M"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Open.Opener != "my-opener" {
		t.Errorf("Open.Opener = %q, want 'my-opener'", cfg.Open.Opener)
	}
	if len(cfg.Open.Mail) != 2 || cfg.Open.Mail[0] != "neomutt" {
		t.Errorf("Open.Mail = %v", cfg.Open.Mail)
	}
	if len(cfg.Open.Phone) != 0 {
		t.Errorf("Open.Phone = %v, want empty", cfg.Open.Phone)
	}
	if cfg.Keys.Bindings.Mail != "M" || cfg.Keys.Bindings.Call != "p" {
		t.Errorf("Bindings mail/call = %q/%q", cfg.Keys.Bindings.Mail, cfg.Keys.Bindings.Call)
	}
}
