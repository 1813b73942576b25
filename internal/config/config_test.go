package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"github.com/billfold/billfold/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("BILLFOLD_NTFY_TOPIC", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "billfold", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Paths.InboxDir != filepath.Join(tempHome, "inbox") {
		t.Fatalf("unexpected inbox dir: %q", cfg.Paths.InboxDir)
	}
	if cfg.Paths.LibraryDir != filepath.Join(tempHome, "invoices") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	if cfg.Organizer.ConflictMode != "auto-rename" {
		t.Fatalf("unexpected conflict mode: %q", cfg.Organizer.ConflictMode)
	}
	if !cfg.Organizer.AmountInFilename {
		t.Fatal("expected amount_in_filename enabled by default")
	}
	if cfg.Organizer.RemoveSourceAfterFiling {
		t.Fatal("expected remove_source_after_filing disabled by default")
	}
	if cfg.Notifications.NtfyTopic != "" {
		t.Fatalf("expected empty ntfy topic, got %q", cfg.Notifications.NtfyTopic)
	}
	if cfg.Extraction.MaxFileSizeMB != 50 {
		t.Fatalf("unexpected max file size: %d", cfg.Extraction.MaxFileSizeMB)
	}
	if cfg.Workflow.HeartbeatInterval != config.Default().Workflow.HeartbeatInterval {
		t.Fatalf("unexpected heartbeat interval: %d", cfg.Workflow.HeartbeatInterval)
	}
	if cfg.Workflow.HeartbeatTimeout != config.Default().Workflow.HeartbeatTimeout {
		t.Fatalf("unexpected heartbeat timeout: %d", cfg.Workflow.HeartbeatTimeout)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.InboxDir, cfg.Paths.StagingDir, cfg.Paths.LogDir, cfg.Paths.ReviewDir, cfg.Paths.LibraryDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "billfold.toml")

	type payload struct {
		Paths struct {
			LibraryDir string `toml:"library_dir"`
		} `toml:"paths"`
		Organizer struct {
			ConflictMode string `toml:"conflict_mode"`
		} `toml:"organizer"`
		Workflow struct {
			HeartbeatInterval int `toml:"heartbeat_interval"`
			HeartbeatTimeout  int `toml:"heartbeat_timeout"`
		} `toml:"workflow"`
	}
	custom := payload{}
	custom.Paths.LibraryDir = filepath.Join(tempDir, "filed")
	custom.Organizer.ConflictMode = "Overwrite"
	custom.Workflow.HeartbeatInterval = 20
	custom.Workflow.HeartbeatTimeout = 200
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.LibraryDir != custom.Paths.LibraryDir {
		t.Fatalf("expected library dir override, got %q", cfg.Paths.LibraryDir)
	}
	if cfg.Organizer.ConflictMode != "overwrite" {
		t.Fatalf("expected conflict mode lowered to overwrite, got %q", cfg.Organizer.ConflictMode)
	}
	if cfg.Workflow.HeartbeatInterval != 20 {
		t.Fatalf("expected heartbeat interval 20, got %d", cfg.Workflow.HeartbeatInterval)
	}
	if cfg.Workflow.HeartbeatTimeout != 200 {
		t.Fatalf("expected heartbeat timeout 200, got %d", cfg.Workflow.HeartbeatTimeout)
	}
}

func TestNtfyTopicEnvFallback(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "billfold.toml")
	if err := os.WriteFile(configPath, []byte("[notifications]\nntfy_topic = \"\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("BILLFOLD_NTFY_TOPIC", "https://ntfy.sh/billfold-test")
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/billfold-test" {
		t.Fatalf("expected topic from env, got %q", cfg.Notifications.NtfyTopic)
	}

	// A topic in the file wins over the environment.
	if err := os.WriteFile(configPath, []byte("[notifications]\nntfy_topic = \"https://ntfy.sh/from-file\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err = config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/from-file" {
		t.Fatalf("expected topic from file, got %q", cfg.Notifications.NtfyTopic)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "inbox_dir") {
		t.Fatalf("sample config missing inbox_dir: %s", contents)
	}

	// Validate it decodes
	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.StagingDir, "billfold") {
		t.Fatalf("expected staging dir to contain billfold, got %q", cfg.Paths.StagingDir)
	}
	if cfg.Organizer.ConflictMode != "auto-rename" {
		t.Fatalf("expected sample conflict mode auto-rename, got %q", cfg.Organizer.ConflictMode)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Workflow.QueuePollInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive poll interval")
	}

	cfg = config.Default()
	cfg.Workflow.HeartbeatTimeout = cfg.Workflow.HeartbeatInterval
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when timeout <= interval")
	}

	cfg = config.Default()
	cfg.Organizer.ConflictMode = "merge"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown conflict mode")
	}

	cfg = config.Default()
	cfg.Extraction.Patterns = map[string][]string{"amount": {"(["}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid extraction pattern")
	}

	cfg = config.Default()
	cfg.Workflow.InboxMinFileAge = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative inbox file age")
	}
}
