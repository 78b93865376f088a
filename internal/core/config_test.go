package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valter-silva-au/lane/internal/storage"
	"github.com/valter-silva-au/lane/pkg/models"
)

func TestLoadConfig_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := NewConfigurationManager(t.TempDir()).LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkDir != "work" {
		t.Errorf("expected work dir %q, got %q", "work", cfg.WorkDir)
	}
	if cfg.DefaultWorkType != models.TypeFullstack {
		t.Errorf("expected default type fullstack, got %s", cfg.DefaultWorkType)
	}
	if cfg.TagPrefix != "item" || cfg.Remote != "origin" {
		t.Errorf("unexpected tag defaults: %q %q", cfg.TagPrefix, cfg.Remote)
	}
	if !cfg.PushTags || !cfg.AdvisoryLock {
		t.Errorf("expected push_tags and advisory_lock on by default")
	}
	if cfg.GitTimeout != 30*time.Second {
		t.Errorf("expected 30s git timeout, got %v", cfg.GitTimeout)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	engineDir := filepath.Join(dir, storage.EngineDir)
	if err := os.MkdirAll(engineDir, 0o750); err != nil {
		t.Fatalf("failed to create engine dir: %v", err)
	}
	yaml := `work_dir: items
default_work_type: research
tag_prefix: task
push_tags: false
git_timeout: 5s
`
	if err := os.WriteFile(filepath.Join(engineDir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := NewConfigurationManager(dir).LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WorkDir != "items" {
		t.Errorf("expected work dir items, got %q", cfg.WorkDir)
	}
	if cfg.DefaultWorkType != models.TypeResearch {
		t.Errorf("expected research, got %s", cfg.DefaultWorkType)
	}
	if cfg.TagPrefix != "task" {
		t.Errorf("expected tag prefix task, got %q", cfg.TagPrefix)
	}
	if cfg.PushTags {
		t.Error("expected push_tags disabled")
	}
	if cfg.GitTimeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.GitTimeout)
	}
	// Unset keys keep their defaults.
	if cfg.Remote != "origin" {
		t.Errorf("expected default remote, got %q", cfg.Remote)
	}
}

func TestLoadConfig_RejectsUnknownWorkType(t *testing.T) {
	dir := t.TempDir()
	engineDir := filepath.Join(dir, storage.EngineDir)
	if err := os.MkdirAll(engineDir, 0o750); err != nil {
		t.Fatalf("failed to create engine dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(engineDir, "config.yaml"), []byte("default_work_type: management\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := NewConfigurationManager(dir).LoadConfig(); err == nil {
		t.Fatal("expected error for unknown work type")
	}
}
