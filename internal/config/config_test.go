package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	if cfg.StatePath != "state" {
		t.Errorf("unexpected default state path %q", cfg.StatePath)
	}
	if cfg.Scheduler.CheckIntervalSeconds != 30 {
		t.Errorf("unexpected default check interval %d", cfg.Scheduler.CheckIntervalSeconds)
	}
	if len(cfg.Scheduler.DefaultSnoozeMinutes) != 3 {
		t.Errorf("unexpected default snooze options %v", cfg.Scheduler.DefaultSnoozeMinutes)
	}
	if cfg.Defense.PollIntervalMinutes != 5 || cfg.Defense.Tone != "urgent" {
		t.Errorf("unexpected defense defaults %+v", cfg.Defense)
	}
	if !cfg.History.ArchiveEnabled || cfg.History.ArchiveFile != "interventions.db" {
		t.Errorf("unexpected history defaults %+v", cfg.History)
	}
}

func TestFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defender.yaml")
	data := `
state_path: /var/lib/defender
scheduler:
  check_interval_seconds: 10
defense:
  character: drill-sergeant
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if cfg.StatePath != "/var/lib/defender" {
		t.Errorf("file did not override state path, got %q", cfg.StatePath)
	}
	if cfg.Scheduler.CheckIntervalSeconds != 10 {
		t.Errorf("file did not override check interval, got %d", cfg.Scheduler.CheckIntervalSeconds)
	}
	if cfg.Defense.Character != "drill-sergeant" {
		t.Errorf("file did not override defense character, got %q", cfg.Defense.Character)
	}
	// Untouched keys keep their defaults.
	if cfg.Defense.PollIntervalMinutes != 5 {
		t.Errorf("unrelated default lost, got %d", cfg.Defense.PollIntervalMinutes)
	}

	// A missing file is not an error.
	if _, err := Load(filepath.Join(dir, "absent.yaml")); err != nil {
		t.Errorf("missing config file should fall back to defaults: %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "defender.yaml")
	if err := os.WriteFile(path, []byte("state_path: from-file\n"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("DEFENDER_STATE_PATH", "from-env")
	t.Setenv("DEFENDER_SCHEDULER__CHECK_INTERVAL_SECONDS", "45")
	t.Setenv("DISCORD_TOKEN", "tok-123")
	t.Setenv("DISCORD_CHANNEL_ID", "chan-456")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if cfg.StatePath != "from-env" {
		t.Errorf("env did not override file, got %q", cfg.StatePath)
	}
	if cfg.Scheduler.CheckIntervalSeconds != 45 {
		t.Errorf("nested env override failed, got %d", cfg.Scheduler.CheckIntervalSeconds)
	}
	if cfg.Discord.Token != "tok-123" || cfg.Discord.ChannelID != "chan-456" {
		t.Errorf("discord credentials not picked up: %+v", cfg.Discord)
	}
}

func TestValidateRejections(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("failed to load: %v", err)
		}
		return cfg
	}

	cfg := base()
	cfg.StatePath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected empty state path to be rejected")
	}

	cfg = base()
	cfg.Scheduler.CheckIntervalSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected zero check interval to be rejected")
	}

	cfg = base()
	cfg.Defense.PollIntervalMinutes = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected negative poll interval to be rejected")
	}

	cfg = base()
	cfg.Scheduler.DefaultSnoozeMinutes = []int{5, 0}
	if err := cfg.Validate(); err == nil {
		t.Error("expected zero snooze option to be rejected")
	}
}

func TestArchivePath(t *testing.T) {
	cfg := &Config{StatePath: "/data", History: HistoryConfig{ArchiveFile: "interventions.db"}}
	if got := cfg.ArchivePath(); got != filepath.Join("/data", "interventions.db") {
		t.Errorf("relative archive file should resolve under the state dir, got %q", got)
	}

	cfg.History.ArchiveFile = "/elsewhere/archive.db"
	if got := cfg.ArchivePath(); got != "/elsewhere/archive.db" {
		t.Errorf("absolute archive file should be kept, got %q", got)
	}

	cfg.History.ArchiveFile = ""
	if got := cfg.ArchivePath(); got != "" {
		t.Errorf("empty archive file should resolve empty, got %q", got)
	}
}
