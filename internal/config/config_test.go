package config

import (
	"path/filepath"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("GUILD_ID", "123456789")
	t.Setenv("DATA_DIR", filepath.Join(t.TempDir(), "data"))
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.BotToken != "token" {
		t.Errorf("BotToken = %q", cfg.BotToken)
	}
	if cfg.GuildID != 123456789 {
		t.Errorf("GuildID = %d", cfg.GuildID)
	}
	if cfg.LicenseURL != defaultLicenseURL {
		t.Errorf("LicenseURL = %q", cfg.LicenseURL)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("GUILD_ID", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without BOT_TOKEN and GUILD_ID")
	}
}

func TestLoadBadGuildID(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("GUILD_ID", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric GUILD_ID")
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("LICENSE_URL", "http://localhost/license/1")
	t.Setenv("POLL_INTERVAL", "30")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LicenseURL != "http://localhost/license/1" {
		t.Errorf("LicenseURL = %q", cfg.LicenseURL)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
}

func TestLoadBadPollInterval(t *testing.T) {
	setRequired(t)
	t.Setenv("POLL_INTERVAL", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want fallback 5s", cfg.PollInterval)
	}
}
