package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
	if len(cfg.Profiles) != 3 {
		t.Fatalf("profiles = %d, want 3", len(cfg.Profiles))
	}
	for _, p := range cfg.Profiles {
		if p.MinDuration != 70 || p.MaxDuration != 90 {
			t.Fatalf("profile %s bounds = [%v, %v], want [70, 90]", p.Key, p.MinDuration, p.MaxDuration)
		}
		if p.AspectRatio != "9:16" {
			t.Fatalf("profile %s aspect = %s", p.Key, p.AspectRatio)
		}
		if len(cfg.Captions.CTAPrompts[p.Key]) == 0 {
			t.Fatalf("profile %s has no CTA prompts", p.Key)
		}
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shortforge.yaml")
	body := `
output_dir: /var/shorts
viral:
  min_score: 0.4
  top_k: 5
  keywords:
    secret: 0.9
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OutputDir != "/var/shorts" {
		t.Fatalf("output dir = %s", cfg.OutputDir)
	}
	if cfg.Viral.MinScore != 0.4 || cfg.Viral.TopK != 5 {
		t.Fatalf("viral = %+v", cfg.Viral)
	}
	if cfg.Viral.Keywords["secret"] != 0.9 {
		t.Fatalf("keyword override missing: %v", cfg.Viral.Keywords)
	}
	// Untouched sections keep their defaults.
	if cfg.DatabasePath != "shortforge.db" {
		t.Fatalf("database path = %s", cfg.DatabasePath)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shortforge.yaml")
	body := `
platforms:
  - key: broken
    aspect_ratio: "9:16"
    min_duration: 90
    max_duration: 70
    caption_style: x
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("inverted duration bounds accepted")
	}
}

func TestProfileLookup(t *testing.T) {
	cfg := Default()
	if _, ok := cfg.Profile("tiktok"); !ok {
		t.Fatal("tiktok profile missing")
	}
	if _, ok := cfg.Profile("vine"); ok {
		t.Fatal("unknown profile found")
	}
}

func TestEnvSecrets(t *testing.T) {
	t.Setenv("PEXELS_API_KEY", "pex-123")
	cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Fonds.PexelsAPIKey != "pex-123" {
		t.Fatalf("pexels key = %q", cfg.Fonds.PexelsAPIKey)
	}
}
