//go:build integration

package itest

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestE2E builds one short from synthetic footage through the real CLI and
// checks the output lands inside the platform duration band.
func TestE2E(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH")
	}
	repoRoot := mustRepoRoot(t)
	tmp := t.TempDir()

	src := filepath.Join(tmp, "source.mp4")
	ff := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", "color=c=black:s=1080x1920:d=120",
		"-f", "lavfi",
		"-i", "sine=frequency=440:duration=120",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-shortest",
		src,
	)
	if b, err := ff.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}

	text := strings.Repeat(
		"What is the secret to money that nobody shares? This incredible hack will transform how you win. ", 8)
	trPath := filepath.Join(tmp, "transcript.json")
	trJSON, err := json.Marshal(map[string]any{"text": text, "duration": 120})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(trPath, trJSON, 0o644); err != nil {
		t.Fatal(err)
	}

	cfgPath := writeTestConfig(t)

	// Seed the background pool: a build aborts when the fallback chain
	// comes up empty.
	bg := filepath.Join(tmp, "backdrop.mp4")
	ffbg := exec.Command("ffmpeg",
		"-y",
		"-f", "lavfi",
		"-i", "color=c=blue:s=1080x1920:d=30",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		bg,
	)
	if b, err := ffbg.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg backdrop fixture failed: %v\n%s", err, string(b))
	}
	res := runCLI(t, repoRoot, []string{"fonds", "add", bg, "--theme", "motivation", "--config", cfgPath})
	if res.exitCode != 0 {
		t.Fatalf("fonds add failed (exit %d):\n%s", res.exitCode, res.output)
	}

	res = runCLI(t, repoRoot, []string{
		"build", src,
		"--config", cfgPath,
		"--video-id", "e2e",
		"--platform", "tiktok",
		"--transcript", trPath,
	})
	if res.exitCode != 0 {
		t.Fatalf("build failed (exit %d):\n%s", res.exitCode, res.output)
	}

	cfgDir := filepath.Dir(cfgPath)
	out := filepath.Join(cfgDir, "shorts", "e2e_tiktok.mp4")
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output missing: %v\noutput:\n%s", err, res.output)
	}

	d := outputDuration(t, out)
	if d < 69*time.Second || d > 91*time.Second {
		t.Fatalf("short duration %s outside platform band [70s, 90s]", d)
	}

	// A rebuild of the same pair must be refused.
	res = runCLI(t, repoRoot, []string{
		"build", src,
		"--config", cfgPath,
		"--video-id", "e2e",
		"--platform", "tiktok",
		"--transcript", trPath,
	})
	if res.exitCode == 0 {
		t.Fatalf("duplicate build succeeded:\n%s", res.output)
	}
	if !strings.Contains(res.output, "already built") {
		t.Fatalf("unexpected duplicate error:\n%s", res.output)
	}
}
