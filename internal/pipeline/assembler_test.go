package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mgaillard/shortforge/internal/ports"
	"github.com/mgaillard/shortforge/internal/types"
)

// fakeTool records the stage order and materializes each output file so
// finalize has something to move.
type fakeTool struct {
	calls     []string
	failStage string
	duration  time.Duration
	thumbErr  error

	concatIn []string
	muxVideo string
	muxAudio string
}

func (f *fakeTool) step(stage, out string) error {
	f.calls = append(f.calls, stage)
	if stage == f.failStage {
		return &types.ToolError{Stage: stage, Tool: "ffmpeg", Stderr: "synthetic failure", Err: errors.New("exit status 1")}
	}
	if out != "" {
		return os.WriteFile(out, []byte(stage), 0o644)
	}
	return nil
}

func (f *fakeTool) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	f.calls = append(f.calls, "probe")
	return f.duration, nil
}
func (f *fakeTool) Trim(ctx context.Context, in string, start, duration time.Duration, out string) error {
	return f.step("trim", out)
}
func (f *fakeTool) ExtendLoop(ctx context.Context, in string, target time.Duration, out string) error {
	return f.step("extend", out)
}
func (f *fakeTool) Concat(ctx context.Context, inputs []string, limit time.Duration, out string) error {
	f.concatIn = append([]string(nil), inputs...)
	return f.step("concat", out)
}
func (f *fakeTool) ConcatAudio(ctx context.Context, inputs []string, out string) error {
	return f.step("concat_audio", out)
}
func (f *fakeTool) Mux(ctx context.Context, video, audio, out string) error {
	f.muxVideo, f.muxAudio = video, audio
	return f.step("mux", out)
}
func (f *fakeTool) BurnCaptions(ctx context.Context, in, captions string, style ports.CaptionStyle, out string) error {
	return f.step("burn_captions", out)
}
func (f *fakeTool) ApplyEffects(ctx context.Context, in string, effects []types.Effect, out string) error {
	return f.step("effects", out)
}
func (f *fakeTool) ExtractFrame(ctx context.Context, in string, at time.Duration, outJPEG string) error {
	f.calls = append(f.calls, "thumbnail")
	if f.thumbErr != nil {
		return f.thumbErr
	}
	return os.WriteFile(outJPEG, []byte("jpg"), 0o644)
}

func newTestAssembler(t *testing.T, tool ports.MediaTool) (*Assembler, string, string) {
	t.Helper()
	work := t.TempDir()
	out := t.TempDir()
	a, err := New(Config{Tool: tool, WorkDir: work, OutDir: out, Log: zerolog.Nop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return a, work, out
}

func writeSource(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "source.mp4")
	if err := os.WriteFile(p, []byte("src"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func fullSpec(t *testing.T) BuildSpec {
	return BuildSpec{
		VideoID:       "vid1",
		Platform:      "tiktok",
		Profile:       types.PlatformProfile{Key: "tiktok", Effects: []types.Effect{types.EffectZoom}},
		SourcePath:    writeSource(t),
		ExtendTo:      90 * time.Second,
		Start:         0,
		Duration:      80 * time.Second,
		Backgrounds:   []string{"bg1.mp4", "bg2.mp4"},
		NarrationPath: "narration.m4a",
		CTAAudioPath:  "cta.m4a",
		CaptionsPath:  "caps.ass",
	}
}

func TestAssembleStageOrder(t *testing.T) {
	tool := &fakeTool{duration: 80 * time.Second}
	a, _, out := newTestAssembler(t, tool)

	res, err := a.Assemble(context.Background(), fullSpec(t))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	want := []string{"extend", "trim", "concat", "concat_audio", "mux", "burn_captions", "effects", "probe", "thumbnail"}
	if strings.Join(tool.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("stages = %v, want %v", tool.calls, want)
	}
	// The background sequence is the visual base, not an appendix behind
	// the already-full trimmed moment.
	if strings.Join(tool.concatIn, ",") != "bg1.mp4,bg2.mp4" {
		t.Fatalf("concat inputs = %v, want the background clips only", tool.concatIn)
	}
	if filepath.Base(tool.muxVideo) != "fonds.mp4" {
		t.Fatalf("mux video = %s, want the background sequence", tool.muxVideo)
	}
	if filepath.Base(tool.muxAudio) != "narration_cta.m4a" {
		t.Fatalf("mux audio = %s, want the joined narration", tool.muxAudio)
	}
	if res.OutputPath != filepath.Join(out, "vid1_tiktok.mp4") {
		t.Fatalf("output = %s", res.OutputPath)
	}
	if _, err := os.Stat(res.OutputPath); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if res.ThumbnailPath == "" {
		t.Fatal("thumbnail path empty")
	}
	if res.Duration != 80*time.Second {
		t.Fatalf("duration = %v", res.Duration)
	}
	if res.FileSize == 0 {
		t.Fatal("file size not recorded")
	}
}

func TestAssembleMinimalChain(t *testing.T) {
	tool := &fakeTool{duration: 75 * time.Second}
	a, _, _ := newTestAssembler(t, tool)

	spec := BuildSpec{
		VideoID:    "vid2",
		Platform:   "youtube_shorts",
		SourcePath: writeSource(t),
		Start:      10 * time.Second,
		Duration:   75 * time.Second,
	}
	if _, err := a.Assemble(context.Background(), spec); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := []string{"trim", "probe", "thumbnail"}
	if strings.Join(tool.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("stages = %v, want %v", tool.calls, want)
	}
}

func TestAssembleBackgroundsCarryMomentAudio(t *testing.T) {
	tool := &fakeTool{duration: 80 * time.Second}
	a, _, _ := newTestAssembler(t, tool)

	spec := fullSpec(t)
	spec.NarrationPath = ""
	spec.CTAAudioPath = ""
	if _, err := a.Assemble(context.Background(), spec); err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	// Without a narration file the mux still runs, taking the audio of the
	// trimmed moment so the fond sequence is not silent.
	want := []string{"extend", "trim", "concat", "mux", "burn_captions", "effects", "probe", "thumbnail"}
	if strings.Join(tool.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("stages = %v, want %v", tool.calls, want)
	}
	if filepath.Base(tool.muxAudio) != "trimmed.mp4" {
		t.Fatalf("mux audio = %s, want the trimmed moment", tool.muxAudio)
	}
}

func TestAssembleStageFailureCleansScratch(t *testing.T) {
	tool := &fakeTool{failStage: "concat"}
	a, work, _ := newTestAssembler(t, tool)

	_, err := a.Assemble(context.Background(), fullSpec(t))
	var te *types.ToolError
	if !errors.As(err, &te) || te.Stage != "concat" {
		t.Fatalf("err = %v, want concat ToolError", err)
	}

	entries, readErr := os.ReadDir(work)
	if readErr != nil {
		t.Fatalf("read work dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch not cleaned: %v", entries)
	}
}

func TestAssembleScratchCleanedOnSuccess(t *testing.T) {
	tool := &fakeTool{duration: 80 * time.Second}
	a, work, _ := newTestAssembler(t, tool)
	if _, err := a.Assemble(context.Background(), fullSpec(t)); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	entries, err := os.ReadDir(work)
	if err != nil {
		t.Fatalf("read work dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("scratch not cleaned: %v", entries)
	}
}

func TestAssembleMissingSource(t *testing.T) {
	a, _, _ := newTestAssembler(t, &fakeTool{})
	_, err := a.Assemble(context.Background(), BuildSpec{VideoID: "v", Platform: "tiktok", Duration: time.Minute})
	if !errors.Is(err, types.ErrMissingInput) {
		t.Fatalf("err = %v, want ErrMissingInput", err)
	}
}

func TestAssembleThumbnailFailureIsBestEffort(t *testing.T) {
	tool := &fakeTool{duration: 80 * time.Second, thumbErr: errors.New("no frame")}
	a, _, _ := newTestAssembler(t, tool)

	res, err := a.Assemble(context.Background(), fullSpec(t))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.ThumbnailPath != "" {
		t.Fatalf("thumbnail path = %q, want empty", res.ThumbnailPath)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{OutDir: "out"}).Validate(); err == nil {
		t.Fatal("nil tool accepted")
	}
	if err := (Config{Tool: &fakeTool{}}).Validate(); err == nil {
		t.Fatal("empty out dir accepted")
	}
}
