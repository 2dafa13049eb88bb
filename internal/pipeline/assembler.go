// Package pipeline assembles one short from its prepared ingredients:
// source footage, allocated background clips, narration audio and the
// caption file. Stages run in a fixed order, each producing a temp
// artifact consumed by the next; only the finalize stage writes outside
// the scratch directory.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/mgaillard/shortforge/internal/ports"
	"github.com/mgaillard/shortforge/internal/types"
)

type Config struct {
	Tool    ports.MediaTool
	WorkDir string
	OutDir  string
	// ThumbnailAt is the timestamp of the best-effort thumbnail frame.
	ThumbnailAt time.Duration
	Log         zerolog.Logger
}

func (c Config) Validate() error {
	if c.Tool == nil {
		return errors.New("media tool is required")
	}
	if c.OutDir == "" {
		return errors.New("output directory is required")
	}
	return nil
}

// BuildSpec is the fully resolved input of one assembly: the viral moment
// has been chosen and normalized, backgrounds allocated, narration and
// captions rendered.
type BuildSpec struct {
	VideoID  string
	Platform string
	Profile  types.PlatformProfile

	SourcePath string
	// ExtendTo, when non-zero, loop-extends the source before trimming.
	ExtendTo time.Duration
	Start    time.Duration
	Duration time.Duration

	// Backgrounds, when present, form the visual base: concatenated and
	// capped at Duration, with the narration muxed on top. Empty keeps the
	// trimmed source as the visual.
	Backgrounds []string

	NarrationPath string
	CTAAudioPath  string
	CaptionsPath  string
	CaptionStyle  ports.CaptionStyle
}

type Result struct {
	OutputPath    string
	ThumbnailPath string
	Duration      time.Duration
	FileSize      int64
}

type Assembler struct {
	cfg Config
	log zerolog.Logger
}

func New(cfg Config) (*Assembler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ThumbnailAt <= 0 {
		cfg.ThumbnailAt = 5 * time.Second
	}
	return &Assembler{cfg: cfg, log: cfg.Log.With().Str("component", "pipeline").Logger()}, nil
}

// Assemble runs the stage chain for one short. Temp artifacts live in a
// per-build scratch directory that is removed on every exit path; the
// final artifact and its thumbnail are the only survivors.
func (a *Assembler) Assemble(ctx context.Context, spec BuildSpec) (Result, error) {
	if spec.SourcePath == "" {
		return Result{}, fmt.Errorf("%w: source video path", types.ErrMissingInput)
	}
	if spec.Duration <= 0 {
		return Result{}, fmt.Errorf("%w: clip duration", types.ErrMissingInput)
	}

	scope, err := newScope(a.cfg.WorkDir, a.log)
	if err != nil {
		return Result{}, err
	}
	defer scope.cleanup()

	log := a.log.With().Str("video_id", spec.VideoID).Str("platform", spec.Platform).Logger()
	started := time.Now()

	current := spec.SourcePath

	if spec.ExtendTo > 0 {
		out := scope.path("extended.mp4")
		log.Debug().Dur("target", spec.ExtendTo).Msg("extending source")
		if err := a.cfg.Tool.ExtendLoop(ctx, current, spec.ExtendTo, out); err != nil {
			return Result{}, err
		}
		current = out
	}

	out := scope.path("trimmed.mp4")
	log.Debug().Dur("start", spec.Start).Dur("duration", spec.Duration).Msg("trimming moment")
	if err := a.cfg.Tool.Trim(ctx, current, spec.Start, spec.Duration, out); err != nil {
		return Result{}, err
	}
	current = out
	trimmed := current

	if len(spec.Backgrounds) > 0 {
		out := scope.path("fonds.mp4")
		log.Debug().Int("backgrounds", len(spec.Backgrounds)).Msg("building background sequence")
		if err := a.cfg.Tool.Concat(ctx, spec.Backgrounds, spec.Duration, out); err != nil {
			return Result{}, err
		}
		current = out
	}

	audio := spec.NarrationPath
	if audio != "" && spec.CTAAudioPath != "" {
		joined := scope.path("narration_cta.m4a")
		log.Debug().Msg("appending CTA audio")
		if err := a.cfg.Tool.ConcatAudio(ctx, []string{audio, spec.CTAAudioPath}, joined); err != nil {
			return Result{}, err
		}
		audio = joined
	}
	if audio == "" && current != trimmed {
		// The fond sequence is silent; keep the moment's own audio.
		audio = trimmed
	}
	if audio != "" {
		out := scope.path("muxed.mp4")
		log.Debug().Msg("muxing narration")
		if err := a.cfg.Tool.Mux(ctx, current, audio, out); err != nil {
			return Result{}, err
		}
		current = out
	}

	if spec.CaptionsPath != "" {
		out := scope.path("captioned.mp4")
		log.Debug().Str("captions", spec.CaptionsPath).Msg("burning captions")
		if err := a.cfg.Tool.BurnCaptions(ctx, current, spec.CaptionsPath, spec.CaptionStyle, out); err != nil {
			return Result{}, err
		}
		current = out
	}

	if len(spec.Profile.Effects) > 0 {
		out := scope.path("effects.mp4")
		log.Debug().Int("effects", len(spec.Profile.Effects)).Msg("applying effects")
		if err := a.cfg.Tool.ApplyEffects(ctx, current, spec.Profile.Effects, out); err != nil {
			return Result{}, err
		}
		current = out
	}

	res, err := a.finalize(ctx, spec, current)
	if err != nil {
		return Result{}, err
	}
	log.Info().Str("output", res.OutputPath).Dur("took", time.Since(started)).Msg("short assembled")
	return res, nil
}

// finalize moves the assembled artifact into the output directory and
// extracts a thumbnail. The thumbnail is best effort: a failure is logged
// and the build still succeeds.
func (a *Assembler) finalize(ctx context.Context, spec BuildSpec, artifact string) (Result, error) {
	if err := os.MkdirAll(a.cfg.OutDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("create output dir: %w", err)
	}
	base := fmt.Sprintf("%s_%s", spec.VideoID, spec.Platform)
	outPath := filepath.Join(a.cfg.OutDir, base+".mp4")
	if err := moveFile(artifact, outPath); err != nil {
		return Result{}, fmt.Errorf("finalize %s: %w", outPath, err)
	}

	res := Result{OutputPath: outPath, Duration: spec.Duration}
	if info, err := os.Stat(outPath); err == nil {
		res.FileSize = info.Size()
	}
	if d, err := a.cfg.Tool.ProbeDuration(ctx, outPath); err == nil {
		res.Duration = d
	}

	thumbAt := a.cfg.ThumbnailAt
	if thumbAt >= res.Duration {
		thumbAt = 0
	}
	thumbPath := filepath.Join(a.cfg.OutDir, base+".jpg")
	if err := a.cfg.Tool.ExtractFrame(ctx, outPath, thumbAt, thumbPath); err != nil {
		a.log.Warn().Err(err).Str("output", outPath).Msg("thumbnail extraction failed")
	} else {
		res.ThumbnailPath = thumbPath
	}
	return res, nil
}

// moveFile renames, falling back to copy+remove across filesystems.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
