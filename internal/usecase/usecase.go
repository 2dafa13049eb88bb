// Package usecase orchestrates one short build end to end: moment
// detection, window normalization, background allocation, caption
// composition, media assembly and recording.
package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mgaillard/shortforge/internal/config"
	"github.com/mgaillard/shortforge/internal/domain/captions"
	"github.com/mgaillard/shortforge/internal/domain/timing"
	"github.com/mgaillard/shortforge/internal/domain/viral"
	"github.com/mgaillard/shortforge/internal/fonds"
	"github.com/mgaillard/shortforge/internal/pipeline"
	"github.com/mgaillard/shortforge/internal/ports"
	"github.com/mgaillard/shortforge/internal/types"
)

type Deps struct {
	Media     ports.MediaTool
	Store     ports.Store
	Fonds     *fonds.Allocator
	Assembler *pipeline.Assembler
	// ASR and TTS are optional collaborators. Without ASR a build needs a
	// pre-made transcript; without TTS the CTA block is captions only.
	ASR ports.Transcriber
	TTS ports.SpeechSynth

	Cfg *config.Config
	Log zerolog.Logger
}

type Usecase struct {
	d   Deps
	log zerolog.Logger
}

func New(d Deps) Usecase {
	return Usecase{d: d, log: d.Log.With().Str("component", "usecase").Logger()}
}

// BuildRequest describes one video/platform pair to build.
type BuildRequest struct {
	VideoID  string
	Platform string

	SourcePath    string
	NarrationPath string
	// TranscriptPath points at a JSON transcript. Transcript, when set,
	// takes precedence; with neither, NarrationPath is transcribed.
	TranscriptPath string
	Transcript     *types.Transcript

	Theme string
	// CTAVoice selects the synthesis style for the CTA audio.
	CTAVoice string
	// Force deletes a previous build record so the pair rebuilds.
	Force bool
}

type BuildResult struct {
	ShortID       int64
	OutputPath    string
	ThumbnailPath string
	Moment        types.ViralMoment
	Duration      time.Duration
	FileSize      int64
}

// BuildShort runs the whole pipeline for one request.
func (u Usecase) BuildShort(ctx context.Context, req BuildRequest) (BuildResult, error) {
	if req.VideoID == "" || req.SourcePath == "" {
		return BuildResult{}, fmt.Errorf("%w: video id and source path", types.ErrMissingInput)
	}
	profile, ok := u.d.Cfg.Profile(req.Platform)
	if !ok {
		return BuildResult{}, fmt.Errorf("%w: unknown platform %q", types.ErrMissingInput, req.Platform)
	}
	log := u.log.With().Str("video_id", req.VideoID).Str("platform", req.Platform).Logger()

	if req.Force {
		if err := u.d.Store.DeleteBuild(ctx, req.VideoID, req.Platform); err != nil {
			return BuildResult{}, err
		}
	} else {
		built, err := u.d.Store.HasBuild(ctx, req.VideoID, req.Platform)
		if err != nil {
			return BuildResult{}, err
		}
		if built {
			return BuildResult{}, types.ErrAlreadyBuilt
		}
	}

	tr, err := u.transcript(ctx, req)
	if err != nil {
		return BuildResult{}, err
	}

	moments := viral.FindMoments(tr, viral.Config{
		MinClip:  profile.Min(),
		MaxClip:  profile.Max(),
		TopK:     u.d.Cfg.Viral.TopK,
		MinScore: u.d.Cfg.Viral.MinScore,
		Keywords: u.d.Cfg.Viral.Keywords,
	})
	if len(moments) == 0 {
		return BuildResult{}, types.ErrNoViralMoment
	}
	best := moments[0]
	log.Info().Float64("score", best.Score).Str("title", best.Title).Msg("viral moment selected")

	videoDur, err := u.d.Media.ProbeDuration(ctx, req.SourcePath)
	if err != nil {
		return BuildResult{}, err
	}
	window, err := timing.Normalize(best.Start, best.Duration(), videoDur, profile.Min(), profile.Max())
	if err != nil {
		return BuildResult{}, err
	}
	log.Debug().Dur("start", window.Start).Dur("duration", window.Duration).
		Dur("extend_to", window.ExtendTo).Msg("window normalized")

	backgrounds, err := u.backgrounds(ctx, req, window.Duration)
	if err != nil {
		return BuildResult{}, err
	}

	ctaPrompts := u.d.Cfg.Captions.CTAPrompts[req.Platform]
	ctaAudio := u.ctaAudio(ctx, req, ctaPrompts, log)
	if ctaAudio != "" {
		defer os.Remove(ctaAudio)
	}

	cues, err := captions.Compose(tr.Text, captions.Options{
		Total:        window.Duration,
		PlatformMax:  profile.Max(),
		HookText:     u.d.Cfg.Captions.HookTexts[req.Platform],
		HookDuration: types.Seconds(u.d.Cfg.Captions.HookDuration),
		CTAPrompts:   ctaPrompts,
		MaxLineChars: u.d.Cfg.Captions.MaxLineChars,
	})
	if err != nil {
		return BuildResult{}, err
	}
	capsPath, err := writeCaptions(cues, u.d.Cfg.Captions.FontSize)
	if err != nil {
		return BuildResult{}, err
	}
	defer os.Remove(capsPath)

	res, err := u.d.Assembler.Assemble(ctx, pipeline.BuildSpec{
		VideoID:       req.VideoID,
		Platform:      req.Platform,
		Profile:       profile,
		SourcePath:    req.SourcePath,
		ExtendTo:      window.ExtendTo,
		Start:         window.Start,
		Duration:      window.Duration,
		Backgrounds:   backgrounds,
		NarrationPath: req.NarrationPath,
		CTAAudioPath:  ctaAudio,
		CaptionsPath:  capsPath,
		CaptionStyle: ports.CaptionStyle{
			FontSize: u.d.Cfg.Captions.FontSize,
			Width:    1080,
			Height:   1920,
		},
	})
	if err != nil {
		return BuildResult{}, err
	}

	shortID, err := u.d.Store.RecordBuild(ctx, types.ShortBuild{
		VideoID:       req.VideoID,
		Platform:      req.Platform,
		OutputPath:    res.OutputPath,
		ThumbnailPath: res.ThumbnailPath,
		Moment:        best,
	}, res.Duration, res.FileSize)
	if err != nil {
		return BuildResult{}, err
	}

	return BuildResult{
		ShortID:       shortID,
		OutputPath:    res.OutputPath,
		ThumbnailPath: res.ThumbnailPath,
		Moment:        best,
		Duration:      res.Duration,
		FileSize:      res.FileSize,
	}, nil
}

// transcript resolves the transcript for a request: inline, from a JSON
// file, or by transcribing the narration audio.
func (u Usecase) transcript(ctx context.Context, req BuildRequest) (types.Transcript, error) {
	if req.Transcript != nil {
		return *req.Transcript, nil
	}
	if req.TranscriptPath != "" {
		data, err := os.ReadFile(req.TranscriptPath)
		if err != nil {
			return types.Transcript{}, fmt.Errorf("%w: transcript %s", types.ErrMissingInput, req.TranscriptPath)
		}
		var tr types.Transcript
		if err := json.Unmarshal(data, &tr); err != nil {
			return types.Transcript{}, fmt.Errorf("parse transcript %s: %w", req.TranscriptPath, err)
		}
		return tr, nil
	}
	if u.d.ASR != nil && req.NarrationPath != "" {
		return u.d.ASR.Transcribe(ctx, req.NarrationPath)
	}
	return types.Transcript{}, fmt.Errorf("%w: transcript", types.ErrMissingInput)
}

// backgrounds allocates the visual base for the short. An exhausted
// fallback chain aborts the build: a short is never assembled without
// visuals when a pool is wired.
func (u Usecase) backgrounds(ctx context.Context, req BuildRequest, needed time.Duration) ([]string, error) {
	if u.d.Fonds == nil {
		return nil, nil
	}
	theme := req.Theme
	if theme == "" {
		theme = u.d.Cfg.Fonds.DefaultTheme
	}
	clips, err := u.d.Fonds.AllocateSequence(ctx, theme, req.VideoID, needed)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(clips))
	for _, c := range clips {
		paths = append(paths, filepath.Join(u.d.Cfg.Fonds.Dir, c.Filename))
	}
	return paths, nil
}

// ctaAudio synthesizes the spoken CTA block. Best effort: without a synth
// or on failure the CTA stays captions-only.
func (u Usecase) ctaAudio(ctx context.Context, req BuildRequest, prompts []string, log zerolog.Logger) string {
	if u.d.TTS == nil || len(prompts) == 0 {
		return ""
	}
	path, err := u.d.TTS.Synthesize(ctx, strings.Join(prompts, " "), req.CTAVoice)
	if err != nil {
		log.Warn().Err(err).Msg("CTA synthesis failed, captions only")
		return ""
	}
	return path
}

func writeCaptions(cues []types.CaptionCue, fontSize int) (string, error) {
	f, err := os.CreateTemp("", "captions-*.ass")
	if err != nil {
		return "", fmt.Errorf("write captions: %w", err)
	}
	style := captions.DefaultStyle()
	if fontSize > 0 {
		style.FontSize = fontSize
	}
	body := captions.RenderASS(cues, style)
	if _, err := f.WriteString(body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write captions: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write captions: %w", err)
	}
	return f.Name(), nil
}
