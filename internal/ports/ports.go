package ports

import (
	"context"
	"time"

	"github.com/mgaillard/shortforge/internal/types"
)

// MediaTool is the external media-processing toolkit. Every call is a
// blocking subprocess invocation with a caller-controlled deadline; a
// timeout surfaces the same way as a non-zero exit (*types.ToolError).
type MediaTool interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
	Trim(ctx context.Context, in string, start, duration time.Duration, out string) error
	// ExtendLoop repeats in until the output covers at least target.
	ExtendLoop(ctx context.Context, in string, target time.Duration, out string) error
	// Concat joins inputs in order, capped at limit (0 means no cap).
	Concat(ctx context.Context, inputs []string, limit time.Duration, out string) error
	ConcatAudio(ctx context.Context, inputs []string, out string) error
	// Mux maps the video stream of video and the audio stream of audio into
	// one container, stopping at the shorter of the two.
	Mux(ctx context.Context, video, audio, out string) error
	// BurnCaptions overlays the caption file and reframes to the vertical
	// canvas described by the style.
	BurnCaptions(ctx context.Context, in, captions string, style CaptionStyle, out string) error
	ApplyEffects(ctx context.Context, in string, effects []types.Effect, out string) error
	ExtractFrame(ctx context.Context, in string, at time.Duration, outJPEG string) error
}

// CaptionStyle carries the burn-in rendering parameters of one platform.
type CaptionStyle struct {
	FontSize int
	Width    int
	Height   int
}

// Transcriber is the speech-to-text collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (types.Transcript, error)
}

// SpeechSynth is the narration/CTA text-to-speech collaborator. The voice
// style is an explicit per-call parameter; implementations must not hold
// mutable engine-selection state.
type SpeechSynth interface {
	Synthesize(ctx context.Context, text, style string) (audioPath string, err error)
}

// FootageSource acquires new background clips for a theme. It may be slow
// and network-bound; the allocator only calls it on pool exhaustion.
type FootageSource interface {
	Acquire(ctx context.Context, theme string, count int) ([]types.BackgroundClip, error)
}

// Store is the single repository injected into every component. All
// mutations run inside one store transaction per logical update.
type Store interface {
	// AllocateClip picks the least-used clip for theme (ties broken by most
	// recent download), increments its usage counter, stamps last_used and
	// appends a fond_usage event, all in one transaction. Returns
	// types.ErrMissingInput when the theme pool is empty.
	AllocateClip(ctx context.Context, theme, videoID string) (types.BackgroundClip, error)
	AddClip(ctx context.Context, clip types.BackgroundClip) (int64, error)
	ClipCount(ctx context.Context, theme string) (int, error)
	ClipStats(ctx context.Context) ([]ThemeStats, error)

	HasBuild(ctx context.Context, videoID, platform string) (bool, error)
	// RecordBuild writes the shorts row and the zeroed analytics seed row in
	// one transaction. A duplicate (videoID, platform) pair fails with
	// types.ErrAlreadyBuilt.
	RecordBuild(ctx context.Context, build types.ShortBuild, duration time.Duration, fileSize int64) (int64, error)
	DeleteBuild(ctx context.Context, videoID, platform string) error
	ListBuilds(ctx context.Context, platform string) ([]types.ShortBuild, error)

	UpdateMetrics(ctx context.Context, shortPath string, views, likes, shares, comments int64) error
	PlatformStats(ctx context.Context, platform string, days int) ([]PlatformStats, error)
	TopShorts(ctx context.Context, limit int) ([]RankedShort, error)
}

// ThemeStats summarizes the background pool for one theme.
type ThemeStats struct {
	Theme    string
	Count    int
	AvgUsage float64
}

// PlatformStats aggregates the analytics ledger for one platform.
type PlatformStats struct {
	Platform      string
	TotalShorts   int
	AvgDuration   float64
	AvgFileSize   float64
	TotalViews    int64
	TotalLikes    int64
	TotalShares   int64
	TotalComments int64
}

// RankedShort is one analytics row ranked by engagement score
// (views + 2*likes + 5*shares + 3*comments).
type RankedShort struct {
	VideoID   string
	Platform  string
	ShortPath string
	Duration  float64
	Views     int64
	Likes     int64
	Shares    int64
	Comments  int64
	Score     int64
}
