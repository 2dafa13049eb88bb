package types

import "time"

// Transcript is the output of the external transcription collaborator.
// Segments, when present, are ordered by start time and never overlap.
type Transcript struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments,omitempty"`
	Duration float64             `json:"duration"`
}

type TranscriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// ViralMoment is a scored candidate sub-segment of a transcript. Start/End
// describe the candidate window before normalization and may violate the
// platform duration bounds.
type ViralMoment struct {
	Title         string
	Start         time.Duration
	End           time.Duration
	Text          string
	Score         float64
	Justification string
}

func (m ViralMoment) Duration() time.Duration { return m.End - m.Start }

type Effect string

const (
	EffectZoom           Effect = "zoom"
	EffectTextAnimations Effect = "text_animations"
	EffectTransitions    Effect = "transitions"
	EffectFilters        Effect = "filters"
)

// PlatformProfile holds the static constraints of one target platform.
// Profiles are loaded once at startup, validated, and looked up by key;
// they are never mutated afterwards.
type PlatformProfile struct {
	Key          string   `yaml:"key" validate:"required"`
	AspectRatio  string   `yaml:"aspect_ratio" validate:"required"`
	MinDuration  float64  `yaml:"min_duration" validate:"gt=0"`
	MaxDuration  float64  `yaml:"max_duration" validate:"gtefield=MinDuration"`
	CaptionStyle string   `yaml:"caption_style" validate:"required"`
	Effects      []Effect `yaml:"effects"`
}

func (p PlatformProfile) Min() time.Duration { return Seconds(p.MinDuration) }
func (p PlatformProfile) Max() time.Duration { return Seconds(p.MaxDuration) }

// BackgroundClip is one row of the persistent background footage pool
// ("fond" in the store schema). UsageCount only ever increases.
type BackgroundClip struct {
	ID         int64
	Filename   string
	Theme      string
	Source     string
	URL        string
	Duration   time.Duration
	FileSize   int64
	Downloaded time.Time
	UsageCount int
	LastUsed   *time.Time
}

type CueRole string

const (
	RoleHook    CueRole = "hook"
	RoleContent CueRole = "content"
	RoleCTA     CueRole = "cta"
)

// CaptionCue is one timed caption line. A composed sequence is strictly
// ordered and non-overlapping, and every cue falls inside [0, total].
type CaptionCue struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
	Role  CueRole
}

// ShortBuild is the write-once record of one produced short. There is at
// most one per (VideoID, Platform) pair.
type ShortBuild struct {
	ID            int64
	VideoID       string
	Platform      string
	OutputPath    string
	ThumbnailPath string
	Moment        ViralMoment
	CreatedAt     time.Time
}

// UsageAnalytics is one shorts_analytics ledger row. Engagement metrics are
// updated out-of-band; the pipeline only seeds them at zero.
type UsageAnalytics struct {
	VideoID     string
	Platform    string
	ShortPath   string
	Duration    float64
	FileSize    int64
	Views       int64
	Likes       int64
	Shares      int64
	Comments    int64
	Status      string
	CreatedAt   time.Time
	LastUpdated time.Time
}

// Seconds converts fractional seconds to a time.Duration.
func Seconds(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
