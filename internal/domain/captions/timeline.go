// Package captions composes the three-act caption timeline of a short
// (hook, content, call-to-action) and renders it to SRT or ASS.
package captions

import (
	"errors"
	"strings"
	"time"

	"github.com/mgaillard/shortforge/internal/types"
)

// Narration pacing assumed when no measured audio duration is available.
const wordsPerSecond = 2.5

const (
	defaultHookDuration = 5 * time.Second
	defaultCTAFloor     = 35 * time.Second
	defaultCTABudgetCap = 35 * time.Second
	defaultMaxLineChars = 100
)

// Options bounds one composed timeline.
type Options struct {
	// Total is the clip duration the cues must fit in. Authoritative when
	// taken from the probed narration audio; estimate with
	// EstimateDuration otherwise.
	Total time.Duration
	// PlatformMax caps the CTA block's end. Zero means Total is the cap.
	PlatformMax time.Duration

	HookText     string
	HookDuration time.Duration

	// CTAPrompts rotate through the trailing CTA block. Empty disables it.
	CTAPrompts []string
	// CTAFloor is the latest allowed CTA start. When it conflicts with
	// PlatformMax the end-of-video constraint wins and per-prompt duration
	// shrinks or grows accordingly.
	CTAFloor time.Duration
	// CTABudgetCap caps the CTA block length (before floor clamping).
	CTABudgetCap time.Duration

	// MaxLineChars splits longer sentences at the midpoint word boundary.
	MaxLineChars int
}

// EstimateDuration estimates how long text takes to narrate.
func EstimateDuration(text string) time.Duration {
	return types.Seconds(float64(len(strings.Fields(text))) / wordsPerSecond)
}

// Compose builds the cue sequence for one short. The result is strictly
// time-ordered and non-overlapping, every cue falls inside [0, Total], and
// the last content cue ends exactly where the first CTA cue starts.
func Compose(narration string, opts Options) ([]types.CaptionCue, error) {
	if opts.Total <= 0 {
		return nil, errors.New("captions: total duration must be positive")
	}
	if opts.HookDuration <= 0 {
		opts.HookDuration = defaultHookDuration
	}
	if opts.CTAFloor <= 0 {
		opts.CTAFloor = defaultCTAFloor
	}
	if opts.CTABudgetCap <= 0 {
		opts.CTABudgetCap = defaultCTABudgetCap
	}
	if opts.MaxLineChars <= 0 {
		opts.MaxLineChars = defaultMaxLineChars
	}

	hookEnd := opts.HookDuration
	if hookEnd > opts.Total {
		hookEnd = opts.Total
	}

	// End of the CTA block: never past the clip, never past the platform.
	endLimit := opts.Total
	if opts.PlatformMax > 0 && opts.PlatformMax < endLimit {
		endLimit = opts.PlatformMax
	}

	ctaStart := endLimit
	if len(opts.CTAPrompts) > 0 {
		budget := opts.Total / 2
		if budget > opts.CTABudgetCap {
			budget = opts.CTABudgetCap
		}
		ctaStart = endLimit - budget
		if ctaStart > opts.CTAFloor {
			ctaStart = opts.CTAFloor
		}
		if ctaStart < hookEnd {
			ctaStart = hookEnd
		}
	}

	var cues []types.CaptionCue
	if opts.HookText != "" && hookEnd > 0 {
		cues = append(cues, types.CaptionCue{Start: 0, End: hookEnd, Text: opts.HookText, Role: types.RoleHook})
	}

	cues = append(cues, contentCues(narration, hookEnd, ctaStart, opts.MaxLineChars)...)

	if len(opts.CTAPrompts) > 0 && ctaStart < endLimit {
		perPrompt := (endLimit - ctaStart) / time.Duration(len(opts.CTAPrompts))
		at := ctaStart
		for i, prompt := range opts.CTAPrompts {
			end := at + perPrompt
			if i == len(opts.CTAPrompts)-1 {
				end = endLimit
			}
			cues = append(cues, types.CaptionCue{Start: at, End: end, Text: prompt, Role: types.RoleCTA})
			at = end
		}
	}

	for i := range cues {
		cues[i].Index = i + 1
	}
	return cues, nil
}

// contentCues spreads the narration sentences evenly over [from, to],
// splitting over-long sentences at the midpoint word into two half-length
// cues.
func contentCues(narration string, from, to time.Duration, maxLineChars int) []types.CaptionCue {
	sentences := SplitSentences(narration)
	if len(sentences) == 0 || to <= from {
		return nil
	}

	per := (to - from) / time.Duration(len(sentences))
	var cues []types.CaptionCue
	at := from
	for i, sentence := range sentences {
		end := at + per
		if i == len(sentences)-1 {
			end = to
		}
		if len(sentence) > maxLineChars {
			words := strings.Fields(sentence)
			mid := len(words) / 2
			half := at + (end-at)/2
			cues = append(cues,
				types.CaptionCue{Start: at, End: half, Text: strings.Join(words[:mid], " "), Role: types.RoleContent},
				types.CaptionCue{Start: half, End: end, Text: strings.Join(words[mid:], " "), Role: types.RoleContent},
			)
		} else {
			cues = append(cues, types.CaptionCue{Start: at, End: end, Text: sentence, Role: types.RoleContent})
		}
		at = end
	}
	return cues
}

// SplitSentences breaks narration on terminal punctuation and drops
// fragments too short to caption.
func SplitSentences(text string) []string {
	var out []string
	var b strings.Builder
	flush := func() {
		s := strings.TrimSpace(b.String())
		b.Reset()
		if len(s) > 3 {
			out = append(out, s)
		}
	}
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}
