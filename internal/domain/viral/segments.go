package viral

import (
	"sort"
	"strings"
	"time"

	"github.com/mgaillard/shortforge/internal/types"
)

// Narration pacing assumed when the transcript carries no timestamps.
const wordsPerSecond = 2.5

// Config bounds candidate windows and ranking.
type Config struct {
	MinClip  time.Duration
	MaxClip  time.Duration
	TopK     int                // candidates surfaced to the caller; default 3
	MinScore float64            // candidates below this never surface
	Keywords map[string]float64 // nil uses DefaultKeywords
}

const defaultTopK = 3

// FindMoments splits the transcript into candidate windows bounded by
// [MinClip, MaxClip], scores each and returns the top candidates ranked by
// score, ties broken by earliest start.
//
// An empty transcript yields an empty slice, never an error: "no viral
// moment" is a normal, reportable outcome for the batch loop.
func FindMoments(tr types.Transcript, cfg Config) []types.ViralMoment {
	if cfg.MinClip <= 0 {
		cfg.MinClip = time.Second
	}
	if cfg.MaxClip <= 0 || cfg.MaxClip < cfg.MinClip {
		return nil
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}

	scorer := NewScorer(cfg.Keywords)

	var cands []types.ViralMoment
	if len(tr.Segments) > 0 {
		cands = fromSegments(tr.Segments, scorer, cfg)
	} else {
		cands = fromFlatText(tr.Text, scorer, cfg)
	}

	kept := cands[:0]
	for _, c := range cands {
		if c.Score >= cfg.MinScore {
			kept = append(kept, c)
		}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].Start < kept[j].Start
	})
	if len(kept) > cfg.TopK {
		kept = kept[:cfg.TopK]
	}
	return kept
}

// fromSegments grows windows of contiguous timestamped segments until they
// leave the duration band.
func fromSegments(segs []types.TranscriptSegment, scorer *Scorer, cfg Config) []types.ViralMoment {
	var out []types.ViralMoment
	for i := 0; i < len(segs); i++ {
		start := types.Seconds(segs[i].Start)
		var parts []string
		for j := i; j < len(segs); j++ {
			end := types.Seconds(segs[j].End)
			win := end - start
			if win > cfg.MaxClip {
				break
			}
			if text := strings.TrimSpace(segs[j].Text); text != "" {
				parts = append(parts, text)
			}
			if win < cfg.MinClip {
				continue
			}
			text := strings.Join(parts, " ")
			if text == "" {
				continue
			}
			out = append(out, makeMoment(text, start, end, scorer))
		}
	}
	return out
}

// fromFlatText chunks untimed narration by estimated speaking pace and lays
// the chunks on a synthetic timeline at the same pace.
func fromFlatText(text string, scorer *Scorer, cfg Config) []types.ViralMoment {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	maxWords := int(cfg.MaxClip.Seconds() * wordsPerSecond)
	if maxWords < 1 {
		maxWords = 1
	}

	var out []types.ViralMoment
	cursor := time.Duration(0)
	for i := 0; i < len(words); i += maxWords {
		j := i + maxWords
		if j > len(words) {
			j = len(words)
		}
		chunk := strings.Join(words[i:j], " ")
		spoken := types.Seconds(float64(j-i) / wordsPerSecond)

		win := spoken
		if win < cfg.MinClip {
			win = cfg.MinClip
		}
		if win > cfg.MaxClip {
			win = cfg.MaxClip
		}
		out = append(out, makeMoment(chunk, cursor, cursor+win, scorer))
		cursor += spoken
	}
	return out
}

func makeMoment(text string, start, end time.Duration, scorer *Scorer) types.ViralMoment {
	score := scorer.Score(text)
	return types.ViralMoment{
		Title:         makeTitle(text),
		Start:         start,
		End:           end,
		Text:          text,
		Score:         score,
		Justification: justification(score),
	}
}

func makeTitle(text string) string {
	words := strings.Fields(text)
	if len(words) > 5 {
		return strings.Join(words[:5], " ") + "..."
	}
	return strings.Join(words, " ")
}

func justification(score float64) string {
	switch {
	case score > 0.8:
		return "strong keywords and structure, high engagement potential"
	case score > 0.6:
		return "good engagement potential"
	case score > 0.4:
		return "moderate viral potential"
	default:
		return "limited viral potential"
	}
}
