// Package ffmpeg adapts the ffmpeg/ffprobe toolchain to the media-tool
// port. Every operation is one subprocess invocation with a per-stage
// deadline; timeouts and non-zero exits surface uniformly as
// *types.ToolError.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mgaillard/shortforge/internal/ports"
	"github.com/mgaillard/shortforge/internal/types"
)

const defaultStageTimeout = 5 * time.Minute

type Adapter struct {
	r            runner
	stageTimeout time.Duration
}

var _ ports.MediaTool = (*Adapter)(nil)

func New(ffmpegPath, ffprobePath string, stageTimeout time.Duration, log zerolog.Logger) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if stageTimeout <= 0 {
		stageTimeout = defaultStageTimeout
	}
	return &Adapter{
		r: &execRunner{
			ffmpeg:  ffmpegPath,
			ffprobe: ffprobePath,
			log:     log.With().Str("component", "ffmpeg").Logger(),
		},
		stageTimeout: stageTimeout,
	}
}

func (a *Adapter) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	out, err := a.r.run(ctx, command{
		stage: "probe",
		tool:  "ffprobe",
		args: []string{
			"-v", "error",
			"-show_entries", "format=duration",
			"-of", "default=noprint_wrappers=1:nokey=1",
			path,
		},
		timeout: a.stageTimeout,
	})
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(out)
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return types.Seconds(sec), nil
}

func (a *Adapter) Trim(ctx context.Context, in string, start, duration time.Duration, out string) error {
	_, err := a.r.run(ctx, command{
		stage: "trim",
		tool:  "ffmpeg",
		args: []string{
			"-y",
			"-ss", fmtSeconds(start),
			"-i", in,
			"-t", fmtSeconds(duration),
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-crf", "18",
			"-c:a", "aac",
			"-b:a", "192k",
			"-avoid_negative_ts", "make_zero",
			out,
		},
		timeout: a.stageTimeout,
	})
	return err
}

func (a *Adapter) ExtendLoop(ctx context.Context, in string, target time.Duration, out string) error {
	_, err := a.r.run(ctx, command{
		stage: "extend",
		tool:  "ffmpeg",
		args: []string{
			"-y",
			"-stream_loop", "-1",
			"-i", in,
			"-t", fmtSeconds(target),
			"-c", "copy",
			out,
		},
		timeout: a.stageTimeout,
	})
	return err
}

func (a *Adapter) Concat(ctx context.Context, inputs []string, limit time.Duration, out string) error {
	list, err := writeConcatList(inputs)
	if err != nil {
		return err
	}
	defer os.Remove(list)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", list,
	}
	if limit > 0 {
		args = append(args, "-t", fmtSeconds(limit))
	}
	args = append(args, "-c", "copy", out)

	_, err = a.r.run(ctx, command{stage: "concat", tool: "ffmpeg", args: args, timeout: a.stageTimeout})
	return err
}

func (a *Adapter) ConcatAudio(ctx context.Context, inputs []string, out string) error {
	list, err := writeConcatList(inputs)
	if err != nil {
		return err
	}
	defer os.Remove(list)

	_, err = a.r.run(ctx, command{
		stage: "concat_audio",
		tool:  "ffmpeg",
		args: []string{
			"-y",
			"-f", "concat",
			"-safe", "0",
			"-i", list,
			"-c:a", "aac",
			"-b:a", "192k",
			out,
		},
		timeout: a.stageTimeout,
	})
	return err
}

func (a *Adapter) Mux(ctx context.Context, video, audio, out string) error {
	_, err := a.r.run(ctx, command{
		stage: "mux",
		tool:  "ffmpeg",
		args: []string{
			"-y",
			"-i", video,
			"-i", audio,
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-c:v", "copy",
			"-c:a", "aac",
			"-b:a", "192k",
			"-shortest",
			out,
		},
		timeout: a.stageTimeout,
	})
	return err
}

func (a *Adapter) BurnCaptions(ctx context.Context, in, captions string, style ports.CaptionStyle, out string) error {
	w, h := style.Width, style.Height
	if w <= 0 || h <= 0 {
		w, h = 1080, 1920
	}
	vf := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,subtitles=%s",
		w, h, w, h, escapeFilterPath(captions))
	if style.FontSize > 0 && !strings.HasSuffix(captions, ".ass") {
		vf += fmt.Sprintf(":force_style='Fontsize=%d'", style.FontSize)
	}

	_, err := a.r.run(ctx, command{
		stage: "burn_captions",
		tool:  "ffmpeg",
		args: []string{
			"-y",
			"-i", in,
			"-vf", vf,
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-crf", "18",
			"-c:a", "copy",
			out,
		},
		timeout: a.stageTimeout,
	})
	return err
}

func (a *Adapter) ApplyEffects(ctx context.Context, in string, effects []types.Effect, out string) error {
	var filters []string
	for _, e := range effects {
		switch e {
		case types.EffectZoom:
			filters = append(filters,
				"zoompan=z='min(zoom+0.0015,1.2)':d=1:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)'")
		case types.EffectFilters:
			filters = append(filters, "eq=contrast=1.05:saturation=1.15")
		case types.EffectTransitions:
			filters = append(filters, "fade=t=in:st=0:d=0.5")
		case types.EffectTextAnimations:
			// Caption animation lives in the burned ASS styles, not here.
		}
	}
	if len(filters) == 0 {
		_, err := a.r.run(ctx, command{
			stage:   "effects",
			tool:    "ffmpeg",
			args:    []string{"-y", "-i", in, "-c", "copy", out},
			timeout: a.stageTimeout,
		})
		return err
	}

	_, err := a.r.run(ctx, command{
		stage: "effects",
		tool:  "ffmpeg",
		args: []string{
			"-y",
			"-i", in,
			"-vf", strings.Join(filters, ","),
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-crf", "18",
			"-c:a", "copy",
			out,
		},
		timeout: a.stageTimeout,
	})
	return err
}

func (a *Adapter) ExtractFrame(ctx context.Context, in string, at time.Duration, outJPEG string) error {
	_, err := a.r.run(ctx, command{
		stage: "thumbnail",
		tool:  "ffmpeg",
		args: []string{
			"-y",
			"-ss", fmtSeconds(at),
			"-i", in,
			"-vframes", "1",
			"-q:v", "2",
			outJPEG,
		},
		timeout: a.stageTimeout,
	})
	return err
}

// writeConcatList writes a concat-demuxer list file and returns its path.
func writeConcatList(inputs []string) (string, error) {
	f, err := os.CreateTemp("", "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("concat list: %w", err)
	}
	var b strings.Builder
	for _, in := range inputs {
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(in, "'", `'\''`))
	}
	if _, err := f.WriteString(b.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("concat list: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("concat list: %w", err)
	}
	return f.Name(), nil
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

// escapeFilterPath escapes a path for use inside an ffmpeg filter graph.
func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
