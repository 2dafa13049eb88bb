package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/mgaillard/shortforge/internal/types"
)

// command is one toolkit invocation, tagged with the pipeline stage it
// serves so failures report where in the assembly they happened.
type command struct {
	stage   string
	tool    string
	args    []string
	timeout time.Duration
}

type runner interface {
	run(ctx context.Context, c command) (stdout string, err error)
}

// execRunner invokes the real binaries. stderr is captured whole rather
// than streamed: assembly stages are short and the full transcript is what
// a failure report needs.
type execRunner struct {
	ffmpeg  string
	ffprobe string
	log     zerolog.Logger
}

func (r *execRunner) run(ctx context.Context, c command) (string, error) {
	bin := r.ffmpeg
	if c.tool == "ffprobe" {
		bin = r.ffprobe
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	r.log.Debug().Str("stage", c.stage).Str("tool", c.tool).Strs("args", c.args).Msg("running media tool")

	cmd := exec.CommandContext(ctx, bin, c.args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		return "", &types.ToolError{
			Stage:    c.stage,
			Tool:     c.tool,
			Stderr:   stderr.String(),
			TimedOut: errors.Is(ctx.Err(), context.DeadlineExceeded),
			Err:      err,
		}
	}
	return stdout.String(), nil
}
