package types

import (
	"errors"
	"fmt"
	"time"
)

// Build failures fall into four classes. Missing inputs and absent viral
// moments are normal, reportable outcomes: the batch loop skips the video
// and continues. Tool, constraint and persistence failures abort the build
// for that video only.
var (
	ErrMissingInput  = errors.New("missing required input")
	ErrNoViralMoment = errors.New("no viral moment found")
	ErrAlreadyBuilt  = errors.New("short already built for this video and platform")
)

// ToolError reports a media-toolkit invocation that exited non-zero or
// timed out. Stderr carries the toolkit's diagnostic output verbatim.
type ToolError struct {
	Stage    string
	Tool     string
	Stderr   string
	TimedOut bool
	Err      error
}

func (e *ToolError) Error() string {
	if e.TimedOut {
		return fmt.Sprintf("%s: %s timed out\n%s", e.Stage, e.Tool, e.Stderr)
	}
	return fmt.Sprintf("%s: %s: %v\n%s", e.Stage, e.Tool, e.Err, e.Stderr)
}

func (e *ToolError) Unwrap() error { return e.Err }

// ConstraintError reports that duration normalization cannot produce a
// platform-legal clip from the given source.
type ConstraintError struct {
	Reason        string
	VideoDuration time.Duration
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("duration constraint: %s (source %.1fs)", e.Reason, e.VideoDuration.Seconds())
}

// PersistenceError reports a store write that failed after the media build
// already succeeded: the artifact exists on disk but is unrecorded. Callers
// log this class distinctly so disk and store can be reconciled.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err) }
func (e *PersistenceError) Unwrap() error { return e.Err }
