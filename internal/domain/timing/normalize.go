// Package timing normalizes a chosen viral moment to a platform-legal
// (start, duration) pair that always fits inside the source footage.
package timing

import (
	"time"

	"github.com/mgaillard/shortforge/internal/types"
)

// Result is a normalized clip window. When ExtendTo is non-zero the source
// must first be loop-extended to at least that length; Start and Duration
// are relative to the extended footage.
type Result struct {
	Start    time.Duration
	Duration time.Duration
	ExtendTo time.Duration
}

// Normalize computes the final clip window for a candidate moment.
//
// Ordered precedence: clamp the candidate duration into [min, max], shift
// the start down when the window overflows the source, and only when the
// source itself is shorter than the clamped duration request an extension
// by integer repetition and re-run the shift against the extended length.
// Extending before trimming guarantees the clip is never shorter than min,
// which a trim-first approach would violate for very short sources.
//
// Normalize is idempotent: applied to its own output (with the
// post-extension source duration) it returns the same window.
func Normalize(start, candidate, videoDuration, min, max time.Duration) (Result, error) {
	if min <= 0 || max < min {
		return Result{}, &types.ConstraintError{Reason: "invalid platform bounds", VideoDuration: videoDuration}
	}
	if videoDuration <= 0 {
		return Result{}, &types.ConstraintError{Reason: "source has no duration", VideoDuration: videoDuration}
	}
	if start < 0 {
		start = 0
	}

	duration := candidate
	if duration < min {
		duration = min
	}
	if duration > max {
		duration = max
	}

	var extendTo time.Duration
	effective := videoDuration
	if effective < duration {
		// Integer repetition of the whole source until it covers the
		// clamped duration, then one restart of the shift step below.
		n := duration / videoDuration
		if duration%videoDuration != 0 {
			n++
		}
		effective = videoDuration * n
		extendTo = effective
	}

	if start+duration > effective {
		start = effective - duration
		if start < 0 {
			start = 0
		}
	}
	// The shift can only leave an overflow when effective < duration, which
	// the extension above has already ruled out.
	if start+duration > effective {
		duration = effective - start
	}

	return Result{Start: start, Duration: duration, ExtendTo: extendTo}, nil
}
