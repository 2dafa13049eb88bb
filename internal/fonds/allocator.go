// Package fonds manages the background footage pool: rotation of stored
// clips, on-demand acquisition when a theme runs dry, and the fallback
// chain that keeps a build from failing on a missing theme.
package fonds

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mgaillard/shortforge/internal/ports"
	"github.com/mgaillard/shortforge/internal/types"
)

// fallbackTheme is the theme of last resort when the requested theme has
// no clips and none can be acquired.
const fallbackTheme = "motivation"

// maxSequenceClips bounds one short's background sequence.
const maxSequenceClips = 8

type Allocator struct {
	store  ports.Store
	source ports.FootageSource
	log    zerolog.Logger
}

// New builds an Allocator. source may be nil, in which case exhausted
// themes go straight to the fallback.
func New(store ports.Store, source ports.FootageSource, log zerolog.Logger) *Allocator {
	return &Allocator{
		store:  store,
		source: source,
		log:    log.With().Str("component", "fonds").Logger(),
	}
}

// Allocate returns one background clip for theme. On an empty pool it
// first tries to acquire fresh footage for the theme, then falls back to
// the fallback theme, and only then reports types.ErrMissingInput.
func (a *Allocator) Allocate(ctx context.Context, theme, videoID string) (types.BackgroundClip, error) {
	clip, err := a.store.AllocateClip(ctx, theme, videoID)
	if err == nil {
		return clip, nil
	}
	if !errors.Is(err, types.ErrMissingInput) {
		return types.BackgroundClip{}, err
	}

	if a.source != nil {
		if acquireErr := a.acquire(ctx, theme); acquireErr != nil {
			a.log.Warn().Err(acquireErr).Str("theme", theme).Msg("footage acquisition failed")
		} else if clip, err = a.store.AllocateClip(ctx, theme, videoID); err == nil {
			return clip, nil
		}
	}

	if theme != fallbackTheme {
		a.log.Warn().Str("theme", theme).Str("fallback", fallbackTheme).Msg("theme pool empty, falling back")
		return a.Allocate(ctx, fallbackTheme, videoID)
	}
	return types.BackgroundClip{}, err
}

// AllocateSequence allocates clips until their combined footage covers
// needed. Clips may repeat when the pool is small; the assembly stage caps
// the concatenated result at the target duration anyway.
func (a *Allocator) AllocateSequence(ctx context.Context, theme, videoID string, needed time.Duration) ([]types.BackgroundClip, error) {
	var (
		clips   []types.BackgroundClip
		covered time.Duration
	)
	for covered < needed && len(clips) < maxSequenceClips {
		clip, err := a.Allocate(ctx, theme, videoID)
		if err != nil {
			if len(clips) > 0 {
				// Partial coverage still beats failing the whole build.
				a.log.Warn().Err(err).Str("theme", theme).Msg("pool exhausted mid-sequence")
				return clips, nil
			}
			return nil, err
		}
		clips = append(clips, clip)
		if clip.Duration <= 0 {
			// Unknown length: trust the concat cap instead of looping.
			break
		}
		covered += clip.Duration
	}
	a.log.Debug().Str("theme", theme).Int("clips", len(clips)).
		Dur("covered", covered).Dur("needed", needed).Msg("background sequence allocated")
	return clips, nil
}

// acquire fetches fresh footage for theme and registers it in the pool.
func (a *Allocator) acquire(ctx context.Context, theme string) error {
	fetched, err := a.source.Acquire(ctx, theme, 3)
	if err != nil {
		return err
	}
	if len(fetched) == 0 {
		return errors.New("source returned no footage")
	}
	for _, clip := range fetched {
		if _, err := a.store.AddClip(ctx, clip); err != nil {
			return err
		}
	}
	a.log.Info().Str("theme", theme).Int("count", len(fetched)).Msg("fresh footage acquired")
	return nil
}
