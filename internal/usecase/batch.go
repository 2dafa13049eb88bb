package usecase

import (
	"context"
	"errors"

	"github.com/mgaillard/shortforge/internal/types"
)

// BatchSummary counts per-item outcomes of one batch run.
type BatchSummary struct {
	Built   int
	Skipped int
	Failed  int
	Results []BuildResult
}

// Batch builds every request in order. Normal per-item outcomes (already
// built, missing inputs, no viral moment) count as skips; everything else
// counts as a failure. A persistence failure is logged apart from other
// failures: the artifact exists on disk but the ledger missed it. Only
// context cancellation stops the loop early.
func (u Usecase) Batch(ctx context.Context, reqs []BuildRequest) (BatchSummary, error) {
	var sum BatchSummary
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		log := u.log.With().Str("video_id", req.VideoID).Str("platform", req.Platform).Logger()

		res, err := u.BuildShort(ctx, req)
		var perr *types.PersistenceError
		switch {
		case err == nil:
			sum.Built++
			sum.Results = append(sum.Results, res)
			log.Info().Str("output", res.OutputPath).Msg("built")
		case errors.Is(err, types.ErrAlreadyBuilt):
			sum.Skipped++
			log.Info().Msg("already built, skipping")
		case errors.Is(err, types.ErrNoViralMoment):
			sum.Skipped++
			log.Info().Msg("no viral moment, skipping")
		case errors.Is(err, types.ErrMissingInput):
			sum.Skipped++
			log.Warn().Err(err).Msg("missing inputs, skipping")
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			sum.Failed++
			log.Error().Err(err).Msg("build interrupted")
			return sum, err
		case errors.As(err, &perr):
			sum.Failed++
			log.Error().Err(err).Str("op", perr.Op).Msg("artifact assembled but unrecorded")
		default:
			sum.Failed++
			log.Error().Err(err).Msg("build failed")
		}
	}
	u.log.Info().Int("built", sum.Built).Int("skipped", sum.Skipped).Int("failed", sum.Failed).
		Msg("batch finished")
	return sum, nil
}
