package store

import (
	"context"
	"time"

	"github.com/mgaillard/shortforge/internal/types"
)

func (s *Store) HasBuild(ctx context.Context, videoID, platform string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shorts WHERE video_id = ? AND platform = ?`,
		videoID, platform).Scan(&n)
	if err != nil {
		return false, &types.PersistenceError{Op: "has build", Err: err}
	}
	return n > 0, nil
}

// RecordBuild writes the shorts row and seeds its analytics ledger row with
// zeroed metrics, in one transaction. Each (video, platform) pair records
// at most once.
func (s *Store) RecordBuild(ctx context.Context, build types.ShortBuild, duration time.Duration, fileSize int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, &types.PersistenceError{Op: "record build", Err: err}
	}
	defer tx.Rollback()

	var n int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shorts WHERE video_id = ? AND platform = ?`,
		build.VideoID, build.Platform).Scan(&n)
	if err != nil {
		return 0, &types.PersistenceError{Op: "record build", Err: err}
	}
	if n > 0 {
		return 0, types.ErrAlreadyBuilt
	}

	created := build.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	stamp := formatTime(created)

	res, err := tx.ExecContext(ctx, `
		INSERT INTO shorts (video_id, platform, short_path, thumbnail_path, title, start_time, end_time, justification, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		build.VideoID, build.Platform, build.OutputPath, build.ThumbnailPath,
		build.Moment.Title, build.Moment.Start.Seconds(), build.Moment.End.Seconds(),
		build.Moment.Justification, stamp)
	if err != nil {
		return 0, &types.PersistenceError{Op: "record build", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &types.PersistenceError{Op: "record build", Err: err}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO shorts_analytics (video_id, platform, short_path, duration, file_size, status, created_at, last_updated)
		VALUES (?, ?, ?, ?, ?, 'created', ?, ?)`,
		build.VideoID, build.Platform, build.OutputPath,
		duration.Seconds(), fileSize, stamp, stamp); err != nil {
		return 0, &types.PersistenceError{Op: "record build", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return 0, &types.PersistenceError{Op: "record build", Err: err}
	}
	s.log.Info().Int64("short_id", id).Str("video_id", build.VideoID).Str("platform", build.Platform).
		Msg("short recorded")
	return id, nil
}

// DeleteBuild removes one build record and its analytics rows so the pair
// can be rebuilt. Missing records are not an error.
func (s *Store) DeleteBuild(ctx context.Context, videoID, platform string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &types.PersistenceError{Op: "delete build", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM shorts WHERE video_id = ? AND platform = ?`, videoID, platform); err != nil {
		return &types.PersistenceError{Op: "delete build", Err: err}
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM shorts_analytics WHERE video_id = ? AND platform = ?`, videoID, platform); err != nil {
		return &types.PersistenceError{Op: "delete build", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return &types.PersistenceError{Op: "delete build", Err: err}
	}
	return nil
}

// ListBuilds returns recorded shorts, newest first. An empty platform
// selects all platforms.
func (s *Store) ListBuilds(ctx context.Context, platform string) ([]types.ShortBuild, error) {
	query := `
		SELECT id, video_id, platform, short_path, thumbnail_path, title, start_time, end_time, justification, created_at
		FROM shorts`
	args := []any{}
	if platform != "" {
		query += ` WHERE platform = ?`
		args = append(args, platform)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &types.PersistenceError{Op: "list builds", Err: err}
	}
	defer rows.Close()

	var out []types.ShortBuild
	for rows.Next() {
		var (
			b          types.ShortBuild
			start, end float64
			created    string
		)
		if err := rows.Scan(&b.ID, &b.VideoID, &b.Platform, &b.OutputPath, &b.ThumbnailPath,
			&b.Moment.Title, &start, &end, &b.Moment.Justification, &created); err != nil {
			return nil, &types.PersistenceError{Op: "list builds", Err: err}
		}
		b.Moment.Start = types.Seconds(start)
		b.Moment.End = types.Seconds(end)
		b.CreatedAt = parseTime(created)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.PersistenceError{Op: "list builds", Err: err}
	}
	return out, nil
}
