package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mgaillard/shortforge/internal/ports"
	"github.com/mgaillard/shortforge/internal/types"
)

// AllocateClip hands out the least-used clip for theme, breaking ties
// toward the most recently downloaded. Selection, counter increment and
// the usage event commit atomically.
func (s *Store) AllocateClip(ctx context.Context, theme, videoID string) (types.BackgroundClip, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.BackgroundClip{}, &types.PersistenceError{Op: "allocate clip", Err: err}
	}
	defer tx.Rollback()

	var (
		clip     types.BackgroundClip
		duration float64
		download string
		lastUsed sql.NullString
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, filename, theme, source, url, duration, file_size, download_date, usage_count, last_used
		FROM fonds WHERE theme = ?
		ORDER BY usage_count ASC, download_date DESC
		LIMIT 1`, theme).Scan(
		&clip.ID, &clip.Filename, &clip.Theme, &clip.Source, &clip.URL,
		&duration, &clip.FileSize, &download, &clip.UsageCount, &lastUsed)
	if err == sql.ErrNoRows {
		return types.BackgroundClip{}, fmt.Errorf("%w: no background clip for theme %q", types.ErrMissingInput, theme)
	}
	if err != nil {
		return types.BackgroundClip{}, &types.PersistenceError{Op: "allocate clip", Err: err}
	}
	clip.Duration = types.Seconds(duration)
	clip.Downloaded = parseTime(download)

	now := time.Now()
	stamp := formatTime(now)
	if _, err := tx.ExecContext(ctx,
		`UPDATE fonds SET usage_count = usage_count + 1, last_used = ? WHERE id = ?`,
		stamp, clip.ID); err != nil {
		return types.BackgroundClip{}, &types.PersistenceError{Op: "allocate clip", Err: err}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO fond_usage (fond_id, video_id, usage_date) VALUES (?, ?, ?)`,
		clip.ID, videoID, stamp); err != nil {
		return types.BackgroundClip{}, &types.PersistenceError{Op: "allocate clip", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return types.BackgroundClip{}, &types.PersistenceError{Op: "allocate clip", Err: err}
	}

	clip.UsageCount++
	clip.LastUsed = &now
	s.log.Debug().Int64("fond_id", clip.ID).Str("theme", theme).Int("usage_count", clip.UsageCount).
		Msg("background clip allocated")
	return clip, nil
}

// AddClip registers a downloaded clip in the pool and returns its id.
func (s *Store) AddClip(ctx context.Context, clip types.BackgroundClip) (int64, error) {
	downloaded := clip.Downloaded
	if downloaded.IsZero() {
		downloaded = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO fonds (filename, theme, source, url, duration, file_size, download_date, usage_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)`,
		clip.Filename, clip.Theme, clip.Source, clip.URL,
		clip.Duration.Seconds(), clip.FileSize, formatTime(downloaded))
	if err != nil {
		return 0, &types.PersistenceError{Op: "add clip", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &types.PersistenceError{Op: "add clip", Err: err}
	}
	return id, nil
}

func (s *Store) ClipCount(ctx context.Context, theme string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM fonds WHERE theme = ?`, theme).Scan(&n)
	if err != nil {
		return 0, &types.PersistenceError{Op: "clip count", Err: err}
	}
	return n, nil
}

// ClipStats summarizes the pool per theme, busiest themes first.
func (s *Store) ClipStats(ctx context.Context) ([]ports.ThemeStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT theme, COUNT(*), AVG(usage_count)
		FROM fonds GROUP BY theme ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, &types.PersistenceError{Op: "clip stats", Err: err}
	}
	defer rows.Close()

	var out []ports.ThemeStats
	for rows.Next() {
		var st ports.ThemeStats
		if err := rows.Scan(&st.Theme, &st.Count, &st.AvgUsage); err != nil {
			return nil, &types.PersistenceError{Op: "clip stats", Err: err}
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.PersistenceError{Op: "clip stats", Err: err}
	}
	return out, nil
}
