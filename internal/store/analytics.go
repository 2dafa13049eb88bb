package store

import (
	"context"
	"time"

	"github.com/mgaillard/shortforge/internal/ports"
	"github.com/mgaillard/shortforge/internal/types"
)

// UpdateMetrics overwrites the engagement counters of the analytics row
// keyed by the short's output path. Rows are keyed by path rather than id
// so external upload tooling can report back without knowing our ids.
func (s *Store) UpdateMetrics(ctx context.Context, shortPath string, views, likes, shares, comments int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE shorts_analytics
		SET views = ?, likes = ?, shares = ?, comments = ?, status = 'published', last_updated = ?
		WHERE short_path = ?`,
		views, likes, shares, comments, formatTime(time.Now()), shortPath)
	if err != nil {
		return &types.PersistenceError{Op: "update metrics", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &types.PersistenceError{Op: "update metrics", Err: err}
	}
	if n == 0 {
		return &types.PersistenceError{Op: "update metrics", Err: types.ErrMissingInput}
	}
	return nil
}

// PlatformStats aggregates the analytics ledger per platform over the last
// days days. A zero days means no time filter; an empty platform selects
// all platforms.
func (s *Store) PlatformStats(ctx context.Context, platform string, days int) ([]ports.PlatformStats, error) {
	query := `
		SELECT platform, COUNT(*), AVG(duration), AVG(file_size),
		       SUM(views), SUM(likes), SUM(shares), SUM(comments)
		FROM shorts_analytics`
	var (
		where []string
		args  []any
	)
	if platform != "" {
		where = append(where, `platform = ?`)
		args = append(args, platform)
	}
	if days > 0 {
		where = append(where, `created_at >= ?`)
		args = append(args, formatTime(time.Now().AddDate(0, 0, -days)))
	}
	for i, cond := range where {
		if i == 0 {
			query += ` WHERE ` + cond
		} else {
			query += ` AND ` + cond
		}
	}
	query += ` GROUP BY platform ORDER BY platform`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &types.PersistenceError{Op: "platform stats", Err: err}
	}
	defer rows.Close()

	var out []ports.PlatformStats
	for rows.Next() {
		var st ports.PlatformStats
		if err := rows.Scan(&st.Platform, &st.TotalShorts, &st.AvgDuration, &st.AvgFileSize,
			&st.TotalViews, &st.TotalLikes, &st.TotalShares, &st.TotalComments); err != nil {
			return nil, &types.PersistenceError{Op: "platform stats", Err: err}
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.PersistenceError{Op: "platform stats", Err: err}
	}
	return out, nil
}

// TopShorts ranks analytics rows by engagement score, where a share is
// worth five views, a comment three and a like two.
func (s *Store) TopShorts(ctx context.Context, limit int) ([]ports.RankedShort, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT video_id, platform, short_path, duration, views, likes, shares, comments,
		       views + 2*likes + 5*shares + 3*comments AS score
		FROM shorts_analytics
		ORDER BY score DESC, created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, &types.PersistenceError{Op: "top shorts", Err: err}
	}
	defer rows.Close()

	var out []ports.RankedShort
	for rows.Next() {
		var r ports.RankedShort
		if err := rows.Scan(&r.VideoID, &r.Platform, &r.ShortPath, &r.Duration,
			&r.Views, &r.Likes, &r.Shares, &r.Comments, &r.Score); err != nil {
			return nil, &types.PersistenceError{Op: "top shorts", Err: err}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &types.PersistenceError{Op: "top shorts", Err: err}
	}
	return out, nil
}
