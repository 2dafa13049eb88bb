package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mgaillard/shortforge/internal/types"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrateIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	s, err := Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	s.Close()
	s, err = Open(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	s.Close()
}

func TestAllocateClipLeastUsed(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	idOld, err := s.AddClip(ctx, types.BackgroundClip{Filename: "old.mp4", Theme: "nature", Source: "local", Downloaded: old})
	if err != nil {
		t.Fatalf("AddClip: %v", err)
	}
	idNew, err := s.AddClip(ctx, types.BackgroundClip{Filename: "new.mp4", Theme: "nature", Source: "local", Downloaded: recent})
	if err != nil {
		t.Fatalf("AddClip: %v", err)
	}

	// Equal usage: the newer download wins the tie.
	clip, err := s.AllocateClip(ctx, "nature", "vid1")
	if err != nil {
		t.Fatalf("AllocateClip: %v", err)
	}
	if clip.ID != idNew {
		t.Fatalf("tie-break picked id %d, want %d", clip.ID, idNew)
	}
	if clip.UsageCount != 1 {
		t.Fatalf("usage count = %d, want 1", clip.UsageCount)
	}
	if clip.LastUsed == nil {
		t.Fatal("last used not stamped")
	}

	// Now the older clip is least used.
	clip, err = s.AllocateClip(ctx, "nature", "vid1")
	if err != nil {
		t.Fatalf("AllocateClip: %v", err)
	}
	if clip.ID != idOld {
		t.Fatalf("least-used pick = id %d, want %d", clip.ID, idOld)
	}

	var events int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM fond_usage WHERE video_id = 'vid1'`).Scan(&events); err != nil {
		t.Fatalf("count usage events: %v", err)
	}
	if events != 2 {
		t.Fatalf("usage events = %d, want 2", events)
	}
}

func TestAllocateClipEmptyPool(t *testing.T) {
	s := openTest(t)
	_, err := s.AllocateClip(context.Background(), "nosuch", "vid1")
	if !errors.Is(err, types.ErrMissingInput) {
		t.Fatalf("err = %v, want ErrMissingInput", err)
	}
}

func TestClipStats(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	for _, theme := range []string{"nature", "nature", "city"} {
		if _, err := s.AddClip(ctx, types.BackgroundClip{Filename: "c.mp4", Theme: theme, Source: "local"}); err != nil {
			t.Fatalf("AddClip: %v", err)
		}
	}
	if _, err := s.AllocateClip(ctx, "city", "vid1"); err != nil {
		t.Fatalf("AllocateClip: %v", err)
	}

	stats, err := s.ClipStats(ctx)
	if err != nil {
		t.Fatalf("ClipStats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("themes = %d, want 2", len(stats))
	}
	if stats[0].Theme != "nature" || stats[0].Count != 2 {
		t.Fatalf("first theme = %+v, want nature count 2", stats[0])
	}
	if stats[1].AvgUsage != 1 {
		t.Fatalf("city avg usage = %v, want 1", stats[1].AvgUsage)
	}

	n, err := s.ClipCount(ctx, "nature")
	if err != nil {
		t.Fatalf("ClipCount: %v", err)
	}
	if n != 2 {
		t.Fatalf("nature count = %d, want 2", n)
	}
}

func testBuild(videoID, platform string) types.ShortBuild {
	return types.ShortBuild{
		VideoID:    videoID,
		Platform:   platform,
		OutputPath: "/out/" + videoID + "_" + platform + ".mp4",
		Moment: types.ViralMoment{
			Title:         "How to win...",
			Start:         10 * time.Second,
			End:           85 * time.Second,
			Justification: "high viral potential",
		},
	}
}

func TestRecordBuildOnce(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()

	ok, err := s.HasBuild(ctx, "vid1", "tiktok")
	if err != nil || ok {
		t.Fatalf("HasBuild before = %v, %v; want false, nil", ok, err)
	}

	if _, err := s.RecordBuild(ctx, testBuild("vid1", "tiktok"), 80*time.Second, 12345); err != nil {
		t.Fatalf("RecordBuild: %v", err)
	}
	ok, err = s.HasBuild(ctx, "vid1", "tiktok")
	if err != nil || !ok {
		t.Fatalf("HasBuild after = %v, %v; want true, nil", ok, err)
	}

	_, err = s.RecordBuild(ctx, testBuild("vid1", "tiktok"), 80*time.Second, 12345)
	if !errors.Is(err, types.ErrAlreadyBuilt) {
		t.Fatalf("duplicate RecordBuild err = %v, want ErrAlreadyBuilt", err)
	}

	// Same video on another platform is a distinct build.
	if _, err := s.RecordBuild(ctx, testBuild("vid1", "youtube_shorts"), 80*time.Second, 12345); err != nil {
		t.Fatalf("RecordBuild other platform: %v", err)
	}
}

func TestRecordBuildSeedsAnalytics(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	if _, err := s.RecordBuild(ctx, testBuild("vid1", "tiktok"), 75*time.Second, 999); err != nil {
		t.Fatalf("RecordBuild: %v", err)
	}

	var views int64
	var status string
	err := s.db.QueryRow(`SELECT views, status FROM shorts_analytics WHERE video_id = 'vid1'`).Scan(&views, &status)
	if err != nil {
		t.Fatalf("read analytics seed: %v", err)
	}
	if views != 0 || status != "created" {
		t.Fatalf("seed row = views %d status %q, want 0 created", views, status)
	}
}

func TestDeleteBuildAllowsRebuild(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	if _, err := s.RecordBuild(ctx, testBuild("vid1", "tiktok"), 80*time.Second, 1); err != nil {
		t.Fatalf("RecordBuild: %v", err)
	}
	if err := s.DeleteBuild(ctx, "vid1", "tiktok"); err != nil {
		t.Fatalf("DeleteBuild: %v", err)
	}
	if _, err := s.RecordBuild(ctx, testBuild("vid1", "tiktok"), 80*time.Second, 1); err != nil {
		t.Fatalf("RecordBuild after delete: %v", err)
	}
	// Deleting a missing record is a no-op.
	if err := s.DeleteBuild(ctx, "ghost", "tiktok"); err != nil {
		t.Fatalf("DeleteBuild missing: %v", err)
	}
}

func TestListBuilds(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	b1 := testBuild("vid1", "tiktok")
	b1.CreatedAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	b2 := testBuild("vid2", "youtube_shorts")
	b2.CreatedAt = time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	for _, b := range []types.ShortBuild{b1, b2} {
		if _, err := s.RecordBuild(ctx, b, 80*time.Second, 1); err != nil {
			t.Fatalf("RecordBuild: %v", err)
		}
	}

	all, err := s.ListBuilds(ctx, "")
	if err != nil {
		t.Fatalf("ListBuilds: %v", err)
	}
	if len(all) != 2 || all[0].VideoID != "vid2" {
		t.Fatalf("ListBuilds = %+v, want vid2 first", all)
	}
	if all[0].Moment.Start != b2.Moment.Start || all[0].Moment.End != b2.Moment.End {
		t.Fatalf("moment window not round-tripped: %+v", all[0].Moment)
	}

	tiktok, err := s.ListBuilds(ctx, "tiktok")
	if err != nil {
		t.Fatalf("ListBuilds tiktok: %v", err)
	}
	if len(tiktok) != 1 || tiktok[0].VideoID != "vid1" {
		t.Fatalf("platform filter = %+v, want only vid1", tiktok)
	}
}

func TestMetricsAndRanking(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	b1 := testBuild("vid1", "tiktok")
	b2 := testBuild("vid2", "tiktok")
	for _, b := range []types.ShortBuild{b1, b2} {
		if _, err := s.RecordBuild(ctx, b, 80*time.Second, 1000); err != nil {
			t.Fatalf("RecordBuild: %v", err)
		}
	}

	// vid1: 100 views. vid2: 10 views + 20 shares = 110 score, ranks first.
	if err := s.UpdateMetrics(ctx, b1.OutputPath, 100, 0, 0, 0); err != nil {
		t.Fatalf("UpdateMetrics: %v", err)
	}
	if err := s.UpdateMetrics(ctx, b2.OutputPath, 10, 0, 20, 0); err != nil {
		t.Fatalf("UpdateMetrics: %v", err)
	}
	if err := s.UpdateMetrics(ctx, "/nope.mp4", 1, 0, 0, 0); err == nil {
		t.Fatal("UpdateMetrics on unknown path did not fail")
	}

	top, err := s.TopShorts(ctx, 10)
	if err != nil {
		t.Fatalf("TopShorts: %v", err)
	}
	if len(top) != 2 || top[0].VideoID != "vid2" || top[0].Score != 110 {
		t.Fatalf("TopShorts = %+v, want vid2 first with score 110", top)
	}

	stats, err := s.PlatformStats(ctx, "tiktok", 0)
	if err != nil {
		t.Fatalf("PlatformStats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("platforms = %d, want 1", len(stats))
	}
	if stats[0].TotalShorts != 2 || stats[0].TotalViews != 110 || stats[0].TotalShares != 20 {
		t.Fatalf("stats = %+v", stats[0])
	}
}

func TestPlatformStatsWindow(t *testing.T) {
	s := openTest(t)
	ctx := context.Background()
	stale := testBuild("vid1", "tiktok")
	stale.CreatedAt = time.Now().AddDate(0, 0, -30)
	fresh := testBuild("vid2", "tiktok")
	for _, b := range []types.ShortBuild{stale, fresh} {
		if _, err := s.RecordBuild(ctx, b, 80*time.Second, 1); err != nil {
			t.Fatalf("RecordBuild: %v", err)
		}
	}

	stats, err := s.PlatformStats(ctx, "tiktok", 7)
	if err != nil {
		t.Fatalf("PlatformStats: %v", err)
	}
	if len(stats) != 1 || stats[0].TotalShorts != 1 {
		t.Fatalf("7-day window = %+v, want one short", stats)
	}
}
