package progress_test

import (
	"fmt"
	"testing"
	"time"

	"streamix/models"
	"streamix/services/progress"
)

func record(profileID int, contentID string, watchedAt time.Time) models.WatchProgressRecord {
	return models.WatchProgressRecord{
		ContentID:       contentID,
		ProfileID:       profileID,
		ContentType:     models.ContentTypeMovie,
		PositionSeconds: 120,
		TotalSeconds:    3600,
		PercentComplete: 120.0 / 3600 * 100,
		LastWatchedAt:   watchedAt,
	}
}

func TestUpsertDeduplicatesByContentID(t *testing.T) {
	svc, err := progress.NewService(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	base := time.Now().UTC()
	if err := svc.Upsert(record(1, "movie-7", base)); err != nil {
		t.Fatalf("first upsert returned error: %v", err)
	}

	updated := record(1, "movie-7", base.Add(time.Minute))
	updated.PositionSeconds = 900
	if err := svc.Upsert(updated); err != nil {
		t.Fatalf("second upsert returned error: %v", err)
	}

	records := svc.Get(1)
	if len(records) != 1 {
		t.Fatalf("expected one record after duplicate upsert, got %d", len(records))
	}
	if records[0].PositionSeconds != 900 {
		t.Fatalf("expected newer position to win, got %v", records[0].PositionSeconds)
	}
}

func TestNewestRecordComesFirst(t *testing.T) {
	svc, err := progress.NewService(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		rec := record(1, fmt.Sprintf("movie-%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := svc.Upsert(rec); err != nil {
			t.Fatalf("upsert returned error: %v", err)
		}
	}

	records := svc.Get(1)
	if records[0].ContentID != "movie-4" {
		t.Fatalf("expected most recently watched first, got %q", records[0].ContentID)
	}
	if records[len(records)-1].ContentID != "movie-0" {
		t.Fatalf("expected oldest last, got %q", records[len(records)-1].ContentID)
	}
}

func TestRetentionEvictsLeastRecentlyWatched(t *testing.T) {
	svc, err := progress.NewService(t.TempDir(), 20)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	base := time.Now().UTC()
	for i := 0; i < 25; i++ {
		rec := record(1, fmt.Sprintf("movie-%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := svc.Upsert(rec); err != nil {
			t.Fatalf("upsert returned error: %v", err)
		}
	}

	records := svc.Get(1)
	if len(records) != 20 {
		t.Fatalf("expected retention cap of 20, got %d", len(records))
	}

	// movies 0 through 4 were the least recently watched
	for _, rec := range records {
		for i := 0; i < 5; i++ {
			if rec.ContentID == fmt.Sprintf("movie-%d", i) {
				t.Fatalf("expected %q to be evicted", rec.ContentID)
			}
		}
	}
}

func TestRewatchingOldItemKeepsItOutOfEviction(t *testing.T) {
	svc, err := progress.NewService(t.TempDir(), 20)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	base := time.Now().UTC()
	for i := 0; i < 20; i++ {
		rec := record(1, fmt.Sprintf("movie-%d", i), base.Add(time.Duration(i)*time.Minute))
		if err := svc.Upsert(rec); err != nil {
			t.Fatalf("upsert returned error: %v", err)
		}
	}

	// Rewatch the oldest, then push one more item over the cap.
	if err := svc.Upsert(record(1, "movie-0", base.Add(time.Hour))); err != nil {
		t.Fatalf("rewatch upsert returned error: %v", err)
	}
	if err := svc.Upsert(record(1, "movie-new", base.Add(2*time.Hour))); err != nil {
		t.Fatalf("new upsert returned error: %v", err)
	}

	if _, found := svc.FindByContentID(1, "movie-0"); !found {
		t.Fatalf("expected rewatched item to survive eviction")
	}
	if _, found := svc.FindByContentID(1, "movie-1"); found {
		t.Fatalf("expected least recently watched item to be evicted")
	}
}

func TestProfilesAreIsolated(t *testing.T) {
	svc, err := progress.NewService(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	now := time.Now().UTC()
	if err := svc.Upsert(record(1, "movie-1", now)); err != nil {
		t.Fatalf("upsert returned error: %v", err)
	}
	if err := svc.Upsert(record(2, "movie-2", now)); err != nil {
		t.Fatalf("upsert returned error: %v", err)
	}

	if len(svc.Get(1)) != 1 || len(svc.Get(2)) != 1 {
		t.Fatalf("expected one record per profile")
	}
	if _, found := svc.FindByContentID(1, "movie-2"); found {
		t.Fatalf("expected records to be scoped per profile")
	}
}

func TestProgressSurvivesReload(t *testing.T) {
	dir := t.TempDir()

	svc, err := progress.NewService(dir, 0)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	if err := svc.Upsert(record(1, "episode-s1e7", time.Now().UTC())); err != nil {
		t.Fatalf("upsert returned error: %v", err)
	}

	reloaded, err := progress.NewService(dir, 0)
	if err != nil {
		t.Fatalf("failed to reload service: %v", err)
	}

	rec, found := reloaded.FindByContentID(1, "episode-s1e7")
	if !found {
		t.Fatalf("expected record to survive reload")
	}
	if rec.PositionSeconds != 120 {
		t.Fatalf("expected position to survive reload, got %v", rec.PositionSeconds)
	}
}

func TestRemoveDropsRecord(t *testing.T) {
	svc, err := progress.NewService(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	if err := svc.Upsert(record(1, "movie-1", time.Now().UTC())); err != nil {
		t.Fatalf("upsert returned error: %v", err)
	}
	if err := svc.Remove(1, "movie-1"); err != nil {
		t.Fatalf("remove returned error: %v", err)
	}
	if len(svc.Get(1)) != 0 {
		t.Fatalf("expected record to be removed")
	}

	// Removing again is a no-op.
	if err := svc.Remove(1, "movie-1"); err != nil {
		t.Fatalf("second remove returned error: %v", err)
	}
}
