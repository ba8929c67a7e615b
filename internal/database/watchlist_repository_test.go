package database

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"entertainmenttracker/models"
)

// setupTestRepo creates a test database and watchlist repository.
func setupTestRepo(t *testing.T) *WatchlistRepository {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Config{DatabasePath: dbPath})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db.Watchlist
}

func TestAddOrGet_CreatesWithDefaults(t *testing.T) {
	repo := setupTestRepo(t)

	item, created, err := repo.AddOrGet("u1", models.WatchlistUpsert{
		MediaID:    "550",
		MediaType:  models.MediaTypeMovie,
		Title:      "Fight Club",
		PosterPath: "/x.jpg",
	})
	if err != nil {
		t.Fatalf("AddOrGet failed: %v", err)
	}
	if !created {
		t.Fatal("expected created=true for a fresh row")
	}
	if item.ID == "" {
		t.Error("expected a generated id")
	}
	if item.Status != models.StatusPlanToWatch {
		t.Errorf("expected status plan_to_watch, got %q", item.Status)
	}
	if item.Progress != 0 {
		t.Errorf("expected progress 0, got %d", item.Progress)
	}
	if item.Creator != models.DefaultCreator {
		t.Errorf("expected creator %q, got %q", models.DefaultCreator, item.Creator)
	}
	if item.Genres == nil || len(item.Genres) != 0 {
		t.Errorf("expected empty genres slice, got %v", item.Genres)
	}
	if item.DateAdded.IsZero() || item.DateUpdated.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestAddOrGet_Idempotent(t *testing.T) {
	repo := setupTestRepo(t)

	upsert := models.WatchlistUpsert{
		MediaID:    "550",
		MediaType:  models.MediaTypeMovie,
		Title:      "Fight Club",
		PosterPath: "/x.jpg",
	}

	first, created, err := repo.AddOrGet("u1", upsert)
	if err != nil {
		t.Fatalf("first AddOrGet failed: %v", err)
	}
	if !created {
		t.Fatal("expected first add to create")
	}

	// Mutate the row so the second add has something to clobber.
	if _, err := repo.UpdateStatusProgress("u1", first.ID, models.StatusWatching, 3); err != nil {
		t.Fatalf("UpdateStatusProgress failed: %v", err)
	}

	second, created, err := repo.AddOrGet("u1", upsert)
	if err != nil {
		t.Fatalf("second AddOrGet failed: %v", err)
	}
	if created {
		t.Fatal("expected created=false for an existing row")
	}
	if second.ID != first.ID {
		t.Fatalf("expected the original id %s, got %s", first.ID, second.ID)
	}
	if second.Status != models.StatusWatching || second.Progress != 3 {
		t.Errorf("re-add must leave status/progress unchanged, got %s/%d", second.Status, second.Progress)
	}
}

func TestAddOrGet_ConcurrentAddsCreateOneRow(t *testing.T) {
	repo := setupTestRepo(t)

	upsert := models.WatchlistUpsert{
		MediaID:   "42",
		MediaType: models.MediaTypeTV,
		Title:     "Some Show",
	}

	const workers = 8
	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		createdCount int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, created, err := repo.AddOrGet("u1", upsert)
			if err != nil {
				t.Errorf("concurrent AddOrGet failed: %v", err)
				return
			}
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if createdCount != 1 {
		t.Errorf("expected exactly one creation, got %d", createdCount)
	}
	items, err := repo.ListByUser("u1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 row after concurrent adds, got %d", len(items))
	}
}

func TestAddOrGet_SameMediaIDDifferentTypes(t *testing.T) {
	repo := setupTestRepo(t)

	// A movie and a tv show can share an upstream numeric id; they must not
	// collide in the watchlist.
	if _, created, err := repo.AddOrGet("u1", models.WatchlistUpsert{
		MediaID: "550", MediaType: models.MediaTypeMovie, Title: "Fight Club",
	}); err != nil || !created {
		t.Fatalf("movie add failed: created=%v err=%v", created, err)
	}
	if _, created, err := repo.AddOrGet("u1", models.WatchlistUpsert{
		MediaID: "550", MediaType: models.MediaTypeTV, Title: "Unrelated Show",
	}); err != nil || !created {
		t.Fatalf("tv add failed: created=%v err=%v", created, err)
	}

	items, err := repo.ListByUser("u1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(items))
	}
}

func TestGetByID_OwnershipAndNotFound(t *testing.T) {
	repo := setupTestRepo(t)

	item, _, err := repo.AddOrGet("alpha", models.WatchlistUpsert{
		MediaID: "1", MediaType: models.MediaTypeMovie, Title: "Alpha Movie",
	})
	if err != nil {
		t.Fatalf("AddOrGet failed: %v", err)
	}

	if _, err := repo.GetByID("alpha", item.ID); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}

	if _, err := repo.GetByID("beta", item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user's row, got %v", err)
	}
	if _, err := repo.GetByID("alpha", "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a missing id, got %v", err)
	}
}

func TestUpdateStatusProgress(t *testing.T) {
	repo := setupTestRepo(t)

	item, _, err := repo.AddOrGet("u1", models.WatchlistUpsert{
		MediaID: "7", MediaType: models.MediaTypeAnime, Title: "Anime",
	})
	if err != nil {
		t.Fatalf("AddOrGet failed: %v", err)
	}
	before := item.DateUpdated

	time.Sleep(10 * time.Millisecond)

	updated, err := repo.UpdateStatusProgress("u1", item.ID, models.StatusWatching, 3)
	if err != nil {
		t.Fatalf("UpdateStatusProgress failed: %v", err)
	}
	if updated.Status != models.StatusWatching || updated.Progress != 3 {
		t.Errorf("unexpected row after update: %s/%d", updated.Status, updated.Progress)
	}
	if !updated.DateUpdated.After(before) {
		t.Errorf("expected date_updated to advance, before=%v after=%v", before, updated.DateUpdated)
	}
	if !updated.DateAdded.Equal(item.DateAdded) {
		t.Errorf("date_added must be immutable, before=%v after=%v", item.DateAdded, updated.DateAdded)
	}
}

func TestUpdateStatusProgress_Validation(t *testing.T) {
	repo := setupTestRepo(t)

	item, _, err := repo.AddOrGet("u1", models.WatchlistUpsert{
		MediaID: "7", MediaType: models.MediaTypeManga, Title: "Manga",
	})
	if err != nil {
		t.Fatalf("AddOrGet failed: %v", err)
	}

	if _, err := repo.UpdateStatusProgress("u1", item.ID, "binging", 1); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := repo.UpdateStatusProgress("u1", item.ID, models.StatusWatching, -1); !errors.Is(err, ErrInvalidProgress) {
		t.Errorf("expected ErrInvalidProgress, got %v", err)
	}

	// Neither rejected call may have touched the row.
	got, err := repo.GetByID("u1", item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.StatusPlanToWatch || got.Progress != 0 {
		t.Errorf("rejected updates must not persist, got %s/%d", got.Status, got.Progress)
	}

	if _, err := repo.UpdateStatusProgress("u1", "no-such-id", models.StatusWatching, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateProgress(t *testing.T) {
	repo := setupTestRepo(t)

	item, _, err := repo.AddOrGet("u1", models.WatchlistUpsert{
		MediaID: "9", MediaType: models.MediaTypeBook, Title: "Book",
	})
	if err != nil {
		t.Fatalf("AddOrGet failed: %v", err)
	}

	updated, err := repo.UpdateProgress("u1", item.ID, 12)
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if updated.Progress != 12 {
		t.Errorf("expected progress 12, got %d", updated.Progress)
	}
	if updated.Status != models.StatusPlanToWatch {
		t.Errorf("progress-only update must not touch status, got %q", updated.Status)
	}

	if _, err := repo.UpdateProgress("u1", item.ID, -5); !errors.Is(err, ErrInvalidProgress) {
		t.Errorf("expected ErrInvalidProgress, got %v", err)
	}
	if _, err := repo.UpdateProgress("other", item.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for wrong owner, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := setupTestRepo(t)

	item, _, err := repo.AddOrGet("u1", models.WatchlistUpsert{
		MediaID: "550", MediaType: models.MediaTypeMovie, Title: "Fight Club",
	})
	if err != nil {
		t.Fatalf("AddOrGet failed: %v", err)
	}

	title, err := repo.Delete("u1", item.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if title != "Fight Club" {
		t.Errorf("expected deleted title, got %q", title)
	}

	if _, err := repo.GetByID("u1", item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := repo.Delete("u1", item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("double delete must report ErrNotFound, got %v", err)
	}
}

func TestDelete_WrongOwner(t *testing.T) {
	repo := setupTestRepo(t)

	item, _, err := repo.AddOrGet("alpha", models.WatchlistUpsert{
		MediaID: "1", MediaType: models.MediaTypeMovie, Title: "Alpha Movie",
	})
	if err != nil {
		t.Fatalf("AddOrGet failed: %v", err)
	}

	if _, err := repo.Delete("beta", item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for another user's row, got %v", err)
	}
	if _, err := repo.GetByID("alpha", item.ID); err != nil {
		t.Errorf("row must survive a foreign delete attempt: %v", err)
	}
}

func TestListByUser_IsolatesUsers(t *testing.T) {
	repo := setupTestRepo(t)

	if items, err := repo.ListByUser("nobody"); err != nil || len(items) != 0 {
		t.Fatalf("expected empty list, got %v err=%v", items, err)
	}

	if _, _, err := repo.AddOrGet("alpha", models.WatchlistUpsert{
		MediaID: "1", MediaType: models.MediaTypeMovie, Title: "Alpha Movie",
	}); err != nil {
		t.Fatalf("alpha add failed: %v", err)
	}
	if _, _, err := repo.AddOrGet("beta", models.WatchlistUpsert{
		MediaID: "2", MediaType: models.MediaTypeMovie, Title: "Beta Movie",
	}); err != nil {
		t.Fatalf("beta add failed: %v", err)
	}

	alphaItems, err := repo.ListByUser("alpha")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(alphaItems) != 1 || alphaItems[0].Title != "Alpha Movie" {
		t.Fatalf("unexpected alpha items %+v", alphaItems)
	}
}

func TestGenresRoundTrip(t *testing.T) {
	repo := setupTestRepo(t)

	total := 26
	item, _, err := repo.AddOrGet("u1", models.WatchlistUpsert{
		MediaID:       "101",
		MediaType:     models.MediaTypeAnime,
		Title:         "Genre Anime",
		Genres:        []string{"Action", "Comedy"},
		Creator:       "Studio Example",
		Year:          "2024",
		TotalEpisodes: &total,
	})
	if err != nil {
		t.Fatalf("AddOrGet failed: %v", err)
	}

	got, err := repo.GetByID("u1", item.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Genres) != 2 || got.Genres[0] != "Action" || got.Genres[1] != "Comedy" {
		t.Errorf("expected genres [Action Comedy], got %v", got.Genres)
	}
	if got.Creator != "Studio Example" || got.Year != "2024" {
		t.Errorf("expected supplied defaults to persist, got %q/%q", got.Creator, got.Year)
	}
	if got.TotalEpisodes == nil || *got.TotalEpisodes != 26 {
		t.Errorf("expected total episodes 26, got %v", got.TotalEpisodes)
	}
}
