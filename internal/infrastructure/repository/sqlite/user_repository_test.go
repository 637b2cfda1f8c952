package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playforge/arcade-api/internal/domain/score"
	"github.com/playforge/arcade-api/internal/domain/season"
	"github.com/playforge/arcade-api/internal/domain/user"
)

// newTestStore opens a throwaway database and applies the real migration, so
// the tests run against the schema the service ships with.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(Options{Path: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "db", "migrations", "0001_init.up.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if _, err := store.DB().Exec(string(schema)); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	return store
}

func seedUser(t *testing.T, repo *UserRepository, gameID, telegramID string, registered time.Time) {
	t.Helper()

	err := repo.Create(context.Background(), user.User{
		GameID:           gameID,
		GameUsername:     "player_" + gameID,
		TelegramID:       telegramID,
		RegistrationDate: registered,
		LastLogin:        registered,
		MusicEnabled:     true,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", gameID, err)
	}
}

func TestUserRepository_List_FirstPageStartsAtFirstRow(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	repo := NewUserRepository(store)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedUser(t, repo, "1000000001", "", base)
	seedUser(t, repo, "1000000002", "", base.Add(time.Hour))
	seedUser(t, repo, "1000000003", "", base.Add(2*time.Hour))

	page1, total, err := repo.List(ctx, user.ListFilter{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if total != 3 {
		t.Fatalf("expected total 3, got %d", total)
	}
	if len(page1) != 2 {
		t.Fatalf("expected 2 users on page 1, got %d", len(page1))
	}
	// Newest registration first.
	if page1[0].GameID != "1000000003" || page1[1].GameID != "1000000002" {
		t.Fatalf("unexpected page 1 order: %s, %s", page1[0].GameID, page1[1].GameID)
	}

	page2, _, err := repo.List(ctx, user.ListFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2) != 1 {
		t.Fatalf("expected 1 user on page 2, got %d", len(page2))
	}
	if page2[0].GameID != "1000000001" {
		t.Fatalf("page 2 skipped rows, got %s", page2[0].GameID)
	}
}

func TestUserRepository_List_NoLimitReturnsEverything(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	repo := NewUserRepository(store)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedUser(t, repo, "1000000001", "", base)
	seedUser(t, repo, "1000000002", "", base.Add(time.Hour))

	users, total, err := repo.List(context.Background(), user.ListFilter{Page: 1})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(users) != 2 {
		t.Fatalf("expected all 2 users, got total=%d returned=%d", total, len(users))
	}
}

func TestUserRepository_DeleteAnonymous_CascadesScoresAndWinner(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	userRepo := NewUserRepository(store)
	seasonRepo := NewSeasonRepository(store)
	scoreRepo := NewScoreRepository(store)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedUser(t, userRepo, "1000000001", "", base)
	seedUser(t, userRepo, "1000000002", "tg-2", base.Add(time.Hour))

	created, err := seasonRepo.Create(ctx, season.Season{
		SeasonNumber: 1,
		StartDate:    base,
		EndDate:      base.AddDate(0, 1, 0),
		IsActive:     true,
		WinnerID:     "1000000001",
	})
	if err != nil {
		t.Fatalf("seed season: %v", err)
	}
	if _, err := scoreRepo.Create(ctx, score.SeasonScore{UserID: "1000000001", SeasonID: created.ID, Score: 10}); err != nil {
		t.Fatalf("seed anonymous score: %v", err)
	}
	if _, err := scoreRepo.Create(ctx, score.SeasonScore{UserID: "1000000002", SeasonID: created.ID, Score: 20}); err != nil {
		t.Fatalf("seed identified score: %v", err)
	}

	purged, err := userRepo.DeleteAnonymous(ctx)
	if err != nil {
		t.Fatalf("delete anonymous: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected 1 purged user, got %d", purged)
	}

	if _, exists, err := userRepo.GetByGameID(ctx, "1000000001"); err != nil || exists {
		t.Fatalf("anonymous user should be gone (exists=%v, err=%v)", exists, err)
	}
	if _, exists, err := scoreRepo.Get(ctx, created.ID, "1000000001"); err != nil || exists {
		t.Fatalf("anonymous score should be gone (exists=%v, err=%v)", exists, err)
	}
	if _, exists, err := scoreRepo.Get(ctx, created.ID, "1000000002"); err != nil || !exists {
		t.Fatalf("identified score should survive (exists=%v, err=%v)", exists, err)
	}

	after, found, err := seasonRepo.GetByID(ctx, created.ID)
	if err != nil || !found {
		t.Fatalf("season should survive (found=%v, err=%v)", found, err)
	}
	if after.WinnerID != "" {
		t.Fatalf("winner reference should be cleared, got %q", after.WinnerID)
	}
}
