package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/playforge/arcade-api/internal/domain/score"
	"github.com/playforge/arcade-api/internal/domain/season"
	"github.com/playforge/arcade-api/internal/domain/user"
	"github.com/playforge/arcade-api/internal/platform/logging"
)

const testDefaultAvatar = "/avatars/default.png"

func newUserServiceForTest(
	userRepo *inMemoryUserRepo,
	seasonRepo *inMemorySeasonRepo,
	scoreRepo *inMemoryScoreRepo,
) *UserService {
	return NewUserService(
		userRepo,
		seasonRepo,
		scoreRepo,
		passthroughTxRunner{},
		staticIDGenerator{gameID: "1234567890", suffix: "0042"},
		testDefaultAvatar,
		logging.NewNop(),
	)
}

func TestUserService_Upsert_CreatesUser(t *testing.T) {
	t.Parallel()

	userRepo := newInMemoryUserRepo()
	seasonRepo := newInMemorySeasonRepo()
	scoreRepo := newInMemoryScoreRepo(userRepo)
	active, _ := seasonRepo.Create(t.Context(), season.Season{SeasonNumber: 1, IsActive: true})

	service := newUserServiceForTest(userRepo, seasonRepo, scoreRepo)

	result, err := service.Upsert(t.Context(), UpsertUserInput{
		TelegramID:  "100",
		SeasonScore: 50,
	})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if !result.Created {
		t.Fatalf("expected created=true for a new identity")
	}
	if result.User.GameID != "1234567890" {
		t.Fatalf("expected generated game id, got %s", result.User.GameID)
	}
	if result.User.GameUsername != "player_0042" {
		t.Fatalf("expected placeholder username, got %s", result.User.GameUsername)
	}
	if !result.User.MusicEnabled {
		t.Fatalf("expected music enabled by default")
	}
	if result.SeasonData == nil {
		t.Fatalf("expected a season score row for the active season")
	}
	if result.SeasonData.SeasonID != active.ID || result.SeasonData.Score != 50 {
		t.Fatalf("unexpected season data: %+v", result.SeasonData)
	}
}

func TestUserService_Upsert_RequiresIdentity(t *testing.T) {
	t.Parallel()

	userRepo := newInMemoryUserRepo()
	service := newUserServiceForTest(userRepo, newInMemorySeasonRepo(), newInMemoryScoreRepo(userRepo))

	_, err := service.Upsert(t.Context(), UpsertUserInput{GameUsername: "nameless"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUserService_Upsert_Idempotent(t *testing.T) {
	t.Parallel()

	userRepo := newInMemoryUserRepo()
	seasonRepo := newInMemorySeasonRepo()
	scoreRepo := newInMemoryScoreRepo(userRepo)
	service := newUserServiceForTest(userRepo, seasonRepo, scoreRepo)

	payload := UpsertUserInput{TelegramID: "100", GameUsername: "alice"}

	first, err := service.Upsert(t.Context(), payload)
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second, err := service.Upsert(t.Context(), payload)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if !first.Created || second.Created {
		t.Fatalf("expected created then updated, got %v then %v", first.Created, second.Created)
	}
	if len(userRepo.users) != 1 {
		t.Fatalf("expected exactly one user row, got %d", len(userRepo.users))
	}
	if second.User.GameID != first.User.GameID {
		t.Fatalf("expected the same canonical row, got %s then %s", first.User.GameID, second.User.GameID)
	}
}

func TestUserService_Upsert_CollapsesDuplicates(t *testing.T) {
	t.Parallel()

	userRepo := newInMemoryUserRepo()
	seasonRepo := newInMemorySeasonRepo()
	scoreRepo := newInMemoryScoreRepo(userRepo)
	_ = userRepo.Create(t.Context(), user.User{GameID: "older", TelegramID: "100", BestScore: 10})
	_ = userRepo.Create(t.Context(), user.User{GameID: "newer", TelegramID: "100", BestScore: 99})
	_, _ = scoreRepo.Create(t.Context(), score.SeasonScore{UserID: "newer", SeasonID: 7, Score: 30})

	service := newUserServiceForTest(userRepo, seasonRepo, scoreRepo)

	result, err := service.Upsert(t.Context(), UpsertUserInput{TelegramID: "100"})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if result.Created {
		t.Fatalf("expected an update of the canonical row")
	}
	if result.User.GameID != "older" {
		t.Fatalf("expected the oldest row to survive, got %s", result.User.GameID)
	}
	if _, ok := userRepo.users["newer"]; ok {
		t.Fatalf("expected the duplicate row to be deleted")
	}
	if got, _ := scoreRepo.CountBySeason(t.Context(), 7); got != 0 {
		t.Fatalf("expected the duplicate's score rows to be deleted, %d remain", got)
	}
}

func TestUserService_Upsert_MonotonicScores(t *testing.T) {
	t.Parallel()

	userRepo := newInMemoryUserRepo()
	seasonRepo := newInMemorySeasonRepo()
	scoreRepo := newInMemoryScoreRepo(userRepo)
	active, _ := seasonRepo.Create(t.Context(), season.Season{SeasonNumber: 1, IsActive: true})

	service := newUserServiceForTest(userRepo, seasonRepo, scoreRepo)

	if _, err := service.Upsert(t.Context(), UpsertUserInput{TelegramID: "100", BestScore: 80, SeasonScore: 60}); err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}

	result, err := service.Upsert(t.Context(), UpsertUserInput{TelegramID: "100", BestScore: 40, SeasonScore: 30})
	if err != nil {
		t.Fatalf("lower upsert failed: %v", err)
	}
	if result.User.BestScore != 80 {
		t.Fatalf("bestScore must never decrease, got %d", result.User.BestScore)
	}
	if result.SeasonData.Score != 60 {
		t.Fatalf("season score must never decrease via upsert, got %d", result.SeasonData.Score)
	}

	result, err = service.Upsert(t.Context(), UpsertUserInput{TelegramID: "100", BestScore: 95, SeasonScore: 70})
	if err != nil {
		t.Fatalf("higher upsert failed: %v", err)
	}
	if result.User.BestScore != 95 || result.SeasonData.Score != 70 {
		t.Fatalf("expected raised scores 95/70, got %d/%d", result.User.BestScore, result.SeasonData.Score)
	}

	row, found, _ := scoreRepo.Get(t.Context(), active.ID, result.User.GameID)
	if !found || row.Score != 70 {
		t.Fatalf("unexpected stored season score: found=%v row=%+v", found, row)
	}
}

func TestUserService_Upsert_PurgesAnonymousRows(t *testing.T) {
	t.Parallel()

	userRepo := newInMemoryUserRepo()
	seasonRepo := newInMemorySeasonRepo()
	scoreRepo := newInMemoryScoreRepo(userRepo)
	_ = userRepo.Create(t.Context(), user.User{GameID: "ghost", DeviceID: "device-1"})
	_ = userRepo.Create(t.Context(), user.User{GameID: "known", TelegramID: "100"})

	service := newUserServiceForTest(userRepo, seasonRepo, scoreRepo)

	if _, err := service.Upsert(t.Context(), UpsertUserInput{TelegramID: "100"}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if _, ok := userRepo.users["ghost"]; ok {
		t.Fatalf("expected anonymous row to be purged after a telegram-identified upsert")
	}
	if _, ok := userRepo.users["known"]; !ok {
		t.Fatalf("canonical row must survive the purge")
	}
}

func TestUserService_Upsert_LocalKeyDoesNotPurge(t *testing.T) {
	t.Parallel()

	userRepo := newInMemoryUserRepo()
	seasonRepo := newInMemorySeasonRepo()
	scoreRepo := newInMemoryScoreRepo(userRepo)
	_ = userRepo.Create(t.Context(), user.User{GameID: "ghost", DeviceID: "device-1"})
	_ = userRepo.Create(t.Context(), user.User{GameID: "other", DeviceID: "device-2"})

	service := newUserServiceForTest(userRepo, seasonRepo, scoreRepo)

	result, err := service.Upsert(t.Context(), UpsertUserInput{DeviceID: "device-1", GameUsername: "bob"})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if result.Created {
		t.Fatalf("expected a device-id match, not a creation")
	}
	if len(userRepo.users) != 2 {
		t.Fatalf("device-keyed upsert must not purge anonymous rows, %d remain", len(userRepo.users))
	}
}

func TestUserService_Upsert_AvatarReplaceRules(t *testing.T) {
	t.Parallel()

	userRepo := newInMemoryUserRepo()
	seasonRepo := newInMemorySeasonRepo()
	scoreRepo := newInMemoryScoreRepo(userRepo)
	_ = userRepo.Create(t.Context(), user.User{GameID: "u1", TelegramID: "100", AvatarSrc: "cat.png"})

	service := newUserServiceForTest(userRepo, seasonRepo, scoreRepo)

	result, err := service.Upsert(t.Context(), UpsertUserInput{TelegramID: "100", AvatarSrc: testDefaultAvatar})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if result.User.AvatarSrc != "cat.png" {
		t.Fatalf("default placeholder must not overwrite a real avatar, got %s", result.User.AvatarSrc)
	}

	result, err = service.Upsert(t.Context(), UpsertUserInput{TelegramID: "100", AvatarSrc: "dog.png"})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	if result.User.AvatarSrc != "dog.png" {
		t.Fatalf("expected avatar replaced with dog.png, got %s", result.User.AvatarSrc)
	}
}

func TestUserService_Delete_Cascades(t *testing.T) {
	t.Parallel()

	userRepo := newInMemoryUserRepo()
	seasonRepo := newInMemorySeasonRepo()
	scoreRepo := newInMemoryScoreRepo(userRepo)
	_ = userRepo.Create(t.Context(), user.User{GameID: "champ", TelegramID: "100"})
	closed, _ := seasonRepo.Create(t.Context(), season.Season{SeasonNumber: 1, IsClosed: true, WinnerID: "champ"})
	_, _ = scoreRepo.Create(t.Context(), score.SeasonScore{UserID: "champ", SeasonID: closed.ID, Score: 40})

	service := newUserServiceForTest(userRepo, seasonRepo, scoreRepo)

	if err := service.Delete(t.Context(), "champ"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := service.GetByGameID(t.Context(), "champ"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if got, _ := scoreRepo.CountBySeason(t.Context(), closed.ID); got != 0 {
		t.Fatalf("expected score rows to be cascaded, %d remain", got)
	}
	stored, _, _ := seasonRepo.GetByID(t.Context(), closed.ID)
	if stored.WinnerID != "" {
		t.Fatalf("expected winner reference cleared, got %q", stored.WinnerID)
	}

	if err := service.Delete(t.Context(), "champ"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUserService_AddScoretotal_ResolvesTelegramThenDevice(t *testing.T) {
	t.Parallel()

	userRepo := newInMemoryUserRepo()
	seasonRepo := newInMemorySeasonRepo()
	scoreRepo := newInMemoryScoreRepo(userRepo)
	_ = userRepo.Create(t.Context(), user.User{GameID: "u1", TelegramID: "555", Scoretotal: 10})
	_ = userRepo.Create(t.Context(), user.User{GameID: "u2", DeviceID: "555-device", Scoretotal: 3})

	service := newUserServiceForTest(userRepo, seasonRepo, scoreRepo)

	byTelegram, err := service.AddScoretotal(t.Context(), "555", 5)
	if err != nil {
		t.Fatalf("add scoretotal failed: %v", err)
	}
	if byTelegram.GameID != "u1" || byTelegram.Scoretotal != 15 {
		t.Fatalf("expected u1 at 15, got %s at %d", byTelegram.GameID, byTelegram.Scoretotal)
	}

	byDevice, err := service.AddScoretotal(t.Context(), "555-device", 2)
	if err != nil {
		t.Fatalf("add scoretotal failed: %v", err)
	}
	if byDevice.GameID != "u2" || byDevice.Scoretotal != 5 {
		t.Fatalf("expected u2 at 5, got %s at %d", byDevice.GameID, byDevice.Scoretotal)
	}

	if _, err := service.AddScoretotal(t.Context(), "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.AddScoretotal(t.Context(), "555", 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for non-positive delta, got %v", err)
	}
}

func TestUserService_Preferences(t *testing.T) {
	t.Parallel()

	userRepo := newInMemoryUserRepo()
	seasonRepo := newInMemorySeasonRepo()
	scoreRepo := newInMemoryScoreRepo(userRepo)
	_ = userRepo.Create(t.Context(), user.User{GameID: "u1", MusicEnabled: true, LastLogin: time.Now()})

	service := newUserServiceForTest(userRepo, seasonRepo, scoreRepo)

	prefs, err := service.SetPreferences(t.Context(), "u1", user.Preferences{MusicEnabled: false})
	if err != nil {
		t.Fatalf("set preferences failed: %v", err)
	}
	if prefs.MusicEnabled {
		t.Fatalf("expected music disabled")
	}

	got, err := service.GetPreferences(t.Context(), "u1")
	if err != nil {
		t.Fatalf("get preferences failed: %v", err)
	}
	if got.MusicEnabled {
		t.Fatalf("expected stored music preference to be false")
	}
}
