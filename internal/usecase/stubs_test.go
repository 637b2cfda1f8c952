package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/playforge/arcade-api/internal/domain/score"
	"github.com/playforge/arcade-api/internal/domain/season"
	"github.com/playforge/arcade-api/internal/domain/settings"
	"github.com/playforge/arcade-api/internal/domain/user"
)

// passthroughTxRunner runs fn directly; the stub repos mutate in-memory
// state, so there is nothing to roll back.
type passthroughTxRunner struct{}

func (passthroughTxRunner) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type staticIDGenerator struct {
	gameID   string
	suffix   string
	fileName string
}

func (g staticIDGenerator) NewGameID() (string, error) { return g.gameID, nil }

func (g staticIDGenerator) NewGuestSuffix() (string, error) { return g.suffix, nil }
func (g staticIDGenerator) NewFileName(ext string) (string, error) {
	return g.fileName + ext, nil
}

type inMemoryUserRepo struct {
	users map[string]user.User
	order []string
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[string]user.User)}
}

func (r *inMemoryUserRepo) GetByGameID(_ context.Context, gameID string) (user.User, bool, error) {
	item, ok := r.users[gameID]
	return item, ok, nil
}

func (r *inMemoryUserRepo) GetByTelegramID(_ context.Context, telegramID string) (user.User, bool, error) {
	for _, gameID := range r.order {
		if r.users[gameID].TelegramID == telegramID {
			return r.users[gameID], true, nil
		}
	}
	return user.User{}, false, nil
}

func (r *inMemoryUserRepo) GetByDeviceID(_ context.Context, deviceID string) (user.User, bool, error) {
	for _, gameID := range r.order {
		if r.users[gameID].DeviceID == deviceID {
			return r.users[gameID], true, nil
		}
	}
	return user.User{}, false, nil
}

func (r *inMemoryUserRepo) ListByTelegramID(_ context.Context, telegramID string) ([]user.User, error) {
	out := make([]user.User, 0, 2)
	for _, gameID := range r.order {
		if r.users[gameID].TelegramID == telegramID {
			out = append(out, r.users[gameID])
		}
	}
	return out, nil
}

func (r *inMemoryUserRepo) GetByLocalKey(_ context.Context, gameID, deviceID string) (user.User, bool, error) {
	for _, id := range r.order {
		item := r.users[id]
		if (gameID != "" && item.GameID == gameID) || (deviceID != "" && item.DeviceID == deviceID) {
			return item, true, nil
		}
	}
	return user.User{}, false, nil
}

func (r *inMemoryUserRepo) List(_ context.Context, filter user.ListFilter) ([]user.User, int, error) {
	matched := make([]user.User, 0, len(r.order))
	for _, id := range r.order {
		item := r.users[id]
		if filter.Search != "" &&
			!strings.Contains(item.GameID, filter.Search) &&
			!strings.Contains(item.GameUsername, filter.Search) &&
			!strings.Contains(item.TelegramID, filter.Search) &&
			!strings.Contains(item.TelegramUsername, filter.Search) &&
			!strings.Contains(item.PaypalEmail, filter.Search) {
			continue
		}
		matched = append(matched, item)
	}

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start >= total {
		return []user.User{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *inMemoryUserRepo) ListTelegramIDs(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if r.users[id].TelegramID != "" {
			out = append(out, r.users[id].TelegramID)
		}
	}
	return out, nil
}

func (r *inMemoryUserRepo) Create(_ context.Context, u user.User) error {
	r.users[u.GameID] = u
	r.order = append(r.order, u.GameID)
	return nil
}

func (r *inMemoryUserRepo) Update(_ context.Context, u user.User) error {
	r.users[u.GameID] = u
	return nil
}

func (r *inMemoryUserRepo) Delete(_ context.Context, gameID string) error {
	delete(r.users, gameID)
	for i, id := range r.order {
		if id == gameID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *inMemoryUserRepo) DeleteAnonymous(_ context.Context) (int, error) {
	removed := 0
	for _, id := range append([]string(nil), r.order...) {
		if r.users[id].TelegramID == "" {
			_ = r.Delete(context.Background(), id)
			removed++
		}
	}
	return removed, nil
}

func (r *inMemoryUserRepo) AddScoretotal(_ context.Context, gameID string, delta int) error {
	item := r.users[gameID]
	item.Scoretotal += delta
	r.users[gameID] = item
	return nil
}

type inMemorySeasonRepo struct {
	seasons map[int64]season.Season
	nextID  int64
}

func newInMemorySeasonRepo() *inMemorySeasonRepo {
	return &inMemorySeasonRepo{seasons: make(map[int64]season.Season)}
}

func (r *inMemorySeasonRepo) Create(_ context.Context, s season.Season) (season.Season, error) {
	r.nextID++
	s.ID = r.nextID
	r.seasons[s.ID] = s
	return s, nil
}

func (r *inMemorySeasonRepo) GetByID(_ context.Context, id int64) (season.Season, bool, error) {
	item, ok := r.seasons[id]
	return item, ok, nil
}

func (r *inMemorySeasonRepo) GetActive(_ context.Context) (season.Season, bool, error) {
	var best season.Season
	found := false
	for _, item := range r.seasons {
		if item.IsActive && !item.IsClosed && (!found || item.ID > best.ID) {
			best = item
			found = true
		}
	}
	return best, found, nil
}

func (r *inMemorySeasonRepo) List(_ context.Context) ([]season.Season, error) {
	out := make([]season.Season, 0, len(r.seasons))
	for _, item := range r.seasons {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *inMemorySeasonRepo) Update(_ context.Context, s season.Season) error {
	r.seasons[s.ID] = s
	return nil
}

func (r *inMemorySeasonRepo) Delete(_ context.Context, id int64) error {
	delete(r.seasons, id)
	return nil
}

func (r *inMemorySeasonRepo) ClearWinner(_ context.Context, userID string) error {
	for id, item := range r.seasons {
		if item.WinnerID == userID {
			item.WinnerID = ""
			r.seasons[id] = item
		}
	}
	return nil
}

// inMemoryScoreRepo shares the user repo so leaderboard projections can join
// display attributes the way the SQL read model does.
type inMemoryScoreRepo struct {
	rows   []score.SeasonScore
	nextID int64
	users  *inMemoryUserRepo
}

func newInMemoryScoreRepo(users *inMemoryUserRepo) *inMemoryScoreRepo {
	return &inMemoryScoreRepo{users: users}
}

func (r *inMemoryScoreRepo) Get(_ context.Context, seasonID int64, userID string) (score.SeasonScore, bool, error) {
	for _, row := range r.rows {
		if row.SeasonID == seasonID && row.UserID == userID {
			return row, true, nil
		}
	}
	return score.SeasonScore{}, false, nil
}

func (r *inMemoryScoreRepo) Create(_ context.Context, s score.SeasonScore) (score.SeasonScore, error) {
	r.nextID++
	s.ID = r.nextID
	r.rows = append(r.rows, s)
	return s, nil
}

func (r *inMemoryScoreRepo) SetScore(_ context.Context, id int64, value int) error {
	for i, row := range r.rows {
		if row.ID == id {
			r.rows[i].Score = value
			return nil
		}
	}
	return nil
}

func (r *inMemoryScoreRepo) CountGreater(_ context.Context, seasonID int64, than int) (int, error) {
	count := 0
	for _, row := range r.rows {
		if row.SeasonID == seasonID && row.Score > than {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryScoreRepo) CountBySeason(_ context.Context, seasonID int64) (int, error) {
	count := 0
	for _, row := range r.rows {
		if row.SeasonID == seasonID {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryScoreRepo) TopBySeason(_ context.Context, seasonID int64) (score.SeasonScore, bool, error) {
	ordered := r.orderedBySeason(seasonID)
	if len(ordered) == 0 {
		return score.SeasonScore{}, false, nil
	}
	return ordered[0], true, nil
}

func (r *inMemoryScoreRepo) ListPage(_ context.Context, seasonID int64, offset, limit int) ([]score.LeaderboardEntry, error) {
	ordered := r.orderedBySeason(seasonID)
	if offset >= len(ordered) {
		return []score.LeaderboardEntry{}, nil
	}
	end := offset + limit
	if end > len(ordered) {
		end = len(ordered)
	}

	out := make([]score.LeaderboardEntry, 0, end-offset)
	for _, row := range ordered[offset:end] {
		entry := score.LeaderboardEntry{UserID: row.UserID, Score: row.Score}
		if owner, ok := r.users.users[row.UserID]; ok {
			entry.Username = owner.GameUsername
			entry.AvatarSrc = owner.AvatarSrc
		}
		out = append(out, entry)
	}
	return out, nil
}

func (r *inMemoryScoreRepo) GlobalBest(_ context.Context, limit int) ([]score.LeaderboardEntry, error) {
	out := make([]score.LeaderboardEntry, 0, len(r.users.order))
	for _, id := range r.users.order {
		item := r.users.users[id]
		out = append(out, score.LeaderboardEntry{
			UserID:    item.GameID,
			Username:  item.GameUsername,
			AvatarSrc: item.AvatarSrc,
			Score:     item.BestScore,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryScoreRepo) DeleteBySeason(_ context.Context, seasonID int64) error {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.SeasonID != seasonID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *inMemoryScoreRepo) DeleteByUser(_ context.Context, userID string) error {
	kept := r.rows[:0]
	for _, row := range r.rows {
		if row.UserID != userID {
			kept = append(kept, row)
		}
	}
	r.rows = kept
	return nil
}

func (r *inMemoryScoreRepo) orderedBySeason(seasonID int64) []score.SeasonScore {
	out := make([]score.SeasonScore, 0, len(r.rows))
	for _, row := range r.rows {
		if row.SeasonID == seasonID {
			out = append(out, row)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}

type inMemorySettingsRepo struct {
	link   settings.HowToPlayLink
	banner settings.PromoBanner
}

func (r *inMemorySettingsRepo) GetHowToPlayLink(_ context.Context) (settings.HowToPlayLink, error) {
	return r.link, nil
}

func (r *inMemorySettingsRepo) SetHowToPlayLink(_ context.Context, link settings.HowToPlayLink) error {
	r.link = link
	return nil
}

func (r *inMemorySettingsRepo) GetPromoBanner(_ context.Context) (settings.PromoBanner, error) {
	return r.banner, nil
}

func (r *inMemorySettingsRepo) SetPromoBanner(_ context.Context, banner settings.PromoBanner) error {
	r.banner = banner
	return nil
}
