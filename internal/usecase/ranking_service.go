package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/playforge/arcade-api/internal/domain/score"
	"github.com/playforge/arcade-api/internal/domain/season"
)

const (
	maxLeaderboardLimit   = 15
	defaultGlobalLimit    = 100
	maxGlobalRankingLimit = 1000
)

type UserPosition struct {
	UserID string
	// Rank is the 1-based dense rank; valid only when Ranked is true.
	Rank   int
	Score  int
	Ranked bool
}

type LeaderboardPage struct {
	Items      []score.LeaderboardEntry
	Page       int
	Limit      int
	TotalCount int
	Offset     int
	HasMore    bool
}

type RankingService struct {
	seasonRepo    season.Repository
	scoreRepo     score.Repository
	tx            TxRunner
	avatarDir     string
	defaultAvatar string
}

func NewRankingService(
	seasonRepo season.Repository,
	scoreRepo score.Repository,
	tx TxRunner,
	avatarDir string,
	defaultAvatar string,
) *RankingService {
	return &RankingService{
		seasonRepo:    seasonRepo,
		scoreRepo:     scoreRepo,
		tx:            tx,
		avatarDir:     strings.TrimRight(avatarDir, "/"),
		defaultAvatar: defaultAvatar,
	}
}

// UserPosition reports the user's dense rank inside a season: one plus the
// number of strictly greater scores, so tied users share a rank. A user
// without a score row is not an error; the result carries Ranked=false.
func (s *RankingService) UserPosition(ctx context.Context, seasonID int64, userID string) (UserPosition, error) {
	ctx, span := startUsecaseSpan(ctx, "RankingService.UserPosition")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return UserPosition{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if err := s.requireSeason(ctx, seasonID); err != nil {
		return UserPosition{}, err
	}

	row, found, err := s.scoreRepo.Get(ctx, seasonID, userID)
	if err != nil {
		return UserPosition{}, fmt.Errorf("get season score: %w", err)
	}
	if !found {
		return UserPosition{UserID: userID}, nil
	}

	greater, err := s.scoreRepo.CountGreater(ctx, seasonID, row.Score)
	if err != nil {
		return UserPosition{}, fmt.Errorf("count greater scores: %w", err)
	}

	return UserPosition{
		UserID: userID,
		Rank:   greater + 1,
		Score:  row.Score,
		Ranked: true,
	}, nil
}

// Leaderboard returns one page of the season's score ordering, highest
// first, joined to each owner's display name and avatar. hasMore is computed
// against the total count so an exact page-size multiple does not report a
// phantom extra page.
func (s *RankingService) Leaderboard(ctx context.Context, seasonID int64, page, limit int) (LeaderboardPage, error) {
	ctx, span := startUsecaseSpan(ctx, "RankingService.Leaderboard")
	defer span.End()

	if page < 0 {
		return LeaderboardPage{}, fmt.Errorf("%w: page must not be negative", ErrInvalidInput)
	}
	if limit < 1 || limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	if err := s.requireSeason(ctx, seasonID); err != nil {
		return LeaderboardPage{}, err
	}

	totalCount, err := s.scoreRepo.CountBySeason(ctx, seasonID)
	if err != nil {
		return LeaderboardPage{}, fmt.Errorf("count season scores: %w", err)
	}

	offset := page * limit
	items, err := s.scoreRepo.ListPage(ctx, seasonID, offset, limit)
	if err != nil {
		return LeaderboardPage{}, fmt.Errorf("list leaderboard page: %w", err)
	}
	if items == nil {
		items = []score.LeaderboardEntry{}
	}
	for i := range items {
		items[i].AvatarSrc = s.normalizeAvatar(items[i].AvatarSrc)
	}

	return LeaderboardPage{
		Items:      items,
		Page:       page,
		Limit:      limit,
		TotalCount: totalCount,
		Offset:     offset,
		HasMore:    offset+len(items) < totalCount,
	}, nil
}

// GlobalRanking lists all-time best scores across users, highest first.
func (s *RankingService) GlobalRanking(ctx context.Context, limit int) ([]score.LeaderboardEntry, error) {
	ctx, span := startUsecaseSpan(ctx, "RankingService.GlobalRanking")
	defer span.End()

	if limit < 1 {
		limit = defaultGlobalLimit
	}
	if limit > maxGlobalRankingLimit {
		limit = maxGlobalRankingLimit
	}

	items, err := s.scoreRepo.GlobalBest(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list global ranking: %w", err)
	}
	if items == nil {
		items = []score.LeaderboardEntry{}
	}
	for i := range items {
		items[i].AvatarSrc = s.normalizeAvatar(items[i].AvatarSrc)
	}
	return items, nil
}

func (s *RankingService) GetScore(ctx context.Context, seasonID int64, userID string) (score.SeasonScore, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return score.SeasonScore{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if err := s.requireSeason(ctx, seasonID); err != nil {
		return score.SeasonScore{}, err
	}

	row, found, err := s.scoreRepo.Get(ctx, seasonID, userID)
	if err != nil {
		return score.SeasonScore{}, fmt.Errorf("get season score: %w", err)
	}
	if !found {
		return score.SeasonScore{}, fmt.Errorf("%w: no score for user %s in season %d", ErrNotFound, userID, seasonID)
	}
	return row, nil
}

// SetScore find-or-creates the user's score row and raises it when the new
// value is strictly greater. Lowering goes through ResetScore.
func (s *RankingService) SetScore(ctx context.Context, seasonID int64, userID string, value int) (score.SeasonScore, error) {
	if value < 0 {
		return score.SeasonScore{}, fmt.Errorf("%w: score must not be negative", ErrInvalidInput)
	}
	return s.writeScore(ctx, seasonID, userID, value, false)
}

// ResetScore forces the user's season score to exactly zero.
func (s *RankingService) ResetScore(ctx context.Context, seasonID int64, userID string) (score.SeasonScore, error) {
	return s.writeScore(ctx, seasonID, userID, 0, true)
}

func (s *RankingService) writeScore(ctx context.Context, seasonID int64, userID string, value int, force bool) (score.SeasonScore, error) {
	ctx, span := startUsecaseSpan(ctx, "RankingService.writeScore")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return score.SeasonScore{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if err := s.requireSeason(ctx, seasonID); err != nil {
		return score.SeasonScore{}, err
	}

	var out score.SeasonScore
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		row, found, err := s.scoreRepo.Get(ctx, seasonID, userID)
		if err != nil {
			return fmt.Errorf("get season score: %w", err)
		}
		if !found {
			row, err = s.scoreRepo.Create(ctx, score.SeasonScore{
				UserID:   userID,
				SeasonID: seasonID,
				Score:    value,
			})
			if err != nil {
				return fmt.Errorf("create season score: %w", err)
			}
			out = row
			return nil
		}

		if force || value > row.Score {
			if err := s.scoreRepo.SetScore(ctx, row.ID, value); err != nil {
				return fmt.Errorf("set season score: %w", err)
			}
			row.Score = value
		}
		out = row
		return nil
	})
	if err != nil {
		return score.SeasonScore{}, err
	}
	return out, nil
}

func (s *RankingService) requireSeason(ctx context.Context, seasonID int64) error {
	if seasonID <= 0 {
		return fmt.Errorf("%w: season id must be greater than zero", ErrInvalidInput)
	}
	_, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: season %d", ErrNotFound, seasonID)
	}
	return nil
}

// normalizeAvatar maps stored avatar values to servable paths: empty becomes
// the default asset, bare filenames gain the avatar directory prefix, and
// absolute paths or external URLs pass through untouched.
func (s *RankingService) normalizeAvatar(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return s.defaultAvatar
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") || strings.HasPrefix(value, "/") {
		return value
	}
	return s.avatarDir + "/" + value
}
