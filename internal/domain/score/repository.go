package score

import "context"

type Repository interface {
	Get(ctx context.Context, seasonID int64, userID string) (SeasonScore, bool, error)
	Create(ctx context.Context, s SeasonScore) (SeasonScore, error)
	SetScore(ctx context.Context, id int64, value int) error
	// CountGreater counts rows in the season with a strictly greater score.
	// The 1-based dense rank of a user is that count plus one.
	CountGreater(ctx context.Context, seasonID int64, than int) (int, error)
	CountBySeason(ctx context.Context, seasonID int64) (int, error)
	// TopBySeason returns the highest-scored row, ties broken by row id.
	TopBySeason(ctx context.Context, seasonID int64) (SeasonScore, bool, error)
	ListPage(ctx context.Context, seasonID int64, offset, limit int) ([]LeaderboardEntry, error)
	GlobalBest(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	DeleteBySeason(ctx context.Context, seasonID int64) error
	DeleteByUser(ctx context.Context, userID string) error
}
