package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playforge/arcade-api/internal/domain/score"
	qb "github.com/playforge/arcade-api/internal/platform/querybuilder"
)

type ScoreRepository struct {
	store *Store
}

func NewScoreRepository(store *Store) *ScoreRepository {
	return &ScoreRepository{store: store}
}

func (r *ScoreRepository) Get(ctx context.Context, seasonID int64, userID string) (score.SeasonScore, bool, error) {
	query, args, err := qb.Select("*").From("season_scores").
		Where(qb.Eq("season_id", seasonID), qb.Eq("user_id", userID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return score.SeasonScore{}, false, fmt.Errorf("build get season score query: %w", err)
	}

	var row seasonScoreTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, args...); err != nil {
		if isNotFound(err) {
			return score.SeasonScore{}, false, nil
		}
		return score.SeasonScore{}, false, fmt.Errorf("get season score: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *ScoreRepository) Create(ctx context.Context, s score.SeasonScore) (score.SeasonScore, error) {
	model := seasonScoreInsertModel{
		UserID:   s.UserID,
		SeasonID: s.SeasonID,
		Score:    s.Score,
	}
	query, args, err := qb.InsertModel("season_scores", model, "")
	if err != nil {
		return score.SeasonScore{}, fmt.Errorf("build insert season score query: %w", err)
	}
	res, err := r.store.ext(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return score.SeasonScore{}, fmt.Errorf("insert season score: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return score.SeasonScore{}, fmt.Errorf("insert season score id: %w", err)
	}
	s.ID = id
	return s, nil
}

func (r *ScoreRepository) SetScore(ctx context.Context, id int64, value int) error {
	query, args, err := qb.Update("season_scores").
		Set("score", value).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set season score query: %w", err)
	}
	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set season score: %w", err)
	}
	return nil
}

// CountGreater backs the rank computation: rank = 1 + count of strictly
// greater scores. A single indexed COUNT beats sorting the whole season for
// one lookup.
func (r *ScoreRepository) CountGreater(ctx context.Context, seasonID int64, than int) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("season_scores").
		Where(qb.Eq("season_id", seasonID), qb.Gt("score", than)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count greater scores query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &count, query, args...); err != nil {
		return 0, fmt.Errorf("count greater scores: %w", err)
	}
	return count, nil
}

func (r *ScoreRepository) CountBySeason(ctx context.Context, seasonID int64) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("season_scores").
		Where(qb.Eq("season_id", seasonID)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count season scores query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &count, query, args...); err != nil {
		return 0, fmt.Errorf("count season scores: %w", err)
	}
	return count, nil
}

func (r *ScoreRepository) TopBySeason(ctx context.Context, seasonID int64) (score.SeasonScore, bool, error) {
	query, args, err := qb.Select("*").From("season_scores").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("score DESC", "id ASC").
		Limit(1).
		ToSQL()
	if err != nil {
		return score.SeasonScore{}, false, fmt.Errorf("build top season score query: %w", err)
	}

	var row seasonScoreTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, args...); err != nil {
		if isNotFound(err) {
			return score.SeasonScore{}, false, nil
		}
		return score.SeasonScore{}, false, fmt.Errorf("top season score: %w", err)
	}
	return row.toDomain(), true, nil
}

// ListPage joins score rows to user display attributes in one query so a
// leaderboard page stays O(page size). Ordering is score descending with id
// as the stable tiebreaker, which keeps adjacent pages free of duplicates.
func (r *ScoreRepository) ListPage(ctx context.Context, seasonID int64, offset, limit int) ([]score.LeaderboardEntry, error) {
	query, args, err := qb.Select("s.user_id", "s.score", "u.game_username", "u.avatar_src").
		From("season_scores s").
		LeftJoin("users u", "u.game_id = s.user_id").
		Where(qb.Eq("s.season_id", seasonID)).
		OrderBy("s.score DESC", "s.id ASC").
		Limit(limit).
		Offset(offset).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build leaderboard page query: %w", err)
	}

	var rows []leaderboardRowModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("leaderboard page: %w", err)
	}

	out := make([]score.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ScoreRepository) GlobalBest(ctx context.Context, limit int) ([]score.LeaderboardEntry, error) {
	query, args, err := qb.Select("game_id AS user_id", "best_score AS score", "game_username", "avatar_src").
		From("users").
		OrderBy("best_score DESC", "game_id ASC").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build global ranking query: %w", err)
	}

	var rows []leaderboardRowModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("global ranking: %w", err)
	}

	out := make([]score.LeaderboardEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *ScoreRepository) DeleteBySeason(ctx context.Context, seasonID int64) error {
	query, args, err := qb.DeleteFrom("season_scores").Where(qb.Eq("season_id", seasonID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete season scores query: %w", err)
	}
	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete season scores: %w", err)
	}
	return nil
}

func (r *ScoreRepository) DeleteByUser(ctx context.Context, userID string) error {
	query, args, err := qb.DeleteFrom("season_scores").Where(qb.Eq("user_id", userID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete user scores query: %w", err)
	}
	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete user scores: %w", err)
	}
	return nil
}
