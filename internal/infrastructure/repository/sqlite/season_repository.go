package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playforge/arcade-api/internal/domain/season"
	qb "github.com/playforge/arcade-api/internal/platform/querybuilder"
)

type SeasonRepository struct {
	store *Store
}

func NewSeasonRepository(store *Store) *SeasonRepository {
	return &SeasonRepository{store: store}
}

func (r *SeasonRepository) Create(ctx context.Context, s season.Season) (season.Season, error) {
	model := seasonInsertModel{
		SeasonNumber: s.SeasonNumber,
		StartDate:    formatTime(s.StartDate),
		EndDate:      formatTime(s.EndDate),
		PrizeMoney:   s.PrizeMoney,
		SecondPrize:  s.SecondPrize,
		ThirdPrize:   s.ThirdPrize,
		IsActive:     boolToInt(s.IsActive),
		IsClosed:     boolToInt(s.IsClosed),
		WinnerID:     s.WinnerID,
	}
	query, args, err := qb.InsertModel("seasons", model, "")
	if err != nil {
		return season.Season{}, fmt.Errorf("build insert season query: %w", err)
	}
	res, err := r.store.ext(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return season.Season{}, fmt.Errorf("insert season: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return season.Season{}, fmt.Errorf("insert season id: %w", err)
	}
	s.ID = id
	return s, nil
}

func (r *SeasonRepository) GetByID(ctx context.Context, id int64) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season query: %w", err)
	}

	var row seasonTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("is_active", 1), qb.Eq("is_closed", 0)).
		OrderBy("id DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get active season query: %w", err)
	}

	var row seasonTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get active season: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	query, args, err := qb.Select("*").From("seasons").
		OrderBy("season_number DESC", "id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list seasons query: %w", err)
	}

	var rows []seasonTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *SeasonRepository) Update(ctx context.Context, s season.Season) error {
	query, args, err := qb.Update("seasons").
		Set("season_number", s.SeasonNumber).
		Set("start_date", formatTime(s.StartDate)).
		Set("end_date", formatTime(s.EndDate)).
		Set("prize_money", s.PrizeMoney).
		Set("second_prize", s.SecondPrize).
		Set("third_prize", s.ThirdPrize).
		Set("is_active", boolToInt(s.IsActive)).
		Set("is_closed", boolToInt(s.IsClosed)).
		Set("winner_id", s.WinnerID).
		Where(qb.Eq("id", s.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update season query: %w", err)
	}
	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update season: %w", err)
	}
	return nil
}

func (r *SeasonRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := qb.DeleteFrom("seasons").Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete season query: %w", err)
	}
	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete season: %w", err)
	}
	return nil
}

func (r *SeasonRepository) ClearWinner(ctx context.Context, userID string) error {
	query, args, err := qb.Update("seasons").
		Set("winner_id", "").
		Where(qb.Eq("winner_id", userID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear winner query: %w", err)
	}
	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear winner: %w", err)
	}
	return nil
}
