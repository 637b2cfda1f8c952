package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/playforge/arcade-api/internal/domain/user"
	qb "github.com/playforge/arcade-api/internal/platform/querybuilder"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) GetByGameID(ctx context.Context, gameID string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Eq("game_id", gameID))
}

func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Eq("telegram_id", telegramID))
}

func (r *UserRepository) GetByDeviceID(ctx context.Context, deviceID string) (user.User, bool, error) {
	return r.getOne(ctx, qb.Eq("device_id", deviceID))
}

func (r *UserRepository) getOne(ctx context.Context, cond qb.Condition) (user.User, bool, error) {
	query, args, err := qb.Select("*").From("users").
		Where(cond).
		OrderBy("registration_date ASC", "game_id ASC").
		Limit(1).
		ToSQL()
	if err != nil {
		return user.User{}, false, fmt.Errorf("build get user query: %w", err)
	}

	var row userTableModel
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &row, query, args...); err != nil {
		if isNotFound(err) {
			return user.User{}, false, nil
		}
		return user.User{}, false, fmt.Errorf("get user: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *UserRepository) ListByTelegramID(ctx context.Context, telegramID string) ([]user.User, error) {
	query, args, err := qb.Select("*").From("users").
		Where(qb.Eq("telegram_id", telegramID)).
		OrderBy("registration_date ASC", "game_id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list users by telegram id query: %w", err)
	}

	var rows []userTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list users by telegram id: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *UserRepository) GetByLocalKey(ctx context.Context, gameID, deviceID string) (user.User, bool, error) {
	conditions := make([]qb.Condition, 0, 2)
	if gameID != "" {
		conditions = append(conditions, qb.Eq("game_id", gameID))
	}
	if deviceID != "" {
		conditions = append(conditions, qb.Eq("device_id", deviceID))
	}
	if len(conditions) == 0 {
		return user.User{}, false, nil
	}
	return r.getOne(ctx, qb.Or(conditions...))
}

func (r *UserRepository) List(ctx context.Context, filter user.ListFilter) ([]user.User, int, error) {
	where := make([]qb.Condition, 0, 1)
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		where = append(where, qb.Or(
			qb.Like("game_id", pattern),
			qb.Like("game_username", pattern),
			qb.Like("telegram_id", pattern),
			qb.Like("telegram_username", pattern),
			qb.Like("paypal_email", pattern),
		))
	}

	countQuery, countArgs, err := qb.Select("COUNT(*)").From("users").Where(where...).ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count users query: %w", err)
	}
	var total int
	if err := sqlx.GetContext(ctx, r.store.ext(ctx), &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	builder := qb.Select("*").From("users").
		Where(where...).
		OrderBy("registration_date DESC", "game_id ASC")
	if filter.Limit > 0 {
		// filter.Page is 1-based.
		builder = builder.Limit(filter.Limit).Offset((filter.Page - 1) * filter.Limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build list users query: %w", err)
	}

	var rows []userTableModel
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, total, nil
}

func (r *UserRepository) ListTelegramIDs(ctx context.Context) ([]string, error) {
	query, args, err := qb.Select("telegram_id").From("users").
		Where(qb.NotEq("telegram_id", "")).
		OrderBy("registration_date ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list telegram ids query: %w", err)
	}

	var ids []string
	if err := sqlx.SelectContext(ctx, r.store.ext(ctx), &ids, query, args...); err != nil {
		return nil, fmt.Errorf("list telegram ids: %w", err)
	}
	return ids, nil
}

func (r *UserRepository) Create(ctx context.Context, u user.User) error {
	query, args, err := qb.InsertModel("users", userToModel(u), "")
	if err != nil {
		return fmt.Errorf("build insert user query: %w", err)
	}
	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u user.User) error {
	model := userToModel(u)
	query, args, err := qb.Update("users").
		Set("game_username", model.GameUsername).
		Set("telegram_id", model.TelegramID).
		Set("telegram_username", model.TelegramUsername).
		Set("paypal_email", model.PaypalEmail).
		Set("best_score", model.BestScore).
		Set("last_login", model.LastLogin).
		Set("device_id", model.DeviceID).
		Set("music_enabled", model.MusicEnabled).
		Set("avatar_src", model.AvatarSrc).
		Set("scoretotal", model.Scoretotal).
		Where(qb.Eq("game_id", model.GameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update user query: %w", err)
	}
	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, gameID string) error {
	query, args, err := qb.DeleteFrom("users").Where(qb.Eq("game_id", gameID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete user query: %w", err)
	}
	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

// DeleteAnonymous cascades the same way Delete does, so purged rows leave no
// orphaned scores or stale winner references behind. The IN subqueries run
// before the user rows go away; the caller's transaction keeps the three
// statements atomic.
func (r *UserRepository) DeleteAnonymous(ctx context.Context) (int, error) {
	ext := r.store.ext(ctx)

	const purgeScores = `DELETE FROM season_scores WHERE user_id IN (SELECT game_id FROM users WHERE telegram_id = '')`
	if _, err := ext.ExecContext(ctx, purgeScores); err != nil {
		return 0, fmt.Errorf("delete anonymous user scores: %w", err)
	}

	const purgeWinners = `UPDATE seasons SET winner_id = '' WHERE winner_id IN (SELECT game_id FROM users WHERE telegram_id = '')`
	if _, err := ext.ExecContext(ctx, purgeWinners); err != nil {
		return 0, fmt.Errorf("clear anonymous winner references: %w", err)
	}

	query, args, err := qb.DeleteFrom("users").Where(qb.Eq("telegram_id", "")).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build delete anonymous users query: %w", err)
	}
	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete anonymous users: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete anonymous users rows affected: %w", err)
	}
	return int(affected), nil
}

func (r *UserRepository) AddScoretotal(ctx context.Context, gameID string, delta int) error {
	query, args, err := qb.Update("users").
		SetExpr("scoretotal", "scoretotal + ?", delta).
		Where(qb.Eq("game_id", gameID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build add scoretotal query: %w", err)
	}
	if _, err := r.store.ext(ctx).ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add scoretotal: %w", err)
	}
	return nil
}
