package season

import "context"

type Repository interface {
	Create(ctx context.Context, s Season) (Season, error)
	GetByID(ctx context.Context, id int64) (Season, bool, error)
	GetActive(ctx context.Context) (Season, bool, error)
	List(ctx context.Context) ([]Season, error)
	Update(ctx context.Context, s Season) error
	Delete(ctx context.Context, id int64) error
	// ClearWinner blanks winner_id on every season referencing the user.
	ClearWinner(ctx context.Context, userID string) error
}
