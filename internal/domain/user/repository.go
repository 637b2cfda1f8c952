package user

import "context"

// ListFilter narrows and pages the admin user listing. Search is matched as a
// substring against the id, username and contact columns.
type ListFilter struct {
	Search string
	Page   int
	Limit  int
}

type Repository interface {
	GetByGameID(ctx context.Context, gameID string) (User, bool, error)
	GetByTelegramID(ctx context.Context, telegramID string) (User, bool, error)
	GetByDeviceID(ctx context.Context, deviceID string) (User, bool, error)
	// ListByTelegramID returns every row sharing the telegram id, oldest first.
	ListByTelegramID(ctx context.Context, telegramID string) ([]User, error)
	// GetByLocalKey matches gameID or deviceID, whichever is non-empty.
	GetByLocalKey(ctx context.Context, gameID, deviceID string) (User, bool, error)
	List(ctx context.Context, filter ListFilter) ([]User, int, error)
	ListTelegramIDs(ctx context.Context) ([]string, error)
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, gameID string) error
	// DeleteAnonymous removes every row whose telegram id is empty, cascading
	// score rows and winner references like Delete. It backs the orphan
	// cleanup performed after a telegram-identified upsert.
	DeleteAnonymous(ctx context.Context) (int, error)
	AddScoretotal(ctx context.Context, gameID string, delta int) error
}
