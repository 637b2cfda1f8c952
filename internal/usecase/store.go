package usecase

import "context"

// TxRunner executes fn atomically: every repository call made inside fn joins
// the same transaction, and any error rolls the whole call back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
