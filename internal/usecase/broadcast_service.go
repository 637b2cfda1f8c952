package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	ants "github.com/panjf2000/ants/v2"
	"github.com/playforge/arcade-api/internal/domain/user"
	"github.com/playforge/arcade-api/internal/platform/logging"
)

const defaultBroadcastWorkers = 8

// Notifier delivers one message to one chat. The telegram client satisfies
// this in production.
type Notifier interface {
	SendMessage(ctx context.Context, chatID string, text string) error
}

type BroadcastResult struct {
	Sent   int
	Failed int
	Total  int
}

type BroadcastService struct {
	userRepo   user.Repository
	notifier   Notifier
	maxWorkers int
	logger     *logging.Logger
}

func NewBroadcastService(userRepo user.Repository, notifier Notifier, maxWorkers int, logger *logging.Logger) *BroadcastService {
	if maxWorkers < 1 {
		maxWorkers = defaultBroadcastWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &BroadcastService{
		userRepo:   userRepo,
		notifier:   notifier,
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

// Broadcast fans the message out to every user with a known telegram
// identity. Per-recipient failures are tallied and never abort the batch.
func (s *BroadcastService) Broadcast(ctx context.Context, message string) (BroadcastResult, error) {
	ctx, span := startUsecaseSpan(ctx, "BroadcastService.Broadcast")
	defer span.End()

	message = strings.TrimSpace(message)
	if message == "" {
		return BroadcastResult{}, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if s.notifier == nil {
		return BroadcastResult{}, fmt.Errorf("%w: no message transport is configured", ErrDependencyUnavailable)
	}

	chatIDs, err := s.userRepo.ListTelegramIDs(ctx)
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("list broadcast recipients: %w", err)
	}
	if len(chatIDs) == 0 {
		return BroadcastResult{}, nil
	}

	workerCount := s.maxWorkers
	if workerCount > len(chatIDs) {
		workerCount = len(chatIDs)
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var sentCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, chatID := range chatIDs {
		chatID := chatID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			if err := s.notifier.SendMessage(ctx, chatID, message); err != nil {
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "broadcast send failed", "chat_id", chatID, "error", err)
				return
			}
			sentCount.Add(1)
		}); err != nil {
			workers.Done()
			failedCount.Add(1)
			s.logger.WarnContext(ctx, "broadcast submit failed", "chat_id", chatID, "error", err)
		}
	}
	workers.Wait()

	result := BroadcastResult{
		Sent:   int(sentCount.Load()),
		Failed: int(failedCount.Load()),
		Total:  len(chatIDs),
	}
	s.logger.InfoContext(ctx, "broadcast finished",
		"sent", result.Sent,
		"failed", result.Failed,
		"total", result.Total,
	)
	return result, nil
}
