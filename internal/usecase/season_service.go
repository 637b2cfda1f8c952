package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/playforge/arcade-api/internal/domain/score"
	"github.com/playforge/arcade-api/internal/domain/season"
	"github.com/playforge/arcade-api/internal/domain/user"
	"github.com/playforge/arcade-api/internal/platform/logging"
)

type SeasonInput struct {
	SeasonNumber int
	StartDate    time.Time
	EndDate      time.Time
	PrizeMoney   float64
	SecondPrize  float64
	ThirdPrize   float64
}

// CloseSeasonResult carries the closed season together with the resolved
// winner, when the season had any scores at all.
type CloseSeasonResult struct {
	Season      season.Season
	Winner      *user.User
	WinnerScore int
}

type SeasonService struct {
	seasonRepo season.Repository
	scoreRepo  score.Repository
	userRepo   user.Repository
	tx         TxRunner
	logger     *logging.Logger
}

func NewSeasonService(
	seasonRepo season.Repository,
	scoreRepo score.Repository,
	userRepo user.Repository,
	tx TxRunner,
	logger *logging.Logger,
) *SeasonService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SeasonService{
		seasonRepo: seasonRepo,
		scoreRepo:  scoreRepo,
		userRepo:   userRepo,
		tx:         tx,
		logger:     logger,
	}
}

// Create persists a new season, born active. No other season is deactivated
// here; keeping a single active season is the caller's responsibility.
func (s *SeasonService) Create(ctx context.Context, input SeasonInput) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "SeasonService.Create")
	defer span.End()

	if err := validateSeasonInput(input); err != nil {
		return season.Season{}, err
	}

	created, err := s.seasonRepo.Create(ctx, season.Season{
		SeasonNumber: input.SeasonNumber,
		StartDate:    input.StartDate.UTC(),
		EndDate:      input.EndDate.UTC(),
		PrizeMoney:   input.PrizeMoney,
		SecondPrize:  input.SecondPrize,
		ThirdPrize:   input.ThirdPrize,
		IsActive:     true,
	})
	if err != nil {
		return season.Season{}, fmt.Errorf("create season: %w", err)
	}

	s.logger.InfoContext(ctx, "season created", "season_id", created.ID, "season_number", created.SeasonNumber)
	return created, nil
}

func (s *SeasonService) Get(ctx context.Context, id int64) (season.Season, error) {
	if id <= 0 {
		return season.Season{}, fmt.Errorf("%w: season id must be greater than zero", ErrInvalidInput)
	}

	found, exists, err := s.seasonRepo.GetByID(ctx, id)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: season %d", ErrNotFound, id)
	}
	return found, nil
}

func (s *SeasonService) List(ctx context.Context) ([]season.Season, error) {
	seasons, err := s.seasonRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	if seasons == nil {
		seasons = []season.Season{}
	}
	return seasons, nil
}

// Update replaces every editable field wholesale. A closed season cannot be
// edited.
func (s *SeasonService) Update(ctx context.Context, id int64, input SeasonInput) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "SeasonService.Update")
	defer span.End()

	if err := validateSeasonInput(input); err != nil {
		return season.Season{}, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return season.Season{}, err
	}
	if existing.IsClosed {
		return season.Season{}, fmt.Errorf("%w: season %d is closed", ErrConflict, id)
	}

	existing.SeasonNumber = input.SeasonNumber
	existing.StartDate = input.StartDate.UTC()
	existing.EndDate = input.EndDate.UTC()
	existing.PrizeMoney = input.PrizeMoney
	existing.SecondPrize = input.SecondPrize
	existing.ThirdPrize = input.ThirdPrize

	if err := s.seasonRepo.Update(ctx, existing); err != nil {
		return season.Season{}, fmt.Errorf("update season: %w", err)
	}
	return existing, nil
}

// Close flips the season to its terminal state and resolves the winner from
// the highest score row. Closing twice is a conflict, not a no-op.
func (s *SeasonService) Close(ctx context.Context, id int64) (CloseSeasonResult, error) {
	ctx, span := startUsecaseSpan(ctx, "SeasonService.Close")
	defer span.End()

	var result CloseSeasonResult
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if existing.IsClosed {
			return fmt.Errorf("%w: season %d is already closed", ErrConflict, id)
		}

		top, hasScores, err := s.scoreRepo.TopBySeason(ctx, id)
		if err != nil {
			return fmt.Errorf("resolve top score: %w", err)
		}

		existing.IsActive = false
		existing.IsClosed = true
		if hasScores {
			existing.WinnerID = top.UserID
		}
		if err := s.seasonRepo.Update(ctx, existing); err != nil {
			return fmt.Errorf("close season: %w", err)
		}

		result.Season = existing
		if hasScores {
			winner, exists, err := s.userRepo.GetByGameID(ctx, top.UserID)
			if err != nil {
				return fmt.Errorf("get winner profile: %w", err)
			}
			if exists {
				result.Winner = &winner
			}
			result.WinnerScore = top.Score
		}
		return nil
	})
	if err != nil {
		return CloseSeasonResult{}, err
	}

	s.logger.InfoContext(ctx, "season closed",
		"season_id", result.Season.ID,
		"winner_id", result.Season.WinnerID,
		"winner_score", result.WinnerScore,
	)
	return result, nil
}

// Delete removes the season and every score row referencing it in one
// transaction, so scores never outlive their season.
func (s *SeasonService) Delete(ctx context.Context, id int64) error {
	ctx, span := startUsecaseSpan(ctx, "SeasonService.Delete")
	defer span.End()

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if _, err := s.Get(ctx, id); err != nil {
			return err
		}
		if err := s.scoreRepo.DeleteBySeason(ctx, id); err != nil {
			return fmt.Errorf("delete season scores: %w", err)
		}
		if err := s.seasonRepo.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete season: %w", err)
		}
		return nil
	})
}

func validateSeasonInput(input SeasonInput) error {
	if input.SeasonNumber <= 0 {
		return fmt.Errorf("%w: seasonNumber must be greater than zero", ErrInvalidInput)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return fmt.Errorf("%w: startDate and endDate are required", ErrInvalidInput)
	}
	if !input.EndDate.After(input.StartDate) {
		return fmt.Errorf("%w: endDate must be after startDate", ErrInvalidInput)
	}
	if input.PrizeMoney < 0 || input.SecondPrize < 0 || input.ThirdPrize < 0 {
		return fmt.Errorf("%w: prize amounts must not be negative", ErrInvalidInput)
	}
	return nil
}
