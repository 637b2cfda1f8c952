package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playforge/arcade-api/internal/domain/score"
	"github.com/playforge/arcade-api/internal/domain/season"
	"github.com/playforge/arcade-api/internal/domain/user"
	"github.com/playforge/arcade-api/internal/platform/id"
	"github.com/playforge/arcade-api/internal/platform/logging"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// UpsertUserInput is the partial profile payload. Empty string fields mean
// "not supplied"; MusicEnabled uses a pointer for the same reason.
type UpsertUserInput struct {
	GameID           string
	GameUsername     string
	TelegramID       string
	TelegramUsername string
	PaypalEmail      string
	DeviceID         string
	BestScore        int
	SeasonScore      int
	MusicEnabled     *bool
	AvatarSrc        string
}

type UpsertUserResult struct {
	User       user.User
	Created    bool
	SeasonData *score.SeasonScore
}

type ListUsersInput struct {
	Search string
	Page   int
	Limit  int
}

type ListUsersResult struct {
	Users       []user.User
	Total       int
	TotalPages  int
	CurrentPage int
}

// identityKey is the payload identity resolved once at the top of an upsert:
// a telegram identity when the payload carries one, a local gameId/deviceId
// key otherwise.
type identityKey struct {
	telegramID string
	gameID     string
	deviceID   string
}

func (k identityKey) isTelegram() bool { return k.telegramID != "" }

func (k identityKey) isEmpty() bool {
	return k.telegramID == "" && k.gameID == "" && k.deviceID == ""
}

type UserService struct {
	userRepo      user.Repository
	seasonRepo    season.Repository
	scoreRepo     score.Repository
	tx            TxRunner
	ids           id.Generator
	defaultAvatar string
	logger        *logging.Logger
	now           func() time.Time
}

func NewUserService(
	userRepo user.Repository,
	seasonRepo season.Repository,
	scoreRepo score.Repository,
	tx TxRunner,
	ids id.Generator,
	defaultAvatar string,
	logger *logging.Logger,
) *UserService {
	if logger == nil {
		logger = logging.Default()
	}

	return &UserService{
		userRepo:      userRepo,
		seasonRepo:    seasonRepo,
		scoreRepo:     scoreRepo,
		tx:            tx,
		ids:           ids,
		defaultAvatar: defaultAvatar,
		logger:        logger,
		now:           time.Now,
	}
}

// Upsert resolves the payload to exactly one canonical user row, creating it
// when no identity matches. Duplicate rows sharing the payload's telegram id
// are collapsed into the oldest one, and a successful telegram-identified
// merge purges every remaining anonymous row. The whole call runs in one
// transaction.
func (s *UserService) Upsert(ctx context.Context, input UpsertUserInput) (UpsertUserResult, error) {
	ctx, span := startUsecaseSpan(ctx, "UserService.Upsert")
	defer span.End()

	input.GameID = strings.TrimSpace(input.GameID)
	input.GameUsername = strings.TrimSpace(input.GameUsername)
	input.TelegramID = strings.TrimSpace(input.TelegramID)
	input.TelegramUsername = strings.TrimSpace(input.TelegramUsername)
	input.PaypalEmail = strings.TrimSpace(input.PaypalEmail)
	input.DeviceID = strings.TrimSpace(input.DeviceID)
	input.AvatarSrc = strings.TrimSpace(input.AvatarSrc)

	key := identityKey{
		telegramID: input.TelegramID,
		gameID:     input.GameID,
		deviceID:   input.DeviceID,
	}
	if key.isEmpty() {
		return UpsertUserResult{}, fmt.Errorf("%w: at least one of telegramId, gameId or deviceId is required", ErrInvalidInput)
	}
	if input.BestScore < 0 || input.SeasonScore < 0 {
		return UpsertUserResult{}, fmt.Errorf("%w: scores must not be negative", ErrInvalidInput)
	}

	var result UpsertUserResult
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, found, err := s.resolveCanonical(ctx, key)
		if err != nil {
			return err
		}

		if found {
			merged, err := s.applyUpdate(ctx, existing, input)
			if err != nil {
				return err
			}
			result.User = merged
			result.Created = false
		} else {
			created, err := s.applyCreate(ctx, input)
			if err != nil {
				return err
			}
			result.User = created
			result.Created = true
		}

		seasonData, err := s.reconcileSeasonScore(ctx, result.User.GameID, input.SeasonScore, result.Created)
		if err != nil {
			return err
		}
		result.SeasonData = seasonData
		return nil
	})
	if err != nil {
		return UpsertUserResult{}, err
	}
	return result, nil
}

// resolveCanonical finds the user the payload identity refers to. On the
// telegram path every row sharing the id is fetched; the oldest survives and
// the rest are deleted right here, so the merge below always sees one row.
func (s *UserService) resolveCanonical(ctx context.Context, key identityKey) (user.User, bool, error) {
	if key.isTelegram() {
		rows, err := s.userRepo.ListByTelegramID(ctx, key.telegramID)
		if err != nil {
			return user.User{}, false, fmt.Errorf("list users by telegram id: %w", err)
		}
		if len(rows) == 0 {
			return user.User{}, false, nil
		}

		canonical := rows[0]
		for _, duplicate := range rows[1:] {
			if err := s.scoreRepo.DeleteByUser(ctx, duplicate.GameID); err != nil {
				return user.User{}, false, fmt.Errorf("delete duplicate user scores: %w", err)
			}
			if err := s.userRepo.Delete(ctx, duplicate.GameID); err != nil {
				return user.User{}, false, fmt.Errorf("delete duplicate user: %w", err)
			}
		}
		if len(rows) > 1 {
			s.logger.InfoContext(ctx, "collapsed duplicate telegram users",
				"telegram_id", key.telegramID,
				"removed", len(rows)-1,
			)
		}
		return canonical, true, nil
	}

	found, exists, err := s.userRepo.GetByLocalKey(ctx, key.gameID, key.deviceID)
	if err != nil {
		return user.User{}, false, fmt.Errorf("get user by local key: %w", err)
	}
	return found, exists, nil
}

func (s *UserService) applyUpdate(ctx context.Context, existing user.User, input UpsertUserInput) (user.User, error) {
	merged := existing

	if input.GameUsername != "" {
		merged.GameUsername = input.GameUsername
	}
	if input.TelegramID != "" {
		merged.TelegramID = input.TelegramID
	}
	if input.TelegramUsername != "" {
		merged.TelegramUsername = input.TelegramUsername
	}
	if input.PaypalEmail != "" {
		merged.PaypalEmail = input.PaypalEmail
	}
	if input.DeviceID != "" {
		merged.DeviceID = input.DeviceID
	}
	if input.BestScore > merged.BestScore {
		merged.BestScore = input.BestScore
	}
	if input.AvatarSrc != "" && input.AvatarSrc != s.defaultAvatar && input.AvatarSrc != merged.AvatarSrc {
		merged.AvatarSrc = input.AvatarSrc
	}
	if input.MusicEnabled != nil {
		merged.MusicEnabled = *input.MusicEnabled
	}
	merged.LastLogin = s.now().UTC()

	if err := s.userRepo.Update(ctx, merged); err != nil {
		return user.User{}, fmt.Errorf("update user: %w", err)
	}

	// Once a telegram identity is known, anonymous placeholder rows are not
	// retained anywhere in the store. Skipped when the canonical row itself
	// lacks a telegram id.
	if input.TelegramID != "" && existing.TelegramID != "" {
		purged, err := s.userRepo.DeleteAnonymous(ctx)
		if err != nil {
			return user.User{}, fmt.Errorf("purge anonymous users: %w", err)
		}
		if purged > 0 {
			s.logger.InfoContext(ctx, "purged anonymous users", "count", purged)
		}
	}

	return merged, nil
}

func (s *UserService) applyCreate(ctx context.Context, input UpsertUserInput) (user.User, error) {
	gameID := input.GameID
	if gameID == "" {
		generated, err := s.ids.NewGameID()
		if err != nil {
			return user.User{}, fmt.Errorf("generate game id: %w", err)
		}
		gameID = generated
	}

	username := input.GameUsername
	if username == "" {
		suffix, err := s.ids.NewGuestSuffix()
		if err != nil {
			return user.User{}, fmt.Errorf("generate username suffix: %w", err)
		}
		username = "player_" + suffix
	}

	musicEnabled := true
	if input.MusicEnabled != nil {
		musicEnabled = *input.MusicEnabled
	}

	now := s.now().UTC()
	created := user.User{
		GameID:           gameID,
		GameUsername:     username,
		TelegramID:       input.TelegramID,
		TelegramUsername: input.TelegramUsername,
		PaypalEmail:      input.PaypalEmail,
		BestScore:        input.BestScore,
		RegistrationDate: now,
		LastLogin:        now,
		DeviceID:         input.DeviceID,
		MusicEnabled:     musicEnabled,
		AvatarSrc:        input.AvatarSrc,
	}
	if err := s.userRepo.Create(ctx, created); err != nil {
		return user.User{}, fmt.Errorf("create user: %w", err)
	}
	return created, nil
}

// reconcileSeasonScore find-or-creates the user's score row for the active
// season. An existing row is only ever raised here; lowering goes through the
// explicit reset path.
func (s *UserService) reconcileSeasonScore(ctx context.Context, gameID string, seasonScore int, created bool) (*score.SeasonScore, error) {
	active, exists, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return nil, nil
	}

	row, found, err := s.scoreRepo.Get(ctx, active.ID, gameID)
	if err != nil {
		return nil, fmt.Errorf("get season score: %w", err)
	}
	if !found {
		row, err = s.scoreRepo.Create(ctx, score.SeasonScore{
			UserID:   gameID,
			SeasonID: active.ID,
			Score:    seasonScore,
		})
		if err != nil {
			return nil, fmt.Errorf("create season score: %w", err)
		}
		return &row, nil
	}

	if !created && seasonScore > row.Score {
		if err := s.scoreRepo.SetScore(ctx, row.ID, seasonScore); err != nil {
			return nil, fmt.Errorf("raise season score: %w", err)
		}
		row.Score = seasonScore
	}
	return &row, nil
}

func (s *UserService) GetByGameID(ctx context.Context, gameID string) (user.User, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return user.User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	found, exists, err := s.userRepo.GetByGameID(ctx, gameID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: user %s", ErrNotFound, gameID)
	}
	return found, nil
}

func (s *UserService) GetByTelegramID(ctx context.Context, telegramID string) (user.User, error) {
	telegramID = strings.TrimSpace(telegramID)
	if telegramID == "" {
		return user.User{}, fmt.Errorf("%w: telegram id is required", ErrInvalidInput)
	}

	found, exists, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by telegram id: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: no user for telegram id %s", ErrNotFound, telegramID)
	}
	return found, nil
}

func (s *UserService) GetByDeviceID(ctx context.Context, deviceID string) (user.User, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return user.User{}, fmt.Errorf("%w: device id is required", ErrInvalidInput)
	}

	found, exists, err := s.userRepo.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by device id: %w", err)
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: no user for device id %s", ErrNotFound, deviceID)
	}
	return found, nil
}

func (s *UserService) List(ctx context.Context, input ListUsersInput) (ListUsersResult, error) {
	ctx, span := startUsecaseSpan(ctx, "UserService.List")
	defer span.End()

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	users, total, err := s.userRepo.List(ctx, user.ListFilter{
		Search: strings.TrimSpace(input.Search),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return ListUsersResult{}, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []user.User{}
	}

	totalPages := (total + limit - 1) / limit
	return ListUsersResult{
		Users:       users,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// Delete removes the user together with its season score rows and blanks any
// season winner reference pointing at it, atomically.
func (s *UserService) Delete(ctx context.Context, gameID string) error {
	ctx, span := startUsecaseSpan(ctx, "UserService.Delete")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		_, exists, err := s.userRepo.GetByGameID(ctx, gameID)
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		if !exists {
			return fmt.Errorf("%w: user %s", ErrNotFound, gameID)
		}

		if err := s.scoreRepo.DeleteByUser(ctx, gameID); err != nil {
			return fmt.Errorf("delete user scores: %w", err)
		}
		if err := s.seasonRepo.ClearWinner(ctx, gameID); err != nil {
			return fmt.Errorf("clear winner references: %w", err)
		}
		if err := s.userRepo.Delete(ctx, gameID); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}

// AddScoretotal increments the lifetime counter for the user the id refers
// to, resolving it as a telegram id first and a device id second.
func (s *UserService) AddScoretotal(ctx context.Context, identity string, delta int) (user.User, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return user.User{}, fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	if delta <= 0 {
		return user.User{}, fmt.Errorf("%w: scoreToAdd must be greater than zero", ErrInvalidInput)
	}

	found, exists, err := s.userRepo.GetByTelegramID(ctx, identity)
	if err != nil {
		return user.User{}, fmt.Errorf("get user by telegram id: %w", err)
	}
	if !exists {
		found, exists, err = s.userRepo.GetByDeviceID(ctx, identity)
		if err != nil {
			return user.User{}, fmt.Errorf("get user by device id: %w", err)
		}
	}
	if !exists {
		return user.User{}, fmt.Errorf("%w: no user for id %s", ErrNotFound, identity)
	}

	if err := s.userRepo.AddScoretotal(ctx, found.GameID, delta); err != nil {
		return user.User{}, fmt.Errorf("add scoretotal: %w", err)
	}
	found.Scoretotal += delta
	return found, nil
}

func (s *UserService) GetPreferences(ctx context.Context, gameID string) (user.Preferences, error) {
	found, err := s.GetByGameID(ctx, gameID)
	if err != nil {
		return user.Preferences{}, err
	}
	return user.Preferences{MusicEnabled: found.MusicEnabled}, nil
}

func (s *UserService) SetPreferences(ctx context.Context, gameID string, prefs user.Preferences) (user.Preferences, error) {
	found, err := s.GetByGameID(ctx, gameID)
	if err != nil {
		return user.Preferences{}, err
	}

	found.MusicEnabled = prefs.MusicEnabled
	if err := s.userRepo.Update(ctx, found); err != nil {
		return user.Preferences{}, fmt.Errorf("update preferences: %w", err)
	}
	return user.Preferences{MusicEnabled: found.MusicEnabled}, nil
}
