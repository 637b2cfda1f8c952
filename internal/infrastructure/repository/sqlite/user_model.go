package sqlite

import "github.com/playforge/arcade-api/internal/domain/user"

type userTableModel struct {
	GameID           string `db:"game_id"`
	GameUsername     string `db:"game_username"`
	TelegramID       string `db:"telegram_id"`
	TelegramUsername string `db:"telegram_username"`
	PaypalEmail      string `db:"paypal_email"`
	BestScore        int    `db:"best_score"`
	RegistrationDate string `db:"registration_date"`
	LastLogin        string `db:"last_login"`
	DeviceID         string `db:"device_id"`
	MusicEnabled     int    `db:"music_enabled"`
	AvatarSrc        string `db:"avatar_src"`
	Scoretotal       int    `db:"scoretotal"`
}

func (m userTableModel) toDomain() user.User {
	return user.User{
		GameID:           m.GameID,
		GameUsername:     m.GameUsername,
		TelegramID:       m.TelegramID,
		TelegramUsername: m.TelegramUsername,
		PaypalEmail:      m.PaypalEmail,
		BestScore:        m.BestScore,
		RegistrationDate: parseTime(m.RegistrationDate),
		LastLogin:        parseTime(m.LastLogin),
		DeviceID:         m.DeviceID,
		MusicEnabled:     m.MusicEnabled != 0,
		AvatarSrc:        m.AvatarSrc,
		Scoretotal:       m.Scoretotal,
	}
}

func userToModel(u user.User) userTableModel {
	return userTableModel{
		GameID:           u.GameID,
		GameUsername:     u.GameUsername,
		TelegramID:       u.TelegramID,
		TelegramUsername: u.TelegramUsername,
		PaypalEmail:      u.PaypalEmail,
		BestScore:        u.BestScore,
		RegistrationDate: formatTime(u.RegistrationDate),
		LastLogin:        formatTime(u.LastLogin),
		DeviceID:         u.DeviceID,
		MusicEnabled:     boolToInt(u.MusicEnabled),
		AvatarSrc:        u.AvatarSrc,
		Scoretotal:       u.Scoretotal,
	}
}
