package sqlite

import "github.com/playforge/arcade-api/internal/domain/season"

type seasonTableModel struct {
	ID           int64   `db:"id"`
	SeasonNumber int     `db:"season_number"`
	StartDate    string  `db:"start_date"`
	EndDate      string  `db:"end_date"`
	PrizeMoney   float64 `db:"prize_money"`
	SecondPrize  float64 `db:"second_prize"`
	ThirdPrize   float64 `db:"third_prize"`
	IsActive     int     `db:"is_active"`
	IsClosed     int     `db:"is_closed"`
	WinnerID     string  `db:"winner_id"`
}

type seasonInsertModel struct {
	SeasonNumber int     `db:"season_number"`
	StartDate    string  `db:"start_date"`
	EndDate      string  `db:"end_date"`
	PrizeMoney   float64 `db:"prize_money"`
	SecondPrize  float64 `db:"second_prize"`
	ThirdPrize   float64 `db:"third_prize"`
	IsActive     int     `db:"is_active"`
	IsClosed     int     `db:"is_closed"`
	WinnerID     string  `db:"winner_id"`
}

func (m seasonTableModel) toDomain() season.Season {
	return season.Season{
		ID:           m.ID,
		SeasonNumber: m.SeasonNumber,
		StartDate:    parseTime(m.StartDate),
		EndDate:      parseTime(m.EndDate),
		PrizeMoney:   m.PrizeMoney,
		SecondPrize:  m.SecondPrize,
		ThirdPrize:   m.ThirdPrize,
		IsActive:     m.IsActive != 0,
		IsClosed:     m.IsClosed != 0,
		WinnerID:     m.WinnerID,
	}
}
