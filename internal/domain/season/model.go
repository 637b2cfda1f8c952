package season

import "time"

// Season is a time-boxed competitive epoch with its own leaderboard and
// prize pool. Closing is a one-way transition; WinnerID is set on close and
// empty before that.
type Season struct {
	ID           int64
	SeasonNumber int
	StartDate    time.Time
	EndDate      time.Time
	PrizeMoney   float64
	SecondPrize  float64
	ThirdPrize   float64
	IsActive     bool
	IsClosed     bool
	WinnerID     string
}
