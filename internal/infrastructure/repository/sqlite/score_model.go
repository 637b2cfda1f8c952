package sqlite

import "github.com/playforge/arcade-api/internal/domain/score"

type seasonScoreTableModel struct {
	ID       int64  `db:"id"`
	UserID   string `db:"user_id"`
	SeasonID int64  `db:"season_id"`
	Score    int    `db:"score"`
}

type seasonScoreInsertModel struct {
	UserID   string `db:"user_id"`
	SeasonID int64  `db:"season_id"`
	Score    int    `db:"score"`
}

// leaderboardRowModel backs the join projection; user columns are nullable
// because the join is LEFT (a score may outlive a deleted profile briefly).
type leaderboardRowModel struct {
	UserID    string  `db:"user_id"`
	Score     int     `db:"score"`
	Username  *string `db:"game_username"`
	AvatarSrc *string `db:"avatar_src"`
}

func (m seasonScoreTableModel) toDomain() score.SeasonScore {
	return score.SeasonScore{
		ID:       m.ID,
		UserID:   m.UserID,
		SeasonID: m.SeasonID,
		Score:    m.Score,
	}
}

func (m leaderboardRowModel) toDomain() score.LeaderboardEntry {
	entry := score.LeaderboardEntry{
		UserID: m.UserID,
		Score:  m.Score,
	}
	if m.Username != nil {
		entry.Username = *m.Username
	}
	if m.AvatarSrc != nil {
		entry.AvatarSrc = *m.AvatarSrc
	}
	return entry
}
