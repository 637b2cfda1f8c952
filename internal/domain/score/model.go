package score

// SeasonScore accumulates one user's score within one season. At most one row
// exists per (user, season) pair, enforced by find-or-create semantics.
type SeasonScore struct {
	ID       int64
	UserID   string
	SeasonID int64
	Score    int
}

// LeaderboardEntry is the read-model projection for ranking pages: a score
// row joined to the owning user's display attributes in a single query, so a
// page costs O(page size) instead of a lookup per row.
type LeaderboardEntry struct {
	UserID    string
	Username  string
	AvatarSrc string
	Score     int
}
