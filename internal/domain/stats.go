package domain

// UserStats are recomputed on read by scanning the caller's events; nothing
// here is persisted.
type UserStats struct {
	GamesPlayed        int   `json:"games_played"`
	GamesWon           int   `json:"games_won"`
	TotalEarningsCents int64 `json:"total_earnings_cents"`
	UpcomingGames      int   `json:"upcoming_games"`
}

// GroupStats is one leaderboard row for a group member.
type GroupStats struct {
	UserID             uint   `json:"user_id"`
	DisplayName        string `json:"display_name"`
	GamesPlayed        int    `json:"games_played"`
	GamesWon           int    `json:"games_won"`
	TotalEarningsCents int64  `json:"total_earnings_cents"`
}
