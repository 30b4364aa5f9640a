package game

import (
	"sort"
	"time"
)

// LeaderboardSize is how many entries a leaderboard keeps.
const LeaderboardSize = 10

// LeaderboardEntry is one finished session on the leaderboard.
type LeaderboardEntry struct {
	Name  string    `json:"name"`
	Score int       `json:"score"`
	Mode  Mode      `json:"mode"`
	Date  time.Time `json:"date"`
}

// RankLeaderboard sorts entries by descending score, keeping insertion order
// among equal scores, and truncates to LeaderboardSize.
func RankLeaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	ranked := make([]LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > LeaderboardSize {
		ranked = ranked[:LeaderboardSize]
	}
	return ranked
}

// Qualifies reports whether score would enter a leaderboard holding entries.
func Qualifies(entries []LeaderboardEntry, score int) bool {
	if len(entries) < LeaderboardSize {
		return true
	}
	return score > entries[len(entries)-1].Score
}
