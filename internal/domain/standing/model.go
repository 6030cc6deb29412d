package standing

import "github.com/riskibarqy/club-league/internal/domain/fixture"

// Scope selects which final fixtures a table is computed over.
type Scope struct {
	Season      string
	Competition fixture.Competition
	Group       string
}

func (s Scope) Key() string {
	return s.Season + "|" + string(s.Competition) + "|" + s.Group
}

// Standing is one club's row in a table.
type Standing struct {
	ClubID         string
	Position       int
	Played         int
	Won            int
	Drawn          int
	Lost           int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
}
