package playerstat

import (
	"sort"
	"time"
)

// Contribution is one player's line from one final fixture, keyed by (FixtureID, PlayerID, ClubID).
type Contribution struct {
	Season    string
	FixtureID string
	PlayerID  string
	ClubID    string
	Goals     int
	Assists   int
	Rating    float64
	PlayedAt  time.Time
}

func (c Contribution) Key() string {
	return c.FixtureID + ":" + c.PlayerID + ":" + c.ClubID
}

// Stat is the cumulative record for (Season, PlayerID). Average rating is derived at read time.
type Stat struct {
	Season             string
	PlayerID           string
	Appearances        int
	Goals              int
	Assists            int
	RatingSum          float64
	RatingCount        int
	GoalStreak         int
	AssistStreak       int
	ContributionStreak int
	UpdatedAt          time.Time
}

func (s Stat) AverageRating() float64 {
	if s.RatingCount == 0 {
		return 0
	}
	return s.RatingSum / float64(s.RatingCount)
}

// Fold adds one match to the cumulative record and advances the three streaks independently.
func (s *Stat) Fold(c Contribution) {
	s.Appearances++
	s.Goals += c.Goals
	s.Assists += c.Assists
	s.RatingSum += c.Rating
	s.RatingCount++

	if c.Goals > 0 {
		s.GoalStreak++
	} else {
		s.GoalStreak = 0
	}
	if c.Assists > 0 {
		s.AssistStreak++
	} else {
		s.AssistStreak = 0
	}
	if c.Goals > 0 || c.Assists > 0 {
		s.ContributionStreak++
	} else {
		s.ContributionStreak = 0
	}
}

// Rebuild folds a player's full history in match order.
func Rebuild(season, playerID string, history []Contribution, now time.Time) Stat {
	rows := append([]Contribution(nil), history...)
	SortHistory(rows)

	stat := Stat{Season: season, PlayerID: playerID}
	for _, row := range rows {
		stat.Fold(row)
	}
	stat.UpdatedAt = now.UTC()
	return stat
}

func SortHistory(rows []Contribution) {
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].PlayedAt.Equal(rows[j].PlayedAt) {
			return rows[i].PlayedAt.Before(rows[j].PlayedAt)
		}
		if rows[i].FixtureID != rows[j].FixtureID {
			return rows[i].FixtureID < rows[j].FixtureID
		}
		return rows[i].ClubID < rows[j].ClubID
	})
}

// Merge collapses rows sharing a key: goals and assists add up, the best rating wins.
func Merge(rows []Contribution) []Contribution {
	index := make(map[string]int, len(rows))
	out := make([]Contribution, 0, len(rows))
	for _, row := range rows {
		key := row.Key()
		if i, ok := index[key]; ok {
			out[i].Goals += row.Goals
			out[i].Assists += row.Assists
			if row.Rating > out[i].Rating {
				out[i].Rating = row.Rating
			}
			continue
		}
		index[key] = len(out)
		out = append(out, row)
	}
	return out
}
