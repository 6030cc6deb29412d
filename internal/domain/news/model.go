package news

import (
	"strings"
	"time"

	"github.com/riskibarqy/club-league/internal/domain/fixture"
)

type Kind string

const (
	KindHatTrick       Kind = "hat_trick"
	KindAssistHatTrick Kind = "assist_hat_trick"
	KindTopRating      Kind = "top_rating"
	KindThrashing      Kind = "thrashing"
)

const (
	HatTrickGoals   = 3
	AssistHatTrick  = 3
	TopRating       = 9.0
	ThrashingMargin = 5
)

// Event is a fully described newsworthy moment handed to the notification sink.
type Event struct {
	Kind       Kind
	Season     string
	FixtureID  string
	ClubID     string
	OpponentID string
	PlayerID   string
	PlayerName string
	Value      float64
	HomeScore  int
	AwayScore  int
	OccurredAt time.Time
}

// DedupeKey identifies an event for at-least-once delivery: one event per kind and subject per fixture.
func (e Event) DedupeKey() string {
	subject := e.PlayerID
	if subject == "" {
		subject = strings.ToLower(strings.TrimSpace(e.PlayerName))
	}
	if subject == "" {
		subject = e.ClubID
	}
	return e.FixtureID + ":" + string(e.Kind) + ":" + subject
}

// Detect lists the feats in a final fixture's result.
func Detect(item fixture.Fixture, now time.Time) []Event {
	if item.Result == nil {
		return nil
	}
	result := item.Result
	out := make([]Event, 0, 4)
	base := Event{
		Season:     item.Season,
		FixtureID:  item.ID,
		HomeScore:  result.HomeScore,
		AwayScore:  result.AwayScore,
		OccurredAt: now.UTC(),
	}

	for _, side := range []fixture.Side{fixture.SideHome, fixture.SideAway} {
		clubID := item.ClubFor(side)
		opponent := item.ClubFor(opposite(side))
		for _, row := range result.Rows(side) {
			ev := base
			ev.ClubID = clubID
			ev.OpponentID = opponent
			ev.PlayerID = row.PlayerID
			ev.PlayerName = row.DisplayName
			if row.Goals >= HatTrickGoals {
				e := ev
				e.Kind = KindHatTrick
				e.Value = float64(row.Goals)
				out = append(out, e)
			}
			if row.Assists >= AssistHatTrick {
				e := ev
				e.Kind = KindAssistHatTrick
				e.Value = float64(row.Assists)
				out = append(out, e)
			}
			if row.Rating >= TopRating {
				e := ev
				e.Kind = KindTopRating
				e.Value = row.Rating
				out = append(out, e)
			}
		}
	}

	margin := result.HomeScore - result.AwayScore
	winner, loser := item.HomeClubID, item.AwayClubID
	if margin < 0 {
		margin = -margin
		winner, loser = loser, winner
	}
	if margin >= ThrashingMargin {
		ev := base
		ev.Kind = KindThrashing
		ev.ClubID = winner
		ev.OpponentID = loser
		ev.Value = float64(margin)
		out = append(out, ev)
	}

	return out
}

func opposite(side fixture.Side) fixture.Side {
	if side == fixture.SideHome {
		return fixture.SideAway
	}
	return fixture.SideHome
}
