package ranking

import (
	"fmt"
	"strings"
	"time"
)

type Tier string

const (
	TierElite  Tier = "elite"
	TierMid    Tier = "mid"
	TierBottom Tier = "bottom"
)

type CupStage string

const (
	CupNone         CupStage = "none"
	CupGroup        CupStage = "group"
	CupRoundOf16    CupStage = "round_of_16"
	CupQuarterFinal CupStage = "quarter_final"
	CupSemiFinal    CupStage = "semi_final"
	CupFinal        CupStage = "final"
	CupWinner       CupStage = "winner"
)

const (
	EliteThreshold = 100
	MidThreshold   = 60
)

var cupStagePoints = map[CupStage]int{
	CupNone:         0,
	CupGroup:        10,
	CupRoundOf16:    20,
	CupQuarterFinal: 30,
	CupSemiFinal:    45,
	CupFinal:        60,
	CupWinner:       80,
}

// Ranking is a club's classified standing for one season.
type Ranking struct {
	ClubID    string
	Season    string
	Position  int
	CupStage  CupStage
	Points    int
	Tier      Tier
	UpdatedAt time.Time
}

func ParseCupStage(raw string) (CupStage, error) {
	value := CupStage(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return CupNone, nil
	}
	if _, ok := cupStagePoints[value]; !ok {
		return "", fmt.Errorf("unknown cup stage %q", raw)
	}
	return value, nil
}

func LeaguePoints(position int) int {
	switch {
	case position == 1:
		return 100
	case position == 2:
		return 80
	case position >= 3 && position <= 4:
		return 60
	case position >= 5 && position <= 8:
		return 40
	default:
		return 20
	}
}

func CupPoints(stage CupStage) int {
	return cupStagePoints[stage]
}

func TierFor(points int) Tier {
	switch {
	case points >= EliteThreshold:
		return TierElite
	case points >= MidThreshold:
		return TierMid
	default:
		return TierBottom
	}
}

// Classify derives points and tier from league position and cup progress.
func Classify(position int, stage CupStage) (int, Tier) {
	points := LeaguePoints(position) + CupPoints(stage)
	return points, TierFor(points)
}

// New builds a classified ranking.
func New(season, clubID string, position int, stage CupStage, now time.Time) Ranking {
	if stage == "" {
		stage = CupNone
	}
	points, tier := Classify(position, stage)
	return Ranking{
		ClubID:    clubID,
		Season:    season,
		Position:  position,
		CupStage:  stage,
		Points:    points,
		Tier:      tier,
		UpdatedAt: now.UTC(),
	}
}
