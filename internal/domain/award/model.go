package award

import (
	"time"

	"github.com/riskibarqy/club-league/internal/domain/ranking"
)

// Entry is one paid cup bonus. A (Season, ClubID) pair is paid at most once.
type Entry struct {
	Season   string
	ClubID   string
	Amount   int64
	CupStage string
	PaidAt   time.Time
}

func Key(season, clubID string) string {
	return season + ":" + clubID
}

// BonusTable is the cup bonus paid for reaching each stage.
type BonusTable map[ranking.CupStage]int64

func DefaultBonusTable() BonusTable {
	return BonusTable{
		ranking.CupNone:         0,
		ranking.CupGroup:        100,
		ranking.CupRoundOf16:    250,
		ranking.CupQuarterFinal: 500,
		ranking.CupSemiFinal:    750,
		ranking.CupFinal:        1000,
		ranking.CupWinner:       1500,
	}
}

func (t BonusTable) For(stage ranking.CupStage) int64 {
	return t[stage]
}
