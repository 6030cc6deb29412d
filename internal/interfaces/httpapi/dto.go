package httpapi

import (
	"sort"
	"strconv"
	"time"

	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/player"
	"github.com/riskibarqy/club-league/internal/domain/playerstat"
	"github.com/riskibarqy/club-league/internal/domain/ranking"
	"github.com/riskibarqy/club-league/internal/domain/standing"
	"github.com/riskibarqy/club-league/internal/domain/wallet"
	"github.com/riskibarqy/club-league/internal/usecase"
)

type fixtureDTO struct {
	ID              string                     `json:"id"`
	Season          string                     `json:"season"`
	Competition     string                     `json:"competition"`
	Group           string                     `json:"group,omitempty"`
	Round           string                     `json:"round,omitempty"`
	HomeClubID      string                     `json:"homeClubId"`
	AwayClubID      string                     `json:"awayClubId"`
	ExternalMatchID string                     `json:"externalMatchId,omitempty"`
	Status          string                     `json:"status"`
	When            *string                    `json:"when"`
	LockedAt        *string                    `json:"lockedAt,omitempty"`
	Proposals       []proposalDTO              `json:"proposals"`
	Votes           map[string]map[string]bool `json:"votes"`
	Lineups         map[string]lineupDTO       `json:"lineups"`
	Result          *resultDTO                 `json:"result,omitempty"`
	ReportedAt      *string                    `json:"reportedAt,omitempty"`
	ReportedBy      string                     `json:"reportedBy,omitempty"`
	Version         int64                      `json:"version"`
	CreatedAt       string                     `json:"createdAt"`
	UpdatedAt       string                     `json:"updatedAt"`
}

type proposalDTO struct {
	At         string `json:"at"`
	AtMillis   int64  `json:"atMillis"`
	ProposedBy string `json:"proposedBy"`
}

type lineupDTO struct {
	Admin       bool              `json:"admin"`
	ClubID      string            `json:"clubId,omitempty"`
	Formation   string            `json:"formation"`
	Assignments map[string]string `json:"assignments"`
	UpdatedAt   string            `json:"updatedAt"`
}

type resultDTO struct {
	HomeScore  int                 `json:"homeScore"`
	AwayScore  int                 `json:"awayScore"`
	Summary    string              `json:"summary,omitempty"`
	HomeMOTM   string              `json:"homeMotm,omitempty"`
	AwayMOTM   string              `json:"awayMotm,omitempty"`
	Home       []detailRowDTO      `json:"home"`
	Away       []detailRowDTO      `json:"away"`
	Unresolved []unresolvedNameDTO `json:"unresolved,omitempty"`
	Source     string              `json:"source"`
}

type detailRowDTO struct {
	PlayerID    string  `json:"playerId,omitempty"`
	DisplayName string  `json:"displayName"`
	Goals       int     `json:"goals"`
	Assists     int     `json:"assists"`
	Rating      float64 `json:"rating"`
}

type unresolvedNameDTO struct {
	Side string `json:"side"`
	Name string `json:"name"`
}

type standingDTO struct {
	ClubID         string `json:"clubId"`
	Position       int    `json:"position"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Points         int    `json:"points"`
}

type playerStatDTO struct {
	Season             string  `json:"season"`
	PlayerID           string  `json:"playerId"`
	Appearances        int     `json:"appearances"`
	Goals              int     `json:"goals"`
	Assists            int     `json:"assists"`
	AverageRating      float64 `json:"averageRating"`
	GoalStreak         int     `json:"goalStreak"`
	AssistStreak       int     `json:"assistStreak"`
	ContributionStreak int     `json:"contributionStreak"`
}

type rankingDTO struct {
	ClubID    string `json:"clubId"`
	Season    string `json:"season"`
	Position  int    `json:"position"`
	CupStage  string `json:"cupStage"`
	Points    int    `json:"points"`
	Tier      string `json:"tier"`
	UpdatedAt string `json:"updatedAt"`
}

type walletDTO struct {
	ClubID          string `json:"clubId"`
	Balance         int64  `json:"balance"`
	LastCollectedAt string `json:"lastCollectedAt"`
}

type accrualDTO struct {
	Days            int64  `json:"days"`
	PerDay          int64  `json:"perDay"`
	Amount          int64  `json:"amount"`
	Tier            string `json:"tier"`
	NextCollectedAt string `json:"nextCollectedAt"`
}

type collectDTO struct {
	Wallet  walletDTO  `json:"wallet"`
	Accrual accrualDTO `json:"accrual"`
	Applied *bool      `json:"applied,omitempty"`
	Reason  string     `json:"reason,omitempty"`
}

type bonusDTO struct {
	Season      string     `json:"season"`
	ClubID      string     `json:"clubId"`
	CupStage    string     `json:"cupStage"`
	Amount      int64      `json:"amount"`
	Applied     bool       `json:"applied"`
	AlreadyPaid bool       `json:"alreadyPaid"`
	DryRun      bool       `json:"dryRun"`
	Wallet      *walletDTO `json:"wallet,omitempty"`
}

type freeTextDTO struct {
	Fixture fixtureDTO `json:"fixture"`
	Empty   bool       `json:"empty"`
	Applied bool       `json:"applied"`
}

type voteDTO struct {
	Fixture fixtureDTO `json:"fixture"`
	Locked  bool       `json:"locked"`
}

type playerDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases"`
	ClubID      string   `json:"clubId,omitempty"`
	ExternalRef string   `json:"externalRef,omitempty"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	out := formatTime(*t)
	return &out
}

func fixtureToDTO(item fixture.Fixture) fixtureDTO {
	proposals := make([]proposalDTO, 0, len(item.Proposals))
	for _, p := range item.Proposals {
		proposals = append(proposals, proposalDTO{At: formatTime(p.At), AtMillis: p.At.UnixMilli(), ProposedBy: p.ProposedBy})
	}

	votes := make(map[string]map[string]bool, len(item.Votes))
	for at, voters := range item.Votes {
		inner := make(map[string]bool, len(voters))
		for voter, agree := range voters {
			inner[voter] = agree
		}
		votes[strconv.FormatInt(at, 10)] = inner
	}

	lineups := make(map[string]lineupDTO, len(item.Lineups))
	for key, l := range item.Lineups {
		assignments := make(map[string]string, len(l.Assignments))
		for slot, playerID := range l.Assignments {
			assignments[slot] = playerID
		}
		lineups[key] = lineupDTO{
			Admin:       l.Owner.Admin,
			ClubID:      l.Owner.ClubID,
			Formation:   l.Formation,
			Assignments: assignments,
			UpdatedAt:   formatTime(l.UpdatedAt),
		}
	}

	return fixtureDTO{
		ID:              item.ID,
		Season:          item.Season,
		Competition:     string(item.Competition),
		Group:           item.Group,
		Round:           item.Round,
		HomeClubID:      item.HomeClubID,
		AwayClubID:      item.AwayClubID,
		ExternalMatchID: item.ExternalMatchID,
		Status:          string(item.Status),
		When:            formatTimePtr(item.When),
		LockedAt:        formatTimePtr(item.LockedAt),
		Proposals:       proposals,
		Votes:           votes,
		Lineups:         lineups,
		Result:          resultToDTO(item.Result),
		ReportedAt:      formatTimePtr(item.ReportedAt),
		ReportedBy:      item.ReportedBy,
		Version:         item.Version,
		CreatedAt:       formatTime(item.CreatedAt),
		UpdatedAt:       formatTime(item.UpdatedAt),
	}
}

func fixturesToDTO(items []fixture.Fixture) []fixtureDTO {
	out := make([]fixtureDTO, 0, len(items))
	for _, item := range items {
		out = append(out, fixtureToDTO(item))
	}
	return out
}

func resultToDTO(r *fixture.Result) *resultDTO {
	if r == nil {
		return nil
	}
	unresolved := make([]unresolvedNameDTO, 0, len(r.Unresolved))
	for _, u := range r.Unresolved {
		unresolved = append(unresolved, unresolvedNameDTO{Side: string(u.Side), Name: u.Name})
	}
	return &resultDTO{
		HomeScore:  r.HomeScore,
		AwayScore:  r.AwayScore,
		Summary:    r.Summary,
		HomeMOTM:   r.HomeMOTM,
		AwayMOTM:   r.AwayMOTM,
		Home:       detailRowsToDTO(r.Home),
		Away:       detailRowsToDTO(r.Away),
		Unresolved: unresolved,
		Source:     string(r.Source),
	}
}

func detailRowsToDTO(rows []fixture.DetailRow) []detailRowDTO {
	out := make([]detailRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, detailRowDTO{
			PlayerID:    row.PlayerID,
			DisplayName: row.DisplayName,
			Goals:       row.Goals,
			Assists:     row.Assists,
			Rating:      row.Rating,
		})
	}
	return out
}

func standingsToDTO(rows []standing.Standing) []standingDTO {
	out := make([]standingDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, standingDTO{
			ClubID:         row.ClubID,
			Position:       row.Position,
			Played:         row.Played,
			Won:            row.Won,
			Drawn:          row.Drawn,
			Lost:           row.Lost,
			GoalsFor:       row.GoalsFor,
			GoalsAgainst:   row.GoalsAgainst,
			GoalDifference: row.GoalDifference,
			Points:         row.Points,
		})
	}
	return out
}

func playerStatToDTO(s playerstat.Stat) playerStatDTO {
	return playerStatDTO{
		Season:             s.Season,
		PlayerID:           s.PlayerID,
		Appearances:        s.Appearances,
		Goals:              s.Goals,
		Assists:            s.Assists,
		AverageRating:      s.AverageRating(),
		GoalStreak:         s.GoalStreak,
		AssistStreak:       s.AssistStreak,
		ContributionStreak: s.ContributionStreak,
	}
}

func rankingsToDTO(items []ranking.Ranking) []rankingDTO {
	out := make([]rankingDTO, 0, len(items))
	for _, item := range items {
		out = append(out, rankingDTO{
			ClubID:    item.ClubID,
			Season:    item.Season,
			Position:  item.Position,
			CupStage:  string(item.CupStage),
			Points:    item.Points,
			Tier:      string(item.Tier),
			UpdatedAt: formatTime(item.UpdatedAt),
		})
	}
	return out
}

func walletToDTO(w wallet.Wallet) walletDTO {
	return walletDTO{
		ClubID:          w.ClubID,
		Balance:         w.Balance,
		LastCollectedAt: formatTime(w.LastCollectedAt),
	}
}

func accrualToDTO(a wallet.Accrual) accrualDTO {
	return accrualDTO{
		Days:            a.Days,
		PerDay:          a.PerDay,
		Amount:          a.Amount,
		Tier:            string(a.Tier),
		NextCollectedAt: formatTime(a.NextCollectedAt),
	}
}

func bonusToDTO(b usecase.BonusOutcome) bonusDTO {
	out := bonusDTO{
		Season:      b.Season,
		ClubID:      b.ClubID,
		CupStage:    string(b.CupStage),
		Amount:      b.Amount,
		Applied:     b.Applied,
		AlreadyPaid: b.AlreadyPaid,
		DryRun:      b.DryRun,
	}
	if b.Wallet.ClubID != "" {
		w := walletToDTO(b.Wallet)
		out.Wallet = &w
	}
	return out
}

func playerToDTO(p player.Player) playerDTO {
	aliases := append([]string(nil), p.Aliases...)
	sort.Strings(aliases)
	if aliases == nil {
		aliases = []string{}
	}
	return playerDTO{
		ID:          p.ID,
		Name:        p.Name,
		Aliases:     aliases,
		ClubID:      p.ClubID,
		ExternalRef: p.ExternalRef,
	}
}
