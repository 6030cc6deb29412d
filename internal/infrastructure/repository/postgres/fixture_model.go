package postgres

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/club-league/internal/domain/fixture"
)

type fixtureTableModel struct {
	ID              int64          `db:"id"`
	PublicID        string         `db:"public_id"`
	Season          string         `db:"season"`
	Competition     string         `db:"competition"`
	GroupName       string         `db:"group_name"`
	Round           string         `db:"round"`
	HomeClubID      string         `db:"home_club_public_id"`
	AwayClubID      string         `db:"away_club_public_id"`
	ExternalMatchID sql.NullString `db:"external_match_id"`
	Status          string         `db:"status"`
	ScheduledAt     sql.NullTime   `db:"scheduled_at"`
	LockedAt        sql.NullTime   `db:"locked_at"`
	Proposals       []byte         `db:"proposals"`
	Votes           []byte         `db:"votes"`
	Lineups         []byte         `db:"lineups"`
	Result          []byte         `db:"result"`
	ReportedAt      sql.NullTime   `db:"reported_at"`
	ReportedBy      string         `db:"reported_by"`
	Version         int64          `db:"version"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
	DeletedAt       *time.Time     `db:"deleted_at"`
}

type fixtureInsertModel struct {
	PublicID        string     `db:"public_id"`
	Season          string     `db:"season"`
	Competition     string     `db:"competition"`
	GroupName       string     `db:"group_name"`
	Round           string     `db:"round"`
	HomeClubID      string     `db:"home_club_public_id"`
	AwayClubID      string     `db:"away_club_public_id"`
	ExternalMatchID *string    `db:"external_match_id"`
	Status          string     `db:"status"`
	ScheduledAt     *time.Time `db:"scheduled_at"`
	LockedAt        *time.Time `db:"locked_at"`
	Proposals       string     `db:"proposals"`
	Votes           string     `db:"votes"`
	Lineups         string     `db:"lineups"`
	Result          *string    `db:"result"`
	ReportedAt      *time.Time `db:"reported_at"`
	ReportedBy      string     `db:"reported_by"`
	Version         int64      `db:"version"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// JSONB documents for the negotiation and result sub-state.
type proposalDocument struct {
	At         time.Time `json:"at"`
	ProposedBy string    `json:"proposed_by"`
}

type lineupDocument struct {
	Admin       bool              `json:"admin,omitempty"`
	ClubID      string            `json:"club_id,omitempty"`
	Formation   string            `json:"formation"`
	Assignments map[string]string `json:"assignments,omitempty"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type detailRowDocument struct {
	PlayerID    string  `json:"player_id,omitempty"`
	DisplayName string  `json:"display_name,omitempty"`
	Goals       int     `json:"goals"`
	Assists     int     `json:"assists"`
	Rating      float64 `json:"rating"`
}

type unresolvedDocument struct {
	Side string `json:"side"`
	Name string `json:"name"`
}

type resultDocument struct {
	HomeScore  int                  `json:"home_score"`
	AwayScore  int                  `json:"away_score"`
	Summary    string               `json:"summary,omitempty"`
	HomeMOTM   string               `json:"home_motm,omitempty"`
	AwayMOTM   string               `json:"away_motm,omitempty"`
	Home       []detailRowDocument  `json:"home"`
	Away       []detailRowDocument  `json:"away"`
	Unresolved []unresolvedDocument `json:"unresolved,omitempty"`
	Source     string               `json:"source"`
}

func fixtureToInsertModel(item fixture.Fixture) (fixtureInsertModel, error) {
	proposals := make([]proposalDocument, 0, len(item.Proposals))
	for _, p := range item.Proposals {
		proposals = append(proposals, proposalDocument{At: p.At.UTC(), ProposedBy: p.ProposedBy})
	}
	proposalsRaw, err := sonic.MarshalString(proposals)
	if err != nil {
		return fixtureInsertModel{}, fmt.Errorf("encode proposals: %w", err)
	}

	votes := make(map[string]map[string]bool, len(item.Votes))
	for at, ballot := range item.Votes {
		votes[strconv.FormatInt(at, 10)] = ballot
	}
	votesRaw, err := sonic.MarshalString(votes)
	if err != nil {
		return fixtureInsertModel{}, fmt.Errorf("encode votes: %w", err)
	}

	lineups := make(map[string]lineupDocument, len(item.Lineups))
	for key, l := range item.Lineups {
		lineups[key] = lineupDocument{
			Admin:       l.Owner.Admin,
			ClubID:      l.Owner.ClubID,
			Formation:   l.Formation,
			Assignments: l.Assignments,
			UpdatedAt:   l.UpdatedAt.UTC(),
		}
	}
	lineupsRaw, err := sonic.MarshalString(lineups)
	if err != nil {
		return fixtureInsertModel{}, fmt.Errorf("encode lineups: %w", err)
	}

	var resultRaw *string
	if item.Result != nil {
		encoded, err := sonic.MarshalString(resultToDocument(*item.Result))
		if err != nil {
			return fixtureInsertModel{}, fmt.Errorf("encode result: %w", err)
		}
		resultRaw = &encoded
	}

	return fixtureInsertModel{
		PublicID:        item.ID,
		Season:          item.Season,
		Competition:     string(item.Competition),
		GroupName:       item.Group,
		Round:           item.Round,
		HomeClubID:      item.HomeClubID,
		AwayClubID:      item.AwayClubID,
		ExternalMatchID: nullableString(item.ExternalMatchID),
		Status:          string(item.Status),
		ScheduledAt:     nullableTime(item.When),
		LockedAt:        nullableTime(item.LockedAt),
		Proposals:       proposalsRaw,
		Votes:           votesRaw,
		Lineups:         lineupsRaw,
		Result:          resultRaw,
		ReportedAt:      nullableTime(item.ReportedAt),
		ReportedBy:      item.ReportedBy,
		Version:         item.Version,
		CreatedAt:       item.CreatedAt.UTC(),
		UpdatedAt:       item.UpdatedAt.UTC(),
	}, nil
}

func fixtureFromRow(row fixtureTableModel) (fixture.Fixture, error) {
	item := fixture.Fixture{
		ID:              row.PublicID,
		Season:          row.Season,
		Competition:     fixture.Competition(row.Competition),
		Group:           row.GroupName,
		Round:           row.Round,
		HomeClubID:      row.HomeClubID,
		AwayClubID:      row.AwayClubID,
		ExternalMatchID: row.ExternalMatchID.String,
		Status:          fixture.Status(row.Status),
		When:            nullTimeToTimePtr(row.ScheduledAt),
		LockedAt:        nullTimeToTimePtr(row.LockedAt),
		ReportedAt:      nullTimeToTimePtr(row.ReportedAt),
		ReportedBy:      row.ReportedBy,
		Version:         row.Version,
		CreatedAt:       row.CreatedAt.UTC(),
		UpdatedAt:       row.UpdatedAt.UTC(),
		Votes:           make(fixture.VoteLedger),
		Lineups:         make(map[string]fixture.Lineup),
	}

	if len(row.Proposals) > 0 {
		var proposals []proposalDocument
		if err := sonic.Unmarshal(row.Proposals, &proposals); err != nil {
			return fixture.Fixture{}, fmt.Errorf("decode proposals fixture=%s: %w", row.PublicID, err)
		}
		for _, p := range proposals {
			item.Proposals = append(item.Proposals, fixture.Proposal{At: p.At.UTC(), ProposedBy: p.ProposedBy})
		}
	}

	if len(row.Votes) > 0 {
		var votes map[string]map[string]bool
		if err := sonic.Unmarshal(row.Votes, &votes); err != nil {
			return fixture.Fixture{}, fmt.Errorf("decode votes fixture=%s: %w", row.PublicID, err)
		}
		for rawAt, ballot := range votes {
			at, err := strconv.ParseInt(rawAt, 10, 64)
			if err != nil {
				return fixture.Fixture{}, fmt.Errorf("decode vote key %q fixture=%s: %w", rawAt, row.PublicID, err)
			}
			if ballot == nil {
				ballot = make(map[string]bool)
			}
			item.Votes[at] = ballot
		}
	}

	if len(row.Lineups) > 0 {
		var lineups map[string]lineupDocument
		if err := sonic.Unmarshal(row.Lineups, &lineups); err != nil {
			return fixture.Fixture{}, fmt.Errorf("decode lineups fixture=%s: %w", row.PublicID, err)
		}
		for key, doc := range lineups {
			item.Lineups[key] = fixture.Lineup{
				Owner:       fixture.Owner{Admin: doc.Admin, ClubID: doc.ClubID},
				Formation:   doc.Formation,
				Assignments: doc.Assignments,
				UpdatedAt:   doc.UpdatedAt.UTC(),
			}
		}
	}

	if len(row.Result) > 0 {
		var doc resultDocument
		if err := sonic.Unmarshal(row.Result, &doc); err != nil {
			return fixture.Fixture{}, fmt.Errorf("decode result fixture=%s: %w", row.PublicID, err)
		}
		result := resultFromDocument(doc)
		item.Result = &result
	}
	return item, nil
}

func resultToDocument(result fixture.Result) resultDocument {
	doc := resultDocument{
		HomeScore: result.HomeScore,
		AwayScore: result.AwayScore,
		Summary:   result.Summary,
		HomeMOTM:  result.HomeMOTM,
		AwayMOTM:  result.AwayMOTM,
		Home:      rowsToDocument(result.Home),
		Away:      rowsToDocument(result.Away),
		Source:    string(result.Source),
	}
	for _, u := range result.Unresolved {
		doc.Unresolved = append(doc.Unresolved, unresolvedDocument{Side: string(u.Side), Name: u.Name})
	}
	return doc
}

func resultFromDocument(doc resultDocument) fixture.Result {
	result := fixture.Result{
		HomeScore: doc.HomeScore,
		AwayScore: doc.AwayScore,
		Summary:   doc.Summary,
		HomeMOTM:  doc.HomeMOTM,
		AwayMOTM:  doc.AwayMOTM,
		Home:      rowsFromDocument(doc.Home),
		Away:      rowsFromDocument(doc.Away),
		Source:    fixture.ResultSource(doc.Source),
	}
	for _, u := range doc.Unresolved {
		result.Unresolved = append(result.Unresolved, fixture.UnresolvedName{Side: fixture.Side(u.Side), Name: u.Name})
	}
	return result
}

func rowsToDocument(rows []fixture.DetailRow) []detailRowDocument {
	out := make([]detailRowDocument, 0, len(rows))
	for _, r := range rows {
		out = append(out, detailRowDocument{
			PlayerID:    r.PlayerID,
			DisplayName: r.DisplayName,
			Goals:       r.Goals,
			Assists:     r.Assists,
			Rating:      r.Rating,
		})
	}
	return out
}

func rowsFromDocument(rows []detailRowDocument) []fixture.DetailRow {
	out := make([]fixture.DetailRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, fixture.DetailRow{
			PlayerID:    r.PlayerID,
			DisplayName: r.DisplayName,
			Goals:       r.Goals,
			Assists:     r.Assists,
			Rating:      r.Rating,
		})
	}
	return out
}
