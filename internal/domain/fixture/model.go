package fixture

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusFinal     Status = "final"
)

type Competition string

const (
	CompetitionLeague Competition = "league"
	CompetitionCup    Competition = "cup"
)

type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

type ResultSource string

const (
	SourceStructured ResultSource = "structured"
	SourceFreeText   ResultSource = "freetext"
	SourceProvider   ResultSource = "provider"
)

// AdminVoter is the voter and lineup key recorded for administrator actions.
const AdminVoter = "admin"

var (
	ErrFinal        = errors.New("fixture is final")
	ErrNoProposal   = errors.New("timestamp has not been proposed")
	ErrLockConflict = errors.New("fixture is already locked to a different time")
	ErrNotLocked    = errors.New("fixture is not scheduled")
)

// Owner identifies who a lineup or vote belongs to: either a club or the administrator.
type Owner struct {
	Admin  bool
	ClubID string
}

func AdminOwner() Owner {
	return Owner{Admin: true}
}

func ClubOwner(clubID string) Owner {
	return Owner{ClubID: strings.TrimSpace(clubID)}
}

func (o Owner) Key() string {
	if o.Admin {
		return AdminVoter
	}
	return o.ClubID
}

type Proposal struct {
	At         time.Time
	ProposedBy string
}

// VoteLedger maps a proposed kickoff (unix milliseconds) to each voter's agreement.
type VoteLedger map[int64]map[string]bool

type Lineup struct {
	Owner       Owner
	Formation   string
	Assignments map[string]string
	UpdatedAt   time.Time
}

// DetailRow is one player's line in a reported result.
type DetailRow struct {
	PlayerID    string
	DisplayName string
	Goals       int
	Assists     int
	Rating      float64
}

func (r DetailRow) Resolved() bool {
	return strings.TrimSpace(r.PlayerID) != ""
}

type UnresolvedName struct {
	Side Side
	Name string
}

type Result struct {
	HomeScore  int
	AwayScore  int
	Summary    string
	HomeMOTM   string
	AwayMOTM   string
	Home       []DetailRow
	Away       []DetailRow
	Unresolved []UnresolvedName
	Source     ResultSource
}

func (r Result) Rows(side Side) []DetailRow {
	if side == SideAway {
		return r.Away
	}
	return r.Home
}

// Fixture is one match between two clubs.
type Fixture struct {
	ID              string
	Season          string
	Competition     Competition
	Group           string
	Round           string
	HomeClubID      string
	AwayClubID      string
	ExternalMatchID string
	Status          Status
	When            *time.Time
	LockedAt        *time.Time
	Proposals       []Proposal
	Votes           VoteLedger
	Lineups         map[string]Lineup
	Result          *Result
	ReportedAt      *time.Time
	ReportedBy      string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Version         int64
}

func (f Fixture) Validate() error {
	if strings.TrimSpace(f.ID) == "" {
		return fmt.Errorf("fixture id is required")
	}
	if strings.TrimSpace(f.Season) == "" {
		return fmt.Errorf("fixture season is required")
	}
	home := strings.TrimSpace(f.HomeClubID)
	away := strings.TrimSpace(f.AwayClubID)
	if home == "" || away == "" {
		return fmt.Errorf("home and away club ids are required")
	}
	if home == away {
		return fmt.Errorf("home and away clubs must differ")
	}
	switch f.Competition {
	case CompetitionLeague, CompetitionCup:
	default:
		return fmt.Errorf("invalid competition: %s", f.Competition)
	}
	return nil
}

// SideOf returns which slot clubID occupies in the fixture.
func (f Fixture) SideOf(clubID string) (Side, bool) {
	switch strings.TrimSpace(clubID) {
	case "":
		return "", false
	case f.HomeClubID:
		return SideHome, true
	case f.AwayClubID:
		return SideAway, true
	default:
		return "", false
	}
}

func (f Fixture) ClubFor(side Side) string {
	if side == SideAway {
		return f.AwayClubID
	}
	return f.HomeClubID
}

func (f Fixture) IsFinal() bool {
	return f.Status == StatusFinal
}

func (f Fixture) HasProposal(at time.Time) bool {
	key := at.UnixMilli()
	for _, p := range f.Proposals {
		if p.At.UnixMilli() == key {
			return true
		}
	}
	return false
}

// Propose appends a proposal unless the timestamp is already present. It reports whether anything changed.
func (f *Fixture) Propose(at time.Time, by string) (bool, error) {
	if f.IsFinal() {
		return false, ErrFinal
	}
	if f.HasProposal(at) {
		return false, nil
	}
	f.Proposals = append(f.Proposals, Proposal{At: at.UTC(), ProposedBy: by})
	if f.Votes == nil {
		f.Votes = make(VoteLedger)
	}
	if _, ok := f.Votes[at.UnixMilli()]; !ok {
		f.Votes[at.UnixMilli()] = make(map[string]bool)
	}
	return true, nil
}

// Vote records voter's agreement for a proposed timestamp and applies the lock rule.
// It returns true when this vote locked the fixture.
func (f *Fixture) Vote(at time.Time, voter string, agree bool, now time.Time) (bool, error) {
	if f.IsFinal() {
		return false, ErrFinal
	}
	if !f.HasProposal(at) {
		return false, ErrNoProposal
	}

	key := at.UnixMilli()
	if f.agreed(key, voter, agree) && f.Status == StatusScheduled && f.When != nil && f.When.UnixMilli() != key {
		return false, ErrLockConflict
	}

	if f.Votes == nil {
		f.Votes = make(VoteLedger)
	}
	if f.Votes[key] == nil {
		f.Votes[key] = make(map[string]bool)
	}
	f.Votes[key][voter] = agree

	if !f.Agreed(at) {
		return false, nil
	}
	if f.Status == StatusScheduled && f.When != nil && f.When.UnixMilli() == key {
		return false, nil
	}

	when := time.UnixMilli(key).UTC()
	lockedAt := now.UTC()
	f.Status = StatusScheduled
	f.When = &when
	f.LockedAt = &lockedAt
	return true, nil
}

// agreed reports whether both participants would agree on key once voter's vote is applied.
func (f Fixture) agreed(key int64, voter string, agree bool) bool {
	votes := f.Votes[key]
	home := votes[f.HomeClubID]
	away := votes[f.AwayClubID]
	switch voter {
	case f.HomeClubID:
		home = agree
	case f.AwayClubID:
		away = agree
	}
	return home && away
}

// Agreed reports whether both participant clubs voted true for at. Admin votes never count.
func (f Fixture) Agreed(at time.Time) bool {
	votes := f.Votes[at.UnixMilli()]
	return votes[f.HomeClubID] && votes[f.AwayClubID]
}

// Unlock returns a scheduled fixture to pending, keeping proposals and votes.
func (f *Fixture) Unlock() error {
	if f.IsFinal() {
		return ErrFinal
	}
	if f.Status != StatusScheduled {
		return ErrNotLocked
	}
	f.Status = StatusPending
	f.When = nil
	f.LockedAt = nil
	return nil
}

func (f *Fixture) SetLineup(lineup Lineup) error {
	if f.IsFinal() {
		return ErrFinal
	}
	if f.Lineups == nil {
		f.Lineups = make(map[string]Lineup)
	}
	f.Lineups[lineup.Owner.Key()] = lineup
	return nil
}

// Finalize overwrites the result and moves the fixture to final.
func (f *Fixture) Finalize(result Result, reportedBy string, now time.Time) {
	at := now.UTC()
	if f.When == nil {
		f.When = &at
	}
	f.Result = &result
	f.Status = StatusFinal
	f.ReportedAt = &at
	f.ReportedBy = reportedBy
}

// PlayedAt is the time used to order matches in statistics history.
func (f Fixture) PlayedAt() time.Time {
	if f.When != nil {
		return *f.When
	}
	if f.ReportedAt != nil {
		return *f.ReportedAt
	}
	return f.CreatedAt
}

// Clone deep-copies the fixture so callers cannot alias stored sub-state.
func (f Fixture) Clone() Fixture {
	out := f
	out.When = cloneTime(f.When)
	out.LockedAt = cloneTime(f.LockedAt)
	out.ReportedAt = cloneTime(f.ReportedAt)
	out.Proposals = append([]Proposal(nil), f.Proposals...)
	if f.Votes != nil {
		out.Votes = make(VoteLedger, len(f.Votes))
		for at, votes := range f.Votes {
			inner := make(map[string]bool, len(votes))
			for voter, agree := range votes {
				inner[voter] = agree
			}
			out.Votes[at] = inner
		}
	}
	if f.Lineups != nil {
		out.Lineups = make(map[string]Lineup, len(f.Lineups))
		for key, lineup := range f.Lineups {
			assignments := make(map[string]string, len(lineup.Assignments))
			for pos, player := range lineup.Assignments {
				assignments[pos] = player
			}
			lineup.Assignments = assignments
			out.Lineups[key] = lineup
		}
	}
	if f.Result != nil {
		result := *f.Result
		result.Home = append([]DetailRow(nil), f.Result.Home...)
		result.Away = append([]DetailRow(nil), f.Result.Away...)
		result.Unresolved = append([]UnresolvedName(nil), f.Result.Unresolved...)
		out.Result = &result
	}
	return out
}

// Public strips the vote ledger for unauthenticated projections.
func (f Fixture) Public() Fixture {
	out := f.Clone()
	out.Votes = nil
	return out
}

func SortByPlayedAt(items []Fixture) {
	sort.SliceStable(items, func(i, j int) bool {
		left, right := items[i].PlayedAt(), items[j].PlayedAt()
		if !left.Equal(right) {
			return left.Before(right)
		}
		return items[i].ID < items[j].ID
	})
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
