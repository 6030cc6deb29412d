// Package freetext turns pasted match transcripts into a best-effort result.
// Parsing never fails; callers check Parsed.Empty to tell "nothing found" apart from a trivial result.
package freetext

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/player"
)

// Row is one player's line as read from the transcript.
type Row struct {
	Name    string
	Goals   int
	Assists int
	Rating  float64
}

type Parsed struct {
	HomeScore *int
	AwayScore *int
	Summary   string
	HomeMOTM  string
	AwayMOTM  string
	Home      []Row
	Away      []Row
}

// Empty reports that neither a score nor any player line was recognized.
func (p Parsed) Empty() bool {
	return p.HomeScore == nil && p.AwayScore == nil && len(p.Home) == 0 && len(p.Away) == 0
}

func (p Parsed) Rows(side fixture.Side) []Row {
	if side == fixture.SideAway {
		return p.Away
	}
	return p.Home
}

// Options carries the club names that also act as side markers.
type Options struct {
	HomeClubName string
	AwayClubName string
}

var (
	splitPattern       = regexp.MustCompile(`[,;\n\r]+`)
	homeWordPattern    = regexp.MustCompile(`(?i)\bhome\b`)
	awayWordPattern    = regexp.MustCompile(`(?i)\baway\b`)
	scorePairPattern   = regexp.MustCompile(`(?i)^(?:score\s*:?\s*)?(\d+)\s*-\s*(\d+)$`)
	scoreSinglePattern = regexp.MustCompile(`(?i)^score\s*:?\s*(\d+)$`)
	playerPattern      = regexp.MustCompile(`(?i)^player\s*:\s*(.+)$`)
	goalsPattern       = regexp.MustCompile(`(?i)^(\d+)\s*goals?$`)
	assistsPattern     = regexp.MustCompile(`(?i)^(\d+)\s*assists?$`)
	ratingPattern      = regexp.MustCompile(`(?i)^rating\s*:?\s*(\d+(?:[.,]\d+)?)$`)
	motmPattern        = regexp.MustCompile(`(?i)^(?:motm|man of the match)\s*:\s*(.+)$`)
	summaryPattern     = regexp.MustCompile(`(?i)^summary\s*:\s*(.+)$`)
	numericPattern     = regexp.MustCompile(`^[\d\s.,:+-]+$`)
)

type state struct {
	opts    Options
	side    fixture.Side
	current *Row
	out     Parsed
}

// Parse reads text token by token. The active side starts at home.
func Parse(text string, opts Options) Parsed {
	st := &state{opts: opts, side: fixture.SideHome}
	for _, raw := range splitPattern.Split(text, -1) {
		token := strings.Join(strings.Fields(raw), " ")
		if token == "" {
			continue
		}
		st.consume(token)
	}
	st.flush()
	return st.out
}

func (st *state) consume(token string) {
	if side, ok := st.sideSwitch(token); ok {
		st.flush()
		st.side = side
		return
	}

	if m := scorePairPattern.FindStringSubmatch(token); m != nil {
		home, away := atoi(m[1]), atoi(m[2])
		st.out.HomeScore = &home
		st.out.AwayScore = &away
		return
	}
	if m := scoreSinglePattern.FindStringSubmatch(token); m != nil {
		score := atoi(m[1])
		if st.side == fixture.SideAway {
			st.out.AwayScore = &score
		} else {
			st.out.HomeScore = &score
		}
		return
	}

	if m := playerPattern.FindStringSubmatch(token); m != nil {
		st.flush()
		st.current = &Row{Name: strings.TrimSpace(m[1])}
		return
	}

	if m := goalsPattern.FindStringSubmatch(token); m != nil {
		st.row().Goals = atoi(m[1])
		return
	}
	if m := assistsPattern.FindStringSubmatch(token); m != nil {
		st.row().Assists = atoi(m[1])
		return
	}
	if m := ratingPattern.FindStringSubmatch(token); m != nil {
		st.row().Rating = atof(m[1])
		return
	}

	if m := motmPattern.FindStringSubmatch(token); m != nil {
		if st.side == fixture.SideAway {
			st.out.AwayMOTM = strings.TrimSpace(m[1])
		} else {
			st.out.HomeMOTM = strings.TrimSpace(m[1])
		}
		return
	}
	if m := summaryPattern.FindStringSubmatch(token); m != nil {
		st.out.Summary = strings.TrimSpace(m[1])
		return
	}

	if numericPattern.MatchString(token) {
		return
	}
	if row := st.row(); row.Name == "" {
		row.Name = token
	}
}

// sideSwitch matches the words home/away or a token that is exactly a club's name.
func (st *state) sideSwitch(token string) (fixture.Side, bool) {
	hasHome := homeWordPattern.MatchString(token)
	hasAway := awayWordPattern.MatchString(token)
	switch {
	case hasHome && !hasAway:
		return fixture.SideHome, true
	case hasAway && !hasHome:
		return fixture.SideAway, true
	}

	normalized := player.NormalizeName(token)
	if normalized == "" {
		return "", false
	}
	if name := player.NormalizeName(st.opts.HomeClubName); name != "" && name == normalized {
		return fixture.SideHome, true
	}
	if name := player.NormalizeName(st.opts.AwayClubName); name != "" && name == normalized {
		return fixture.SideAway, true
	}
	return "", false
}

func (st *state) row() *Row {
	if st.current == nil {
		st.current = &Row{}
	}
	return st.current
}

func (st *state) flush() {
	if st.current == nil {
		return
	}
	row := *st.current
	st.current = nil
	row.Name = strings.TrimSpace(row.Name)
	if row.Name == "" {
		return
	}
	if st.side == fixture.SideAway {
		st.out.Away = append(st.out.Away, row)
	} else {
		st.out.Home = append(st.out.Home, row)
	}
}

func atoi(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func atof(raw string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
