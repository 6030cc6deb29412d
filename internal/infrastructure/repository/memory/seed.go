package memory

import (
	"github.com/riskibarqy/club-league/internal/domain/club"
	"github.com/riskibarqy/club-league/internal/domain/player"
)

const (
	ClubIDNorthHarbour = "club-north-harbour"
	ClubIDRedLions     = "club-red-lions"
	ClubIDBlueSharks   = "club-blue-sharks"
	ClubIDGreenValley  = "club-green-valley"
)

func SeedClubs() []club.Club {
	return []club.Club{
		{ID: ClubIDNorthHarbour, Name: "North Harbour", ExternalRef: "pc-1001"},
		{ID: ClubIDRedLions, Name: "Red Lions", ExternalRef: "pc-1002"},
		{ID: ClubIDBlueSharks, Name: "Blue Sharks", ExternalRef: "pc-1003"},
		{ID: ClubIDGreenValley, Name: "Green Valley", ExternalRef: "pc-1004"},
	}
}

func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: "pl-nh-01", Name: "Arlo Matsuda", Aliases: []string{"arlo", "matsu"}, ClubID: ClubIDNorthHarbour, ExternalRef: "pp-501"},
		{ID: "pl-nh-02", Name: "Bea Lindqvist", Aliases: []string{"bea"}, ClubID: ClubIDNorthHarbour, ExternalRef: "pp-502"},
		{ID: "pl-nh-03", Name: "Caio Ferreira", ClubID: ClubIDNorthHarbour, ExternalRef: "pp-503"},
		{ID: "pl-rl-01", Name: "Dara O'Neill", Aliases: []string{"dara"}, ClubID: ClubIDRedLions, ExternalRef: "pp-601"},
		{ID: "pl-rl-02", Name: "Emil Novak", ClubID: ClubIDRedLions, ExternalRef: "pp-602"},
		{ID: "pl-rl-03", Name: "Fen Zhao", Aliases: []string{"fenz"}, ClubID: ClubIDRedLions, ExternalRef: "pp-603"},
		{ID: "pl-bs-01", Name: "Gio Romano", ClubID: ClubIDBlueSharks, ExternalRef: "pp-701"},
		{ID: "pl-bs-02", Name: "Hana Sato", Aliases: []string{"hana"}, ClubID: ClubIDBlueSharks, ExternalRef: "pp-702"},
		{ID: "pl-gv-01", Name: "Ivo Petrov", ClubID: ClubIDGreenValley, ExternalRef: "pp-801"},
		{ID: "pl-gv-02", Name: "Juno Adeyemi", Aliases: []string{"juno"}, ClubID: ClubIDGreenValley, ExternalRef: "pp-802"},
		{ID: "pl-fa-01", Name: "Kai Moreno", Aliases: []string{"kai"}},
	}
}
