package player

import (
	"fmt"
	"strings"
	"unicode"
)

// Player is a durable player identity. ClubID is the roster the player is assigned to, empty for free agents.
type Player struct {
	ID          string
	Name        string
	Aliases     []string
	ClubID      string
	ExternalRef string
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if NormalizeName(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	return nil
}

// Matches reports whether the normalized query equals the player's name or any alias.
func (p Player) Matches(normalizedQuery string) bool {
	if normalizedQuery == "" {
		return false
	}
	if NormalizeName(p.Name) == normalizedQuery {
		return true
	}
	for _, alias := range p.Aliases {
		if NormalizeName(alias) == normalizedQuery {
			return true
		}
	}
	return false
}

// NormalizeName lowercases and drops everything that is not a letter or digit.
func NormalizeName(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
