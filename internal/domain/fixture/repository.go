package fixture

import (
	"context"
	"errors"
)

var (
	ErrDuplicate = errors.New("fixture already exists")
	// ErrUnchanged returned by a Mutator skips the write; Update then returns the stored fixture.
	ErrUnchanged = errors.New("fixture unchanged")
)

type Filter struct {
	Season      string
	Competition Competition
	Group       string
	ClubID      string
	Status      Status
}

// Mutator changes a loaded fixture in place. Returning an error aborts the write.
type Mutator func(item *Fixture) error

// Repository persists fixtures. Update serializes writers per fixture id.
type Repository interface {
	Create(ctx context.Context, item Fixture) error
	GetByID(ctx context.Context, id string) (Fixture, bool, error)
	GetByExternalMatchID(ctx context.Context, externalMatchID string) (Fixture, bool, error)
	List(ctx context.Context, filter Filter) ([]Fixture, error)
	Update(ctx context.Context, id string, fn Mutator) (Fixture, bool, error)
}

// Matches reports whether item satisfies the filter.
func (f Filter) Matches(item Fixture) bool {
	if f.Season != "" && item.Season != f.Season {
		return false
	}
	if f.Competition != "" && item.Competition != f.Competition {
		return false
	}
	if f.Group != "" && item.Group != f.Group {
		return false
	}
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if f.ClubID != "" && item.HomeClubID != f.ClubID && item.AwayClubID != f.ClubID {
		return false
	}
	return true
}
