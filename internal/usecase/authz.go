package usecase

import (
	"fmt"

	"github.com/riskibarqy/club-league/internal/domain/fixture"
	"github.com/riskibarqy/club-league/internal/domain/identity"
)

func requireAdmin(caller identity.Caller) error {
	if caller.IsAdmin() {
		return nil
	}
	if caller.IsAnonymous() {
		return fmt.Errorf("%w: authentication required", ErrUnauthorized)
	}
	return fmt.Errorf("%w: admin role required", ErrForbidden)
}

func requireClub(caller identity.Caller, clubID string) error {
	if caller.CanActForClub(clubID) {
		return nil
	}
	if caller.IsAnonymous() {
		return fmt.Errorf("%w: authentication required", ErrUnauthorized)
	}
	return fmt.Errorf("%w: caller does not manage club %s", ErrForbidden, clubID)
}

// participantOwner resolves who the caller acts as on a fixture: the admin, or one of the two clubs.
func participantOwner(caller identity.Caller, item fixture.Fixture) (fixture.Owner, error) {
	if caller.IsAdmin() {
		return fixture.AdminOwner(), nil
	}
	if caller.IsAnonymous() {
		return fixture.Owner{}, fmt.Errorf("%w: authentication required", ErrUnauthorized)
	}
	if _, ok := item.SideOf(caller.ClubID); !ok {
		return fixture.Owner{}, fmt.Errorf("%w: club %s does not participate in fixture %s", ErrForbidden, caller.ClubID, item.ID)
	}
	return fixture.ClubOwner(caller.ClubID), nil
}

func canSeeVotes(caller identity.Caller, item fixture.Fixture) bool {
	if caller.IsAdmin() {
		return true
	}
	_, ok := item.SideOf(caller.ClubID)
	return ok && caller.IsManager()
}

// mapFixtureError translates domain state-machine errors into usecase errors.
func mapFixtureError(err error) error {
	switch {
	case err == nil:
		return nil
	case isAny(err, fixture.ErrFinal, fixture.ErrLockConflict, fixture.ErrNotLocked, fixture.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case isAny(err, fixture.ErrNoProposal):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	default:
		return err
	}
}
