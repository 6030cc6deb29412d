package identity

import "strings"

// Role is the access level resolved by the identity gate.
type Role string

const (
	RoleAnonymous Role = ""
	RoleManager   Role = "manager"
	RoleAdmin     Role = "admin"
)

// Caller is the resolved request identity. Managers are bound to exactly one club.
type Caller struct {
	Subject string
	Role    Role
	ClubID  string
}

func Admin(subject string) Caller {
	return Caller{Subject: subject, Role: RoleAdmin}
}

func Manager(subject, clubID string) Caller {
	return Caller{Subject: subject, Role: RoleManager, ClubID: strings.TrimSpace(clubID)}
}

func (c Caller) IsAnonymous() bool {
	return c.Role != RoleAdmin && !c.IsManager()
}

func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

func (c Caller) IsManager() bool {
	return c.Role == RoleManager && c.ClubID != ""
}

// ManagesClub reports whether the caller is the manager bound to clubID.
func (c Caller) ManagesClub(clubID string) bool {
	return c.IsManager() && c.ClubID == strings.TrimSpace(clubID)
}

// CanActForClub reports whether the caller may mutate state owned by clubID.
func (c Caller) CanActForClub(clubID string) bool {
	return c.IsAdmin() || c.ManagesClub(clubID)
}

func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "administrator":
		return RoleAdmin
	case "manager", "club_manager":
		return RoleManager
	default:
		return RoleAnonymous
	}
}
