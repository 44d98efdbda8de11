package internal

import "strings"

// AccountRole is the role the identity provider assigns to a principal
type AccountRole string

const (
	AccountUser  AccountRole = "user"
	AccountAdmin AccountRole = "admin"
)

// GuestToken is the storage key used when no identity is bound
const GuestToken = "guest"

// ParseAccountRole maps a role string onto the closed user/admin set.
// Anything that is not "admin" is treated as a regular user.
func ParseAccountRole(s string) AccountRole {
	if strings.EqualFold(strings.TrimSpace(s), string(AccountAdmin)) {
		return AccountAdmin
	}
	return AccountUser
}

// Identity is the authenticated principal whose sessions are isolated from all others
type Identity struct {
	ID   string      `json:"id" yaml:"id"`
	Role AccountRole `json:"role" yaml:"role"`
}

// GuestIdentity returns the identity used when nobody is signed in
func GuestIdentity() Identity {
	return Identity{Role: AccountUser}
}

// IsGuest reports whether no principal is bound
func (i Identity) IsGuest() bool {
	return strings.TrimSpace(i.ID) == ""
}

// IsAdmin reports whether the identity keeps an unbounded session history
func (i Identity) IsAdmin() bool {
	return i.Role == AccountAdmin
}

// StorageKey derives the persistence key for the identity
func (i Identity) StorageKey() string {
	if i.IsGuest() {
		return GuestToken
	}
	return strings.TrimSpace(i.ID)
}

// String implements fmt.Stringer
func (i Identity) String() string {
	role := i.Role
	if role == "" {
		role = AccountUser
	}
	return i.StorageKey() + " (" + string(role) + ")"
}
