package auth

// UserRole is the role stored on accounts and carried in tokens.
type UserRole string

const (
	// RoleUser is the default role given at registration
	RoleUser UserRole = "user"
	// RoleAdmin is an administrative account
	RoleAdmin UserRole = "admin"
	// RolePerson is the role of tokens minted for person records
	RolePerson UserRole = "person"
)

// DefaultRole is assigned to newly registered users.
var DefaultRole = RoleUser

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RolePerson:
		return true
	default:
		return false
	}
}

func (r UserRole) String() string {
	return string(r)
}
