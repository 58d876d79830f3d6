package domain

// Actor is the authenticated caller as decoded from a session token.
type Actor struct {
	ID       string
	Role     Role
	Username string
}

// Is reports whether the actor holds role.
func (a Actor) Is(role Role) bool {
	return a.Role == role
}
