package models

type ActorRole string

const (
	RoleAdmin   ActorRole = "admin"
	RoleStartup ActorRole = "startup"
)

// Actor is the already-authenticated caller, resolved once at the auth
// boundary and carried on the request context from there.
type Actor struct {
	ID   string    `json:"id"`
	Role ActorRole `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
