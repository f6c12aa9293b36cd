package domain

// Role names stored on the user record and embedded in JWT claims.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)
