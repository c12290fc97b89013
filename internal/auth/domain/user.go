package domain

import "time"

// Roles carried in credentials and checked by RequireRole.
const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)

// Principal is an account that can log in.
type Principal struct {
	ID           string
	Username     string
	Nickname     string
	Role         string
	PasswordHash string // argon2id PHC string, or bcrypt for imported accounts
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
