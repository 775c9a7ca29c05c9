package model

type UserRole string

const (
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleSuperAdmin UserRole = "SUPERADMIN"
)

type Principal struct {
	UserID uint
	Name   string
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin || p.Role == UserRoleSuperAdmin
}
