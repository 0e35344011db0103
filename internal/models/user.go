package models

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
	RoleParent  UserRole = "PARENT"
)

// CanBypassRelease reports whether the role may read unreleased results.
func (r UserRole) CanBypassRelease() bool {
	return r == RoleAdmin || r == RoleTeacher
}
