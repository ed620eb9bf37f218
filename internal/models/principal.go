package models

import "strings"

type Role string

const (
	RoleAdministrator       Role = "admin"
	RoleSuperAdministrator  Role = "super_admin"
	RoleSchoolAdministrator Role = "school_admin"
	RoleProgrammer          Role = "programmer"
	RoleInstructor          Role = "instructor"
	RoleStudent             Role = "student"
	RoleOther               Role = "other"
)

// ParseRole maps a role claim to a Role. Legacy Portuguese names are accepted;
// anything unknown becomes RoleOther.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin", "administrator", "administrador":
		return RoleAdministrator
	case "super_admin", "superadmin":
		return RoleSuperAdministrator
	case "school_admin", "admin_escola":
		return RoleSchoolAdministrator
	case "programmer", "programador":
		return RoleProgrammer
	case "instructor", "instrutor":
		return RoleInstructor
	case "student", "aluno":
		return RoleStudent
	default:
		return RoleOther
	}
}

// IsAdminLike is the only place that decides which roles manage any timetable.
func IsAdminLike(r Role) bool {
	switch r {
	case RoleAdministrator, RoleSuperAdministrator, RoleSchoolAdministrator, RoleProgrammer:
		return true
	}
	return false
}

// Principal is the authenticated caller, passed explicitly into every operation.
type Principal struct {
	UserID       int64
	Role         Role
	InstructorID *int64
}

func (p Principal) IsAdminLike() bool {
	return IsAdminLike(p.Role)
}

// CanEdit reports whether p may change or remove b.
func (p Principal) CanEdit(b *LessonBlock) bool {
	if b == nil {
		return false
	}
	if p.IsAdminLike() {
		return true
	}
	if p.Role == RoleInstructor && p.InstructorID != nil {
		return b.InstructorID == *p.InstructorID
	}
	return false
}
