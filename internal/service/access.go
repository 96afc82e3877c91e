package service

import "github.com/suvadu/separation-api/internal/models"

// CaseAccess is the level of access a user has to a separation case.
type CaseAccess int

const (
	AccessNone CaseAccess = iota
	AccessReadOnly
	AccessFull
)

// ResolveCaseAccess determines what a user may do with a case.
// Separation managers, the separating employee, and the direct manager
// get full access. A sign-off holder who is none of those sees the case
// read-only, so a reviewer can inspect context without editing it.
func ResolveCaseAccess(sc *models.SeparationCase, userID string, role models.UserRole, holdsSignoff bool) CaseAccess {
	if role.IsSeparationManager() {
		return AccessFull
	}
	if sc.EmployeeID == userID {
		return AccessFull
	}
	if sc.DirectManagerID != nil && *sc.DirectManagerID == userID {
		return AccessFull
	}
	if holdsSignoff {
		return AccessReadOnly
	}
	return AccessNone
}
