// Package access holds the role check applied to operator sessions. It does
// not verify credentials.
package access

import (
	"reviewgate/internal/common/errors"
	"reviewgate/internal/models"
)

// SuperSession is a platform operator session.
func SuperSession() models.Session {
	return models.Session{Role: models.RoleSuper}
}

// AdminSession is a business operator session.
func AdminSession(businessID string) models.Session {
	return models.Session{Role: models.RoleAdmin, BusinessID: businessID}
}

// CanManage reports whether s may change businessID's settings and inbox.
// Super operators manage every business; admins only their own.
func CanManage(s models.Session, businessID string) bool {
	switch s.Role {
	case models.RoleSuper:
		return true
	case models.RoleAdmin:
		return businessID != "" && s.BusinessID == businessID
	}
	return false
}

// Authorize is CanManage as an error.
func Authorize(s models.Session, businessID string) error {
	if !CanManage(s, businessID) {
		return errors.NewUnauthorizedError("session cannot manage business " + businessID)
	}
	return nil
}

// Impersonate switches a super session into an admin view of businessID.
// Any other session is returned unchanged with an error.
func Impersonate(s models.Session, businessID string) (models.Session, error) {
	if !s.IsSuper() {
		return s, errors.NewUnauthorizedError("only super operators can impersonate")
	}
	if businessID == "" {
		return s, errors.NewValidationError("business id is required")
	}
	return models.Session{Role: models.RoleAdmin, BusinessID: businessID, Impersonating: true}, nil
}

// ExitImpersonation returns to the super session.
func ExitImpersonation(s models.Session) models.Session {
	if s.Impersonating {
		return SuperSession()
	}
	return s
}
