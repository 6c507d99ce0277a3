package shared

import (
	"slices"

	"github.com/google/uuid"
)

// Role is the coarse authorization role of a caller
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleReviewer Role = "REVIEWER"
	RoleBuyer    Role = "BUYER"
	RoleSupplier Role = "SUPPLIER"
	RoleSystem   Role = "SYSTEM"
)

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleReviewer, RoleBuyer, RoleSupplier, RoleSystem:
		return true
	}
	return false
}

// Caller is the identity on whose behalf an operation runs.
// It is passed explicitly into every application operation.
type Caller struct {
	UserID uuid.UUID
	Role   Role
}

// SystemCaller is used by event handlers and background jobs
var SystemCaller = Caller{Role: RoleSystem}

// NewCaller creates a caller
func NewCaller(userID uuid.UUID, role Role) Caller {
	return Caller{UserID: userID, Role: role}
}

// Is reports whether the caller has one of the given roles
func (c Caller) Is(roles ...Role) bool {
	return slices.Contains(roles, c.Role)
}

// Require returns FORBIDDEN unless the caller has one of the given roles
func (c Caller) Require(roles ...Role) error {
	if c.Is(roles...) {
		return nil
	}
	return NewDomainError(CodeForbidden, "caller role "+string(c.Role)+" may not perform this operation")
}

// RequireSelfOr allows the caller when it owns the resource or has one of the given roles
func (c Caller) RequireSelfOr(ownerID uuid.UUID, roles ...Role) error {
	if c.UserID != uuid.Nil && c.UserID == ownerID {
		return nil
	}
	return c.Require(roles...)
}
