// Package access implements tenant scoping for every company-owned row.
//
// All guards are pure functions over a Principal and the row being touched.
// Cross-tenant access and access to rows a non-admin does not own are reported
// as ErrNotFound so callers cannot probe for the existence of other tenants' data.
// ErrForbidden is reserved for role checks inside the caller's own tenant.
package access

import (
	"errors"

	"github.com/yukikurage/field-task-api/internal/models"
)

var (
	ErrNotFound   = errors.New("resource not found")
	ErrForbidden  = errors.New("insufficient permissions")
	ErrSelfAction = errors.New("cannot perform this action on your own account")
)

// Principal is the resolved identity for one authenticated session.
type Principal struct {
	UserID       uint64      `json:"id"`
	CompanyID    uint64      `json:"company_id"`
	CompanyName  string      `json:"company_name"`
	Username     string      `json:"username"`
	FullName     string      `json:"full_name"`
	Team         string      `json:"team"`
	Role         models.Role `json:"role"`
	IsSuperAdmin bool        `json:"is_super_admin"`
	SessionID    uint64      `json:"-"`
}

// NewPrincipal builds a Principal from a user and the company it belongs to.
func NewPrincipal(user *models.User, company *models.Company) (Principal, error) {
	if user == nil || company == nil || user.CompanyID != company.ID {
		return Principal{}, models.ErrMissingTenant
	}
	return Principal{
		UserID:       user.ID,
		CompanyID:    company.ID,
		CompanyName:  company.Name,
		Username:     user.Username,
		FullName:     user.FullName,
		Team:         user.Team,
		Role:         user.Role,
		IsSuperAdmin: user.IsSuperAdmin,
	}, nil
}

// IsAdmin reports whether p may manage rows of its company.
func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin || p.IsSuperAdmin
}

// CanAccessCompany checks that p may touch data of companyID.
func CanAccessCompany(p Principal, companyID uint64) error {
	if companyID == 0 {
		return ErrNotFound
	}
	if p.IsSuperAdmin || p.CompanyID == companyID {
		return nil
	}
	return ErrNotFound
}

// ResolveCompany picks the company an operation targets. Zero means the
// principal's own company; anything else must pass CanAccessCompany.
func ResolveCompany(p Principal, requested uint64) (uint64, error) {
	if requested == 0 {
		return p.CompanyID, nil
	}
	if err := CanAccessCompany(p, requested); err != nil {
		return 0, err
	}
	return requested, nil
}

// RequireAdmin rejects principals without the admin role.
func RequireAdmin(p Principal) error {
	if !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// RequireSuperAdmin rejects principals that cannot act across tenants.
func RequireSuperAdmin(p Principal) error {
	if !p.IsSuperAdmin {
		return ErrForbidden
	}
	return nil
}

// Scope is the set of rows a listing may return.
// UserID == 0 means every user of CompanyID.
type Scope struct {
	CompanyID uint64
	UserID    uint64
}

// ListScope computes the listing scope for p. Non-admins only ever see their own
// rows; asking for another user's rows yields ErrNotFound. Admins see their
// company and may narrow to one user; super-admins may also pick the company.
func ListScope(p Principal, requestedCompany, requestedUser uint64) (Scope, error) {
	companyID, err := ResolveCompany(p, requestedCompany)
	if err != nil {
		return Scope{}, err
	}
	if !p.IsAdmin() {
		if requestedUser != 0 && requestedUser != p.UserID {
			return Scope{}, ErrNotFound
		}
		return Scope{CompanyID: companyID, UserID: p.UserID}, nil
	}
	return Scope{CompanyID: companyID, UserID: requestedUser}, nil
}

// CanActAs checks that a user id taken from a request path is the caller itself.
func CanActAs(p Principal, userID uint64) error {
	if userID != p.UserID {
		return ErrNotFound
	}
	return nil
}

// CanReadUser allows admins to see users of their company and everyone else to see themselves.
func CanReadUser(p Principal, target *models.User) error {
	if target == nil {
		return ErrNotFound
	}
	if err := CanAccessCompany(p, target.CompanyID); err != nil {
		return err
	}
	if target.ID != p.UserID && !p.IsAdmin() {
		return ErrNotFound
	}
	return nil
}

// CanManageUser guards admin mutations of another user's account
// (toggle active, password reset, delete). A principal never manages itself
// through this path.
func CanManageUser(p Principal, target *models.User) error {
	if err := CanReadUser(p, target); err != nil {
		return err
	}
	if err := RequireAdmin(p); err != nil {
		return err
	}
	if target.ID == p.UserID {
		return ErrSelfAction
	}
	if target.IsSuperAdmin && !p.IsSuperAdmin {
		return ErrForbidden
	}
	return nil
}

// CanDeleteCompany prevents a super-admin from removing the company it belongs to.
func CanDeleteCompany(p Principal, companyID uint64) error {
	if err := RequireSuperAdmin(p); err != nil {
		return err
	}
	if companyID == p.CompanyID {
		return ErrSelfAction
	}
	return nil
}

// CanReadTask allows the creator and admins of the task's company.
func CanReadTask(p Principal, task *models.Task) error {
	if task == nil {
		return ErrNotFound
	}
	if err := CanAccessCompany(p, task.CompanyID); err != nil {
		return err
	}
	if task.UserID != p.UserID && !p.IsAdmin() {
		return ErrNotFound
	}
	return nil
}

// CanMutateTask has the same rule as reading: owner or company admin.
func CanMutateTask(p Principal, task *models.Task) error {
	return CanReadTask(p, task)
}

// CanReadAssignment allows company admins and both parties of the assignment.
func CanReadAssignment(p Principal, a *models.Assignment) error {
	if a == nil {
		return ErrNotFound
	}
	if err := CanAccessCompany(p, a.CompanyID); err != nil {
		return err
	}
	if p.IsAdmin() || a.AssignedToID == p.UserID || a.AssignedByID == p.UserID {
		return nil
	}
	return ErrNotFound
}

// CanWorkOnAssignment guards status changes and photo uploads: the assignee
// or a company admin.
func CanWorkOnAssignment(p Principal, a *models.Assignment) error {
	if err := CanReadAssignment(p, a); err != nil {
		return err
	}
	if a.AssignedToID != p.UserID && !p.IsAdmin() {
		return ErrForbidden
	}
	return nil
}

// CanManageAssignment guards deletion and admin-only edits.
func CanManageAssignment(p Principal, a *models.Assignment) error {
	if err := CanReadAssignment(p, a); err != nil {
		return err
	}
	return RequireAdmin(p)
}

// CanAccessNotification allows only the recipient.
func CanAccessNotification(p Principal, n *models.Notification) error {
	if n == nil || n.UserID != p.UserID || n.CompanyID != p.CompanyID {
		return ErrNotFound
	}
	return nil
}
