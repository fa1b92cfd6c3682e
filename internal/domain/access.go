package domain

import (
	"slices"
	"time"
)

// ============================================================
// Access control predicates. Pure functions over (user, record);
// callers evaluate them fresh on every action.
// ============================================================

// DateLayout is the layout of business dates (contractDate and friends).
const DateLayout = "2006-01-02"

func isAdminOrManager(u User) bool {
	return u.Role == RoleAdmin || u.Role == RoleManager
}

// IsCommissionOwner reports whether u is the lawyer of c. The lawyer id
// decides when present; the name is only a fallback for legacy entries.
func IsCommissionOwner(u User, c Commission) bool {
	if c.LawyerID != "" {
		return c.LawyerID == u.ID
	}
	return c.LawyerName == u.Name
}

// CanCreateCommission: Collaborators and Managers. Admins act through one of
// those identities.
func CanCreateCommission(u User) bool {
	return u.Role == RoleCollaborator || u.Role == RoleManager
}

// CanEditCommission: Admin and Manager always; a Collaborator only their own
// entry and only on its contract day.
func CanEditCommission(u User, c Commission, now time.Time) bool {
	if isAdminOrManager(u) {
		return true
	}
	if u.Role != RoleCollaborator {
		return false
	}
	return IsCommissionOwner(u, c) && c.ContractDate == now.Format(DateLayout)
}

// CanDeleteCommission: Admin and Manager only.
func CanDeleteCommission(u User) bool {
	return isAdminOrManager(u)
}

// CanChangeCommissionStatus guards the status field alone. Once Paid, only an
// Admin may move it again.
func CanChangeCommissionStatus(u User, c Commission) bool {
	if u.Role == RoleAdmin {
		return true
	}
	return u.Role == RoleManager && c.Status != CommissionPaid
}

// CanViewCommission: General department sees everything; Collaborators see
// their own entries; Admin and Manager see all departments.
func CanViewCommission(u User, c Commission) bool {
	if u.Department == DeptGeneral {
		return true
	}
	if u.Role == RoleCollaborator {
		return IsCommissionOwner(u, c)
	}
	return isAdminOrManager(u)
}

// CanManageClients covers client edit and delete; Collaborators are read-only.
func CanManageClients(u User) bool {
	return isAdminOrManager(u)
}

// CanManageUsers: Admin only.
func CanManageUsers(u User) bool {
	return u.Role == RoleAdmin
}

// CanManageNotices covers notice authoring and deletion.
func CanManageNotices(u User) bool {
	return isAdminOrManager(u)
}

// CanEditGoal: Admin and Manager.
func CanEditGoal(u User) bool {
	return isAdminOrManager(u)
}

// CanViewAudit: Admin only.
func CanViewAudit(u User) bool {
	return u.Role == RoleAdmin
}

// NoticeVisibleTo: the viewer's role must be targeted AND the department
// set must be empty or contain the viewer's department. An empty role set
// targets every role.
func NoticeVisibleTo(n Notice, u User) bool {
	roles := n.VisibleToRoles
	if len(roles) == 0 {
		roles = AllRoles
	}
	if !slices.Contains(roles, u.Role) {
		return false
	}
	return len(n.VisibleToDepartments) == 0 || slices.Contains(n.VisibleToDepartments, u.Department)
}

// InDashboardScope decides which commissions feed a viewer's dashboard
// totals. Unlike CanViewCommission it narrows Managers to their own
// department; General department users and Admins see every department,
// and Collaborators only their own entries.
func InDashboardScope(u User, c Commission) bool {
	if u.Department != DeptGeneral && u.Role != RoleAdmin && c.Department != u.Department {
		return false
	}
	if u.Role == RoleCollaborator {
		return IsCommissionOwner(u, c)
	}
	return true
}
