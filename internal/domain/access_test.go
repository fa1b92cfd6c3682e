package domain_test

import (
	"testing"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"
)

var (
	adminUser  = domain.User{ID: "1", Name: "Dr. Augusto Seabra", Role: domain.RoleAdmin, Department: domain.DeptGeneral}
	managerCtl = domain.User{ID: "2", Name: "Mariana Sousa", Role: domain.RoleManager, Department: domain.DeptControllership}
	pedro      = domain.User{ID: "3", Name: "Pedro Santos", Role: domain.RoleCollaborator, Department: domain.DeptCommercial}
	generalCol = domain.User{ID: "5", Name: "Lia Gomes", Role: domain.RoleCollaborator, Department: domain.DeptGeneral}
)

func TestIsCommissionOwner(t *testing.T) {
	tests := []struct {
		name string
		c    domain.Commission
		want bool
	}{
		{"same id", domain.Commission{LawyerID: "3", LawyerName: "Outro"}, true},
		{"other id, same name", domain.Commission{LawyerID: "9", LawyerName: "Pedro Santos"}, false},
		{"legacy by name", domain.Commission{LawyerName: "Pedro Santos"}, true},
		{"legacy other name", domain.Commission{LawyerName: "Ana"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.IsCommissionOwner(pedro, tt.c); got != tt.want {
				t.Errorf("IsCommissionOwner = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanEditCommission(t *testing.T) {
	now := time.Date(2026, 1, 15, 22, 30, 0, 0, time.FixedZone("BRT", -3*60*60))
	own := domain.Commission{LawyerID: "3", ContractDate: "2026-01-15"}
	yesterday := domain.Commission{LawyerID: "3", ContractDate: "2026-01-14"}
	other := domain.Commission{LawyerID: "4", ContractDate: "2026-01-15"}

	tests := []struct {
		name string
		u    domain.User
		c    domain.Commission
		want bool
	}{
		{"admin any", adminUser, other, true},
		{"manager any", managerCtl, yesterday, true},
		{"collaborator own today", pedro, own, true},
		{"collaborator own yesterday", pedro, yesterday, false},
		{"collaborator other", pedro, other, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.CanEditCommission(tt.u, tt.c, now); got != tt.want {
				t.Errorf("CanEditCommission = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanChangeCommissionStatus(t *testing.T) {
	paid := domain.Commission{Status: domain.CommissionPaid}
	pending := domain.Commission{Status: domain.CommissionPending}

	if !domain.CanChangeCommissionStatus(adminUser, paid) {
		t.Error("admin may reopen a paid commission")
	}
	if domain.CanChangeCommissionStatus(managerCtl, paid) {
		t.Error("manager must not move a paid commission")
	}
	if !domain.CanChangeCommissionStatus(managerCtl, pending) {
		t.Error("manager may pay a pending commission")
	}
	if domain.CanChangeCommissionStatus(pedro, pending) {
		t.Error("collaborators never change status")
	}
}

func TestCanViewCommission(t *testing.T) {
	others := domain.Commission{LawyerID: "4", Department: domain.DeptOperations}

	if !domain.CanViewCommission(generalCol, others) {
		t.Error("General department sees everything")
	}
	if domain.CanViewCommission(pedro, others) {
		t.Error("collaborators only see their own entries")
	}
	if !domain.CanViewCommission(managerCtl, others) {
		t.Error("managers see every department")
	}
}

func TestRolePredicates(t *testing.T) {
	tests := []struct {
		name  string
		check func(domain.User) bool
		want  [3]bool // admin, manager, collaborator
	}{
		{"create commission", domain.CanCreateCommission, [3]bool{false, true, true}},
		{"delete commission", domain.CanDeleteCommission, [3]bool{true, true, false}},
		{"manage clients", domain.CanManageClients, [3]bool{true, true, false}},
		{"manage users", domain.CanManageUsers, [3]bool{true, false, false}},
		{"manage notices", domain.CanManageNotices, [3]bool{true, true, false}},
		{"edit goal", domain.CanEditGoal, [3]bool{true, true, false}},
		{"view audit", domain.CanViewAudit, [3]bool{true, false, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, u := range []domain.User{adminUser, managerCtl, pedro} {
				if got := tt.check(u); got != tt.want[i] {
					t.Errorf("%s: got %v, want %v", u.Role, got, tt.want[i])
				}
			}
		})
	}
}

func TestNoticeVisibleTo(t *testing.T) {
	tests := []struct {
		name string
		n    domain.Notice
		u    domain.User
		want bool
	}{
		{"role targeted, any department", domain.Notice{VisibleToRoles: []domain.UserRole{domain.RoleCollaborator}}, pedro, true},
		{"role not targeted", domain.Notice{VisibleToRoles: []domain.UserRole{domain.RoleManager}}, pedro, false},
		{"department matches", domain.Notice{VisibleToRoles: domain.AllRoles, VisibleToDepartments: []domain.Department{domain.DeptCommercial}}, pedro, true},
		{"department does not match", domain.Notice{VisibleToRoles: domain.AllRoles, VisibleToDepartments: []domain.Department{domain.DeptFinance}}, pedro, false},
		{"empty roles target everyone", domain.Notice{}, managerCtl, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.NoticeVisibleTo(tt.n, tt.u); got != tt.want {
				t.Errorf("NoticeVisibleTo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInDashboardScope(t *testing.T) {
	ctl := domain.Commission{LawyerID: "2", Department: domain.DeptControllership}
	ops := domain.Commission{LawyerID: "7", Department: domain.DeptOperations}
	mine := domain.Commission{LawyerID: "3", Department: domain.DeptCommercial}
	notMine := domain.Commission{LawyerID: "8", Department: domain.DeptCommercial}

	if !domain.InDashboardScope(adminUser, ops) {
		t.Error("admin sees every department")
	}
	if !domain.InDashboardScope(managerCtl, ctl) || domain.InDashboardScope(managerCtl, ops) {
		t.Error("manager is narrowed to their own department")
	}
	if !domain.InDashboardScope(pedro, mine) || domain.InDashboardScope(pedro, notMine) {
		t.Error("collaborator sees only own entries")
	}
	lias := domain.Commission{LawyerID: "5", Department: domain.DeptOperations}
	if !domain.InDashboardScope(generalCol, lias) || domain.InDashboardScope(generalCol, notMine) {
		t.Error("General department collaborator sees own entries across departments only")
	}
}
