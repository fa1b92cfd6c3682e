package domain_test

import (
	"testing"

	"github.com/boddenberg/commission-desk-go/internal/domain"
)

func commercial(id, lawyerID, day string) domain.Commission {
	return domain.Commission{ID: id, LawyerID: lawyerID, Department: domain.DeptCommercial, Status: domain.CommissionPending, ContractDate: day}
}

func TestRecompute_CommercialTiers(t *testing.T) {
	var list []domain.Commission
	for i := 0; i < 12; i++ {
		list = append(list, commercial("c", "3", "2026-01-15"))
	}

	got := domain.Recompute(list)

	want := []float64{10, 10, 10, 10, 10, 15, 15, 15, 15, 15, 20, 20}
	for i := range want {
		if got[i].CommissionValue != want[i] {
			t.Errorf("position %d: %v, want %v", i, got[i].CommissionValue, want[i])
		}
	}
	if list[0].CommissionValue != 0 {
		t.Error("input slice must not be modified")
	}
}

func TestRecompute_TiersArePerLawyerAndDay(t *testing.T) {
	list := []domain.Commission{
		commercial("a", "3", "2026-01-15"),
		commercial("b", "4", "2026-01-15"),
		commercial("c", "3", "2026-01-14"),
	}
	for i := 0; i < 5; i++ {
		list = append(list, commercial("x", "3", "2026-01-15"))
	}

	got := domain.Recompute(list)

	if got[1].CommissionValue != 10 || got[2].CommissionValue != 10 {
		t.Error("other lawyers and other days count separately")
	}
	if got[len(got)-1].CommissionValue != 15 {
		t.Errorf("sixth entry of lawyer 3 on the 15th = %v, want 15", got[len(got)-1].CommissionValue)
	}
}

func TestRecompute_LegacyEntriesGroupByName(t *testing.T) {
	list := make([]domain.Commission, 6)
	for i := range list {
		list[i] = domain.Commission{LawyerName: "Pedro Santos", Department: domain.DeptCommercial, ContractDate: "2026-01-15"}
	}

	got := domain.Recompute(list)

	if got[5].CommissionValue != 15 {
		t.Errorf("entries without lawyer id should group by name, got %v", got[5].CommissionValue)
	}
}

func TestRecompute_OtherRules(t *testing.T) {
	tests := []struct {
		name      string
		in        domain.Commission
		wantValue float64
		wantPct   float64
	}{
		{
			name:      "no commission wins over department",
			in:        domain.Commission{Department: domain.DeptCommercial, NoCommission: true, CommissionValue: 99, CommissionPercentage: 5},
			wantValue: 0,
		},
		{
			name:      "no commission wins over canceled",
			in:        domain.Commission{Department: domain.DeptCommercial, Status: domain.CommissionCanceled, NoCommission: true, CommissionValue: 10, CommissionPercentage: 7},
			wantValue: 0,
		},
		{
			name:      "canceled is worth nothing",
			in:        domain.Commission{Department: domain.DeptControllership, Status: domain.CommissionCanceled, CommissionValue: 10, CommissionPercentage: 3},
			wantValue: 0,
			wantPct:   3,
		},
		{
			name:      "controllership is flat",
			in:        domain.Commission{Department: domain.DeptControllership, CommissionValue: 400, CommissionPercentage: 12},
			wantValue: 10,
		},
		{
			name:      "other departments keep their values",
			in:        domain.Commission{Department: domain.DeptOperations, CommissionValue: 5400, CommissionPercentage: 12},
			wantValue: 5400,
			wantPct:   12,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.Recompute([]domain.Commission{tt.in})[0]
			if got.CommissionValue != tt.wantValue || got.CommissionPercentage != tt.wantPct {
				t.Errorf("value/pct = %v/%v, want %v/%v", got.CommissionValue, got.CommissionPercentage, tt.wantValue, tt.wantPct)
			}
		})
	}
}

func TestRecompute_CanceledEntriesDoNotTakeATier(t *testing.T) {
	list := []domain.Commission{commercial("a", "3", "2026-01-15")}
	list[0].Status = domain.CommissionCanceled
	for i := 0; i < 5; i++ {
		list = append(list, commercial("x", "3", "2026-01-15"))
	}

	got := domain.Recompute(list)

	if got[0].CommissionValue != 0 || got[5].CommissionValue != 10 {
		t.Errorf("values = %v ... %v", got[0].CommissionValue, got[5].CommissionValue)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	canceled := commercial("cx", "3", "2026-01-15")
	canceled.Status = domain.CommissionCanceled
	manager := commercial("m", "2", "2026-01-15")
	manager.NoCommission = true
	manager.CommissionValue = 50

	mixed := []domain.Commission{
		commercial("a", "3", "2026-01-15"),
		canceled,
		{ID: "ctl", Department: domain.DeptControllership, CommissionValue: 400, CommissionPercentage: 12},
		commercial("b", "4", "2026-01-15"),
		manager,
		{ID: "ops", Department: domain.DeptOperations, CommissionValue: 5400, CommissionPercentage: 12},
		commercial("c", "3", "2026-01-14"),
	}
	for i := 0; i < 6; i++ {
		mixed = append(mixed, commercial("x", "3", "2026-01-15"))
	}

	tests := []struct {
		name string
		list []domain.Commission
	}{
		{"empty", nil},
		{"single commercial", []domain.Commission{commercial("a", "3", "2026-01-15")}},
		{"mixed departments and statuses", mixed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			once := domain.Recompute(tt.list)
			twice := domain.Recompute(once)
			if len(once) != len(twice) {
				t.Fatalf("length changed: %d then %d", len(once), len(twice))
			}
			for i := range once {
				if once[i].ID != twice[i].ID ||
					once[i].CommissionValue != twice[i].CommissionValue ||
					once[i].CommissionPercentage != twice[i].CommissionPercentage {
					t.Errorf("position %d: %s %v/%v then %s %v/%v", i,
						once[i].ID, once[i].CommissionValue, once[i].CommissionPercentage,
						twice[i].ID, twice[i].CommissionValue, twice[i].CommissionPercentage)
				}
			}
		})
	}
}
