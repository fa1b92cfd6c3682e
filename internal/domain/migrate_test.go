package domain_test

import (
	"testing"

	"github.com/boddenberg/commission-desk-go/internal/domain"
)

func TestDecodeClients(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantShape domain.ClientsShape
		wantNames []string
		wantErr   bool
	}{
		{"absent", "", domain.ClientsAbsent, nil, false},
		{"null", "null", domain.ClientsAbsent, nil, false},
		{"legacy names", `["Banco Invest","Família Souza"]`, domain.ClientsLegacy, []string{"Banco Invest", "Família Souza"}, false},
		{"records", `[{"name":"Tech Startups SA","status":"Em Andamento"}]`, domain.ClientsRecords, []string{"Tech Startups SA"}, false},
		{"empty list", `[]`, domain.ClientsRecords, []string{}, false},
		{"malformed", `{"name":"x"}`, domain.ClientsAbsent, nil, true},
		{"mixed", `["a",{"name":"b"}]`, domain.ClientsAbsent, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, shape, err := domain.DecodeClients([]byte(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if shape != tt.wantShape {
				t.Errorf("shape = %v, want %v", shape, tt.wantShape)
			}
			if tt.wantNames == nil {
				if got != nil {
					t.Errorf("expected nil clients, got %+v", got)
				}
				return
			}
			if got == nil || len(got) != len(tt.wantNames) {
				t.Fatalf("got %+v, want %v", got, tt.wantNames)
			}
			for i, name := range tt.wantNames {
				if got[i].Name != name || got[i].ID == "" || got[i].Status == "" {
					t.Errorf("client %d = %+v", i, got[i])
				}
			}
		})
	}
}

func TestDecodeClients_LegacyNamesBecomeLeads(t *testing.T) {
	got, _, err := domain.DecodeClients([]byte(`["Banco Invest"]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].ID != "Banco Invest" || got[0].Status != domain.ClientLead {
		t.Errorf("client = %+v", got[0])
	}
}

func TestDeriveClients(t *testing.T) {
	got := domain.DeriveClients([]domain.Commission{
		{ClientName: "B"}, {ClientName: ""}, {ClientName: "A"}, {ClientName: "B"},
	})

	if len(got) != 2 || got[0].Name != "B" || got[1].Name != "A" {
		t.Errorf("derived = %+v", got)
	}
	if got[0].Status != domain.ClientLead || got[0].ID != "B" {
		t.Errorf("derived client defaults = %+v", got[0])
	}

	if empty := domain.DeriveClients(nil); empty == nil || len(empty) != 0 {
		t.Error("expected an empty, non-nil list")
	}
}

func TestNormalize(t *testing.T) {
	users := domain.NormalizeUsers([]domain.User{{ID: "1"}, {ID: "2", Department: domain.DeptFinance}})
	if users[0].Department != domain.DeptCommercial || users[1].Department != domain.DeptFinance {
		t.Errorf("users = %+v", users)
	}

	list := domain.NormalizeCommissions([]domain.Commission{{LawyerID: "3", ContractDate: "2026-01-15"}})
	if list[0].Department != domain.DeptCommercial || list[0].CommissionValue != 10 {
		t.Errorf("commission = %+v", list[0])
	}
}

func TestClampGoal(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{12, 12},
		{12.9, 12},
		{-1, 0},
		{0, 0},
		{1e12, 1<<31 - 1},
	}
	for _, tt := range tests {
		if got := domain.ClampGoal(tt.in); got != tt.want {
			t.Errorf("ClampGoal(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestHistory(t *testing.T) {
	legacy := domain.Commission{ID: "c1", LawyerID: "3", LawyerName: "Pedro", Department: domain.DeptCommercial, Date: "2026-01-15T13:00:00.000Z", Observations: "ligar amanhã"}

	h := legacy.History()
	if len(h) != 1 || h[0].Text != "ligar amanhã" || h[0].AuthorName != "Pedro" || h[0].CreatedAt != legacy.Date {
		t.Errorf("legacy history = %+v", h)
	}
	if legacy.LatestObservation() != "ligar amanhã" {
		t.Errorf("latest = %q", legacy.LatestObservation())
	}

	withHistory := legacy
	withHistory.ObservationHistory = []domain.ObservationEntry{{Text: "primeira"}, {Text: "segunda"}}
	if got := withHistory.History(); len(got) != 2 {
		t.Errorf("history should win over the legacy field, got %+v", got)
	}
	if withHistory.LatestObservation() != "segunda" {
		t.Errorf("latest = %q", withHistory.LatestObservation())
	}

	if (domain.Commission{}).LatestObservation() != "" {
		t.Error("empty commission has no observation")
	}
}
