package domain_test

import (
	"testing"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"
)

func TestPayCycle(t *testing.T) {
	brt := time.FixedZone("BRT", -3*60*60)
	tests := []struct {
		name      string
		now       time.Time
		wantStart string
		wantEnd   string
	}{
		{"before the 21st", time.Date(2026, 1, 15, 10, 0, 0, 0, brt), "2025-12-21", "2026-01-20"},
		{"on the 21st", time.Date(2026, 1, 21, 0, 0, 0, 0, brt), "2026-01-21", "2026-02-20"},
		{"on the 20th", time.Date(2026, 3, 20, 23, 0, 0, 0, brt), "2026-02-21", "2026-03-20"},
		{"december", time.Date(2026, 12, 25, 9, 0, 0, 0, brt), "2026-12-21", "2027-01-20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := domain.PayCycle(tt.now)
			if got := start.Format(domain.DateLayout); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format(domain.DateLayout); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
			if end.Hour() != 23 || end.Location() != brt {
				t.Errorf("end should close the day in the caller's zone, got %v", end)
			}
		})
	}
}
