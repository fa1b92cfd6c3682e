package domain

import "time"

// ============================================================
// Dashboard
// ============================================================

// PayCycleStartDay is the first day of a commission pay cycle; a cycle runs
// from the 21st of one month through the 20th of the next.
const PayCycleStartDay = 21

// PayCycle returns the pay cycle window containing now, in now's location.
func PayCycle(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	loc := now.Location()
	if d >= PayCycleStartDay {
		start = time.Date(y, m, PayCycleStartDay, 0, 0, 0, 0, loc)
	} else {
		start = time.Date(y, m-1, PayCycleStartDay, 0, 0, 0, 0, loc)
	}
	end = time.Date(start.Year(), start.Month()+1, PayCycleStartDay-1, 23, 59, 59, 0, loc)
	return start, end
}

// DashboardStats is returned by GET /v1/dashboard/stats.
type DashboardStats struct {
	CycleStart        string  `json:"cycleStart"`
	CycleEnd          string  `json:"cycleEnd"`
	TotalCommission   float64 `json:"totalCommission"`
	PendingCommission float64 `json:"pendingCommission"`
	PaidCommission    float64 `json:"paidCommission"`
	TotalDeals        int     `json:"totalDeals"`
	ClosedContracts   int     `json:"closedContracts"`
	Goal              int     `json:"goal"`
	RemainingToGoal   int     `json:"remainingToGoal"`
}

// ChartDay is one day of the Commercial contracts chart.
type ChartDay struct {
	Date   string         `json:"date"`
	Label  string         `json:"label"`
	Counts map[string]int `json:"counts"`
}

// CommercialChart is returned by GET /v1/dashboard/commercial-chart.
type CommercialChart struct {
	Month        string     `json:"month"` // YYYY-MM
	Participants []string   `json:"participants"`
	Days         []ChartDay `json:"days"`
	Total        int        `json:"total"`
}
