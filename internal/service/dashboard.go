package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

const (
	chartCacheName   = "commercial_chart"
	unnamedLawyer    = "Sem nome"
	chartMonthLayout = "2006-01"
)

// Stats aggregates the viewer's scoped commissions for the current pay
// cycle against the monthly contract goal.
func (d *Desk) Stats(ctx context.Context, viewer domain.User) *domain.DashboardStats {
	_, span := deskTracer.Start(ctx, "Desk.Stats")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	start, end := domain.PayCycle(now)
	stats := &domain.DashboardStats{
		CycleStart: start.Format(domain.DateLayout),
		CycleEnd:   end.Format(domain.DateLayout),
		Goal:       d.goal,
	}

	for _, c := range d.commissions {
		if !domain.InDashboardScope(viewer, c) {
			continue
		}
		t, err := time.ParseInLocation(domain.DateLayout, c.ContractDate, now.Location())
		if err != nil || t.Before(start) || t.After(end) {
			continue
		}
		stats.TotalDeals++
		stats.TotalCommission += c.CommissionValue
		switch c.Status {
		case domain.CommissionPending:
			stats.PendingCommission += c.CommissionValue
		case domain.CommissionPaid:
			stats.PaidCommission += c.CommissionValue
		}
		if c.Status != domain.CommissionCanceled {
			stats.ClosedContracts++
		}
	}
	stats.RemainingToGoal = max(0, d.goal-stats.ClosedContracts)

	span.SetAttributes(attribute.Int("stats.deals", stats.TotalDeals))
	return stats
}

// CommercialChart counts Commercial contracts per participant per day for
// one calendar month (YYYY-MM, empty for the current month). It is not
// scoped by viewer: the chart is an open leaderboard.
func (d *Desk) CommercialChart(ctx context.Context, month string) (*domain.CommercialChart, error) {
	_, span := deskTracer.Start(ctx, "Desk.CommercialChart")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	loc := d.now().Location()
	if month == "" {
		month = d.now().Format(chartMonthLayout)
	}
	first, err := time.ParseInLocation(chartMonthLayout, month, loc)
	if err != nil {
		return nil, &domain.ErrValidation{Field: "month", Message: "expected YYYY-MM"}
	}
	span.SetAttributes(attribute.String("chart.month", month))

	if d.chartCache != nil {
		if chart, ok := d.chartCache.Get(month); ok {
			d.metrics.IncrCacheHit(chartCacheName)
			return chart, nil
		}
		d.metrics.IncrCacheMiss(chartCacheName)
	}

	namesByID := make(map[string]string, len(d.users))
	for _, u := range d.users {
		namesByID[u.ID] = u.Name
	}

	var participants []string
	seen := make(map[string]bool)
	buckets := make(map[string]map[string]int)
	total := 0

	for _, c := range d.commissions {
		if c.Department != domain.DeptCommercial || !strings.HasPrefix(c.ContractDate, month+"-") {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, c.ContractDate); err != nil {
			continue
		}
		name := resolveLawyerName(c, namesByID)
		if !seen[name] {
			seen[name] = true
			participants = append(participants, name)
		}
		if buckets[c.ContractDate] == nil {
			buckets[c.ContractDate] = make(map[string]int)
		}
		buckets[c.ContractDate][name]++
		total++
	}

	chart := &domain.CommercialChart{
		Month:        month,
		Participants: participants,
		Total:        total,
	}
	if chart.Participants == nil {
		chart.Participants = []string{}
	}
	for day := first; day.Month() == first.Month(); day = day.AddDate(0, 0, 1) {
		key := day.Format(domain.DateLayout)
		counts := make(map[string]int, len(participants))
		for _, p := range participants {
			counts[p] = buckets[key][p]
		}
		chart.Days = append(chart.Days, domain.ChartDay{
			Date:   key,
			Label:  fmt.Sprintf("%02d/%02d", day.Day(), int(day.Month())),
			Counts: counts,
		})
	}

	if d.chartCache != nil {
		d.chartCache.Set(month, chart)
	}
	return chart, nil
}

// resolveLawyerName prefers the current user name for the lawyer id, then
// the name stored on the commission.
func resolveLawyerName(c domain.Commission, namesByID map[string]string) string {
	name := ""
	if c.LawyerID != "" {
		name = namesByID[c.LawyerID]
	}
	if name == "" {
		name = c.LawyerName
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return unnamedLawyer
	}
	return name
}
