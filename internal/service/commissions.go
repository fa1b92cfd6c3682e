package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/boddenberg/commission-desk-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Commissions
// ============================================================

// AddCommission records a new commission for actor, appends it to the
// list, recomputes every value and reconciles the client it names.
func (d *Desk) AddCommission(ctx context.Context, actor domain.User, in domain.CommissionInput) (*domain.CommissionResult, error) {
	_, span := deskTracer.Start(ctx, "Desk.AddCommission")
	defer span.End()

	if !domain.CanCreateCommission(actor) {
		return nil, &domain.ErrForbidden{Action: "create commission"}
	}

	clientName := strings.TrimSpace(in.ClientName)
	if clientName == "" {
		return nil, &domain.ErrValidation{Field: "clientName", Message: "client name is required"}
	}
	if err := validateDate("contractDate", in.ContractDate); err != nil {
		return nil, err
	}
	dept := in.Department
	if dept == "" {
		dept = actor.Department
	}
	if !domain.IsValidDepartment(dept) {
		return nil, &domain.ErrValidation{Field: "department", Message: fmt.Sprintf("unknown department %q", dept)}
	}
	caseType := strings.TrimSpace(in.CaseType)
	if caseType == "" {
		caseType = "-"
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.timestamp()
	c := domain.Commission{
		ID:                    d.newID(),
		LawyerName:            actor.Name,
		LawyerID:              actor.ID,
		Department:            dept,
		ClientName:            clientName,
		CaseType:              caseType,
		CaseValue:             in.CaseValue,
		Status:                domain.CommissionPending,
		Date:                  now,
		ContractDate:          in.ContractDate,
		Observations:          strings.TrimSpace(in.Observations),
		NoCommission:          actor.Role == domain.RoleManager,
		LeadPhoneNumber:       in.LeadPhoneNumber,
		LeadExpectedBirthDate: in.LeadExpectedBirthDate,
		LeadHasKidsUnder5:     in.LeadHasKidsUnder5,
		LeadWorkStatus:        in.LeadWorkStatus,
		LeadHasLawyer:         in.LeadHasLawyer,
	}
	if c.Observations != "" {
		c.ObservationHistory = []domain.ObservationEntry{d.observation(actor, c.Observations)}
	}
	span.SetAttributes(
		attribute.String("commission.id", c.ID),
		attribute.String("commission.department", string(c.Department)),
	)

	d.commissions = append(d.commissions, c)
	d.recompute()
	created := d.reconcileOnAdd(c)

	d.audit.Record(actor, AuditEntry{
		Action:     "commission_add",
		TargetType: "commission",
		TargetID:   c.ID,
		Details:    fmt.Sprintf("Cliente %s em %s", c.ClientName, c.ContractDate),
	})
	d.emitCommissions()
	d.emitClients()
	d.mutated("commission_add")

	d.logger.Info("commission added",
		zap.String("commission_id", c.ID),
		zap.String("lawyer_id", actor.ID),
		zap.String("department", string(c.Department)),
		zap.Bool("client_created", created),
	)

	stored := d.commissions[d.commissionIndex(c.ID)]
	return &domain.CommissionResult{
		Commission:  &stored,
		Commissions: d.visibleCommissions(actor),
		Clients:     slices.Clone(d.clients),
	}, nil
}

// UpdateCommission merges upd into the stored commission. Financial fields
// are never taken from the caller. A status change the actor may not make
// is ignored, not rejected.
func (d *Desk) UpdateCommission(ctx context.Context, actor domain.User, id string, upd domain.CommissionUpdate) (*domain.CommissionResult, error) {
	_, span := deskTracer.Start(ctx, "Desk.UpdateCommission")
	defer span.End()
	span.SetAttributes(attribute.String("commission.id", id))

	if upd.ContractDate != "" {
		if err := validateDate("contractDate", upd.ContractDate); err != nil {
			return nil, err
		}
	}
	if upd.Status != "" && !domain.IsValidCommissionStatus(upd.Status) {
		return nil, &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("unknown status %q", upd.Status)}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.commissionIndex(id)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "commission", ID: id}
	}
	orig := d.commissions[i]
	if !domain.CanEditCommission(actor, orig, d.now()) {
		return nil, &domain.ErrForbidden{Action: "edit commission"}
	}

	next := orig
	next.ObservationHistory = slices.Clone(orig.ObservationHistory)
	if name := strings.TrimSpace(upd.ClientName); name != "" {
		next.ClientName = name
	}
	if upd.ContractDate != "" {
		next.ContractDate = upd.ContractDate
	}
	if upd.Status != "" && upd.Status != orig.Status {
		if domain.CanChangeCommissionStatus(actor, orig) {
			next.Status = upd.Status
			if next.Status == domain.CommissionPaid {
				next.ApprovedByID = actor.ID
				next.ApprovedAt = d.timestamp()
			}
		} else {
			d.logger.Debug("commission status change ignored",
				zap.String("commission_id", id),
				zap.String("actor_id", actor.ID),
				zap.String("status", string(orig.Status)),
				zap.String("requested", string(upd.Status)),
			)
		}
	}
	if text := strings.TrimSpace(upd.Observation); text != "" {
		next.ObservationHistory = append(slices.Clone(orig.History()), d.observation(actor, text))
		next.Observations = text
	}
	next.LeadPhoneNumber = firstNonEmpty(upd.LeadPhoneNumber, orig.LeadPhoneNumber)
	next.LeadExpectedBirthDate = firstNonEmpty(upd.LeadExpectedBirthDate, orig.LeadExpectedBirthDate)
	next.LeadWorkStatus = firstNonEmpty(upd.LeadWorkStatus, orig.LeadWorkStatus)
	if upd.LeadHasKidsUnder5 != nil {
		next.LeadHasKidsUnder5 = upd.LeadHasKidsUnder5
	}
	if upd.LeadHasLawyer != nil {
		next.LeadHasLawyer = upd.LeadHasLawyer
	}
	next.UpdatedAt = d.timestamp()

	d.commissions[i] = next
	d.recompute()
	created := d.reconcileOnUpdate(next)

	d.audit.Record(actor, AuditEntry{
		Action:     "commission_update",
		TargetType: "commission",
		TargetID:   id,
		Details:    fmt.Sprintf("Status %s · Cliente %s", next.Status, next.ClientName),
	})
	d.emitCommissions()
	if created {
		d.emitClients()
	}
	d.mutated("commission_update")

	stored := d.commissions[i]
	return &domain.CommissionResult{
		Commission:  &stored,
		Commissions: d.visibleCommissions(actor),
		Clients:     slices.Clone(d.clients),
	}, nil
}

// DeleteCommission removes a commission and recomputes the rest. The client
// it implied is left as is.
func (d *Desk) DeleteCommission(ctx context.Context, actor domain.User, id string) (*domain.CommissionResult, error) {
	_, span := deskTracer.Start(ctx, "Desk.DeleteCommission")
	defer span.End()
	span.SetAttributes(attribute.String("commission.id", id))

	if !domain.CanDeleteCommission(actor) {
		return nil, &domain.ErrForbidden{Action: "delete commission"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.commissionIndex(id)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "commission", ID: id}
	}
	d.commissions = slices.Delete(slices.Clone(d.commissions), i, i+1)
	d.recompute()

	d.audit.Record(actor, AuditEntry{Action: "commission_delete", TargetType: "commission", TargetID: id})
	d.emitCommissions()
	d.mutated("commission_delete")

	return &domain.CommissionResult{
		Commissions: d.visibleCommissions(actor),
		Clients:     slices.Clone(d.clients),
	}, nil
}

// ListCommissions returns the commissions actor may see, narrowed by f, in
// stored order.
func (d *Desk) ListCommissions(ctx context.Context, actor domain.User, f domain.CommissionFilter) []domain.Commission {
	_, span := deskTracer.Start(ctx, "Desk.ListCommissions")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]domain.Commission, 0)
	for _, c := range d.commissions {
		if domain.CanViewCommission(actor, c) && matchesFilter(c, f) {
			out = append(out, c)
		}
	}
	return out
}

// Commission returns one commission when actor may see it.
func (d *Desk) Commission(ctx context.Context, actor domain.User, id string) (*domain.Commission, error) {
	_, span := deskTracer.Start(ctx, "Desk.Commission")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.commissionIndex(id)
	if i < 0 || !domain.CanViewCommission(actor, d.commissions[i]) {
		return nil, &domain.ErrNotFound{Resource: "commission", ID: id}
	}
	c := d.commissions[i]
	c.ObservationHistory = c.History()
	return &c, nil
}

func (d *Desk) visibleCommissions(actor domain.User) []domain.Commission {
	out := make([]domain.Commission, 0, len(d.commissions))
	for _, c := range d.commissions {
		if domain.CanViewCommission(actor, c) {
			out = append(out, c)
		}
	}
	return out
}

func (d *Desk) observation(actor domain.User, text string) domain.ObservationEntry {
	return domain.ObservationEntry{
		ID:         d.newID(),
		Text:       text,
		AuthorID:   actor.ID,
		AuthorName: actor.Name,
		Department: actor.Department,
		CreatedAt:  d.timestamp(),
	}
}

func matchesFilter(c domain.Commission, f domain.CommissionFilter) bool {
	if f.Year != 0 || f.Month != 0 || f.Day != 0 {
		t, err := time.Parse(domain.DateLayout, c.ContractDate)
		if err != nil {
			return false
		}
		if f.Year != 0 && t.Year() != f.Year {
			return false
		}
		if f.Month != 0 && int(t.Month()) != f.Month {
			return false
		}
		if f.Day != 0 && t.Day() != f.Day {
			return false
		}
	}
	if f.Search != "" {
		return containsFold(c.ClientName, f.Search) || containsFold(c.LawyerName, f.Search)
	}
	return true
}

func validateDate(field, v string) error {
	if v == "" {
		return &domain.ErrValidation{Field: field, Message: "date is required"}
	}
	if _, err := time.Parse(domain.DateLayout, v); err != nil {
		return &domain.ErrValidation{Field: field, Message: "expected YYYY-MM-DD"}
	}
	return nil
}
