package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/boddenberg/commission-desk-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Notices and goal
// ============================================================

// VisibleNotices returns the notices targeted at viewer, newest first,
// narrowed by a search over title and message.
func (d *Desk) VisibleNotices(ctx context.Context, viewer domain.User, query string) []domain.Notice {
	_, span := deskTracer.Start(ctx, "Desk.VisibleNotices")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visibleNotices(viewer, strings.TrimSpace(query))
}

// AddNotice publishes a notice. An empty role set targets every role.
func (d *Desk) AddNotice(ctx context.Context, actor domain.User, in domain.NoticeInput) ([]domain.Notice, error) {
	_, span := deskTracer.Start(ctx, "Desk.AddNotice")
	defer span.End()

	if !domain.CanManageNotices(actor) {
		return nil, &domain.ErrForbidden{Action: "create notice"}
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, &domain.ErrValidation{Field: "title", Message: "title is required"}
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "message is required"}
	}
	for _, r := range in.VisibleToRoles {
		if !domain.IsValidRole(r) {
			return nil, &domain.ErrValidation{Field: "visibleToRoles", Message: fmt.Sprintf("unknown role %q", r)}
		}
	}
	for _, dep := range in.VisibleToDepartments {
		if !domain.IsValidDepartment(dep) {
			return nil, &domain.ErrValidation{Field: "visibleToDepartments", Message: fmt.Sprintf("unknown department %q", dep)}
		}
	}

	roles := slices.Clone(in.VisibleToRoles)
	if len(roles) == 0 {
		roles = slices.Clone(domain.AllRoles)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	n := domain.Notice{
		ID:                   d.newID(),
		Title:                title,
		Message:              in.Message,
		VisibleToRoles:       roles,
		VisibleToDepartments: slices.Clone(in.VisibleToDepartments),
		CreatedBy:            actor.Name,
		CreatedAt:            d.timestamp(),
	}
	span.SetAttributes(attribute.String("notice.id", n.ID))

	d.notices = append([]domain.Notice{n}, d.notices...)

	d.audit.Record(actor, AuditEntry{Action: "notice_add", TargetType: "notice", TargetID: n.ID, Details: n.Title})
	d.emitNotices()
	d.mutated("notice_add")

	return d.visibleNotices(actor, ""), nil
}

// DeleteNotice removes a notice.
func (d *Desk) DeleteNotice(ctx context.Context, actor domain.User, id string) ([]domain.Notice, error) {
	_, span := deskTracer.Start(ctx, "Desk.DeleteNotice")
	defer span.End()
	span.SetAttributes(attribute.String("notice.id", id))

	if !domain.CanManageNotices(actor) {
		return nil, &domain.ErrForbidden{Action: "delete notice"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := slices.IndexFunc(d.notices, func(n domain.Notice) bool { return n.ID == id })
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "notice", ID: id}
	}
	d.notices = slices.Delete(slices.Clone(d.notices), i, i+1)

	d.audit.Record(actor, AuditEntry{Action: "notice_delete", TargetType: "notice", TargetID: id})
	d.emitNotices()
	d.mutated("notice_delete")

	return d.visibleNotices(actor, ""), nil
}

// Goal returns the monthly contract goal.
func (d *Desk) Goal() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.goal
}

// UpdateGoal sets the monthly contract goal, floored and clamped at zero.
func (d *Desk) UpdateGoal(ctx context.Context, actor domain.User, value float64) (int, error) {
	_, span := deskTracer.Start(ctx, "Desk.UpdateGoal")
	defer span.End()

	if !domain.CanEditGoal(actor) {
		return 0, &domain.ErrForbidden{Action: "edit goal"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.goal = domain.ClampGoal(value)
	span.SetAttributes(attribute.Int("goal", d.goal))

	d.audit.Record(actor, AuditEntry{
		Action:     "goal_update",
		TargetType: "goal_contracts",
		Details:    fmt.Sprintf("Meta para %d contratos", d.goal),
	})
	d.emit(domain.CollectionGoal, d.goal)
	d.mutated("goal_update")

	return d.goal, nil
}

func (d *Desk) visibleNotices(viewer domain.User, query string) []domain.Notice {
	out := make([]domain.Notice, 0, len(d.notices))
	for _, n := range d.notices {
		if !domain.NoticeVisibleTo(n, viewer) {
			continue
		}
		if query != "" && !containsFold(n.Title, query) && !containsFold(n.Message, query) {
			continue
		}
		out = append(out, n)
	}
	return out
}
