package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/boddenberg/commission-desk-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Clients
// ============================================================

// Clients returns the client catalog, optionally narrowed by a name search.
func (d *Desk) Clients(ctx context.Context, query string) []domain.Client {
	_, span := deskTracer.Start(ctx, "Desk.Clients")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	query = strings.TrimSpace(query)
	out := make([]domain.Client, 0, len(d.clients))
	for _, c := range d.clients {
		if containsFold(c.Name, query) {
			out = append(out, c)
		}
	}
	return out
}

// AddClient is the explicit lead intake: it creates a Lead owned by the
// Commercial department and the acting user, unless a client with that name
// already exists, in which case nothing changes.
func (d *Desk) AddClient(ctx context.Context, actor domain.User, name string) (*domain.ClientResult, error) {
	_, span := deskTracer.Start(ctx, "Desk.AddClient")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "client name is required"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if i := d.findClientByName(name); i >= 0 {
		existing := d.clients[i]
		return &domain.ClientResult{Client: &existing, Clients: slices.Clone(d.clients)}, nil
	}

	cl := domain.Client{
		ID:                    d.newID(),
		Name:                  name,
		Status:                domain.ClientLead,
		ResponsibleDepartment: domain.DeptCommercial,
		ResponsibleUserID:     actor.ID,
		ResponsibleUserName:   actor.Name,
		CreatedAt:             d.timestamp(),
	}
	d.insertClient(cl)
	span.SetAttributes(attribute.String("client.id", cl.ID))

	d.audit.Record(actor, AuditEntry{
		Action:     "client_add",
		TargetType: "client",
		TargetID:   cl.ID,
		Details:    "Inclusao de lead " + name,
	})
	d.emitClients()
	d.mutated("client_add")

	d.logger.Info("lead added", zap.String("client_id", cl.ID), zap.String("actor_id", actor.ID))

	return &domain.ClientResult{Client: &cl, Created: true, Clients: slices.Clone(d.clients)}, nil
}

// UpdateClient applies the non-nil fields of upd. Renaming onto another
// client's name is a conflict, since names are the join key.
func (d *Desk) UpdateClient(ctx context.Context, actor domain.User, id string, upd domain.ClientUpdate) (*domain.ClientResult, error) {
	_, span := deskTracer.Start(ctx, "Desk.UpdateClient")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", id))

	if !domain.CanManageClients(actor) {
		return nil, &domain.ErrForbidden{Action: "edit client"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.clientIndex(id)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "client", ID: id}
	}
	cl := d.clients[i]
	renamed := false

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, &domain.ErrValidation{Field: "name", Message: "client name is required"}
		}
		if j := d.findClientByName(name); j >= 0 && j != i {
			return nil, &domain.ErrConflict{Message: fmt.Sprintf("client %q already exists", name)}
		}
		renamed = name != cl.Name
		cl.Name = name
	}
	if upd.Status != nil {
		if !domain.IsValidClientStatus(*upd.Status) {
			return nil, &domain.ErrValidation{Field: "status", Message: "unknown client status"}
		}
		cl.Status = *upd.Status
	}
	if upd.ResponsibleDepartment != nil {
		if !domain.IsValidDepartment(*upd.ResponsibleDepartment) {
			return nil, &domain.ErrValidation{Field: "responsibleDepartment", Message: "unknown department"}
		}
		cl.ResponsibleDepartment = *upd.ResponsibleDepartment
	}
	setString(&cl.ResponsibleUserID, upd.ResponsibleUserID)
	setString(&cl.ResponsibleUserName, upd.ResponsibleUserName)
	setString(&cl.Note, upd.Note)
	setString(&cl.LastContactDate, upd.LastContactDate)
	setString(&cl.BirthDate, upd.BirthDate)
	setString(&cl.GPSDueDate, upd.GPSDueDate)
	setString(&cl.CPF, upd.CPF)
	setString(&cl.GovPassword, upd.GovPassword)
	setString(&cl.ContractSignatureDate, upd.ContractSignatureDate)
	setString(&cl.PhoneNumber, upd.PhoneNumber)
	setString(&cl.ExpectedBirthDate, upd.ExpectedBirthDate)
	setString(&cl.WorkStatus, upd.WorkStatus)
	if upd.HasKidsUnder5 != nil {
		cl.HasKidsUnder5 = domain.BoolPtr(*upd.HasKidsUnder5)
	}
	if upd.HasLawyer != nil {
		cl.HasLawyer = domain.BoolPtr(*upd.HasLawyer)
	}
	cl.UpdatedAt = d.timestamp()

	d.clients[i] = cl
	if renamed {
		domain.SortClientsByName(d.clients)
	}

	details := "Atualização de cliente"
	if upd.Name != nil {
		details += " " + cl.Name
	}
	d.audit.Record(actor, AuditEntry{Action: "client_update", TargetType: "client", TargetID: id, Details: details})
	d.emitClients()
	d.mutated("client_update")

	return &domain.ClientResult{Client: &cl, Clients: slices.Clone(d.clients)}, nil
}

// UpdateClientNote replaces the free-text note of a client.
func (d *Desk) UpdateClientNote(ctx context.Context, actor domain.User, id, note string) (*domain.ClientResult, error) {
	_, span := deskTracer.Start(ctx, "Desk.UpdateClientNote")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", id))

	if !domain.CanManageClients(actor) {
		return nil, &domain.ErrForbidden{Action: "edit client note"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.clientIndex(id)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "client", ID: id}
	}
	d.clients[i].Note = note
	d.clients[i].UpdatedAt = d.timestamp()
	cl := d.clients[i]

	d.audit.Record(actor, AuditEntry{
		Action:     "client_note_update",
		TargetType: "client",
		TargetID:   id,
		Details:    fmt.Sprintf("Nota (%d chars)", len([]rune(note))),
	})
	d.emitClients()
	d.mutated("client_note_update")

	return &domain.ClientResult{Client: &cl, Clients: slices.Clone(d.clients)}, nil
}

// DeleteClient removes a client. Commissions naming it are untouched.
func (d *Desk) DeleteClient(ctx context.Context, actor domain.User, id string) (*domain.ClientResult, error) {
	_, span := deskTracer.Start(ctx, "Desk.DeleteClient")
	defer span.End()
	span.SetAttributes(attribute.String("client.id", id))

	if !domain.CanManageClients(actor) {
		return nil, &domain.ErrForbidden{Action: "delete client"}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	i := d.clientIndex(id)
	if i < 0 {
		return nil, &domain.ErrNotFound{Resource: "client", ID: id}
	}
	d.clients = slices.Delete(slices.Clone(d.clients), i, i+1)

	d.audit.Record(actor, AuditEntry{Action: "client_delete", TargetType: "client", TargetID: id})
	d.emitClients()
	d.mutated("client_delete")

	return &domain.ClientResult{Clients: slices.Clone(d.clients)}, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
