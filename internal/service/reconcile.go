package service

import (
	"github.com/boddenberg/commission-desk-go/internal/domain"
)

// findClientByName returns the index of the client whose name matches
// ignoring case and surrounding whitespace, or -1.
func (d *Desk) findClientByName(name string) int {
	key := domain.NameKey(name)
	for i, c := range d.clients {
		if domain.NameKey(c.Name) == key {
			return i
		}
	}
	return -1
}

// reconcileOnAdd upserts the client implied by a newly recorded commission.
// An existing client is promoted to Contracted and handed to
// Controllership; lead data only fills gaps. A new client starts
// Contracted. Reports whether a client was created.
func (d *Desk) reconcileOnAdd(c domain.Commission) bool {
	now := d.timestamp()

	if i := d.findClientByName(c.ClientName); i >= 0 {
		cl := d.clients[i]
		cl.Status = domain.ClientContracted
		cl.ResponsibleDepartment = domain.DeptControllership
		if cl.ContractSignatureDate == "" {
			cl.ContractSignatureDate = c.ContractDate
		}
		cl.PhoneNumber = firstNonEmpty(c.LeadPhoneNumber, cl.PhoneNumber)
		cl.ExpectedBirthDate = firstNonEmpty(c.LeadExpectedBirthDate, cl.ExpectedBirthDate)
		cl.WorkStatus = firstNonEmpty(c.LeadWorkStatus, cl.WorkStatus)
		if c.LeadHasKidsUnder5 != nil {
			cl.HasKidsUnder5 = domain.BoolPtr(*c.LeadHasKidsUnder5)
		}
		if c.LeadHasLawyer != nil {
			cl.HasLawyer = domain.BoolPtr(*c.LeadHasLawyer)
		}
		if cl.Note == "" {
			cl.Note = c.LatestObservation()
		}
		cl.UpdatedAt = now
		d.clients[i] = cl
		return false
	}

	d.insertClient(domain.Client{
		ID:                    d.newID(),
		Name:                  c.ClientName,
		Status:                domain.ClientContracted,
		ResponsibleDepartment: domain.DeptControllership,
		ResponsibleUserID:     c.LawyerID,
		ResponsibleUserName:   c.LawyerName,
		ContractSignatureDate: c.ContractDate,
		PhoneNumber:           c.LeadPhoneNumber,
		ExpectedBirthDate:     c.LeadExpectedBirthDate,
		HasKidsUnder5:         c.LeadHasKidsUnder5,
		WorkStatus:            c.LeadWorkStatus,
		HasLawyer:             c.LeadHasLawyer,
		Note:                  c.LatestObservation(),
		CreatedAt:             now,
	})
	return true
}

// reconcileOnUpdate only guarantees that a client exists for the (possibly
// renamed) commission; it never re-runs the add merge.
func (d *Desk) reconcileOnUpdate(c domain.Commission) bool {
	if d.findClientByName(c.ClientName) >= 0 {
		return false
	}
	d.insertClient(domain.Client{
		ID:                    d.newID(),
		Name:                  c.ClientName,
		Status:                domain.ClientContracted,
		ResponsibleDepartment: domain.DeptControllership,
		ContractSignatureDate: c.ContractDate,
		CreatedAt:             d.timestamp(),
	})
	return true
}

func (d *Desk) insertClient(cl domain.Client) {
	d.clients = append(d.clients, cl)
	domain.SortClientsByName(d.clients)
}

func firstNonEmpty(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
