package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ============================================================
// Load-time normalization and shape migration
// ============================================================

// ClientsShape tags the persisted shape of the client collection.
type ClientsShape int

const (
	ClientsAbsent  ClientsShape = iota // nothing persisted yet
	ClientsLegacy                      // JSON array of names
	ClientsRecords                     // JSON array of client objects
)

// DecodeClients decodes a persisted client collection. Legacy name lists are
// upgraded to minimal Lead records; records get id and status defaults. An
// empty payload reports ClientsAbsent so the caller can derive the
// collection from commissions instead.
func DecodeClients(raw []byte) ([]Client, ClientsShape, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, ClientsAbsent, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, ClientsAbsent, fmt.Errorf("decode clients: %w", err)
	}

	if len(items) > 0 && allStrings(items) {
		clients := make([]Client, 0, len(items))
		for _, it := range items {
			var name string
			if err := json.Unmarshal(it, &name); err != nil {
				return nil, ClientsAbsent, fmt.Errorf("decode legacy client: %w", err)
			}
			clients = append(clients, Client{ID: name, Name: name, Status: ClientLead})
		}
		return clients, ClientsLegacy, nil
	}

	clients := make([]Client, 0, len(items))
	for _, it := range items {
		var c Client
		if err := json.Unmarshal(it, &c); err != nil {
			return nil, ClientsAbsent, fmt.Errorf("decode client: %w", err)
		}
		clients = append(clients, c)
	}
	return NormalizeClients(clients), ClientsRecords, nil
}

func allStrings(items []json.RawMessage) bool {
	for _, it := range items {
		if len(it) == 0 || it[0] != '"' {
			return false
		}
	}
	return true
}

// NormalizeClients fills defaults on loaded client records.
func NormalizeClients(clients []Client) []Client {
	for i := range clients {
		if clients[i].ID == "" {
			clients[i].ID = clients[i].Name
		}
		if clients[i].Status == "" {
			clients[i].Status = ClientLead
		}
	}
	return clients
}

// DeriveClients seeds the client collection from the distinct client names
// of the commission list, in first-seen order.
func DeriveClients(commissions []Commission) []Client {
	seen := make(map[string]bool)
	clients := make([]Client, 0)
	for _, c := range commissions {
		if c.ClientName == "" || seen[c.ClientName] {
			continue
		}
		seen[c.ClientName] = true
		clients = append(clients, Client{ID: c.ClientName, Name: c.ClientName, Status: ClientLead})
	}
	return clients
}

// NormalizeUsers defaults a missing department to Commercial.
func NormalizeUsers(users []User) []User {
	for i := range users {
		if users[i].Department == "" {
			users[i].Department = DeptCommercial
		}
	}
	return users
}

// NormalizeCommissions defaults a missing department to Commercial and
// re-derives every commission value.
func NormalizeCommissions(list []Commission) []Commission {
	for i := range list {
		if list[i].Department == "" {
			list[i].Department = DeptCommercial
		}
	}
	return Recompute(list)
}

// ClampGoal turns any goal input into a non-negative integer.
func ClampGoal(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > float64(maxGoal) {
		return maxGoal
	}
	return int(math.Floor(v))
}

const maxGoal = 1<<31 - 1

// ============================================================
// Observation history
// ============================================================

// History returns the observation history of c. A legacy entry that only
// carries the single observations string reads as a one-entry history
// authored by the lawyer at the commission's record time.
func (c Commission) History() []ObservationEntry {
	if len(c.ObservationHistory) > 0 || c.Observations == "" {
		return c.ObservationHistory
	}
	return []ObservationEntry{{
		ID:         c.ID + "-legacy",
		Text:       c.Observations,
		AuthorID:   c.LawyerID,
		AuthorName: c.LawyerName,
		Department: c.Department,
		CreatedAt:  c.Date,
	}}
}

// LatestObservation returns the text of the newest history entry.
func (c Commission) LatestObservation() string {
	h := c.History()
	if len(h) == 0 {
		return ""
	}
	return h[len(h)-1].Text
}
