// Package rows maps desk entities to the snake_case table rows shared by
// the relational backends (Supabase PostgREST and direct Postgres).
package rows

import (
	"encoding/json"

	"github.com/boddenberg/commission-desk-go/internal/domain"
)

// Table names.
const (
	TableUsers       = "users"
	TableCommissions = "commissions"
	TableClients     = "clients"
	TableAuditLogs   = "audit_logs"
	TableNotices     = "notices"
	TableSettings    = "settings"
)

// GoalSettingKey is the settings row holding the monthly contract goal.
const GoalSettingKey = "monthly_contract_goal"

// Table returns the table backing a collection. The goal lives in settings.
func Table(c domain.Collection) string {
	switch c {
	case domain.CollectionUsers:
		return TableUsers
	case domain.CollectionCommissions:
		return TableCommissions
	case domain.CollectionClients:
		return TableClients
	case domain.CollectionAuditLogs:
		return TableAuditLogs
	case domain.CollectionNotices:
		return TableNotices
	default:
		return TableSettings
	}
}

// User is a users row.
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Role           string `json:"role"`
	Department     string `json:"department"`
	AvatarInitials string `json:"avatar_initials"`
}

// Client is a clients row. Empty optional values are sent as null so typed
// date columns accept them.
type Client struct {
	ID                    string  `json:"id"`
	Name                  string  `json:"name"`
	Status                string  `json:"status"`
	ResponsibleDepartment *string `json:"responsible_department"`
	ResponsibleUserID     *string `json:"responsible_user_id"`
	ResponsibleUserName   *string `json:"responsible_user_name"`
	Note                  *string `json:"note"`
	LastContactDate       *string `json:"last_contact_date"`
	BirthDate             *string `json:"birth_date"`
	GPSDueDate            *string `json:"gps_due_date"`
	CPF                   *string `json:"cpf"`
	GovPassword           *string `json:"gov_password"`
	ContractSignatureDate *string `json:"contract_signature_date"`
	PhoneNumber           *string `json:"phone_number"`
	ExpectedBirthDate     *string `json:"expected_birth_date"`
	HasKidsUnder5         *bool   `json:"has_kids_under_5"`
	WorkStatus            *string `json:"work_status"`
	HasLawyer             *bool   `json:"has_lawyer"`
	CreatedAt             *string `json:"created_at"`
	UpdatedAt             *string `json:"updated_at"`
}

// Commission is a commissions row. observation_history is a JSON document
// stored as text.
type Commission struct {
	ID                    string  `json:"id"`
	LawyerName            string  `json:"lawyer_name"`
	LawyerID              *string `json:"lawyer_id"`
	Department            string  `json:"department"`
	ClientName            string  `json:"client_name"`
	CaseType              string  `json:"case_type"`
	CaseValue             float64 `json:"case_value"`
	CommissionPercentage  float64 `json:"commission_percentage"`
	CommissionValue       float64 `json:"commission_value"`
	Status                string  `json:"status"`
	Date                  string  `json:"date"`
	ContractDate          string  `json:"contract_date"`
	Observations          *string `json:"observations"`
	ObservationHistory    *string `json:"observation_history"`
	ApprovedByID          *string `json:"approved_by_id"`
	ApprovedAt            *string `json:"approved_at"`
	UpdatedAt             *string `json:"updated_at"`
	NoCommission          bool    `json:"no_commission"`
	LeadPhoneNumber       *string `json:"lead_phone_number"`
	LeadExpectedBirthDate *string `json:"lead_expected_birth_date"`
	LeadHasKidsUnder5     *bool   `json:"lead_has_kids_under_5"`
	LeadWorkStatus        *string `json:"lead_work_status"`
	LeadHasLawyer         *bool   `json:"lead_has_lawyer"`
}

// AuditLog is an audit_logs row.
type AuditLog struct {
	ID         string  `json:"id"`
	Timestamp  string  `json:"timestamp"`
	ActorID    *string `json:"actor_id"`
	ActorName  *string `json:"actor_name"`
	Action     string  `json:"action"`
	TargetType string  `json:"target_type"`
	TargetID   *string `json:"target_id"`
	Details    *string `json:"details"`
}

// Notice is a notices row.
type Notice struct {
	ID                   string   `json:"id"`
	Title                string   `json:"title"`
	Message              string   `json:"message"`
	VisibleToRoles       []string `json:"visible_to_roles"`
	VisibleToDepartments []string `json:"visible_to_departments"`
	CreatedBy            *string  `json:"created_by"`
	CreatedAt            string   `json:"created_at"`
}

// Setting is a settings row.
type Setting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// ============================================================
// Entity → row
// ============================================================

func FromUsers(in []domain.User) []User {
	out := make([]User, len(in))
	for i, u := range in {
		out[i] = User{
			ID:             u.ID,
			Username:       u.Username,
			Password:       u.Password,
			Name:           u.Name,
			Role:           string(u.Role),
			Department:     string(u.Department),
			AvatarInitials: u.AvatarInitials,
		}
	}
	return out
}

func FromClients(in []domain.Client) []Client {
	out := make([]Client, len(in))
	for i, c := range in {
		out[i] = Client{
			ID:                    c.ID,
			Name:                  c.Name,
			Status:                string(c.Status),
			ResponsibleDepartment: opt(string(c.ResponsibleDepartment)),
			ResponsibleUserID:     opt(c.ResponsibleUserID),
			ResponsibleUserName:   opt(c.ResponsibleUserName),
			Note:                  opt(c.Note),
			LastContactDate:       opt(c.LastContactDate),
			BirthDate:             opt(c.BirthDate),
			GPSDueDate:            opt(c.GPSDueDate),
			CPF:                   opt(c.CPF),
			GovPassword:           opt(c.GovPassword),
			ContractSignatureDate: opt(c.ContractSignatureDate),
			PhoneNumber:           opt(c.PhoneNumber),
			ExpectedBirthDate:     opt(c.ExpectedBirthDate),
			HasKidsUnder5:         c.HasKidsUnder5,
			WorkStatus:            opt(c.WorkStatus),
			HasLawyer:             c.HasLawyer,
			CreatedAt:             opt(c.CreatedAt),
			UpdatedAt:             opt(c.UpdatedAt),
		}
	}
	return out
}

func FromCommissions(in []domain.Commission) ([]Commission, error) {
	out := make([]Commission, len(in))
	for i, c := range in {
		var history *string
		if len(c.ObservationHistory) > 0 {
			b, err := json.Marshal(c.ObservationHistory)
			if err != nil {
				return nil, err
			}
			history = opt(string(b))
		}
		out[i] = Commission{
			ID:                    c.ID,
			LawyerName:            c.LawyerName,
			LawyerID:              opt(c.LawyerID),
			Department:            string(c.Department),
			ClientName:            c.ClientName,
			CaseType:              c.CaseType,
			CaseValue:             c.CaseValue,
			CommissionPercentage:  c.CommissionPercentage,
			CommissionValue:       c.CommissionValue,
			Status:                string(c.Status),
			Date:                  c.Date,
			ContractDate:          c.ContractDate,
			Observations:          opt(c.Observations),
			ObservationHistory:    history,
			ApprovedByID:          opt(c.ApprovedByID),
			ApprovedAt:            opt(c.ApprovedAt),
			UpdatedAt:             opt(c.UpdatedAt),
			NoCommission:          c.NoCommission,
			LeadPhoneNumber:       opt(c.LeadPhoneNumber),
			LeadExpectedBirthDate: opt(c.LeadExpectedBirthDate),
			LeadHasKidsUnder5:     c.LeadHasKidsUnder5,
			LeadWorkStatus:        opt(c.LeadWorkStatus),
			LeadHasLawyer:         c.LeadHasLawyer,
		}
	}
	return out, nil
}

func FromAuditLogs(in []domain.AuditLog) []AuditLog {
	out := make([]AuditLog, len(in))
	for i, l := range in {
		out[i] = AuditLog{
			ID:         l.ID,
			Timestamp:  l.Timestamp,
			ActorID:    opt(l.ActorID),
			ActorName:  opt(l.ActorName),
			Action:     l.Action,
			TargetType: l.TargetType,
			TargetID:   opt(l.TargetID),
			Details:    opt(l.Details),
		}
	}
	return out
}

func FromNotices(in []domain.Notice) []Notice {
	out := make([]Notice, len(in))
	for i, n := range in {
		roles := make([]string, len(n.VisibleToRoles))
		for j, r := range n.VisibleToRoles {
			roles[j] = string(r)
		}
		var depts []string
		for _, d := range n.VisibleToDepartments {
			depts = append(depts, string(d))
		}
		out[i] = Notice{
			ID:                   n.ID,
			Title:                n.Title,
			Message:              n.Message,
			VisibleToRoles:       roles,
			VisibleToDepartments: depts,
			CreatedBy:            opt(n.CreatedBy),
			CreatedAt:            n.CreatedAt,
		}
	}
	return out
}

// ============================================================
// Row → entity
// ============================================================

func (r User) Domain() domain.User {
	return domain.User{
		ID:             r.ID,
		Username:       r.Username,
		Password:       r.Password,
		Name:           r.Name,
		Role:           domain.UserRole(r.Role),
		Department:     domain.Department(r.Department),
		AvatarInitials: r.AvatarInitials,
	}
}

func (r Client) Domain() domain.Client {
	return domain.Client{
		ID:                    r.ID,
		Name:                  r.Name,
		Status:                domain.ClientStatus(r.Status),
		ResponsibleDepartment: domain.Department(val(r.ResponsibleDepartment)),
		ResponsibleUserID:     val(r.ResponsibleUserID),
		ResponsibleUserName:   val(r.ResponsibleUserName),
		Note:                  val(r.Note),
		LastContactDate:       val(r.LastContactDate),
		BirthDate:             val(r.BirthDate),
		GPSDueDate:            val(r.GPSDueDate),
		CPF:                   val(r.CPF),
		GovPassword:           val(r.GovPassword),
		ContractSignatureDate: val(r.ContractSignatureDate),
		PhoneNumber:           val(r.PhoneNumber),
		ExpectedBirthDate:     val(r.ExpectedBirthDate),
		HasKidsUnder5:         r.HasKidsUnder5,
		WorkStatus:            val(r.WorkStatus),
		HasLawyer:             r.HasLawyer,
		CreatedAt:             val(r.CreatedAt),
		UpdatedAt:             val(r.UpdatedAt),
	}
}

// Domain converts the row. A malformed observation history is dropped and
// reported so the caller can log it; the legacy observations text still
// reads as a one-entry history.
func (r Commission) Domain() (domain.Commission, error) {
	c := domain.Commission{
		ID:                    r.ID,
		LawyerName:            r.LawyerName,
		LawyerID:              val(r.LawyerID),
		Department:            domain.Department(r.Department),
		ClientName:            r.ClientName,
		CaseType:              r.CaseType,
		CaseValue:             r.CaseValue,
		CommissionPercentage:  r.CommissionPercentage,
		CommissionValue:       r.CommissionValue,
		Status:                domain.CommissionStatus(r.Status),
		Date:                  r.Date,
		ContractDate:          r.ContractDate,
		Observations:          val(r.Observations),
		ApprovedByID:          val(r.ApprovedByID),
		ApprovedAt:            val(r.ApprovedAt),
		UpdatedAt:             val(r.UpdatedAt),
		NoCommission:          r.NoCommission,
		LeadPhoneNumber:       val(r.LeadPhoneNumber),
		LeadExpectedBirthDate: val(r.LeadExpectedBirthDate),
		LeadHasKidsUnder5:     r.LeadHasKidsUnder5,
		LeadWorkStatus:        val(r.LeadWorkStatus),
		LeadHasLawyer:         r.LeadHasLawyer,
	}
	if h := val(r.ObservationHistory); h != "" {
		if err := json.Unmarshal([]byte(h), &c.ObservationHistory); err != nil {
			c.ObservationHistory = nil
			return c, err
		}
	}
	return c, nil
}

func (r AuditLog) Domain() domain.AuditLog {
	return domain.AuditLog{
		ID:         r.ID,
		Timestamp:  r.Timestamp,
		ActorID:    val(r.ActorID),
		ActorName:  val(r.ActorName),
		Action:     r.Action,
		TargetType: r.TargetType,
		TargetID:   val(r.TargetID),
		Details:    val(r.Details),
	}
}

func (r Notice) Domain() domain.Notice {
	n := domain.Notice{
		ID:        r.ID,
		Title:     r.Title,
		Message:   r.Message,
		CreatedBy: val(r.CreatedBy),
		CreatedAt: r.CreatedAt,
	}
	for _, role := range r.VisibleToRoles {
		n.VisibleToRoles = append(n.VisibleToRoles, domain.UserRole(role))
	}
	for _, d := range r.VisibleToDepartments {
		n.VisibleToDepartments = append(n.VisibleToDepartments, domain.Department(d))
	}
	return n
}

func opt(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func val(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
