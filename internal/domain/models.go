package domain

// ============================================================
// Enumerations. Wire values are the labels persisted by the
// web dashboard, so existing state loads unchanged.
// ============================================================

// UserRole is the authorization role of a user.
type UserRole string

const (
	RoleAdmin        UserRole = "Administrador"
	RoleManager      UserRole = "Gestor"
	RoleCollaborator UserRole = "Colaborador"
)

// AllRoles lists every role, in display order.
var AllRoles = []UserRole{RoleAdmin, RoleManager, RoleCollaborator}

// Department is the firm department a user or commission belongs to.
type Department string

const (
	DeptCommercial      Department = "Comercial"
	DeptControllership  Department = "Controladoria"
	DeptOperations      Department = "Operacional"
	DeptMaintenance     Department = "Manutenção"
	DeptCustomerSuccess Department = "Sucesso do Cliente"
	DeptFinance         Department = "Financeiro"
	DeptGeneral         Department = "Geral"
)

// AllDepartments lists every department, in display order.
var AllDepartments = []Department{
	DeptCommercial, DeptControllership, DeptOperations, DeptMaintenance,
	DeptCustomerSuccess, DeptFinance, DeptGeneral,
}

// CommissionStatus is the payment status of a commission entry.
type CommissionStatus string

const (
	CommissionPending  CommissionStatus = "Pendente"
	CommissionPaid     CommissionStatus = "Pago"
	CommissionCanceled CommissionStatus = "Cancelado"
)

// ClientStatus is the stage of a client in the pipeline
// (Lead → Contratado → Em Andamento → Concluído).
type ClientStatus string

const (
	ClientLead       ClientStatus = "Lead"
	ClientContracted ClientStatus = "Contratado"
	ClientInProgress ClientStatus = "Em Andamento"
	ClientCompleted  ClientStatus = "Concluído"
	ClientCancelled  ClientStatus = "Cancelado"
)

// IsValidRole reports whether r is a known role.
func IsValidRole(r UserRole) bool {
	for _, v := range AllRoles {
		if v == r {
			return true
		}
	}
	return false
}

// IsValidDepartment reports whether d is a known department.
func IsValidDepartment(d Department) bool {
	for _, v := range AllDepartments {
		if v == d {
			return true
		}
	}
	return false
}

// IsValidCommissionStatus reports whether s is a known commission status.
func IsValidCommissionStatus(s CommissionStatus) bool {
	return s == CommissionPending || s == CommissionPaid || s == CommissionCanceled
}

// IsValidClientStatus reports whether s is a known client status.
func IsValidClientStatus(s ClientStatus) bool {
	switch s {
	case ClientLead, ClientContracted, ClientInProgress, ClientCompleted, ClientCancelled:
		return true
	}
	return false
}

// ============================================================
// Entities
// ============================================================

// User is an authenticated staff member.
type User struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Password       string     `json:"password,omitempty"`
	Name           string     `json:"name"`
	Role           UserRole   `json:"role"`
	Department     Department `json:"department"`
	AvatarInitials string     `json:"avatarInitials"`
}

// Public returns a copy of the user without the password.
func (u User) Public() User {
	u.Password = ""
	return u
}

// ObservationEntry is one immutable note appended to a commission.
type ObservationEntry struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	AuthorID   string     `json:"authorId,omitempty"`
	AuthorName string     `json:"authorName"`
	Department Department `json:"department"`
	CreatedAt  string     `json:"createdAt"`
}

// Commission is one recorded revenue event. CommissionValue and
// CommissionPercentage are derived by Recompute and never user-set.
type Commission struct {
	ID                   string             `json:"id"`
	LawyerName           string             `json:"lawyerName"`
	LawyerID             string             `json:"lawyerId,omitempty"`
	Department           Department         `json:"department"`
	ClientName           string             `json:"clientName"`
	CaseType             string             `json:"caseType"`
	CaseValue            float64            `json:"caseValue"`
	CommissionPercentage float64            `json:"commissionPercentage"`
	CommissionValue      float64            `json:"commissionValue"`
	Status               CommissionStatus   `json:"status"`
	Date                 string             `json:"date"`         // system record time
	ContractDate         string             `json:"contractDate"` // business date, YYYY-MM-DD
	Observations         string             `json:"observations,omitempty"`
	ObservationHistory   []ObservationEntry `json:"observationHistory,omitempty"`
	ApprovedByID         string             `json:"approvedById,omitempty"`
	ApprovedAt           string             `json:"approvedAt,omitempty"`
	UpdatedAt            string             `json:"updatedAt,omitempty"`
	NoCommission         bool               `json:"noCommission,omitempty"`

	// Lead intake collected by the Commercial department.
	LeadPhoneNumber       string `json:"leadPhoneNumber,omitempty"`
	LeadExpectedBirthDate string `json:"leadExpectedBirthDate,omitempty"`
	LeadHasKidsUnder5     *bool  `json:"leadHasKidsUnder5,omitempty"`
	LeadWorkStatus        string `json:"leadWorkStatus,omitempty"`
	LeadHasLawyer         *bool  `json:"leadHasLawyer,omitempty"`
}

// LawyerKey identifies the collaborator of a commission: the lawyer id
// when present, otherwise the lawyer name.
func (c Commission) LawyerKey() string {
	if c.LawyerID != "" {
		return c.LawyerID
	}
	return c.LawyerName
}

// Client is one firm-client relationship. Name is the natural dedup key.
type Client struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name"`
	Status                ClientStatus `json:"status,omitempty"`
	ResponsibleDepartment Department   `json:"responsibleDepartment,omitempty"`
	ResponsibleUserID     string       `json:"responsibleUserId,omitempty"`
	ResponsibleUserName   string       `json:"responsibleUserName,omitempty"`
	Note                  string       `json:"note,omitempty"`
	LastContactDate       string       `json:"lastContactDate,omitempty"`
	BirthDate             string       `json:"birthDate,omitempty"`
	GPSDueDate            string       `json:"gpsDueDate,omitempty"`
	CPF                   string       `json:"cpf,omitempty"`
	GovPassword           string       `json:"govPassword,omitempty"`
	ContractSignatureDate string       `json:"contractSignatureDate,omitempty"`
	PhoneNumber           string       `json:"phoneNumber,omitempty"`
	ExpectedBirthDate     string       `json:"expectedBirthDate,omitempty"`
	HasKidsUnder5         *bool        `json:"hasKidsUnder5,omitempty"`
	WorkStatus            string       `json:"workStatus,omitempty"`
	HasLawyer             *bool        `json:"hasLawyer,omitempty"`
	CreatedAt             string       `json:"createdAt,omitempty"`
	UpdatedAt             string       `json:"updatedAt,omitempty"`
}

// AuditLog is an immutable record of one mutating action.
type AuditLog struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	ActorID    string `json:"actorId,omitempty"`
	ActorName  string `json:"actorName,omitempty"`
	Action     string `json:"action"`
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId,omitempty"`
	Details    string `json:"details,omitempty"`
}

// Notice is a role/department scoped announcement.
type Notice struct {
	ID                   string       `json:"id"`
	Title                string       `json:"title"`
	Message              string       `json:"message"`
	VisibleToRoles       []UserRole   `json:"visibleToRoles"`
	VisibleToDepartments []Department `json:"visibleToDepartments,omitempty"`
	CreatedBy            string       `json:"createdBy,omitempty"`
	CreatedAt            string       `json:"createdAt"`
}

// ============================================================
// Store boundary
// ============================================================

// Collection names one persisted collection.
type Collection string

const (
	CollectionUsers       Collection = "users"
	CollectionCommissions Collection = "commissions"
	CollectionClients     Collection = "clients"
	CollectionAuditLogs   Collection = "audit_logs"
	CollectionNotices     Collection = "notices"
	CollectionGoal        Collection = "goal"
)

// AllCollections lists every persisted collection.
var AllCollections = []Collection{
	CollectionUsers, CollectionCommissions, CollectionClients,
	CollectionAuditLogs, CollectionNotices, CollectionGoal,
}

// Snapshot is the full working set loaded at startup.
type Snapshot struct {
	Users       []User
	Commissions []Commission
	Clients     []Client
	AuditLogs   []AuditLog
	Notices     []Notice
	Goal        int
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool { return &b }
