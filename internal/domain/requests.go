package domain

// ============================================================
// Mutation inputs (bodies of the presentation layer actions)
// ============================================================

// CommissionInput is the body for POST /v1/commissions.
type CommissionInput struct {
	ClientName   string     `json:"clientName"`
	ContractDate string     `json:"contractDate"`
	Department   Department `json:"department,omitempty"` // defaults to the author's department
	CaseType     string     `json:"caseType,omitempty"`
	CaseValue    float64    `json:"caseValue,omitempty"`
	Observations string     `json:"observations,omitempty"`

	LeadPhoneNumber       string `json:"leadPhoneNumber,omitempty"`
	LeadExpectedBirthDate string `json:"leadExpectedBirthDate,omitempty"`
	LeadHasKidsUnder5     *bool  `json:"leadHasKidsUnder5,omitempty"`
	LeadWorkStatus        string `json:"leadWorkStatus,omitempty"`
	LeadHasLawyer         *bool  `json:"leadHasLawyer,omitempty"`
}

// CommissionUpdate is the body for PUT /v1/commissions/{id}. Empty strings
// and nil pointers keep the stored value.
type CommissionUpdate struct {
	ClientName   string           `json:"clientName,omitempty"`
	ContractDate string           `json:"contractDate,omitempty"`
	Status       CommissionStatus `json:"status,omitempty"`
	Observation  string           `json:"observation,omitempty"` // appended to the history

	LeadPhoneNumber       string `json:"leadPhoneNumber,omitempty"`
	LeadExpectedBirthDate string `json:"leadExpectedBirthDate,omitempty"`
	LeadHasKidsUnder5     *bool  `json:"leadHasKidsUnder5,omitempty"`
	LeadWorkStatus        string `json:"leadWorkStatus,omitempty"`
	LeadHasLawyer         *bool  `json:"leadHasLawyer,omitempty"`
}

// ClientUpdate is the body for PUT /v1/clients/{id}. Nil fields are left
// untouched.
type ClientUpdate struct {
	Name                  *string       `json:"name,omitempty"`
	Status                *ClientStatus `json:"status,omitempty"`
	ResponsibleDepartment *Department   `json:"responsibleDepartment,omitempty"`
	ResponsibleUserID     *string       `json:"responsibleUserId,omitempty"`
	ResponsibleUserName   *string       `json:"responsibleUserName,omitempty"`
	Note                  *string       `json:"note,omitempty"`
	LastContactDate       *string       `json:"lastContactDate,omitempty"`
	BirthDate             *string       `json:"birthDate,omitempty"`
	GPSDueDate            *string       `json:"gpsDueDate,omitempty"`
	CPF                   *string       `json:"cpf,omitempty"`
	GovPassword           *string       `json:"govPassword,omitempty"`
	ContractSignatureDate *string       `json:"contractSignatureDate,omitempty"`
	PhoneNumber           *string       `json:"phoneNumber,omitempty"`
	ExpectedBirthDate     *string       `json:"expectedBirthDate,omitempty"`
	HasKidsUnder5         *bool         `json:"hasKidsUnder5,omitempty"`
	WorkStatus            *string       `json:"workStatus,omitempty"`
	HasLawyer             *bool         `json:"hasLawyer,omitempty"`
}

// UserInput is the body for POST /v1/users and PUT /v1/users/{id}.
// An empty password on update keeps the current one.
type UserInput struct {
	Username       string     `json:"username"`
	Password       string     `json:"password,omitempty"`
	Name           string     `json:"name"`
	Role           UserRole   `json:"role"`
	Department     Department `json:"department"`
	AvatarInitials string     `json:"avatarInitials,omitempty"`
}

// NoticeInput is the body for POST /v1/notices.
type NoticeInput struct {
	Title                string       `json:"title"`
	Message              string       `json:"message"`
	VisibleToRoles       []UserRole   `json:"visibleToRoles,omitempty"`
	VisibleToDepartments []Department `json:"visibleToDepartments,omitempty"`
}

// CommissionFilter narrows a commission listing. Zero fields match all.
type CommissionFilter struct {
	Year   int
	Month  int // 1-12
	Day    int // 1-31
	Search string
}

// ============================================================
// Mutation results: the record touched plus the collections it changed
// ============================================================

// CommissionResult is returned by commission mutations. Commissions is the
// actor's visible list after the change.
type CommissionResult struct {
	Commission  *Commission  `json:"commission,omitempty"`
	Commissions []Commission `json:"commissions"`
	Clients     []Client     `json:"clients"`
}

// ClientResult is returned by client mutations.
type ClientResult struct {
	Client  *Client  `json:"client,omitempty"`
	Created bool     `json:"created"`
	Clients []Client `json:"clients"`
}
