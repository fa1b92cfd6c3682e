package localstore

import "github.com/boddenberg/commission-desk-go/internal/domain"

// Demo users and commissions written on first start of a local store.
// Commissions are listed in the order they were logged.
// Passwords are plaintext and upgraded to bcrypt on first login.

func seedUsers() []domain.User {
	return []domain.User{
		{ID: "1", Username: "admin", Password: "123", Name: "Dr. Augusto Seabra", Role: domain.RoleAdmin, Department: domain.DeptGeneral, AvatarInitials: "AS"},
		{ID: "2", Username: "gestor", Password: "123", Name: "Mariana Sousa", Role: domain.RoleManager, Department: domain.DeptControllership, AvatarInitials: "MS"},
		{ID: "3", Username: "colaborador", Password: "123", Name: "Pedro Santos", Role: domain.RoleCollaborator, Department: domain.DeptCommercial, AvatarInitials: "PS"},
		{ID: "4", Username: "carlos", Password: "123", Name: "Dr. Carlos Mendez", Role: domain.RoleCollaborator, Department: domain.DeptCustomerSuccess, AvatarInitials: "CM"},
	}
}

func seedCommissions() []domain.Commission {
	return []domain.Commission{
		{
			ID: "5", LawyerName: "Dr. Roberto Silva", LawyerID: "1", Department: domain.DeptCommercial,
			ClientName: "Banco Invest", CaseType: "Tributário",
			CaseValue: 320000, CommissionPercentage: 7, CommissionValue: 22400,
			Status: domain.CommissionCanceled, Date: "2025-12-20", ContractDate: "2025-12-15",
			Observations: "Cliente desistiu do processo.",
		},
		{
			ID: "4", LawyerName: "Dra. Amanda Costa", LawyerID: "2", Department: domain.DeptOperations,
			ClientName: "Tech Startups SA", CaseType: "Propriedade Intelectual",
			CaseValue: 45000, CommissionPercentage: 12, CommissionValue: 5400,
			Status: domain.CommissionPaid, Date: "2026-01-02", ContractDate: "2025-12-28",
			Observations: "Registro de marca internacional.",
		},
		{
			ID: "1", LawyerName: "Dr. Roberto Silva", LawyerID: "1", Department: domain.DeptCommercial,
			ClientName: "Construtora Horizonte", CaseType: "Civil - Contratual",
			CaseValue: 150000, CommissionPercentage: 10, CommissionValue: 15000,
			Status: domain.CommissionPaid, Date: "2026-01-05", ContractDate: "2026-01-03",
			Observations: "Pagamento realizado via TED.",
		},
		{
			ID: "2", LawyerName: "Dra. Amanda Costa", LawyerID: "2", Department: domain.DeptOperations,
			ClientName: "Indústrias MetalSul", CaseType: "Trabalhista - Coletivo",
			CaseValue: 85000, CommissionPercentage: 8, CommissionValue: 6800,
			Status: domain.CommissionPending, Date: "2026-01-08", ContractDate: "2026-01-06",
			Observations: "Aguardando compensação da primeira parcela.",
		},
		{
			ID: "3", LawyerName: "Dr. Carlos Mendez", LawyerID: "4", Department: domain.DeptCustomerSuccess,
			ClientName: "Família Souza", CaseType: "Inventário",
			CaseValue: 2500000, CommissionPercentage: 5, CommissionValue: 125000,
			Status: domain.CommissionPending, Date: "2026-01-10", ContractDate: "2026-01-08",
		},
	}
}
