package domain

// Commission values per department rule.
const (
	ControllershipFlatValue = 10.0
)

// commercialTierValue is the marginal value of the n-th (1-based) Commercial
// entry of a collaborator on one contract day.
func commercialTierValue(index int) float64 {
	switch {
	case index <= 5:
		return 10
	case index <= 10:
		return 15
	default:
		return 20
	}
}

// Recompute derives CommissionValue and CommissionPercentage for every entry
// of the list. It must run over the whole collection after any insert,
// update or delete: the Commercial tier of an entry depends on its position
// among the entries of the same collaborator and contract day, in list order.
// The list holds entries in the order they were logged, oldest first.
// The input slice is not modified.
func Recompute(list []Commission) []Commission {
	out := make([]Commission, len(list))
	countByKey := make(map[string]int)

	for i, c := range list {
		switch {
		case c.NoCommission:
			c.CommissionValue = 0
			c.CommissionPercentage = 0
		case c.Status == CommissionCanceled:
			c.CommissionValue = 0
		case c.Department == DeptCommercial:
			key := c.LawyerKey() + "|" + c.ContractDate
			countByKey[key]++
			c.CommissionValue = commercialTierValue(countByKey[key])
			c.CommissionPercentage = 0
		case c.Department == DeptControllership:
			c.CommissionValue = ControllershipFlatValue
			c.CommissionPercentage = 0
		}
		out[i] = c
	}
	return out
}
