package model

// CapitalExpenseItem is one amortizable capital project from a property
// or tenant settings document. Numeric fields keep the document's string
// form; the amortizer parses and validates them.
type CapitalExpenseItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Year        string `json:"year"`
	Amount      string `json:"amount"`
	AmortYears  string `json:"amort_years"`
}

// MergeCapitalExpenses combines property- and tenant-level schedules.
// Tenant items supersede property items sharing an id; items missing an
// id, description, or amount are dropped.
func MergeCapitalExpenses(property, tenant []CapitalExpenseItem) []CapitalExpenseItem {
	merged := make(map[string]CapitalExpenseItem)
	order := make([]string, 0, len(property)+len(tenant))

	for _, item := range property {
		if item.ID == "" {
			continue
		}
		if _, seen := merged[item.ID]; !seen {
			order = append(order, item.ID)
		}
		merged[item.ID] = item
	}
	for _, item := range tenant {
		if item.ID == "" {
			continue
		}
		if _, seen := merged[item.ID]; !seen {
			order = append(order, item.ID)
		}
		merged[item.ID] = item
	}

	result := make([]CapitalExpenseItem, 0, len(order))
	for _, id := range order {
		item := merged[id]
		if item.Description == "" || item.Amount == "" {
			continue
		}
		result = append(result, item)
	}
	return result
}
