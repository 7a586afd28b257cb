package model

// Category identifies a GL rule bucket.
type Category string

const (
	// CategoryCAM covers common-area-maintenance expenses.
	CategoryCAM Category = "cam"
	// CategoryRET covers real-estate-tax expenses.
	CategoryRET Category = "ret"
	// CategoryAdminFee selects the subset of CAM used as the admin-fee base.
	CategoryAdminFee Category = "admin_fee"
	// CategoryBase marks transactions eligible for base-year comparison.
	CategoryBase Category = "base"
	// CategoryCap marks transactions subject to cap enforcement.
	CategoryCap Category = "cap"
	// CategoryOther holds transactions matching no recovery rule.
	CategoryOther Category = "other"
)

// RecoveryCategories are the categories a reconciliation run can bill.
var RecoveryCategories = []Category{CategoryCAM, CategoryRET}

// ValidCategory reports whether c names a billable recovery category.
func ValidCategory(c Category) bool {
	for _, rc := range RecoveryCategories {
		if c == rc {
			return true
		}
	}
	return false
}
