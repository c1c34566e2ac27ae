package services

import (
	"restaurant-insights/models"
)

// ValidateTypes re-checks the canonical invariants and repairs any row that
// diverges: negative review counts become 0 and categories are trimmed.
// It never fails. A conformant table is returned as is, so running it twice
// yields the same table.
func ValidateTypes(t *models.RestaurantTable) *models.RestaurantTable {
	var repaired []models.Restaurant
	for i := 0; i < t.Len(); i++ {
		r := t.Row(i)
		fixed := r
		if fixed.ReviewCount < 0 {
			fixed.ReviewCount = 0
		}
		fixed.Category = NormalizeCategory(fixed.Category)

		if fixed == r {
			continue
		}
		if repaired == nil {
			repaired = t.Rows()
		}
		repaired[i] = fixed
	}
	if repaired == nil {
		return t
	}
	return models.NewRestaurantTable(repaired, t.Optional())
}
