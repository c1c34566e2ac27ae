package services

import (
	"restaurant-insights/models"
)

// RequiredColumns must be present on the aliased raw table before cleaning.
var RequiredColumns = []string{models.ColTitle, models.ColCategory, models.ColReviewCount}

// ColumnProvider is satisfied by both raw and canonical tables.
type ColumnProvider interface {
	HasColumn(name string) bool
	ColumnNames() []string
}

// EnsureRequiredColumns returns a *models.SchemaError naming every column in
// required that t does not expose, or nil when all are present.
func EnsureRequiredColumns(t ColumnProvider, required ...string) error {
	var missing []string
	for _, col := range required {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &models.SchemaError{Missing: missing}
	}
	return nil
}
