package storage

import "restaurant-insights/models"

// RestaurantStore is the interface any database backend must satisfy.
// Rows are grouped by dataset, the fingerprint of the canonical table.
type RestaurantStore interface {
	Write(dataset string, t *models.RestaurantTable) error
	FetchAll(dataset string) (*models.RestaurantTable, error)
	Close() error
}
