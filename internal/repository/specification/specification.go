package specification

import "gorm.io/gorm"

// Specification narrows or orders a query. Specs compose by applying in sequence.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
