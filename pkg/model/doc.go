// Package model derives entity schemas from Go structs. A Schema lists the
// persisted fields of an entity with their kind, label, default and help
// text, resolved once from struct tags:
//
//	type Item struct {
//		ID    uint   `gorm:"primaryKey" json:"id"`
//		Name  string `json:"name" crud:"required;help=Display name"`
//		Count int    `json:"count" crud:"default=1"`
//	}
//
// The `crud` tag accepts `label=`, `help=`, `default=`, `required` and `-`
// (skip). Field names come from the json tag when present, otherwise the Go
// name in snake_case. Primary keys are storage generated and never edited.
//
// Decode and Apply turn loose value maps (form submissions, CLI patches)
// into typed entities. Failures carry the go-errors validation category, see
// IsValidationFailure.
package model
