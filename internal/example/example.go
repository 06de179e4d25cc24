// Package example holds the demonstration entity served by the bundled
// application, together with the readme shown on its home section.
package example

import (
	_ "embed"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

//go:embed README.md
var readme []byte

// Readme returns the Markdown source of the home section.
func Readme() []byte { return readme }

// Section names of the bundled shell.
const (
	HomeSection = "Home"
	CRUDSection = "ExampleModel CRUD"
)

// ExampleModel is a simple entity with a name, a value and a description.
type ExampleModel struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name" crud:"required;help=Display name of the entry"`
	Value       int    `gorm:"not null;default:0" json:"value" crud:"help=Any whole number"`
	Description string `gorm:"not null;default:''" json:"description" crud:"help=Optional free text"`
}

// TableName maps the entity onto the migrated table.
func (ExampleModel) TableName() string { return "example_models" }

// Validate runs after field coercion on create and update.
func (m ExampleModel) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&m.Description, validation.Length(0, 500)),
	)
}
