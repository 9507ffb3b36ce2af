package storage

import (
	"fmt"
	"strings"
)

// DefaultIDColumn is the primary key column used when a model does not name
// one.
const DefaultIDColumn = "id"

// Model maps a business object model onto a table.
type Model struct {
	// Table defaults to the model name with dots replaced by underscores
	// ("party.party" reads table "party_party").
	Table string `yaml:"table" json:"table"`

	// IDColumn defaults to DefaultIDColumn.
	IDColumn string `yaml:"id_column" json:"id_column"`

	// Relations are one-to-many collections exposed as record attributes,
	// keyed by attribute name.
	Relations map[string]Relation `yaml:"relations" json:"relations,omitempty"`
}

// Relation loads the records of another model whose ForeignKey column holds
// the parent id.
type Relation struct {
	Model      string `yaml:"model" json:"model"`
	ForeignKey string `yaml:"foreign_key" json:"foreign_key"`
}

// TableName returns the table for a model, applying the default mapping.
func (m Model) TableName(name string) string {
	if m.Table != "" {
		return m.Table
	}
	return strings.ReplaceAll(name, ".", "_")
}

// IDColumnName returns the primary key column.
func (m Model) IDColumnName() string {
	if m.IDColumn != "" {
		return m.IDColumn
	}
	return DefaultIDColumn
}

// ValidateModels checks that every relation targets a known model and names
// a foreign key.
func ValidateModels(models map[string]Model) error {
	for name, m := range models {
		for attr, rel := range m.Relations {
			if _, ok := models[rel.Model]; !ok {
				return fmt.Errorf("model %q relation %q: unknown model %q", name, attr, rel.Model)
			}
			if rel.ForeignKey == "" {
				return fmt.Errorf("model %q relation %q: foreign_key is required", name, attr)
			}
		}
	}
	return nil
}
