package entities

import (
	"strings"

	"reservation-system/pkg/types"
)

type Company struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`

	types.BaseEntity
}

func (c *Company) NormalizedName() string {
	return NormalizeKey(c.Name)
}

// NormalizeKey folds a natural key (gage id, company name) for
// case-insensitive matching.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
