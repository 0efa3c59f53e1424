package domain

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type Pokemon struct {
	ID         string            `json:"id" gorm:"type:char(26);primaryKey"`
	No         int               `json:"no" gorm:"column:no;not null;uniqueIndex:ux_pokemons_no"`
	Name       string            `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:ux_pokemons_name"`
	Attributes datatypes.JSONMap `json:"attributes,omitempty" gorm:"column:attributes"`
	CreatedAt  time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt  time.Time         `json:"updated_at" gorm:"not null"`
}

func (Pokemon) TableName() string { return "pokemons" }

// NormalizeName returns the stored form of a pokemon name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
