package domain

import (
	"context"

	"gorm.io/gorm"
)

// Filter selects pokemons by field equality. Unset fields are ignored; at
// least one must be set.
type Filter struct {
	ID   *string
	No   *int
	Name *string
}

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	No         *int
	Name       *string
	Attributes map[string]any
}

func (p Patch) IsEmpty() bool {
	return p.No == nil && p.Name == nil && p.Attributes == nil
}

type ListOptions struct {
	// Limit of zero means no limit.
	Limit  int
	Offset int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, pokemon *Pokemon) error
	InsertMany(ctx context.Context, db *gorm.DB, pokemons []Pokemon) error
	FindOne(ctx context.Context, db *gorm.DB, filter Filter) (*Pokemon, error)
	FindByID(ctx context.Context, db *gorm.DB, id string) (*Pokemon, error)
	Find(ctx context.Context, db *gorm.DB, opts ListOptions) ([]Pokemon, error)
	UpdateOne(ctx context.Context, db *gorm.DB, filter Filter, patch Patch) error
	DeleteOne(ctx context.Context, db *gorm.DB, filter Filter) (int64, error)
	DeleteAll(ctx context.Context, db *gorm.DB) error
}
