package repository

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, pokemon *domain.Pokemon) error {
	if pokemon == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).Create(pokemon).Error
}

func (r *repo) InsertMany(ctx context.Context, db *gorm.DB, pokemons []domain.Pokemon) error {
	if len(pokemons) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&pokemons).Error
}

func (r *repo) FindOne(ctx context.Context, db *gorm.DB, filter domain.Filter) (*domain.Pokemon, error) {
	stmt, err := applyFilter(db.WithContext(ctx).Model(&domain.Pokemon{}), filter)
	if err != nil {
		return nil, err
	}

	var p domain.Pokemon
	err = stmt.Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Pokemon, error) {
	return r.FindOne(ctx, db, domain.Filter{ID: &id})
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, opts domain.ListOptions) ([]domain.Pokemon, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Pokemon{}).
		Select("id", "no", "name", "attributes").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "no"}})

	switch {
	case opts.Limit > 0:
		stmt = stmt.Limit(opts.Limit)
	case opts.Offset > 0:
		// Not every dialect accepts OFFSET without LIMIT.
		stmt = stmt.Limit(math.MaxInt32)
	}
	if opts.Offset > 0 {
		stmt = stmt.Offset(opts.Offset)
	}

	var items []domain.Pokemon
	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) UpdateOne(ctx context.Context, db *gorm.DB, filter domain.Filter, patch domain.Patch) error {
	if patch.IsEmpty() {
		return nil
	}
	stmt, err := applyFilter(db.WithContext(ctx).Model(&domain.Pokemon{}), filter)
	if err != nil {
		return err
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if patch.No != nil {
		updates["no"] = *patch.No
	}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Attributes != nil {
		updates["attributes"] = datatypes.JSONMap(patch.Attributes)
	}

	return stmt.Updates(updates).Error
}

func (r *repo) DeleteOne(ctx context.Context, db *gorm.DB, filter domain.Filter) (int64, error) {
	stmt, err := applyFilter(db.WithContext(ctx), filter)
	if err != nil {
		return 0, err
	}
	res := stmt.Delete(&domain.Pokemon{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repo) DeleteAll(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Exec(`DELETE FROM pokemons`).Error
}

func applyFilter(stmt *gorm.DB, filter domain.Filter) (*gorm.DB, error) {
	if filter.ID == nil && filter.No == nil && filter.Name == nil {
		return nil, gorm.ErrMissingWhereClause
	}
	// map conditions get their column names quoted; "no" is a keyword in
	// some dialects.
	cond := map[string]any{}
	if filter.ID != nil {
		cond["id"] = *filter.ID
	}
	if filter.No != nil {
		cond["no"] = *filter.No
	}
	if filter.Name != nil {
		cond["name"] = *filter.Name
	}
	return stmt.Where(cond), nil
}
