package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"github.com/smallbiznis/pokedex/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Pokemon{}))

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}

func seedPokemons(t *testing.T, conn *gorm.DB, repo domain.Repository, names ...string) []domain.Pokemon {
	t.Helper()
	items := make([]domain.Pokemon, 0, len(names))
	for i, name := range names {
		items = append(items, domain.Pokemon{ID: domain.NewID(), No: i + 1, Name: name})
	}
	require.NoError(t, repo.InsertMany(context.Background(), conn, items))
	return items
}

func TestFindOneByEachField(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	repo := Provide()
	items := seedPokemons(t, conn, repo, "bulbasaur", "ivysaur")

	no := 2
	byNo, err := repo.FindOne(ctx, conn, domain.Filter{No: &no})
	require.NoError(t, err)
	require.NotNil(t, byNo)
	assert.Equal(t, "ivysaur", byNo.Name)

	name := "bulbasaur"
	byName, err := repo.FindOne(ctx, conn, domain.Filter{Name: &name})
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, 1, byName.No)

	byID, err := repo.FindByID(ctx, conn, items[1].ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, 2, byID.No)

	missing := 99
	none, err := repo.FindOne(ctx, conn, domain.Filter{No: &missing})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFindOneRequiresFilter(t *testing.T) {
	conn := setupTestDB(t)
	_, err := Provide().FindOne(context.Background(), conn, domain.Filter{})
	assert.ErrorIs(t, err, gorm.ErrMissingWhereClause)
}

func TestFindOrdersByNoWithWindow(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	repo := Provide()

	// inserted out of order on purpose
	for _, no := range []int{4, 2, 5, 1, 3} {
		require.NoError(t, repo.Insert(ctx, conn, &domain.Pokemon{ID: domain.NewID(), No: no, Name: fmt.Sprintf("p%d", no)}))
	}

	page, err := repo.Find(ctx, conn, domain.ListOptions{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 2, page[0].No)
	assert.Equal(t, 3, page[1].No)
	assert.True(t, page[0].CreatedAt.IsZero(), "timestamps are not projected")

	all, err := repo.Find(ctx, conn, domain.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	tail, err := repo.Find(ctx, conn, domain.ListOptions{Offset: 3})
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, 4, tail[0].No)
}

func TestInsertDuplicateIsReportedByDriver(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	repo := Provide()
	seedPokemons(t, conn, repo, "pikachu")

	err := repo.Insert(ctx, conn, &domain.Pokemon{ID: domain.NewID(), No: 7, Name: "pikachu"})
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKeyErr(err))
	assert.Equal(t, "name", db.DuplicateKeyName(err))

	err = repo.Insert(ctx, conn, &domain.Pokemon{ID: domain.NewID(), No: 1, Name: "raichu"})
	require.Error(t, err)
	assert.Equal(t, "no", db.DuplicateKeyName(err))
}

func TestUpdateOne(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	repo := Provide()
	items := seedPokemons(t, conn, repo, "charmander")

	name := "charmeleon"
	no := 5
	err := repo.UpdateOne(ctx, conn, domain.Filter{ID: &items[0].ID}, domain.Patch{
		Name:       &name,
		No:         &no,
		Attributes: map[string]any{"type": "fire"},
	})
	require.NoError(t, err)

	got, err := repo.FindByID(ctx, conn, items[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "charmeleon", got.Name)
	assert.Equal(t, 5, got.No)
	assert.Equal(t, "fire", got.Attributes["type"])
}

func TestDeleteOneAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	repo := Provide()
	items := seedPokemons(t, conn, repo, "squirtle", "wartortle", "blastoise")

	deleted, err := repo.DeleteOne(ctx, conn, domain.Filter{ID: &items[0].ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	deleted, err = repo.DeleteOne(ctx, conn, domain.Filter{ID: &items[0].ID})
	require.NoError(t, err)
	assert.EqualValues(t, 0, deleted)

	require.NoError(t, repo.DeleteAll(ctx, conn))
	all, err := repo.Find(ctx, conn, domain.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInsertManyRejectsDuplicatesWithinBatch(t *testing.T) {
	ctx := context.Background()
	conn := setupTestDB(t)
	repo := Provide()

	err := repo.InsertMany(ctx, conn, []domain.Pokemon{
		{ID: domain.NewID(), No: 1, Name: "mew"},
		{ID: domain.NewID(), No: 1, Name: "mewtwo"},
	})
	require.Error(t, err)
	assert.True(t, db.IsDuplicateKeyErr(err))
}
