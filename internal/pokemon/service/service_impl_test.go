package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/pokedex/internal/clock"
	"github.com/smallbiznis/pokedex/internal/config"
	"github.com/smallbiznis/pokedex/internal/observability/metrics"
	"github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"github.com/smallbiznis/pokedex/internal/pokemon/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// spyRepo records which lookups reach the store.
type spyRepo struct {
	domain.Repository

	mu      sync.Mutex
	lookups []string
	failOn  string
	deletes int
}

func (s *spyRepo) record(kind string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups = append(s.lookups, kind)
	if s.failOn == kind {
		return errors.New("store unavailable")
	}
	return nil
}

func (s *spyRepo) FindOne(ctx context.Context, db *gorm.DB, filter domain.Filter) (*domain.Pokemon, error) {
	kind := "name"
	if filter.No != nil {
		kind = "ordinal"
	}
	if err := s.record(kind); err != nil {
		return nil, err
	}
	return s.Repository.FindOne(ctx, db, filter)
}

func (s *spyRepo) FindByID(ctx context.Context, db *gorm.DB, id string) (*domain.Pokemon, error) {
	if err := s.record("id"); err != nil {
		return nil, err
	}
	return s.Repository.FindByID(ctx, db, id)
}

func (s *spyRepo) DeleteOne(ctx context.Context, db *gorm.DB, filter domain.Filter) (int64, error) {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()
	return s.Repository.DeleteOne(ctx, db, filter)
}

func (s *spyRepo) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lookups = nil
}

func (s *spyRepo) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lookups...)
}

func setupService(t *testing.T, defaultLimit int) (domain.Service, *spyRepo, *gorm.DB) {
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

	m, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)

	spy := &spyRepo{Repository: repository.Provide()}
	params := Params{
		DB:      conn,
		Log:     zap.NewNop(),
		Config:  config.Config{DefaultLimit: defaultLimit},
		Repo:    spy,
		Metrics: m,
	}
	return New(params, NewResolver(params)), spy, conn
}

func mustCreate(t *testing.T, svc domain.Service, no int, name string) *domain.Response {
	t.Helper()
	resp, err := svc.Create(context.Background(), domain.CreateRequest{No: no, Name: name})
	require.NoError(t, err)
	return resp
}

func TestCreateNormalizesName(t *testing.T) {
	svc, _, _ := setupService(t, 0)

	resp := mustCreate(t, svc, 25, "  PikaChu ")
	assert.Equal(t, "pikachu", resp.Name)
	assert.Equal(t, 25, resp.No)
	assert.True(t, domain.IsValidID(resp.ID))
	assert.NotNil(t, resp.CreatedAt)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _, _ := setupService(t, 0)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{No: 1, Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	_, err = svc.Create(ctx, domain.CreateRequest{No: 0, Name: "missingno"})
	assert.ErrorIs(t, err, domain.ErrInvalidNo)
}

func TestCreateThenFindOneByEveryShape(t *testing.T) {
	svc, _, _ := setupService(t, 0)
	ctx := context.Background()
	created := mustCreate(t, svc, 133, "Eevee")

	for _, term := range []string{"133", created.ID, "eevee", "  EEVEE\t"} {
		t.Run(term, func(t *testing.T) {
			got, err := svc.FindOne(ctx, term)
			require.NoError(t, err)
			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, 133, got.No)
			assert.Equal(t, "eevee", got.Name)
		})
	}
}

func TestCreateConflicts(t *testing.T) {
	svc, _, _ := setupService(t, 0)
	ctx := context.Background()
	mustCreate(t, svc, 1, "bulbasaur")

	_, err := svc.Create(ctx, domain.CreateRequest{No: 1, Name: "ivysaur"})
	require.ErrorIs(t, err, domain.ErrConflict)
	var domErr *domain.Error
	require.True(t, errors.As(err, &domErr))
	assert.Equal(t, map[string]any{"no": 1}, domErr.KeyValue)

	_, err = svc.Create(ctx, domain.CreateRequest{No: 2, Name: "BULBASAUR"})
	require.ErrorIs(t, err, domain.ErrConflict)
	require.True(t, errors.As(err, &domErr))
	assert.Equal(t, map[string]any{"name": "bulbasaur"}, domErr.KeyValue)
}

func TestFindOneNumericTermQueriesOrdinalFirst(t *testing.T) {
	svc, spy, _ := setupService(t, 0)
	ctx := context.Background()
	mustCreate(t, svc, 1, "bulbasaur")
	mustCreate(t, svc, 2, "1")

	spy.reset()
	got, err := svc.FindOne(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "bulbasaur", got.Name)
	assert.Equal(t, []string{"ordinal"}, spy.calls())

	spy.reset()
	_, err = svc.FindOne(ctx, "3")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{"ordinal", "name"}, spy.calls())
}

func TestFindOneNonNumericNonIDQueriesNameOnly(t *testing.T) {
	svc, spy, _ := setupService(t, 0)
	mustCreate(t, svc, 4, "charmander")

	spy.reset()
	got, err := svc.FindOne(context.Background(), " CharMander ")
	require.NoError(t, err)
	assert.Equal(t, 4, got.No)
	assert.Equal(t, []string{"name"}, spy.calls())
}

func TestFindOneIDShapedTermFallsBackToName(t *testing.T) {
	svc, spy, _ := setupService(t, 0)

	spy.reset()
	_, err := svc.FindOne(context.Background(), "01ARZ3NDEKTSV4RRFFQ69G5FAV")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{"id", "name"}, spy.calls())
}

func TestFindOneNotFoundCarriesTerm(t *testing.T) {
	svc, _, _ := setupService(t, 0)

	_, err := svc.FindOne(context.Background(), "MissingNo")
	var domErr *domain.Error
	require.True(t, errors.As(err, &domErr))
	assert.Equal(t, domain.ErrNotFound, domErr.Kind)
	assert.Equal(t, "MissingNo", domErr.Term)
}

func TestFindOneStoreFailureIsInternal(t *testing.T) {
	svc, spy, _ := setupService(t, 0)
	spy.failOn = "ordinal"

	_, err := svc.FindOne(context.Background(), "25")
	assert.ErrorIs(t, err, domain.ErrInternal)
	assert.Equal(t, []string{"ordinal"}, spy.calls())
}

func TestListPaginatesByOrdinal(t *testing.T) {
	svc, _, _ := setupService(t, 0)
	ctx := context.Background()
	for _, no := range []int{3, 5, 1, 4, 2} {
		mustCreate(t, svc, no, fmt.Sprintf("pokemon-%d", no))
	}

	limit, offset := 2, 1
	page, err := svc.List(ctx, domain.ListRequest{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 2, page[0].No)
	assert.Equal(t, 3, page[1].No)
	assert.Nil(t, page[0].CreatedAt)
	assert.Nil(t, page[0].UpdatedAt)
}

func TestListUsesConfiguredDefaultLimit(t *testing.T) {
	svc, _, _ := setupService(t, 3)
	ctx := context.Background()
	for no := 1; no <= 5; no++ {
		mustCreate(t, svc, no, fmt.Sprintf("pokemon-%d", no))
	}

	page, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	assert.Len(t, page, 3)

	unlimited := 0
	page, err = svc.List(ctx, domain.ListRequest{Limit: &unlimited})
	require.NoError(t, err)
	assert.Len(t, page, 5)
}

func TestListRejectsNegativeWindow(t *testing.T) {
	svc, _, _ := setupService(t, 0)
	offset := -1

	_, err := svc.List(context.Background(), domain.ListRequest{Offset: &offset})
	assert.ErrorIs(t, err, domain.ErrInvalidPagination)
}

func TestUpdateReturnsPreUpdateRecordOverlaidWithPatch(t *testing.T) {
	svc, _, _ := setupService(t, 0)
	ctx := context.Background()
	mustCreate(t, svc, 7, "squirtle")
	before, err := svc.FindOne(ctx, "squirtle")
	require.NoError(t, err)

	name := "WARTORTLE"
	resp, err := svc.Update(ctx, "squirtle", domain.UpdateRequest{
		Name:       &name,
		Attributes: map[string]any{"type": "water"},
	})
	require.NoError(t, err)
	assert.Equal(t, before.ID, resp.ID)
	assert.Equal(t, 7, resp.No)
	assert.Equal(t, "wartortle", resp.Name)
	assert.Equal(t, "water", resp.Attributes["type"])
	// not re-read: updated_at is the value seen before the write
	require.NotNil(t, resp.UpdatedAt)
	assert.True(t, before.UpdatedAt.Equal(*resp.UpdatedAt))

	_, err = svc.FindOne(ctx, "squirtle")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	stored, err := svc.FindOne(ctx, "wartortle")
	require.NoError(t, err)
	assert.Equal(t, before.ID, stored.ID)
	assert.Equal(t, "water", stored.Attributes["type"])
}

func TestUpdateUnknownTermIsNotFound(t *testing.T) {
	svc, _, _ := setupService(t, 0)
	name := "x"

	_, err := svc.Update(context.Background(), "nobody", domain.UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateConflict(t *testing.T) {
	svc, _, _ := setupService(t, 0)
	ctx := context.Background()
	mustCreate(t, svc, 1, "bulbasaur")
	mustCreate(t, svc, 2, "ivysaur")

	no := 1
	_, err := svc.Update(ctx, "ivysaur", domain.UpdateRequest{No: &no})
	require.ErrorIs(t, err, domain.ErrConflict)
	var domErr *domain.Error
	require.True(t, errors.As(err, &domErr))
	assert.Equal(t, map[string]any{"no": 1}, domErr.KeyValue)
}

func TestUpdateEmptyPatchIsNoop(t *testing.T) {
	svc, _, _ := setupService(t, 0)
	created := mustCreate(t, svc, 10, "caterpie")

	resp, err := svc.Update(context.Background(), "10", domain.UpdateRequest{})
	require.NoError(t, err)
	assert.Equal(t, created.Name, resp.Name)
}

func TestRemove(t *testing.T) {
	svc, spy, _ := setupService(t, 0)
	ctx := context.Background()
	created := mustCreate(t, svc, 16, "pidgey")

	require.NoError(t, svc.Remove(ctx, created.ID))

	_, err := svc.FindOne(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Remove(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	assert.Equal(t, 2, spy.deletes)
}

func TestRemoveDoesNotResolveNamesOrOrdinals(t *testing.T) {
	svc, spy, _ := setupService(t, 0)
	ctx := context.Background()
	mustCreate(t, svc, 19, "rattata")

	assert.ErrorIs(t, svc.Remove(ctx, "rattata"), domain.ErrBadRequest)
	assert.ErrorIs(t, svc.Remove(ctx, "19"), domain.ErrBadRequest)
	assert.Zero(t, spy.deletes)

	got, err := svc.FindOne(ctx, "rattata")
	require.NoError(t, err)
	assert.Equal(t, 19, got.No)
}

func TestCreateStampsWithClock(t *testing.T) {
	_, spy, conn := setupService(t, 0)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	params := Params{
		DB:     conn,
		Log:    zap.NewNop(),
		Config: config.Config{},
		Repo:   spy,
		Clock:  clock.NewFakeClock(fixed),
	}
	svc := New(params, NewResolver(params))

	resp, err := svc.Create(context.Background(), domain.CreateRequest{No: 151, Name: "mew"})
	require.NoError(t, err)
	require.NotNil(t, resp.CreatedAt)
	assert.True(t, fixed.Equal(*resp.CreatedAt))
	assert.True(t, fixed.Equal(*resp.UpdatedAt))
}
