package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/pokedex/internal/observability/metrics"
	"github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stubRepo answers lookups from fixed maps and fails every write.
type stubRepo struct {
	domain.Repository

	byNo   map[int]*domain.Pokemon
	byID   map[string]*domain.Pokemon
	byName map[string]*domain.Pokemon
	err    error
}

func (s *stubRepo) FindOne(_ context.Context, _ *gorm.DB, filter domain.Filter) (*domain.Pokemon, error) {
	if s.err != nil {
		return nil, s.err
	}
	switch {
	case filter.No != nil:
		return s.byNo[*filter.No], nil
	case filter.Name != nil:
		return s.byName[*filter.Name], nil
	}
	return nil, nil
}

func (s *stubRepo) FindByID(_ context.Context, _ *gorm.DB, id string) (*domain.Pokemon, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.byID[id], nil
}

func newTestResolver(t *testing.T, repo domain.Repository) (*Resolver, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)
	return NewResolver(Params{Log: zap.NewNop(), Repo: repo, Metrics: m}), reg
}

func TestResolverPrefersOrdinalOverName(t *testing.T) {
	byOrdinal := &domain.Pokemon{ID: domain.NewID(), No: 1, Name: "bulbasaur"}
	named := &domain.Pokemon{ID: domain.NewID(), No: 2, Name: "1"}
	r, _ := newTestResolver(t, &stubRepo{
		byNo:   map[int]*domain.Pokemon{1: byOrdinal},
		byName: map[string]*domain.Pokemon{"1": named},
	})

	got, err := r.Resolve(context.Background(), "1")
	require.NoError(t, err)
	assert.Same(t, byOrdinal, got)
}

func TestResolverFallsThroughToName(t *testing.T) {
	named := &domain.Pokemon{ID: domain.NewID(), No: 1, Name: "25"}
	r, _ := newTestResolver(t, &stubRepo{byName: map[string]*domain.Pokemon{"25": named}})

	got, err := r.Resolve(context.Background(), " 25 ")
	require.NoError(t, err)
	assert.Same(t, named, got)
}

func TestResolverMatchesID(t *testing.T) {
	item := &domain.Pokemon{ID: domain.NewID(), No: 150, Name: "mewtwo"}
	r, _ := newTestResolver(t, &stubRepo{byID: map[string]*domain.Pokemon{item.ID: item}})

	got, err := r.Resolve(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Same(t, item, got)
}

func TestResolverNotFound(t *testing.T) {
	r, _ := newTestResolver(t, &stubRepo{})

	_, err := r.Resolve(context.Background(), "1.5")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), `"1.5"`)
}

func TestResolverStoreErrorIsInternal(t *testing.T) {
	cause := errors.New("connection reset")
	r, _ := newTestResolver(t, &stubRepo{err: cause})

	_, err := r.Resolve(context.Background(), "pikachu")
	require.ErrorIs(t, err, domain.ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Error(), "connection reset")
}

func TestResolverRecordsLookups(t *testing.T) {
	named := &domain.Pokemon{ID: domain.NewID(), No: 4, Name: "charmander"}
	r, reg := newTestResolver(t, &stubRepo{byName: map[string]*domain.Pokemon{"charmander": named}})

	_, err := r.Resolve(context.Background(), "4")
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.Resolve(context.Background(), "Charmander")
	require.NoError(t, err)

	expected := `
# HELP pokedex_resolver_lookups_total Store lookups issued while resolving a pokemon term.
# TYPE pokedex_resolver_lookups_total counter
pokedex_resolver_lookups_total{outcome="hit",strategy="name"} 1
pokedex_resolver_lookups_total{outcome="miss",strategy="name"} 1
pokedex_resolver_lookups_total{outcome="miss",strategy="ordinal"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "pokedex_resolver_lookups_total"))
}
