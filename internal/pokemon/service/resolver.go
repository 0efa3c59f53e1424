package service

import (
	"context"

	"github.com/smallbiznis/pokedex/internal/observability/logger"
	"github.com/smallbiznis/pokedex/internal/observability/metrics"
	"github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Resolver finds the single pokemon a term refers to. It tries the lookups
// produced by domain.Classify in order and stops at the first match.
type Resolver struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	metrics *metrics.Metrics
}

func NewResolver(p Params) *Resolver {
	return &Resolver{
		db:      p.DB,
		log:     p.Log.Named("pokemon.resolver"),
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

func (r *Resolver) Resolve(ctx context.Context, term string) (*domain.Pokemon, error) {
	for _, lookup := range domain.Classify(term) {
		item, err := r.lookup(ctx, lookup)
		if err != nil {
			logger.WithContext(ctx, r.log).Error("pokemon lookup failed",
				zap.String("term", term),
				zap.Stringer("strategy", lookup.Kind),
				zap.Error(err),
			)
			return nil, domain.Internal(err)
		}
		r.metrics.RecordResolverLookup(lookup.Kind.String(), item != nil)
		if item != nil {
			return item, nil
		}
	}
	return nil, domain.NotFound(term)
}

func (r *Resolver) lookup(ctx context.Context, lookup domain.Lookup) (*domain.Pokemon, error) {
	switch lookup.Kind {
	case domain.ByOrdinal:
		return r.repo.FindOne(ctx, r.db, domain.Filter{No: &lookup.No})
	case domain.ByID:
		return r.repo.FindByID(ctx, r.db, lookup.ID)
	default:
		return r.repo.FindOne(ctx, r.db, domain.Filter{Name: &lookup.Name})
	}
}
