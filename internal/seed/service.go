package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pokedex/internal/clock"
	"github.com/smallbiznis/pokedex/internal/config"
	"github.com/smallbiznis/pokedex/internal/observability/logger"
	"github.com/smallbiznis/pokedex/internal/observability/metrics"
	"github.com/smallbiznis/pokedex/internal/pokeapi"
	"github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ResultMessage = "Seed executed"

	lockKey        = "pokedex:seed"
	defaultLockTTL = 2 * time.Minute
)

// ErrSeedInProgress is returned when another seed run holds the lock.
var ErrSeedInProgress = &domain.Error{Kind: domain.ErrConflict, Code: "seed_in_progress"}

// Source provides the remote species listing.
type Source interface {
	FetchPage(ctx context.Context) (*pokeapi.PageResponse, error)
}

type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, key, token string) error
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Config  config.Config
	Repo    domain.Repository
	Source  Source
	Node    *snowflake.Node
	Clock   clock.Clock      `optional:"true"`
	Locker  Locker           `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	source  Source
	node    *snowflake.Node
	clock   clock.Clock
	locker  Locker
	lockTTL time.Duration
	metrics *metrics.Metrics
}

func New(p Params) *Service {
	ttl := p.Config.Seed.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("seed.service"),
		repo:    p.Repo,
		source:  p.Source,
		node:    p.Node,
		clock:   clk,
		locker:  p.Locker,
		lockTTL: ttl,
		metrics: p.Metrics,
	}
}

// ExecuteSeed replaces the whole catalog with the PokeAPI listing. The store
// is wiped before the download starts and nothing is restored on failure;
// readers can observe an empty or partial catalog while a run is in flight.
func (s *Service) ExecuteSeed(ctx context.Context) (string, error) {
	log := logger.WithContext(ctx, s.log)
	if s.node != nil {
		log = log.With(zap.String("seed_run_id", s.node.Generate().String()))
	}

	if s.locker != nil {
		token, ok, err := s.locker.TryLock(ctx, lockKey, s.lockTTL)
		if err != nil {
			log.Error("acquire seed lock failed", zap.Error(err))
			s.metrics.RecordSeedRun("failed", 0)
			return "", domain.Internal(err)
		}
		if !ok {
			log.Warn("seed already running")
			s.metrics.RecordSeedRun("rejected", 0)
			return "", ErrSeedInProgress
		}
		defer func() {
			// the request context may already be done
			if err := s.locker.Release(context.WithoutCancel(ctx), lockKey, token); err != nil {
				log.Warn("release seed lock failed", zap.Error(err))
			}
		}()
	}

	start := time.Now()
	inserted, err := s.run(ctx, log)
	if err != nil {
		s.metrics.RecordSeedRun("failed", 0)
		return "", domain.Internal(err)
	}

	s.metrics.RecordSeedRun("success", inserted)
	log.Info("seed executed", zap.Int("inserted", inserted), zap.Duration("duration", time.Since(start)))
	return ResultMessage, nil
}

func (s *Service) run(ctx context.Context, log *zap.Logger) (int, error) {
	if err := s.repo.DeleteAll(ctx, s.db); err != nil {
		log.Error("wipe catalog failed", zap.Error(err))
		return 0, fmt.Errorf("wipe catalog: %w", err)
	}

	page, err := s.source.FetchPage(ctx)
	if err != nil {
		log.Error("fetch pokeapi listing failed", zap.Error(err))
		return 0, fmt.Errorf("fetch listing: %w", err)
	}
	if page == nil {
		return 0, errors.New("fetch listing: empty response")
	}

	records, err := toRecords(page.Results, s.clock.Now())
	if err != nil {
		log.Error("transform pokeapi listing failed", zap.Error(err))
		return 0, err
	}

	if err := s.repo.InsertMany(ctx, s.db, records); err != nil {
		log.Error("insert seed records failed", zap.Int("records", len(records)), zap.Error(err))
		return 0, fmt.Errorf("insert records: %w", err)
	}
	return len(records), nil
}

func toRecords(results []pokeapi.Result, now time.Time) ([]domain.Pokemon, error) {
	records := make([]domain.Pokemon, 0, len(results))
	for _, r := range results {
		no, err := pokeapi.OrdinalFromURL(r.URL)
		if err != nil {
			return nil, err
		}
		records = append(records, domain.Pokemon{
			ID:        domain.NewID(),
			No:        no,
			Name:      strings.ToLower(r.Name),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return records, nil
}
