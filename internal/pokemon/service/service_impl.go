package service

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/pokedex/internal/clock"
	"github.com/smallbiznis/pokedex/internal/config"
	"github.com/smallbiznis/pokedex/internal/observability/logger"
	"github.com/smallbiznis/pokedex/internal/observability/metrics"
	"github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"github.com/smallbiznis/pokedex/pkg/db"
	"github.com/smallbiznis/pokedex/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Config  config.Config
	Repo    domain.Repository
	Clock   clock.Clock      `optional:"true"`
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         domain.Repository
	resolver     *Resolver
	clock        clock.Clock
	defaultLimit int
}

func New(p Params, resolver *Resolver) domain.Service {
	clk := p.Clock
	if clk == nil {
		clk = clock.New()
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("pokemon.service"),
		repo:         p.Repo,
		resolver:     resolver,
		clock:        clk,
		defaultLimit: p.Config.DefaultLimit,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	name := domain.NormalizeName(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	if req.No < 1 {
		return nil, domain.ErrInvalidNo
	}

	now := s.clock.Now()
	p := &domain.Pokemon{
		ID:        domain.NewID(),
		No:        req.No,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Attributes != nil {
		p.Attributes = datatypes.JSONMap(req.Attributes)
	}

	if err := s.repo.Insert(ctx, s.db, p); err != nil {
		return nil, s.handleWriteError(ctx, "create", err, p.No, p.Name)
	}

	resp := toResponse(p, true)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	limit, offset, err := pagination.Pagination{Limit: req.Limit, Offset: req.Offset}.Window(s.defaultLimit)
	if err != nil {
		return nil, domain.ErrInvalidPagination
	}

	items, err := s.repo.Find(ctx, s.db, domain.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		logger.WithContext(ctx, s.log).Error("list pokemons failed", zap.Error(err))
		return nil, domain.Internal(err)
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, toResponse(&items[i], false))
	}
	return resp, nil
}

func (s *Service) FindOne(ctx context.Context, term string) (*domain.Response, error) {
	item, err := s.resolver.Resolve(ctx, term)
	if err != nil {
		return nil, err
	}
	resp := toResponse(item, true)
	return &resp, nil
}

// Update applies req to the pokemon term resolves to. The result is the
// record as read before the write with the patch laid over it; the store is
// not read again, so fields changed by concurrent writers are not reflected.
func (s *Service) Update(ctx context.Context, term string, req domain.UpdateRequest) (*domain.Response, error) {
	item, err := s.resolver.Resolve(ctx, term)
	if err != nil {
		return nil, err
	}

	patch := domain.Patch{No: req.No, Attributes: req.Attributes}
	if req.Name != nil {
		name := domain.NormalizeName(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		patch.Name = &name
	}
	if patch.No != nil && *patch.No < 1 {
		return nil, domain.ErrInvalidNo
	}

	if !patch.IsEmpty() {
		if err := s.repo.UpdateOne(ctx, s.db, domain.Filter{ID: &item.ID}, patch); err != nil {
			no, name := item.No, item.Name
			if patch.No != nil {
				no = *patch.No
			}
			if patch.Name != nil {
				name = *patch.Name
			}
			return nil, s.handleWriteError(ctx, "update", err, no, name)
		}
	}

	merged := *item
	if patch.No != nil {
		merged.No = *patch.No
	}
	if patch.Name != nil {
		merged.Name = *patch.Name
	}
	if patch.Attributes != nil {
		merged.Attributes = datatypes.JSONMap(patch.Attributes)
	}

	resp := toResponse(&merged, true)
	return &resp, nil
}

// Remove deletes by identifier only; names and ordinals are not resolved.
func (s *Service) Remove(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if !domain.IsValidID(id) {
		return domain.MissingID(id)
	}

	deleted, err := s.repo.DeleteOne(ctx, s.db, domain.Filter{ID: &id})
	if err != nil {
		logger.WithContext(ctx, s.log).Error("remove pokemon failed", zap.String("id", id), zap.Error(err))
		return domain.Internal(err)
	}
	if deleted == 0 {
		return domain.MissingID(id)
	}
	return nil
}

func (s *Service) handleWriteError(ctx context.Context, op string, err error, no int, name string) error {
	if db.IsDuplicateKeyErr(err) {
		return domain.Conflict(conflictKeys(db.DuplicateKeyName(err), no, name))
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.WithContext(ctx, s.log).Warn("pokemon write interrupted", zap.String("op", op), zap.Error(err))
		return domain.Internal(err)
	}
	logger.WithContext(ctx, s.log).Error("pokemon write failed",
		zap.String("op", op),
		zap.Int("no", no),
		zap.String("name", name),
		zap.Error(err),
	)
	return domain.Internal(err)
}

// conflictKeys maps the key reported by the driver back to the colliding
// field. When the driver does not say which key collided both are returned.
func conflictKeys(key string, no int, name string) map[string]any {
	key = strings.ToLower(key)
	switch {
	case key == "no" || strings.HasSuffix(key, "_no"):
		return map[string]any{"no": no}
	case key == "name" || strings.HasSuffix(key, "_name"):
		return map[string]any{"name": name}
	default:
		return map[string]any{"no": no, "name": name}
	}
}

func toResponse(p *domain.Pokemon, withTimestamps bool) domain.Response {
	resp := domain.Response{
		ID:   p.ID,
		No:   p.No,
		Name: p.Name,
	}
	if len(p.Attributes) > 0 {
		resp.Attributes = map[string]any(p.Attributes)
	}
	if withTimestamps {
		createdAt, updatedAt := p.CreatedAt, p.UpdatedAt
		resp.CreatedAt = &createdAt
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
