package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/pokedex/internal/config"
	"github.com/smallbiznis/pokedex/internal/observability"
	obsmiddleware "github.com/smallbiznis/pokedex/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/pokedex/internal/observability/metrics"
	obstracing "github.com/smallbiznis/pokedex/internal/observability/tracing"
	pokemondomain "github.com/smallbiznis/pokedex/internal/pokemon/domain"
	"github.com/smallbiznis/pokedex/internal/seed"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v2"

var Module = fx.Module("http.server",
	fx.Provide(
		NewEngine,
		func(s *seed.Service) Seeder { return s },
		NewServer,
	),
	fx.Invoke(run),
)

// Seeder reloads the catalog from the remote source.
type Seeder interface {
	ExecuteSeed(ctx context.Context) (string, error)
}

type EngineParams struct {
	fx.In

	ObsCfg  observability.Config
	Metrics *obsmetrics.Metrics `optional:"true"`
}

func NewEngine(p EngineParams) *gin.Engine {
	if !p.ObsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(p.Metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine     *gin.Engine
	pokemonSvc pokemondomain.Service
	seeder     Seeder
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	PokemonSvc pokemondomain.Service
	Seeder     Seeder
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		pokemonSvc: p.PokemonSvc,
		seeder:     p.Seeder,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group(apiPrefix)

	// -------- Pokemon --------
	api.POST("/pokemon", s.CreatePokemon)
	api.GET("/pokemon", s.ListPokemons)
	api.GET("/pokemon/:term", s.GetPokemon)
	api.PATCH("/pokemon/:term", s.UpdatePokemon)
	api.DELETE("/pokemon/:id", s.DeletePokemon)

	// -------- Seed --------
	api.GET("/seed", s.ExecuteSeed)
}

func run(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	log = log.Named("http.server")
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
