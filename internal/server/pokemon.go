package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pokemondomain "github.com/smallbiznis/pokedex/internal/pokemon/domain"
)

type createPokemonRequest struct {
	No         int            `json:"no"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
}

type updatePokemonRequest struct {
	No         *int           `json:"no"`
	Name       *string        `json:"name"`
	Attributes map[string]any `json:"attributes"`
}

func (s *Server) CreatePokemon(c *gin.Context) {
	var req createPokemonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pokemonSvc.Create(c.Request.Context(), pokemondomain.CreateRequest{
		No:         req.No,
		Name:       req.Name,
		Attributes: req.Attributes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListPokemons(c *gin.Context) {
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}
	offset, err := parseOptionalInt(c.Query("offset"))
	if err != nil {
		AbortWithError(c, newValidationError("offset", "invalid_offset", "invalid offset"))
		return
	}

	resp, err := s.pokemonSvc.List(c.Request.Context(), pokemondomain.ListRequest{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPokemon(c *gin.Context) {
	resp, err := s.pokemonSvc.FindOne(c.Request.Context(), c.Param("term"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdatePokemon(c *gin.Context) {
	var req updatePokemonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pokemonSvc.Update(c.Request.Context(), c.Param("term"), pokemondomain.UpdateRequest{
		No:         req.No,
		Name:       req.Name,
		Attributes: req.Attributes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeletePokemon(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.pokemonSvc.Remove(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
