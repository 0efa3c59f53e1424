package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExecuteSeed wipes the catalog and reloads it from PokeAPI. The body is a
// plain text status.
func (s *Server) ExecuteSeed(c *gin.Context) {
	msg, err := s.seeder.ExecuteSeed(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.String(http.StatusOK, msg)
}
