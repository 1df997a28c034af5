package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mxcd/apod-web/internal/util"
	"github.com/mxcd/apod-web/internal/web"
	"github.com/rs/zerolog/log"
)

// indexHandler renders the single page of the app.
// GET /
func (s *Server) indexHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		err := web.RenderPage(c.Writer, "index.html", map[string]interface{}{
			"Version": util.VersionString(),
		})
		if err != nil {
			log.Error().Err(err).Msg("page: failed to render index")
		}
	}
}
