package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mxcd/apod-web/internal/util"
)

func (s *Server) getVersionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": util.Version,
			"commit":  util.Commit,
		})
	}
}
