package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mxcd/apod-web/internal/store"
	"github.com/rs/zerolog/log"
)

// serveDownloadHandler serves a saved file as an attachment.
// GET /downloads/:filename
//
// Returns:
//   - 200 with the file bytes and Content-Disposition: attachment
//   - 400 when the name could escape the storage directory
//   - 404 when no such file exists
func (s *Server) serveDownloadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := c.Param("filename")

		path, ok := s.lookupFile(c, filename)
		if !ok {
			return
		}
		c.FileAttachment(path, filename)
	}
}

// lookupFile resolves filename in the store and answers the request itself
// when it cannot be served.
func (s *Server) lookupFile(c *gin.Context, filename string) (string, bool) {
	path, err := s.Store.Stat(filename)
	switch {
	case err == nil:
		return path, true
	case errors.Is(err, store.ErrInvalidName):
		log.Warn().Str("filename", filename).Msg("files: rejected filename")
		jsonError(c, http.StatusBadRequest, "invalid filename")
	case errors.Is(err, store.ErrNotFound):
		jsonError(c, http.StatusNotFound, "file not found")
	default:
		log.Error().Err(err).Str("filename", filename).Msg("files: failed to stat file")
		jsonError(c, http.StatusInternalServerError, "internal error")
	}
	return "", false
}
