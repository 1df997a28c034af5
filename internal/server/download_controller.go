package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mxcd/apod-web/internal/download"
	"github.com/mxcd/apod-web/internal/model"
	"github.com/rs/zerolog/log"
)

// downloadHandler fetches a media URL and saves it to the storage directory.
// POST /api/download  {"url": "...", "title": "...", "date": "YYYY-MM-DD"}
//
// Returns:
//   - 200 with {saved, filename, path}
//   - 400 when url is missing
//   - 500 with {error, kind, retryable} when fetching or writing fails
func (s *Server) downloadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// an unreadable body counts as an empty one
		var req model.DownloadRequest
		_ = c.ShouldBindJSON(&req)

		if req.URL == "" {
			jsonError(c, http.StatusBadRequest, "url is required")
			return
		}

		saved, err := s.Downloader.Save(context.WithoutCancel(c.Request.Context()), req)
		if err != nil {
			var dlErr *download.Error
			if !errors.As(err, &dlErr) {
				log.Error().Err(err).Str("url", req.URL).Msg("download: failed")
				jsonError(c, http.StatusInternalServerError, err.Error())
				return
			}
			log.Error().Err(err).Str("url", req.URL).Str("kind", string(dlErr.Kind)).Msg("download: failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     dlErr.Error(),
				"kind":      dlErr.Kind,
				"retryable": dlErr.Retryable(),
			})
			return
		}

		s.Hub.BroadcastSaved(saved.Filename, downloadsBasePath+"/"+saved.Filename)
		c.JSON(http.StatusOK, saved)
	}
}
