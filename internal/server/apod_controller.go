package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON = "application/json; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
)

// apodHandler proxies a metadata lookup to the APOD API.
// GET /api/apod?date=YYYY-MM-DD
//
// Returns:
//   - the upstream status and JSON body when the body is valid JSON
//   - the upstream status and raw body as text/plain otherwise
//   - 502 when the upstream could not be reached
func (s *Server) apodHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Query("date")

		resp, err := s.APOD.Picture(context.WithoutCancel(c.Request.Context()), date)
		if err != nil {
			log.Error().Err(err).Str("date", date).Msg("apod: upstream request failed")
			c.JSON(http.StatusBadGateway, gin.H{
				"error":  "APOD request failed",
				"detail": err.Error(),
			})
			return
		}

		if json.Valid(resp.Body) {
			c.Data(resp.StatusCode, contentTypeJSON, resp.Body)
			return
		}

		log.Warn().Int("status", resp.StatusCode).Str("content_type", resp.ContentType).Msg("apod: upstream returned non-JSON body")
		c.Data(resp.StatusCode, contentTypeText, resp.Body)
	}
}
