package server

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

// qrHandler renders a QR code pointing at a saved file, so it can be opened
// on a phone.
// GET /api/qr/:filename
//
// Returns:
//   - 200 with a PNG image
//   - 400 / 404 under the same rules as GET /downloads/:filename
func (s *Server) qrHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := c.Param("filename")
		if _, ok := s.lookupFile(c, filename); !ok {
			return
		}

		target := s.Options.BaseURL + downloadsBasePath + "/" + url.PathEscape(filename)
		png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
		if err != nil {
			log.Error().Err(err).Str("filename", filename).Msg("qr: failed to encode")
			jsonError(c, http.StatusInternalServerError, "failed to generate QR code")
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}
