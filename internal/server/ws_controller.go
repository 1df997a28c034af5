package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // Allow all origins
}

// eventsHandler upgrades to a websocket that receives a message for every
// saved download.
// GET /api/events
func (s *Server) eventsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrader already wrote an error response.
			log.Debug().Err(err).Msg("ws: upgrade failed")
			return
		}

		s.Hub.Subscribe(conn)
		log.Info().Str("remote", c.ClientIP()).Msg("ws: client connected")

		defer func() {
			s.Hub.Unsubscribe(conn)
			conn.Close()
			log.Info().Str("remote", c.ClientIP()).Msg("ws: client disconnected")
		}()

		// Incoming messages are ignored; block until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
