package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fitsync/session-service/internal/handler"
	"github.com/fitsync/session-service/pkg/constants"
)

// New builds the HTTP router.
func New(
	sessions *handler.SessionHandler,
	parser *handler.ParserHandler,
	detector *handler.DetectorHandler,
	relayWS *handler.RelayWSHandler,
	health *handler.HealthHandler,
) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET(constants.PathHealth, health.Health)
	r.GET(constants.PathReady, health.Ready)

	// REST sessions
	sess := r.Group("/sessions")
	{
		sess.POST("", sessions.CreateSession)
		sess.POST("/:id/join", sessions.JoinSession)
		sess.GET("/:id", sessions.GetSession)
		sess.GET("/:id/cues", sessions.ListCues)
	}

	r.POST("/parser/description", parser.ParseDescription)
	r.POST("/zone-detector/detect", detector.DetectZone)

	// WebSocket relay: /ws/session/:session_id/:user_id
	r.GET("/ws/session/:session_id/:user_id", relayWS.ServeWS)

	return r
}
