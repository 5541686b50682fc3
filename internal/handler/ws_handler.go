package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AmauryCarrade/wine-contest-quizz/internal/config"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/middleware"
	"github.com/AmauryCarrade/wine-contest-quizz/internal/service"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams quiz progress events over WebSocket.
type WSHandler struct {
	rdb         *redis.Client
	quizService *service.QuizService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, quizService *service.QuizService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:         rdb,
		quizService: quizService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// QuizzStream godoc
// WS /ws/v1/quizzes/:slug/stream
// Pushes a progress event after each graded answer of the quiz. Access
// follows the same visibility rule as the HTTP endpoints; browsers cannot
// send an Authorization header on upgrade, so the token rides in ?token=.
func (h *WSHandler) QuizzStream(c *gin.Context) {
	slug := c.Param("slug")

	// Visibility check before upgrading; denials look like missing quizzes.
	if _, err := h.quizService.Get(c.Request.Context(), slug, middleware.GetViewer(c)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "quizz not found"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("slug", slug).Logger()
	wsLog.Info().Msg("Progress stream connected")

	ctx := c.Request.Context()
	sub := h.rdb.Subscribe(ctx, config.CacheKey.QuizzProgressChannel(slug))
	defer sub.Close()

	// Drain client frames so close frames are processed; the stream itself
	// is one-way.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				sub.Close()
				return
			}
		}
	}()

	for msg := range sub.Channel() {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}
	}
}
