package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rocketscienceinc/duelrooms-backend/internal/usecase"
)

const banner = "Dots and Boxes Socket Server."

type dumper interface {
	Dump() usecase.DebugView
}

type Options struct {
	AllowedOrigin string
	DebugEndpoint bool
}

// NewRouter - builds the HTTP surface: banner, health check, metrics, debug dump and the websocket endpoint.
func NewRouter(logger *slog.Logger, opts Options, rooms dumper, metrics, socket http.Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), cors(opts.AllowedOrigin))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, banner)
	})

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	router.GET("/metrics", gin.WrapH(metrics))
	router.GET("/ws", gin.WrapH(socket))

	if opts.DebugEndpoint {
		router.GET("/rooms", func(c *gin.Context) {
			c.JSON(http.StatusOK, rooms.Dump())
		})
	}

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	log := logger.With("component", "http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug("request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// cors - an empty origin allows any caller.
func cors(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (allowedOrigin == "" || origin == allowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
