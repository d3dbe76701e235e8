// Package server exposes the modeler over HTTP for the browser front end.
package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DefaultAddr       = ":8080"
	DefaultSessionTTL = 2 * time.Hour
)

// Config holds the HTTP server settings.
type Config struct {
	Addr        string
	CORSOrigins []string
	SessionTTL  time.Duration
}

// ConfigFromEnv reads CHEATGEN_ADDR, CHEATGEN_CORS_ORIGINS and
// CHEATGEN_SESSION_TTL, loading .env first when one exists.
func ConfigFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	cfg := Config{Addr: DefaultAddr, SessionTTL: DefaultSessionTTL}
	if addr := os.Getenv("CHEATGEN_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	for _, origin := range strings.Split(os.Getenv("CHEATGEN_CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}
	if ttl := os.Getenv("CHEATGEN_SESSION_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return Config{}, err
		}
		cfg.SessionTTL = d
	}
	return cfg, nil
}

// NewRouter registers every route on a fresh engine.
func NewRouter(cfg Config, sessions *SessionManager, logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.CORSOrigins
	}
	router.Use(cors.New(corsConfig))

	h := NewHandler(sessions)
	api := router.Group("/api")
	api.POST("/sessions", h.CreateSession)
	api.GET("/exports", h.ListExports)
	api.GET("/exports/:exportId", h.GetExport)

	sess := api.Group("/sessions/:id", h.withSession)
	sess.GET("", h.GetSession)

	sess.POST("/tables", h.AddTable)
	sess.PATCH("/tables/:table", h.RenameTable)
	sess.DELETE("/tables/:table", h.DeleteTable)
	sess.POST("/tables/:table/fields", h.AddField)
	sess.PATCH("/tables/:table/fields/:field", h.UpdateField)
	sess.DELETE("/tables/:table/fields/:field", h.DeleteField)
	sess.POST("/tables/:table/relationships", h.AddRelationship)
	sess.PATCH("/tables/:table/relationships/:kind/:index", h.UpdateRelationship)
	sess.DELETE("/tables/:table/relationships/:kind/:index", h.DeleteRelationship)

	sess.POST("/interview", h.StartInterview)
	sess.GET("/interview", h.GetInterview)
	sess.POST("/interview/answer", h.AnswerInterview)
	sess.POST("/interview/back", h.BackInterview)
	sess.POST("/interview/apply", h.ApplyInterview)

	sess.GET("/validate", h.Validate)
	sess.POST("/generate", h.Generate)
	sess.GET("/events", h.Events)

	// These take the manager lock, not the session lock.
	api.GET("/sessions/:id/events/stream", h.StreamEvents)
	api.DELETE("/sessions/:id", h.DeleteSession)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": sessions.Len()})
	})
	return router
}

// New creates the HTTP server.
func New(cfg Config, sessions *SessionManager, logger zerolog.Logger) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(cfg, sessions, logger),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Debug()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		} else if status >= http.StatusBadRequest {
			event = logger.Info()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
