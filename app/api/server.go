package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer builds the control API. When apiAccessKey is empty every route is
// open; otherwise all routes but / and /health require it.
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(requestLogger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-API-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	r.GET("/health", handler.GetHealth)

	protected := r.Group("/")
	if apiAccessKey != "" {
		protected.Use(authMiddleware(apiAccessKey))
		slog.Info("Control API protected with access key")
	} else {
		slog.Warn("Control API is open (API_ACCESS_KEY not set)")
	}

	{
		protected.GET("/releases", handler.ListReleases)
		protected.POST("/releases/refresh", handler.RefreshReleases)
		protected.GET("/releases/:id", handler.GetRelease)

		protected.GET("/favorites", handler.ListFavorites)
		protected.POST("/favorites/refresh", handler.RefreshFavorites)
		protected.PUT("/favorites/settings", handler.UpdateFavoritesSettings)
		protected.POST("/favorites/:id", handler.AddFavorite)
		protected.DELETE("/favorites/:id", handler.RemoveFavorite)

		protected.GET("/posters/:id", handler.GetPoster)
		protected.GET("/notifications", handler.ListNotifications)
		protected.GET("/events", handler.StreamEvents)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":     "Libria Client",
			"version":     "1.0.0",
			"description": "AniLibria catalogue and favorites client",
			"endpoints": map[string]string{
				"health":        "/health",
				"releases":      "/releases",
				"release":       "/releases/<id>",
				"favorites":     "/favorites",
				"posters":       "/posters/<id>",
				"notifications": "/notifications",
				"events":        "/events",
			},
			"auth_required": apiAccessKey != "",
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiAccessKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			return
		}

		c.Next()
	}
}
