package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/libria-client/app/fetch"
	"github.com/lysyi3m/libria-client/app/release"
	"github.com/lysyi3m/libria-client/app/state"
)

func NewHandler(releases ReleasesService, favorites FavoritesService, authorizer Authorizer,
	stores *state.Stores, notifications NotificationFeed) *Handler {
	return &Handler{
		releases:      releases,
		favorites:     favorites,
		authorizer:    authorizer,
		stores:        stores,
		notifications: notifications,
		reporters:     make(map[string]HealthReporter),
	}
}

// AddHealthReporter includes reporter in /health under name.
func (h *Handler) AddHealthReporter(name string, reporter HealthReporter) {
	h.reporters[name] = reporter
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]any{
		"timestamp":  time.Now().In(time.Local).Format(time.RFC3339),
		"authorized": h.authorizer.IsAuthorized(),
		"releases":   len(h.stores.Releases.Get().Items),
		"favorites":  len(h.stores.Favorites.Get().Items),
	}

	for name, reporter := range h.reporters {
		health[name] = reporter.Health(c.Request.Context())
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListReleases(c *gin.Context) {
	c.JSON(http.StatusOK, h.releasesPayload())
}

func (h *Handler) RefreshReleases(c *gin.Context) {
	if err := h.releases.GetReleases(c.Request.Context()); err != nil {
		respondReported(c, err)
		return
	}
	c.JSON(http.StatusOK, h.releasesPayload())
}

func (h *Handler) GetRelease(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.releases.GetRelease(c.Request.Context(), id); err != nil {
		respondReported(c, err)
		return
	}

	detail := h.stores.Release.Get()
	if detail.Data == nil || detail.Data.ID != id {
		// A newer request for another release replaced this one.
		c.JSON(http.StatusConflict, gin.H{"error": "Release request was superseded"})
		return
	}

	response := newReleaseResponse(*detail.Data)
	c.JSON(http.StatusOK, gin.H{
		"release":     response,
		"is_favorite": h.favorites.IsInFavorite(id),
	})
}

func (h *Handler) ListFavorites(c *gin.Context) {
	c.JSON(http.StatusOK, h.favoritesPayload())
}

func (h *Handler) RefreshFavorites(c *gin.Context) {
	if !h.requireAuthorization(c) {
		return
	}

	if err := h.favorites.GetFavorites(c.Request.Context()); err != nil {
		respondReported(c, err)
		return
	}
	c.JSON(http.StatusOK, h.favoritesPayload())
}

func (h *Handler) AddFavorite(c *gin.Context) {
	id, ok := parseID(c)
	if !ok || !h.requireAuthorization(c) {
		return
	}

	h.respondOutcome(c, h.favorites.AddToFavorites(c.Request.Context(), id))
}

func (h *Handler) RemoveFavorite(c *gin.Context) {
	id, ok := parseID(c)
	if !ok || !h.requireAuthorization(c) {
		return
	}

	h.respondOutcome(c, h.favorites.RemoveFromFavorites(c.Request.Context(), id))
}

func (h *Handler) UpdateFavoritesSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid settings payload", "message": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var err error

	if req.Sort != nil {
		err = h.favorites.SetSort(ctx, *req.Sort)
	}
	if err == nil && req.Group != nil {
		err = h.favorites.SetGroup(ctx, *req.Group)
	}
	if err == nil && req.ShowSeen != nil {
		err = h.favorites.SetShowSeen(ctx, *req.ShowSeen)
	}

	if errors.Is(err, fetch.ErrInvalidSetting) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		slog.Error("Failed to update favorites settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, newSettingsResponse(h.stores.Favorites.Get().Settings))
}

// GetPoster serves the image enriched into any committed release.
func (h *Handler) GetPoster(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	image := h.findPoster(id)
	if image == nil {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, http.DetectContentType(image), image)
}

func (h *Handler) ListNotifications(c *gin.Context) {
	notifications := h.notifications.Recent()
	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         len(notifications),
	})
}

func (h *Handler) findPoster(id int64) []byte {
	if detail := h.stores.Release.Get().Data; detail != nil && detail.ID == id && detail.Poster.Image != nil {
		return detail.Poster.Image
	}

	collections := [][]release.Release{
		h.stores.Releases.Get().Items,
		h.stores.Favorites.Get().Items,
	}
	for _, items := range collections {
		for _, item := range items {
			if item.ID == id && item.Poster.Image != nil {
				return item.Poster.Image
			}
		}
	}

	return nil
}

func (h *Handler) releasesPayload() gin.H {
	current := h.stores.Releases.Get()
	return gin.H{
		"items":   newReleaseList(current.Items),
		"loading": current.Loading,
		"total":   len(current.Items),
	}
}

func (h *Handler) favoritesPayload() gin.H {
	current := h.stores.Favorites.Get()
	return gin.H{
		"items":      newReleaseList(current.Items),
		"loading":    current.Loading,
		"total":      len(current.Items),
		"settings":   newSettingsResponse(current.Settings),
		"authorized": h.authorizer.IsAuthorized(),
	}
}

func (h *Handler) requireAuthorization(c *gin.Context) bool {
	if h.authorizer.IsAuthorized() {
		return true
	}
	c.JSON(http.StatusForbidden, gin.H{
		"error":   "Not authorized",
		"message": "Configure a session to manage favorites",
	})
	return false
}

func (h *Handler) respondOutcome(c *gin.Context, outcome fetch.Outcome) {
	switch outcome.Kind {
	case fetch.Committed:
		c.JSON(http.StatusOK, h.favoritesPayload())
	case fetch.Reported:
		respondReported(c, outcome.Err)
	case fetch.Cancelled:
		c.Status(http.StatusNoContent)
	case fetch.Skipped:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Operation skipped"})
	}
}

func respondReported(c *gin.Context, err error) {
	var reported *fetch.ReportedError
	if errors.As(err, &reported) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   reported.Message,
			"message": reported.Err.Error(),
		})
		return
	}

	slog.Error("Unexpected operation error", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid release id"})
		return 0, false
	}
	return id, true
}
