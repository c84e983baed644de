package api

import (
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/libria-client/app/state"
)

const keepAliveInterval = 30 * time.Second

type event struct {
	name string
	data any
}

// StreamEvents pushes a server-sent event for every state change until the
// client disconnects. Slow clients miss events rather than block commits.
func (h *Handler) StreamEvents(c *gin.Context) {
	events := make(chan event, 16)
	push := func(e event) {
		select {
		case events <- e:
		default:
			slog.Debug("Dropping event for slow client", "event", e.name)
		}
	}

	unsubscribe := []func(){
		h.stores.Releases.Subscribe(func(s state.ReleasesState) {
			push(event{"releases", gin.H{"loading": s.Loading, "total": len(s.Items)}})
		}),
		h.stores.Release.Subscribe(func(s state.ReleaseState) {
			data := gin.H{"loading": s.Loading, "id": nil}
			if s.Data != nil {
				data["id"] = s.Data.ID
			}
			push(event{"release", data})
		}),
		h.stores.Favorites.Subscribe(func(s state.FavoritesState) {
			push(event{"favorites", gin.H{
				"loading":  s.Loading,
				"total":    len(s.Items),
				"settings": newSettingsResponse(s.Settings),
			}})
		}),
	}
	defer func() {
		for _, cancel := range unsubscribe {
			cancel()
		}
	}()

	ctx := c.Request.Context()
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.SSEvent("ready", gin.H{"authorized": h.authorizer.IsAuthorized()})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().Unix()})
			return true
		case e := <-events:
			c.SSEvent(e.name, e.data)
			return true
		}
	})
}
