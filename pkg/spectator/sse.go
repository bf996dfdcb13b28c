package spectator

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"

	"github.com/terrariumai/brains/pkg/vec2/v1"
)

// ServeSSE handles GET /spectate?x=<region x>&y=<region y>.
// It streams every actor update of that region as server-sent events.
func (s *Server) ServeSSE(c *gin.Context) {
	if s.stadium == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "spectating unavailable"})
		return
	}
	x, errX := strconv.ParseInt(c.Query("x"), 10, 32)
	y, errY := strconv.ParseInt(c.Query("y"), 10, 32)
	if errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "x and y must be region coordinates"})
		return
	}
	region := vec2.Vec2{X: int32(x), Y: int32(y)}

	id := uuid.Must(uuid.NewV4()).String()
	log := s.logger.With(zap.String("spectator", id), zap.String("region", region.String()))
	updates := s.stadium.AddSpectator(id)
	s.stadium.SubscribeSpectatorToRegion(id, region)
	log.Info("spectator connected", zap.Int("spectators", s.stadium.SpectatorCount()))
	defer func() {
		s.stadium.RemoveSpectator(id)
		log.Info("spectator left", zap.Int("spectators", s.stadium.SpectatorCount()))
	}()

	// Set SSE headers.
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	// Send initial connected event.
	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"region\":%q}\n\n", region.String())
	c.Writer.Flush()

	ticker := time.NewTicker(s.keepalive)
	defer ticker.Stop()

	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return
			}
			data, err := json.Marshal(u.Data)
			if err != nil {
				log.Warn("sse encode failed", zap.Error(err))
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", u.Kind, data)
			c.Writer.Flush()

		case <-ticker.C:
			// Keepalive comment to prevent proxy timeouts.
			fmt.Fprintf(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case <-c.Request.Context().Done():
			return
		}
	}
}
