package spectator

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// requestLog logs every finished request with what it looked at. A spectate
// stream is logged when the spectator leaves, so took is the time watched.
func requestLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("took", time.Since(start)),
		}
		if id := strings.TrimPrefix(c.Param("id"), "/"); id != "" {
			fields = append(fields, zap.String("actor", id))
		}
		if x, y := c.Query("x"), c.Query("y"); x != "" || y != "" {
			fields = append(fields, zap.String("region", x+"."+y))
		}

		lvl := zapcore.DebugLevel
		switch {
		case status >= http.StatusInternalServerError:
			lvl = zapcore.ErrorLevel
		case status >= http.StatusBadRequest:
			lvl = zapcore.WarnLevel
		}
		if ce := log.Check(lvl, "spectator request"); ce != nil {
			ce.Write(fields...)
		}
	}
}

// recovery turns a handler panic into a 500 and logs it once through zap
func recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, err any) {
		log.Error("spectator handler panicked",
			zap.Any("panic", err),
			zap.String("route", c.FullPath()),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}
