package brain

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler serves s on POST /
func Handler(s *Sparring, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/", func(c *gin.Context) {
		start := time.Now()
		var env Environment
		if err := c.ShouldBindJSON(&env); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		reply := s.Decide(env)
		logger.Debug("decided",
			zap.String("robot", env.Self.Name),
			zap.String("action", reply.Action),
			zap.Int("visible", len(env.Visible)),
			zap.Duration("took", time.Since(start)),
		)
		c.JSON(http.StatusOK, reply)
	})
	return r
}
