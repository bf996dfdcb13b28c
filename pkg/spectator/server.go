// Package spectator serves a read-only HTTP view of a running arena: actor
// snapshots, the leaderboard and a live stream of region updates.
package spectator

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/terrariumai/brains/pkg/datacom"
	"github.com/terrariumai/brains/pkg/stadium/v1"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
	keepaliveInterval      = 30 * time.Second
	shutdownTimeout        = 5 * time.Second
)

// Source gives live actor snapshots
type Source interface {
	Snapshots() []interface{}
	Snapshot(id string) (interface{}, bool)
}

// Board gives the best scores
type Board interface {
	Leaderboard(n int) ([]datacom.Standing, error)
}

// Server is the spectator HTTP API
type Server struct {
	source    Source
	board     Board
	stadium   *stadium.Stadium
	logger    *zap.Logger
	keepalive time.Duration
}

// NewServer creates a spectator server. board and st may be nil, which
// disables /leaderboard and /spectate respectively.
func NewServer(source Source, board Board, st *stadium.Stadium, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		source:    source,
		board:     board,
		stadium:   st,
		logger:    logger,
		keepalive: keepaliveInterval,
	}
}

// Router builds the gin engine
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestLog(s.logger), recovery(s.logger))

	r.GET("/actors", s.listActors)
	r.GET("/actors/*id", s.getActor)
	r.GET("/leaderboard", s.leaderboard)
	r.GET("/spectate", s.ServeSSE)
	return r
}

// Run serves on addr until ctx is done
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("spectator api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) listActors(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"actors": s.source.Snapshots()})
}

// getActor matches the whole remaining path since actor ids contain slashes
func (s *Server) getActor(c *gin.Context) {
	id := c.Param("id")
	if len(id) > 0 && id[0] == '/' {
		id = id[1:]
	}
	snap, ok := s.source.Snapshot(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "actor not found"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *Server) leaderboard(c *gin.Context) {
	if s.board == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard unavailable"})
		return
	}
	n := defaultLeaderboardSize
	if q := c.Query("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 1 || v > maxLeaderboardSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "n must be between 1 and 100"})
			return
		}
		n = v
	}
	standings, err := s.board.Leaderboard(n)
	if err != nil {
		s.logger.Error("leaderboard read failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leaderboard unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": standings})
}
