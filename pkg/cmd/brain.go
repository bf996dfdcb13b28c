package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/terrariumai/brains/pkg/brain"
	"github.com/terrariumai/brains/pkg/logger"
)

// BrainFlags configures the sparring brain server
type BrainFlags struct {
	// Addr is the HTTP address to listen on
	Addr string
	// Seed drives the wandering moves, 0 picks a time based seed
	Seed int64
	// LogLevel is global log level: Debug(-1), Info(0), Warn(1), Error(2), DPanic(3), Panic(4), Fatal(5)
	LogLevel int
	// LogTimeFormat is print time format for logger e.g. 2006-01-02T15:04:05Z07:00
	LogTimeFormat string
}

// ParseBrainFlags parses the brain command line
func ParseBrainFlags(args []string) (BrainFlags, error) {
	var f BrainFlags
	fs := flag.NewFlagSet("brain", flag.ContinueOnError)
	fs.StringVar(&f.Addr, "addr", ":8000", "HTTP address to listen on")
	fs.Int64Var(&f.Seed, "seed", 0, "Random seed, 0 for time based")
	fs.IntVar(&f.LogLevel, "log-level", 0, "Global log level")
	fs.StringVar(&f.LogTimeFormat, "log-time-format", "",
		"Print time format for logger e.g. 2006-01-02T15:04:05Z07:00")
	if err := fs.Parse(args); err != nil {
		return BrainFlags{}, err
	}
	if f.Addr == "" {
		return BrainFlags{}, fmt.Errorf("invalid listen address: '%s'", f.Addr)
	}
	return f, nil
}

// RunBrain serves a sparring brain until ctx is done
func RunBrain(ctx context.Context, args []string) error {
	flags, err := ParseBrainFlags(args)
	if err != nil {
		return err
	}
	if err := logger.Init(flags.LogLevel, flags.LogTimeFormat); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.Log

	seed := flags.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              flags.Addr,
		Handler:           brain.Handler(brain.NewSparring(seed), log),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("brain listening", zap.String("addr", flags.Addr), zap.Int64("seed", seed))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info("brain stopped")
		return nil
	}
}
