// Package cmd holds the entrypoints behind the binaries in cmd/.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/terrariumai/brains/pkg/arena"
	"github.com/terrariumai/brains/pkg/config"
	"github.com/terrariumai/brains/pkg/console"
	"github.com/terrariumai/brains/pkg/datacom"
	"github.com/terrariumai/brains/pkg/logger"
	"github.com/terrariumai/brains/pkg/protocol/grpc"
	"github.com/terrariumai/brains/pkg/spectator"
	"github.com/terrariumai/brains/pkg/stadium/v1"
	"github.com/terrariumai/brains/pkg/telemetry"
)

// Flags is configuration that only comes from the command line
type Flags struct {
	// ConfigPath is an optional YAML config file
	ConfigPath string
	// Console reads operator commands from stdin
	Console bool
	// Log parameters section
	// LogLevel is global log level: Debug(-1), Info(0), Warn(1), Error(2), DPanic(3), Panic(4), Fatal(5)
	LogLevel int
	// LogTimeFormat is print time format for logger e.g. 2006-01-02T15:04:05Z07:00
	LogTimeFormat string
}

// ParseArenaFlags parses the arena command line
func ParseArenaFlags(args []string) (Flags, error) {
	var f Flags
	fs := flag.NewFlagSet("arena", flag.ContinueOnError)
	fs.StringVar(&f.ConfigPath, "config", "", "YAML config file")
	fs.BoolVar(&f.Console, "console", false, "Read operator commands from stdin")
	fs.IntVar(&f.LogLevel, "log-level", 0, "Global log level")
	fs.StringVar(&f.LogTimeFormat, "log-time-format", "",
		"Print time format for logger e.g. 2006-01-02T15:04:05Z07:00")
	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}
	return f, nil
}

// RunArena runs a match with every configured robot, the spectator API and
// the gRPC health service until ctx is done.
func RunArena(ctx context.Context, args []string) error {
	flags, err := ParseArenaFlags(args)
	if err != nil {
		return err
	}
	if err := logger.Init(flags.LogLevel, flags.LogTimeFormat); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.Log

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return err
	}

	redisAddr := cfg.Redis.Addr
	if redisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return fmt.Errorf("start in-process redis: %w", err)
		}
		defer mr.Close()
		redisAddr = mr.Addr()
		log.Info("using in-process redis", zap.String("addr", redisAddr))
	}

	var pal *datacom.PubnubPAL
	var pubsub datacom.PubsubAccessLayer
	if cfg.Pubnub.PublishKey != "" {
		pal = datacom.NewPubnubPAL(cfg.Env, cfg.Pubnub.SubscribeKey, cfg.Pubnub.PublishKey, cfg.Pubnub.PublishDelay, log)
		pubsub = pal
	}
	dc, err := datacom.NewDatacom(cfg.Env, redisAddr, pubsub)
	if err != nil {
		return err
	}
	defer dc.Close()

	recorder, err := telemetry.NewRecorder(cfg.Telemetry.Dir)
	if err != nil {
		return err
	}
	defer recorder.Close()
	if err := recorder.WriteConfig(cfg); err != nil {
		return err
	}

	st := stadium.NewStadium()
	a := arena.New(*cfg, arena.Deps{
		Store:    dc,
		Stadium:  st,
		Recorder: recorder,
		Logger:   log,
	})
	// a persistent redis still holds the last match
	if err := a.Reset(); err != nil {
		return err
	}
	log.Info("store reset", zap.String("env", dc.Env()), zap.String("redis", redisAddr))
	for _, rc := range cfg.Robots {
		if _, err := a.Enter(rc.Name, rc.URL); err != nil {
			return fmt.Errorf("enter %s: %w", rc.Name, err)
		}
	}

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.Run(ctx)
	})
	if pal != nil {
		g.Go(func() error {
			pal.StartBatchPublishLoop(ctx)
			return nil
		})
	}
	g.Go(func() error {
		return spectator.NewServer(a, dc, st, log).Run(ctx, cfg.Spectator.Addr)
	})
	g.Go(func() error {
		return grpc.RunServer(ctx, hs, cfg.GRPC.Port, log)
	})

	if flags.Console {
		// stdin reads ignore ctx, so the console stays out of the group
		go func() {
			if err := console.New(a, dc, os.Stdout).Start(ctx, os.Stdin); err != nil && ctx.Err() == nil {
				log.Warn("console stopped", zap.Error(err))
			}
		}()
	}

	log.Info("arena started",
		zap.String("env", cfg.Env),
		zap.Int("robots", len(cfg.Robots)),
		zap.String("spectator", cfg.Spectator.Addr),
		zap.String("grpc", cfg.GRPC.Port),
	)
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info("arena stopped", zap.Int("written", recorder.Written()))
	return err
}
