package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides: ARENA_BRAIN_TIMEOUT=250ms
const EnvPrefix = "ARENA"

// Config is everything an arena process needs to run a match
type Config struct {
	Env       string          `mapstructure:"env" yaml:"env"` // prod | staging | training | testing
	Arena     ArenaConfig     `mapstructure:"arena" yaml:"arena"`
	Brain     BrainConfig     `mapstructure:"brain" yaml:"brain"`
	Energy    EnergyConfig    `mapstructure:"energy" yaml:"energy"`
	Combat    CombatConfig    `mapstructure:"combat" yaml:"combat"`
	Redis     RedisConfig     `mapstructure:"redis" yaml:"redis"`
	Pubnub    PubnubConfig    `mapstructure:"pubnub" yaml:"pubnub"`
	Spectator SpectatorConfig `mapstructure:"spectator" yaml:"spectator"`
	GRPC      GRPCConfig      `mapstructure:"grpc" yaml:"grpc"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Robots    []RobotConfig   `mapstructure:"robots" yaml:"robots"`
}

// ArenaConfig sizes the world and paces its clock
type ArenaConfig struct {
	Width         float64       `mapstructure:"width" yaml:"width"`
	Height        float64       `mapstructure:"height" yaml:"height"`
	SpawnBox      float64       `mapstructure:"spawn_box" yaml:"spawn_box"`
	BodyRadius    float64       `mapstructure:"body_radius" yaml:"body_radius"`
	RegionSize    int32         `mapstructure:"region_size" yaml:"region_size"`
	TickInterval  time.Duration `mapstructure:"tick_interval" yaml:"tick_interval"`
	FlushInterval time.Duration `mapstructure:"flush_interval" yaml:"flush_interval"`
	Seed          int64         `mapstructure:"seed" yaml:"seed"`
	// RawCones keeps the unnormalized cone test, which misses targets across the 0/360 seam
	RawCones bool `mapstructure:"raw_cones" yaml:"raw_cones"`
}

// BrainConfig bounds how robots talk to their brains
type BrainConfig struct {
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Interval       time.Duration `mapstructure:"interval" yaml:"interval"`
	TimeoutPenalty int           `mapstructure:"timeout_penalty" yaml:"timeout_penalty"`
}

// EnergyConfig sets robot energy regeneration
type EnergyConfig struct {
	RegenPerTick int `mapstructure:"regen_per_tick" yaml:"regen_per_tick"`
}

// CombatConfig sets the score rewards of attacks
type CombatConfig struct {
	HitReward  int `mapstructure:"hit_reward" yaml:"hit_reward"`
	KillReward int `mapstructure:"kill_reward" yaml:"kill_reward"`
}

// RedisConfig locates the snapshot store
type RedisConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"` // empty runs an in-process server
}

// PubnubConfig holds pubnub keys. Publishing is off without a publish key.
type PubnubConfig struct {
	SubscribeKey string        `mapstructure:"subscribe_key" yaml:"subscribe_key"`
	PublishKey   string        `mapstructure:"publish_key" yaml:"-"`
	PublishDelay time.Duration `mapstructure:"publish_delay" yaml:"publish_delay"`
}

// SpectatorConfig is the spectator HTTP API listen address
type SpectatorConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// GRPCConfig is the gRPC health service port
type GRPCConfig struct {
	Port string `mapstructure:"port" yaml:"port"`
}

// TelemetryConfig is where cycle and tick CSVs are written
type TelemetryConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir"` // empty disables recording
}

// RobotConfig is one robot entering the match and its brain URL
type RobotConfig struct {
	Name string `mapstructure:"name" yaml:"name"`
	URL  string `mapstructure:"url" yaml:"url"`
}

// Load reads config from .env, the given YAML file path (optional) and
// ARENA_ environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "training")
	v.SetDefault("arena.width", 1000)
	v.SetDefault("arena.height", 1000)
	v.SetDefault("arena.spawn_box", 0.8)
	v.SetDefault("arena.body_radius", 20)
	v.SetDefault("arena.region_size", 100)
	v.SetDefault("arena.tick_interval", "1s")
	v.SetDefault("arena.flush_interval", "250ms")
	v.SetDefault("arena.seed", 0)
	v.SetDefault("arena.raw_cones", false)
	v.SetDefault("brain.timeout", "100ms")
	v.SetDefault("brain.interval", "500ms")
	v.SetDefault("brain.timeout_penalty", 10)
	v.SetDefault("energy.regen_per_tick", 10)
	v.SetDefault("combat.hit_reward", 1)
	v.SetDefault("combat.kill_reward", 10)
	v.SetDefault("redis.addr", "")
	v.SetDefault("pubnub.subscribe_key", "")
	v.SetDefault("pubnub.publish_key", "")
	v.SetDefault("pubnub.publish_delay", "250ms")
	v.SetDefault("spectator.addr", ":8080")
	v.SetDefault("grpc.port", "9090")
	v.SetDefault("telemetry.dir", "")
}

// Validate rejects settings the arena cannot run with
func (c *Config) Validate() error {
	switch c.Env {
	case "prod", "staging", "training", "testing":
	default:
		return fmt.Errorf("config: unknown env %q", c.Env)
	}
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		return fmt.Errorf("config: arena must have a positive size, got %vx%v", c.Arena.Width, c.Arena.Height)
	}
	if c.Brain.Timeout <= 0 || c.Brain.Interval <= 0 {
		return errors.New("config: brain timeout and interval must be positive")
	}
	for i, r := range c.Robots {
		if r.Name == "" || r.URL == "" {
			return fmt.Errorf("config: robot %d needs a name and a url", i)
		}
	}
	return nil
}
