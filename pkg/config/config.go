package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/ritzau/campus-nav/pkg/graph"
	"github.com/ritzau/campus-nav/pkg/logging"
	"github.com/ritzau/campus-nav/pkg/model"
	"github.com/ritzau/campus-nav/pkg/pathfind"
	"github.com/ritzau/campus-nav/pkg/validation"
)

const (
	// DefaultFile is read from the working directory when present.
	DefaultFile = "campus-nav.toml"
	// EnvPrefix prefixes environment overrides. A double underscore
	// separates nesting levels: CAMPUS_NAV_GRAPH__LINKING=proximity.
	EnvPrefix = "CAMPUS_NAV_"
)

// Config holds all configuration for the application.
type Config struct {
	Maps      string   `koanf:"maps" validate:"required"`
	Floors    []string `koanf:"floors" validate:"min=1,unique,dive,required"`
	Pattern   string   `koanf:"pattern" validate:"required,contains=%s"`
	Rooms     string   `koanf:"rooms"`
	Host      string   `koanf:"host"`
	Port      int      `koanf:"port" validate:"min=1,max=65535"`
	Watch     bool     `koanf:"watch"`
	Verbosity string   `koanf:"verbosity" validate:"omitempty,oneof=trace debug info warn error"`
	Verbose   int      `koanf:"verbose" validate:"gte=0"`
	LogJSON   bool     `koanf:"log_json"`
	RateLimit float64  `koanf:"rate_limit" validate:"gte=0"`
	RateBurst int      `koanf:"rate_burst" validate:"gte=0"`

	Graph  GraphConfig  `koanf:"graph"`
	Search SearchConfig `koanf:"search"`
}

// GraphConfig controls graph construction.
type GraphConfig struct {
	Tolerance        float64  `koanf:"tolerance" validate:"gt=0"`
	MinEdgeWeight    float64  `koanf:"min_edge_weight" validate:"gt=0"`
	Weighting        string   `koanf:"weighting" validate:"oneof=distance cost"`
	DefaultCost      float64  `koanf:"default_cost" validate:"gt=0"`
	InterFloorWeight float64  `koanf:"inter_floor_weight" validate:"gt=0"`
	Linking          string   `koanf:"linking" validate:"oneof=exact proximity"`
	LinkDistance     float64  `koanf:"link_distance" validate:"gte=0"`
	StairsPrefixes   []string `koanf:"stairs_prefixes"`
	ElevatorPrefixes []string `koanf:"elevator_prefixes"`
	WalkablePrefixes []string `koanf:"walkable_prefixes"`
	ObstacleMarker   string   `koanf:"obstacle_marker"`
	RoomPattern      string   `koanf:"room_pattern" validate:"required"`
}

// SearchConfig controls the pathfinder.
type SearchConfig struct {
	Heuristic         string  `koanf:"heuristic" validate:"oneof=euclidean manhattan"`
	FloorPenalty      float64 `koanf:"floor_penalty" validate:"gte=0"`
	Cardinal          bool    `koanf:"cardinal"`
	CardinalTolerance float64 `koanf:"cardinal_tolerance" validate:"gte=0"`
	MaxIterations     int     `koanf:"max_iterations" validate:"gte=0"`
}

// flagKeys maps command-line flag names to configuration keys where the two
// differ. Other flags map to their own name with dashes turned into
// underscores.
var flagKeys = map[string]string{
	"linking":   "graph.linking",
	"weighting": "graph.weighting",
	"heuristic": "search.heuristic",
	"cardinal":  "search.cardinal",
}

func defaults() map[string]any {
	return map[string]any{
		"maps":       "static",
		"floors":     []string{"A", "B", "C", "D", "E", "F", "G", "H"},
		"pattern":    "Floor_%s.svg",
		"rooms":      "",
		"host":       "0.0.0.0",
		"port":       5000,
		"watch":      false,
		"verbosity":  "",
		"verbose":    0,
		"log_json":   false,
		"rate_limit": 20.0,
		"rate_burst": 40,
		"graph": map[string]any{
			"tolerance":          1.0,
			"min_edge_weight":    0.1,
			"weighting":          "distance",
			"default_cost":       1.0,
			"inter_floor_weight": 2.0,
			"linking":            "exact",
			"link_distance":      25.0,
			"stairs_prefixes":    []string{"stairs"},
			"elevator_prefixes":  []string{"elevator"},
			"walkable_prefixes":  []string{"walkable", "corridor", "hallway"},
			"obstacle_marker":    "obstacle",
			"room_pattern":       model.DefaultRoomPattern,
		},
		"search": map[string]any{
			"heuristic":          "euclidean",
			"floor_penalty":      2.0,
			"cardinal":           false,
			"cardinal_tolerance": 1.0,
			"max_iterations":     pathfind.DefaultMaxIterations,
		},
	}
}

// Load loads configuration from defaults, the config file, environment
// variables and flags, in increasing priority. An empty path reads
// DefaultFile if it exists; an explicit path must exist.
func Load(f *pflag.FlagSet, path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(makeMapProvider(defaults()), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		logging.Debug("loaded config file", "path", path)
	} else if explicit || !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if f != nil {
		if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(fl *pflag.Flag) (string, any) {
			return flagKey(fl.Name), posflag.FlagVal(f, fl)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func flagKey(name string) string {
	if key, ok := flagKeys[name]; ok {
		return key
	}
	return strings.ReplaceAll(name, "-", "_")
}

// normalize splits comma separated list values, which is how lists arrive
// from the environment.
func (c *Config) normalize() {
	c.Floors = splitList(c.Floors)
	c.Graph.StairsPrefixes = splitList(c.Graph.StairsPrefixes)
	c.Graph.ElevatorPrefixes = splitList(c.Graph.ElevatorPrefixes)
	c.Graph.WalkablePrefixes = splitList(c.Graph.WalkablePrefixes)
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Validate checks field constraints and compiles the room pattern.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := regexp.Compile(c.Graph.RoomPattern); err != nil {
		return fmt.Errorf("invalid config: graph.room_pattern: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// FloorList returns the configured floors in order.
func (c *Config) FloorList() []model.Floor {
	out := make([]model.Floor, len(c.Floors))
	for i, f := range c.Floors {
		out[i] = model.Floor(f)
	}
	return out
}

// LogLevel resolves the log level from verbosity, falling back to the -v
// count.
func (c *Config) LogLevel() (slog.Level, error) {
	if c.Verbosity != "" {
		return logging.ParseLevel(c.Verbosity)
	}
	switch {
	case c.Verbose >= 2:
		return logging.LevelTrace, nil
	case c.Verbose == 1:
		return slog.LevelDebug, nil
	}
	return slog.LevelInfo, nil
}

// GraphOptions converts the graph section. The config must be valid.
func (c *Config) GraphOptions() graph.Options {
	g := c.Graph
	return graph.Options{
		Tolerance:        g.Tolerance,
		MinEdgeWeight:    g.MinEdgeWeight,
		Weighting:        graph.Weighting(g.Weighting),
		DefaultCost:      g.DefaultCost,
		InterFloorWeight: g.InterFloorWeight,
		Linking:          graph.LinkPolicy(g.Linking),
		LinkDistance:     g.LinkDistance,
		Classifier: model.Classifier{
			StairsPrefixes:   g.StairsPrefixes,
			ElevatorPrefixes: g.ElevatorPrefixes,
			WalkablePrefixes: g.WalkablePrefixes,
			ObstacleMarker:   g.ObstacleMarker,
			RoomPattern:      regexp.MustCompile(g.RoomPattern),
		},
	}
}

// SearchOptions converts the search section.
func (c *Config) SearchOptions() (pathfind.Options, error) {
	metric, err := pathfind.MetricByName(c.Search.Heuristic)
	if err != nil {
		return pathfind.Options{}, err
	}
	return pathfind.Options{
		Heuristic:         pathfind.Heuristic{Metric: metric, FloorPenalty: c.Search.FloorPenalty},
		Cardinal:          c.Search.Cardinal,
		CardinalTolerance: c.Search.CardinalTolerance,
		MaxIterations:     c.Search.MaxIterations,
	}, nil
}

type mapProvider struct {
	m map[string]any
}

func makeMapProvider(m map[string]any) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]any, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("not implemented")
}
