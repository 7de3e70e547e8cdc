package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lao-tseu-is-alive/go-infinite-dla/pkg/dla"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tochemey/goakt/v3/log"
)

//go:embed config.schema.json
var configSchema string

// ErrInvalidConfig is returned when values pass the schema but contradict each other.
var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	// Simulation tunables, flattened into the top level of the file
	dla.Config

	// Window
	WindowWidth  int `json:"windowWidth"`
	WindowHeight int `json:"windowHeight"`

	// Host loop
	TicksPerFrame int    `json:"ticksPerFrame"` // simulation ticks per rendered frame
	GrowTicks     int    `json:"growTicks"`     // ticks a new branch takes to draw fully
	Seed          uint64 `json:"seed"`          // 0 picks a time based seed

	// Visualization
	ShowGrid   bool `json:"showGrid"`
	ShowActive bool `json:"showActive"`

	LogLevel string `json:"logLevel"`
}

func DefaultConfig() *Config {
	return &Config{
		Config:        dla.DefaultConfig(),
		WindowWidth:   1000,
		WindowHeight:  800,
		TicksPerFrame: 4,
		GrowTicks:     120,
		ShowActive:    true,
		LogLevel:      "info",
	}
}

// LoadConfig reads a JSON or TOML (by extension) configuration file,
// validates it against the embedded schema and applies it over the defaults.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.CompileString("dla-config.schema.json", configSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File, normalized to JSON
	raw, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	b, err := toJSON(configFile, raw)
	if err != nil {
		return nil, err
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func toJSON(name string, raw []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return raw, nil
	case ".toml":
		var m map[string]interface{}
		if _, err := toml.Decode(string(raw), &m); err != nil {
			return nil, fmt.Errorf("failed to decode config toml: %w", err)
		}
		b, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("failed to convert toml config: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported config format %q (want .json or .toml)", filepath.Ext(name))
	}
}

// Validate checks the rules the schema cannot express.
func (c *Config) Validate() error {
	if err := ValidateTunables(c.Config); err != nil {
		return err
	}
	if c.TicksPerFrame < 0 {
		return fmt.Errorf("%w: ticksPerFrame must not be negative", ErrInvalidConfig)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ValidateTunables checks a simulation config, whether it comes from a file
// or from the control panel.
func ValidateTunables(c dla.Config) error {
	switch {
	case c.CellCount < 1:
		return fmt.Errorf("%w: cellCount must be at least 1, got %d", ErrInvalidConfig, c.CellCount)
	case c.ParticleRadius <= 0:
		return fmt.Errorf("%w: particleRadius must be positive", ErrInvalidConfig)
	case c.MarginMax <= c.MarginMin:
		return fmt.Errorf("%w: marginMax (%v) must exceed marginMin (%v)", ErrInvalidConfig, c.MarginMax, c.MarginMin)
	case c.MarginMin < 2*c.ParticleRadius:
		// a particle outside the grid could otherwise still touch the aggregate
		return fmt.Errorf("%w: marginMin (%v) must be at least one particle diameter (%v)",
			ErrInvalidConfig, c.MarginMin, 2*c.ParticleRadius)
	case c.Step() > 2*c.ParticleRadius:
		return fmt.Errorf("%w: stepSize (%v) must not exceed one particle diameter", ErrInvalidConfig, c.Step())
	case c.WorldAggregateRatio < 1 || c.ViewAggregateRatio <= 0:
		return fmt.Errorf("%w: worldAggregateRatio must be >= 1 and viewAggregateRatio > 0", ErrInvalidConfig)
	case c.InitialWorldRadius <= 2*c.ParticleRadius:
		return fmt.Errorf("%w: initialWorldRadius must be larger than a particle", ErrInvalidConfig)
	case c.ZoomSmoothness <= 0 || c.ZoomSmoothness >= 1:
		return fmt.Errorf("%w: zoomSmoothness must be in (0, 1), got %v", ErrInvalidConfig, c.ZoomSmoothness)
	case c.ActiveTarget < 0 || c.MutateAmount < 0 || c.SpawnSpread < 0 || c.BounceJitter < 0:
		return fmt.Errorf("%w: counts, spreads and amounts must not be negative", ErrInvalidConfig)
	}
	return nil
}

// ParseLogLevel maps a level name to the actor system log level.
func ParseLogLevel(name string) (log.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return log.DebugLevel, nil
	case "", "info":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarningLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, name)
}
