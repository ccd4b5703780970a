package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment override, e.g. IPCSIM_SIMULATION_TRIALS.
// Fields carry no envconfig tags so that unprefixed names are never consulted.
const EnvPrefix = "IPCSIM"

// Config holds all ipcsim configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Simulation SimulationConfig `toml:"simulation"`
	Appearance AppearanceConfig `toml:"appearance"`
	Logging    LoggingConfig    `toml:"logging"`
	Server     ServerConfig     `toml:"server"`
	Cache      CacheConfig      `toml:"cache"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataFile string `toml:"data_file,omitempty" split_words:"true"`
	Quiet    bool   `toml:"quiet"`
}

// SimulationConfig holds the default projection parameters.
type SimulationConfig struct {
	Trials  int `toml:"trials" validate:"gte=1,lte=1000000"`
	Periods int `toml:"periods" validate:"gte=1,lte=1200"`
	// Seed 0 picks a time-derived seed on every run.
	Seed    uint64 `toml:"seed"`
	Workers int    `toml:"workers" validate:"gte=0,lte=1024"`
	// ChangeFloor clamps drawn monthly changes from below, in percent. Unset means unbounded.
	ChangeFloor *float64 `toml:"change_floor,omitempty" split_words:"true" validate:"omitempty,gte=-100"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme" validate:"oneof=flexoki-dark catppuccin-mocha tokyo-night terminal"`
}

// LoggingConfig controls the zerolog logger.
type LoggingConfig struct {
	Level  string `toml:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `toml:"format" validate:"oneof=console json"`
}

// ServerConfig holds HTTP server settings for `ipcsim serve`.
type ServerConfig struct {
	Addr string `toml:"addr" validate:"required,hostname_port"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Simulation: SimulationConfig{
			Trials:  1000,
			Periods: 12,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8377",
		},
		Cache: CacheConfig{
			Enabled: true,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ipcsim")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "ipcsim")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, then applies .env and IPCSIM_* environment
// overrides, and validates the result. A missing file yields defaults.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-selected config path
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("reading .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("reading environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field constraint and reports all violations at once.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %v fails %q", fieldPath(fe.Namespace()), fe.Value(), fe.ActualTag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// fieldPath drops the root type name: "Config.Simulation.Trials" -> "simulation.trials".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return strings.ToLower(ns)
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-selected config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}
