// Package config loads hexplanner.toml.
//
// Every field has a default, so a missing file or a partial file is valid.
// Unknown keys are rejected to catch typos early.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/hexplanner/pkg/errors"
	"github.com/matzehuels/hexplanner/pkg/hexgrid"
	"github.com/matzehuels/hexplanner/pkg/store"
)

// FileName is the default config file name.
const FileName = "hexplanner.toml"

// Config is the full configuration.
type Config struct {
	Grid    Grid    `toml:"grid"`
	Data    Data    `toml:"data"`
	Planner Planner `toml:"planner"`
	Store   Store   `toml:"store"`
	Cache   Cache   `toml:"cache"`
	Server  Server  `toml:"server"`
}

// Grid holds the hex layout parameters.
type Grid struct {
	Radius  float64 `toml:"radius" validate:"gt=0"`
	Padding float64 `toml:"padding" validate:"gte=0"`
	OriginX float64 `toml:"origin_x"`
	OriginY float64 `toml:"origin_y"`
}

// Data locates the input files.
type Data struct {
	Tree   string `toml:"tree" validate:"required"`
	Colors string `toml:"colors"`
	// Center is the column categories are centered on. Zero disables centering.
	Center int `toml:"center" validate:"gte=0"`
}

// Planner holds planner defaults.
type Planner struct {
	DefaultCategory string `toml:"default_category"`
}

// Store selects the plan storage backend.
type Store struct {
	Backend       string `toml:"backend" validate:"oneof=file memory redis mongo sqlite"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr" validate:"required_if=Backend redis"`
	MongoURI      string `toml:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string `toml:"mongo_database"`
	SQLitePath    string `toml:"sqlite_path" validate:"required_if=Backend sqlite"`
}

// Cache selects the artifact cache backend.
type Cache struct {
	Backend   string   `toml:"backend" validate:"oneof=file redis none"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr" validate:"required_if=Backend redis"`
	TTL       Duration `toml:"ttl" validate:"gte=0"`
	// Scope prefixes every cache key so deployments can share a backend.
	Scope     string   `toml:"scope"`
}

// Server configures `hexplanner serve`.
type Server struct {
	Addr string `toml:"addr" validate:"required"`
}

// Duration is a time.Duration written as a string like "24h" in TOML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Grid: Grid{Radius: 48, Padding: 16, OriginX: 0, OriginY: 160},
		Data: Data{Tree: "tree.json"},
		Store: Store{
			Backend:       store.BackendFile,
			MongoDatabase: store.DefaultMongoDatabase,
		},
		Cache:  Cache{Backend: "file", TTL: Duration(7 * 24 * time.Hour)},
		Server: Server{Addr: ":3000"},
	}
}

// DefaultPath returns ~/.config/hexplanner/hexplanner.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "hexplanner", FileName), nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	return nil
}

// Decode reads TOML from r over the defaults and validates the result.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads path. A missing file yields the defaults, and relative data
// paths are resolved against the file's directory.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open config")
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, err
	}
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.Data.Tree, &c.Data.Colors, &c.Store.Dir, &c.Store.SQLitePath, &c.Cache.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// String returns c as TOML.
func (c *Config) String() string {
	var buf bytes.Buffer
	_ = c.Encode(&buf)
	return buf.String()
}

// Write saves c to path, creating parent directories.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(c.String()), 0o644)
}

// NewGrid builds the hex grid described by c.
func (c *Config) NewGrid() *hexgrid.Grid {
	return hexgrid.New(c.Grid.Radius, c.Grid.Padding, hexgrid.Point{X: c.Grid.OriginX, Y: c.Grid.OriginY})
}

// StoreOptions converts the store section for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:       c.Store.Backend,
		Dir:           c.Store.Dir,
		RedisAddr:     c.Store.RedisAddr,
		MongoURI:      c.Store.MongoURI,
		MongoDatabase: c.Store.MongoDatabase,
		SQLitePath:    c.Store.SQLitePath,
	}
}
