package cli

import (
	stderrors "errors"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/trafficmap/pkg/errors"
	tio "github.com/matzehuels/trafficmap/pkg/io"
	"github.com/matzehuels/trafficmap/pkg/pipeline"
	"github.com/matzehuels/trafficmap/pkg/render/sink"
	"github.com/matzehuels/trafficmap/pkg/tiles"
)

const (
	// defaultConfigFile is read from the working directory when --config is
	// not given.
	defaultConfigFile = "trafficmap.toml"

	// dotenvFile is loaded into the environment when present.
	dotenvFile = ".env"

	// envPrefix prefixes every environment override.
	envPrefix = "TRAFFICMAP_"

	defaultServerAddr  = ":8080"
	defaultRedisPrefix = appName + ":"
)

// Cache backends.
const (
	backendFile  = "file"
	backendRedis = "redis"
	backendNone  = "none"
)

// Config is the layered CLI configuration: defaults, then the TOML file,
// then .env and TRAFFICMAP_* variables, then command-line flags.
type Config struct {
	Input         string       `toml:"input"`
	OutputDir     string       `toml:"output_dir"`
	Supersample   int          `toml:"supersample"`
	ImageEncoding string       `toml:"image_encoding"`
	GeoJSON       bool         `toml:"geojson"`
	Tiles         TilesConfig  `toml:"tiles"`
	Cache         CacheConfig  `toml:"cache"`
	Server        ServerConfig `toml:"server"`
}

// TilesConfig selects the basemap.
type TilesConfig struct {
	Provider  string `toml:"provider"`
	URL       string `toml:"url"`
	MaxZoom   int    `toml:"max_zoom"`
	UserAgent string `toml:"user_agent"`
}

// CacheConfig selects the tile cache backend.
type CacheConfig struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	TTL       time.Duration `toml:"ttl"`
	RedisAddr string        `toml:"redis_addr"`
	Namespace string        `toml:"namespace"` // prefixes tile keys
}

// ServerConfig configures `trafficmap serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Input:         tio.DefaultInput,
		OutputDir:     tio.DefaultOutputDir,
		Supersample:   pipeline.DefaultSupersample,
		ImageEncoding: pipeline.DefaultImageEncoding,
		Tiles:         TilesConfig{Provider: tiles.Positron.Name},
		Cache:         CacheConfig{Backend: backendFile, TTL: tiles.DefaultTTL},
		Server:        ServerConfig{Addr: defaultServerAddr},
	}
}

// LoadConfig builds the configuration from path (or ./trafficmap.toml when
// path is empty), .env and the environment. A missing default file is not an
// error; a missing explicit file is.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	if err := decodeConfigFile(path, &cfg); err != nil {
		if explicit || !stderrors.Is(err, fs.ErrNotExist) {
			return cfg, err
		}
	}

	if _, err := os.Stat(dotenvFile); err == nil {
		if err := godotenv.Load(dotenvFile); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", dotenvFile)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decodeConfigFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return err
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// applyEnv overlays TRAFFICMAP_* variables onto cfg.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"INPUT":            &cfg.Input,
		"OUTPUT_DIR":       &cfg.OutputDir,
		"IMAGE_ENCODING":   &cfg.ImageEncoding,
		"TILES_PROVIDER":   &cfg.Tiles.Provider,
		"TILES_URL":        &cfg.Tiles.URL,
		"TILES_USER_AGENT": &cfg.Tiles.UserAgent,
		"CACHE_BACKEND":    &cfg.Cache.Backend,
		"CACHE_DIR":        &cfg.Cache.Dir,
		"CACHE_REDIS_ADDR": &cfg.Cache.RedisAddr,
		"CACHE_NAMESPACE":  &cfg.Cache.Namespace,
		"SERVER_ADDR":      &cfg.Server.Addr,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SUPERSAMPLE":    &cfg.Supersample,
		"TILES_MAX_ZOOM": &cfg.Tiles.MaxZoom,
	}
	for name, dst := range ints {
		if v, ok := lookup(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s", envPrefix, name)
			}
			*dst = n
		}
	}

	if v, ok := lookup(envPrefix + "GEOJSON"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sGEOJSON", envPrefix)
		}
		cfg.GeoJSON = b
	}
	if v, ok := lookup(envPrefix + "CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%sCACHE_TTL", envPrefix)
		}
		cfg.Cache.TTL = d
	}
	return nil
}

// Validate checks values that are not validated further down the stack.
func (c Config) Validate() error {
	if err := errors.ValidateChoice("cache.backend", c.Cache.Backend, backendFile, backendRedis, backendNone); err != nil {
		return err
	}
	if c.Cache.Backend == backendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if _, err := sink.ParseEncoding(c.ImageEncoding); err != nil {
		return err
	}
	_, err := c.Provider()
	return err
}

// Provider resolves the configured tile provider.
func (c Config) Provider() (tiles.Provider, error) {
	return tiles.Resolve(c.Tiles.Provider, c.Tiles.URL, c.Tiles.MaxZoom)
}

// PipelineOptions returns the render options for this configuration.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Supersample:   c.Supersample,
		ImageEncoding: c.ImageEncoding,
		GeoJSON:       c.GeoJSON,
	}
}
