package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// configCache stores parsed configurations keyed by type and prefix.
type configCache struct {
	mu     sync.RWMutex
	values map[string]any
}

var (
	globalCache = &configCache{values: make(map[string]any)}

	defaultEnvLoaded sync.Once
)

type loadOptions struct {
	prefix  string
	noCache bool
}

// Option changes how a single Load call parses the environment.
type Option func(*loadOptions)

// WithPrefix prepends prefix to every env tag of the struct, so one struct
// type can be loaded for several components ("SCAN_", "API_").
func WithPrefix(prefix string) Option {
	return func(o *loadOptions) { o.prefix = prefix }
}

// WithoutCache parses the environment even when the type was loaded before
// and does not store the result.
func WithoutCache() Option {
	return func(o *loadOptions) { o.noCache = true }
}

// Load parses environment variables into v according to its env tags.
// The default .env file is read once per process if present. Each type and
// prefix pair is parsed once; later calls return the cached copy.
//
//	type ScanConfig struct {
//		SpecDir  string `env:"SPEC_DIR" envDefault:"./machines"`
//		MaxSteps int    `env:"MAX_STEPS" envDefault:"1000000"`
//	}
//
//	var cfg ScanConfig
//	if err := config.Load(&cfg, config.WithPrefix("SCANKIT_")); err != nil {
//		return err
//	}
func Load[T any](v *T, opts ...Option) error {
	defaultEnvLoaded.Do(func() {
		// a missing .env is fine
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	var o loadOptions
	for _, opt := range opts {
		opt(&o)
	}
	key := typeName[T]() + "|" + o.prefix

	if !o.noCache {
		globalCache.mu.RLock()
		cached, ok := globalCache.values[key]
		globalCache.mu.RUnlock()
		if ok {
			*v = cached.(T)
			return nil
		}
	}

	var parsed T
	if err := env.ParseWithOptions(&parsed, env.Options{Prefix: o.prefix}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}

	if !o.noCache {
		globalCache.mu.Lock()
		// first writer wins so every caller sees the same copy
		if cached, ok := globalCache.values[key]; ok {
			parsed = cached.(T)
		} else {
			globalCache.values[key] = parsed
		}
		globalCache.mu.Unlock()
	}

	*v = parsed
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](v *T, opts ...Option) {
	if err := Load(v, opts...); err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
}

// LoadEnv reads the given .env files into the process environment without
// overriding variables that are already set.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}

// ResetCache forgets every cached configuration.
func ResetCache() {
	globalCache.mu.Lock()
	defer globalCache.mu.Unlock()
	globalCache.values = make(map[string]any)
}

func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
