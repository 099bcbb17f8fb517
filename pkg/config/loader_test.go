package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scankit/pkg/config"
)

type scanDefaults struct {
	SpecDir  string        `env:"SPEC_DIR" envDefault:"./machines"`
	MaxSteps int           `env:"MAX_STEPS" envDefault:"1000000"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"5s"`
	Trace    bool          `env:"TRACE" envDefault:"false"`
}

type cachedConfig struct {
	Value string `env:"CONFIG_CACHED_VALUE"`
}

type requiredConfig struct {
	Bucket string `env:"CONFIG_REQUIRED_BUCKET,required"`
}

type fileConfig struct {
	SpecDir  string   `env:"SPEC_DIR"`
	Machines []string `env:"MACHINES" envSeparator:","`
	Quoted   string   `env:"QUOTED"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg scanDefaults
	err := config.Load(&cfg, config.WithPrefix("CONFIG_DEFAULTS_"), config.WithoutCache())
	require.NoError(t, err)

	assert.Equal(t, "./machines", cfg.SpecDir)
	assert.Equal(t, 1000000, cfg.MaxSteps)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.False(t, cfg.Trace)
}

func TestLoad_Prefix(t *testing.T) {
	t.Setenv("CONFIG_PREFIX_A_SPEC_DIR", "/a")
	t.Setenv("CONFIG_PREFIX_B_SPEC_DIR", "/b")
	t.Setenv("CONFIG_PREFIX_B_MAX_STEPS", "10")

	var a, b scanDefaults
	require.NoError(t, config.Load(&a, config.WithPrefix("CONFIG_PREFIX_A_")))
	require.NoError(t, config.Load(&b, config.WithPrefix("CONFIG_PREFIX_B_")))

	assert.Equal(t, "/a", a.SpecDir)
	assert.Equal(t, 1000000, a.MaxSteps)
	assert.Equal(t, "/b", b.SpecDir)
	assert.Equal(t, 10, b.MaxSteps)
}

func TestLoad_Cached(t *testing.T) {
	config.ResetCache()
	t.Setenv("CONFIG_CACHED_VALUE", "first")

	var first cachedConfig
	require.NoError(t, config.Load(&first))

	t.Setenv("CONFIG_CACHED_VALUE", "second")

	var second cachedConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, "first", second.Value)

	var fresh cachedConfig
	require.NoError(t, config.Load(&fresh, config.WithoutCache()))
	assert.Equal(t, "second", fresh.Value)

	config.ResetCache()
	var reloaded cachedConfig
	require.NoError(t, config.Load(&reloaded))
	assert.Equal(t, "second", reloaded.Value)
}

func TestLoad_MissingRequired(t *testing.T) {
	var cfg requiredConfig
	err := config.Load(&cfg, config.WithoutCache())

	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrParsingConfig)
	assert.Panics(t, func() { config.MustLoad(&cfg, config.WithoutCache()) })
}

func TestLoad_NilPointer(t *testing.T) {
	var cfg *scanDefaults
	assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
}

func TestLoadEnv(t *testing.T) {
	require.NoError(t, config.LoadEnv("testdata/.env.test"))
	t.Cleanup(func() {
		for _, k := range []string{"SCANKIT_TEST_SPEC_DIR", "SCANKIT_TEST_MACHINES", "SCANKIT_TEST_QUOTED"} {
			os.Unsetenv(k)
		}
	})

	var cfg fileConfig
	require.NoError(t, config.Load(&cfg, config.WithPrefix("SCANKIT_TEST_"), config.WithoutCache()))
	assert.Equal(t, "/srv/machines", cfg.SpecDir)
	assert.Equal(t, []string{"json", "csv", "ini"}, cfg.Machines)
	assert.Equal(t, "quoted value", cfg.Quoted)

	assert.ErrorIs(t, config.LoadEnv("testdata/missing.env"), config.ErrLoadingEnvFile)
	assert.NoError(t, config.LoadEnv())
}
