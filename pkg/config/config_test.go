package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafarimam8588/ayo-portal/pkg/config"
)

type testConfig struct {
	Name  string `env:"CONFIG_TEST_NAME" envDefault:"portal"`
	Port  int    `env:"CONFIG_TEST_PORT" envDefault:"8080"`
	Debug bool   `env:"CONFIG_TEST_DEBUG" envDefault:"false"`
}

type overrideConfig struct {
	Value string `env:"CONFIG_TEST_OVERRIDE" envDefault:"fallback"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, config.Load(&cfg))

	assert.Equal(t, "portal", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.Debug)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CONFIG_TEST_OVERRIDE", "from-env")

	var cfg overrideConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "from-env", cfg.Value)
}

func TestLoad_CachedAcrossCalls(t *testing.T) {
	var first testConfig
	require.NoError(t, config.Load(&first))

	// Changing the environment after the first load must not change the
	// cached value.
	t.Setenv("CONFIG_TEST_NAME", "changed")

	var second testConfig
	require.NoError(t, config.Load(&second))
	assert.Equal(t, first.Name, second.Name)
}

func TestLoad_NilPointer(t *testing.T) {
	err := config.Load[testConfig](nil)
	assert.ErrorIs(t, err, config.ErrNilPointer)
}

func TestMustLoad_PanicsOnBadValue(t *testing.T) {
	t.Setenv("CONFIG_TEST_BROKEN_PORT", "not-a-number")

	type brokenConfig struct {
		Port int `env:"CONFIG_TEST_BROKEN_PORT"`
	}

	assert.Panics(t, func() {
		var cfg brokenConfig
		config.MustLoad(&cfg)
	})
}
