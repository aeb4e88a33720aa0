package config

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig_Defaults(t *testing.T) {
	cfg, err := readConfig(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.Addr)
	assert.Equal(t, defaultDBDsn, cfg.DBDsn)
	assert.Equal(t, defaultMigratePath, cfg.MigratePath)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, int32(20), cfg.DBMaxConns)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.InMemory)
	assert.Nil(t, cfg.TrustedProxies)
}

func TestReadConfig_Flags(t *testing.T) {
	args := []string{"-addr", "0.0.0.0", "-port", "9090", "-debug", "-mem", "-bcrypt-cost", "4", "-db", "postgres://x/shop"}
	cfg, err := readConfig(flag.NewFlagSet("test", flag.ContinueOnError), args)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)
	assert.Equal(t, "postgres://x/shop", cfg.DBDsn)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.InMemory)
}

func TestReadConfig_EnvOverridesFlags(t *testing.T) {
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("DB_DSN", "postgres://env/bd")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("AUTH_RPS", "0.5")

	cfg, err := readConfig(flag.NewFlagSet("test", flag.ContinueOnError), []string{"-port", "9090"})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:3000", cfg.Addr)
	assert.Equal(t, "postgres://env/bd", cfg.DBDsn)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.InDelta(t, 0.5, cfg.AuthRPS, 1e-9)
}

func TestReadConfig_BadPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")

	_, err := readConfig(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	assert.Error(t, err)
}

func TestReadConfig_TrustedProxies(t *testing.T) {
	args := []string{"-trusted-proxies", "10.0.0.1, 10.1.0.0/16,"}
	cfg, err := readConfig(flag.NewFlagSet("test", flag.ContinueOnError), args)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "10.1.0.0/16"}, cfg.TrustedProxies)

	t.Setenv("TRUSTED_PROXIES", "192.168.0.10")
	cfg, err = readConfig(flag.NewFlagSet("test", flag.ContinueOnError), args)
	require.NoError(t, err)
	assert.Equal(t, []string{"192.168.0.10"}, cfg.TrustedProxies)
}
