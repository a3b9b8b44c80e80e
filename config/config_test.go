package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/auction?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "secret")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "")
	t.Setenv("AUCTION_DEFAULT_BUDGET", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.ServerPort)
	require.Equal(t, 1000, cfg.AuctionDefaultBudget)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET_KEY", "secret")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/auction")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadValidatesServerPort(t *testing.T) {
	setRequiredEnv(t)

	for _, port := range []string{"abc", "0", "-1", "70000"} {
		t.Setenv("SERVER_PORT", port)
		_, err := Load()
		require.Error(t, err, "port %q must be rejected", port)
	}

	t.Setenv("SERVER_PORT", "9191")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.ServerPort)
}

func TestLoadValidatesDefaultBudget(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("SERVER_PORT", "")

	for _, budget := range []string{"abc", "0", "-5"} {
		t.Setenv("AUCTION_DEFAULT_BUDGET", budget)
		_, err := Load()
		require.Error(t, err, "budget %q must be rejected", budget)
	}

	t.Setenv("AUCTION_DEFAULT_BUDGET", "2500")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 2500, cfg.AuctionDefaultBudget)
}
