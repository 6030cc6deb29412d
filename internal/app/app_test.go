package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/riskibarqy/club-league/internal/config"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:            config.EnvDev,
		HTTPAddr:          ":0",
		StorageDriver:     config.StorageMemory,
		CacheTTL:          time.Minute,
		LeagueSeason:      "2026",
		StatsWorkers:      2,
		WalletSeedBalance: 500,
		WalletRateElite:   300,
		WalletRateMid:     200,
		WalletRateBottom:  100,
	}
}

func TestNew_MemoryStorage(t *testing.T) {
	a, err := New(context.Background(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	assert.Nil(t, a.Scheduler)

	rec := httptest.NewRecorder()
	a.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/fixtures?season=2026", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/fixtures", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	a.Server.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "tokens cannot be verified without an identity service")
}

func TestNew_RefreshScheduler(t *testing.T) {
	cfg := memoryConfig()
	cfg.RefreshCron = "*/30 * * * *"

	a, err := New(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	require.NotNil(t, a.Scheduler)
	require.NoError(t, a.Scheduler.RunOnce(context.Background()))
}

func TestNew_RejectsEmptyAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""

	_, err := New(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestNew_NotifyRequiresHTTPURL(t *testing.T) {
	cfg := memoryConfig()
	cfg.NotifyEnabled = true
	cfg.NotifyWebhookURL = "ftp://hooks.example.com"

	_, err := New(context.Background(), cfg, logging.NewNop())
	assert.Error(t, err)
}
