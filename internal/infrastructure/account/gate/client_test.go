package gate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/internal/domain/identity"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/riskibarqy/club-league/internal/platform/resilience"
	"github.com/riskibarqy/club-league/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateServer(t *testing.T, calls *int32, handler func(w http.ResponseWriter, token string)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		if r.Method != http.MethodPost || r.URL.Path != "/v1/introspect" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req map[string]string
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		handler(w, req["token"])
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server, cacheTTL time.Duration, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		IntrospectPath: "v1/introspect",
		CacheTTL:       cacheTTL,
		Logger:         logging.NewNop(),
		Clock:          clockwork.NewFakeClock(),
		CircuitBreaker: breaker,
	})
}

func TestClientVerifyAccessToken_ParsesRoles(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := newGateServer(t, &calls, func(w http.ResponseWriter, token string) {
		switch token {
		case "admin-token":
			_, _ = w.Write([]byte(`{"active":true,"sub":"ops-1","role":"administrator"}`))
		case "manager-token":
			_, _ = w.Write([]byte(`{"active":true,"sub":"mgr-7","role":"club_manager","club_id":"club-north-harbour"}`))
		default:
			_, _ = w.Write([]byte(`{"active":true,"sub":"viewer-3","role":"viewer"}`))
		}
	})
	client := newTestClient(srv, 0, resilience.CircuitBreakerConfig{})
	ctx := context.Background()

	admin, err := client.VerifyAccessToken(ctx, "admin-token")
	require.NoError(t, err)
	assert.Equal(t, identity.Admin("ops-1"), admin)

	manager, err := client.VerifyAccessToken(ctx, " manager-token ")
	require.NoError(t, err)
	assert.True(t, manager.ManagesClub("club-north-harbour"))

	viewer, err := client.VerifyAccessToken(ctx, "viewer-token")
	require.NoError(t, err)
	assert.True(t, viewer.IsAnonymous())
	assert.Equal(t, "viewer-3", viewer.Subject)
}

func TestClientVerifyAccessToken_RejectsInactiveAndDenied(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := newGateServer(t, &calls, func(w http.ResponseWriter, token string) {
		switch token {
		case "revoked":
			_, _ = w.Write([]byte(`{"active":false}`))
		case "orphan-manager":
			_, _ = w.Write([]byte(`{"active":true,"sub":"mgr-9","role":"manager"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	client := newTestClient(srv, 0, resilience.CircuitBreakerConfig{})

	for _, token := range []string{"revoked", "orphan-manager", "forged", "  "} {
		_, err := client.VerifyAccessToken(context.Background(), token)
		assert.Truef(t, errors.Is(err, usecase.ErrUnauthorized), "token %q: got %v", token, err)
	}
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClientVerifyAccessToken_CachesByTokenHash(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := newGateServer(t, &calls, func(w http.ResponseWriter, _ string) {
		_, _ = w.Write([]byte(`{"active":true,"sub":"ops-1","role":"admin"}`))
	})
	client := newTestClient(srv, time.Minute, resilience.CircuitBreakerConfig{})

	for i := 0; i < 3; i++ {
		caller, err := client.VerifyAccessToken(context.Background(), "cached-token")
		require.NoError(t, err)
		require.True(t, caller.IsAdmin())
	}
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClientVerifyAccessToken_OpensCircuitOnServerErrors(t *testing.T) {
	t.Parallel()

	var calls int32
	srv := newGateServer(t, &calls, func(w http.ResponseWriter, _ string) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client := newTestClient(srv, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 3; i++ {
		_, err := client.VerifyAccessToken(context.Background(), "token")
		assert.Truef(t, errors.Is(err, usecase.ErrDependencyUnavailable), "call %d: got %v", i, err)
	}
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestBuildURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://gate.local/v1/introspect", buildURL("https://gate.local/", "v1/introspect"))
	assert.Equal(t, "https://other.local/x", buildURL("https://gate.local", "https://other.local/x"))
	assert.Equal(t, "https://gate.local", buildURL("https://gate.local/", ""))
}
