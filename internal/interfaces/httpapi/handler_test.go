package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/internal/domain/identity"
	"github.com/riskibarqy/club-league/internal/domain/wallet"
	"github.com/riskibarqy/club-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/club-league/internal/platform/id"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/riskibarqy/club-league/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeason = "2026"

type stubVerifier map[string]identity.Caller

func (s stubVerifier) VerifyAccessToken(_ context.Context, token string) (identity.Caller, error) {
	caller, ok := s[token]
	if !ok {
		return identity.Caller{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthorized)
	}
	return caller, nil
}

type envelope struct {
	APIVersion string         `json:"apiVersion"`
	Data       any            `json:"data"`
	Error      map[string]any `json:"error"`
}

type testServer struct {
	t      *testing.T
	clock  *clockwork.FakeClock
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	logger := logging.NewNop()
	fixtureRepo := memory.NewFixtureRepository(nil)
	clubRepo := memory.NewClubRepository(memory.SeedClubs())
	playerRepo := memory.NewPlayerRepository(memory.SeedPlayers())
	walletRepo := memory.NewWalletRepository()

	rosters := usecase.NewRosterCache(playerRepo, time.Minute, clock)
	players := usecase.NewPlayerService(playerRepo, clubRepo, rosters, id.NewUUIDGenerator("pl"))
	stats := usecase.NewStatsService(fixtureRepo, memory.NewPlayerStatRepository(), clock, logger, 2)
	standings := usecase.NewStandingsService(fixtureRepo, memory.NewStandingRepository())
	rankings := usecase.NewRankingService(memory.NewRankingRepository(nil), clubRepo, standings, clock)
	results := usecase.NewResultService(fixtureRepo, clubRepo, players, stats, nil, clock, logger)

	handler := NewHandler(Services{
		Fixtures:  usecase.NewFixtureService(fixtureRepo, clubRepo, id.NewUUIDGenerator("fx"), clock, logger, testSeason),
		Results:   results,
		Standings: standings,
		Stats:     stats,
		Rankings:  rankings,
		Wallets: usecase.NewWalletService(walletRepo, walletRepo.Awards(), clubRepo, rankings, usecase.WalletConfig{
			Season:      testSeason,
			SeedBalance: 500,
			Rates:       wallet.Rates{Elite: 300, Mid: 200, Bottom: 100},
		}, clock, logger),
		Sync:    usecase.NewMatchSyncService(nil, fixtureRepo, clubRepo, rosters, results, logger),
		Players: players,
	}, logger)

	verifier := stubVerifier{
		"admin": identity.Admin("ops"),
		"north": identity.Manager("mgr-north", memory.ClubIDNorthHarbour),
		"lions": identity.Manager("mgr-lions", memory.ClubIDRedLions),
	}
	return &testServer{
		t:      t,
		clock:  clock,
		router: NewRouter(handler, verifier, logger, true, nil),
	}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var out envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(s.t, sonic.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func dataMap(t *testing.T, e envelope) map[string]any {
	t.Helper()
	m, ok := e.Data.(map[string]any)
	require.Truef(t, ok, "expected object data, got %T", e.Data)
	return m
}

func TestRouter_FixtureLifecycle(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	status, body := srv.do(http.MethodPost, "/v1/fixtures", "admin", map[string]any{
		"homeClubId": memory.ClubIDNorthHarbour,
		"awayClubId": memory.ClubIDRedLions,
	})
	require.Equal(t, http.StatusCreated, status, body.Error)
	fixtureID, _ := dataMap(t, body)["id"].(string)
	require.NotEmpty(t, fixtureID)
	base := "/v1/fixtures/" + fixtureID

	kickoff := "2026-03-07T18:00:00Z"
	status, _ = srv.do(http.MethodPost, base+"/proposals", "north", map[string]any{"at": kickoff})
	require.Equal(t, http.StatusOK, status)

	status, body = srv.do(http.MethodPost, base+"/votes", "north", map[string]any{"at": kickoff, "agree": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, dataMap(t, body)["locked"])

	status, body = srv.do(http.MethodPost, base+"/votes", "lions", map[string]any{"at": "1772906400000", "agree": true})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, dataMap(t, body)["locked"])

	status, body = srv.do(http.MethodPut, base+"/lineup", "lions", map[string]any{
		"formation":   "4-4-2",
		"assignments": map[string]string{"GK": "pl-rl-01"},
	})
	require.Equal(t, http.StatusOK, status)
	lineups, _ := dataMap(t, body)["lineups"].(map[string]any)
	assert.Contains(t, lineups, memory.ClubIDRedLions)

	status, body = srv.do(http.MethodPost, base+"/result", "north", map[string]any{
		"homeScore": "3",
		"awayScore": 1,
		"home":      []map[string]any{{"playerId": "pl-nh-01", "goals": "2", "rating": "8.5"}},
	})
	require.Equal(t, http.StatusOK, status, body.Error)
	assert.Equal(t, "final", dataMap(t, body)["status"])

	status, body = srv.do(http.MethodGet, "/v1/seasons/"+testSeason+"/player-stats/pl-nh-01", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, dataMap(t, body)["goals"])

	status, body = srv.do(http.MethodGet, "/v1/seasons/"+testSeason+"/standings", "", nil)
	require.Equal(t, http.StatusOK, status)
	rows, _ := body.Data.([]any)
	require.Len(t, rows, 2)
	leader, _ := rows[0].(map[string]any)
	assert.Equal(t, memory.ClubIDNorthHarbour, leader["clubId"])
	assert.EqualValues(t, 3, leader["points"])

	status, _ = srv.do(http.MethodPost, base+"/proposals", "north", map[string]any{"at": "2026-03-08T18:00:00Z"})
	assert.Equal(t, http.StatusConflict, status)
}

func TestRouter_SubmitResultToleratesMalformedStatRow(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	status, body := srv.do(http.MethodPost, "/v1/fixtures", "admin", map[string]any{
		"homeClubId": memory.ClubIDNorthHarbour,
		"awayClubId": memory.ClubIDRedLions,
	})
	require.Equal(t, http.StatusCreated, status, body.Error)
	fixtureID, _ := dataMap(t, body)["id"].(string)

	status, body = srv.do(http.MethodPost, "/v1/fixtures/"+fixtureID+"/result", "north", map[string]any{
		"homeScore": 2,
		"awayScore": 0,
		"home": []map[string]any{
			{"playerId": "pl-nh-01", "goals": 2},
			{"playerId": "pl-nh-02", "goals": "two", "assists": 1},
		},
	})
	require.Equal(t, http.StatusOK, status, body.Error)
	assert.Equal(t, "final", dataMap(t, body)["status"])

	status, body = srv.do(http.MethodGet, "/v1/seasons/"+testSeason+"/player-stats/pl-nh-02", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, dataMap(t, body)["goals"])
	assert.EqualValues(t, 1, dataMap(t, body)["assists"])

	status, _ = srv.do(http.MethodPost, "/v1/fixtures/"+fixtureID+"/result", "admin", map[string]any{
		"homeScore": "two",
		"awayScore": 0,
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_AuthorizationErrors(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   any
		want   int
	}{
		{"anonymous create", http.MethodPost, "/v1/fixtures", "", map[string]any{"homeClubId": memory.ClubIDNorthHarbour, "awayClubId": memory.ClubIDRedLions}, http.StatusUnauthorized},
		{"manager create", http.MethodPost, "/v1/fixtures", "north", map[string]any{"homeClubId": memory.ClubIDNorthHarbour, "awayClubId": memory.ClubIDRedLions}, http.StatusForbidden},
		{"unknown token", http.MethodGet, "/v1/fixtures", "forged", nil, http.StatusUnauthorized},
		{"same clubs", http.MethodPost, "/v1/fixtures", "admin", map[string]any{"homeClubId": memory.ClubIDNorthHarbour, "awayClubId": memory.ClubIDNorthHarbour}, http.StatusBadRequest},
		{"missing fixture", http.MethodGet, "/v1/fixtures/fx-missing", "", nil, http.StatusNotFound},
		{"bad dry run", http.MethodPost, "/v1/seasons/2026/cup-bonuses?dry_run=maybe", "admin", nil, http.StatusBadRequest},
		{"sync without provider", http.MethodPost, "/v1/seasons/2026/sync", "admin", nil, http.StatusServiceUnavailable},
		{"other club wallet", http.MethodGet, "/v1/clubs/" + memory.ClubIDRedLions + "/wallet", "north", nil, http.StatusForbidden},
	}
	for _, tc := range cases {
		status, body := srv.do(tc.method, tc.path, tc.token, tc.body)
		assert.Equalf(t, tc.want, status, "%s: %v", tc.name, body.Error)
		if status >= http.StatusBadRequest {
			assert.Equalf(t, "2.0", body.APIVersion, "%s", tc.name)
			assert.NotNilf(t, body.Error, "%s", tc.name)
		}
	}
}

func TestRouter_WalletCollect(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	path := "/v1/clubs/" + memory.ClubIDNorthHarbour + "/wallet"

	status, body := srv.do(http.MethodGet, path+"/preview", "north", nil)
	require.Equal(t, http.StatusOK, status, body.Error)
	accrual, _ := dataMap(t, body)["accrual"].(map[string]any)
	assert.EqualValues(t, 1, accrual["days"])

	status, body = srv.do(http.MethodPost, path+"/collect", "north", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, dataMap(t, body)["applied"])

	status, body = srv.do(http.MethodPost, path+"/collect", "north", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, dataMap(t, body)["applied"])

	status, body = srv.do(http.MethodPost, path+"/adjust", "admin", map[string]any{"delta": -10000, "reason": "penalty"})
	assert.Equal(t, http.StatusConflict, status, body.Error)
}

func TestRouter_SystemRoutes(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	status, body := srv.do(http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", dataMap(t, body)["status"])

	req := httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/v1/fixtures/{fixtureID}/votes")
}
