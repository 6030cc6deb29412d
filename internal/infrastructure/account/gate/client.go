package gate

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/internal/domain/identity"
	"github.com/riskibarqy/club-league/internal/platform/cache"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/riskibarqy/club-league/internal/platform/resilience"
	"github.com/riskibarqy/club-league/internal/usecase"
)

var errGateTransient = crerr.New("identity gate transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	IntrospectPath string
	Timeout        time.Duration
	CacheTTL       time.Duration
	Logger         *logging.Logger
	Clock          clockwork.Clock
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client resolves bearer tokens into callers through the identity gate's introspection endpoint.
type Client struct {
	httpClient     *http.Client
	introspectURL  string
	logger         *logging.Logger
	callers        *cache.Store[identity.Caller]
	cacheEnabled   bool
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		introspectURL:  buildURL(cfg.BaseURL, cfg.IntrospectPath),
		logger:         logger,
		callers:        cache.NewStore[identity.Caller](cfg.CacheTTL, cfg.Clock),
		cacheEnabled:   cfg.CacheTTL > 0,
		breaker:        resilience.NewCircuitBreaker(breakerCfg, cfg.Clock),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (identity.Caller, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return identity.Caller{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	key := hashToken(token)
	if c.cacheEnabled {
		if caller, ok := c.callers.Get(ctx, key); ok {
			return caller, nil
		}
	}

	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "identity gate circuit breaker rejected request", "state", c.breaker.State())
			return identity.Caller{}, fmt.Errorf("%w: identity gate is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	caller, err := c.introspect(ctx, token)
	if c.circuitEnabled {
		c.breaker.Record(err, func(err error) bool { return crerr.Is(err, errGateTransient) })
	}
	if err != nil {
		if crerr.Is(err, errGateTransient) {
			return identity.Caller{}, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		return identity.Caller{}, err
	}

	if c.cacheEnabled {
		c.callers.Set(ctx, key, caller)
	}
	return caller, nil
}

func (c *Client) introspect(ctx context.Context, token string) (identity.Caller, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return identity.Caller{}, crerr.Wrap(err, "marshal introspect request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return identity.Caller{}, crerr.Wrap(err, "create introspect request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return identity.Caller{}, crerr.Mark(crerr.Wrap(err, "request introspection"), errGateTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return identity.Caller{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return identity.Caller{}, crerr.Mark(crerr.Wrap(err, "read introspect response"), errGateTransient)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.WarnContext(ctx, "identity gate introspection non-200", "status_code", resp.StatusCode)
		callErr := crerr.Newf("introspection failed with status %d", resp.StatusCode)
		if resp.StatusCode >= http.StatusInternalServerError {
			callErr = crerr.Mark(callErr, errGateTransient)
		}
		return identity.Caller{}, callErr
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return identity.Caller{}, crerr.Wrap(err, "unmarshal introspect response")
	}
	if !decoded.Active {
		return identity.Caller{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}

	subject := strings.TrimSpace(decoded.Subject)
	if subject == "" {
		return identity.Caller{}, crerr.New("invalid introspect response: sub is empty")
	}
	switch identity.ParseRole(decoded.Role) {
	case identity.RoleAdmin:
		return identity.Admin(subject), nil
	case identity.RoleManager:
		if strings.TrimSpace(decoded.ClubID) == "" {
			return identity.Caller{}, fmt.Errorf("%w: manager token carries no club", usecase.ErrUnauthorized)
		}
		return identity.Manager(subject, decoded.ClubID), nil
	default:
		return identity.Caller{Subject: subject}, nil
	}
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active  bool   `json:"active"`
	Subject string `json:"sub"`
	Role    string `json:"role"`
	ClubID  string `json:"club_id"`
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}
