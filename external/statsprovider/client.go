package statsprovider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/riskibarqy/club-league/internal/platform/resilience"
	"github.com/riskibarqy/club-league/internal/usecase"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout           = 10 * time.Second
	defaultRequestsPerMinute = 60
	defaultFanOut            = 4
	maxBodyBytes             = 4 << 20
)

var errProviderTransient = crerr.New("statistics provider transient failure")

type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	Token             string
	Timeout           time.Duration
	MaxRetries        int
	RequestsPerMinute int
	FanOut            int
	Logger            *logging.Logger
	Clock             clockwork.Clock
	CircuitBreaker    resilience.CircuitBreakerConfig
}

// Client reads recent finished matches per club from the statistics provider.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	fanOut         int
	limiter        *rate.Limiter
	logger         *logging.Logger
	clock          clockwork.Clock
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         singleflight.Group
}

func NewClient(cfg ClientConfig) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, crerr.New("statistics provider base url is required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, crerr.Wrap(err, "parse statistics provider base url")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	perMinute := cfg.RequestsPerMinute
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}
	fanOut := cfg.FanOut
	if fanOut <= 0 {
		fanOut = defaultFanOut
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxRetries,
		fanOut:         fanOut,
		limiter:        rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), fanOut),
		logger:         logger,
		clock:          clock,
		breaker:        resilience.NewCircuitBreaker(breakerCfg, clock),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

// FetchRecentMatches queries every club reference concurrently and merges the results.
// A match between two tracked clubs is returned once. Any failed club fails the whole call.
func (c *Client) FetchRecentMatches(ctx context.Context, clubExternalRefs []string) ([]usecase.ProviderMatch, error) {
	refs := uniqueRefs(clubExternalRefs)
	if len(refs) == 0 {
		return nil, nil
	}

	p := pool.NewWithResults[[]usecase.ProviderMatch]().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(c.fanOut)
	for _, ref := range refs {
		p.Go(func(ctx context.Context) ([]usecase.ProviderMatch, error) {
			return c.fetchClub(ctx, ref)
		})
	}
	batches, err := p.Wait()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]usecase.ProviderMatch, 0)
	for _, batch := range batches {
		for _, item := range batch {
			if _, dup := seen[item.ExternalID]; dup {
				continue
			}
			seen[item.ExternalID] = struct{}{}
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PlayedAt.Equal(out[j].PlayedAt) {
			return out[i].PlayedAt.Before(out[j].PlayedAt)
		}
		return out[i].ExternalID < out[j].ExternalID
	})
	return out, nil
}

func (c *Client) fetchClub(ctx context.Context, ref string) ([]usecase.ProviderMatch, error) {
	path := "/clubs/" + url.PathEscape(ref) + "/matches/recent"
	out, err, _ := c.flight.Do(path, func() (any, error) {
		raw, err := c.get(ctx, path)
		if err != nil {
			return nil, err
		}
		var envelope recentMatchesEnvelope
		if err := sonic.Unmarshal(raw, &envelope); err != nil {
			return nil, crerr.Wrapf(err, "decode recent matches club=%s", ref)
		}
		return mapMatches(envelope.Data), nil
	})
	if err != nil {
		return nil, err
	}
	matches, ok := out.([]usecase.ProviderMatch)
	if !ok {
		return nil, crerr.Newf("unexpected recent matches payload type %T", out)
	}
	return matches, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "statistics provider circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: statistics provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	raw, err := c.execute(ctx, c.baseURL+path)
	if c.circuitEnabled {
		c.breaker.Record(err, isTransient)
	}
	return raw, err
}

func (c *Client) execute(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, crerr.Wrap(err, "wait for provider rate limit")
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build provider request")
		}
		req.Header.Set("Accept", "application/json")
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = crerr.Mark(crerr.Wrap(err, "send provider request"), errProviderTransient)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Mark(crerr.Wrap(readErr, "read provider response"), errProviderTransient)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Mark(crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviate(raw)), errProviderTransient)
			default:
				return nil, crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviate(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.clock.After(time.Duration(attempt+1) * 200 * time.Millisecond):
		}
	}

	c.logger.WarnContext(ctx, "statistics provider request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func mapMatches(items []matchItem) []usecase.ProviderMatch {
	out := make([]usecase.ProviderMatch, 0, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.ID)
		if id == "" || !item.finished() {
			continue
		}
		out = append(out, usecase.ProviderMatch{
			ExternalID:      id,
			HomeExternalRef: strings.TrimSpace(item.Home.ClubRef),
			AwayExternalRef: strings.TrimSpace(item.Away.ClubRef),
			HomeScore:       item.Home.Score.Int(),
			AwayScore:       item.Away.Score.Int(),
			PlayedAt:        parsePlayedAt(item.PlayedAt),
			Home:            mapLines(item.Home.Players),
			Away:            mapLines(item.Away.Players),
		})
	}
	return out
}

func mapLines(items []playerItem) []usecase.ProviderPlayerLine {
	out := make([]usecase.ProviderPlayerLine, 0, len(items))
	for _, item := range items {
		out = append(out, usecase.ProviderPlayerLine{
			ExternalRef: strings.TrimSpace(item.Ref),
			Name:        strings.TrimSpace(item.Name),
			Goals:       item.Goals.Int(),
			Assists:     item.Assists.Int(),
			Rating:      item.Rating.Float(),
		})
	}
	return out
}

func uniqueRefs(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}

func isTransient(err error) bool {
	return crerr.Is(err, errProviderTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviate(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
