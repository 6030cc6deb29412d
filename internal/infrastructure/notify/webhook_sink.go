package notify

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/club-league/internal/domain/news"
	"github.com/riskibarqy/club-league/internal/platform/cache"
	"github.com/riskibarqy/club-league/internal/platform/logging"
	"github.com/riskibarqy/club-league/internal/platform/resilience"
	"github.com/valyala/fasthttp"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultWorkers   = 4
	defaultDedupeTTL = 24 * time.Hour
)

var (
	errSinkTransient = crerr.New("notification sink transient failure")
	ErrSinkClosed    = crerr.New("notification sink closed")
)

type WebhookConfig struct {
	URL            string
	Timeout        time.Duration
	Retries        int
	Workers        int
	DedupeTTL      time.Duration
	Logger         *logging.Logger
	Clock          clockwork.Clock
	CircuitBreaker resilience.CircuitBreakerConfig
}

type payload struct {
	DedupeKey  string    `json:"dedupe_key"`
	Kind       string    `json:"kind"`
	Text       string    `json:"text"`
	Season     string    `json:"season,omitempty"`
	FixtureID  string    `json:"fixture_id"`
	ClubID     string    `json:"club_id,omitempty"`
	OpponentID string    `json:"opponent_id,omitempty"`
	PlayerID   string    `json:"player_id,omitempty"`
	PlayerName string    `json:"player_name,omitempty"`
	Value      float64   `json:"value"`
	HomeScore  int       `json:"home_score"`
	AwayScore  int       `json:"away_score"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WebhookSink posts news events to a webhook from a bounded worker pool.
// Events are delivered at least once; a key that was delivered within DedupeTTL is not posted again.
type WebhookSink struct {
	client         *fasthttp.Client
	url            string
	timeout        time.Duration
	retries        int
	pool           *ants.Pool
	delivered      *cache.Store[struct{}]
	logger         *logging.Logger
	clock          clockwork.Clock
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	inflight       sync.WaitGroup
}

func NewWebhookSink(cfg WebhookConfig) (*WebhookSink, error) {
	target := strings.TrimSpace(cfg.URL)
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return nil, crerr.Newf("notification webhook url %q must use http or https", target)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	dedupeTTL := cfg.DedupeTTL
	if dedupeTTL <= 0 {
		dedupeTTL = defaultDedupeTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, crerr.Wrap(err, "create notification worker pool")
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &WebhookSink{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		url:            target,
		timeout:        timeout,
		retries:        max(cfg.Retries, 0),
		pool:           pool,
		delivered:      cache.NewStore[struct{}](dedupeTTL, clock),
		logger:         logger,
		clock:          clock,
		breaker:        resilience.NewCircuitBreaker(breakerCfg, clock),
		circuitEnabled: breakerCfg.Enabled,
	}, nil
}

// Publish queues ev for delivery and returns without waiting for the webhook.
func (s *WebhookSink) Publish(ctx context.Context, ev news.Event) error {
	key := ev.DedupeKey()
	if !s.delivered.SetIfAbsent(ctx, key, struct{}{}) {
		return nil
	}

	deliveryCtx := context.WithoutCancel(ctx)
	s.inflight.Add(1)
	err := s.pool.Submit(func() {
		defer s.inflight.Done()
		if err := s.deliver(deliveryCtx, ev); err != nil {
			s.delivered.Delete(deliveryCtx, key)
			s.logger.WarnContext(deliveryCtx, "notification delivery failed", "dedupe_key", key, "kind", ev.Kind, "error", err)
		}
	})
	if err != nil {
		s.inflight.Done()
		s.delivered.Delete(ctx, key)
		if crerr.Is(err, ants.ErrPoolClosed) {
			return ErrSinkClosed
		}
		return crerr.Wrap(err, "queue notification")
	}
	return nil
}

// Close waits for queued deliveries or ctx, whichever comes first, then stops the pool.
func (s *WebhookSink) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = crerr.Wrap(ctx.Err(), "wait for notification deliveries")
	}
	s.pool.Release()
	return err
}

func (s *WebhookSink) deliver(ctx context.Context, ev news.Event) error {
	body, err := sonic.Marshal(payload{
		DedupeKey:  ev.DedupeKey(),
		Kind:       string(ev.Kind),
		Text:       RenderMessage(ev),
		Season:     ev.Season,
		FixtureID:  ev.FixtureID,
		ClubID:     ev.ClubID,
		OpponentID: ev.OpponentID,
		PlayerID:   ev.PlayerID,
		PlayerName: ev.PlayerName,
		Value:      ev.Value,
		HomeScore:  ev.HomeScore,
		AwayScore:  ev.AwayScore,
		OccurredAt: ev.OccurredAt.UTC(),
	})
	if err != nil {
		return crerr.Wrap(err, "marshal notification payload")
	}

	var lastErr error
	for attempt := 0; attempt <= s.retries; attempt++ {
		if lastErr = s.post(ctx, ev.DedupeKey(), body); lastErr == nil {
			return nil
		}
		if !crerr.Is(lastErr, errSinkTransient) || attempt == s.retries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(time.Duration(attempt+1) * 250 * time.Millisecond):
		}
	}
	return lastErr
}

func (s *WebhookSink) post(ctx context.Context, dedupeKey string, body []byte) error {
	if s.circuitEnabled {
		if err := s.breaker.Allow(); err != nil {
			s.logger.WarnContext(ctx, "notification circuit breaker rejected request", "state", s.breaker.State())
			return crerr.Wrap(err, "notification sink unavailable")
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Idempotency-Key", dedupeKey)
	req.SetBody(body)

	var callErr error
	if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
		callErr = crerr.Mark(crerr.Wrap(err, "post notification"), errSinkTransient)
	} else if code := resp.StatusCode(); code < 200 || code >= 300 {
		callErr = crerr.Newf("notification webhook status=%d", code)
		if code == fasthttp.StatusTooManyRequests || code >= fasthttp.StatusInternalServerError {
			callErr = crerr.Mark(callErr, errSinkTransient)
		}
	}

	if s.circuitEnabled {
		s.breaker.Record(callErr, func(err error) bool { return crerr.Is(err, errSinkTransient) })
	}
	return callErr
}
