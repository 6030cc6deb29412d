package observability

import (
	"context"
	"net/http"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/club-league/internal/config"
	"github.com/riskibarqy/club-league/internal/platform/logging"
)

// Runtime holds the process-wide telemetry hooks started at boot.
type Runtime struct {
	stopUptrace   func(context.Context) error
	stopPyroscope func() error
	pprof         *http.Server
	logger        *logging.Logger
}

// Start brings up tracing, profiling and the pprof listener in that order.
// Anything started before a failure is stopped again.
func Start(cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("observability")

	stopUptrace, err := InitUptrace(cfg, logger)
	if err != nil {
		return nil, err
	}
	stopPyroscope, err := InitPyroscope(cfg, logger)
	if err != nil {
		_ = stopUptrace(context.Background())
		return nil, err
	}

	return &Runtime{
		stopUptrace:   stopUptrace,
		stopPyroscope: stopPyroscope,
		pprof:         StartPprofServer(cfg, logger),
		logger:        logger,
	}, nil
}

// Shutdown flushes exporters and stops profilers. All hooks run even if one fails.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}

	var out error
	if err := StopPprofServer(ctx, r.pprof); err != nil {
		out = crerr.CombineErrors(out, crerr.Wrap(err, "stop pprof"))
	}
	if err := r.stopPyroscope(); err != nil {
		out = crerr.CombineErrors(out, crerr.Wrap(err, "stop pyroscope"))
	}
	if err := r.stopUptrace(ctx); err != nil {
		out = crerr.CombineErrors(out, crerr.Wrap(err, "shutdown uptrace"))
	}
	if out == nil {
		r.logger.Info("observability stopped")
	}
	return out
}
