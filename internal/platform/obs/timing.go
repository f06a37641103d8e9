package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	RunIDKey     ctxKey = "run_id"
)

// WithRunID tags ctx so that timings and logs below it carry the planning run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

func WithRequestID(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, reqID)
}

// Logger returns the global logger enriched with the request and run ids in ctx.
func Logger(ctx context.Context) *zerolog.Logger {
	lc := log.Logger.With()
	if reqID, ok := ctx.Value(RequestIDKey).(string); ok && reqID != "" {
		lc = lc.Str("req_id", reqID)
	}
	if runID, ok := ctx.Value(RunIDKey).(string); ok && runID != "" {
		lc = lc.Str("run_id", runID)
	}
	l := lc.Logger()
	return &l
}

// Time logs the duration of op when the returned func runs, along with the
// error it points at. Usage: defer obs.Time(ctx, "op")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)
		opDuration.WithLabelValues(name).Observe(dur.Seconds())

		if errp != nil && *errp != nil {
			Logger(ctx).Warn().Str("op", name).Dur("dur", dur).Err(*errp).Msg("op failed")
			return
		}
		Logger(ctx).Debug().Str("op", name).Dur("dur", dur).Msg("op done")
	}
}
