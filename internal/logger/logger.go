package logger

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/offices/internal/http"
	"github.com/wolfeidau/offices/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

func Setup(dev bool) zerolog.Logger {
	var logger zerolog.Logger
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

// Requests attaches a request scoped logger to the context and writes one log
// line per request once the handler returns. Handlers further down can add
// fields with zerolog.Ctx(ctx).UpdateContext and they show up on that line.
func Requests(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()

			ctx := logger.With().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("ip", httpmiddleware.ClientIPFromContext(r.Context())).
				Logger().WithContext(r.Context())

			rec := httpmiddleware.NewStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(ctx))

			elapsed := time.Since(started)

			telemetry.GetMetrics().RequestDuration.Record(ctx, float64(elapsed.Microseconds())/1000,
				metric.WithAttributes(
					attribute.String("method", r.Method),
					attribute.Int("status", rec.Status),
				))

			evt := zerolog.Ctx(ctx).Info()
			if rec.Status >= http.StatusInternalServerError {
				evt = zerolog.Ctx(ctx).Error()
			}

			evt.Int("status", rec.Status).
				Int("bytes", rec.Bytes).
				Dur("duration", elapsed).
				Msg("http request")
		})
	}
}
