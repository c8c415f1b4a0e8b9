package observability

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// InitLogger configures the global zerolog logger: human-readable console
// output in development, JSON with timestamp and caller elsewhere.
func InitLogger(serviceName, env string) {
	InitLoggerTo(os.Stdout, serviceName, env)
}

// InitLoggerTo is InitLogger with an explicit destination
func InitLoggerTo(w io.Writer, serviceName, env string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if env == "development" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Str("service", serviceName).
			Logger()
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}

	log.Logger = zerolog.New(w).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// LoggerFromContext returns the global logger annotated with the trace and
// span ids of ctx, when present
func LoggerFromContext(ctx context.Context) *zerolog.Logger {
	logger := log.With().Logger()

	sc := trace.SpanFromContext(ctx).SpanContext()
	if sc.IsValid() {
		logger = logger.With().
			Str("trace_id", sc.TraceID().String()).
			Str("span_id", sc.SpanID().String()).
			Logger()
	}

	return &logger
}
