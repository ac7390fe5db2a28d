package logger

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup configures the process logger. Dev mode switches to the console
// writer with debug level and stack traces.
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

// statusRecorder captures the response status for the request log line.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Requests returns a middleware that binds the logger to the request
// context and logs one line per request with method, path, status and
// duration.
func Requests(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()

			ctx := logger.With().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger().WithContext(r.Context())

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(ctx))

			evt := zerolog.Ctx(ctx).Info()
			if rec.status >= http.StatusInternalServerError {
				evt = zerolog.Ctx(ctx).Error()
			}
			evt.Int("status", rec.status).
				Dur("duration", time.Since(started)).
				Msg("http request")
		})
	}
}
