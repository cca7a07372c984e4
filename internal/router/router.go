package router

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/Party4Bread/academy-core-go/internal/academy"
	"github.com/Party4Bread/academy-core-go/internal/license"
	"github.com/Party4Bread/academy-core-go/internal/score"
	"github.com/Party4Bread/academy-core-go/internal/student"
)

// statusRecorder captures the status and body size a handler wrote.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	n, err := rec.ResponseWriter.Write(b)
	rec.size += n
	return n, err
}

// LoggingMiddleware logs every request at debug level with method,
// path, status, duration and response size.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			// handlers that never write leave status at the zero value
			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", rec.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets a conservative baseline of response
// headers. Handlers may set a stricter Content-Security-Policy first;
// it is only defaulted when absent.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer-when-downgrade")
			if h.Get("Content-Security-Policy") == "" {
				h.Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			// HSTS only makes sense over TLS; 30 days
			if r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
// Each domain handler wires its own default service over the shared db handle.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /academy-api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	licenseHandler := license.NewHandler(db, logger)
	mux.HandleFunc("POST /academy-api/licenses", licenseHandler.Create)
	mux.HandleFunc("GET /academy-api/licenses/{key}", licenseHandler.GetByKey)
	mux.HandleFunc("POST /academy-api/licenses/{key}/touch", licenseHandler.Touch)

	academyHandler := academy.NewHandler(db, logger)
	mux.HandleFunc("POST /academy-api/academies", academyHandler.Create)
	mux.HandleFunc("PUT /academy-api/academies/{id}/license", academyHandler.AssignLicense)
	mux.HandleFunc("PATCH /academy-api/academies/{id}", academyHandler.ChangeInfo)
	mux.HandleFunc("POST /academy-api/academies/{id}/token", academyHandler.Token)

	studentHandler := student.NewHandler(db, logger)
	mux.HandleFunc("POST /academy-api/login", studentHandler.Login)
	mux.HandleFunc("POST /academy-api/students", studentHandler.Create)
	mux.HandleFunc("POST /academy-api/students/{id}/password", studentHandler.ResetPassword)
	mux.HandleFunc("PATCH /academy-api/students/{id}", studentHandler.ChangeInfo)

	scoreHandler := score.NewHandler(db, logger)
	mux.HandleFunc("GET /academy-api/scores", scoreHandler.List)
	mux.HandleFunc("POST /academy-api/problems", scoreHandler.CreateProblem)
	mux.HandleFunc("POST /academy-api/answers", scoreHandler.RecordAnswer)
	mux.HandleFunc("POST /academy-api/scores", scoreHandler.GrantScore)

	// wrap with security headers middleware then logging middleware
	handler := LoggingMiddleware(logger)(SecurityHeadersMiddleware()(mux))
	return handler
}
