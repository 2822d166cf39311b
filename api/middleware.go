package api

import (
	"net/http"
	"time"

	"github.com/rs/cors"
)

type middlewareFunc func(next http.Handler) http.Handler

func useMiddlewares(h http.Handler, middlewares ...middlewareFunc) http.Handler {
	for _, mw := range middlewares {
		h = mw(h)
	}
	return h
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rec *statusRecorder) WriteHeader(statusCode int) {
	rec.statusCode = statusCode
	rec.ResponseWriter.WriteHeader(statusCode)
}

func (a *API) loggingMiddleware() middlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rec, r)

			a.logger.Info("Access log",
				"method", r.Method,
				"path", r.URL.Path,
				"status-code", rec.statusCode,
				"latency", time.Since(start).Round(time.Microsecond).String(),
			)
		})
	}
}

func (a *API) corsMiddleware() middlewareFunc {
	if len(a.cfg.AllowedOrigins) == 0 {
		return cors.AllowAll().Handler
	}

	return cors.New(cors.Options{
		AllowedOrigins: a.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		MaxAge:         300,
	}).Handler
}
