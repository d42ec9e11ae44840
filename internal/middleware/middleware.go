package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"gitlab.ozon.dev/qwestard/orders-admin/internal/audit"
)

func BasicAuthMiddleware(user, pass string, methods ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !methodInList(r.Method, methods) {
				next.ServeHTTP(w, r)
				return
			}
			u, p, ok := r.BasicAuth()
			if !ok || u != user || p != pass {
				w.Header().Set("WWW-Authenticate", `Basic realm="orders"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LogMiddleware records matching requests both in the application log and
// in the audit pool. The pool may be nil when auditing is not wired (file
// store mode).
func LogMiddleware(log *zap.Logger, auditPool *audit.WorkerPool, methods ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if methodInList(r.Method, methods) {
				log.Info("incoming request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
				)
				if auditPool != nil {
					auditPool.Log(audit.Record{
						Timestamp: time.Now().UTC(),
						Endpoint:  r.URL.Path,
						Request:   r.Method + " " + r.URL.String(),
						Message:   "Request received",
					})
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func methodInList(method string, methods []string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}
