package app

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/neontemple/temple-site/internal/config"
	log "github.com/sirupsen/logrus"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestID returns the id assigned to the request by the middleware, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router) {

	// Reuse the caller's X-Request-Id or assign a new one
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			id := req.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), requestIDKey{}, id)))
		})
	})

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req)
			log.WithFields(log.Fields{
				"request_id": RequestID(req.Context()),
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     rec.status,
				"duration":   time.Since(start),
			}).Debug("handled request")
		})
	})
}

// CSRFMiddleware protects form posts. Without a configured key a random one
// is generated, so tokens do not survive a restart.
func CSRFMiddleware(cfg config.CSRF) (mux.MiddlewareFunc, error) {
	key := []byte(cfg.Key)
	if len(key) == 0 {
		log.Warn("csrf.key not set, generating a random key")
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, err
		}
	}
	if len(key) != 32 {
		return nil, errors.New("csrf.key must be exactly 32 bytes")
	}

	protect := csrf.Protect(key, csrf.Secure(cfg.Secure), csrf.Path("/"))
	return func(next http.Handler) http.Handler {
		protected := protect(next)
		if cfg.Secure {
			return protected
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(req))
		})
	}, nil
}
