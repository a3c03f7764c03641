package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

func NewMux(h *Handler, token string, log *zap.Logger) http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/results", h.HandleResults)
	apiMux.HandleFunc("GET /api/normalized", h.HandleNormalized)
	apiMux.HandleFunc("GET /api/query", h.HandleQuery)
	apiMux.HandleFunc("GET /api/summary", h.HandleSummary)
	apiMux.HandleFunc("GET /api/results/{id}", h.HandleResult)
	apiMux.HandleFunc("POST /api/reload", h.HandleReload)

	mux := http.NewServeMux()
	mux.Handle("/api/", requireToken(token, apiMux))
	mux.HandleFunc("/", h.HandleStatic)

	return accessLog(log, mux)
}

// requireToken accepts "Bearer <t>" or "token <t>". An empty token
// disables the check.
func requireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		got := ""
		for _, prefix := range []string{"Bearer ", "token "} {
			if strings.HasPrefix(auth, prefix) {
				got = strings.TrimPrefix(auth, prefix)
				break
			}
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// accessLog tags every response with a request id, reusing the caller's
// when it sent one.
func accessLog(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("request",
			zap.String("id", id),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
