package handler

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"golang.org/x/time/rate"
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID returns the ID assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithRequestID reuses an incoming X-Request-ID or assigns a new one.
func WithRequestID(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			u, err := uuid.NewV4()
			if err != nil {
				slog.Error("generating request id", "err", err)
			} else {
				id = u.String()
			}
		}
		w.Header().Set(RequestIDHeader, id)
		inner.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (s *statusWriter) WriteHeader(code int) {
	s.code = code
	s.ResponseWriter.WriteHeader(code)
}

// RESTLogger logs and measures each request served by inner.
func RESTLogger(inner http.Handler, name string, m *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		inner.ServeHTTP(sw, r)
		took := time.Since(start)

		m.RecordRequest(name, sw.code, took)
		slog.Info("request",
			"method", r.Method,
			"uri", r.RequestURI,
			"route", name,
			"status", sw.code,
			"took", took,
			"request_id", RequestID(r.Context()),
		)
	})
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientRateLimiter hands out one token bucket per client address. Buckets of
// clients idle longer than the prune window are dropped by Run.
type ClientRateLimiter struct {
	clients map[string]*clientLimiter
	mu      sync.Mutex
	r       rate.Limit
	b       int
}

// NewClientRateLimiter allows each client r requests per second with bursts of b.
func NewClientRateLimiter(r rate.Limit, b int) *ClientRateLimiter {
	return &ClientRateLimiter{
		clients: make(map[string]*clientLimiter),
		r:       r,
		b:       b,
	}
}

// Limiter returns the token bucket of the given client.
func (l *ClientRateLimiter) Limiter(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, exists := l.clients[client]
	if !exists {
		c = &clientLimiter{limiter: rate.NewLimiter(l.r, l.b)}
		l.clients[client] = c
	}
	c.lastSeen = time.Now()
	return c.limiter
}

// Len returns the number of tracked clients.
func (l *ClientRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// prune drops the buckets of clients last seen before cutoff.
func (l *ClientRateLimiter) prune(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	var n int
	for client, c := range l.clients {
		if c.lastSeen.Before(cutoff) {
			delete(l.clients, client)
			n++
		}
	}
	return n
}

// Run drops clients idle for longer than idle every interval until ctx is done.
func (l *ClientRateLimiter) Run(ctx context.Context, every, idle time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if n := l.prune(now.Add(-idle)); n > 0 {
				slog.Debug("pruned idle rate limit buckets", "count", n)
			}
		}
	}
}

// Middleware rejects requests from clients that exhausted their bucket.
func (l *ClientRateLimiter) Middleware(inner http.Handler, m *Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Limiter(clientAddr(r)).Allow() {
			m.recordRateLimited()
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		inner.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
