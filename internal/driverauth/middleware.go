package driverauth

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// RequireRole returns middleware that accepts requests carrying a bearer
// token whose role claim is role (or "admin", which may act as any role).
// Adapted from the teacher's middleware.Auth, generalized from an
// email/role JWT to the single admin/viewer split the command surface
// needs.
func RequireRole(secret, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if tok == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claimedRole, err := ParseToken(tok, secret)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			if claimedRole != role && claimedRole != "admin" {
				http.Error(w, "insufficient role", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter is a fixed-window token bucket per remote address, refilled
// once a minute; ported verbatim in shape from the teacher's
// middleware.RateLimiter for "low volume prototypes" — a simulation
// driver's command surface fits the same description.
func RateLimiter(maxPerMinute int) func(http.Handler) http.Handler {
	type bucket struct {
		mu       sync.Mutex
		count    int
		windowAt time.Time
	}
	var buckets sync.Map // string -> *bucket

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			v, _ := buckets.LoadOrStore(key, &bucket{windowAt: time.Now()})
			b := v.(*bucket)

			b.mu.Lock()
			now := time.Now()
			if now.Sub(b.windowAt) >= time.Minute {
				b.windowAt = now
				b.count = 0
			}
			if b.count >= maxPerMinute {
				b.mu.Unlock()
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			b.count++
			b.mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder wraps ResponseWriter to capture status & size for
// structured request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.status = http.StatusOK
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.size += n
	return n, err
}

// Hijack lets the logging middleware sit in front of websocket upgrades.
func (sr *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := sr.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not support hijacking")
}

var reqIDCounter uint64

// Logging logs one structured line per request (method, path, status,
// bytes, duration) and recovers from panics as a 500, mirroring the
// teacher's middleware.Logging.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := fmt.Sprintf("%d-%x", atomic.AddUint64(&reqIDCounter, 1), start.UnixNano())
			w.Header().Set("X-Request-ID", rid)
			sr := &statusRecorder{ResponseWriter: w}
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic",
						zap.String("request_id", rid),
						zap.String("path", r.URL.Path),
						zap.Any("error", rec),
						zap.ByteString("stack", debug.Stack()),
					)
					http.Error(sr, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
				logger.Info("request",
					zap.String("request_id", rid),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", sr.status),
					zap.Int("bytes", sr.size),
					zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				)
			}()
			next.ServeHTTP(sr, r)
		})
	}
}
