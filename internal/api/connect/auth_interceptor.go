// Package connect provides Connect RPC service implementations.
package connect

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/osa030/melodia/internal/api/rpc"
)

var errRateLimited = errors.New("too many attempts, try again later")

// Authenticator resolves bearer tokens to user IDs.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

type authKey struct{}

type authInfo struct {
	token  string
	userID string
}

// WithUser returns a context carrying an authenticated user.
func WithUser(ctx context.Context, token, userID string) context.Context {
	return context.WithValue(ctx, authKey{}, authInfo{token: token, userID: userID})
}

// UserID returns the authenticated user ID from ctx, or an empty string.
func UserID(ctx context.Context) string {
	info, _ := ctx.Value(authKey{}).(authInfo)
	return info.userID
}

func tokenFrom(ctx context.Context) string {
	info, _ := ctx.Value(authKey{}).(authInfo)
	return info.token
}

// publicProcedures do not require a token.
var publicProcedures = map[string]bool{
	rpc.AccountServiceRegisterProcedure: true,
	rpc.AccountServiceLoginProcedure:    true,
}

// AuthInterceptor validates bearer tokens. Account procedures other than
// Register and Login require one; elsewhere a valid token is optional but an
// invalid one is rejected.
type AuthInterceptor struct {
	auth Authenticator
}

var _ connect.Interceptor = (*AuthInterceptor)(nil)

// NewAuthInterceptor creates the bearer token interceptor.
func NewAuthInterceptor(auth Authenticator) *AuthInterceptor {
	return &AuthInterceptor{auth: auth}
}

func (i *AuthInterceptor) authenticate(ctx context.Context, procedure, header string) (context.Context, error) {
	token := rpc.BearerToken(header)
	required := strings.HasPrefix(procedure, "/"+rpc.AccountServiceName+"/") && !publicProcedures[procedure]

	if token == "" {
		if required {
			return ctx, connect.NewError(connect.CodeUnauthenticated, errors.New("missing bearer token"))
		}
		return ctx, nil
	}

	userID, err := i.auth.Authenticate(token)
	if err != nil {
		return ctx, connect.NewError(connect.CodeUnauthenticated, err)
	}
	return WithUser(ctx, token, userID), nil
}

// WrapUnary implements connect.Interceptor.
func (i *AuthInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if req.Spec().IsClient {
			return next(ctx, req)
		}
		ctx, err := i.authenticate(ctx, req.Spec().Procedure, req.Header().Get(rpc.AuthorizationHeader))
		if err != nil {
			return nil, err
		}
		return next(ctx, req)
	}
}

// WrapStreamingClient implements connect.Interceptor.
func (i *AuthInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return next
}

// WrapStreamingHandler implements connect.Interceptor.
func (i *AuthInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return func(ctx context.Context, conn connect.StreamingHandlerConn) error {
		ctx, err := i.authenticate(ctx, conn.Spec().Procedure, conn.RequestHeader().Get(rpc.AuthorizationHeader))
		if err != nil {
			return err
		}
		return next(ctx, conn)
	}
}

// RateLimitConfig configures per-client limits on credential procedures.
type RateLimitConfig struct {
	PerSecond float64
	Burst     int
}

// minLimiterIdle is the shortest time a client limiter is kept after its last use.
const minLimiterIdle = 10 * time.Minute

// NewLoginRateLimiter creates an interceptor that limits Register and Login
// calls per client address.
func NewLoginRateLimiter(cfg RateLimitConfig) connect.UnaryInterceptorFunc {
	limiters := newHostLimiters(cfg, time.Now)

	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if !req.Spec().IsClient && publicProcedures[req.Spec().Procedure] {
				if !limiters.get(req.Peer().Addr).Allow() {
					return nil, connect.NewError(connect.CodeResourceExhausted, errRateLimited)
				}
			}
			return next(ctx, req)
		}
	}
}

type hostLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// hostLimiters keeps one limiter per client host. Limiters idle long enough
// to have refilled their burst are dropped, since a fresh one is equivalent.
type hostLimiters struct {
	mu        sync.Mutex
	entries   map[string]*hostLimiter
	limit     rate.Limit
	burst     int
	idle      time.Duration // 0 keeps entries forever
	lastSweep time.Time
	now       func() time.Time
}

func newHostLimiters(cfg RateLimitConfig, now func() time.Time) *hostLimiters {
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	h := &hostLimiters{
		entries: make(map[string]*hostLimiter),
		limit:   rate.Limit(cfg.PerSecond),
		burst:   cfg.Burst,
		now:     now,
	}
	// A zero rate never refills, so its limiters must not be forgotten.
	if cfg.PerSecond > 0 {
		refill := time.Duration(float64(cfg.Burst) / cfg.PerSecond * float64(time.Second))
		h.idle = max(minLimiterIdle, refill)
	}
	return h
}

func (h *hostLimiters) get(addr string) *rate.Limiter {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	if h.idle > 0 && now.Sub(h.lastSweep) >= h.idle {
		h.sweepLocked(now)
	}

	e, ok := h.entries[host]
	if !ok {
		e = &hostLimiter{limiter: rate.NewLimiter(h.limit, h.burst)}
		h.entries[host] = e
	}
	e.lastSeen = now
	return e.limiter
}

func (h *hostLimiters) sweepLocked(now time.Time) {
	for host, e := range h.entries {
		if now.Sub(e.lastSeen) >= h.idle {
			delete(h.entries, host)
		}
	}
	h.lastSweep = now
}

func (h *hostLimiters) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
