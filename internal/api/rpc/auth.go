package rpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// AuthorizationHeader carries the bearer token.
const AuthorizationHeader = "Authorization"

const bearerPrefix = "Bearer "

// BearerToken extracts the token from an Authorization header value.
// It returns an empty string when the value is not a bearer credential.
func BearerToken(value string) string {
	if len(value) < len(bearerPrefix) || !strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(value[len(bearerPrefix):])
}

// WithBearerToken returns a client option that sends token on every call.
// An empty token sends nothing.
func WithBearerToken(token string) connect.ClientOption {
	return connect.WithInterceptors(&bearerInterceptor{token: token})
}

type bearerInterceptor struct {
	token string
}

func (i *bearerInterceptor) WrapUnary(next connect.UnaryFunc) connect.UnaryFunc {
	return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		if i.token != "" && req.Spec().IsClient {
			req.Header().Set(AuthorizationHeader, bearerPrefix+i.token)
		}
		return next(ctx, req)
	}
}

func (i *bearerInterceptor) WrapStreamingClient(next connect.StreamingClientFunc) connect.StreamingClientFunc {
	return func(ctx context.Context, spec connect.Spec) connect.StreamingClientConn {
		conn := next(ctx, spec)
		if i.token != "" {
			conn.RequestHeader().Set(AuthorizationHeader, bearerPrefix+i.token)
		}
		return conn
	}
}

func (i *bearerInterceptor) WrapStreamingHandler(next connect.StreamingHandlerFunc) connect.StreamingHandlerFunc {
	return next
}
