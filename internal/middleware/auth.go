package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
)

const sessionLookupTimeout = 3 * time.Second

// SessionSource reports the session currently held by the store.
type SessionSource interface {
	CurrentSession(ctx context.Context) (*domain.Session, *domain.User)
}

// JWTAuth admits a request only when its bearer token is valid and names the
// session that is still active. A newer login or a logout invalidates older
// tokens.
func JWTAuth(tokens *Tokens, sessions SessionSource, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			tokenString := extractToken(ctx)
			if tokenString == "" {
				unauthorized(ctx, "missing bearer token")
				return
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				logger.Warn("invalid jwt token", zap.Error(err))
				unauthorized(ctx, "invalid token")
				return
			}

			lookupCtx, cancel := context.WithTimeout(context.Background(), sessionLookupTimeout)
			session, user := sessions.CurrentSession(lookupCtx)
			cancel()
			if session == nil || user == nil || session.ID != claims.SessionID() {
				logger.Info("token session is no longer active", zap.String("session_id", claims.SessionID()))
				unauthorized(ctx, "session expired")
				return
			}

			ctx.SetUserValue(httpcontext.UserValueSessionID, session.ID)
			next(ctx)
		}
	}
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := strings.TrimSpace(string(ctx.Request.Header.Peek("Authorization")))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

func unauthorized(ctx *fasthttp.RequestCtx, message string) {
	body, _ := json.Marshal(transport.NewError(string(domain.ErrCodeUnauthorized), message, nil))
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBody(body)
}
