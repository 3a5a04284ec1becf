package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	authUC "github.com/fastygo/taskboard/usecase/auth"
)

// TokenIssuer signs access tokens for a fresh session.
type TokenIssuer interface {
	Issue(session *domain.Session) (string, time.Time, error)
}

type AuthHandler struct {
	baseHandler
	uc     *authUC.UseCase
	tokens TokenIssuer
}

func NewAuthHandler(uc *authUC.UseCase, tokens TokenIssuer, adapter *httpcontext.Adapter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
		tokens:      tokens,
	}
}

// @Summary Log in and replace the active session
// @Tags auth
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(ctx *fasthttp.RequestCtx) {
	var req transport.LoginRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	res := h.uc.Login(stdCtx, req.Username, req.Password)
	if !res.Success {
		h.respondJSON(ctx, loginFailureStatus(res.Message), transport.NewError(loginFailureCode(res.Message), res.Message, nil))
		return
	}

	token, expires, err := h.tokens.Issue(res.Session)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		h.uc.Logout(stdCtx)
		h.respondError(ctx, err)
		return
	}

	h.respondSuccess(ctx, http.StatusOK, transport.LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		User:      transport.NewUserView(res.User),
		Message:   res.Message,
	})
}

// @Summary Close the active session
// @Tags auth
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	h.uc.Logout(stdCtx)
	h.logger.Info("session closed", zap.String("session_id", httpcontext.SessionID(stdCtx)))
	h.respondSuccess(ctx, http.StatusOK, map[string]string{"message": "logged out"})
}

// @Summary Describe the active session
// @Tags auth
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, user := h.uc.CurrentSession(stdCtx)
	if session == nil || user == nil {
		h.respondError(ctx, domain.ErrUnauthorized)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.SessionResponse{
		SessionID:  session.ID,
		User:       transport.NewUserView(user),
		LoggedInAt: session.CreatedAt,
	})
}

func loginFailureStatus(message string) int {
	switch message {
	case authUC.MsgUserNotFound, authUC.MsgIncorrectPassword:
		return http.StatusUnauthorized
	case authUC.MsgLoginUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func loginFailureCode(message string) string {
	switch loginFailureStatus(message) {
	case http.StatusUnauthorized:
		return string(domain.ErrCodeUnauthorized)
	case http.StatusServiceUnavailable:
		return string(domain.ErrCodeInternal)
	default:
		return string(domain.ErrCodeInvalid)
	}
}
