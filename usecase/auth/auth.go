package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/pkg/rules"
	"github.com/fastygo/taskboard/repository"
)

// Login failure messages.
const (
	MsgUserNotFound      = "user not found"
	MsgIncorrectPassword = "incorrect password"
	MsgLoginUnavailable  = "login is temporarily unavailable"
)

// LoginResult describes the outcome of a login attempt.
type LoginResult struct {
	Success bool            `json:"success"`
	User    *domain.User    `json:"user,omitempty"`
	Session *domain.Session `json:"-"`
	Message string          `json:"message"`
}

// UseCase manages the single session slot and answers identity questions.
// It keeps no state of its own between calls.
type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	audit    appLogger.AuditSink
	logger   *zap.Logger
	now      func() time.Time
}

func New(users repository.UserRepository, sessions repository.SessionRepository, audit appLogger.AuditSink, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if audit == nil {
		audit = appLogger.NopAuditSink{}
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		audit:    audit,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for session timestamps.
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	if now != nil {
		uc.now = now
	}
	return uc
}

// Login checks the credentials and, on success, replaces the session slot.
func (uc *UseCase) Login(ctx context.Context, username, password string) LoginResult {
	validation := rules.ValidateLogin(username, password)
	if !validation.Valid {
		msg := validation.Join(", ")
		uc.audit.Log(ctx, appLogger.LevelWarning, "login rejected: "+msg)
		return LoginResult{Message: msg}
	}

	name := strings.TrimSpace(username)
	user, err := uc.users.GetByUsername(ctx, name)
	if err != nil {
		uc.logger.Error("user lookup failed", zap.String("username", name), zap.Error(err))
		uc.audit.Log(ctx, appLogger.LevelError, "login failed for "+name+": storage error")
		return LoginResult{Message: MsgLoginUnavailable}
	}
	if user == nil {
		uc.audit.Log(ctx, appLogger.LevelError, "user not found: "+name)
		return LoginResult{Message: MsgUserNotFound}
	}

	if user.Password != password {
		uc.audit.Log(ctx, appLogger.LevelError, "incorrect password for: "+name)
		return LoginResult{Message: MsgIncorrectPassword}
	}

	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: uc.now(),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		uc.logger.Error("failed to persist session", zap.Int("user_id", user.ID), zap.Error(err))
		uc.audit.Log(ctx, appLogger.LevelError, "login failed for "+name+": session not saved")
		return LoginResult{Message: MsgLoginUnavailable}
	}

	uc.audit.Log(ctx, appLogger.LevelSuccess, fmt.Sprintf("login succeeded: %s (%s)", user.Username, user.Role.DisplayName()))
	return LoginResult{
		Success: true,
		User:    user,
		Session: session,
		Message: "Welcome, " + user.Username,
	}
}

// Logout clears the session slot. Calling it while logged out is harmless.
func (uc *UseCase) Logout(ctx context.Context) {
	if err := uc.sessions.Clear(ctx); err != nil {
		uc.logger.Error("failed to clear session", zap.Error(err))
		return
	}
	uc.audit.Log(ctx, appLogger.LevelInfo, "session closed")
}

// CurrentSession returns the stored session if it still resolves to an
// existing user. Stale or corrupt sessions are cleared; a failing medium
// only reports nobody logged in.
func (uc *UseCase) CurrentSession(ctx context.Context) (*domain.Session, *domain.User) {
	session, err := uc.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSessionCorrupt) {
			uc.audit.Log(ctx, appLogger.LevelError, "could not restore session: "+err.Error())
			uc.Logout(ctx)
			return nil, nil
		}
		// The slot may still hold a valid session once the medium recovers.
		uc.logger.Error("failed to read session", zap.Error(err))
		return nil, nil
	}
	if session == nil {
		return nil, nil
	}

	user, err := uc.users.GetByID(ctx, session.UserID)
	if err != nil {
		uc.logger.Error("failed to resolve session user", zap.Int("user_id", session.UserID), zap.Error(err))
		return nil, nil
	}
	if user == nil {
		uc.logger.Info("session user no longer exists, logging out", zap.Int("user_id", session.UserID))
		uc.Logout(ctx)
		return nil, nil
	}
	return session, user
}

// CurrentUser returns the logged-in user or nil.
func (uc *UseCase) CurrentUser(ctx context.Context) *domain.User {
	_, user := uc.CurrentSession(ctx)
	return user
}

// Current satisfies task.SessionProvider.
func (uc *UseCase) Current(ctx context.Context) *domain.User {
	return uc.CurrentUser(ctx)
}

func (uc *UseCase) IsAuthenticated(ctx context.Context) bool {
	return uc.CurrentUser(ctx) != nil
}

func (uc *UseCase) IsAdmin(ctx context.Context) bool {
	return uc.CurrentUser(ctx).IsAdmin()
}

// CanModifyTask allows administrators everything and normal users only the
// tasks assigned to them.
func (uc *UseCase) CanModifyTask(ctx context.Context, task *domain.Task) bool {
	return CanModify(uc.CurrentUser(ctx), task)
}

// CanModify is the permission rule behind CanModifyTask.
func CanModify(user *domain.User, task *domain.Task) bool {
	if user == nil || task == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	return task.AssigneeID == user.ID
}
