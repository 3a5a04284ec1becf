package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/storage"
	appLogger "github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/repository/slotstore"
)

type auditLine struct {
	level   appLogger.Level
	message string
}

type recordingSink struct {
	mu    sync.Mutex
	lines []auditLine
}

func (r *recordingSink) Log(_ context.Context, level appLogger.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, auditLine{level: level, message: message})
}

func (r *recordingSink) last() auditLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lines) == 0 {
		return auditLine{}
	}
	return r.lines[len(r.lines)-1]
}

var fixedNow = time.Date(2026, 2, 5, 9, 30, 0, 0, time.UTC)

func setup(t *testing.T) (*UseCase, *slotstore.Store, *storage.MemoryBackend, *recordingSink) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	store := slotstore.New(backend, "gestor_", nil)
	require.NoError(t, store.Initialize(context.Background()))

	sink := &recordingSink{}
	uc := New(store.Users(), store.Sessions(), sink, nil).WithClock(func() time.Time { return fixedNow })
	return uc, store, backend, sink
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	uc, store, _, sink := setup(t)

	res := uc.Login(ctx, "  Dev_Junior ", "hola123")
	require.True(t, res.Success)
	assert.Equal(t, "Welcome, Dev_Junior", res.Message)
	require.NotNil(t, res.User)
	assert.Equal(t, 2, res.User.ID)

	session, err := store.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, 2, session.UserID)
	assert.Equal(t, "Dev_Junior", session.Username)
	assert.Equal(t, domain.RoleNormal, session.Role)
	assert.Equal(t, fixedNow, session.CreatedAt.UTC())
	assert.NotEmpty(t, session.ID)

	current := uc.CurrentUser(ctx)
	require.NotNil(t, current)
	assert.Equal(t, "Dev_Junior", current.Username)
	assert.Equal(t, appLogger.LevelSuccess, sink.last().level)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		message  string
		level    appLogger.Level
	}{
		{"blank fields", " ", "", "username is required, password is required", appLogger.LevelWarning},
		{"unknown user", "Nadie", "x", MsgUserNotFound, appLogger.LevelError},
		{"wrong password", "Admin_Jefe", "admin124", MsgIncorrectPassword, appLogger.LevelError},
		{"password is not trimmed", "Admin_Jefe", " admin123", MsgIncorrectPassword, appLogger.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			uc, store, _, sink := setup(t)

			res := uc.Login(ctx, tt.username, tt.password)
			assert.False(t, res.Success)
			assert.Nil(t, res.User)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.level, sink.last().level)

			session, err := store.GetSession(ctx)
			require.NoError(t, err)
			assert.Nil(t, session)
		})
	}
}

func TestLogin_WrongPasswordKeepsExistingSession(t *testing.T) {
	ctx := context.Background()
	uc, store, _, _ := setup(t)

	require.True(t, uc.Login(ctx, "QA_Tester", "test123").Success)
	before, err := store.GetSession(ctx)
	require.NoError(t, err)

	assert.False(t, uc.Login(ctx, "Admin_Jefe", "nope").Success)

	after, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLogout_Idempotent(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _ := setup(t)

	require.True(t, uc.Login(ctx, "Admin_Jefe", "admin123").Success)
	assert.True(t, uc.IsAuthenticated(ctx))

	uc.Logout(ctx)
	uc.Logout(ctx)
	assert.False(t, uc.IsAuthenticated(ctx))
	assert.Nil(t, uc.CurrentUser(ctx))
}

func TestCurrentUser_SelfHealsDeletedUser(t *testing.T) {
	ctx := context.Background()
	uc, store, _, _ := setup(t)

	require.True(t, uc.Login(ctx, "QA_Tester", "test123").Success)

	ok, err := store.DeleteUser(ctx, 3)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Nil(t, uc.CurrentUser(ctx))

	session, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session, "stale session is cleared")
}

func TestCurrentUser_CorruptSession(t *testing.T) {
	ctx := context.Background()
	uc, store, backend, sink := setup(t)

	require.NoError(t, storage.Put(ctx, backend, "gestor_"+slotstore.SlotSession, []byte(`{"user_id":"two"`)))

	assert.Nil(t, uc.CurrentUser(ctx))

	var sawError bool
	for _, l := range sink.lines {
		if l.level == appLogger.LevelError {
			sawError = true
		}
	}
	assert.True(t, sawError)

	_, err := backend.Get(ctx, "gestor_"+slotstore.SlotSession)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	session, err := store.GetSession(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

// flakyBackend fails reads of one key while down is set.
type flakyBackend struct {
	*storage.MemoryBackend
	key  string
	down atomic.Bool
}

func (f *flakyBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if f.down.Load() && key == f.key {
		return nil, errors.New("i/o timeout")
	}
	return f.MemoryBackend.Get(ctx, key)
}

func TestCurrentUser_ReadFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{MemoryBackend: storage.NewMemoryBackend(), key: "gestor_" + slotstore.SlotSession}
	store := slotstore.New(backend, "gestor_", nil)
	require.NoError(t, store.Initialize(ctx))
	uc := New(store.Users(), store.Sessions(), &recordingSink{}, nil).WithClock(func() time.Time { return fixedNow })

	require.True(t, uc.Login(ctx, "Dev_Junior", "hola123").Success)

	backend.down.Store(true)
	assert.Nil(t, uc.CurrentUser(ctx))

	backend.down.Store(false)
	session, err := store.GetSession(ctx)
	require.NoError(t, err)
	require.NotNil(t, session, "transient read errors must not log the user out")
	assert.Equal(t, 2, session.UserID)

	current := uc.CurrentUser(ctx)
	require.NotNil(t, current)
	assert.Equal(t, "Dev_Junior", current.Username)
}

func TestRolePredicates(t *testing.T) {
	ctx := context.Background()
	uc, _, _, _ := setup(t)

	own := &domain.Task{ID: 2, AssigneeID: 2}
	other := &domain.Task{ID: 4, AssigneeID: 3}

	assert.False(t, uc.IsAdmin(ctx))
	assert.False(t, uc.CanModifyTask(ctx, own), "nobody logged in")

	require.True(t, uc.Login(ctx, "Dev_Junior", "hola123").Success)
	assert.False(t, uc.IsAdmin(ctx))
	assert.True(t, uc.CanModifyTask(ctx, own))
	assert.False(t, uc.CanModifyTask(ctx, other))

	require.True(t, uc.Login(ctx, "Admin_Jefe", "admin123").Success)
	assert.True(t, uc.IsAdmin(ctx))
	assert.True(t, uc.CanModifyTask(ctx, other))
	assert.True(t, uc.CanModifyTask(ctx, &domain.Task{AssigneeID: 99}), "dangling assignee")
}

func TestCanModify(t *testing.T) {
	admin := &domain.User{ID: 1, Role: domain.RoleAdmin}
	normal := &domain.User{ID: 2, Role: domain.RoleNormal}

	assert.False(t, CanModify(nil, &domain.Task{}))
	assert.False(t, CanModify(normal, nil))
	assert.True(t, CanModify(admin, &domain.Task{AssigneeID: 3}))
	assert.True(t, CanModify(normal, &domain.Task{AssigneeID: 2}))
	assert.False(t, CanModify(normal, &domain.Task{AssigneeID: 3}))
}
