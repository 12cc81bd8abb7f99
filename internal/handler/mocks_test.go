package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/hitoshi/kcnotes/internal/middleware"
	"github.com/hitoshi/kcnotes/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	signupFn      func(ctx context.Context, username, password string) (string, error)
	signinFn      func(ctx context.Context, username, password string) (string, error)
	currentUserFn func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) Signup(ctx context.Context, username, password string) (string, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, username, password)
	}
	return "", nil
}

func (m *mockAuthService) Signin(ctx context.Context, username, password string) (string, error) {
	if m.signinFn != nil {
		return m.signinFn(ctx, username, password)
	}
	return "", nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, userID)
	}
	return nil, nil
}

type mockUserService struct {
	updatePasswordFn func(ctx context.Context, userID, currentPassword, newPassword string) error
	deleteUserFn     func(ctx context.Context, userID string) error
}

func (m *mockUserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, userID, currentPassword, newPassword)
	}
	return nil
}

func (m *mockUserService) DeleteUser(ctx context.Context, userID string) error {
	if m.deleteUserFn != nil {
		return m.deleteUserFn(ctx, userID)
	}
	return nil
}

type mockNoteService struct {
	createFn func(ctx context.Context, callerID, title, content string) (*model.Note, error)
	getFn    func(ctx context.Context, callerID, noteID string) (*model.Note, error)
	updateFn func(ctx context.Context, callerID, noteID string, patch model.NotePatch) (*model.Note, error)
	deleteFn func(ctx context.Context, callerID, noteID string) error
	listFn   func(ctx context.Context, callerID string) ([]*model.Note, error)
}

func (m *mockNoteService) Create(ctx context.Context, callerID, title, content string) (*model.Note, error) {
	if m.createFn != nil {
		return m.createFn(ctx, callerID, title, content)
	}
	return nil, nil
}

func (m *mockNoteService) Get(ctx context.Context, callerID, noteID string) (*model.Note, error) {
	if m.getFn != nil {
		return m.getFn(ctx, callerID, noteID)
	}
	return nil, nil
}

func (m *mockNoteService) Update(ctx context.Context, callerID, noteID string, patch model.NotePatch) (*model.Note, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, callerID, noteID, patch)
	}
	return nil, nil
}

func (m *mockNoteService) Delete(ctx context.Context, callerID, noteID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, callerID, noteID)
	}
	return nil
}

func (m *mockNoteService) List(ctx context.Context, callerID string) ([]*model.Note, error) {
	if m.listFn != nil {
		return m.listFn(ctx, callerID)
	}
	return nil, nil
}

// withUser は認証ミドルウェア通過後と同じ状態のリクエストを返す。
func withUser(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithIdentity(r.Context(), middleware.Identity{UserID: userID})
	return r.WithContext(ctx)
}

type mockResolver struct {
	resolveFn func(ctx context.Context, tokenString string) (middleware.Identity, error)
}

func (m *mockResolver) ResolveIdentity(ctx context.Context, tokenString string) (middleware.Identity, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, tokenString)
	}
	return middleware.Identity{UserID: "user-1"}, nil
}

// recordingCollector は記録されたHTTPステータスを保持するメトリクスコレクター。
type recordingCollector struct {
	mu       sync.Mutex
	statuses []int
}

func (c *recordingCollector) RecordAuthOutcome(string, string)   {}
func (c *recordingCollector) RecordNoteOperation(string, string) {}
func (c *recordingCollector) RecordRequestLatency(time.Duration) {}

func (c *recordingCollector) RecordHTTPStatus(statusCode int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, statusCode)
}

func (c *recordingCollector) recorded() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int(nil), c.statuses...)
}
