package auth

import (
	"context"
	"time"

	"github.com/hitoshi/kcnotes/internal/model"
	"github.com/hitoshi/kcnotes/internal/token"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	createFn         func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, _, _ string, _ time.Time) error {
	return nil
}

func (m *mockUserRepo) DeleteByID(_ context.Context, _ string) error {
	return nil
}

type mockHasher struct {
	hashFn   func(plaintext string) (string, error)
	verifyFn func(plaintext, hash string) (bool, error)
	verified []string
}

func (m *mockHasher) Hash(plaintext string) (string, error) {
	if m.hashFn != nil {
		return m.hashFn(plaintext)
	}
	return "hashed:" + plaintext, nil
}

func (m *mockHasher) Verify(plaintext, hash string) (bool, error) {
	m.verified = append(m.verified, hash)
	if m.verifyFn != nil {
		return m.verifyFn(plaintext, hash)
	}
	return hash == "hashed:"+plaintext, nil
}

type mockIssuer struct {
	issueFn  func(userID string, version int) (string, error)
	verifyFn func(tokenString string) (*token.Claims, error)
}

func (m *mockIssuer) Issue(userID string, version int) (string, error) {
	if m.issueFn != nil {
		return m.issueFn(userID, version)
	}
	return "token-for-" + userID, nil
}

func (m *mockIssuer) Verify(tokenString string) (*token.Claims, error) {
	if m.verifyFn != nil {
		return m.verifyFn(tokenString)
	}
	return nil, token.ErrInvalidToken
}

type mockCollector struct {
	auth map[string]int
}

func newMockCollector() *mockCollector {
	return &mockCollector{auth: map[string]int{}}
}

func (m *mockCollector) RecordAuthOutcome(operation, outcome string) {
	m.auth[operation+":"+outcome]++
}
func (m *mockCollector) RecordNoteOperation(string, string) {}
func (m *mockCollector) RecordHTTPStatus(int)               {}
func (m *mockCollector) RecordRequestLatency(time.Duration) {}
