// Package auth はユーザー名とパスワードによるサインアップ・サインイン、
// ベアラートークンからの本人確認を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/kcnotes/internal/metrics"
	"github.com/hitoshi/kcnotes/internal/model"
	"github.com/hitoshi/kcnotes/internal/repository"
	"github.com/hitoshi/kcnotes/internal/token"
)

// PasswordHasher はパスワードハッシュの生成と照合のインターフェース。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// TokenIssuer はトークンの発行と検証のインターフェース。
type TokenIssuer interface {
	Issue(userID string, version int) (string, error)
	Verify(tokenString string) (*token.Claims, error)
}

// Identity は検証済みトークンから得た呼び出し元ユーザーを表す。
type Identity struct {
	UserID string
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// TokenVersionCheck が有効な場合、トークンの世代がユーザーの現在の世代と
	// 一致しなければ認証を拒否する。パスワード変更で既存トークンが失効する。
	TokenVersionCheck bool
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	issuer   TokenIssuer
	metrics  metrics.MetricsCollector
	config   ServiceConfig
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	issuer TokenIssuer,
	collector metrics.MetricsCollector,
	config ServiceConfig,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		metrics:  collector,
		config:   config,
		now:      time.Now,
	}
}

// Signup は新規ユーザーを登録し、そのユーザーのトークンを返す。
// ユーザー名が使用済みの場合はDuplicateUsernameエラーを返す。
func (s *Service) Signup(ctx context.Context, username, password string) (string, error) {
	tok, err := s.signup(ctx, username, password)
	s.metrics.RecordAuthOutcome("signup", metrics.Outcome(err))
	return tok, err
}

func (s *Service) signup(ctx context.Context, username, password string) (string, error) {
	// 1. ユーザー名の重複を事前確認
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if existing != nil {
		return "", model.NewDuplicateUsernameError(username)
	}

	// 2. パスワードをハッシュ化
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	// 3. 永続化（同時登録は一意制約で検出）
	now := s.now().UTC()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return "", model.NewDuplicateUsernameError(username)
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	// 4. トークンを発行
	tok, err := s.issuer.Issue(user.ID, user.TokenVersion)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return tok, nil
}

// Signin は資格情報を検証し、トークンを返す。
// 未登録ユーザーと誤ったパスワードは区別できない同一のエラーになる。
func (s *Service) Signin(ctx context.Context, username, password string) (string, error) {
	tok, err := s.signin(ctx, username, password)
	s.metrics.RecordAuthOutcome("signin", metrics.Outcome(err))
	return tok, err
}

func (s *Service) signin(ctx context.Context, username, password string) (string, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		// 応答時間からユーザーの存在を推測されないよう、ダミーのハッシュと照合する
		s.hasher.Verify(password, s.dummyPasswordHash())
		return "", model.NewInvalidCredentialsError()
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		slog.Info("signin rejected", slog.String("user_id", user.ID))
		return "", model.NewInvalidCredentialsError()
	}

	tok, err := s.issuer.Issue(user.ID, user.TokenVersion)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.Info("user signed in", slog.String("user_id", user.ID))
	return tok, nil
}

// ResolveIdentity はトークンを検証し、呼び出し元ユーザーを返す。
// 検証に失敗した場合はUnauthenticatedエラーを返す。
func (s *Service) ResolveIdentity(ctx context.Context, tokenString string) (Identity, error) {
	identity, err := s.resolveIdentity(ctx, tokenString)
	s.metrics.RecordAuthOutcome("resolve_identity", metrics.Outcome(err))
	return identity, err
}

func (s *Service) resolveIdentity(ctx context.Context, tokenString string) (Identity, error) {
	claims, err := s.issuer.Verify(tokenString)
	if err != nil {
		slog.Debug("token rejected", slog.String("error", err.Error()))
		return Identity{}, model.NewUnauthenticatedError()
	}

	if s.config.TokenVersionCheck {
		user, err := s.userRepo.FindByID(ctx, claims.UserID())
		if err != nil {
			return Identity{}, fmt.Errorf("failed to find user: %w", err)
		}
		if user == nil || user.TokenVersion != claims.Version {
			return Identity{}, model.NewUnauthenticatedError()
		}
	}

	return Identity{UserID: claims.UserID()}, nil
}

// CurrentUser は呼び出し元ユーザーを取得する。
// トークン発行後にユーザーが削除されている場合はUserNotFoundエラーを返す。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}

// dummyPasswordHash はサインイン時のタイミング均一化に使うハッシュを返す。
// 初回呼び出し時に一度だけ生成する。
func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.New().String())
		if err != nil {
			slog.Warn("failed to prepare dummy password hash", slog.String("error", err.Error()))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
