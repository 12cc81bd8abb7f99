// Package user はサインイン済みユーザー自身のアカウント管理を提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/kcnotes/internal/metrics"
	"github.com/hitoshi/kcnotes/internal/model"
	"github.com/hitoshi/kcnotes/internal/repository"
)

// PasswordHasher はパスワードハッシュの生成と照合のインターフェース。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

// Service はアカウント管理のサービス層。
// パスワード変更と退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	metrics  metrics.MetricsCollector
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, hasher PasswordHasher, collector metrics.MetricsCollector) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		metrics:  collector,
		now:      time.Now,
	}
}

// UpdatePassword は現在のパスワードを確認したうえで新しいパスワードに置き換える。
// 新しいトークンは発行しない。
func (s *Service) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	err := s.updatePassword(ctx, userID, currentPassword, newPassword)
	s.metrics.RecordAuthOutcome("update_password", metrics.Outcome(err))
	return err
}

func (s *Service) updatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	// 1. ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	// 2. 現在のパスワードを照合
	ok, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return model.NewIncorrectPasswordError()
	}

	// 3. 新しいハッシュで上書き（トークン世代も進む）
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewUserNotFoundError()
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	slog.Info("password updated", slog.String("user_id", userID))
	return nil
}

// DeleteUser はユーザーを削除する。
// 所有するノートはデータベースのCASCADEで同時に削除される。
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	err := s.deleteUser(ctx, userID)
	s.metrics.RecordAuthOutcome("delete_user", metrics.Outcome(err))
	return err
}

func (s *Service) deleteUser(ctx context.Context, userID string) error {
	// ユーザー存在確認
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewUserNotFoundError()
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	slog.Info("user deleted",
		slog.String("user_id", userID),
		slog.String("username", user.Username),
	)

	return nil
}
