// Package note はノート管理のドメインロジックを提供する。
// すべての操作は呼び出し元ユーザーが所有するノートに限定される。
package note

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/kcnotes/internal/metrics"
	"github.com/hitoshi/kcnotes/internal/model"
	"github.com/hitoshi/kcnotes/internal/repository"
)

// Service はノート管理のサービス層。
type Service struct {
	noteRepo repository.NoteRepository
	metrics  metrics.MetricsCollector
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(noteRepo repository.NoteRepository, collector metrics.MetricsCollector) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		noteRepo: noteRepo,
		metrics:  collector,
		now:      time.Now,
	}
}

// Create は呼び出し元ユーザーのノートを作成する。
// 同じタイトルのノートを既に所有している場合はDuplicateTitleエラーを返す。
func (s *Service) Create(ctx context.Context, callerID, title, content string) (*model.Note, error) {
	n, err := s.create(ctx, callerID, title, content)
	s.metrics.RecordNoteOperation("create", metrics.Outcome(err))
	return n, err
}

func (s *Service) create(ctx context.Context, callerID, title, content string) (*model.Note, error) {
	existing, err := s.noteRepo.FindByOwnerAndTitle(ctx, callerID, title)
	if err != nil {
		return nil, fmt.Errorf("ノートの取得に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateTitleError(title)
	}

	now := s.now().UTC()
	n := &model.Note{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		OwnerID:   callerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.noteRepo.Create(ctx, n); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, model.NewDuplicateTitleError(title)
		case errors.Is(err, repository.ErrReferenceNotFound):
			// トークン発行後に所有者が削除されている
			return nil, model.NewUserNotFoundError()
		}
		return nil, fmt.Errorf("ノートの作成に失敗しました: %w", err)
	}

	slog.Info("note created",
		slog.String("note_id", n.ID),
		slog.String("user_id", callerID),
	)
	return n, nil
}

// Get は呼び出し元ユーザーが所有するノートを返す。
func (s *Service) Get(ctx context.Context, callerID, noteID string) (*model.Note, error) {
	n, err := s.findOwned(ctx, callerID, noteID)
	s.metrics.RecordNoteOperation("get", metrics.Outcome(err))
	return n, err
}

// Update はパッチのnilでないフィールドを適用し、更新日時を進める。
func (s *Service) Update(ctx context.Context, callerID, noteID string, patch model.NotePatch) (*model.Note, error) {
	n, err := s.update(ctx, callerID, noteID, patch)
	s.metrics.RecordNoteOperation("update", metrics.Outcome(err))
	return n, err
}

func (s *Service) update(ctx context.Context, callerID, noteID string, patch model.NotePatch) (*model.Note, error) {
	// 1. 所有確認
	n, err := s.findOwned(ctx, callerID, noteID)
	if err != nil {
		return nil, err
	}

	// 2. タイトル変更時は他の所有ノートとの重複を確認
	if patch.Title != nil && *patch.Title != n.Title {
		other, err := s.noteRepo.FindByOwnerAndTitle(ctx, callerID, *patch.Title)
		if err != nil {
			return nil, fmt.Errorf("ノートの取得に失敗しました: %w", err)
		}
		if other != nil && other.ID != n.ID {
			return nil, model.NewDuplicateTitleError(*patch.Title)
		}
		n.Title = *patch.Title
	}
	if patch.Content != nil {
		n.Content = *patch.Content
	}
	n.UpdatedAt = s.now().UTC()

	// 3. 保存
	if err := s.noteRepo.Update(ctx, n); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, model.NewDuplicateTitleError(n.Title)
		case errors.Is(err, repository.ErrNotFound):
			return nil, model.NewNoteNotFoundError()
		}
		return nil, fmt.Errorf("ノートの更新に失敗しました: %w", err)
	}

	slog.Info("note updated",
		slog.String("note_id", n.ID),
		slog.String("user_id", callerID),
	)
	return n, nil
}

// Delete は呼び出し元ユーザーが所有するノートを削除する。
func (s *Service) Delete(ctx context.Context, callerID, noteID string) error {
	err := s.delete(ctx, callerID, noteID)
	s.metrics.RecordNoteOperation("delete", metrics.Outcome(err))
	return err
}

func (s *Service) delete(ctx context.Context, callerID, noteID string) error {
	if _, err := s.findOwned(ctx, callerID, noteID); err != nil {
		return err
	}

	if err := s.noteRepo.DeleteByID(ctx, noteID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewNoteNotFoundError()
		}
		return fmt.Errorf("ノートの削除に失敗しました: %w", err)
	}

	slog.Info("note deleted",
		slog.String("note_id", noteID),
		slog.String("user_id", callerID),
	)
	return nil
}

// List は呼び出し元ユーザーのノートを更新日時の新しい順に返す。
func (s *Service) List(ctx context.Context, callerID string) ([]*model.Note, error) {
	notes, err := s.noteRepo.ListByOwner(ctx, callerID)
	s.metrics.RecordNoteOperation("list", metrics.Outcome(err))
	if err != nil {
		return nil, fmt.Errorf("ノート一覧の取得に失敗しました: %w", err)
	}
	return notes, nil
}

// findOwned はノートを取得し、所有者を確認する。
// 存在しない場合と他人のノートの場合は同一のNoteNotFoundエラーを返す。
func (s *Service) findOwned(ctx context.Context, callerID, noteID string) (*model.Note, error) {
	// UUID形式でないIDはどのノートにも一致しない
	if _, err := uuid.Parse(noteID); err != nil {
		return nil, model.NewNoteNotFoundError()
	}

	n, err := s.noteRepo.FindByID(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("ノートの取得に失敗しました: %w", err)
	}
	if n == nil || n.OwnerID != callerID {
		return nil, model.NewNoteNotFoundError()
	}
	return n, nil
}
