// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/kcnotes/internal/model"
)

// UserRepository はユーザー資格情報の永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。ユーザー名が重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error

	// UpdatePassword はパスワードハッシュを上書きし、トークン世代を1つ進める。
	// 対象が存在しない場合はErrNotFoundを返す。
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 所有するnotesはCASCADE削除される。対象が存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error
}

// NoteRepository はノートの永続化インターフェース。
type NoteRepository interface {
	// FindByID は指定IDのノートを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Note, error)

	// FindByOwnerAndTitle は所有者とタイトルでノートを検索する。見つからない場合はnilを返す。
	FindByOwnerAndTitle(ctx context.Context, ownerID, title string) (*model.Note, error)

	// Create はノートを作成する。同一所有者内でタイトルが重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, note *model.Note) error

	// Update はノートのタイトル・本文・更新日時を保存する。
	// タイトル重複時はErrDuplicate、対象が存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, note *model.Note) error

	// DeleteByID は指定IDのノートを削除する。対象が存在しない場合はErrNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error

	// ListByOwner は所有者のノートを更新日時の新しい順に返す。
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Note, error)
}
