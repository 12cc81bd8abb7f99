package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/kcnotes/internal/database"
	"github.com/hitoshi/kcnotes/internal/model"
)

// SQLNoteRepo はdatabase/sqlを使用したノートリポジトリ。
type SQLNoteRepo struct {
	db *database.DB
}

// NewSQLNoteRepo はSQLNoteRepoを生成する。
func NewSQLNoteRepo(db *database.DB) *SQLNoteRepo {
	return &SQLNoteRepo{db: db}
}

const noteColumns = `id, owner_id, title, content, created_at, updated_at`

// rowScanner は*sql.Rowと*sql.Rowsの共通部分。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*model.Note, error) {
	note := &model.Note{}
	if err := row.Scan(&note.ID, &note.OwnerID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt); err != nil {
		return nil, err
	}
	return note, nil
}

// FindByID は指定IDのノートを取得する。見つからない場合はnilを返す。
func (r *SQLNoteRepo) FindByID(ctx context.Context, id string) (*model.Note, error) {
	note, err := scanNote(r.db.QueryRowContext(ctx,
		r.db.Dialect.Rebind(`SELECT `+noteColumns+` FROM notes WHERE id = ?`),
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("find note by ID", err)
	}
	return note, nil
}

// FindByOwnerAndTitle は所有者とタイトルでノートを検索する。見つからない場合はnilを返す。
func (r *SQLNoteRepo) FindByOwnerAndTitle(ctx context.Context, ownerID, title string) (*model.Note, error) {
	note, err := scanNote(r.db.QueryRowContext(ctx,
		r.db.Dialect.Rebind(`SELECT `+noteColumns+` FROM notes WHERE owner_id = ? AND title = ?`),
		ownerID, title,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("find note by owner and title", err)
	}
	return note, nil
}

// Create はノートを作成する。同一所有者内でタイトルが重複する場合はErrDuplicateを、
// 所有者が存在しない場合はErrReferenceNotFoundを返す。
func (r *SQLNoteRepo) Create(ctx context.Context, note *model.Note) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Dialect.Rebind(`INSERT INTO notes (`+noteColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		note.ID, note.OwnerID, note.Title, note.Content, note.CreatedAt, note.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to insert note %q: %w", note.Title, ErrDuplicate)
	}
	if isForeignKeyViolation(err) {
		return fmt.Errorf("failed to insert note for owner %s: %w", note.OwnerID, ErrReferenceNotFound)
	}
	if err != nil {
		return storeError("insert note", err)
	}
	return nil
}

// Update はノートのタイトル・本文・更新日時を保存する。
// 所有者は変更しない。
func (r *SQLNoteRepo) Update(ctx context.Context, note *model.Note) error {
	result, err := r.db.ExecContext(ctx,
		r.db.Dialect.Rebind(`UPDATE notes SET title = ?, content = ?, updated_at = ? WHERE id = ? AND owner_id = ?`),
		note.Title, note.Content, note.UpdatedAt, note.ID, note.OwnerID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to update note %q: %w", note.Title, ErrDuplicate)
	}
	if err != nil {
		return storeError("update note", err)
	}
	return expectAffected(result, "note", note.ID)
}

// DeleteByID は指定IDのノートを削除する。
func (r *SQLNoteRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		r.db.Dialect.Rebind(`DELETE FROM notes WHERE id = ?`),
		id,
	)
	if err != nil {
		return storeError("delete note", err)
	}
	return expectAffected(result, "note", id)
}

// ListByOwner は所有者のノートを更新日時の新しい順に返す。
// ノートがない場合は空スライスを返す。
func (r *SQLNoteRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Note, error) {
	rows, err := r.db.QueryContext(ctx,
		r.db.Dialect.Rebind(`SELECT `+noteColumns+` FROM notes
		 WHERE owner_id = ?
		 ORDER BY updated_at DESC, created_at DESC, id`),
		ownerID,
	)
	if err != nil {
		return nil, storeError("list notes", err)
	}
	defer rows.Close()

	notes := make([]*model.Note, 0)
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, storeError("scan note", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate notes", err)
	}

	return notes, nil
}

// compile-time interface check
var _ NoteRepository = (*SQLNoteRepo)(nil)
