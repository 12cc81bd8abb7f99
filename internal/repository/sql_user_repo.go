package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/kcnotes/internal/database"
	"github.com/hitoshi/kcnotes/internal/model"
)

// SQLUserRepo はdatabase/sqlを使用したユーザーリポジトリ。
// PostgreSQLとSQLiteの両方で動作する。
type SQLUserRepo struct {
	db *database.DB
}

// NewSQLUserRepo はSQLUserRepoを生成する。
func NewSQLUserRepo(db *database.DB) *SQLUserRepo {
	return &SQLUserRepo{db: db}
}

const userColumns = `id, username, password_hash, token_version, created_at, updated_at`

func scanUser(row rowScanner) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.TokenVersion, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *SQLUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		r.db.Dialect.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`),
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("find user by ID", err)
	}
	return user, nil
}

// FindByUsername はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
func (r *SQLUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		r.db.Dialect.Rebind(`SELECT `+userColumns+` FROM users WHERE username = ?`),
		username,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("find user by username", err)
	}
	return user, nil
}

// Create はユーザーを作成する。ユーザー名が重複する場合はErrDuplicateを返す。
func (r *SQLUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Dialect.Rebind(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		user.ID, user.Username, user.PasswordHash, user.TokenVersion, user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("failed to insert user %q: %w", user.Username, ErrDuplicate)
	}
	if err != nil {
		return storeError("insert user", err)
	}
	return nil
}

// UpdatePassword はパスワードハッシュを上書きし、トークン世代を1つ進める。
func (r *SQLUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	result, err := r.db.ExecContext(ctx,
		r.db.Dialect.Rebind(`UPDATE users
		 SET password_hash = ?, token_version = token_version + 1, updated_at = ?
		 WHERE id = ?`),
		passwordHash, updatedAt, id,
	)
	if err != nil {
		return storeError("update password", err)
	}
	return expectAffected(result, "user", id)
}

// DeleteByID は指定IDのユーザーを削除する。
// 所有するnotesはCASCADE削除される。
func (r *SQLUserRepo) DeleteByID(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		r.db.Dialect.Rebind(`DELETE FROM users WHERE id = ?`),
		id,
	)
	if err != nil {
		return storeError("delete user", err)
	}
	return expectAffected(result, "user", id)
}

// expectAffected は1行以上が変更されたことを確認する。
func expectAffected(result sql.Result, kind, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return storeError("get rows affected", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*SQLUserRepo)(nil)
