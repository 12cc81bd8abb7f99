package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/hitoshi/kcnotes/internal/model"
)

var (
	// ErrDuplicate は一意制約違反を示す。
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound は更新・削除の対象行が存在しないことを示す。
	ErrNotFound = errors.New("record not found")
	// ErrReferenceNotFound は外部キーの参照先が存在しないことを示す。
	// 削除済みユーザーのトークンでノートを作成した場合などに返る。
	ErrReferenceNotFound = errors.New("referenced record not found")
)

const (
	// pgUniqueViolation はPostgreSQLの一意制約違反SQLSTATE。
	pgUniqueViolation = "23505"
	// pgForeignKeyViolation はPostgreSQLの外部キー制約違反SQLSTATE。
	pgForeignKeyViolation = "23503"
)

// isUniqueViolation はドライバのエラーが一意制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}

	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

// isForeignKeyViolation はドライバのエラーが外部キー制約違反かどうかを判定する。
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgForeignKeyViolation
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY {
			return true
		}
	}

	return strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}

// storeError はインフラ起因のエラーをmodel.ErrStoreUnavailableでラップする。
func storeError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, model.ErrStoreUnavailable, err)
}
