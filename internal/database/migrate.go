// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// NewMigrator はマイグレーション実行用のmigrateインスタンスを生成する。
// 既存の接続を使うため、:memory:のSQLiteにも適用できる。
// 返したインスタンスのClose()はdbも閉じる点に注意。
func NewMigrator(db *DB) (*migrate.Migrate, error) {
	m, _, err := newMigrator(db)
	return m, err
}

// newMigrator はmigrateインスタンスと、マイグレーション専用に確保した資源の解放関数を返す。
// PostgreSQLではプールから専用コネクションを1本借りるため、解放関数でプールへ戻す。
// dbそのものは閉じない。
func newMigrator(db *DB) (*migrate.Migrate, func() error, error) {
	release := func() error { return nil }

	source, err := iofs.New(migrationsFS, "migrations/"+string(db.Dialect))
	if err != nil {
		return nil, release, fmt.Errorf("failed to create migration source: %w", err)
	}

	var driver migratedb.Driver
	switch db.Dialect {
	case DialectPostgres:
		ctx := context.Background()
		conn, connErr := db.Conn(ctx)
		if connErr != nil {
			return nil, release, fmt.Errorf("failed to acquire migration connection: %w", connErr)
		}
		release = conn.Close
		driver, err = postgres.WithConnection(ctx, conn, &postgres.Config{})
	case DialectSQLite:
		driver, err = sqlite.WithInstance(db.DB, &sqlite.Config{})
	default:
		return nil, release, fmt.Errorf("unsupported dialect: %q", db.Dialect)
	}
	if err != nil {
		release()
		return nil, func() error { return nil }, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(db.Dialect), driver)
	if err != nil {
		release()
		return nil, func() error { return nil }, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, release, nil
}

// RunMigrations はすべてのマイグレーションを適用する。
// すでに最新の場合はエラーなしで返る。
// dbは呼び出し元が引き続き使うため閉じないが、マイグレーション用のコネクションはプールへ戻す。
func RunMigrations(db *DB) error {
	m, release, err := newMigrator(db)
	if err != nil {
		return err
	}
	defer release()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
