// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはレスポンスへ決して含めない。
type User struct {
	ID           string
	Username     string
	PasswordHash string
	// TokenVersion はパスワード変更のたびに増加する世代番号。
	// トークン世代チェックが有効な場合のみ検証に使う。
	TokenVersion int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
