// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// ErrStoreUnavailable はデータストアへの接続や問い合わせに失敗したことを示す。
// リポジトリ層がインフラ起因のエラーをこの値でラップする。
var ErrStoreUnavailable = errors.New("store unavailable")

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, note, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is はエラーコードが一致する場合にtrueを返す。
// errors.Is(err, model.NewNoteNotFoundError()) のような比較を可能にする。
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// 定義済みエラーコード
const (
	ErrCodeDuplicateUsername  = "DUPLICATE_USERNAME"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeIncorrectPassword  = "INCORRECT_PASSWORD"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeDuplicateTitle     = "DUPLICATE_TITLE"
	ErrCodeNoteNotFound       = "NOTE_NOT_FOUND"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeStoreUnavailable   = "STORE_UNAVAILABLE"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewDuplicateUsernameError はユーザー名重複エラーを生成する。
func NewDuplicateUsernameError(username string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateUsername,
		Message:  fmt.Sprintf("User with username '%s' already exists.", username),
		Category: "auth",
		Action:   "Choose a different username.",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// ユーザー名の存在有無を推測させないため、未登録と誤パスワードで同一の内容を返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid credentials.",
		Category: "auth",
		Action:   "Check your username and password.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found.",
		Category: "auth",
		Action:   "Sign in again.",
	}
}

// NewIncorrectPasswordError は現在のパスワードが一致しない場合のエラーを生成する。
func NewIncorrectPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeIncorrectPassword,
		Message:  "Current password is incorrect.",
		Category: "auth",
		Action:   "Enter your current password.",
	}
}

// NewUnauthenticatedError は未認証エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "Authentication required.",
		Category: "auth",
		Action:   "Sign in and send the token as 'Authorization: Bearer <token>'.",
	}
}

// NewDuplicateTitleError は同一所有者内でのタイトル重複エラーを生成する。
func NewDuplicateTitleError(title string) *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateTitle,
		Message:  fmt.Sprintf("Note with title '%s' already exists.", title),
		Category: "note",
		Action:   "Choose a different title.",
	}
}

// NewNoteNotFoundError はノート未検出エラーを生成する。
// 他ユーザー所有のノートも同じエラーで応答する。
func NewNoteNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeNoteNotFound,
		Message:  "Note not found.",
		Category: "note",
		Action:   "Check the note ID.",
	}
}

// NewValidationError は入力値の検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  reason,
		Category: "validation",
		Action:   "Fix the request fields and retry.",
	}
}

// NewStoreUnavailableError はデータストア障害時のエラーを生成する。
// 内部の詳細は含めない。
func NewStoreUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeStoreUnavailable,
		Message:  "The service is temporarily unavailable.",
		Category: "system",
		Action:   "Please retry later.",
	}
}

// NewInternalError は内部エラーの統一レスポンス用エラーを生成する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "An internal error occurred.",
		Category: "system",
		Action:   "Please retry later.",
	}
}
