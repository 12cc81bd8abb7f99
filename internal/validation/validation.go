// Package validation はリクエスト入力の形式チェックを提供する。
// 違反はすべてVALIDATION_FAILEDのAPIErrorとして返す。
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/kcnotes/internal/model"
	"github.com/hitoshi/kcnotes/internal/password"
)

// UsernamePattern はユーザー名として許可する形式。
// 英数字とアンダースコアのみ、3〜32文字。
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 32

	// MinPasswordLen はパスワードの最小文字数。
	MinPasswordLen = 8

	MaxTitleLen = 255
)

// ValidateUsername はユーザー名の形式を検証する。
func ValidateUsername(username string) error {
	if username == "" {
		return model.NewValidationError("username cannot be empty")
	}
	if len(username) < MinUsernameLen || len(username) > MaxUsernameLen {
		return model.NewValidationError(fmt.Sprintf("username must be %d-%d characters long", MinUsernameLen, MaxUsernameLen))
	}
	if !UsernamePattern.MatchString(username) {
		return model.NewValidationError("username can only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidatePassword は新しく設定するパスワードを検証する。
// bcryptが扱えない長さも拒否する。
func ValidatePassword(field, value string) error {
	if value == "" {
		return model.NewValidationError(fmt.Sprintf("%s cannot be empty", field))
	}
	if utf8.RuneCountInString(value) < MinPasswordLen {
		return model.NewValidationError(fmt.Sprintf("%s must be at least %d characters long", field, MinPasswordLen))
	}
	if len(value) > password.MaxPasswordBytes {
		return model.NewValidationError(fmt.Sprintf("%s must not exceed %d bytes", field, password.MaxPasswordBytes))
	}
	return nil
}

// RequireNonEmpty は値が空でないことを検証する。
func RequireNonEmpty(field, value string) error {
	if value == "" {
		return model.NewValidationError(fmt.Sprintf("%s cannot be empty", field))
	}
	return nil
}

// ValidateNoteTitle はノートのタイトルを検証する。
func ValidateNoteTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return model.NewValidationError("title cannot be empty")
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return model.NewValidationError(fmt.Sprintf("title must not exceed %d characters", MaxTitleLen))
	}
	return nil
}

// ValidateNoteContent はノートの本文を検証する。
func ValidateNoteContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return model.NewValidationError("content cannot be empty")
	}
	return nil
}
