// Package password はbcryptによるパスワードハッシュの生成と照合を提供する。
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost はbcryptのデフォルトのワークファクター。
const DefaultCost = 10

// MaxPasswordBytes はbcryptが扱える入力の最大バイト数。
const MaxPasswordBytes = 72

// ErrInvalidHashFormat は保存済みハッシュがbcrypt形式として解釈できないことを示す。
var ErrInvalidHashFormat = errors.New("invalid hash format")

// Hasher はソルト付き一方向ハッシュを扱う。
// ワークファクターは生成時に固定され、以降変更しない。
type Hasher struct {
	cost int
}

// NewHasher はHasherを生成する。
// costがbcryptの許容範囲外の場合はDefaultCostを使う。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash は平文パスワードのハッシュを返す。
// ソルトは呼び出しごとにランダムに生成されるため、同じ入力でも結果は毎回異なる。
func (h *Hasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify は平文パスワードがハッシュと一致するかを判定する。
// 不一致はfalse, nilを返し、ハッシュが壊れている場合のみErrInvalidHashFormatを返す。
func (h *Hasher) Verify(plaintext, hash string) (bool, error) {
	// 72バイトを超える入力でハッシュが生成されることはない
	if len(plaintext) > MaxPasswordBytes {
		return false, nil
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrInvalidHashFormat, err)
	}
}
