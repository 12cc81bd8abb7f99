// Package token はユーザーIDを運ぶ署名付きベアラートークンの発行と検証を提供する。
// トークンはステートレスで、サーバー側には保存しない。
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken は署名不一致、構造不正、期限切れのいずれかでトークンを受け付けられないことを示す。
var ErrInvalidToken = errors.New("invalid token")

// Claims はトークンに含める主張。
// SubjectにユーザーID、Versionに発行時点のユーザーのトークン世代を格納する。
type Claims struct {
	jwt.RegisteredClaims
	Version int `json:"ver"`
}

// UserID はトークンが示すユーザーIDを返す。
func (c *Claims) UserID() string {
	return c.Subject
}

// Issuer はHS256でトークンを署名・検証する。
// 署名鍵は起動時に一度だけ読み込み、以降は読み取り専用として扱う。
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer はIssuerを生成する。
// ttlが0以下の場合は有効期限を設定しない。
func NewIssuer(secret []byte, ttl time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token secret is required")
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &Issuer{
		secret: key,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue はユーザーIDとトークン世代を含む署名済みトークンを返す。
func (i *Issuer) Issue(userID string, version int) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user ID is required")
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(now),
		},
		Version: version,
	}
	if i.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(i.ttl))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンを検証し、含まれる主張を返す。
// 失効リストは参照しない。
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
