// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/kcnotes/internal/auth"
	"github.com/hitoshi/kcnotes/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに呼び出し元を格納するためのキー。
var identityContextKey = contextKey("identity")

// Identity は認証済みの呼び出し元を表す。
type Identity = auth.Identity

// IdentityResolver はトークンから呼び出し元を特定するインターフェース。
// auth.Serviceの部分集合として定義する。
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, tokenString string) (auth.Identity, error)
}

// NewAuthMiddleware はAuthorizationヘッダーのベアラートークンを検証するミドルウェアを返す。
// 認証済みの呼び出し元をリクエストコンテキストに注入する。
// ヘッダーがない、形式が不正、または検証に失敗した場合は401を返し、後続のハンドラーは実行しない。
func NewAuthMiddleware(resolver IdentityResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. ヘッダーからトークンを取得
			tokenString, ok := BearerToken(r)
			if !ok {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}

			// 2. トークンを検証
			identity, err := resolver.ResolveIdentity(r.Context(), tokenString)
			if err != nil {
				var apiErr *model.APIError
				if !errors.As(err, &apiErr) {
					// ストア障害などトークン以外の原因
					slog.Error("failed to resolve identity",
						slog.String("error", err.Error()),
					)
					if errors.Is(err, model.ErrStoreUnavailable) {
						WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewStoreUnavailableError())
						return
					}
					WriteInternalServerError(w)
					return
				}
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}

			// 3. 呼び出し元をコンテキストに注入
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// BearerToken はAuthorizationヘッダーからベアラートークンを取り出す。
// スキーム名の大文字小文字は区別しない。
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, tokenString, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return "", false
	}
	return tokenString, true
}

// IdentityFromContext はリクエストコンテキストから呼び出し元を取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	if !ok || identity.UserID == "" {
		return Identity{}, false
	}
	return identity, true
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, bool) {
	identity, ok := IdentityFromContext(ctx)
	return identity.UserID, ok
}

// ContextWithIdentity はコンテキストに呼び出し元を注入する。
// ロギングミドルウェアの内側で呼ばれた場合はアクセスログにもユーザーIDを伝える。
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	if fields, ok := ctx.Value(logFieldsContextKey).(*logFields); ok {
		fields.userID = identity.UserID
	}
	return context.WithValue(ctx, identityContextKey, identity)
}
