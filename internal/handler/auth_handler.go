package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/kcnotes/internal/middleware"
	"github.com/hitoshi/kcnotes/internal/model"
	"github.com/hitoshi/kcnotes/internal/validation"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Signup(ctx context.Context, username, password string) (string, error)
	Signin(ctx context.Context, username, password string) (string, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// UserServiceInterface はアカウント管理に必要なサービスインターフェース。
type UserServiceInterface interface {
	UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	// DeleteUser はユーザーと所有するノートを削除する。
	DeleteUser(ctx context.Context, userID string) error
}

// AuthHandler は認証・アカウント関連のHTTPハンドラー。
type AuthHandler struct {
	auth  AuthServiceInterface
	users UserServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(auth AuthServiceInterface, users UserServiceInterface) *AuthHandler {
	return &AuthHandler{
		auth:  auth,
		users: users,
	}
}

// credentialsRequest はサインアップ・サインインのリクエストボディ。
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// updatePasswordRequest はパスワード変更のリクエストボディ。
type updatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// tokenResponse はトークンを返すレスポンス。サインアウトではnullになる。
type tokenResponse struct {
	Token *string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// userResponse はユーザー情報のAPIレスポンス。パスワードハッシュは含めない。
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Signup はユーザー登録を処理する。
// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		handleServiceError(w, err)
		return
	}
	if err := validation.ValidatePassword("password", req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	tok, err := h.auth.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: &tok})
}

// Signin はサインインを処理する。
// POST /auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := validation.RequireNonEmpty("username", req.Username); err != nil {
		handleServiceError(w, err)
		return
	}
	if err := validation.RequireNonEmpty("password", req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	tok, err := h.auth.Signin(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tokenResponse{Token: &tok})
}

// Me は現在のユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	user, err := h.auth.CurrentUser(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]userResponse{
		"user": {
			ID:        user.ID,
			Username:  user.Username,
			CreatedAt: user.CreatedAt,
			UpdatedAt: user.UpdatedAt,
		},
	})
}

// UpdatePassword はパスワード変更を処理する。
// PATCH /auth/update
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req updatePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.RequireNonEmpty("currentPassword", req.CurrentPassword); err != nil {
		handleServiceError(w, err)
		return
	}
	if err := validation.ValidatePassword("newPassword", req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.users.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated successfully"})
}

// Signout はクライアント側のトークン破棄を促す。
// トークンはステートレスなため、サーバー側で失効させるものはない。
// GET /auth/signout
func (h *AuthHandler) Signout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tokenResponse{Token: nil})
}

// DeleteMe は退会処理を実行する。
// DELETE /auth/me
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	if err := h.users.DeleteUser(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted successfully"})
}
