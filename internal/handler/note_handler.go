package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/kcnotes/internal/middleware"
	"github.com/hitoshi/kcnotes/internal/model"
	"github.com/hitoshi/kcnotes/internal/validation"
)

// NoteServiceInterface はノートハンドラーが必要とするサービスインターフェース。
// すべての操作は呼び出し元ユーザーの所有ノートに限定される。
type NoteServiceInterface interface {
	Create(ctx context.Context, callerID, title, content string) (*model.Note, error)
	Get(ctx context.Context, callerID, noteID string) (*model.Note, error)
	Update(ctx context.Context, callerID, noteID string, patch model.NotePatch) (*model.Note, error)
	Delete(ctx context.Context, callerID, noteID string) error
	List(ctx context.Context, callerID string) ([]*model.Note, error)
}

// NoteHandler はノート管理のHTTPハンドラー。
type NoteHandler struct {
	service NoteServiceInterface
}

// NewNoteHandler はNoteHandlerを生成する。
func NewNoteHandler(service NoteServiceInterface) *NoteHandler {
	return &NoteHandler{service: service}
}

// createNoteRequest はノート作成リクエストのボディ。
type createNoteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// updateNoteRequest はノート更新リクエストのボディ。省略したフィールドは変更しない。
type updateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// noteResponse はノートのAPIレスポンス。
type noteResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toNoteResponse(n *model.Note) noteResponse {
	return noteResponse{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		OwnerID:   n.OwnerID,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// ListNotes は呼び出し元のノート一覧を返す。
// GET /notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	notes, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]noteResponse, len(notes))
	for i, n := range notes {
		resp[i] = toNoteResponse(n)
	}
	writeJSON(w, http.StatusOK, map[string][]noteResponse{"notes": resp})
}

// CreateNote はノートを作成する。
// POST /notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req createNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateNoteTitle(req.Title); err != nil {
		handleServiceError(w, err)
		return
	}
	if err := validation.ValidateNoteContent(req.Content); err != nil {
		handleServiceError(w, err)
		return
	}

	n, err := h.service.Create(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]noteResponse{"note": toNoteResponse(n)})
}

// GetNote はノートを1件返す。
// GET /notes/{id}
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	n, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]noteResponse{"note": toNoteResponse(n)})
}

// UpdateNote はノートを部分更新する。
// PATCH /notes/{id}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req updateNoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := model.NotePatch{Title: req.Title, Content: req.Content}
	if patch.IsEmpty() {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("title or content is required"))
		return
	}
	if patch.Title != nil {
		if err := validation.ValidateNoteTitle(*patch.Title); err != nil {
			handleServiceError(w, err)
			return
		}
	}
	if patch.Content != nil {
		if err := validation.ValidateNoteContent(*patch.Content); err != nil {
			handleServiceError(w, err)
			return
		}
	}

	n, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]noteResponse{"note": toNoteResponse(n)})
}

// DeleteNote はノートを削除する。
// DELETE /notes/{id}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Note deleted successfully"})
}
