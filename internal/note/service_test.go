package note

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/kcnotes/internal/model"
	"github.com/hitoshi/kcnotes/internal/repository"
)

// --- モック ---

type mockNoteRepo struct {
	findByIDFn            func(ctx context.Context, id string) (*model.Note, error)
	findByOwnerAndTitleFn func(ctx context.Context, ownerID, title string) (*model.Note, error)
	createFn              func(ctx context.Context, note *model.Note) error
	updateFn              func(ctx context.Context, note *model.Note) error
	deleteByIDFn          func(ctx context.Context, id string) error
	listByOwnerFn         func(ctx context.Context, ownerID string) ([]*model.Note, error)
}

func (m *mockNoteRepo) FindByID(ctx context.Context, id string) (*model.Note, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockNoteRepo) FindByOwnerAndTitle(ctx context.Context, ownerID, title string) (*model.Note, error) {
	if m.findByOwnerAndTitleFn != nil {
		return m.findByOwnerAndTitleFn(ctx, ownerID, title)
	}
	return nil, nil
}
func (m *mockNoteRepo) Create(ctx context.Context, note *model.Note) error {
	if m.createFn != nil {
		return m.createFn(ctx, note)
	}
	return nil
}
func (m *mockNoteRepo) Update(ctx context.Context, note *model.Note) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, note)
	}
	return nil
}
func (m *mockNoteRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteByIDFn != nil {
		return m.deleteByIDFn(ctx, id)
	}
	return nil
}
func (m *mockNoteRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Note, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, ownerID)
	}
	return []*model.Note{}, nil
}

var fixedNow = time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

func newTestService(repo repository.NoteRepository) *Service {
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func strPtr(s string) *string { return &s }

// --- Create ---

func TestCreate_SetsOwnerAndTimestamps(t *testing.T) {
	var saved *model.Note
	repo := &mockNoteRepo{
		createFn: func(ctx context.Context, note *model.Note) error {
			saved = note
			return nil
		},
	}
	svc := newTestService(repo)

	n, err := svc.Create(context.Background(), "u1", "T1", "C1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved != n {
		t.Fatal("returned note should be the persisted note")
	}
	if n.OwnerID != "u1" || n.Title != "T1" || n.Content != "C1" {
		t.Errorf("unexpected note: %+v", n)
	}
	if !n.CreatedAt.Equal(fixedNow) || !n.UpdatedAt.Equal(fixedNow) {
		t.Errorf("timestamps = %v/%v, want %v", n.CreatedAt, n.UpdatedAt, fixedNow)
	}
	if _, err := uuid.Parse(n.ID); err != nil {
		t.Errorf("ID should be a UUID: %q", n.ID)
	}
}

func TestCreate_DuplicateTitle(t *testing.T) {
	tests := []struct {
		name string
		repo *mockNoteRepo
	}{
		{
			name: "事前確認で検出",
			repo: &mockNoteRepo{
				findByOwnerAndTitleFn: func(ctx context.Context, ownerID, title string) (*model.Note, error) {
					return &model.Note{ID: "n1", OwnerID: ownerID, Title: title}, nil
				},
			},
		},
		{
			name: "一意制約で検出",
			repo: &mockNoteRepo{
				createFn: func(ctx context.Context, note *model.Note) error {
					return fmt.Errorf("failed to insert note: %w", repository.ErrDuplicate)
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService(tt.repo).Create(context.Background(), "u1", "T1", "C1")
			if !errors.Is(err, model.NewDuplicateTitleError("T1")) {
				t.Errorf("expected DuplicateTitle, got %v", err)
			}
		})
	}
}

// TestCreate_OwnerDeleted はトークン発行後に削除されたユーザーがUserNotFoundになることを検証する。
func TestCreate_OwnerDeleted(t *testing.T) {
	repo := &mockNoteRepo{
		createFn: func(ctx context.Context, note *model.Note) error {
			return fmt.Errorf("failed to insert note: %w", repository.ErrReferenceNotFound)
		},
	}

	_, err := newTestService(repo).Create(context.Background(), "u1", "T1", "C1")
	if !errors.Is(err, model.NewUserNotFoundError()) {
		t.Errorf("expected UserNotFound, got %v", err)
	}
	if errors.Is(err, model.ErrStoreUnavailable) {
		t.Errorf("missing owner must not be reported as a store failure: %v", err)
	}
}

// --- Get / ownership ---

// TestGet_MissingAndForeign_Identical は存在しないノートと他人のノートが同じエラーになることを検証する。
func TestGet_MissingAndForeign_Identical(t *testing.T) {
	foreignID := uuid.NewString()
	repo := &mockNoteRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Note, error) {
			if id == foreignID {
				return &model.Note{ID: id, OwnerID: "someone-else", Title: "secret"}, nil
			}
			return nil, nil
		},
	}
	svc := newTestService(repo)

	_, errMissing := svc.Get(context.Background(), "u1", uuid.NewString())
	_, errForeign := svc.Get(context.Background(), "u1", foreignID)
	_, errMalformed := svc.Get(context.Background(), "u1", "not-a-uuid")

	var a, b, c *model.APIError
	if !errors.As(errMissing, &a) || !errors.As(errForeign, &b) || !errors.As(errMalformed, &c) {
		t.Fatalf("expected APIErrors, got %v / %v / %v", errMissing, errForeign, errMalformed)
	}
	if *a != *b || *a != *c {
		t.Errorf("errors differ: %+v / %+v / %+v", a, b, c)
	}
	if a.Code != model.ErrCodeNoteNotFound {
		t.Errorf("code = %q, want %q", a.Code, model.ErrCodeNoteNotFound)
	}
}

func TestGet_StoreError_Propagates(t *testing.T) {
	repo := &mockNoteRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Note, error) {
			return nil, fmt.Errorf("failed to find note by ID: %w", model.ErrStoreUnavailable)
		},
	}

	_, err := newTestService(repo).Get(context.Background(), "u1", uuid.NewString())
	if !errors.Is(err, model.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

// --- Update ---

func TestUpdate_AppliesPatchAndRefreshesUpdatedAt(t *testing.T) {
	id := uuid.NewString()
	created := fixedNow.Add(-time.Hour)
	repo := &mockNoteRepo{
		findByIDFn: func(ctx context.Context, nid string) (*model.Note, error) {
			return &model.Note{ID: id, OwnerID: "u1", Title: "T1", Content: "C1", CreatedAt: created, UpdatedAt: created}, nil
		},
	}
	svc := newTestService(repo)

	n, err := svc.Update(context.Background(), "u1", id, model.NotePatch{Content: strPtr("C2")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Title != "T1" {
		t.Errorf("Title = %q, want unchanged %q", n.Title, "T1")
	}
	if n.Content != "C2" {
		t.Errorf("Content = %q, want %q", n.Content, "C2")
	}
	if !n.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed: %v", n.CreatedAt)
	}
	if !n.UpdatedAt.Equal(fixedNow) {
		t.Errorf("UpdatedAt = %v, want %v", n.UpdatedAt, fixedNow)
	}
}

func TestUpdate_RenameOntoOwnedTitle_ReturnsDuplicateTitle(t *testing.T) {
	id := uuid.NewString()
	repo := &mockNoteRepo{
		findByIDFn: func(ctx context.Context, nid string) (*model.Note, error) {
			return &model.Note{ID: id, OwnerID: "u1", Title: "T1"}, nil
		},
		findByOwnerAndTitleFn: func(ctx context.Context, ownerID, title string) (*model.Note, error) {
			return &model.Note{ID: "other", OwnerID: ownerID, Title: title}, nil
		},
		updateFn: func(ctx context.Context, note *model.Note) error {
			t.Fatal("Update should not be called")
			return nil
		},
	}

	_, err := newTestService(repo).Update(context.Background(), "u1", id, model.NotePatch{Title: strPtr("T2")})
	if !errors.Is(err, model.NewDuplicateTitleError("T2")) {
		t.Errorf("expected DuplicateTitle, got %v", err)
	}
}

func TestUpdate_ForeignNote_ReturnsNotFound(t *testing.T) {
	id := uuid.NewString()
	repo := &mockNoteRepo{
		findByIDFn: func(ctx context.Context, nid string) (*model.Note, error) {
			return &model.Note{ID: id, OwnerID: "u2", Title: "T1"}, nil
		},
		updateFn: func(ctx context.Context, note *model.Note) error {
			t.Fatal("Update should not be called")
			return nil
		},
	}

	_, err := newTestService(repo).Update(context.Background(), "u1", id, model.NotePatch{Content: strPtr("x")})
	if !errors.Is(err, model.NewNoteNotFoundError()) {
		t.Errorf("expected NoteNotFound, got %v", err)
	}
}

// --- Delete ---

func TestDelete_ForeignNote_NotDeleted(t *testing.T) {
	id := uuid.NewString()
	repo := &mockNoteRepo{
		findByIDFn: func(ctx context.Context, nid string) (*model.Note, error) {
			return &model.Note{ID: id, OwnerID: "u2"}, nil
		},
		deleteByIDFn: func(ctx context.Context, nid string) error {
			t.Fatal("DeleteByID should not be called")
			return nil
		},
	}

	err := newTestService(repo).Delete(context.Background(), "u1", id)
	if !errors.Is(err, model.NewNoteNotFoundError()) {
		t.Errorf("expected NoteNotFound, got %v", err)
	}
}

func TestDelete_Owned(t *testing.T) {
	id := uuid.NewString()
	var deleted string
	repo := &mockNoteRepo{
		findByIDFn: func(ctx context.Context, nid string) (*model.Note, error) {
			return &model.Note{ID: id, OwnerID: "u1"}, nil
		},
		deleteByIDFn: func(ctx context.Context, nid string) error {
			deleted = nid
			return nil
		},
	}

	if err := newTestService(repo).Delete(context.Background(), "u1", id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != id {
		t.Errorf("deleted = %q, want %q", deleted, id)
	}
}

// --- List ---

func TestList_ScopedToCaller(t *testing.T) {
	var requested string
	repo := &mockNoteRepo{
		listByOwnerFn: func(ctx context.Context, ownerID string) ([]*model.Note, error) {
			requested = ownerID
			return []*model.Note{{ID: "n1", OwnerID: ownerID}}, nil
		},
	}

	notes, err := newTestService(repo).List(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requested != "u1" {
		t.Errorf("ListByOwner called with %q, want %q", requested, "u1")
	}
	if len(notes) != 1 {
		t.Errorf("len(notes) = %d, want 1", len(notes))
	}
}
