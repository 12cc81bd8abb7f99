package note

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hitoshi/kcnotes/internal/database"
	"github.com/hitoshi/kcnotes/internal/model"
	"github.com/hitoshi/kcnotes/internal/repository"
)

// setupStore はインメモリSQLiteにユーザーを作成し、ノートサービスを返す。
func setupStore(t *testing.T, usernames ...string) (*Service, map[string]string) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open("sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.RunMigrations(db))

	users := repository.NewSQLUserRepo(db)
	ids := make(map[string]string, len(usernames))
	for _, name := range usernames {
		u := &model.User{
			ID:           uuid.NewString(),
			Username:     name,
			PasswordHash: "x",
			CreatedAt:    fixedNow,
			UpdatedAt:    fixedNow,
		}
		require.NoError(t, users.Create(ctx, u))
		ids[name] = u.ID
	}

	return NewService(repository.NewSQLNoteRepo(db), nil), ids
}

// TestIntegration_OwnershipIsolation は他人のノートを参照・更新・削除できないことを検証する。
func TestIntegration_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	svc, ids := setupStore(t, "alice", "bob")

	n, err := svc.Create(ctx, ids["alice"], "T1", "C1")
	require.NoError(t, err)

	_, err = svc.Get(ctx, ids["bob"], n.ID)
	assert.ErrorIs(t, err, model.NewNoteNotFoundError())

	_, err = svc.Update(ctx, ids["bob"], n.ID, model.NotePatch{Content: strPtr("hacked")})
	assert.ErrorIs(t, err, model.NewNoteNotFoundError())

	assert.ErrorIs(t, svc.Delete(ctx, ids["bob"], n.ID), model.NewNoteNotFoundError())

	got, err := svc.Get(ctx, ids["alice"], n.ID)
	require.NoError(t, err)
	assert.Equal(t, "C1", got.Content)

	bobNotes, err := svc.List(ctx, ids["bob"])
	require.NoError(t, err)
	assert.Empty(t, bobNotes)
}

// TestIntegration_UpdateRoundTrip は更新内容が再取得で観測できることを検証する。
func TestIntegration_UpdateRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, ids := setupStore(t, "alice")
	alice := ids["alice"]

	clock := fixedNow
	svc.now = func() time.Time { return clock }

	n, err := svc.Create(ctx, alice, "T1", "C1")
	require.NoError(t, err)

	clock = fixedNow.Add(time.Minute)
	_, err = svc.Update(ctx, alice, n.ID, model.NotePatch{Title: strPtr("T2"), Content: strPtr("C2")})
	require.NoError(t, err)

	got, err := svc.Get(ctx, alice, n.ID)
	require.NoError(t, err)
	assert.Equal(t, "T2", got.Title)
	assert.Equal(t, "C2", got.Content)
	assert.True(t, fixedNow.Equal(got.CreatedAt))
	assert.True(t, clock.Equal(got.UpdatedAt))

	// 自分自身のタイトルへの変更は重複扱いしない
	_, err = svc.Update(ctx, alice, n.ID, model.NotePatch{Title: strPtr("T2")})
	assert.NoError(t, err)
}

func TestIntegration_DuplicateTitlePerOwner(t *testing.T) {
	ctx := context.Background()
	svc, ids := setupStore(t, "alice", "bob")

	_, err := svc.Create(ctx, ids["alice"], "T1", "C1")
	require.NoError(t, err)

	_, err = svc.Create(ctx, ids["alice"], "T1", "again")
	assert.ErrorIs(t, err, model.NewDuplicateTitleError("T1"))

	_, err = svc.Create(ctx, ids["bob"], "T1", "bob's own")
	assert.NoError(t, err)

	second, err := svc.Create(ctx, ids["alice"], "T2", "C2")
	require.NoError(t, err)
	_, err = svc.Update(ctx, ids["alice"], second.ID, model.NotePatch{Title: strPtr("T1")})
	assert.ErrorIs(t, err, model.NewDuplicateTitleError("T1"))
}

func TestIntegration_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, ids := setupStore(t, "alice")
	alice := ids["alice"]

	clock := fixedNow
	svc.now = func() time.Time { return clock }

	first, err := svc.Create(ctx, alice, "first", "1")
	require.NoError(t, err)
	clock = clock.Add(time.Minute)
	_, err = svc.Create(ctx, alice, "second", "2")
	require.NoError(t, err)

	// 古いノートを更新すると先頭に来る
	clock = clock.Add(time.Minute)
	_, err = svc.Update(ctx, alice, first.ID, model.NotePatch{Content: strPtr("1b")})
	require.NoError(t, err)

	notes, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "first", notes[0].Title)
	assert.Equal(t, "second", notes[1].Title)
}
