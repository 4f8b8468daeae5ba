package repository

import (
	"context"
	"testing"

	"pulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentRepository_ListByPostNewestFirst(t *testing.T) {
	repo := newTestSet(t).Comments

	comments, err := repo.ListByPost(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, []uint{3, 2, 1}, []uint{comments[0].ID, comments[1].ID, comments[2].ID})
}

func TestCommentRepository_Create(t *testing.T) {
	repo := newTestSet(t).Comments
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Comment{PostID: 1, AuthorID: 2, Content: "Nice!"})
	require.NoError(t, err)
	assert.Equal(t, uint(16), created.ID)
	assert.Zero(t, created.LikeCount)

	comments, err := repo.ListByPost(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, created.ID, comments[0].ID)

	count, err := repo.CountByPost(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestCommentRepository_Update(t *testing.T) {
	repo := newTestSet(t).Comments
	ctx := context.Background()

	content := "edited"
	updated, err := repo.Update(ctx, 5, models.CommentPatch{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, uint(5), updated.ID)
	assert.Equal(t, uint(2), updated.PostID)
	assert.Equal(t, "edited", updated.Content)
	assert.NotNil(t, updated.EditedAt)

	_, err = repo.Update(ctx, 999, models.CommentPatch{Content: &content})
	assert.True(t, models.IsNotFound(err))
}

func TestCommentRepository_Delete(t *testing.T) {
	repo := newTestSet(t).Comments
	ctx := context.Background()

	removed, err := repo.Delete(ctx, 6)
	require.NoError(t, err)
	assert.Equal(t, uint(3), removed.PostID)

	_, err = repo.GetByID(ctx, 6)
	assert.True(t, models.IsNotFound(err))

	_, err = repo.Delete(ctx, 6)
	assert.True(t, models.IsNotFound(err))
}

func TestCommentRepository_ListByUnknownPost(t *testing.T) {
	repo := newTestSet(t).Comments

	comments, err := repo.ListByPost(context.Background(), 999)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCommentRepository_CreateThenGet(t *testing.T) {
	repo := newTestSet(t).Comments
	ctx := context.Background()

	created, err := repo.Create(ctx, models.Comment{PostID: 2, AuthorID: 3, Content: "Round trip"})
	require.NoError(t, err)

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *fetched)
}

func TestCommentRepository_EmptyPatchOnlyStampsEdit(t *testing.T) {
	repo := newTestSet(t).Comments
	ctx := context.Background()

	before, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, 2, models.CommentPatch{})
	require.NoError(t, err)
	require.NotNil(t, updated.EditedAt)

	want, got := *before, *updated
	want.EditedAt, got.EditedAt = nil, nil
	assert.Equal(t, want, got)

	// The stamp handed out is a copy of the stored one.
	stamp := *updated.EditedAt
	*updated.EditedAt = stamp.AddDate(1, 0, 0)
	fetched, err := repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, stamp, *fetched.EditedAt)
}
