package repository

import (
	"context"
	"testing"

	"pulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_CreateThenGet(t *testing.T) {
	repo := newTestSet(t).Users
	ctx := context.Background()

	created, err := repo.Create(ctx, models.User{Username: "newbie", DisplayName: "New Bie", FollowerCount: 50})
	require.NoError(t, err)
	assert.Equal(t, uint(9), created.ID)
	assert.Zero(t, created.FollowerCount)
	assert.False(t, created.CreatedAt.IsZero())

	fetched, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *fetched)
}

func TestUserRepository_GetByID_NotFound(t *testing.T) {
	repo := newTestSet(t).Users

	_, err := repo.GetByID(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err))
}

func TestUserRepository_UpdateKeepsID(t *testing.T) {
	repo := newTestSet(t).Users
	ctx := context.Background()

	bio := "updated bio"
	updated, err := repo.Update(ctx, 2, models.UserPatch{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, uint(2), updated.ID)
	assert.Equal(t, "updated bio", updated.Bio)
	assert.Equal(t, "mayachen", updated.Username)

	_, err = repo.Update(ctx, 404, models.UserPatch{})
	assert.True(t, models.IsNotFound(err))
}

func TestUserRepository_DeleteThenGet(t *testing.T) {
	repo := newTestSet(t).Users
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, 8))
	_, err := repo.GetByID(ctx, 8)
	assert.True(t, models.IsNotFound(err))
	assert.True(t, models.IsNotFound(repo.Delete(ctx, 8)))
}

func TestUserRepository_Search(t *testing.T) {
	repo := newTestSet(t).Users
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"Empty query returns all", "", 8},
		{"Matches username", "mayachen", 1},
		{"Matches display name case-insensitively", "SAM", 1},
		{"No match", "zzz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := repo.Search(ctx, tt.query)
			require.NoError(t, err)
			assert.Len(t, users, tt.want)
		})
	}
}

func TestUserRepository_FollowAndUnfollow(t *testing.T) {
	repo := newTestSet(t).Users
	ctx := context.Background()

	before2, _ := repo.GetByID(ctx, 7)
	before1, _ := repo.GetByID(ctx, 4)

	changed, err := repo.Follow(ctx, 7, 4)
	require.NoError(t, err)
	assert.True(t, changed)

	after2, _ := repo.GetByID(ctx, 7)
	after1, _ := repo.GetByID(ctx, 4)
	assert.Equal(t, before2.FollowingCount+1, after2.FollowingCount)
	assert.Equal(t, before1.FollowerCount+1, after1.FollowerCount)

	following, err := repo.IsFollowing(ctx, 7, 4)
	require.NoError(t, err)
	assert.True(t, following)

	changed, err = repo.Follow(ctx, 7, 4)
	require.NoError(t, err)
	assert.False(t, changed, "second follow is a no-op")

	changed, err = repo.Unfollow(ctx, 7, 4)
	require.NoError(t, err)
	assert.True(t, changed)

	restored2, _ := repo.GetByID(ctx, 7)
	restored1, _ := repo.GetByID(ctx, 4)
	assert.Equal(t, before2.FollowingCount, restored2.FollowingCount)
	assert.Equal(t, before1.FollowerCount, restored1.FollowerCount)

	changed, err = repo.Unfollow(ctx, 7, 4)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestUserRepository_FollowUnknownUser(t *testing.T) {
	repo := newTestSet(t).Users

	_, err := repo.Follow(context.Background(), 1, 999)
	assert.True(t, models.IsNotFound(err))
}

func TestUserRepository_UnfollowNeverGoesNegative(t *testing.T) {
	repo := NewUserRepository(
		[]models.User{{ID: 1}, {ID: 2}},
		[]models.Follow{{FollowerID: 2, FollowingID: 1}},
		0,
	)
	ctx := context.Background()

	changed, err := repo.Unfollow(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, changed)

	u1, _ := repo.GetByID(ctx, 1)
	u2, _ := repo.GetByID(ctx, 2)
	assert.Equal(t, 0, u1.FollowerCount)
	assert.Equal(t, 0, u2.FollowingCount)
}

func TestUserRepository_AdjustPostCount(t *testing.T) {
	repo := newTestSet(t).Users
	ctx := context.Background()

	require.NoError(t, repo.AdjustPostCount(ctx, 8, -1))
	u, _ := repo.GetByID(ctx, 8)
	assert.Equal(t, 0, u.PostCount)

	assert.True(t, models.IsNotFound(repo.AdjustPostCount(ctx, 999, 1)))
}

func TestUserRepository_EmptyPatchChangesNothing(t *testing.T) {
	repo := newTestSet(t).Users
	ctx := context.Background()

	before, err := repo.GetByID(ctx, 3)
	require.NoError(t, err)

	updated, err := repo.Update(ctx, 3, models.UserPatch{})
	require.NoError(t, err)
	assert.Equal(t, *before, *updated)
}
