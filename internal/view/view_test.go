package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"pulse/internal/config"
	"pulse/internal/featureflags"
	"pulse/internal/fixtures"
	"pulse/internal/models"
	"pulse/internal/optimistic"
	"pulse/internal/repository"
	"pulse/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPages(t *testing.T) *Pages {
	t.Helper()
	ds, err := fixtures.Default()
	require.NoError(t, err)
	repos := repository.NewSet(ds, config.Latencies{})
	return &Pages{
		Users:           service.NewUserService(repos.Users, 1),
		Posts:           service.NewPostService(repos.Posts, repos.Users),
		Comments:        service.NewCommentService(repos.Comments, repos.Posts, repos.Users),
		MessageSvc:      service.NewMessageService(repos.Messages, repos.Users),
		NotificationSvc: service.NewNotificationService(repos.Notifications, repos.Users),
		Flags:           featureflags.NewManager(""),
	}
}

func TestView_LoadTransitions(t *testing.T) {
	t.Parallel()

	v := NewView[string]("test", "/test")
	assert.Equal(t, PhaseLoading, v.State().Phase)

	failed := v.Load(context.Background(), func(context.Context) (*string, error) {
		return nil, models.NewNotFoundError("Thing", 7)
	})
	assert.Equal(t, PhaseError, failed.Phase)
	assert.Equal(t, "Thing with ID 7 not found", failed.Error)
	assert.Equal(t, "/test", failed.Retry)
	assert.Nil(t, failed.Data)

	value := "ok"
	ready := v.Load(context.Background(), func(context.Context) (*string, error) { return &value, nil })
	assert.Equal(t, PhaseReady, ready.Phase)
	assert.Empty(t, ready.Error)
	require.NotNil(t, ready.Data)
	assert.Equal(t, "ok", *ready.Data)
}

func TestView_InternalErrorsAreMasked(t *testing.T) {
	t.Parallel()

	v := NewView[string]("test", "/")
	m := v.Load(context.Background(), func(context.Context) (*string, error) {
		return nil, errors.New("pq: connection reset")
	})
	assert.Equal(t, PhaseError, m.Phase)
	assert.NotContains(t, m.Error, "pq")
}

func TestView_CancelledLoadDoesNotTransition(t *testing.T) {
	t.Parallel()

	v := NewView[string]("test", "/")
	ctx, cancel := context.WithCancel(context.Background())

	m := v.Load(ctx, func(ctx context.Context) (*string, error) {
		cancel()
		value := "late"
		return &value, nil
	})
	assert.Equal(t, PhaseLoading, m.Phase)
	assert.Nil(t, m.Data)
}

func TestView_StaleLoadIsDiscarded(t *testing.T) {
	t.Parallel()

	v := NewView[string]("test", "/")
	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan Model[string])

	go func() {
		done <- v.Load(context.Background(), func(context.Context) (*string, error) {
			close(started)
			<-release
			value := "stale"
			return &value, nil
		})
	}()
	<-started

	fresh := "fresh"
	v.Load(context.Background(), func(context.Context) (*string, error) { return &fresh, nil })
	close(release)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("stale load did not return")
	}
	state := v.State()
	require.NotNil(t, state.Data)
	assert.Equal(t, "fresh", *state.Data)
}

func TestPages_Home(t *testing.T) {
	t.Parallel()

	m := newPages(t).Home(context.Background(), 1)
	require.Equal(t, PhaseReady, m.Phase, m.Error)
	assert.Equal(t, PageHome, m.Page)
	assert.Equal(t, uint(1), m.Data.CurrentUser.ID)
	assert.Len(t, m.Data.Posts, 12)
	assert.Equal(t, service.MaxPostLength, m.Data.Composer.MaxLength)
	assert.Equal(t, Features{ShareModal: true, PrivacyModal: true}, m.Data.Features)
}

func TestPages_Profile(t *testing.T) {
	t.Parallel()

	p := newPages(t)
	ctx := context.Background()

	own := p.Profile(ctx, 1, 0)
	require.Equal(t, PhaseReady, own.Phase, own.Error)
	assert.True(t, own.Data.IsOwnProfile)
	assert.Equal(t, "/profile", own.Retry)

	other := p.Profile(ctx, 1, 2)
	require.Equal(t, PhaseReady, other.Phase, other.Error)
	assert.False(t, other.Data.IsOwnProfile)
	assert.True(t, other.Data.IsFollowing)
	for _, post := range other.Data.Posts {
		assert.Equal(t, uint(2), post.AuthorID)
	}

	missing := p.Profile(ctx, 1, 404)
	assert.Equal(t, PhaseError, missing.Phase)
	assert.Equal(t, "/profile/404", missing.Retry)
}

func TestPages_Messages(t *testing.T) {
	t.Parallel()

	p := newPages(t)
	ctx := context.Background()

	m := p.Messages(ctx, 1, 1)
	require.Equal(t, PhaseReady, m.Phase, m.Error)
	assert.Len(t, m.Data.Conversations, 4)
	require.NotNil(t, m.Data.Selected)
	assert.Len(t, m.Data.Messages, 4)

	unknown := p.Messages(ctx, 1, 99)
	require.Equal(t, PhaseReady, unknown.Phase)
	assert.Nil(t, unknown.Data.Selected)
	assert.Equal(t, "/messages?conversation=99", unknown.Retry)
}

func TestPages_Notifications(t *testing.T) {
	t.Parallel()

	p := newPages(t)
	ctx := context.Background()

	tests := []struct {
		filter string
		want   string
		count  int
	}{
		{"", FilterAll, 8},
		{"follows", FilterFollows, 2},
		{"MENTIONS", FilterMentions, 2},
		{"bogus", FilterAll, 8},
	}

	for _, tt := range tests {
		m := p.Notifications(ctx, tt.filter)
		require.Equal(t, PhaseReady, m.Phase, m.Error)
		assert.Equal(t, tt.want, m.Data.Filter)
		assert.Len(t, m.Data.Notifications, tt.count)
		assert.Equal(t, 4, m.Data.UnreadCount)
	}
}

func TestPages_PostDetail(t *testing.T) {
	t.Parallel()

	p := newPages(t)
	ctx := context.Background()

	m := p.PostDetail(ctx, 1, 1)
	require.Equal(t, PhaseReady, m.Phase, m.Error)
	assert.Equal(t, uint(1), m.Data.Post.ID)
	assert.Len(t, m.Data.Comments, 3)
	assert.Equal(t, service.MaxCommentLength, m.Data.CommentLimit)

	missing := p.PostDetail(ctx, 1, 999)
	assert.Equal(t, PhaseError, missing.Phase)
	assert.Equal(t, "Post with ID 999 not found", missing.Error)
	assert.Equal(t, "/post/999", missing.Retry)
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	m := NotFound("/nope")
	assert.Equal(t, PhaseReady, m.Phase)
	assert.Equal(t, "/nope", m.Data.Path)
}

func TestPages_ToggleLike(t *testing.T) {
	t.Parallel()

	p := newPages(t)
	ctx := context.Background()

	state := optimistic.NewState(LikeState{PostID: 12, LikeCount: 5})
	require.NoError(t, p.ToggleLike(ctx, state))
	assert.Equal(t, LikeState{PostID: 12, Liked: true, LikeCount: 6}, state.Get())

	require.NoError(t, p.ToggleLike(ctx, state))
	assert.Equal(t, LikeState{PostID: 12, Liked: false, LikeCount: 5}, state.Get())

	missing := LikeState{PostID: 999, LikeCount: 3}
	failing := optimistic.NewState(missing)
	assert.Error(t, p.ToggleLike(ctx, failing))
	assert.Equal(t, missing, failing.Get())
}

func TestPages_ToggleFollow(t *testing.T) {
	t.Parallel()

	p := newPages(t)
	ctx := context.Background()

	target, err := p.Users.GetUserByID(ctx, 7)
	require.NoError(t, err)

	state := optimistic.NewState(FollowState{UserID: 7, FollowerCount: target.FollowerCount})
	require.NoError(t, p.ToggleFollow(ctx, 1, state))
	assert.True(t, state.Get().Following)
	assert.Equal(t, target.FollowerCount+1, state.Get().FollowerCount)

	self := FollowState{UserID: 1, FollowerCount: 10}
	failing := optimistic.NewState(self)
	assert.Error(t, p.ToggleFollow(ctx, 1, failing))
	assert.Equal(t, self, failing.Get())
}
