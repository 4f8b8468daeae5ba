package service

import (
	"context"
	"testing"

	"pulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_ListEnriched(t *testing.T) {
	t.Parallel()

	items, err := newServices(t).notifications.ListNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 8)
	for _, n := range items {
		require.NotNil(t, n.Actor)
		assert.Equal(t, n.ActorID, n.Actor.ID)
	}
}

func TestNotificationService_CreateNotification(t *testing.T) {
	t.Parallel()

	s := newServices(t)
	ctx := context.Background()

	_, err := s.notifications.CreateNotification(ctx, CreateNotificationInput{Type: "poke", ActorID: 2})
	assertValidationError(t, err)

	_, err = s.notifications.CreateNotification(ctx, CreateNotificationInput{Type: models.NotificationFollow})
	assertValidationError(t, err)

	n, err := s.notifications.CreateNotification(ctx, CreateNotificationInput{Type: "Follow", ActorID: 7, Content: "started following you"})
	require.NoError(t, err)
	assert.Equal(t, models.NotificationFollow, n.Type)
	require.NotNil(t, n.Actor)
	assert.Equal(t, "diegomorales", n.Actor.Username)

	unread, err := s.notifications.UnreadCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, unread)
}

func TestNotificationService_ReadAndDelete(t *testing.T) {
	t.Parallel()

	s := newServices(t)
	ctx := context.Background()

	n, err := s.notifications.MarkRead(ctx, 1)
	require.NoError(t, err)
	assert.True(t, n.IsRead)

	marked, err := s.notifications.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, marked)

	require.NoError(t, s.notifications.DeleteNotification(ctx, 1))
	assertNotFoundError(t, s.notifications.DeleteNotification(ctx, 1))
}
