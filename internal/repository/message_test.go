package repository

import (
	"context"
	"testing"

	"pulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_ListConversationsByRecency(t *testing.T) {
	repo := newTestSet(t).Messages

	convs, err := repo.ListConversations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, convs, 4)
	assert.Equal(t, uint(1), convs[0].ID)
	assert.Equal(t, uint(4), convs[3].ID)

	convs, err = repo.ListConversations(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, convs, 1)
}

func TestMessageRepository_ListMessagesOldestFirst(t *testing.T) {
	repo := newTestSet(t).Messages

	msgs, err := repo.ListMessages(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	for i := 1; i < len(msgs); i++ {
		assert.True(t, msgs[i].CreatedAt.After(msgs[i-1].CreatedAt))
	}
}

func TestMessageRepository_CreateMessageUpdatesConversation(t *testing.T) {
	repo := newTestSet(t).Messages
	ctx := context.Background()

	before, err := repo.GetConversation(ctx, 3)
	require.NoError(t, err)

	msg, err := repo.CreateMessage(ctx, models.Message{ConversationID: 3, SenderID: 1, Content: "See you soon"})
	require.NoError(t, err)
	assert.Equal(t, uint(13), msg.ID)
	assert.False(t, msg.IsRead)

	conv, err := repo.GetConversation(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "See you soon", conv.LastMessage)
	assert.Equal(t, msg.CreatedAt, conv.LastMessageAt)
	assert.Equal(t, before.UnreadCount, conv.UnreadCount)

	convs, err := repo.ListConversations(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(3), convs[0].ID, "conversation with the newest message sorts first")
}

func TestMessageRepository_CreateMessageUnknownConversation(t *testing.T) {
	repo := newTestSet(t).Messages

	_, err := repo.CreateMessage(context.Background(), models.Message{ConversationID: 99, SenderID: 1, Content: "hi"})
	assert.True(t, models.IsNotFound(err))
}

func TestMessageRepository_MarkConversationRead(t *testing.T) {
	repo := newTestSet(t).Messages
	ctx := context.Background()

	conv, err := repo.MarkConversationRead(ctx, 1, 1)
	require.NoError(t, err)
	assert.Zero(t, conv.UnreadCount)

	msg, err := repo.GetMessage(ctx, 4)
	require.NoError(t, err)
	assert.True(t, msg.IsRead)

	_, err = repo.MarkConversationRead(ctx, 42, 1)
	assert.True(t, models.IsNotFound(err))
}

func TestMessageRepository_FindAndCreateConversation(t *testing.T) {
	repo := newTestSet(t).Messages
	ctx := context.Background()

	existing, err := repo.FindConversationBetween(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), existing.ID)

	_, err = repo.FindConversationBetween(ctx, 1, 7)
	assert.True(t, models.IsNotFound(err))

	created, err := repo.CreateConversation(ctx, []uint{1, 7})
	require.NoError(t, err)
	assert.Equal(t, uint(5), created.ID)
	assert.Empty(t, created.LastMessage)

	found, err := repo.FindConversationBetween(ctx, 7, 1)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestMessageRepository_MarkAndDeleteMessage(t *testing.T) {
	repo := newTestSet(t).Messages
	ctx := context.Background()

	msg, err := repo.MarkMessageRead(ctx, 7)
	require.NoError(t, err)
	assert.True(t, msg.IsRead)

	removed, err := repo.DeleteMessage(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(2), removed.ConversationID)

	_, err = repo.GetMessage(ctx, 7)
	assert.True(t, models.IsNotFound(err))
}

func TestMessageRepository_CreateThenGet(t *testing.T) {
	repo := newTestSet(t).Messages
	ctx := context.Background()

	created, err := repo.CreateMessage(ctx, models.Message{ConversationID: 2, SenderID: 3, Content: "Round trip"})
	require.NoError(t, err)

	fetched, err := repo.GetMessage(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *fetched)
}
