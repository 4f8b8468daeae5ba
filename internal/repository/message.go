package repository

import (
	"context"
	"time"

	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/store"
)

// MessageRepository defines interface for conversation and message operations
type MessageRepository interface {
	ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error)
	GetConversation(ctx context.Context, id uint) (*models.Conversation, error)
	FindConversationBetween(ctx context.Context, userID, otherID uint) (*models.Conversation, error)
	CreateConversation(ctx context.Context, participants []uint) (*models.Conversation, error)
	MarkConversationRead(ctx context.Context, id, readerID uint) (*models.Conversation, error)
	ListMessages(ctx context.Context, conversationID uint) ([]models.Message, error)
	GetMessage(ctx context.Context, id uint) (*models.Message, error)
	CreateMessage(ctx context.Context, message models.Message) (*models.Message, error)
	MarkMessageRead(ctx context.Context, id uint) (*models.Message, error)
	DeleteMessage(ctx context.Context, id uint) (*models.Message, error)
}

type messageRepository struct {
	conversations *store.Collection[models.Conversation]
	messages      *store.Collection[models.Message]
	log           *observability.RepoLogger
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(conversations []models.Conversation, messages []models.Message, latency time.Duration) MessageRepository {
	return &messageRepository{
		conversations: store.New("conversations", conversations, latency, store.WithClone(func(c models.Conversation) models.Conversation {
			c = c.Clone()
			c.OtherUser = nil
			return c
		})),
		messages: store.New("messages", messages, latency, store.WithClone(func(m models.Message) models.Message {
			m.Sender = nil
			return m
		})),
		log: observability.NewRepoLogger("messages"),
	}
}

func (r *messageRepository) ListConversations(ctx context.Context, userID uint) (convs []models.Conversation, err error) {
	ctx, done := track(ctx, r.conversations, "ListConversations")
	defer func() { done(err) }()

	if err = r.conversations.Wait(ctx); err != nil {
		return nil, err
	}
	convs = r.conversations.Filter(func(c models.Conversation) bool { return c.HasParticipant(userID) })
	return newestFirst(convs, func(c models.Conversation) time.Time { return c.LastMessageAt }), nil
}

func (r *messageRepository) GetConversation(ctx context.Context, id uint) (conv *models.Conversation, err error) {
	ctx, done := track(ctx, r.conversations, "GetConversation")
	defer func() { done(err) }()

	return getByID(ctx, r.conversations, "Conversation", id)
}

func (r *messageRepository) FindConversationBetween(ctx context.Context, userID, otherID uint) (conv *models.Conversation, err error) {
	ctx, done := track(ctx, r.conversations, "FindConversationBetween")
	defer func() { done(err) }()

	if err = r.conversations.Wait(ctx); err != nil {
		return nil, err
	}
	matches := r.conversations.Filter(func(c models.Conversation) bool {
		return len(c.Participants) == 2 && c.HasParticipant(userID) && c.HasParticipant(otherID)
	})
	if len(matches) == 0 {
		return nil, models.NewNotFoundError("Conversation", []uint{userID, otherID})
	}
	return &matches[0], nil
}

func (r *messageRepository) CreateConversation(ctx context.Context, participants []uint) (created *models.Conversation, err error) {
	ctx, done := track(ctx, r.conversations, "CreateConversation")
	defer func() { done(err) }()

	if err = r.conversations.Wait(ctx); err != nil {
		return nil, err
	}
	c := r.conversations.Insert(store.Front, func(id uint) models.Conversation {
		return models.Conversation{
			ID:            id,
			Participants:  append([]uint(nil), participants...),
			LastMessageAt: nowUTC(),
		}
	})
	r.log.LogCreate(ctx, map[string]any{"conversation_id": c.ID, "participants": c.Participants})
	return &c, nil
}

// MarkConversationRead flags every message not sent by readerID as read and
// clears the unread counter.
func (r *messageRepository) MarkConversationRead(ctx context.Context, id, readerID uint) (conv *models.Conversation, err error) {
	ctx, done := track(ctx, r.conversations, "MarkConversationRead")
	defer func() { done(err) }()

	if err = r.conversations.Wait(ctx); err != nil {
		return nil, err
	}
	c, found, _ := r.conversations.Update(id, func(c *models.Conversation) error {
		c.UnreadCount = 0
		return nil
	})
	if !found {
		return nil, models.NewNotFoundError("Conversation", id)
	}
	n := r.messages.UpdateWhere(func(m models.Message) bool {
		return m.ConversationID == id && m.SenderID != readerID && !m.IsRead
	}, func(m *models.Message) { m.IsRead = true })
	r.log.LogUpdate(ctx, map[string]any{"conversation_id": id, "marked_read": n})
	return &c, nil
}

func (r *messageRepository) ListMessages(ctx context.Context, conversationID uint) (msgs []models.Message, err error) {
	ctx, done := track(ctx, r.messages, "ListMessages")
	defer func() { done(err) }()

	if err = r.messages.Wait(ctx); err != nil {
		return nil, err
	}
	msgs = r.messages.Filter(func(m models.Message) bool { return m.ConversationID == conversationID })
	return oldestFirst(msgs, func(m models.Message) time.Time { return m.CreatedAt }), nil
}

func (r *messageRepository) GetMessage(ctx context.Context, id uint) (msg *models.Message, err error) {
	ctx, done := track(ctx, r.messages, "GetMessage")
	defer func() { done(err) }()

	return getByID(ctx, r.messages, "Message", id)
}

// CreateMessage appends the message and moves its conversation preview forward.
func (r *messageRepository) CreateMessage(ctx context.Context, message models.Message) (created *models.Message, err error) {
	ctx, done := track(ctx, r.messages, "CreateMessage")
	defer func() { done(err) }()

	if err = r.messages.Wait(ctx); err != nil {
		return nil, err
	}
	if _, ok := r.conversations.Find(message.ConversationID); !ok {
		return nil, models.NewNotFoundError("Conversation", message.ConversationID)
	}
	m := r.messages.Insert(store.Back, func(id uint) models.Message {
		message.ID = id
		message.IsRead = false
		if message.CreatedAt.IsZero() {
			message.CreatedAt = nowUTC()
		}
		return message
	})
	_, _, _ = r.conversations.Update(m.ConversationID, func(c *models.Conversation) error {
		c.LastMessage = m.Content
		c.LastMessageAt = m.CreatedAt
		return nil
	})
	r.log.LogCreate(ctx, map[string]any{"id": m.ID, "conversation_id": m.ConversationID})
	return &m, nil
}

func (r *messageRepository) MarkMessageRead(ctx context.Context, id uint) (msg *models.Message, err error) {
	ctx, done := track(ctx, r.messages, "MarkMessageRead")
	defer func() { done(err) }()

	if err = r.messages.Wait(ctx); err != nil {
		return nil, err
	}
	m, found, _ := r.messages.Update(id, func(m *models.Message) error {
		m.IsRead = true
		return nil
	})
	if !found {
		return nil, models.NewNotFoundError("Message", id)
	}
	r.log.LogUpdate(ctx, map[string]any{"id": id, "is_read": true})
	return &m, nil
}

func (r *messageRepository) DeleteMessage(ctx context.Context, id uint) (removed *models.Message, err error) {
	ctx, done := track(ctx, r.messages, "DeleteMessage")
	defer func() { done(err) }()

	return deleteByID(ctx, r.messages, r.log, "Message", id)
}
