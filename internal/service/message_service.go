package service

import (
	"context"
	"strings"

	"pulse/internal/models"
	"pulse/internal/repository"
)

// MessageService provides conversation and direct-message business logic.
type MessageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	rel         relations
}

type SendMessageInput struct {
	ConversationID uint
	SenderID       uint
	Content        string
}

// SentMessage is the stored message together with the conversation it
// advanced, so callers can notify the other participant.
type SentMessage struct {
	Message      *models.Message
	Conversation *models.Conversation
}

// NewMessageService returns a new MessageService.
func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		rel:         newRelations(userRepo),
	}
}

// ListConversations returns userID's conversations, most recent first, each
// joined to the other participant.
func (s *MessageService) ListConversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	convs, err := s.messageRepo.ListConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.rel.otherUser(userID).Apply(ctx, convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// GetConversation returns the conversation if viewerID takes part in it.
func (s *MessageService) GetConversation(ctx context.Context, id, viewerID uint) (*models.Conversation, error) {
	conv, err := s.participantConversation(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.rel.otherUser(viewerID).One(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// ListMessages returns the conversation's messages oldest first.
func (s *MessageService) ListMessages(ctx context.Context, conversationID, viewerID uint) ([]models.Message, error) {
	if _, err := s.participantConversation(ctx, conversationID, viewerID); err != nil {
		return nil, err
	}
	msgs, err := s.messageRepo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := s.rel.messageSender.Apply(ctx, msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SendMessage appends a message and moves the conversation preview forward.
// The unread counter is left alone.
func (s *MessageService) SendMessage(ctx context.Context, in SendMessageInput) (*SentMessage, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Message content is required")
	}
	if _, err := s.participantConversation(ctx, in.ConversationID, in.SenderID); err != nil {
		return nil, err
	}

	msg, err := s.messageRepo.CreateMessage(ctx, models.Message{
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Content:        content,
	})
	if err != nil {
		return nil, err
	}
	conv, err := s.messageRepo.GetConversation(ctx, in.ConversationID)
	if err != nil {
		return nil, err
	}
	if err := s.rel.messageSender.One(ctx, msg); err != nil {
		return nil, err
	}
	return &SentMessage{Message: msg, Conversation: conv}, nil
}

// MarkMessageRead marks a message read. Only participants of its
// conversation may do so.
func (s *MessageService) MarkMessageRead(ctx context.Context, messageID, readerID uint) (*models.Message, error) {
	msg, err := s.messageRepo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if _, err := s.participantConversation(ctx, msg.ConversationID, readerID); err != nil {
		return nil, err
	}
	return s.messageRepo.MarkMessageRead(ctx, messageID)
}

// MarkConversationRead clears the unread counter for readerID.
func (s *MessageService) MarkConversationRead(ctx context.Context, conversationID, readerID uint) (*models.Conversation, error) {
	if _, err := s.participantConversation(ctx, conversationID, readerID); err != nil {
		return nil, err
	}
	return s.messageRepo.MarkConversationRead(ctx, conversationID, readerID)
}

// DeleteMessage removes a message sent by userID.
func (s *MessageService) DeleteMessage(ctx context.Context, messageID, userID uint) (*models.Message, error) {
	msg, err := s.messageRepo.GetMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != userID {
		return nil, models.NewUnauthorizedError("You can only delete your own messages")
	}
	return s.messageRepo.DeleteMessage(ctx, messageID)
}

// StartConversation returns the existing two-party conversation between the
// users, creating it when none exists. created reports which happened.
func (s *MessageService) StartConversation(ctx context.Context, userID, otherID uint) (conv *models.Conversation, created bool, err error) {
	if otherID == 0 {
		return nil, false, models.NewValidationError("Participant ID is required")
	}
	if userID == otherID {
		return nil, false, models.NewValidationError("Cannot start a conversation with yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, otherID); err != nil {
		return nil, false, err
	}

	conv, err = s.messageRepo.FindConversationBetween(ctx, userID, otherID)
	switch {
	case err == nil:
	case models.IsNotFound(err):
		conv, err = s.messageRepo.CreateConversation(ctx, []uint{userID, otherID})
		if err != nil {
			return nil, false, err
		}
		created = true
	default:
		return nil, false, err
	}

	if err := s.rel.otherUser(userID).One(ctx, conv); err != nil {
		return nil, false, err
	}
	return conv, created, nil
}

func (s *MessageService) participantConversation(ctx context.Context, id, userID uint) (*models.Conversation, error) {
	conv, err := s.messageRepo.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !conv.HasParticipant(userID) {
		return nil, models.NewUnauthorizedError("You are not a participant in this conversation")
	}
	return conv, nil
}
