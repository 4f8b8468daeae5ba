package service

import (
	"context"
	"strings"

	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"
)

type NotificationService struct {
	notificationRepo repository.NotificationRepository
	rel              relations
}

type CreateNotificationInput struct {
	Type    string `json:"type" validate:"required,oneof=like comment follow message"`
	ActorID uint   `json:"actorId" validate:"required"`
	PostID  *uint  `json:"postId"`
	Content string `json:"content" validate:"max=280"`
}

func NewNotificationService(notificationRepo repository.NotificationRepository, userRepo repository.UserRepository) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		rel:              newRelations(userRepo),
	}
}

// ListNotifications returns every notification newest first with its actor.
func (s *NotificationService) ListNotifications(ctx context.Context) ([]models.Notification, error) {
	items, err := s.notificationRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.rel.notificationActor.Apply(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *NotificationService) CreateNotification(ctx context.Context, in CreateNotificationInput) (*models.Notification, error) {
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	in.Content = strings.TrimSpace(in.Content)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	n, err := s.notificationRepo.Create(ctx, models.Notification{
		Type:    in.Type,
		ActorID: in.ActorID,
		PostID:  in.PostID,
		Content: in.Content,
	})
	if err != nil {
		return nil, err
	}
	if err := s.rel.notificationActor.One(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint) (*models.Notification, error) {
	return s.notificationRepo.MarkRead(ctx, id)
}

// MarkAllRead flags every notification as read and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context) (int, error) {
	return s.notificationRepo.MarkAllRead(ctx)
}

func (s *NotificationService) DeleteNotification(ctx context.Context, id uint) error {
	return s.notificationRepo.Delete(ctx, id)
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int, error) {
	return s.notificationRepo.UnreadCount(ctx)
}
