package repository

import (
	"context"
	"time"

	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/store"
)

// NotificationRepository defines interface for notification operations
type NotificationRepository interface {
	List(ctx context.Context) ([]models.Notification, error)
	GetByID(ctx context.Context, id uint) (*models.Notification, error)
	Create(ctx context.Context, n models.Notification) (*models.Notification, error)
	MarkRead(ctx context.Context, id uint) (*models.Notification, error)
	MarkAllRead(ctx context.Context) (int, error)
	Delete(ctx context.Context, id uint) error
	UnreadCount(ctx context.Context) (int, error)
}

type notificationRepository struct {
	notifications *store.Collection[models.Notification]
	log           *observability.RepoLogger
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(items []models.Notification, latency time.Duration) NotificationRepository {
	return &notificationRepository{
		notifications: store.New("notifications", items, latency, store.WithClone(func(n models.Notification) models.Notification {
			n.Actor = nil
			n.PostID = clonePtr(n.PostID)
			return n
		})),
		log: observability.NewRepoLogger("notifications"),
	}
}

func (r *notificationRepository) List(ctx context.Context) (items []models.Notification, err error) {
	ctx, done := track(ctx, r.notifications, "List")
	defer func() { done(err) }()

	if err = r.notifications.Wait(ctx); err != nil {
		return nil, err
	}
	return newestFirst(r.notifications.Snapshot(), func(n models.Notification) time.Time { return n.CreatedAt }), nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id uint) (n *models.Notification, err error) {
	ctx, done := track(ctx, r.notifications, "GetByID")
	defer func() { done(err) }()

	return getByID(ctx, r.notifications, "Notification", id)
}

func (r *notificationRepository) Create(ctx context.Context, n models.Notification) (created *models.Notification, err error) {
	ctx, done := track(ctx, r.notifications, "Create")
	defer func() { done(err) }()

	if err = r.notifications.Wait(ctx); err != nil {
		return nil, err
	}
	out := r.notifications.Insert(store.Front, func(id uint) models.Notification {
		n.ID = id
		n.IsRead = false
		if n.CreatedAt.IsZero() {
			n.CreatedAt = nowUTC()
		}
		return n
	})
	r.log.LogCreate(ctx, map[string]any{"id": out.ID, "type": out.Type})
	return &out, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uint) (n *models.Notification, err error) {
	ctx, done := track(ctx, r.notifications, "MarkRead")
	defer func() { done(err) }()

	if err = r.notifications.Wait(ctx); err != nil {
		return nil, err
	}
	out, found, _ := r.notifications.Update(id, func(n *models.Notification) error {
		n.IsRead = true
		return nil
	})
	if !found {
		return nil, models.NewNotFoundError("Notification", id)
	}
	return &out, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context) (count int, err error) {
	ctx, done := track(ctx, r.notifications, "MarkAllRead")
	defer func() { done(err) }()

	if err = r.notifications.Wait(ctx); err != nil {
		return 0, err
	}
	count = r.notifications.UpdateWhere(
		func(n models.Notification) bool { return !n.IsRead },
		func(n *models.Notification) { n.IsRead = true },
	)
	r.log.LogUpdate(ctx, map[string]any{"marked_read": count})
	return count, nil
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, done := track(ctx, r.notifications, "Delete")
	defer func() { done(err) }()

	_, err = deleteByID(ctx, r.notifications, r.log, "Notification", id)
	return err
}

func (r *notificationRepository) UnreadCount(ctx context.Context) (count int, err error) {
	ctx, done := track(ctx, r.notifications, "UnreadCount")
	defer func() { done(err) }()

	if err = r.notifications.Wait(ctx); err != nil {
		return 0, err
	}
	return len(r.notifications.Filter(func(n models.Notification) bool { return !n.IsRead })), nil
}
