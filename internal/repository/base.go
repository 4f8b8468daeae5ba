// Package repository provides the in-memory data access layer for the application.
package repository

import (
	"context"
	"sort"
	"time"

	"pulse/internal/config"
	"pulse/internal/fixtures"
	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/store"
)

// Set bundles one repository per entity over a single dataset.
type Set struct {
	Users         UserRepository
	Posts         PostRepository
	Comments      CommentRepository
	Messages      MessageRepository
	Notifications NotificationRepository
}

// NewSet builds every repository from a private copy of ds.
func NewSet(ds *fixtures.Dataset, lat config.Latencies) *Set {
	ds = ds.Clone()
	return &Set{
		Users:         NewUserRepository(ds.Users, ds.Follows, lat.Users),
		Posts:         NewPostRepository(ds.Posts, lat.Posts),
		Comments:      NewCommentRepository(ds.Comments, lat.Comments),
		Messages:      NewMessageRepository(ds.Conversations, ds.Messages, lat.Messages),
		Notifications: NewNotificationRepository(ds.Notifications, lat.Notifications),
	}
}

// track starts a repository span and returns the completion hook that
// records the outcome.
func track[T store.Record](ctx context.Context, c *store.Collection[T], method string) (context.Context, func(error)) {
	ctx, span := observability.StartRepositorySpan(ctx, c.Name(), method)
	return ctx, func(err error) {
		if err != nil && !models.IsNotFound(err) {
			span.SetError(err)
		}
		c.Record(method, err)
		span.End()
	}
}

func getByID[T store.Record](ctx context.Context, c *store.Collection[T], resource string, id uint) (*T, error) {
	if err := c.Wait(ctx); err != nil {
		return nil, err
	}
	item, ok := c.Find(id)
	if !ok {
		return nil, models.NewNotFoundError(resource, id)
	}
	return &item, nil
}

func deleteByID[T store.Record](ctx context.Context, c *store.Collection[T], log *observability.RepoLogger, resource string, id uint) (*T, error) {
	if err := c.Wait(ctx); err != nil {
		return nil, err
	}
	removed, ok := c.Delete(id)
	if !ok {
		return nil, models.NewNotFoundError(resource, id)
	}
	log.LogDelete(ctx, map[string]any{"id": id})
	return &removed, nil
}

func newestFirst[T any](items []T, at func(T) time.Time) []T {
	sort.SliceStable(items, func(i, j int) bool { return at(items[i]).After(at(items[j])) })
	return items
}

func oldestFirst[T any](items []T, at func(T) time.Time) []T {
	sort.SliceStable(items, func(i, j int) bool { return at(items[i]).Before(at(items[j])) })
	return items
}

// clonePtr copies the value behind v so stored records never share it.
func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
