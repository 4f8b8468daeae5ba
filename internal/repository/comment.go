package repository

import (
	"context"
	"time"

	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/store"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	ListByPost(ctx context.Context, postID uint) ([]models.Comment, error)
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Create(ctx context.Context, comment models.Comment) (*models.Comment, error)
	Update(ctx context.Context, id uint, patch models.CommentPatch) (*models.Comment, error)
	Delete(ctx context.Context, id uint) (*models.Comment, error)
	CountByPost(ctx context.Context, postID uint) (int, error)
}

type commentRepository struct {
	comments *store.Collection[models.Comment]
	log      *observability.RepoLogger
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(comments []models.Comment, latency time.Duration) CommentRepository {
	return &commentRepository{
		comments: store.New("comments", comments, latency, store.WithClone(func(c models.Comment) models.Comment {
			c.Author = nil
			c.EditedAt = clonePtr(c.EditedAt)
			return c
		})),
		log: observability.NewRepoLogger("comments"),
	}
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) (comments []models.Comment, err error) {
	ctx, done := track(ctx, r.comments, "ListByPost")
	defer func() { done(err) }()

	if err = r.comments.Wait(ctx); err != nil {
		return nil, err
	}
	comments = r.comments.Filter(func(c models.Comment) bool { return c.PostID == postID })
	return newestFirst(comments, func(c models.Comment) time.Time { return c.CreatedAt }), nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (comment *models.Comment, err error) {
	ctx, done := track(ctx, r.comments, "GetByID")
	defer func() { done(err) }()

	return getByID(ctx, r.comments, "Comment", id)
}

func (r *commentRepository) Create(ctx context.Context, comment models.Comment) (created *models.Comment, err error) {
	ctx, done := track(ctx, r.comments, "Create")
	defer func() { done(err) }()

	if err = r.comments.Wait(ctx); err != nil {
		return nil, err
	}
	c := r.comments.Insert(store.Front, func(id uint) models.Comment {
		comment.ID = id
		comment.LikeCount = 0
		comment.EditedAt = nil
		if comment.CreatedAt.IsZero() {
			comment.CreatedAt = nowUTC()
		}
		return comment
	})
	r.log.LogCreate(ctx, map[string]any{"id": c.ID, "post_id": c.PostID})
	return &c, nil
}

func (r *commentRepository) Update(ctx context.Context, id uint, patch models.CommentPatch) (updated *models.Comment, err error) {
	ctx, done := track(ctx, r.comments, "Update")
	defer func() { done(err) }()

	if err = r.comments.Wait(ctx); err != nil {
		return nil, err
	}
	c, found, _ := r.comments.Update(id, func(c *models.Comment) error {
		patch.Apply(c)
		editedAt := nowUTC()
		c.EditedAt = &editedAt
		return nil
	})
	if !found {
		return nil, models.NewNotFoundError("Comment", id)
	}
	r.log.LogUpdate(ctx, map[string]any{"id": id})
	return &c, nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) (removed *models.Comment, err error) {
	ctx, done := track(ctx, r.comments, "Delete")
	defer func() { done(err) }()

	return deleteByID(ctx, r.comments, r.log, "Comment", id)
}

func (r *commentRepository) CountByPost(ctx context.Context, postID uint) (count int, err error) {
	ctx, done := track(ctx, r.comments, "CountByPost")
	defer func() { done(err) }()

	if err = r.comments.Wait(ctx); err != nil {
		return 0, err
	}
	return len(r.comments.Filter(func(c models.Comment) bool { return c.PostID == postID })), nil
}
