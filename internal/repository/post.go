package repository

import (
	"context"
	"time"

	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/store"
)

// PostRepository defines interface for post operations
type PostRepository interface {
	List(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error)
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Create(ctx context.Context, post models.Post) (*models.Post, error)
	Update(ctx context.Context, id uint, patch models.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, id uint) (*models.Post, error)
	AdjustCommentCount(ctx context.Context, id uint, delta int) (int, error)
	AdjustLikeCount(ctx context.Context, id uint, delta int) (int, error)
	CommentCount(ctx context.Context, id uint) (int, error)
}

type postRepository struct {
	posts *store.Collection[models.Post]
	log   *observability.RepoLogger
}

// NewPostRepository creates a new PostRepository over a copy of posts.
func NewPostRepository(posts []models.Post, latency time.Duration) PostRepository {
	return &postRepository{
		posts: store.New("posts", posts, latency, store.WithClone(clonePost)),
		log:   observability.NewRepoLogger("posts"),
	}
}

func clonePost(p models.Post) models.Post {
	p.Author = nil
	p.EditedAt = clonePtr(p.EditedAt)
	return p
}

func postCreatedAt(p models.Post) time.Time { return p.CreatedAt }

func (r *postRepository) List(ctx context.Context) (posts []models.Post, err error) {
	ctx, done := track(ctx, r.posts, "List")
	defer func() { done(err) }()

	if err = r.posts.Wait(ctx); err != nil {
		return nil, err
	}
	return newestFirst(r.posts.Snapshot(), postCreatedAt), nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint) (posts []models.Post, err error) {
	ctx, done := track(ctx, r.posts, "ListByAuthor")
	defer func() { done(err) }()

	if err = r.posts.Wait(ctx); err != nil {
		return nil, err
	}
	posts = r.posts.Filter(func(p models.Post) bool { return p.AuthorID == authorID })
	return newestFirst(posts, postCreatedAt), nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (post *models.Post, err error) {
	ctx, done := track(ctx, r.posts, "GetByID")
	defer func() { done(err) }()

	return getByID(ctx, r.posts, "Post", id)
}

func (r *postRepository) Create(ctx context.Context, post models.Post) (created *models.Post, err error) {
	ctx, done := track(ctx, r.posts, "Create")
	defer func() { done(err) }()

	if err = r.posts.Wait(ctx); err != nil {
		return nil, err
	}
	p := r.posts.Insert(store.Front, func(id uint) models.Post {
		post.ID = id
		post.LikeCount = 0
		post.CommentCount = 0
		post.EditedAt = nil
		if post.CreatedAt.IsZero() {
			post.CreatedAt = nowUTC()
		}
		return post
	})
	r.log.LogCreate(ctx, map[string]any{"id": p.ID, "author_id": p.AuthorID})
	return &p, nil
}

func (r *postRepository) Update(ctx context.Context, id uint, patch models.PostPatch) (updated *models.Post, err error) {
	ctx, done := track(ctx, r.posts, "Update")
	defer func() { done(err) }()

	if err = r.posts.Wait(ctx); err != nil {
		return nil, err
	}
	p, found, _ := r.posts.Update(id, func(p *models.Post) error {
		patch.Apply(p)
		editedAt := nowUTC()
		p.EditedAt = &editedAt
		return nil
	})
	if !found {
		return nil, models.NewNotFoundError("Post", id)
	}
	r.log.LogUpdate(ctx, map[string]any{"id": id})
	return &p, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) (removed *models.Post, err error) {
	ctx, done := track(ctx, r.posts, "Delete")
	defer func() { done(err) }()

	return deleteByID(ctx, r.posts, r.log, "Post", id)
}

func (r *postRepository) AdjustCommentCount(ctx context.Context, id uint, delta int) (count int, err error) {
	ctx, done := track(ctx, r.posts, "AdjustCommentCount")
	defer func() { done(err) }()

	return r.adjust(ctx, id, func(p *models.Post) int {
		p.CommentCount = clamp(p.CommentCount + delta)
		return p.CommentCount
	})
}

func (r *postRepository) AdjustLikeCount(ctx context.Context, id uint, delta int) (count int, err error) {
	ctx, done := track(ctx, r.posts, "AdjustLikeCount")
	defer func() { done(err) }()

	return r.adjust(ctx, id, func(p *models.Post) int {
		p.LikeCount = clamp(p.LikeCount + delta)
		return p.LikeCount
	})
}

func (r *postRepository) adjust(ctx context.Context, id uint, fn func(*models.Post) int) (int, error) {
	if err := r.posts.Wait(ctx); err != nil {
		return 0, err
	}
	var count int
	_, found, _ := r.posts.Update(id, func(p *models.Post) error {
		count = fn(p)
		return nil
	})
	if !found {
		return 0, models.NewNotFoundError("Post", id)
	}
	return count, nil
}

// CommentCount returns the stored counter, or 0 for an unknown post.
func (r *postRepository) CommentCount(ctx context.Context, id uint) (count int, err error) {
	ctx, done := track(ctx, r.posts, "CommentCount")
	defer func() { done(err) }()

	if err = r.posts.Wait(ctx); err != nil {
		return 0, err
	}
	if p, ok := r.posts.Find(id); ok {
		return p.CommentCount, nil
	}
	return 0, nil
}
