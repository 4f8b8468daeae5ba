package service

import (
	"context"
	"strings"

	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"
)

// MaxPostLength is the longest post body the composer accepts.
const MaxPostLength = 500

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	rel      relations
}

type CreatePostInput struct {
	AuthorID  uint   `json:"-" validate:"required"`
	Content   string `json:"content" validate:"max=500"`
	MediaURL  string `json:"mediaUrl" validate:"omitempty,url"`
	MediaType string `json:"mediaType" validate:"omitempty,oneof=image video"`
	Privacy   string `json:"privacy" validate:"oneof=public friends private"`
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	Patch  models.PostPatch
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		rel:      newRelations(userRepo),
	}
}

// ListPosts returns the feed, newest first, with authors attached.
func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.rel.postAuthor.Apply(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *PostService) ListPostsByUser(ctx context.Context, userID uint) ([]models.Post, error) {
	posts, err := s.postRepo.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.rel.postAuthor.Apply(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPostByID returns the post with its author. A dangling author leaves
// Author nil and still succeeds.
func (s *PostService) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.rel.postAuthor.One(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	in.Content = strings.TrimSpace(in.Content)
	in.MediaURL = strings.TrimSpace(in.MediaURL)
	if in.Privacy == "" {
		in.Privacy = models.PrivacyPublic
	}
	if in.MediaURL == "" {
		in.MediaType = ""
	}
	if err := checkPost(in); err != nil {
		return nil, err
	}

	post, err := s.postRepo.Create(ctx, models.Post{
		AuthorID:  in.AuthorID,
		Content:   in.Content,
		MediaURL:  in.MediaURL,
		MediaType: in.MediaType,
		Privacy:   in.Privacy,
	})
	if err != nil {
		return nil, err
	}

	// The author may not exist in the user collection; the post still stands.
	if err := s.userRepo.AdjustPostCount(ctx, in.AuthorID, 1); err != nil && !models.IsNotFound(err) {
		return nil, err
	}
	if err := s.rel.postAuthor.One(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own posts")
	}

	merged := *post
	in.Patch.Apply(&merged)
	check := CreatePostInput{
		AuthorID:  merged.AuthorID,
		Content:   strings.TrimSpace(merged.Content),
		MediaURL:  strings.TrimSpace(merged.MediaURL),
		MediaType: merged.MediaType,
		Privacy:   merged.Privacy,
	}
	if check.Privacy == "" {
		check.Privacy = models.PrivacyPublic
	}
	if check.MediaURL == "" {
		check.MediaType = ""
	}
	if err := checkPost(check); err != nil {
		return nil, err
	}

	updated, err := s.postRepo.Update(ctx, in.PostID, models.PostPatch{
		Content:   &check.Content,
		MediaURL:  &check.MediaURL,
		MediaType: &check.MediaType,
		Privacy:   &check.Privacy,
	})
	if err != nil {
		return nil, err
	}
	if err := s.rel.postAuthor.One(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeletePost removes the post and decrements the author's post count. Its
// comments are left in place.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only delete your own posts")
	}

	removed, err := s.postRepo.Delete(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.AdjustPostCount(ctx, removed.AuthorID, -1); err != nil && !models.IsNotFound(err) {
		return nil, err
	}
	return removed, nil
}

// AddComment bumps the comment counter and returns the new value.
func (s *PostService) AddComment(ctx context.Context, postID uint) (int, error) {
	return s.postRepo.AdjustCommentCount(ctx, postID, 1)
}

// RemoveComment decrements the comment counter, never below zero.
func (s *PostService) RemoveComment(ctx context.Context, postID uint) (int, error) {
	return s.postRepo.AdjustCommentCount(ctx, postID, -1)
}

// GetCommentCount reports the stored counter, 0 for an unknown post.
func (s *PostService) GetCommentCount(ctx context.Context, postID uint) (int, error) {
	return s.postRepo.CommentCount(ctx, postID)
}

// LikePost adds one like and returns the new count.
func (s *PostService) LikePost(ctx context.Context, postID uint) (int, error) {
	return s.postRepo.AdjustLikeCount(ctx, postID, 1)
}

// UnlikePost removes one like, never below zero.
func (s *PostService) UnlikePost(ctx context.Context, postID uint) (int, error) {
	return s.postRepo.AdjustLikeCount(ctx, postID, -1)
}

func checkPost(in CreatePostInput) error {
	if in.Content == "" && in.MediaURL == "" {
		return models.NewValidationError("Post content or media is required")
	}
	if in.MediaURL != "" && in.MediaType == "" {
		return models.NewValidationError("mediaType is required when mediaUrl is set")
	}
	return validation.Struct(in)
}
