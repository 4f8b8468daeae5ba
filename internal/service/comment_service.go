package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"pulse/internal/models"
	"pulse/internal/repository"
)

// MaxCommentLength is the longest comment body, counted after trimming.
const MaxCommentLength = 280

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	rel         relations
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		rel:         newRelations(userRepo),
	}
}

// CreateComment stores the trimmed comment and increments the post's
// comment counter.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if in.PostID == 0 || in.UserID == 0 || content == "" {
		return nil, models.NewValidationError("Post ID, author ID, and content are required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, models.NewValidationError("Comment exceeds 280 characters")
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment, err := s.commentRepo.Create(ctx, models.Comment{
		PostID:   in.PostID,
		AuthorID: in.UserID,
		Content:  content,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.AdjustCommentCount(ctx, in.PostID, 1); err != nil && !models.IsNotFound(err) {
		return nil, err
	}

	if err := s.rel.commentAuthor.One(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the post's comments newest first. An unknown post
// simply has none.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.rel.commentAuthor.Apply(ctx, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.rel.commentAuthor.One(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only update your own comments")
	}

	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > MaxCommentLength {
		return nil, models.NewValidationError("Comment exceeds 280 characters")
	}

	updated, err := s.commentRepo.Update(ctx, in.CommentID, models.CommentPatch{Content: &content})
	if err != nil {
		return nil, err
	}
	if err := s.rel.commentAuthor.One(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteComment removes the comment and decrements the post's counter.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != in.UserID {
		return nil, models.NewUnauthorizedError("You can only delete your own comments")
	}

	removed, err := s.commentRepo.Delete(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.postRepo.AdjustCommentCount(ctx, removed.PostID, -1); err != nil && !models.IsNotFound(err) {
		return nil, err
	}
	return removed, nil
}

// CommentCount counts the stored comments for postID.
func (s *CommentService) CommentCount(ctx context.Context, postID uint) (int, error) {
	return s.commentRepo.CountByPost(ctx, postID)
}
