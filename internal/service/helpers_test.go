package service

import (
	"context"
	"errors"
	"testing"

	"pulse/internal/config"
	"pulse/internal/fixtures"
	"pulse/internal/models"
	"pulse/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type services struct {
	repos         *repository.Set
	users         *UserService
	posts         *PostService
	comments      *CommentService
	messages      *MessageService
	notifications *NotificationService
}

// newServices wires every service over fresh zero-latency repositories.
func newServices(t *testing.T) *services {
	t.Helper()
	ds, err := fixtures.Default()
	require.NoError(t, err)
	repos := repository.NewSet(ds, config.Latencies{})
	return &services{
		repos:         repos,
		users:         NewUserService(repos.Users, 1),
		posts:         NewPostService(repos.Posts, repos.Users),
		comments:      NewCommentService(repos.Comments, repos.Posts, repos.Users),
		messages:      NewMessageService(repos.Messages, repos.Users),
		notifications: NewNotificationService(repos.Notifications, repos.Users),
	}
}

// failingUserRepo wraps a UserRepository and fails every GetByID.
type failingUserRepo struct {
	repository.UserRepository
}

func (failingUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	return nil, errors.New("user lookup failed")
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, "UNAUTHORIZED", appErr.Code)
}

// assertNotFoundError asserts that err is an AppError with code NOT_FOUND.
func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, models.IsNotFound(err), "expected NOT_FOUND, got %v", err)
}
