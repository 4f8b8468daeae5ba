package server

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"pulse/internal/fixtures"
	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPostRepository is a mock of the PostRepository interface
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) List(ctx context.Context) ([]models.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) ListByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	args := m.Called(ctx, authorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Post), args.Error(1)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, post models.Post) (*models.Post, error) {
	args := m.Called(ctx, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, id uint, patch models.PostPatch) (*models.Post, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) AdjustCommentCount(ctx context.Context, id uint, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) AdjustLikeCount(ctx context.Context, id uint, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockPostRepository) CommentCount(ctx context.Context, id uint) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func mockPostServer(t *testing.T, repo *MockPostRepository) *fiber.App {
	t.Helper()
	ds, err := fixtures.Default()
	require.NoError(t, err)
	users := repository.NewSet(ds, testConfig().Latencies()).Users

	s := &Server{
		config:      testConfig(),
		postService: service.NewPostService(repo, users),
	}
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Get("/posts", s.GetPosts)
	app.Get("/posts/:id", s.GetPost)
	return app
}

func TestGetPosts_Mocked(t *testing.T) {
	tests := []struct {
		name       string
		mockSetup  func(m *MockPostRepository)
		wantStatus int
		wantCode   string
	}{
		{
			name: "attaches authors",
			mockSetup: func(m *MockPostRepository) {
				m.On("List", mock.Anything).Return([]models.Post{{ID: 1, AuthorID: 2, Content: "hi"}}, nil)
			},
			wantStatus: fiber.StatusOK,
		},
		{
			name: "store failure",
			mockSetup: func(m *MockPostRepository) {
				m.On("List", mock.Anything).Return(nil, models.NewInternalError(errors.New("store offline")))
			},
			wantStatus: fiber.StatusInternalServerError,
			wantCode:   models.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPostRepository)
			tt.mockSetup(repo)
			app := mockPostServer(t, repo)

			resp, body := doRequest(t, app, testRequest{method: http.MethodGet, path: "/posts"})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				errResp := decode[models.ErrorResponse](t, body)
				assert.Equal(t, tt.wantCode, errResp.Code)
				assert.Equal(t, "Internal server error", errResp.Error)
			} else {
				posts := decode[[]models.Post](t, body)
				require.Len(t, posts, 1)
				require.NotNil(t, posts[0].Author)
				assert.Equal(t, "mayachen", posts[0].Author.Username)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestGetPost_Mocked(t *testing.T) {
	repo := new(MockPostRepository)
	repo.On("GetByID", mock.Anything, uint(7)).Return(nil, models.NewNotFoundError("Post", 7))
	app := mockPostServer(t, repo)

	resp, body := doRequest(t, app, testRequest{method: http.MethodGet, path: "/posts/7"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Post with ID 7 not found", decode[models.ErrorResponse](t, body).Error)

	resp, _ = doRequest(t, app, testRequest{method: http.MethodGet, path: "/posts/0"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	repo.AssertNumberOfCalls(t, "GetByID", 1)
}
