package service

import (
	"context"
	"strings"

	"pulse/internal/models"
	"pulse/internal/repository"
	"pulse/internal/validation"
)

type UserService struct {
	userRepo      repository.UserRepository
	currentUserID uint
}

type CreateUserInput struct {
	Username       string `json:"username" validate:"required,min=3,username"`
	DisplayName    string `json:"displayName" validate:"notblank"`
	Bio            string `json:"bio" validate:"max=160"`
	ProfilePicture string `json:"profilePicture" validate:"omitempty,url"`
}

type UpdateProfileInput struct {
	UserID uint
	Patch  models.UserPatch
}

// FollowResult reports both sides of a follow edge after a change.
type FollowResult struct {
	Changed   bool         `json:"changed"`
	Following bool         `json:"following"`
	Follower  *models.User `json:"follower"`
	Followee  *models.User `json:"followee"`
}

func NewUserService(userRepo repository.UserRepository, currentUserID uint) *UserService {
	if currentUserID == 0 {
		currentUserID = models.CurrentUserFallbackID
	}
	return &UserService{userRepo: userRepo, currentUserID: currentUserID}
}

// CurrentUserID is the id the application acts as when no identity is supplied.
func (s *UserService) CurrentUserID() uint {
	return s.currentUserID
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) GetCurrentUser(ctx context.Context) (*models.User, error) {
	return s.userRepo.GetByID(ctx, s.currentUserID)
}

func (s *UserService) SearchUsers(ctx context.Context, query string) ([]models.User, error) {
	return s.userRepo.Search(ctx, query)
}

func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Bio = strings.TrimSpace(in.Bio)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	return s.userRepo.Create(ctx, models.User{
		Username:       in.Username,
		DisplayName:    in.DisplayName,
		Bio:            in.Bio,
		ProfilePicture: in.ProfilePicture,
	})
}

// UpdateProfile applies the patch after checking the merged profile still
// satisfies the same rules as a new user.
func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	merged := *user
	in.Patch.Apply(&merged)
	check := CreateUserInput{
		Username:       strings.TrimSpace(merged.Username),
		DisplayName:    strings.TrimSpace(merged.DisplayName),
		Bio:            strings.TrimSpace(merged.Bio),
		ProfilePicture: merged.ProfilePicture,
	}
	if err := validation.Struct(check); err != nil {
		return nil, err
	}

	return s.userRepo.Update(ctx, in.UserID, models.UserPatch{
		Username:       &check.Username,
		DisplayName:    &check.DisplayName,
		Bio:            &check.Bio,
		ProfilePicture: &check.ProfilePicture,
	})
}

func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.userRepo.Delete(ctx, id)
}

func (s *UserService) Follow(ctx context.Context, followerID, followingID uint) (*FollowResult, error) {
	return s.setFollow(ctx, followerID, followingID, true)
}

func (s *UserService) Unfollow(ctx context.Context, followerID, followingID uint) (*FollowResult, error) {
	return s.setFollow(ctx, followerID, followingID, false)
}

func (s *UserService) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.userRepo.IsFollowing(ctx, followerID, followingID)
}

func (s *UserService) setFollow(ctx context.Context, followerID, followingID uint, follow bool) (*FollowResult, error) {
	if followerID == followingID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}

	var (
		changed bool
		err     error
	)
	if follow {
		changed, err = s.userRepo.Follow(ctx, followerID, followingID)
	} else {
		changed, err = s.userRepo.Unfollow(ctx, followerID, followingID)
	}
	if err != nil {
		return nil, err
	}

	follower, err := s.userRepo.GetByID(ctx, followerID)
	if err != nil {
		return nil, err
	}
	followee, err := s.userRepo.GetByID(ctx, followingID)
	if err != nil {
		return nil, err
	}
	return &FollowResult{Changed: changed, Following: follow, Follower: follower, Followee: followee}, nil
}
