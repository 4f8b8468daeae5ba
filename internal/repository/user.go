package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/store"
)

// UserRepository defines interface for user operations
type UserRepository interface {
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Search(ctx context.Context, query string) ([]models.User, error)
	Create(ctx context.Context, user models.User) (*models.User, error)
	Update(ctx context.Context, id uint, patch models.UserPatch) (*models.User, error)
	Delete(ctx context.Context, id uint) error
	Follow(ctx context.Context, followerID, followingID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followingID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	AdjustPostCount(ctx context.Context, id uint, delta int) error
}

type userRepository struct {
	users *store.Collection[models.User]
	log   *observability.RepoLogger

	followMu sync.Mutex
	follows  map[models.Follow]struct{}
}

// NewUserRepository creates a new UserRepository over a copy of users.
func NewUserRepository(users []models.User, follows []models.Follow, latency time.Duration) UserRepository {
	edges := make(map[models.Follow]struct{}, len(follows))
	for _, f := range follows {
		edges[f] = struct{}{}
	}
	return &userRepository{
		users:   store.New("users", users, latency),
		log:     observability.NewRepoLogger("users"),
		follows: edges,
	}
}

func (r *userRepository) List(ctx context.Context) (users []models.User, err error) {
	ctx, done := track(ctx, r.users, "List")
	defer func() { done(err) }()

	if err = r.users.Wait(ctx); err != nil {
		return nil, err
	}
	return r.users.Snapshot(), nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (user *models.User, err error) {
	ctx, done := track(ctx, r.users, "GetByID")
	defer func() { done(err) }()

	return getByID(ctx, r.users, "User", id)
}

func (r *userRepository) Search(ctx context.Context, query string) (users []models.User, err error) {
	ctx, done := track(ctx, r.users, "Search")
	defer func() { done(err) }()

	if err = r.users.Wait(ctx); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return r.users.Snapshot(), nil
	}
	return r.users.Filter(func(u models.User) bool {
		return strings.Contains(strings.ToLower(u.Username), q) ||
			strings.Contains(strings.ToLower(u.DisplayName), q)
	}), nil
}

func (r *userRepository) Create(ctx context.Context, user models.User) (created *models.User, err error) {
	ctx, done := track(ctx, r.users, "Create")
	defer func() { done(err) }()

	if err = r.users.Wait(ctx); err != nil {
		return nil, err
	}
	u := r.users.Insert(store.Back, func(id uint) models.User {
		user.ID = id
		user.FollowerCount = 0
		user.FollowingCount = 0
		user.PostCount = 0
		if user.CreatedAt.IsZero() {
			user.CreatedAt = nowUTC()
		}
		return user
	})
	r.log.LogCreate(ctx, map[string]any{"id": u.ID, "username": u.Username})
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, id uint, patch models.UserPatch) (updated *models.User, err error) {
	ctx, done := track(ctx, r.users, "Update")
	defer func() { done(err) }()

	if err = r.users.Wait(ctx); err != nil {
		return nil, err
	}
	u, found, _ := r.users.Update(id, func(u *models.User) error {
		patch.Apply(u)
		return nil
	})
	if !found {
		return nil, models.NewNotFoundError("User", id)
	}
	r.log.LogUpdate(ctx, map[string]any{"id": id})
	return &u, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) (err error) {
	ctx, done := track(ctx, r.users, "Delete")
	defer func() { done(err) }()

	if _, err = deleteByID(ctx, r.users, r.log, "User", id); err != nil {
		return err
	}
	r.followMu.Lock()
	for edge := range r.follows {
		if edge.FollowerID == id || edge.FollowingID == id {
			delete(r.follows, edge)
		}
	}
	r.followMu.Unlock()
	return nil
}

// Follow records the edge and bumps both counters. It reports false when
// the edge already existed, in which case nothing changes.
func (r *userRepository) Follow(ctx context.Context, followerID, followingID uint) (changed bool, err error) {
	ctx, done := track(ctx, r.users, "Follow")
	defer func() { done(err) }()

	if err = r.users.Wait(ctx); err != nil {
		return false, err
	}
	return r.setEdge(ctx, followerID, followingID, true)
}

// Unfollow removes the edge and decrements both counters, never below zero.
func (r *userRepository) Unfollow(ctx context.Context, followerID, followingID uint) (changed bool, err error) {
	ctx, done := track(ctx, r.users, "Unfollow")
	defer func() { done(err) }()

	if err = r.users.Wait(ctx); err != nil {
		return false, err
	}
	return r.setEdge(ctx, followerID, followingID, false)
}

func (r *userRepository) setEdge(ctx context.Context, followerID, followingID uint, follow bool) (bool, error) {
	r.followMu.Lock()
	defer r.followMu.Unlock()

	if _, ok := r.users.Find(followerID); !ok {
		return false, models.NewNotFoundError("User", followerID)
	}
	if _, ok := r.users.Find(followingID); !ok {
		return false, models.NewNotFoundError("User", followingID)
	}

	edge := models.Follow{FollowerID: followerID, FollowingID: followingID}
	_, exists := r.follows[edge]
	if exists == follow {
		return false, nil
	}

	delta := 1
	if follow {
		r.follows[edge] = struct{}{}
	} else {
		delete(r.follows, edge)
		delta = -1
	}
	_, _, _ = r.users.Update(followerID, func(u *models.User) error {
		u.FollowingCount = clamp(u.FollowingCount + delta)
		return nil
	})
	_, _, _ = r.users.Update(followingID, func(u *models.User) error {
		u.FollowerCount = clamp(u.FollowerCount + delta)
		return nil
	})
	r.log.LogUpdate(ctx, map[string]any{"follower_id": followerID, "following_id": followingID, "follow": follow})
	return true, nil
}

func (r *userRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (following bool, err error) {
	ctx, done := track(ctx, r.users, "IsFollowing")
	defer func() { done(err) }()

	if err = r.users.Wait(ctx); err != nil {
		return false, err
	}
	r.followMu.Lock()
	defer r.followMu.Unlock()
	_, following = r.follows[models.Follow{FollowerID: followerID, FollowingID: followingID}]
	return following, nil
}

func (r *userRepository) AdjustPostCount(ctx context.Context, id uint, delta int) (err error) {
	ctx, done := track(ctx, r.users, "AdjustPostCount")
	defer func() { done(err) }()

	if err = r.users.Wait(ctx); err != nil {
		return err
	}
	_, found, _ := r.users.Update(id, func(u *models.User) error {
		u.PostCount = clamp(u.PostCount + delta)
		return nil
	})
	if !found {
		return models.NewNotFoundError("User", id)
	}
	return nil
}
