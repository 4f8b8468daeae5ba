package view

import (
	"context"

	"pulse/internal/optimistic"
	"pulse/internal/service"
)

// LikeState is a viewer's local like state for one post.
type LikeState struct {
	PostID    uint `json:"postId"`
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// FollowState is a viewer's local follow state for one profile.
type FollowState struct {
	UserID        uint `json:"userId"`
	Following     bool `json:"following"`
	FollowerCount int  `json:"followerCount"`
}

// ToggleLike flips the like locally, then likes or unlikes the post. On
// failure the state is restored exactly.
func (p *Pages) ToggleLike(ctx context.Context, state *optimistic.State[LikeState]) error {
	before := state.Get()
	return optimistic.Run(ctx, state, optimistic.Command[LikeState]{
		Name: "toggle_like",
		Apply: func(s LikeState) LikeState {
			s.Liked = !s.Liked
			s.LikeCount = step(s.LikeCount, s.Liked)
			return s
		},
		Execute: func(ctx context.Context) (*LikeState, error) {
			var (
				n   int
				err error
			)
			if before.Liked {
				n, err = p.Posts.UnlikePost(ctx, before.PostID)
			} else {
				n, err = p.Posts.LikePost(ctx, before.PostID)
			}
			if err != nil {
				return nil, err
			}
			return &LikeState{PostID: before.PostID, Liked: !before.Liked, LikeCount: n}, nil
		},
		Compensate: func(LikeState) LikeState { return before },
	})
}

// ToggleFollow flips the viewer's follow of the profile locally, then
// follows or unfollows. On failure the state is restored exactly.
func (p *Pages) ToggleFollow(ctx context.Context, viewerID uint, state *optimistic.State[FollowState]) error {
	before := state.Get()
	return optimistic.Run(ctx, state, optimistic.Command[FollowState]{
		Name: "toggle_follow",
		Apply: func(s FollowState) FollowState {
			s.Following = !s.Following
			s.FollowerCount = step(s.FollowerCount, s.Following)
			return s
		},
		Execute: func(ctx context.Context) (*FollowState, error) {
			var (
				res *service.FollowResult
				err error
			)
			if before.Following {
				res, err = p.Users.Unfollow(ctx, viewerID, before.UserID)
			} else {
				res, err = p.Users.Follow(ctx, viewerID, before.UserID)
			}
			if err != nil {
				return nil, err
			}
			return &FollowState{UserID: before.UserID, Following: !before.Following, FollowerCount: res.Followee.FollowerCount}, nil
		},
		Compensate: func(FollowState) FollowState { return before },
	})
}

func step(n int, up bool) int {
	if up {
		return n + 1
	}
	if n > 0 {
		return n - 1
	}
	return 0
}
