package view

import (
	"context"
	"fmt"
	"strings"

	"pulse/internal/featureflags"
	"pulse/internal/models"
	"pulse/internal/service"

	"golang.org/x/sync/errgroup"
)

// Page names, used as the view model's page field and metric label.
const (
	PageHome          = "home"
	PageProfile       = "profile"
	PageMessages      = "messages"
	PageNotifications = "notifications"
	PagePostDetail    = "post_detail"
	PageNotFound      = "not_found"
)

// Notification filters accepted by the notifications page.
const (
	FilterAll      = "all"
	FilterMentions = "mentions"
	FilterFollows  = "follows"
)

// Pages assembles page data from the domain services.
type Pages struct {
	Users           *service.UserService
	Posts           *service.PostService
	Comments        *service.CommentService
	MessageSvc      *service.MessageService
	NotificationSvc *service.NotificationService
	Flags           *featureflags.Manager
}

// Features is the evaluated page variant set for one viewer.
type Features struct {
	ShareModal     bool `json:"shareModal"`
	PrivacyModal   bool `json:"privacyModal"`
	InlineComments bool `json:"inlineComments"`
}

// ComposerLimits describes what the post composer accepts.
type ComposerLimits struct {
	MaxLength  int      `json:"maxLength"`
	Privacy    []string `json:"privacyOptions"`
	MediaTypes []string `json:"mediaTypes"`
}

type HomeData struct {
	CurrentUser *models.User   `json:"currentUser"`
	Posts       []models.Post  `json:"posts"`
	Composer    ComposerLimits `json:"composer"`
	Features    Features       `json:"features"`
}

type ProfileData struct {
	User         *models.User  `json:"user"`
	Posts        []models.Post `json:"posts"`
	IsOwnProfile bool          `json:"isOwnProfile"`
	IsFollowing  bool          `json:"isFollowing"`
	Features     Features      `json:"features"`
}

type MessagesData struct {
	Conversations []models.Conversation `json:"conversations"`
	Selected      *models.Conversation  `json:"selectedConversation"`
	Messages      []models.Message      `json:"messages"`
}

type NotificationsData struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
	Filter        string                `json:"filter"`
}

type PostDetailData struct {
	Post         *models.Post     `json:"post"`
	Comments     []models.Comment `json:"comments"`
	CurrentUser  *models.User     `json:"currentUser"`
	CommentLimit int              `json:"commentLimit"`
	Features     Features         `json:"features"`
}

type NotFoundData struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (p *Pages) features(viewerID uint) Features {
	return Features{
		ShareModal:     p.Flags.Enabled(featureflags.ShareModal, viewerID),
		PrivacyModal:   p.Flags.Enabled(featureflags.PrivacyModal, viewerID),
		InlineComments: p.Flags.Enabled(featureflags.InlineComments, viewerID),
	}
}

// Home loads the feed and the viewer concurrently.
func (p *Pages) Home(ctx context.Context, viewerID uint) Model[HomeData] {
	v := NewView[HomeData](PageHome, "/")
	return v.Load(ctx, func(ctx context.Context) (*HomeData, error) {
		data := &HomeData{
			Composer: ComposerLimits{
				MaxLength:  service.MaxPostLength,
				Privacy:    []string{models.PrivacyPublic, models.PrivacyFriends, models.PrivacyPrivate},
				MediaTypes: []string{models.MediaTypeImage, models.MediaTypeVideo},
			},
			Features: p.features(viewerID),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			data.CurrentUser, err = p.Users.GetUserByID(gctx, viewerID)
			return err
		})
		g.Go(func() (err error) {
			data.Posts, err = p.Posts.ListPosts(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return data, nil
	})
}

// Profile loads userID's profile, or the viewer's own when userID is 0.
func (p *Pages) Profile(ctx context.Context, viewerID, userID uint) Model[ProfileData] {
	retry := "/profile"
	if userID == 0 {
		userID = viewerID
	} else {
		retry = fmt.Sprintf("/profile/%d", userID)
	}

	v := NewView[ProfileData](PageProfile, retry)
	return v.Load(ctx, func(ctx context.Context) (*ProfileData, error) {
		data := &ProfileData{
			IsOwnProfile: userID == viewerID,
			Features:     p.features(viewerID),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			data.User, err = p.Users.GetUserByID(gctx, userID)
			return err
		})
		g.Go(func() (err error) {
			data.Posts, err = p.Posts.ListPostsByUser(gctx, userID)
			return err
		})
		if !data.IsOwnProfile {
			g.Go(func() (err error) {
				data.IsFollowing, err = p.Users.IsFollowing(gctx, viewerID, userID)
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return data, nil
	})
}

// Messages loads the viewer's conversations and, when selected is set, the
// selected conversation's thread. A selection the viewer cannot see is
// ignored rather than failing the page.
func (p *Pages) Messages(ctx context.Context, viewerID, selected uint) Model[MessagesData] {
	retry := "/messages"
	if selected != 0 {
		retry = fmt.Sprintf("/messages?conversation=%d", selected)
	}

	v := NewView[MessagesData](PageMessages, retry)
	return v.Load(ctx, func(ctx context.Context) (*MessagesData, error) {
		data := &MessagesData{}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			data.Conversations, err = p.MessageSvc.ListConversations(gctx, viewerID)
			return err
		})
		if selected != 0 {
			g.Go(func() error {
				conv, err := p.MessageSvc.GetConversation(gctx, selected, viewerID)
				if err != nil {
					if models.IsNotFound(err) || models.HasCode(err, models.CodeUnauthorized) {
						return nil
					}
					return err
				}
				msgs, err := p.MessageSvc.ListMessages(gctx, selected, viewerID)
				if err != nil {
					return err
				}
				data.Selected, data.Messages = conv, msgs
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return data, nil
	})
}

// NormalizeFilter maps a query value onto a known notification filter.
func NormalizeFilter(filter string) string {
	switch f := strings.ToLower(strings.TrimSpace(filter)); f {
	case FilterMentions, FilterFollows:
		return f
	default:
		return FilterAll
	}
}

// Notifications loads the notification list narrowed by filter. Mentions are
// comment notifications; the unread count always covers every notification.
func (p *Pages) Notifications(ctx context.Context, filter string) Model[NotificationsData] {
	filter = NormalizeFilter(filter)
	retry := "/notifications"
	if filter != FilterAll {
		retry += "?filter=" + filter
	}

	v := NewView[NotificationsData](PageNotifications, retry)
	return v.Load(ctx, func(ctx context.Context) (*NotificationsData, error) {
		items, err := p.NotificationSvc.ListNotifications(ctx)
		if err != nil {
			return nil, err
		}

		data := &NotificationsData{Filter: filter, Notifications: make([]models.Notification, 0, len(items))}
		for _, n := range items {
			if !n.IsRead {
				data.UnreadCount++
			}
			if matchesFilter(n, filter) {
				data.Notifications = append(data.Notifications, n)
			}
		}
		return data, nil
	})
}

func matchesFilter(n models.Notification, filter string) bool {
	switch filter {
	case FilterMentions:
		return n.Type == models.NotificationComment
	case FilterFollows:
		return n.Type == models.NotificationFollow
	default:
		return true
	}
}

// PostDetail loads a post with its comments and the viewer.
func (p *Pages) PostDetail(ctx context.Context, viewerID, postID uint) Model[PostDetailData] {
	v := NewView[PostDetailData](PagePostDetail, fmt.Sprintf("/post/%d", postID))
	return v.Load(ctx, func(ctx context.Context) (*PostDetailData, error) {
		data := &PostDetailData{
			CommentLimit: service.MaxCommentLength,
			Features:     p.features(viewerID),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			data.Post, err = p.Posts.GetPostByID(gctx, postID)
			return err
		})
		g.Go(func() (err error) {
			data.Comments, err = p.Comments.ListComments(gctx, postID)
			return err
		})
		g.Go(func() (err error) {
			data.CurrentUser, err = p.Users.GetUserByID(gctx, viewerID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return data, nil
	})
}

// NotFound is the terminal page for unknown routes.
func NotFound(path string) Model[NotFoundData] {
	return Model[NotFoundData]{
		Page:  PageNotFound,
		Phase: PhaseReady,
		Data:  &NotFoundData{Path: path, Message: "The page you are looking for does not exist."},
		Retry: "/",
	}
}
