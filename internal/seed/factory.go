// Package seed generates synthetic fixture datasets for development and
// load testing. Generated data keeps the same shape and counter invariants
// as the bundled fixtures.
package seed

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"pulse/internal/fixtures"
	"pulse/internal/models"
	"pulse/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
)

// Options controls dataset size. Zero values fall back to defaults.
type Options struct {
	Users              int
	MaxPostsPerUser    int
	MaxCommentsPerPost int
	Conversations      int
	MessagesPerThread  int
	Notifications      int
	FollowProbability  float64
	Seed               int64
	Now                time.Time
	MaxDays            int
}

func (o Options) withDefaults() Options {
	if o.Users <= 0 {
		o.Users = 8
	}
	if o.MaxPostsPerUser <= 0 {
		o.MaxPostsPerUser = 3
	}
	if o.MaxCommentsPerPost <= 0 {
		o.MaxCommentsPerPost = 3
	}
	if o.Conversations <= 0 {
		o.Conversations = 4
	}
	if o.Conversations > o.Users-1 {
		o.Conversations = o.Users - 1
	}
	if o.MessagesPerThread <= 0 {
		o.MessagesPerThread = 3
	}
	if o.Notifications <= 0 {
		o.Notifications = 8
	}
	if o.FollowProbability <= 0 || o.FollowProbability > 1 {
		o.FollowProbability = 0.3
	}
	if o.Now.IsZero() {
		o.Now = time.Now().UTC()
	}
	if o.MaxDays <= 0 {
		o.MaxDays = 30
	}
	return o
}

// The 2 -> 1 follow edge is left out of every generated dataset.
const (
	reservedFollowerID uint = 2
	reservedFolloweeID uint = 1
)

// Factory builds datasets from a deterministic faker.
type Factory struct {
	opts  Options
	faker *gofakeit.Faker
}

// NewFactory creates a Factory. Equal seeds yield equal datasets.
func NewFactory(opts Options) *Factory {
	opts = opts.withDefaults()
	return &Factory{opts: opts, faker: gofakeit.New(opts.Seed)}
}

// Build generates a dataset. User 1 is the current user: every
// conversation includes them and notifications are addressed to them.
func (f *Factory) Build() (*fixtures.Dataset, error) {
	if f.opts.Users < 2 {
		return nil, fmt.Errorf("seed: need at least 2 users, got %d", f.opts.Users)
	}

	ds := &fixtures.Dataset{}
	f.users(ds)
	f.follows(ds)
	f.posts(ds)
	f.comments(ds)
	f.conversations(ds)
	f.notifications(ds)

	if err := ds.Validate(); err != nil {
		return nil, fmt.Errorf("seed: generated invalid dataset: %w", err)
	}
	return ds, nil
}

// pastTime returns a time within the configured window before Now.
func (f *Factory) pastTime() time.Time {
	start := f.opts.Now.Add(-time.Duration(f.opts.MaxDays) * 24 * time.Hour)
	return f.faker.DateRange(start, f.opts.Now).UTC()
}

func (f *Factory) users(ds *fixtures.Dataset) {
	seen := make(map[string]struct{}, f.opts.Users)
	for i := 1; i <= f.opts.Users; i++ {
		username := f.username(seen)
		ds.Users = append(ds.Users, models.User{
			ID:             uint(i),
			Username:       username,
			DisplayName:    f.faker.Name(),
			Bio:            f.faker.Sentence(8),
			ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
			CreatedAt:      f.pastTime(),
		})
	}
}

// username returns a unique handle made of letters, digits and underscores.
func (f *Factory) username(seen map[string]struct{}) string {
	for {
		name := strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
				return unicode.ToLower(r)
			}
			return -1
		}, f.faker.Username())
		if validation.ValidateUsername(name) != nil {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		return name
	}
}

// follows never links user 2 to the current user, so a fresh dataset can
// always exercise follow(2, 1) from an unfollowed edge.
func (f *Factory) follows(ds *fixtures.Dataset) {
	for i := range ds.Users {
		for j := range ds.Users {
			if i == j || f.faker.Float64Range(0, 1) >= f.opts.FollowProbability {
				continue
			}
			if ds.Users[i].ID == reservedFollowerID && ds.Users[j].ID == reservedFolloweeID {
				continue
			}
			ds.Follows = append(ds.Follows, models.Follow{FollowerID: ds.Users[i].ID, FollowingID: ds.Users[j].ID})
			ds.Users[i].FollowingCount++
			ds.Users[j].FollowerCount++
		}
	}
}

var privacies = []string{models.PrivacyPublic, models.PrivacyPublic, models.PrivacyPublic, models.PrivacyFriends, models.PrivacyPrivate}

func (f *Factory) posts(ds *fixtures.Dataset) {
	var id uint
	for i := range ds.Users {
		n := f.faker.IntRange(0, f.opts.MaxPostsPerUser)
		for k := 0; k < n; k++ {
			id++
			post := models.Post{
				ID:        id,
				AuthorID:  ds.Users[i].ID,
				Content:   f.faker.Sentence(f.faker.IntRange(4, 20)),
				Privacy:   f.faker.RandomString(privacies),
				LikeCount: f.faker.IntRange(0, 50),
				CreatedAt: f.pastTime(),
			}
			switch f.faker.IntRange(0, 5) {
			case 0:
				post.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID())
				post.MediaType = models.MediaTypeImage
			case 1:
				post.MediaURL = fmt.Sprintf("https://videos.example.com/%s.mp4", f.faker.UUID())
				post.MediaType = models.MediaTypeVideo
			}
			ds.Posts = append(ds.Posts, post)
			ds.Users[i].PostCount++
		}
	}
}

func (f *Factory) comments(ds *fixtures.Dataset) {
	var id uint
	for i := range ds.Posts {
		n := f.faker.IntRange(0, f.opts.MaxCommentsPerPost)
		for k := 0; k < n; k++ {
			id++
			author := ds.Users[f.faker.IntRange(0, len(ds.Users)-1)]
			ds.Comments = append(ds.Comments, models.Comment{
				ID:        id,
				PostID:    ds.Posts[i].ID,
				AuthorID:  author.ID,
				Content:   f.faker.Sentence(f.faker.IntRange(2, 12)),
				LikeCount: f.faker.IntRange(0, 10),
				CreatedAt: ds.Posts[i].CreatedAt.Add(time.Duration(k+1) * time.Minute),
			})
			ds.Posts[i].CommentCount++
		}
	}
}

func (f *Factory) conversations(ds *fixtures.Dataset) {
	current := ds.Users[0].ID
	var msgID uint
	for c := 1; c <= f.opts.Conversations; c++ {
		other := ds.Users[c].ID
		conv := models.Conversation{ID: uint(c), Participants: []uint{current, other}}
		at := f.pastTime()
		for k := 0; k < f.opts.MessagesPerThread; k++ {
			msgID++
			sender := current
			if k%2 == 0 {
				sender = other
			}
			msg := models.Message{
				ID:             msgID,
				ConversationID: conv.ID,
				SenderID:       sender,
				Content:        f.faker.Sentence(f.faker.IntRange(3, 10)),
				CreatedAt:      at.Add(time.Duration(k) * 5 * time.Minute),
			}
			// Only the final incoming message may still be unread.
			msg.IsRead = sender == current || k < f.opts.MessagesPerThread-1 || f.faker.Bool()
			if !msg.IsRead {
				conv.UnreadCount++
			}
			conv.LastMessage = msg.Content
			conv.LastMessageAt = msg.CreatedAt
			ds.Messages = append(ds.Messages, msg)
		}
		ds.Conversations = append(ds.Conversations, conv)
	}
}

var notificationTypes = []string{
	models.NotificationLike, models.NotificationComment, models.NotificationFollow, models.NotificationMessage,
}

func (f *Factory) notifications(ds *fixtures.Dataset) {
	for i := 1; i <= f.opts.Notifications; i++ {
		actor := ds.Users[f.faker.IntRange(1, len(ds.Users)-1)]
		n := models.Notification{
			ID:        uint(i),
			Type:      f.faker.RandomString(notificationTypes),
			ActorID:   actor.ID,
			IsRead:    f.faker.Bool(),
			CreatedAt: f.pastTime(),
		}
		switch n.Type {
		case models.NotificationLike, models.NotificationComment:
			if len(ds.Posts) > 0 {
				postID := ds.Posts[f.faker.IntRange(0, len(ds.Posts)-1)].ID
				n.PostID = &postID
			}
			if n.Type == models.NotificationComment {
				n.Content = f.faker.Sentence(6)
			}
		case models.NotificationMessage:
			n.Content = f.faker.Sentence(6)
		}
		ds.Notifications = append(ds.Notifications, n)
	}
}
