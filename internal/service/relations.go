package service

import (
	"pulse/internal/enrich"
	"pulse/internal/models"
	"pulse/internal/repository"
)

// relations holds the user joins shared by the services. Every join
// resolves through the user repository, so a list pays one users latency
// rather than one per item.
type relations struct {
	postAuthor        enrich.Relation[models.Post, uint, models.User]
	commentAuthor     enrich.Relation[models.Comment, uint, models.User]
	messageSender     enrich.Relation[models.Message, uint, models.User]
	notificationActor enrich.Relation[models.Notification, uint, models.User]
	users             repository.UserRepository
}

func newRelations(users repository.UserRepository) relations {
	return relations{
		users: users,
		postAuthor: enrich.Relation[models.Post, uint, models.User]{
			Name:    "post.author",
			Key:     func(p models.Post) (uint, bool) { return p.AuthorID, true },
			Resolve: users.GetByID,
			Set:     func(p *models.Post, u *models.User) { p.Author = u },
		},
		commentAuthor: enrich.Relation[models.Comment, uint, models.User]{
			Name:    "comment.author",
			Key:     func(c models.Comment) (uint, bool) { return c.AuthorID, true },
			Resolve: users.GetByID,
			Set:     func(c *models.Comment, u *models.User) { c.Author = u },
		},
		messageSender: enrich.Relation[models.Message, uint, models.User]{
			Name:    "message.sender",
			Key:     func(m models.Message) (uint, bool) { return m.SenderID, true },
			Resolve: users.GetByID,
			Set:     func(m *models.Message, u *models.User) { m.Sender = u },
		},
		notificationActor: enrich.Relation[models.Notification, uint, models.User]{
			Name:    "notification.actor",
			Key:     func(n models.Notification) (uint, bool) { return n.ActorID, true },
			Resolve: users.GetByID,
			Set:     func(n *models.Notification, u *models.User) { n.Actor = u },
		},
	}
}

// otherUser joins each conversation to the participant who is not viewerID.
func (r relations) otherUser(viewerID uint) enrich.Relation[models.Conversation, uint, models.User] {
	return enrich.Relation[models.Conversation, uint, models.User]{
		Name: "conversation.other_user",
		Key: func(c models.Conversation) (uint, bool) {
			id := c.OtherParticipant(viewerID)
			return id, id != 0
		},
		Resolve: r.users.GetByID,
		Set:     func(c *models.Conversation, u *models.User) { c.OtherUser = u },
	}
}
