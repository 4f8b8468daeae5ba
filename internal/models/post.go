package models

import "time"

// Post privacy levels.
const (
	PrivacyPublic  = "public"
	PrivacyFriends = "friends"
	PrivacyPrivate = "private"
)

// Media types a post may carry.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Post represents a feed entry.
type Post struct {
	ID           uint       `json:"Id"`
	AuthorID     uint       `json:"authorId"`
	Content      string     `json:"content"`
	MediaURL     string     `json:"mediaUrl,omitempty"`
	MediaType    string     `json:"mediaType,omitempty"`
	Privacy      string     `json:"privacy"`
	LikeCount    int        `json:"likeCount"`
	CommentCount int        `json:"commentCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	EditedAt     *time.Time `json:"editedAt,omitempty"`
	Author       *User      `json:"author"`
}

// GetID returns the record id.
func (p Post) GetID() uint { return p.ID }

// PostPatch lists the fields an edit may change.
type PostPatch struct {
	Content   *string `json:"content,omitempty"`
	MediaURL  *string `json:"mediaUrl,omitempty"`
	MediaType *string `json:"mediaType,omitempty"`
	Privacy   *string `json:"privacy,omitempty"`
}

// Apply copies the set fields onto p.
func (pp PostPatch) Apply(p *Post) {
	if pp.Content != nil {
		p.Content = *pp.Content
	}
	if pp.MediaURL != nil {
		p.MediaURL = *pp.MediaURL
	}
	if pp.MediaType != nil {
		p.MediaType = *pp.MediaType
	}
	if pp.Privacy != nil {
		p.Privacy = *pp.Privacy
	}
}
