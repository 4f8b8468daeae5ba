package models

import "time"

// Comment represents a reply on a post.
type Comment struct {
	ID        uint       `json:"Id"`
	PostID    uint       `json:"postId"`
	AuthorID  uint       `json:"authorId"`
	Content   string     `json:"content"`
	LikeCount int        `json:"likeCount"`
	CreatedAt time.Time  `json:"createdAt"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
	Author    *User      `json:"author"`
}

// GetID returns the record id.
func (c Comment) GetID() uint { return c.ID }

// CommentPatch lists the fields an edit may change.
type CommentPatch struct {
	Content *string `json:"content,omitempty"`
}

// Apply copies the set fields onto c.
func (p CommentPatch) Apply(c *Comment) {
	if p.Content != nil {
		c.Content = *p.Content
	}
}
