// Package models contains data structures for the application's domain models.
package models

import "time"

// CurrentUserFallbackID is the user the app acts as when no identity is supplied.
const CurrentUserFallbackID uint = 1

// User represents a member profile in Pulse.
type User struct {
	ID             uint      `json:"Id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"displayName"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profilePicture"`
	FollowerCount  int       `json:"followerCount"`
	FollowingCount int       `json:"followingCount"`
	PostCount      int       `json:"postCount"`
	CreatedAt      time.Time `json:"createdAt"`
}

// GetID returns the record id.
func (u User) GetID() uint { return u.ID }

// UserPatch lists the profile fields an update may change.
type UserPatch struct {
	Username       *string `json:"username,omitempty"`
	DisplayName    *string `json:"displayName,omitempty"`
	Bio            *string `json:"bio,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

// Apply copies the set fields onto u.
func (p UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.DisplayName != nil {
		u.DisplayName = *p.DisplayName
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = *p.ProfilePicture
	}
}

// Follow is a directed follower -> following edge.
type Follow struct {
	FollowerID  uint `json:"followerId"`
	FollowingID uint `json:"followingId"`
}
