package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is the public identity of a user. UserID points at the identity row in Postgres.
type Profile struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID         string               `bson:"user_id" json:"-"`
	Username       string               `bson:"username" json:"username"`
	DisplayName    string               `bson:"display_name" json:"display_name"`
	Bio            string               `bson:"bio,omitempty" json:"bio,omitempty"`
	AvatarURL      string               `bson:"avatar_url,omitempty" json:"avatar_url,omitempty"`
	FollowerCount  int64                `bson:"follower_count" json:"follower_count"`
	FollowingCount int64                `bson:"following_count" json:"following_count"`
	Bookmarks      []primitive.ObjectID `bson:"bookmarks" json:"-"`
	IsSuspended    bool                 `bson:"is_suspended" json:"is_suspended"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}

// HasBookmarked reports whether postID is in the profile's bookmarks.
func (p *Profile) HasBookmarked(postID primitive.ObjectID) bool {
	return containsID(p.Bookmarks, postID)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
