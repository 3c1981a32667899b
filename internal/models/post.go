package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ContentStatus string

const (
	StatusActive  ContentStatus = "active"
	StatusRemoved ContentStatus = "removed" // by an admin
	StatusDeleted ContentStatus = "deleted" // by the author
)

type Post struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Author       primitive.ObjectID   `bson:"author" json:"author"`
	Content      string               `bson:"content" json:"content"`
	Media        []string             `bson:"media,omitempty" json:"media,omitempty"`
	Tags         []string             `bson:"tags,omitempty" json:"tags,omitempty"`
	Upvotes      []primitive.ObjectID `bson:"upvotes" json:"-"`
	UpvoteCount  int64                `bson:"upvote_count" json:"upvote_count"`
	Reposts      []primitive.ObjectID `bson:"reposts" json:"-"`
	RepostCount  int64                `bson:"repost_count" json:"repost_count"`
	CommentCount int64                `bson:"comment_count" json:"comment_count"`
	Widget       *primitive.ObjectID  `bson:"widget,omitempty" json:"widget,omitempty"`
	Status       ContentStatus        `bson:"status" json:"status"`
	CreatedAt    time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updated_at"`
}

func (p *Post) UpvotedBy(profileID primitive.ObjectID) bool {
	return containsID(p.Upvotes, profileID)
}

func (p *Post) RepostedBy(profileID primitive.ObjectID) bool {
	return containsID(p.Reposts, profileID)
}
