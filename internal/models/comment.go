package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Post        primitive.ObjectID   `bson:"post" json:"post"`
	Author      primitive.ObjectID   `bson:"author" json:"author"`
	Content     string               `bson:"content" json:"content"`
	Upvotes     []primitive.ObjectID `bson:"upvotes" json:"-"`
	UpvoteCount int64                `bson:"upvote_count" json:"upvote_count"`
	ReplyCount  int64                `bson:"reply_count" json:"reply_count"`
	Status      ContentStatus        `bson:"status" json:"status"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
}

type Reply struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Comment   primitive.ObjectID `bson:"comment" json:"comment"`
	Post      primitive.ObjectID `bson:"post" json:"post"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Content   string             `bson:"content" json:"content"`
	Status    ContentStatus      `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
