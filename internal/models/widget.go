package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WidgetType string

const WidgetTypePoll WidgetType = "poll"

// Widget is an interactive element attached to a post. The payload field
// matching Type is populated; Version guards concurrent read-modify-write.
type Widget struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Post      primitive.ObjectID `bson:"post" json:"post"`
	Type      WidgetType         `bson:"type" json:"type"`
	Poll      *Poll              `bson:"poll,omitempty" json:"poll,omitempty"`
	Version   int64              `bson:"version" json:"-"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

type Poll struct {
	Question   string       `bson:"question" json:"question"`
	Options    []PollOption `bson:"options" json:"options"`
	TotalVotes int64        `bson:"total_votes" json:"total_votes"`
	ClosesAt   *time.Time   `bson:"closes_at,omitempty" json:"closes_at,omitempty"`
}

type PollOption struct {
	ID        primitive.ObjectID   `bson:"id" json:"id"`
	Text      string               `bson:"text" json:"text"`
	Voters    []primitive.ObjectID `bson:"voters" json:"-"`
	VoteCount int64                `bson:"vote_count" json:"vote_count"`
}

// IsClosed reports whether the poll stopped accepting votes at now.
func (p *Poll) IsClosed(now time.Time) bool {
	return p.ClosesAt != nil && !now.Before(*p.ClosesAt)
}

// VoteOf returns the option the voter currently backs, if any.
func (p *Poll) VoteOf(voter primitive.ObjectID) (primitive.ObjectID, bool) {
	for _, opt := range p.Options {
		if containsID(opt.Voters, voter) {
			return opt.ID, true
		}
	}
	return primitive.NilObjectID, false
}
