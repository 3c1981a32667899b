package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TargetType string

const (
	TargetPost    TargetType = "post"
	TargetComment TargetType = "comment"
	TargetReply   TargetType = "reply"
	TargetProfile TargetType = "profile"
)

type ReportStatus string

const (
	ReportPending   ReportStatus = "pending"
	ReportResolved  ReportStatus = "resolved"
	ReportDismissed ReportStatus = "dismissed"
)

type Report struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Reporter   *primitive.ObjectID `bson:"reporter,omitempty" json:"reporter,omitempty"` // nil for automatic reports
	TargetType TargetType          `bson:"target_type" json:"target_type"`
	TargetID   primitive.ObjectID  `bson:"target_id" json:"target_id"`
	Reason     string              `bson:"reason" json:"reason"`
	Details    string              `bson:"details,omitempty" json:"details,omitempty"`
	Status     ReportStatus        `bson:"status" json:"status"`
	ResolvedBy string              `bson:"resolved_by,omitempty" json:"resolved_by,omitempty"`
	ResolvedAt *time.Time          `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}
