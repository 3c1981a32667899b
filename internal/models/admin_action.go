package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AdminActionType string

const (
	ActionRemovePost       AdminActionType = "remove_post"
	ActionRestorePost      AdminActionType = "restore_post"
	ActionRemoveComment    AdminActionType = "remove_comment"
	ActionRemoveReply      AdminActionType = "remove_reply"
	ActionSuspendProfile   AdminActionType = "suspend_profile"
	ActionUnsuspendProfile AdminActionType = "unsuspend_profile"
	ActionResolveReport    AdminActionType = "resolve_report"
	ActionDismissReport    AdminActionType = "dismiss_report"
)

// AdminAction is an append-only audit entry. AdminID is the admins.id UUID.
type AdminAction struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	AdminID    string              `bson:"admin_id" json:"admin_id"`
	Action     AdminActionType     `bson:"action" json:"action"`
	TargetType TargetType          `bson:"target_type" json:"target_type"`
	TargetID   primitive.ObjectID  `bson:"target_id" json:"target_id"`
	Reason     string              `bson:"reason,omitempty" json:"reason,omitempty"`
	Report     *primitive.ObjectID `bson:"report,omitempty" json:"report,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
}
