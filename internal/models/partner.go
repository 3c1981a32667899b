package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PartnerStatus string

const (
	PartnerPending   PartnerStatus = "pending"
	PartnerApproved  PartnerStatus = "approved"
	PartnerRejected  PartnerStatus = "rejected"
	PartnerSuspended PartnerStatus = "suspended"
)

type Partner struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Profile                primitive.ObjectID `bson:"profile" json:"profile"`
	Status                 PartnerStatus      `bson:"status" json:"status"`
	Website                string             `bson:"website,omitempty" json:"website,omitempty"`
	PayoutDetailsEncrypted string             `bson:"payout_details_encrypted,omitempty" json:"-"`
	RevenueShare           float64            `bson:"revenue_share" json:"revenue_share"`
	CreatedAt              time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt              time.Time          `bson:"updated_at" json:"updated_at"`
}

type ExternalAd struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Partner         primitive.ObjectID `bson:"partner" json:"partner"`
	Title           string             `bson:"title" json:"title"`
	ImageURL        string             `bson:"image_url" json:"image_url"`
	TargetURL       string             `bson:"target_url" json:"target_url"`
	Active          bool               `bson:"active" json:"active"`
	ImpressionCount int64              `bson:"impression_count" json:"impression_count"`
	ClickCount      int64              `bson:"click_count" json:"click_count"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

type ImpressionKind string

const (
	KindImpression ImpressionKind = "impression"
	KindClick      ImpressionKind = "click"
)

type Impression struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Ad        primitive.ObjectID  `bson:"ad" json:"ad"`
	Partner   primitive.ObjectID  `bson:"partner" json:"partner"`
	Viewer    *primitive.ObjectID `bson:"viewer,omitempty" json:"viewer,omitempty"`
	Kind      ImpressionKind      `bson:"kind" json:"kind"`
	IPHash    string              `bson:"ip_hash,omitempty" json:"-"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}
