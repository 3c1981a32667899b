package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PolicyKind string

const (
	PolicyPrivacy    PolicyKind = "privacy"
	PolicyTerms      PolicyKind = "terms"
	PolicyGuidelines PolicyKind = "guidelines"
)

func (k PolicyKind) Valid() bool {
	switch k {
	case PolicyPrivacy, PolicyTerms, PolicyGuidelines:
		return true
	}
	return false
}

type Policy struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind      PolicyKind         `bson:"kind" json:"kind"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	Version   int64              `bson:"version" json:"version"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
