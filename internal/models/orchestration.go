package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Orchestration is a named set of prompt templates consumed by the external
// content-generation workflow.
type Orchestration struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Prompts     []Prompt           `bson:"prompts" json:"prompts"`
	Active      bool               `bson:"active" json:"active"`
	UpdatedBy   string             `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

type Prompt struct {
	Key      string `bson:"key" json:"key" validate:"required,max=64"`
	Template string `bson:"template" json:"template" validate:"required"`
}
