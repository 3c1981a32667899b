package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestHashIP(t *testing.T) {
	h := HashIP("203.0.113.9")
	assert.Len(t, h, 32)
	assert.Equal(t, h, HashIP("203.0.113.9"))
	assert.NotEqual(t, h, HashIP("203.0.113.10"))
}

func TestRecordAdEvent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	adID := primitive.NewObjectID()

	mt.Run("unknown kind", func(mt *mtest.T) {
		database.DB = mt.DB
		err := RecordAdEvent(context.Background(), adID, models.ImpressionKind("hover"), nil, "198.51.100.1")
		assert.ErrorIs(mt, err, ErrInvalidInput)
	})

	mt.Run("inactive ad", func(mt *mtest.T) {
		database.DB = mt.DB
		mt.AddMockResponses(noDocument())
		err := RecordAdEvent(context.Background(), adID, models.KindClick, nil, "198.51.100.1")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("records impression", func(mt *mtest.T) {
		database.DB = mt.DB
		viewer := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: docOf(mt, models.ExternalAd{ID: adID, Partner: primitive.NewObjectID(), Active: true})}),
			mtest.CreateSuccessResponse(),
		)
		require.NoError(mt, RecordAdEvent(context.Background(), adID, models.KindImpression, &viewer, "198.51.100.1"))
	})
}
