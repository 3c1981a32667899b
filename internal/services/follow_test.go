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

func TestToggleFollow(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	database.RedisClient = nil
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()
	profilesNS := "agora." + database.ProfilesCollection

	mt.Run("self follow", func(mt *mtest.T) {
		database.DB = mt.DB
		_, err := ToggleFollow(context.Background(), alice, alice)
		assert.ErrorIs(mt, err, ErrSelfFollow)
	})

	mt.Run("unknown followee", func(mt *mtest.T) {
		database.DB = mt.DB
		mt.AddMockResponses(countReply(profilesNS, 0))
		_, err := ToggleFollow(context.Background(), alice, bob)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("follow", func(mt *mtest.T) {
		database.DB = mt.DB
		mt.AddMockResponses(
			countReply(profilesNS, 1),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: docOf(mt, models.Profile{ID: bob, FollowerCount: 3})}),
		)

		res, err := ToggleFollow(context.Background(), alice, bob)
		require.NoError(mt, err)
		assert.True(mt, res.Following)
		assert.EqualValues(mt, 3, res.FollowerCount)
	})

	mt.Run("unfollow", func(mt *mtest.T) {
		database.DB = mt.DB
		mt.AddMockResponses(
			countReply(profilesNS, 1),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: docOf(mt, models.Profile{ID: bob, FollowerCount: 2})}),
		)

		res, err := ToggleFollow(context.Background(), alice, bob)
		require.NoError(mt, err)
		assert.False(mt, res.Following)
		assert.EqualValues(mt, 2, res.FollowerCount)
	})

	mt.Run("concurrent follow already recorded", func(mt *mtest.T) {
		database.DB = mt.DB
		mt.AddMockResponses(
			countReply(profilesNS, 1),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
			mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}),
			mtest.CreateCursorResponse(0, profilesNS, mtest.FirstBatch, docOf(mt, models.Profile{ID: bob, FollowerCount: 8})),
		)

		res, err := ToggleFollow(context.Background(), alice, bob)
		require.NoError(mt, err)
		assert.True(mt, res.Following)
		assert.EqualValues(mt, 8, res.FollowerCount)
	})
}
