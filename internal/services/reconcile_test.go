package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestReconcileCounters(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("merges every counter pass", func(mt *mtest.T) {
		database.DB = mt.DB
		srv := useRedis(mt)
		Cache.Set(ctx, CacheKey("profile", "64b000000000000000000001"), map[string]int{"follower_count": 9})
		Cache.Set(ctx, CacheKey("orchestration", "daily"), "keep")
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "agora."+database.ProfilesCollection, mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "agora."+database.PostsCollection, mtest.FirstBatch),
			mtest.CreateCursorResponse(0, "agora."+database.CommentsCollection, mtest.FirstBatch),
		)

		require.NoError(mt, ReconcileCounters(ctx))
		assert.Equal(mt, []string{
			"aggregate:" + database.ProfilesCollection,
			"aggregate:" + database.PostsCollection,
			"aggregate:" + database.CommentsCollection,
		}, issued(mt))

		for _, ev := range mt.GetAllStartedEvents() {
			stages, err := ev.Command.Lookup("pipeline").Array().Values()
			require.NoError(mt, err)
			last := stages[len(stages)-1].Document()
			assert.Equal(mt, ev.Command.Lookup("aggregate").StringValue(), last.Lookup("$merge", "into").StringValue())
		}
		assert.Equal(mt, []string{"cache:orchestration:daily"}, srv.Keys())
	})

	mt.Run("stops at the failing pass", func(mt *mtest.T) {
		database.DB = mt.DB
		database.RedisClient = nil
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "agora."+database.ProfilesCollection, mtest.FirstBatch),
			mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad pipeline"}),
		)

		err := ReconcileCounters(ctx)
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "reconcile "+database.PostsCollection)
		assert.Len(mt, issued(mt), 2)
	})
}
