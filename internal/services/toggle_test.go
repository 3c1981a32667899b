package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// docOf round-trips v through BSON so it can be served as a mock reply.
func docOf(t testing.TB, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func noDocument() bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil})
}

func countReply(ns string, n int64) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

// issued lists the commands sent by mt's client as "command:collection".
func issued(mt *mtest.T) []string {
	var out []string
	for _, evt := range mt.GetAllStartedEvents() {
		coll, _ := evt.Command.Lookup(evt.CommandName).StringValueOK()
		out = append(out, evt.CommandName+":"+coll)
	}
	return out
}

// lastUpdate returns the update document of the last update command sent to coll.
func lastUpdate(mt *mtest.T, coll string) bson.Raw {
	var doc bson.Raw
	for _, evt := range mt.GetAllStartedEvents() {
		if evt.CommandName != "update" || evt.Command.Lookup("update").StringValue() != coll {
			continue
		}
		stmts, err := evt.Command.Lookup("updates").Array().Values()
		require.NoError(mt, err)
		doc = stmts[len(stmts)-1].Document().Lookup("u").Document()
	}
	require.NotNil(mt, doc, "no update sent to %s", coll)
	return doc
}

func updated() bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1})
}

func notMatched() bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0})
}

func TestMembershipToggle(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	member := primitive.NewObjectID()
	postID := primitive.NewObjectID()

	toggle := func(mt *mtest.T) MembershipToggle {
		return MembershipToggle{
			Collection: mt.Coll,
			ID:         postID,
			ArrayField: "upvotes",
			CountField: "upvote_count",
			Extra:      bson.M{"status": "active"},
		}
	}
	ns := "agora.posts"

	mt.Run("removes an existing member", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: postID},
			{Key: "upvote_count", Value: int32(4)},
		}}))

		res, err := toggle(mt).Toggle(context.Background(), member)
		require.NoError(mt, err)
		assert.False(mt, res.Added)
		assert.EqualValues(mt, 4, res.Count)
	})

	mt.Run("adds a new member", func(mt *mtest.T) {
		mt.AddMockResponses(
			noDocument(),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: postID},
				{Key: "upvote_count", Value: int64(5)},
			}}),
		)

		res, err := toggle(mt).Toggle(context.Background(), member)
		require.NoError(mt, err)
		assert.True(mt, res.Added)
		assert.EqualValues(mt, 5, res.Count)
	})

	mt.Run("missing document", func(mt *mtest.T) {
		mt.AddMockResponses(noDocument(), noDocument(), countReply(ns, 0))

		_, err := toggle(mt).Toggle(context.Background(), member)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("lost race", func(mt *mtest.T) {
		mt.AddMockResponses(noDocument(), noDocument(), countReply(ns, 1))

		_, err := toggle(mt).Toggle(context.Background(), member)
		assert.ErrorIs(mt, err, ErrConflict)
	})

	mt.Run("without a counter", func(mt *mtest.T) {
		mt.AddMockResponses(noDocument(), mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: postID}}}))

		tg := toggle(mt)
		tg.CountField = ""
		res, err := tg.Toggle(context.Background(), member)
		require.NoError(mt, err)
		assert.True(mt, res.Added)
		assert.Zero(mt, res.Count)
	})
}
