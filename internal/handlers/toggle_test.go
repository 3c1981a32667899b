package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func testProfile() *models.Profile {
	return &models.Profile{
		ID:        primitive.NewObjectID(),
		UserID:    uuid.NewString(),
		Username:  "alice",
		Bookmarks: []primitive.ObjectID{},
	}
}

func TestToggleBookmark(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	post := &models.Post{ID: primitive.NewObjectID(), Author: primitive.NewObjectID(), Content: "hello", Status: models.StatusActive}

	mt.Run("requires a session", func(mt *mtest.T) {
		useMock(mt)
		rec := httptest.NewRecorder()
		ToggleBookmark(rec, signedIn(http.MethodPost, "/api/bookmark", M{"post_id": post.ID.Hex()}, nil))
		assert.Equal(mt, http.StatusUnauthorized, rec.Code)
	})

	mt.Run("rejects a bad id", func(mt *mtest.T) {
		useMock(mt)
		rec := httptest.NewRecorder()
		ToggleBookmark(rec, signedIn(http.MethodPost, "/api/bookmark", M{"post_id": "123"}, testProfile()))
		assert.Equal(mt, http.StatusBadRequest, rec.Code)
	})

	mt.Run("adds", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			findReply(mt, database.PostsCollection, post),
			noDocumentReply(),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: me.ID}}}),
		)

		rec := httptest.NewRecorder()
		ToggleBookmark(rec, signedIn(http.MethodPost, "/api/bookmark", M{"post_id": post.ID.Hex()}, me))
		assert.Equal(mt, http.StatusOK, rec.Code)
		body := decodeBody(mt, rec)
		assert.Equal(mt, true, body["bookmarked"])
		assert.Equal(mt, "Bookmarked", body["message"])
	})

	mt.Run("removes even when the post is gone", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		me.Bookmarks = []primitive.ObjectID{post.ID}
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "_id", Value: me.ID}}}),
		)

		rec := httptest.NewRecorder()
		ToggleBookmark(rec, signedIn(http.MethodPost, "/api/bookmark", M{"post_id": post.ID.Hex()}, me))
		assert.Equal(mt, http.StatusOK, rec.Code)
		assert.Equal(mt, false, decodeBody(mt, rec)["bookmarked"])
	})

	mt.Run("unknown post", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			findReply(mt, database.PostsCollection),
		)

		rec := httptest.NewRecorder()
		ToggleBookmark(rec, signedIn(http.MethodPost, "/api/bookmark", M{"post_id": post.ID.Hex()}, me))
		assert.Equal(mt, http.StatusNotFound, rec.Code)
	})
}

func TestToggleRepost(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	postID := primitive.NewObjectID()

	mt.Run("reposts", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			noDocumentReply(),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "repost_count", Value: int64(3)}}}),
		)

		rec := httptest.NewRecorder()
		ToggleRepost(rec, signedIn(http.MethodPost, "/api/repost", M{"post_id": postID.Hex()}, me))
		assert.Equal(mt, http.StatusOK, rec.Code)
		body := decodeBody(mt, rec)
		assert.Equal(mt, true, body["reposted"])
		assert.EqualValues(mt, 3, body["repost_count"])
	})

	mt.Run("post no longer active", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			noDocumentReply(),
			noDocumentReply(),
			countReply(database.PostsCollection, 0),
		)

		rec := httptest.NewRecorder()
		ToggleRepost(rec, signedIn(http.MethodPost, "/api/repost", M{"post_id": postID.Hex()}, me))
		assert.Equal(mt, http.StatusNotFound, rec.Code)
	})
}

func TestToggleUpvote(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	targetID := primitive.NewObjectID()

	mt.Run("removes an upvote from a comment", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{{Key: "upvote_count", Value: int64(0)}}}),
		)

		rec := httptest.NewRecorder()
		ToggleUpvote(rec, signedIn(http.MethodPost, "/api/upvote", M{"target_type": "comment", "target_id": targetID.Hex()}, me))
		assert.Equal(mt, http.StatusOK, rec.Code)
		body := decodeBody(mt, rec)
		assert.Equal(mt, false, body["upvoted"])
		assert.EqualValues(mt, 0, body["upvote_count"])

		var colls []string
		for _, ev := range mt.GetAllStartedEvents() {
			if ev.CommandName == "findAndModify" {
				colls = append(colls, ev.Command.Lookup("findAndModify").StringValue())
			}
		}
		assert.Equal(mt, []string{database.CommentsCollection}, colls)
	})

	mt.Run("post no longer active", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			noDocumentReply(),
			noDocumentReply(),
			countReply(database.PostsCollection, 0),
		)

		rec := httptest.NewRecorder()
		ToggleUpvote(rec, signedIn(http.MethodPost, "/api/upvote", M{"target_type": "post", "target_id": targetID.Hex()}, me))
		assert.Equal(mt, http.StatusNotFound, rec.Code)
	})

	mt.Run("rejects an unknown target type", func(mt *mtest.T) {
		useMock(mt)
		rec := httptest.NewRecorder()
		ToggleUpvote(rec, signedIn(http.MethodPost, "/api/upvote", M{"target_type": "reply", "target_id": targetID.Hex()}, testProfile()))
		assert.Equal(mt, http.StatusBadRequest, rec.Code)
	})
}
