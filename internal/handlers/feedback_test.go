package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestCreateReport(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	target := primitive.NewObjectID()
	body := M{"target_type": "post", "target_id": target.Hex(), "reason": "spam", "details": "<b>buy now</b> links"}

	mt.Run("files a report", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			countReply(database.PostsCollection, 1),
			countReply(database.ReportsCollection, 0),
			mtest.CreateSuccessResponse(),
		)

		rec := httptest.NewRecorder()
		CreateReport(rec, signedIn(http.MethodPost, "/api/report", body, me))
		assert.Equal(mt, http.StatusCreated, rec.Code)
		report := decodeBody(mt, rec)["report"].(map[string]interface{})
		assert.Equal(mt, "pending", report["status"])
		assert.Equal(mt, "buy now links", report["details"])
		assert.Equal(mt, me.ID.Hex(), report["reporter"])
	})

	mt.Run("one pending report per target", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			countReply(database.PostsCollection, 1),
			countReply(database.ReportsCollection, 1),
		)

		rec := httptest.NewRecorder()
		CreateReport(rec, signedIn(http.MethodPost, "/api/report", body, me))
		assert.Equal(mt, http.StatusConflict, rec.Code)
		assert.Equal(mt, "report already pending", decodeBody(mt, rec)["message"])
	})

	mt.Run("missing target", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			countReply(database.PostsCollection, 0),
		)

		rec := httptest.NewRecorder()
		CreateReport(rec, signedIn(http.MethodPost, "/api/report", body, me))
		assert.Equal(mt, http.StatusNotFound, rec.Code)
	})
}
