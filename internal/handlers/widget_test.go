package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestVotePoll(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	newWidget := func(t testing.TB) *models.Widget {
		poll, err := services.NewPoll("Lunch?", []string{"pizza", "salad"}, nil)
		require.NoError(t, err)
		return &models.Widget{ID: primitive.NewObjectID(), Post: primitive.NewObjectID(), Type: models.WidgetTypePoll, Poll: poll, Version: 1}
	}
	updated := mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1})

	mt.Run("records a vote", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		w := newWidget(mt)
		option := w.Poll.Options[0].ID
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			findReply(mt, database.WidgetsCollection, w),
			countReply(database.PostsCollection, 1),
			updated,
		)

		rec := httptest.NewRecorder()
		VotePoll(rec, signedIn(http.MethodPost, "/api/widget/poll", M{"widget_id": w.ID.Hex(), "option_id": option.Hex()}, me))
		require.Equal(mt, http.StatusOK, rec.Code)
		body := decodeBody(mt, rec)
		assert.Equal(mt, "Vote recorded", body["message"])
		assert.Equal(mt, option.Hex(), body["voted_option"])
		assert.Nil(mt, body["previous_option"])
		assert.Equal(mt, false, body["closed"])
	})

	mt.Run("same option withdraws", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		w := newWidget(mt)
		option := w.Poll.Options[1].ID
		w.Poll.Options[1].Voters = []primitive.ObjectID{me.ID}
		w.Poll.Options[1].VoteCount = 1
		w.Poll.TotalVotes = 1
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			findReply(mt, database.WidgetsCollection, w),
			countReply(database.PostsCollection, 1),
			updated,
		)

		rec := httptest.NewRecorder()
		VotePoll(rec, signedIn(http.MethodPost, "/api/widget/poll", M{"widget_id": w.ID.Hex(), "option_id": option.Hex()}, me))
		require.Equal(mt, http.StatusOK, rec.Code)
		body := decodeBody(mt, rec)
		assert.Equal(mt, "Vote withdrawn", body["message"])
		assert.Equal(mt, option.Hex(), body["previous_option"])
		assert.NotContains(mt, body, "voted_option")
	})

	mt.Run("unknown option", func(mt *mtest.T) {
		useMock(mt)
		me := testProfile()
		w := newWidget(mt)
		mt.AddMockResponses(
			findReply(mt, database.ProfilesCollection, me),
			findReply(mt, database.WidgetsCollection, w),
			countReply(database.PostsCollection, 1),
		)

		rec := httptest.NewRecorder()
		VotePoll(rec, signedIn(http.MethodPost, "/api/widget/poll", M{"widget_id": w.ID.Hex(), "option_id": primitive.NewObjectID().Hex()}, me))
		assert.Equal(mt, http.StatusBadRequest, rec.Code)
	})
}

func TestPollSocket(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("streams tallies", func(mt *mtest.T) {
		useMock(mt)
		poll, err := services.NewPoll("Lunch?", []string{"pizza", "salad"}, nil)
		require.NoError(mt, err)
		w := &models.Widget{ID: primitive.NewObjectID(), Type: models.WidgetTypePoll, Poll: poll}
		mt.AddMockResponses(
			findReply(mt, database.WidgetsCollection, w),
			countReply(database.PostsCollection, 1),
		)

		srv := httptest.NewServer(http.HandlerFunc(PollSocket))
		defer srv.Close()

		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/poll?widget_id=" + w.ID.Hex()
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(mt, err)
		defer conn.Close()
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))

		var first services.PollTally
		require.NoError(mt, conn.ReadJSON(&first))
		assert.Equal(mt, w.ID.Hex(), first.WidgetID)
		assert.Len(mt, first.Options, 2)

		services.Polls.FanOut(services.PollTally{Type: "poll_tally", WidgetID: w.ID.Hex(), TotalVotes: 9})
		var next services.PollTally
		require.NoError(mt, conn.ReadJSON(&next))
		assert.EqualValues(mt, 9, next.TotalVotes)
	})

	mt.Run("requires a widget id", func(mt *mtest.T) {
		useMock(mt)
		rec := httptest.NewRecorder()
		PollSocket(rec, httptest.NewRequest(http.MethodGet, "/ws/poll", nil))
		assert.Equal(mt, http.StatusBadRequest, rec.Code)
	})
}

func TestGetWidget(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	poll, err := services.NewPoll("Lunch?", []string{"pizza", "salad"}, nil)
	require.NoError(t, err)
	widget := &models.Widget{ID: primitive.NewObjectID(), Post: primitive.NewObjectID(), Type: models.WidgetTypePoll, Poll: poll, Version: 1}

	router := chi.NewRouter()
	router.Get("/api/widget/{id}", GetWidget)

	mt.Run("serves the poll of an active post", func(mt *mtest.T) {
		useMock(mt)
		mt.AddMockResponses(
			findReply(mt, database.WidgetsCollection, widget),
			countReply(database.PostsCollection, 1),
		)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/widget/"+widget.ID.Hex(), nil))
		assert.Equal(mt, http.StatusOK, rec.Code)
	})

	mt.Run("hidden once the post is removed", func(mt *mtest.T) {
		useMock(mt)
		mt.AddMockResponses(
			findReply(mt, database.WidgetsCollection, widget),
			countReply(database.PostsCollection, 0),
		)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/widget/"+widget.ID.Hex(), nil))
		assert.Equal(mt, http.StatusNotFound, rec.Code)
	})

	mt.Run("bad id", func(mt *mtest.T) {
		useMock(mt)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/widget/nope", nil))
		assert.Equal(mt, http.StatusBadRequest, rec.Code)
	})
}
