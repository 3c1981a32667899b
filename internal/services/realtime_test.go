package services

import (
	"context"
	"testing"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPollHubFanOut(t *testing.T) {
	hub := NewPollHub()
	a, cancelA := hub.Subscribe("w1")
	b, cancelB := hub.Subscribe("w1")
	other, cancelOther := hub.Subscribe("w2")
	defer cancelOther()
	assert.Equal(t, 2, hub.Subscribers("w1"))

	hub.FanOut(PollTally{WidgetID: "w1", TotalVotes: 3})
	assert.EqualValues(t, 3, (<-a).TotalVotes)
	assert.EqualValues(t, 3, (<-b).TotalVotes)
	assert.Empty(t, other)

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, hub.Subscribers("w1"))

	cancelB()
	assert.Equal(t, 0, hub.Subscribers("w1"))
}

func TestPollHubDropsForSlowSubscribers(t *testing.T) {
	hub := NewPollHub()
	ch, cancel := hub.Subscribe("w")
	defer cancel()
	for i := 0; i < cap(ch)+5; i++ {
		hub.FanOut(PollTally{WidgetID: "w"})
	}
	assert.Len(t, ch, cap(ch))
}

func TestTallyOf(t *testing.T) {
	p, err := NewPoll("q", []string{"a", "b"}, nil)
	require.NoError(t, err)
	p.Options[1].VoteCount = 2
	p.TotalVotes = 2
	w := &models.Widget{ID: primitive.NewObjectID(), Type: models.WidgetTypePoll, Poll: p}

	tally := TallyOf(w)
	assert.Equal(t, "poll_tally", tally.Type)
	assert.Equal(t, w.ID.Hex(), tally.WidgetID)
	require.Len(t, tally.Options, 2)
	assert.Equal(t, p.Options[1].ID.Hex(), tally.Options[1].ID)
	assert.EqualValues(t, 2, tally.Options[1].VoteCount)
}

func TestPublishPollTallyWithoutRedis(t *testing.T) {
	database.RedisClient = nil
	w := &models.Widget{ID: primitive.NewObjectID(), Type: models.WidgetTypePoll, Poll: &models.Poll{TotalVotes: 7}}
	ch, cancel := Polls.Subscribe(w.ID.Hex())
	defer cancel()

	PublishPollTally(context.Background(), w)
	assert.EqualValues(t, 7, (<-ch).TotalVotes)
}
