package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestPollIsClosed(t *testing.T) {
	now := time.Now()
	past, future := now.Add(-time.Second), now.Add(time.Hour)

	assert.False(t, (&Poll{}).IsClosed(now))
	assert.False(t, (&Poll{ClosesAt: &future}).IsClosed(now))
	assert.True(t, (&Poll{ClosesAt: &past}).IsClosed(now))
	assert.True(t, (&Poll{ClosesAt: &now}).IsClosed(now))
}

func TestPollVoteOf(t *testing.T) {
	voter := primitive.NewObjectID()
	yes := PollOption{ID: primitive.NewObjectID(), Voters: []primitive.ObjectID{primitive.NewObjectID(), voter}}
	no := PollOption{ID: primitive.NewObjectID()}
	p := &Poll{Options: []PollOption{no, yes}}

	got, ok := p.VoteOf(voter)
	assert.True(t, ok)
	assert.Equal(t, yes.ID, got)

	_, ok = p.VoteOf(primitive.NewObjectID())
	assert.False(t, ok)
}
