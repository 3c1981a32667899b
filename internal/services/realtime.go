package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"go.uber.org/zap"
)

const pollChannelPrefix = "poll:widget:"

// PollTally is the live-update payload for a poll widget.
type PollTally struct {
	Type       string            `json:"type"`
	WidgetID   string            `json:"widget_id"`
	Options    []PollOptionTally `json:"options"`
	TotalVotes int64             `json:"total_votes"`
	Timestamp  time.Time         `json:"timestamp"`
}

type PollOptionTally struct {
	ID        string `json:"id"`
	VoteCount int64  `json:"vote_count"`
}

// TallyOf builds the broadcast payload for a widget.
func TallyOf(w *models.Widget) PollTally {
	t := PollTally{Type: "poll_tally", WidgetID: w.ID.Hex(), Timestamp: time.Now().UTC()}
	if w.Poll == nil {
		return t
	}
	t.TotalVotes = w.Poll.TotalVotes
	for _, o := range w.Poll.Options {
		t.Options = append(t.Options, PollOptionTally{ID: o.ID.Hex(), VoteCount: o.VoteCount})
	}
	return t
}

// PollHub fans tallies out to local websocket subscribers, keyed by widget id.
type PollHub struct {
	mu   sync.RWMutex
	subs map[string]map[chan PollTally]struct{}
}

func NewPollHub() *PollHub {
	return &PollHub{subs: make(map[string]map[chan PollTally]struct{})}
}

// Polls is the process-wide hub fed by the Redis subscriber.
var Polls = NewPollHub()

// Subscribe returns a channel of tallies for widgetID and a function that
// detaches and closes it.
func (h *PollHub) Subscribe(widgetID string) (<-chan PollTally, func()) {
	ch := make(chan PollTally, 8)
	h.mu.Lock()
	if h.subs[widgetID] == nil {
		h.subs[widgetID] = make(map[chan PollTally]struct{})
	}
	h.subs[widgetID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[widgetID], ch)
			if len(h.subs[widgetID]) == 0 {
				delete(h.subs, widgetID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// FanOut delivers a tally to every subscriber of its widget. Slow subscribers
// miss updates rather than block the hub.
func (h *PollHub) FanOut(t PollTally) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[t.WidgetID] {
		select {
		case ch <- t:
		default:
		}
	}
}

// Subscribers counts local listeners for a widget.
func (h *PollHub) Subscribers(widgetID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[widgetID])
}

// PublishPollTally broadcasts a widget's tallies to every instance. Without
// Redis it fans out locally only.
func PublishPollTally(ctx context.Context, w *models.Widget) {
	t := TallyOf(w)
	if database.RedisClient == nil {
		Polls.FanOut(t)
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := database.RedisClient.Publish(ctx, pollChannelPrefix+t.WidgetID, data).Err(); err != nil {
		zap.L().Warn("publish poll tally failed", zap.String("widget_id", t.WidgetID), zap.Error(err))
	}
}

var pollSubscriberStarted sync.Once

// StartPollSubscriber runs a single Redis pattern subscriber per process that
// feeds Polls. It reconnects with capped backoff until ctx is done.
func StartPollSubscriber(ctx context.Context) {
	pollSubscriberStarted.Do(func() {
		go runPollSubscriber(ctx)
	})
}

func runPollSubscriber(ctx context.Context) {
	client := database.RedisClient
	if client == nil {
		zap.L().Warn("redis not initialized; poll subscriber not started")
		return
	}

	backoff := time.Second
	for ctx.Err() == nil {
		pubsub := client.PSubscribe(ctx, pollChannelPrefix+"*")
		zap.L().Info("poll subscriber started", zap.String("pattern", pollChannelPrefix+"*"))

		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					zap.L().Warn("poll subscriber error", zap.Error(err), zap.Duration("retry_in", backoff))
				}
				break
			}
			backoff = time.Second

			var t PollTally
			if err := json.Unmarshal([]byte(msg.Payload), &t); err != nil {
				continue
			}
			if t.WidgetID == "" {
				t.WidgetID = strings.TrimPrefix(msg.Channel, pollChannelPrefix)
			}
			Polls.FanOut(t)
		}
		pubsub.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > 30*time.Second {
			backoff = 30 * time.Second
		}
	}
}
