package handlers

import (
	"net/http"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type CreatePollRequest struct {
	PostID   string     `json:"post_id" validate:"required,mongodb"`
	Question string     `json:"question" validate:"required,max=200"`
	Options  []string   `json:"options" validate:"required,min=2,max=6,dive,required,max=80"`
	ClosesAt *time.Time `json:"closes_at"`
}

// CreatePoll attaches a poll to the author's post.
func CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req CreatePollRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	postID, _ := parseObjectID(req.PostID)

	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	widget, err := services.AttachPoll(ctx, postID, me.ID, req.Question, req.Options, req.ClosesAt)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create poll")
		return
	}
	writeJSON(w, http.StatusCreated, "Poll created", M{"widget": widget})
}

// GetWidget returns a widget; for polls it includes the viewer's option.
func GetWidget(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid widget id")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	widget, err := services.GetActiveWidget(ctx, id)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load widget")
		return
	}
	writeJSON(w, http.StatusOK, "", widgetPayload(widget, viewerProfile(ctx, r)))
}

func widgetPayload(widget *models.Widget, viewer *models.Profile) M {
	payload := M{"widget": widget}
	if widget.Poll != nil {
		payload["closed"] = widget.Poll.IsClosed(time.Now())
		if viewer != nil {
			if opt, ok := widget.Poll.VoteOf(viewer.ID); ok {
				payload["voted_option"] = opt
			}
		}
	}
	return payload
}

type PollVoteRequest struct {
	WidgetID string `json:"widget_id" validate:"required,mongodb"`
	OptionID string `json:"option_id" validate:"required,mongodb"`
}

// VotePoll casts, moves or withdraws the viewer's vote.
func VotePoll(w http.ResponseWriter, r *http.Request) {
	var req PollVoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	widgetID, _ := parseObjectID(req.WidgetID)
	optionID, _ := parseObjectID(req.OptionID)

	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	widget, res, err := services.CastPollVote(ctx, widgetID, me.ID, optionID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to record vote")
		return
	}
	msg := "Vote recorded"
	if res.Withdrawn() {
		msg = "Vote withdrawn"
	}
	payload := widgetPayload(widget, me)
	payload["previous_option"] = res.Previous
	writeJSON(w, http.StatusOK, msg, payload)
}

var pollUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer for the HTTP handshake.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
	wsWriteWait  = 10 * time.Second
)

// PollSocket streams live tallies for ?widget_id= over a websocket.
func PollSocket(w http.ResponseWriter, r *http.Request) {
	widgetID, ok := parseObjectID(r.URL.Query().Get("widget_id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "widget_id is required")
		return
	}
	ctx, cancel := requestContext(r)
	widget, err := services.GetActiveWidget(ctx, widgetID)
	cancel()
	if err != nil {
		writeServiceError(w, r, err, "Failed to load widget")
		return
	}

	conn, err := pollUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	tallies, unsubscribe := services.Polls.Subscribe(widgetID.Hex())
	defer unsubscribe()

	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(services.TallyOf(widget)); err != nil {
		return
	}

	// The reader only services control frames; client messages are ignored.
	closed := make(chan struct{})
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case t, ok := <-tallies:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(t); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
