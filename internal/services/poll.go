package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	MinPollOptions = 2
	MaxPollOptions = 6

	// pollVoteAttempts bounds optimistic-lock retries before answering 409.
	pollVoteAttempts = 3
)

// PollVoteResult describes the transition a vote caused.
type PollVoteResult struct {
	Previous *primitive.ObjectID `json:"previous,omitempty"`
	Current  *primitive.ObjectID `json:"current,omitempty"`
}

// Withdrawn reports whether the voter no longer backs any option.
func (r PollVoteResult) Withdrawn() bool {
	return r.Current == nil
}

// NewPoll builds a poll with fresh option ids. Blank options are dropped.
func NewPoll(question string, optionTexts []string, closesAt *time.Time) (*models.Poll, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", ErrInvalidInput)
	}
	var options []models.PollOption
	seen := make(map[string]bool)
	for _, text := range optionTexts {
		text = strings.TrimSpace(text)
		key := strings.ToLower(text)
		if text == "" || seen[key] {
			continue
		}
		seen[key] = true
		options = append(options, models.PollOption{
			ID:     primitive.NewObjectID(),
			Text:   text,
			Voters: []primitive.ObjectID{},
		})
	}
	if len(options) < MinPollOptions || len(options) > MaxPollOptions {
		return nil, fmt.Errorf("%w: a poll needs %d to %d distinct options", ErrInvalidInput, MinPollOptions, MaxPollOptions)
	}
	return &models.Poll{Question: question, Options: options, ClosesAt: closesAt}, nil
}

// ApplyPollVote returns a copy of p after voter votes for option. A voter backs at
// most one option: voting for a different option moves the vote, voting for the
// option already backed withdraws it. Counts are recomputed from the voter lists.
func ApplyPollVote(p models.Poll, voter, option primitive.ObjectID, now time.Time) (models.Poll, PollVoteResult, error) {
	if p.IsClosed(now) {
		return p, PollVoteResult{}, ErrPollClosed
	}

	target := -1
	for i, opt := range p.Options {
		if opt.ID == option {
			target = i
			break
		}
	}
	if target == -1 {
		return p, PollVoteResult{}, ErrInvalidOption
	}

	var result PollVoteResult
	if prev, ok := p.VoteOf(voter); ok {
		result.Previous = &prev
	}

	next := p
	next.Options = make([]models.PollOption, len(p.Options))
	next.TotalVotes = 0
	for i, opt := range p.Options {
		voters := make([]primitive.ObjectID, 0, len(opt.Voters)+1)
		for _, v := range opt.Voters {
			if v != voter {
				voters = append(voters, v)
			}
		}
		if i == target && (result.Previous == nil || *result.Previous != option) {
			voters = append(voters, voter)
			current := option
			result.Current = &current
		}
		opt.Voters = voters
		opt.VoteCount = int64(len(voters))
		next.TotalVotes += opt.VoteCount
		next.Options[i] = opt
	}
	return next, result, nil
}

// GetWidget loads a widget by id.
func GetWidget(ctx context.Context, id primitive.ObjectID) (*models.Widget, error) {
	var w models.Widget
	err := database.DB.Collection(database.WidgetsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load widget: %w", err)
	}
	return &w, nil
}

// GetActiveWidget loads a widget whose post is still active. Widgets on
// deleted or removed posts are reported as ErrNotFound.
func GetActiveWidget(ctx context.Context, id primitive.ObjectID) (*models.Widget, error) {
	w, err := GetWidget(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := database.DB.Collection(database.PostsCollection).CountDocuments(ctx,
		bson.M{"_id": w.Post, "status": models.StatusActive})
	if err != nil {
		return nil, fmt.Errorf("check widget post: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return w, nil
}

// CastPollVote applies a vote with optimistic locking on the widget version.
// Polls on posts that are no longer active do not take votes.
func CastPollVote(ctx context.Context, widgetID, voter, option primitive.ObjectID) (*models.Widget, PollVoteResult, error) {
	coll := database.DB.Collection(database.WidgetsCollection)

	for attempt := 0; attempt < pollVoteAttempts; attempt++ {
		load := GetWidget
		if attempt == 0 {
			load = GetActiveWidget
		}
		w, err := load(ctx, widgetID)
		if err != nil {
			return nil, PollVoteResult{}, err
		}
		if w.Type != models.WidgetTypePoll || w.Poll == nil {
			return nil, PollVoteResult{}, ErrNotPoll
		}

		next, result, err := ApplyPollVote(*w.Poll, voter, option, time.Now())
		if err != nil {
			return nil, PollVoteResult{}, err
		}

		res, err := coll.UpdateOne(ctx,
			bson.M{"_id": widgetID, "version": w.Version},
			bson.M{
				"$set": bson.M{"poll": next},
				"$inc": bson.M{"version": 1},
			},
		)
		if err != nil {
			return nil, PollVoteResult{}, fmt.Errorf("save poll vote: %w", err)
		}
		if res.MatchedCount == 1 {
			w.Poll = &next
			w.Version++
			PublishPollTally(ctx, w)
			return w, result, nil
		}
	}
	return nil, PollVoteResult{}, ErrConflict
}

// AttachPoll creates a poll widget on the author's post. A post carries at
// most one widget.
func AttachPoll(ctx context.Context, postID, author primitive.ObjectID, question string, options []string, closesAt *time.Time) (*models.Widget, error) {
	if closesAt != nil && !closesAt.After(time.Now()) {
		return nil, fmt.Errorf("%w: closes_at must be in the future", ErrInvalidInput)
	}
	cleaned := make([]string, len(options))
	for i, o := range options {
		cleaned[i] = SanitizeText(o)
	}
	poll, err := NewPoll(SanitizeText(question), cleaned, closesAt)
	if err != nil {
		return nil, err
	}
	post, err := GetActivePost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Author != author {
		return nil, ErrForbidden
	}
	if post.Widget != nil {
		return nil, fmt.Errorf("%w: post already has a widget", ErrConflict)
	}

	w := &models.Widget{
		ID:        primitive.NewObjectID(),
		Post:      postID,
		Type:      models.WidgetTypePoll,
		Poll:      poll,
		CreatedAt: time.Now(),
	}
	_, err = database.DB.Collection(database.WidgetsCollection).InsertOne(ctx, w)
	if mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("%w: post already has a widget", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert widget: %w", err)
	}
	if _, err := database.DB.Collection(database.PostsCollection).UpdateOne(ctx,
		bson.M{"_id": postID}, bson.M{"$set": bson.M{"widget": w.ID}}); err != nil {
		// The unique post index would otherwise block every retry.
		if _, derr := database.DB.Collection(database.WidgetsCollection).DeleteOne(ctx, bson.M{"_id": w.ID}); derr != nil {
			zap.L().Error("failed to remove unlinked widget", zap.String("widget_id", w.ID.Hex()), zap.Error(derr))
		}
		return nil, fmt.Errorf("link widget: %w", err)
	}
	return w, nil
}
