package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MembershipToggle describes an array of ids on a document whose membership flips
// on each request (bookmarks, reposts, upvotes). CountField, if set, tracks the
// array length.
type MembershipToggle struct {
	Collection *mongo.Collection
	ID         primitive.ObjectID
	ArrayField string
	CountField string
	// Extra narrows which documents may be toggled (e.g. only active posts).
	Extra bson.M
}

// ToggleResult is the state after a toggle.
type ToggleResult struct {
	Added bool
	Count int64
}

// Toggle removes member if present, otherwise adds it. Each branch is a single
// atomic update whose filter asserts the current membership, so concurrent
// toggles by the same member cannot drift the counter.
func (t MembershipToggle) Toggle(ctx context.Context, member primitive.ObjectID) (ToggleResult, error) {
	removed, count, err := t.apply(ctx, member, false)
	if err != nil {
		return ToggleResult{}, err
	}
	if removed {
		return ToggleResult{Added: false, Count: count}, nil
	}

	added, count, err := t.apply(ctx, member, true)
	if err != nil {
		return ToggleResult{}, err
	}
	if added {
		return ToggleResult{Added: true, Count: count}, nil
	}

	// Neither branch matched: the document is gone, or another request flipped
	// membership between our two updates.
	n, err := t.Collection.CountDocuments(ctx, t.baseFilter())
	if err != nil {
		return ToggleResult{}, fmt.Errorf("toggle %s: %w", t.ArrayField, err)
	}
	if n == 0 {
		return ToggleResult{}, ErrNotFound
	}
	return ToggleResult{}, ErrConflict
}

func (t MembershipToggle) baseFilter() bson.M {
	filter := bson.M{"_id": t.ID}
	for k, v := range t.Extra {
		filter[k] = v
	}
	return filter
}

func (t MembershipToggle) apply(ctx context.Context, member primitive.ObjectID, add bool) (bool, int64, error) {
	filter := t.baseFilter()
	var update bson.M
	delta := -1
	if add {
		filter[t.ArrayField] = bson.M{"$ne": member}
		update = bson.M{"$addToSet": bson.M{t.ArrayField: member}}
		delta = 1
	} else {
		filter[t.ArrayField] = member
		update = bson.M{"$pull": bson.M{t.ArrayField: member}}
	}
	projection := bson.M{"_id": 1}
	if t.CountField != "" {
		update["$inc"] = bson.M{t.CountField: delta}
		projection = bson.M{t.CountField: 1}
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(projection)

	var doc bson.M
	err := t.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("toggle %s: %w", t.ArrayField, err)
	}
	if t.CountField == "" {
		return true, 0, nil
	}
	return true, asInt64(doc[t.CountField]), nil
}

// asInt64 reads any decoded BSON number as int64; missing or non-numeric values are 0.
func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	}
	return 0
}
