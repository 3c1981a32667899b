package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FollowResult is the relationship state after a follow toggle.
type FollowResult struct {
	Following     bool  `json:"following"`
	FollowerCount int64 `json:"follower_count"`
}

// ToggleFollow creates or removes the follower -> following relationship and
// adjusts both profiles' counters. The unique (follower, following) index is
// what keeps a double insert from double counting.
func ToggleFollow(ctx context.Context, follower, following primitive.ObjectID) (FollowResult, error) {
	if follower == following {
		return FollowResult{}, ErrSelfFollow
	}

	profiles := database.DB.Collection(database.ProfilesCollection)
	follows := database.DB.Collection(database.FollowsCollection)

	n, err := profiles.CountDocuments(ctx, bson.M{"_id": following})
	if err != nil {
		return FollowResult{}, fmt.Errorf("lookup followee: %w", err)
	}
	if n == 0 {
		return FollowResult{}, ErrNotFound
	}

	del, err := follows.DeleteOne(ctx, bson.M{"follower": follower, "following": following})
	if err != nil {
		return FollowResult{}, fmt.Errorf("unfollow: %w", err)
	}
	if del.DeletedCount == 1 {
		count, err := adjustFollowCounts(ctx, follower, following, -1)
		if err != nil {
			return FollowResult{}, err
		}
		InvalidateProfileCache(ctx, follower, following)
		return FollowResult{Following: false, FollowerCount: count}, nil
	}

	_, err = follows.InsertOne(ctx, models.Follow{
		ID:        primitive.NewObjectID(),
		Follower:  follower,
		Following: following,
		CreatedAt: time.Now(),
	})
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent request already created it and will adjust the counters.
		count, err := followerCount(ctx, following)
		return FollowResult{Following: true, FollowerCount: count}, err
	}
	if err != nil {
		return FollowResult{}, fmt.Errorf("follow: %w", err)
	}

	count, err := adjustFollowCounts(ctx, follower, following, 1)
	if err != nil {
		return FollowResult{}, err
	}
	InvalidateProfileCache(ctx, follower, following)
	return FollowResult{Following: true, FollowerCount: count}, nil
}

// adjustFollowCounts moves following_count on the follower and follower_count on
// the followee by delta, never below zero, and returns the followee's new count.
func adjustFollowCounts(ctx context.Context, follower, following primitive.ObjectID, delta int) (int64, error) {
	profiles := database.DB.Collection(database.ProfilesCollection)

	followerFilter := bson.M{"_id": follower}
	followingFilter := bson.M{"_id": following}
	if delta < 0 {
		followerFilter["following_count"] = bson.M{"$gt": 0}
		followingFilter["follower_count"] = bson.M{"$gt": 0}
	}

	if _, err := profiles.UpdateOne(ctx, followerFilter, bson.M{"$inc": bson.M{"following_count": delta}}); err != nil {
		return 0, fmt.Errorf("update following_count: %w", err)
	}

	var updated models.Profile
	err := profiles.FindOneAndUpdate(ctx, followingFilter,
		bson.M{"$inc": bson.M{"follower_count": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetProjection(bson.M{"follower_count": 1}),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("update follower_count: %w", err)
	}
	return updated.FollowerCount, nil
}

func followerCount(ctx context.Context, id primitive.ObjectID) (int64, error) {
	var p models.Profile
	err := database.DB.Collection(database.ProfilesCollection).
		FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"follower_count": 1})).
		Decode(&p)
	if err != nil {
		return 0, fmt.Errorf("read follower_count: %w", err)
	}
	return p.FollowerCount, nil
}

// IsFollowing reports whether follower follows following.
func IsFollowing(ctx context.Context, follower, following primitive.ObjectID) (bool, error) {
	n, err := database.DB.Collection(database.FollowsCollection).
		CountDocuments(ctx, bson.M{"follower": follower, "following": following}, options.Count().SetLimit(1))
	return n > 0, err
}

// FollowIDs lists profile ids on one side of the relationship, newest first.
// With followers=true it returns who follows profile; otherwise whom profile follows.
func FollowIDs(ctx context.Context, profile primitive.ObjectID, followers bool, skip, limit int64) ([]primitive.ObjectID, int64, error) {
	coll := database.DB.Collection(database.FollowsCollection)
	filter := bson.M{"follower": profile}
	if followers {
		filter = bson.M{"following": profile}
	}

	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := coll.Find(ctx, filter, options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(skip).
		SetLimit(limit))
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var rows []models.Follow
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, 0, err
	}
	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, f := range rows {
		if followers {
			ids = append(ids, f.Follower)
		} else {
			ids = append(ids, f.Following)
		}
	}
	return ids, total, nil
}
