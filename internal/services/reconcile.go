package services

import (
	"context"
	"fmt"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ReconcileCounters recomputes every denormalized counter from the documents it
// summarizes. Each pass is a single aggregation that $merges back into its source
// collection, so the work stays inside MongoDB.
func ReconcileCounters(ctx context.Context) error {
	passes := []struct {
		collection string
		pipeline   mongo.Pipeline
	}{
		{database.ProfilesCollection, followCountsPipeline()},
		{database.PostsCollection, postCountsPipeline()},
		{database.CommentsCollection, commentCountsPipeline()},
	}

	for _, p := range passes {
		cursor, err := database.DB.Collection(p.collection).Aggregate(ctx, p.pipeline)
		if err != nil {
			return fmt.Errorf("reconcile %s: %w", p.collection, err)
		}
		cursor.Close(ctx)
	}
	// Cached profile views carry the old follower counts.
	if err := Cache.DeletePrefix(ctx, "profile:"); err != nil {
		zap.L().Warn("profile cache not evicted after reconcile", zap.Error(err))
	}
	return nil
}

func mergeInto(collection string) bson.D {
	return bson.D{{Key: "$merge", Value: bson.M{
		"into":           collection,
		"on":             "_id",
		"whenMatched":    "merge",
		"whenNotMatched": "discard",
	}}}
}

func sizeOf(field string) bson.M {
	return bson.M{"$size": bson.M{"$ifNull": bson.A{"$" + field, bson.A{}}}}
}

func followCountsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         database.FollowsCollection,
			"localField":   "_id",
			"foreignField": "following",
			"as":           "_followers",
		}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.FollowsCollection,
			"localField":   "_id",
			"foreignField": "follower",
			"as":           "_following",
		}}},
		{{Key: "$project", Value: bson.M{
			"follower_count":  sizeOf("_followers"),
			"following_count": sizeOf("_following"),
		}}},
		mergeInto(database.ProfilesCollection),
	}
}

func postCountsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from": database.CommentsCollection,
			"let":  bson.M{"post_id": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$post", "$$post_id"}},
					bson.M{"$eq": bson.A{"$status", string(models.StatusActive)}},
				}}}},
				bson.M{"$count": "n"},
			},
			"as": "_comments",
		}}},
		{{Key: "$project", Value: bson.M{
			"upvote_count":  sizeOf("upvotes"),
			"repost_count":  sizeOf("reposts"),
			"comment_count": bson.M{"$ifNull": bson.A{bson.M{"$first": "$_comments.n"}, 0}},
		}}},
		mergeInto(database.PostsCollection),
	}
}

func commentCountsPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from": database.RepliesCollection,
			"let":  bson.M{"comment_id": "$_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$comment", "$$comment_id"}},
					bson.M{"$eq": bson.A{"$status", string(models.StatusActive)}},
				}}}},
				bson.M{"$count": "n"},
			},
			"as": "_replies",
		}}},
		{{Key: "$project", Value: bson.M{
			"upvote_count": sizeOf("upvotes"),
			"reply_count":  bson.M{"$ifNull": bson.A{bson.M{"$first": "$_replies.n"}, 0}},
		}}},
		mergeInto(database.CommentsCollection),
	}
}
