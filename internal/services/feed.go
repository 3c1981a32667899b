package services

import (
	"context"
	"fmt"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostQuery filters the public post listing.
type PostQuery struct {
	Author *primitive.ObjectID
	Tag    string
	Skip   int64
	Limit  int64
}

// ListPosts returns active posts newest first with the total match count.
func ListPosts(ctx context.Context, q PostQuery) ([]models.Post, int64, error) {
	filter := bson.M{"status": models.StatusActive}
	if q.Author != nil {
		filter["author"] = *q.Author
	}
	if q.Tag != "" {
		filter["tags"] = q.Tag
	}
	return findPage[models.Post](ctx, database.PostsCollection, filter, bson.D{{Key: "created_at", Value: -1}}, q.Skip, q.Limit)
}

// ListComments returns a post's active comments, oldest first.
func ListComments(ctx context.Context, post primitive.ObjectID, skip, limit int64) ([]models.Comment, int64, error) {
	return findPage[models.Comment](ctx, database.CommentsCollection,
		bson.M{"post": post, "status": models.StatusActive},
		bson.D{{Key: "created_at", Value: 1}}, skip, limit)
}

// ListReplies returns a comment's active replies, oldest first.
func ListReplies(ctx context.Context, comment primitive.ObjectID, skip, limit int64) ([]models.Reply, int64, error) {
	return findPage[models.Reply](ctx, database.RepliesCollection,
		bson.M{"comment": comment, "status": models.StatusActive},
		bson.D{{Key: "created_at", Value: 1}}, skip, limit)
}

func findPage[T any](ctx context.Context, collection string, filter bson.M, sort bson.D, skip, limit int64) ([]T, int64, error) {
	coll := database.DB.Collection(collection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", collection, err)
	}
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(sort).SetSkip(skip).SetLimit(limit))
	if err != nil {
		return nil, 0, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Feed returns active posts by the viewer and everyone the viewer follows,
// newest first. Followed ids are resolved inside the pipeline.
func Feed(ctx context.Context, viewer primitive.ObjectID, skip, limit int64) ([]models.Post, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"follower": viewer}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "authors": bson.M{"$push": "$following"}}}},
		{{Key: "$unionWith", Value: bson.M{
			"coll":     database.ProfilesCollection,
			"pipeline": bson.A{bson.M{"$match": bson.M{"_id": viewer}}, bson.M{"$project": bson.M{"_id": 0, "authors": bson.A{"$_id"}}}},
		}}},
		{{Key: "$unwind", Value: "$authors"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.PostsCollection,
			"localField":   "authors",
			"foreignField": "author",
			"as":           "post",
		}}},
		{{Key: "$unwind", Value: "$post"}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$post"}}},
		{{Key: "$match", Value: bson.M{"status": models.StatusActive}}},
		{{Key: "$sort", Value: bson.M{"created_at": -1}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
	}
	cursor, err := database.DB.Collection(database.FollowsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// BookmarkedPosts loads the active posts among ids, keeping bookmark order.
func BookmarkedPosts(ctx context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	if len(ids) == 0 {
		return []models.Post{}, nil
	}
	cursor, err := database.DB.Collection(database.PostsCollection).Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "status": models.StatusActive})
	if err != nil {
		return nil, fmt.Errorf("bookmarks: %w", err)
	}
	defer cursor.Close(ctx)

	var found []models.Post
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	posts := make([]models.Post, 0, len(found))
	for i := len(ids) - 1; i >= 0; i-- {
		if p, ok := byID[ids[i]]; ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// SearchPosts runs a $text query over active posts, best match first.
func SearchPosts(ctx context.Context, q string, limit int64) ([]models.Post, error) {
	return textSearch[models.Post](ctx, database.PostsCollection,
		bson.M{"$text": bson.M{"$search": q}, "status": models.StatusActive}, limit)
}

// SearchProfiles runs a $text query over usernames, display names and bios.
func SearchProfiles(ctx context.Context, q string, limit int64) ([]models.Profile, error) {
	return textSearch[models.Profile](ctx, database.ProfilesCollection,
		bson.M{"$text": bson.M{"$search": q}, "is_suspended": bson.M{"$ne": true}}, limit)
}

func textSearch[T any](ctx context.Context, collection string, filter bson.M, limit int64) ([]T, error) {
	score := bson.M{"score": bson.M{"$meta": "textScore"}}
	opts := options.Find().
		SetProjection(score).
		SetSort(bson.D{{Key: "score", Value: bson.M{"$meta": "textScore"}}}).
		SetLimit(limit)
	cursor, err := database.DB.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
