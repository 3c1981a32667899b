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

const (
	MaxPostLength    = 5000
	MaxCommentLength = 2000
	MaxTags          = 10
	MaxMedia         = 4
)

// CreatePost sanitizes and stores a post, filing an automatic report when the
// text trips the keyword filter.
func CreatePost(ctx context.Context, author primitive.ObjectID, content string, media, tags []string) (*models.Post, error) {
	content = SanitizeText(content)
	if n := RuneLen(content); n == 0 || n > MaxPostLength {
		return nil, fmt.Errorf("%w: content must be 1-%d characters", ErrInvalidInput, MaxPostLength)
	}
	tags = SanitizeTags(tags)
	if len(tags) > MaxTags || len(media) > MaxMedia {
		return nil, fmt.Errorf("%w: too many tags or media items", ErrInvalidInput)
	}

	now := time.Now()
	post := &models.Post{
		ID:        primitive.NewObjectID(),
		Author:    author,
		Content:   content,
		Media:     media,
		Tags:      tags,
		Upvotes:   []primitive.ObjectID{},
		Reposts:   []primitive.ObjectID{},
		Status:    models.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := database.DB.Collection(database.PostsCollection).InsertOne(ctx, post); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	AutoReport(ctx, models.TargetPost, post.ID, ScreenContent(content))
	return post, nil
}

// GetActivePost returns a post only while it is visible.
func GetActivePost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	err := database.DB.Collection(database.PostsCollection).
		FindOne(ctx, bson.M{"_id": id, "status": models.StatusActive}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &p, nil
}

// UpdatePost lets the author change content and tags. nil leaves a field as is.
func UpdatePost(ctx context.Context, id, author primitive.ObjectID, content *string, tags []string) (*models.Post, error) {
	post, err := GetActivePost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.Author != author {
		return nil, ErrForbidden
	}

	set := bson.M{"updated_at": time.Now()}
	var screened ScreenResult
	if content != nil {
		c := SanitizeText(*content)
		if n := RuneLen(c); n == 0 || n > MaxPostLength {
			return nil, fmt.Errorf("%w: content must be 1-%d characters", ErrInvalidInput, MaxPostLength)
		}
		set["content"] = c
		screened = ScreenContent(c)
	}
	if tags != nil {
		t := SanitizeTags(tags)
		if len(t) > MaxTags {
			return nil, fmt.Errorf("%w: too many tags", ErrInvalidInput)
		}
		set["tags"] = t
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Post
	err = database.DB.Collection(database.PostsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id, "author": author, "status": models.StatusActive},
		bson.M{"$set": set}, opts,
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	AutoReport(ctx, models.TargetPost, id, screened)
	return &updated, nil
}

// DeletePost soft-deletes a post on behalf of its author.
func DeletePost(ctx context.Context, id, author primitive.ObjectID) error {
	return setStatus(ctx, database.PostsCollection, bson.M{"_id": id, "author": author}, models.StatusDeleted)
}

// setStatus moves an active document to status. A miss is ErrNotFound when the
// document is absent or ErrForbidden when it exists but the filter excluded it.
func setStatus(ctx context.Context, collection string, filter bson.M, status models.ContentStatus) error {
	coll := database.DB.Collection(collection)
	f := bson.M{"status": models.StatusActive}
	for k, v := range filter {
		f[k] = v
	}
	res, err := coll.UpdateOne(ctx, f, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("set %s status: %w", collection, err)
	}
	if res.ModifiedCount == 1 {
		return nil
	}
	n, err := coll.CountDocuments(ctx, bson.M{"_id": filter["_id"], "status": models.StatusActive})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrForbidden
}

// CreateComment adds a comment to an active post and bumps its comment count.
func CreateComment(ctx context.Context, postID, author primitive.ObjectID, content string) (*models.Comment, error) {
	content = SanitizeText(content)
	if n := RuneLen(content); n == 0 || n > MaxCommentLength {
		return nil, fmt.Errorf("%w: content must be 1-%d characters", ErrInvalidInput, MaxCommentLength)
	}
	if err := incCounter(ctx, database.PostsCollection, postID, "comment_count", 1); err != nil {
		return nil, err
	}
	c := &models.Comment{
		ID:        primitive.NewObjectID(),
		Post:      postID,
		Author:    author,
		Content:   content,
		Upvotes:   []primitive.ObjectID{},
		Status:    models.StatusActive,
		CreatedAt: time.Now(),
	}
	if _, err := database.DB.Collection(database.CommentsCollection).InsertOne(ctx, c); err != nil {
		_ = incCounter(ctx, database.PostsCollection, postID, "comment_count", -1)
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	AutoReport(ctx, models.TargetComment, c.ID, ScreenContent(content))
	return c, nil
}

// DeleteComment soft-deletes the author's comment and decrements the post count.
func DeleteComment(ctx context.Context, id, author primitive.ObjectID) error {
	c, err := findComment(ctx, id)
	if err != nil {
		return err
	}
	if err := setStatus(ctx, database.CommentsCollection, bson.M{"_id": id, "author": author}, models.StatusDeleted); err != nil {
		return err
	}
	return incCounter(ctx, database.PostsCollection, c.Post, "comment_count", -1)
}

// CreateReply adds a reply to an active comment and bumps its reply count.
func CreateReply(ctx context.Context, commentID, author primitive.ObjectID, content string) (*models.Reply, error) {
	content = SanitizeText(content)
	if n := RuneLen(content); n == 0 || n > MaxCommentLength {
		return nil, fmt.Errorf("%w: content must be 1-%d characters", ErrInvalidInput, MaxCommentLength)
	}
	parent, err := findComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := incCounter(ctx, database.CommentsCollection, commentID, "reply_count", 1); err != nil {
		return nil, err
	}
	r := &models.Reply{
		ID:        primitive.NewObjectID(),
		Comment:   commentID,
		Post:      parent.Post,
		Author:    author,
		Content:   content,
		Status:    models.StatusActive,
		CreatedAt: time.Now(),
	}
	if _, err := database.DB.Collection(database.RepliesCollection).InsertOne(ctx, r); err != nil {
		_ = incCounter(ctx, database.CommentsCollection, commentID, "reply_count", -1)
		return nil, fmt.Errorf("insert reply: %w", err)
	}
	AutoReport(ctx, models.TargetReply, r.ID, ScreenContent(content))
	return r, nil
}

// DeleteReply soft-deletes the author's reply and decrements the comment count.
func DeleteReply(ctx context.Context, id, author primitive.ObjectID) error {
	var r models.Reply
	err := database.DB.Collection(database.RepliesCollection).
		FindOne(ctx, bson.M{"_id": id, "status": models.StatusActive}).Decode(&r)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find reply: %w", err)
	}
	if err := setStatus(ctx, database.RepliesCollection, bson.M{"_id": id, "author": author}, models.StatusDeleted); err != nil {
		return err
	}
	return incCounter(ctx, database.CommentsCollection, r.Comment, "reply_count", -1)
}

func findComment(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	err := database.DB.Collection(database.CommentsCollection).
		FindOne(ctx, bson.M{"_id": id, "status": models.StatusActive}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return &c, nil
}

// incCounter adjusts a counter on an active document. Decrements never take
// the counter below zero.
func incCounter(ctx context.Context, collection string, id primitive.ObjectID, field string, delta int) error {
	filter := bson.M{"_id": id, "status": models.StatusActive}
	if delta < 0 {
		filter[field] = bson.M{"$gt": 0}
	}
	res, err := database.DB.Collection(collection).UpdateOne(ctx, filter, bson.M{"$inc": bson.M{field: delta}})
	if err != nil {
		return fmt.Errorf("adjust %s.%s: %w", collection, field, err)
	}
	if delta > 0 && res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
