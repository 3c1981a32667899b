package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes configures the indexes every collection relies on.
// Called on startup from main after Mongo has connected.
func EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		ProfilesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetName("uniq_user_id").SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName("uniq_username").SetUnique(true)},
			{
				Keys: bson.D{
					{Key: "username", Value: "text"},
					{Key: "display_name", Value: "text"},
					{Key: "bio", Value: "text"},
				},
				Options: options.Index().SetName("txt_profile"),
			},
		},
		PostsCollection: {
			{Keys: bson.D{{Key: "author", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_author_created")},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_status_created")},
			{Keys: bson.D{{Key: "tags", Value: 1}}, Options: options.Index().SetName("idx_tags")},
			{
				Keys:    bson.D{{Key: "content", Value: "text"}, {Key: "tags", Value: "text"}},
				Options: options.Index().SetName("txt_post"),
			},
		},
		CommentsCollection: {
			{Keys: bson.D{{Key: "post", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("idx_post_created")},
		},
		RepliesCollection: {
			{Keys: bson.D{{Key: "comment", Value: 1}, {Key: "created_at", Value: 1}}, Options: options.Index().SetName("idx_comment_created")},
		},
		WidgetsCollection: {
			{Keys: bson.D{{Key: "post", Value: 1}}, Options: options.Index().SetName("uniq_post").SetUnique(true)},
		},
		FollowsCollection: {
			{
				Keys:    bson.D{{Key: "follower", Value: 1}, {Key: "following", Value: 1}},
				Options: options.Index().SetName("uniq_follower_following").SetUnique(true),
			},
			{Keys: bson.D{{Key: "following", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_following_created")},
		},
		ReportsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_status_created")},
			{
				Keys: bson.D{
					{Key: "reporter", Value: 1},
					{Key: "target_type", Value: 1},
					{Key: "target_id", Value: 1},
					{Key: "status", Value: 1},
				},
				Options: options.Index().SetName("idx_reporter_target"),
			},
		},
		AdminActionsCollection: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_created")},
		},
		OrchestrationsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetName("uniq_name").SetUnique(true)},
		},
		PoliciesCollection: {
			{Keys: bson.D{{Key: "kind", Value: 1}}, Options: options.Index().SetName("uniq_kind").SetUnique(true)},
		},
		PartnersCollection: {
			{Keys: bson.D{{Key: "profile", Value: 1}}, Options: options.Index().SetName("uniq_profile").SetUnique(true)},
		},
		ImpressionsCollection: {
			{Keys: bson.D{{Key: "ad", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_ad_created")},
			{Keys: bson.D{{Key: "partner", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("idx_partner_created")},
		},
	}

	for name, models := range specs {
		if _, err := DB.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
