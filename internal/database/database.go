package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var Client *mongo.Client
var DB *mongo.Database

// Collection names.
const (
	ProfilesCollection       = "profiles"
	PostsCollection          = "posts"
	CommentsCollection       = "comments"
	RepliesCollection        = "replies"
	WidgetsCollection        = "widgets"
	FollowsCollection        = "follows"
	ReportsCollection        = "reports"
	FeedbacksCollection      = "feedbacks"
	AdminActionsCollection   = "admin_actions"
	OrchestrationsCollection = "orchestrations"
	PoliciesCollection       = "policies"
	PartnersCollection       = "partners"
	ExternalAdsCollection    = "external_ads"
	ImpressionsCollection    = "impressions"
)

const defaultDatabase = "agora"

func Connect(mongoURI string) error {
	// Atlas can be slow to select a server on cold start
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(mongoURI)
	clientOptions.SetServerSelectionTimeout(10 * time.Second)

	zap.L().Info("connecting to MongoDB")
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return err
	}

	Client = client
	DB = client.Database(databaseName(mongoURI))

	zap.L().Info("connected to MongoDB", zap.String("database", DB.Name()))
	return nil
}

// databaseName extracts the database from mongodb://host/<db>?opts, defaulting to "agora".
func databaseName(mongoURI string) string {
	parts := strings.Split(mongoURI, "/")
	if len(parts) > 3 {
		dbPart := strings.Split(parts[len(parts)-1], "?")[0]
		if dbPart != "" {
			return dbPart
		}
	}
	return defaultDatabase
}

func Disconnect() error {
	if Client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return Client.Disconnect(ctx)
}
