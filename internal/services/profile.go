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
)

// CreateProfile inserts the public profile for a freshly created identity.
func CreateProfile(ctx context.Context, user *models.User, displayName string) (*models.Profile, error) {
	now := time.Now()
	if strings.TrimSpace(displayName) == "" {
		displayName = user.Username
	}
	p := &models.Profile{
		ID:          primitive.NewObjectID(),
		UserID:      user.ID,
		Username:    user.Username,
		DisplayName: strings.TrimSpace(displayName),
		Bookmarks:   []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := database.DB.Collection(database.ProfilesCollection).InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("%w: profile already exists", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return p, nil
}

// GetProfileByUserID returns the profile owned by an identity.
func GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	return findProfile(ctx, bson.M{"user_id": userID})
}

// GetProfileByID returns a profile by ObjectID.
func GetProfileByID(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	return findProfile(ctx, bson.M{"_id": id})
}

// LookupProfile accepts either a profile id or a username.
func LookupProfile(ctx context.Context, ref string) (*models.Profile, error) {
	if id, err := primitive.ObjectIDFromHex(ref); err == nil {
		var cached models.Profile
		if Cache.Get(ctx, CacheKey("profile", id.Hex()), &cached) {
			return &cached, nil
		}
		p, err := GetProfileByID(ctx, id)
		if err == nil {
			Cache.Set(ctx, CacheKey("profile", id.Hex()), p)
		}
		return p, err
	}
	return findProfile(ctx, bson.M{"username": strings.ToLower(strings.TrimSpace(ref))})
}

func findProfile(ctx context.Context, filter bson.M) (*models.Profile, error) {
	var p models.Profile
	err := database.DB.Collection(database.ProfilesCollection).FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

// ProfilesByIDs loads profiles for the given ids, preserving the input order.
func ProfilesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	cursor, err := database.DB.Collection(database.ProfilesCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []models.Profile
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Profile, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	ordered := make([]models.Profile, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// ProfileUpdate carries the self-editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
}

// UpdateProfile applies changes and returns the updated profile.
func UpdateProfile(ctx context.Context, id primitive.ObjectID, u ProfileUpdate) (*models.Profile, error) {
	set := bson.M{"updated_at": time.Now()}
	if u.DisplayName != nil {
		set["display_name"] = strings.TrimSpace(*u.DisplayName)
	}
	if u.Bio != nil {
		set["bio"] = strings.TrimSpace(*u.Bio)
	}
	if u.AvatarURL != nil {
		set["avatar_url"] = strings.TrimSpace(*u.AvatarURL)
	}
	res, err := database.DB.Collection(database.ProfilesCollection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	InvalidateProfileCache(ctx, id)
	return GetProfileByID(ctx, id)
}

// CountActivePosts counts a profile's visible posts.
func CountActivePosts(ctx context.Context, author primitive.ObjectID) (int64, error) {
	return database.DB.Collection(database.PostsCollection).CountDocuments(ctx, bson.M{
		"author": author,
		"status": models.StatusActive,
	})
}
