package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/AnshRaj112/agora-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultRevenueShare = 0.5
	MaxAdSample         = 10
	MaxStatsDays        = 90
)

// ApplyPartner registers a profile for the partner program. Payout details are
// sealed before storage.
func ApplyPartner(ctx context.Context, c *utils.Cipher, profile primitive.ObjectID, website, payoutDetails string) (*models.Partner, error) {
	if c == nil {
		return nil, utils.ErrMissingKey
	}
	sealed, err := c.Encrypt(payoutDetails)
	if err != nil {
		return nil, fmt.Errorf("encrypt payout details: %w", err)
	}
	now := time.Now()
	p := &models.Partner{
		ID:                     primitive.NewObjectID(),
		Profile:                profile,
		Status:                 models.PartnerPending,
		Website:                website,
		PayoutDetailsEncrypted: sealed,
		RevenueShare:           DefaultRevenueShare,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	_, err = database.DB.Collection(database.PartnersCollection).InsertOne(ctx, p)
	if mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("%w: already applied", ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("insert partner: %w", err)
	}
	return p, nil
}

// PartnerByProfile returns the partner record owned by a profile.
func PartnerByProfile(ctx context.Context, profile primitive.ObjectID) (*models.Partner, error) {
	return findPartner(ctx, bson.M{"profile": profile})
}

func findPartner(ctx context.Context, filter bson.M) (*models.Partner, error) {
	var p models.Partner
	err := database.DB.Collection(database.PartnersCollection).FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find partner: %w", err)
	}
	return &p, nil
}

// SetPartnerStatus moves a partner between program states. Suspending or
// rejecting a partner also deactivates its ads.
func SetPartnerStatus(ctx context.Context, id primitive.ObjectID, status models.PartnerStatus) (*models.Partner, error) {
	switch status {
	case models.PartnerApproved, models.PartnerRejected, models.PartnerSuspended:
	default:
		return nil, fmt.Errorf("%w: unsupported partner status %q", ErrInvalidInput, status)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Partner
	err := database.DB.Collection(database.PartnersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}},
		opts,
	).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update partner: %w", err)
	}
	if status != models.PartnerApproved {
		if _, err := database.DB.Collection(database.ExternalAdsCollection).UpdateMany(ctx,
			bson.M{"partner": id, "active": true},
			bson.M{"$set": bson.M{"active": false}},
		); err != nil {
			return nil, fmt.Errorf("deactivate ads: %w", err)
		}
	}
	return &p, nil
}

// CreateAd registers an ad for an approved partner.
func CreateAd(ctx context.Context, partnerID primitive.ObjectID, title, imageURL, targetURL string) (*models.ExternalAd, error) {
	p, err := findPartner(ctx, bson.M{"_id": partnerID})
	if err != nil {
		return nil, err
	}
	if p.Status != models.PartnerApproved {
		return nil, fmt.Errorf("%w: partner is not approved", ErrForbidden)
	}
	ad := &models.ExternalAd{
		ID:        primitive.NewObjectID(),
		Partner:   partnerID,
		Title:     SanitizeText(title),
		ImageURL:  imageURL,
		TargetURL: targetURL,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if _, err := database.DB.Collection(database.ExternalAdsCollection).InsertOne(ctx, ad); err != nil {
		return nil, fmt.Errorf("insert ad: %w", err)
	}
	return ad, nil
}

// SampleAds returns up to count random active ads.
func SampleAds(ctx context.Context, count int) ([]models.ExternalAd, error) {
	if count <= 0 {
		count = 1
	}
	if count > MaxAdSample {
		count = MaxAdSample
	}
	cursor, err := database.DB.Collection(database.ExternalAdsCollection).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"active": true}}},
		{{Key: "$sample", Value: bson.M{"size": count}}},
	})
	if err != nil {
		return nil, fmt.Errorf("sample ads: %w", err)
	}
	defer cursor.Close(ctx)

	ads := []models.ExternalAd{}
	if err := cursor.All(ctx, &ads); err != nil {
		return nil, err
	}
	return ads, nil
}

// HashIP keys viewer addresses without storing them.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte("agora-ad:" + ip))
	return hex.EncodeToString(sum[:16])
}

// RecordAdEvent logs an impression or click and bumps the ad's counter.
func RecordAdEvent(ctx context.Context, adID primitive.ObjectID, kind models.ImpressionKind, viewer *primitive.ObjectID, ip string) error {
	field := "impression_count"
	switch kind {
	case models.KindImpression:
	case models.KindClick:
		field = "click_count"
	default:
		return fmt.Errorf("%w: unknown event kind %q", ErrInvalidInput, kind)
	}

	var ad models.ExternalAd
	err := database.DB.Collection(database.ExternalAdsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": adID, "active": true},
		bson.M{"$inc": bson.M{field: 1}},
	).Decode(&ad)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("count ad %s: %w", kind, err)
	}

	ev := models.Impression{
		ID:        primitive.NewObjectID(),
		Ad:        adID,
		Partner:   ad.Partner,
		Viewer:    viewer,
		Kind:      kind,
		IPHash:    HashIP(ip),
		CreatedAt: time.Now(),
	}
	if _, err := database.DB.Collection(database.ImpressionsCollection).InsertOne(ctx, ev); err != nil {
		return fmt.Errorf("insert %s: %w", kind, err)
	}
	return nil
}

// DailyStat is one day of a partner's ad activity.
type DailyStat struct {
	Day         string `bson:"_id" json:"day"`
	Impressions int64  `bson:"impressions" json:"impressions"`
	Clicks      int64  `bson:"clicks" json:"clicks"`
}

// PartnerStats aggregates impressions and clicks per UTC day over the last days.
func PartnerStats(ctx context.Context, partnerID primitive.ObjectID, days int) ([]DailyStat, error) {
	if days <= 0 {
		days = 30
	}
	if days > MaxStatsDays {
		days = MaxStatsDays
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	cursor, err := database.DB.Collection(database.ImpressionsCollection).Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"partner": partnerID, "created_at": bson.M{"$gte": since}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$created_at"}},
			"impressions": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$kind", models.KindImpression}}, 1, 0},
			}},
			"clicks": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$kind", models.KindClick}}, 1, 0},
			}},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("partner stats: %w", err)
	}
	defer cursor.Close(ctx)

	stats := []DailyStat{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}
