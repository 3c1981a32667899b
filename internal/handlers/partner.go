package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/AnshRaj112/agora-backend/pkg/clientip"
	"github.com/AnshRaj112/agora-backend/pkg/utils"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var payoutCipher *utils.Cipher

// InitPayoutCipher loads the key used to seal partner payout details.
func InitPayoutCipher(keyBase64 string) error {
	c, err := utils.NewCipher(keyBase64)
	if err != nil {
		return err
	}
	payoutCipher = c
	return nil
}

type PartnerApplyRequest struct {
	Website       string `json:"website" validate:"omitempty,http_url,max=300"`
	PayoutDetails string `json:"payout_details" validate:"required,max=500"`
}

// ApplyPartner enrolls the signed-in profile in the partner program.
func ApplyPartner(w http.ResponseWriter, r *http.Request) {
	var req PartnerApplyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if payoutCipher == nil {
		writeError(w, http.StatusServiceUnavailable, "Partner applications are unavailable")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	partner, err := services.ApplyPartner(ctx, payoutCipher, me.ID, req.Website, req.PayoutDetails)
	if err != nil {
		writeServiceError(w, r, err, "Failed to submit application")
		return
	}
	writeJSON(w, http.StatusCreated, "Application submitted", M{"partner": partner})
}

// GetMyPartner returns the signed-in profile's partner record.
func GetMyPartner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	partner, err := services.PartnerByProfile(ctx, me.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load partner")
		return
	}
	writeJSON(w, http.StatusOK, "", M{"partner": partner})
}

// GetPartnerStats returns per-day impressions and clicks for ?days=.
func GetPartnerStats(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	partner, err := services.PartnerByProfile(ctx, me.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load stats")
		return
	}
	stats, err := services.PartnerStats(ctx, partner.ID, days)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, "", M{"stats": stats})
}

type PartnerStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected suspended"`
}

// SetPartnerStatus approves, rejects or suspends a partner (admin only).
func SetPartnerStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid partner id")
		return
	}
	var req PartnerStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	partner, err := services.SetPartnerStatus(ctx, id, models.PartnerStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err, "Failed to update partner")
		return
	}
	zap.L().Info("partner status changed", zap.String("admin_id", adminID(r)),
		zap.String("partner_id", id.Hex()), zap.String("status", req.Status))
	writeJSON(w, http.StatusOK, "Partner updated", M{"partner": partner})
}

type CreateAdRequest struct {
	PartnerID string `json:"partner_id" validate:"required,mongodb"`
	Title     string `json:"title" validate:"required,max=120"`
	ImageURL  string `json:"image_url" validate:"required,http_url"`
	TargetURL string `json:"target_url" validate:"required,http_url"`
}

// CreateAd registers an ad for an approved partner (admin only).
func CreateAd(w http.ResponseWriter, r *http.Request) {
	var req CreateAdRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	partnerID, _ := parseObjectID(req.PartnerID)

	ctx, cancel := requestContext(r)
	defer cancel()

	ad, err := services.CreateAd(ctx, partnerID, req.Title, req.ImageURL, req.TargetURL)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create ad")
		return
	}
	writeJSON(w, http.StatusCreated, "Ad created", M{"ad": ad})
}

// GetAds returns a random sample of active ads.
func GetAds(w http.ResponseWriter, r *http.Request) {
	count, _ := strconv.Atoi(r.URL.Query().Get("count"))

	ctx, cancel := requestContext(r)
	defer cancel()

	ads, err := services.SampleAds(ctx, count)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load ads")
		return
	}
	writeJSON(w, http.StatusOK, "", M{"ads": ads})
}

// RecordImpression counts an ad view.
func RecordImpression(w http.ResponseWriter, r *http.Request) {
	recordAdEvent(w, r, models.KindImpression)
}

// RecordClick counts an ad click.
func RecordClick(w http.ResponseWriter, r *http.Request) {
	recordAdEvent(w, r, models.KindClick)
}

func recordAdEvent(w http.ResponseWriter, r *http.Request, kind models.ImpressionKind) {
	id, ok := parseObjectID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ad id")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	var viewerID *primitive.ObjectID
	if viewer := viewerProfile(ctx, r); viewer != nil {
		viewerID = &viewer.ID
	}

	err := services.RecordAdEvent(ctx, id, kind, viewerID, clientip.RealClientIP(r))
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Ad not found")
		return
	}
	if err != nil {
		writeServiceError(w, r, err, "Failed to record event")
		return
	}
	writeJSON(w, http.StatusCreated, "", nil)
}
