package handlers

import (
	"net/http"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/AnshRaj112/agora-backend/pkg/clientip"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SubmitFeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,min=10,max=2000"`
}

// SubmitFeedback stores feedback from anyone; signed-in users are linked.
func SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req SubmitFeedbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	text := services.SanitizeText(req.Feedback)
	if services.RuneLen(text) < 10 {
		writeError(w, http.StatusBadRequest, "Feedback must be at least 10 characters long")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	feedback := models.Feedback{
		ID:        primitive.NewObjectID(),
		CreatedAt: time.Now(),
		Feedback:  text,
		IPAddress: clientip.RealClientIP(r),
	}
	if viewer := viewerProfile(ctx, r); viewer != nil {
		feedback.Profile = &viewer.ID
	}

	if _, err := database.DB.Collection(database.FeedbacksCollection).InsertOne(ctx, feedback); err != nil {
		writeServiceError(w, r, err, "Failed to submit feedback")
		return
	}
	writeJSON(w, http.StatusCreated, "Feedback submitted successfully. Thank you!", nil)
}

// GetFeedbacks lists feedback newest first (admin only).
func GetFeedbacks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	coll := database.DB.Collection(database.FeedbacksCollection)
	total, err := coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch feedbacks")
		return
	}
	p := pagination(r)
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(p.Skip).
		SetLimit(p.Limit))
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch feedbacks")
		return
	}
	defer cursor.Close(ctx)

	feedbacks := []models.Feedback{}
	if err := cursor.All(ctx, &feedbacks); err != nil {
		writeServiceError(w, r, err, "Failed to fetch feedbacks")
		return
	}
	writeJSON(w, http.StatusOK, "", M{"feedbacks": feedbacks, "total": total})
}

// DeleteFeedback removes ?id= (admin only).
func DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(r.URL.Query().Get("id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid feedback id")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	res, err := database.DB.Collection(database.FeedbacksCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		writeServiceError(w, r, err, "Failed to delete feedback")
		return
	}
	if res.DeletedCount == 0 {
		writeError(w, http.StatusNotFound, "Feedback not found")
		return
	}
	writeJSON(w, http.StatusOK, "Feedback deleted", nil)
}

type CreateReportRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=post comment reply profile"`
	TargetID   string `json:"target_id" validate:"required,mongodb"`
	Reason     string `json:"reason" validate:"required,max=100"`
	Details    string `json:"details" validate:"max=1000"`
}

// CreateReport files a report against content or a profile.
func CreateReport(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	targetID, _ := parseObjectID(req.TargetID)

	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	report, err := services.CreateReport(ctx, me.ID, models.TargetType(req.TargetType), targetID, req.Reason, req.Details)
	if err != nil {
		writeServiceError(w, r, err, "Failed to submit report")
		return
	}
	writeJSON(w, http.StatusCreated, "Report submitted", M{"report": report})
}
