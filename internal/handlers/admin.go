package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/middleware"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

func adminID(r *http.Request) string {
	id, _ := middleware.AdminIDFrom(r.Context())
	return id.String()
}

// ListReports pages through reports, pending by default.
func ListReports(w http.ResponseWriter, r *http.Request) {
	status := models.ReportStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = models.ReportPending
	}
	switch status {
	case models.ReportPending, models.ReportResolved, models.ReportDismissed:
	default:
		writeError(w, http.StatusBadRequest, "status must be pending, resolved or dismissed")
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	coll := database.DB.Collection(database.ReportsCollection)
	filter := bson.M{"status": status}
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch reports")
		return
	}
	p := pagination(r)
	cursor, err := coll.Find(ctx, filter, options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(p.Skip).
		SetLimit(p.Limit))
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch reports")
		return
	}
	defer cursor.Close(ctx)

	reports := []models.Report{}
	if err := cursor.All(ctx, &reports); err != nil {
		writeServiceError(w, r, err, "Failed to fetch reports")
		return
	}
	writeJSON(w, http.StatusOK, "", M{
		"reports":  reports,
		"total":    total,
		"has_more": p.Skip+int64(len(reports)) < total,
	})
}

type CloseReportRequest struct {
	Status string `json:"status" validate:"required,oneof=resolved dismissed"`
}

// CloseReport resolves or dismisses a pending report.
func CloseReport(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid report id")
		return
	}
	var req CloseReportRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	report, err := services.CloseReport(ctx, adminID(r), id, models.ReportStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err, "Failed to update report")
		return
	}
	writeJSON(w, http.StatusOK, "Report updated", M{"report": report})
}

type AdminActionRequest struct {
	Action   string `json:"action" validate:"required"`
	TargetID string `json:"target_id" validate:"required,mongodb"`
	Reason   string `json:"reason" validate:"max=500"`
	ReportID string `json:"report_id" validate:"omitempty,mongodb"`
}

// CreateAdminAction applies a moderation action and records it.
func CreateAdminAction(w http.ResponseWriter, r *http.Request) {
	var req AdminActionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	action := models.AdminActionType(req.Action)
	if !services.ValidAdminAction(action) {
		writeError(w, http.StatusBadRequest, "Unknown action")
		return
	}
	targetID, _ := parseObjectID(req.TargetID)
	var report *primitive.ObjectID
	if req.ReportID != "" {
		id, _ := parseObjectID(req.ReportID)
		report = &id
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	a, err := services.ApplyAdminAction(ctx, adminID(r), action, targetID, req.Reason, report)
	if err != nil {
		writeServiceError(w, r, err, "Failed to apply action")
		return
	}
	zap.L().Info("admin action applied",
		zap.String("admin_id", a.AdminID),
		zap.String("action", string(a.Action)),
		zap.String("target_id", a.TargetID.Hex()))
	writeJSON(w, http.StatusCreated, "Action applied", M{"action": a})
}

// ListAdminActions returns the audit log newest first.
func ListAdminActions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	filter := bson.M{}
	if t := r.URL.Query().Get("target_id"); t != "" {
		id, ok := parseObjectID(t)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid target id")
			return
		}
		filter["target_id"] = id
	}
	p := pagination(r)
	cursor, err := database.DB.Collection(database.AdminActionsCollection).Find(ctx, filter, options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(p.Skip).
		SetLimit(p.Limit))
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch actions")
		return
	}
	defer cursor.Close(ctx)

	actions := []models.AdminAction{}
	if err := cursor.All(ctx, &actions); err != nil {
		writeServiceError(w, r, err, "Failed to fetch actions")
		return
	}
	writeJSON(w, http.StatusOK, "", M{"actions": actions})
}

// ReconcileCounters recomputes denormalized counters from source documents.
func ReconcileCounters(w http.ResponseWriter, r *http.Request) {
	// Full-collection aggregations outlive the default request timeout.
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	start := time.Now()
	if err := services.ReconcileCounters(ctx); err != nil {
		writeServiceError(w, r, err, "Failed to reconcile counters")
		return
	}
	zap.L().Info("counters reconciled", zap.String("admin_id", adminID(r)), zap.Duration("took", time.Since(start)))
	writeJSON(w, http.StatusOK, "Counters reconciled", M{"took_ms": time.Since(start).Milliseconds()})
}
