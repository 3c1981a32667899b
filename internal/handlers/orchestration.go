package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/middleware"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type OrchestrationRequest struct {
	Name        string          `json:"name" validate:"required,max=64"`
	Description string          `json:"description" validate:"max=500"`
	Prompts     []models.Prompt `json:"prompts" validate:"required,min=1,max=50,dive"`
	Active      bool            `json:"active"`
}

// UpsertOrchestration creates or replaces a prompt set by name.
func UpsertOrchestration(w http.ResponseWriter, r *http.Request) {
	var req OrchestrationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	name := strings.ToLower(strings.TrimSpace(req.Name))

	ctx, cancel := requestContext(r)
	defer cancel()

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var o models.Orchestration
	err := database.DB.Collection(database.OrchestrationsCollection).FindOneAndUpdate(ctx,
		bson.M{"name": name},
		bson.M{"$set": bson.M{
			"description": req.Description,
			"prompts":     req.Prompts,
			"active":      req.Active,
			"updated_by":  adminID(r),
			"updated_at":  time.Now(),
		}},
		opts,
	).Decode(&o)
	if err != nil {
		writeServiceError(w, r, err, "Failed to save orchestration")
		return
	}
	writeJSON(w, http.StatusOK, "Orchestration saved", M{"orchestration": o})
}

// ListOrchestrations returns every prompt set (admin only).
func ListOrchestrations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	cursor, err := database.DB.Collection(database.OrchestrationsCollection).Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch orchestrations")
		return
	}
	defer cursor.Close(ctx)

	list := []models.Orchestration{}
	if err := cursor.All(ctx, &list); err != nil {
		writeServiceError(w, r, err, "Failed to fetch orchestrations")
		return
	}
	writeJSON(w, http.StatusOK, "", M{"orchestrations": list})
}

// GetOrchestration serves an active prompt set to the content workflow.
func GetOrchestration(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	var o models.Orchestration
	err := database.DB.Collection(database.OrchestrationsCollection).FindOne(ctx, bson.M{
		"name":   strings.ToLower(chi.URLParam(r, "name")),
		"active": true,
	}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = services.ErrNotFound
	}
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch orchestration")
		return
	}
	caller, _ := middleware.ServiceSubjectFrom(r.Context())
	zap.L().Info("orchestration served",
		zap.String("name", o.Name), zap.String("service", caller))
	writeJSON(w, http.StatusOK, "", M{"orchestration": o})
}

// GetPolicy returns the current policy document of {kind}.
func GetPolicy(w http.ResponseWriter, r *http.Request) {
	kind := models.PolicyKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown policy kind")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	var p models.Policy
	err := database.DB.Collection(database.PoliciesCollection).FindOne(ctx, bson.M{"kind": kind}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		err = services.ErrNotFound
	}
	if err != nil {
		writeServiceError(w, r, err, "Failed to fetch policy")
		return
	}
	writeJSON(w, http.StatusOK, "", M{"policy": p})
}

type PolicyRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Body  string `json:"body" validate:"required"`
}

// PutPolicy replaces a policy document and bumps its version.
func PutPolicy(w http.ResponseWriter, r *http.Request) {
	kind := models.PolicyKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown policy kind")
		return
	}
	var req PolicyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var p models.Policy
	err := database.DB.Collection(database.PoliciesCollection).FindOneAndUpdate(ctx,
		bson.M{"kind": kind},
		bson.M{
			"$set": bson.M{"title": strings.TrimSpace(req.Title), "body": req.Body, "updated_at": time.Now()},
			"$inc": bson.M{"version": 1},
		},
		opts,
	).Decode(&p)
	if err != nil {
		writeServiceError(w, r, err, "Failed to save policy")
		return
	}
	writeJSON(w, http.StatusOK, "Policy saved", M{"policy": p})
}
