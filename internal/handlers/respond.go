package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/middleware"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const requestTimeout = 5 * time.Second

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// M is a JSON response payload merged into the success envelope.
type M map[string]interface{}

func writeJSON(w http.ResponseWriter, status int, message string, payload M) {
	body := M{"success": status < 400, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, message, nil)
}

// writeServiceError maps service sentinels to status codes. Anything
// unrecognised is logged and reported as fallback with a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "You are not allowed to do that")
	case errors.Is(err, services.ErrConflict):
		writeError(w, http.StatusConflict, conflictMessage(err))
	case errors.Is(err, services.ErrSelfFollow),
		errors.Is(err, services.ErrPollClosed),
		errors.Is(err, services.ErrInvalidOption),
		errors.Is(err, services.ErrNotPoll),
		errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, "Request timed out")
	default:
		zap.L().Error(fallback, zap.Error(err), zap.String("path", r.URL.Path))
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func conflictMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), services.ErrConflict.Error()+": ")
	if msg == services.ErrConflict.Error() {
		return "The resource was modified concurrently, please retry"
	}
	return msg
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the 400 itself and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "email":
		return "A valid email is required"
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "mongodb":
		return fmt.Sprintf("%s must be a valid id", field)
	}
	return fmt.Sprintf("%s is invalid", field)
}

func parseObjectID(s string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(s))
	return id, err == nil
}

type page struct {
	Limit int64
	Skip  int64
}

// pagination reads limit (1-100, default 20) and skip from the query string.
func pagination(r *http.Request) page {
	p := page{Limit: 20}
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64); err == nil && v > 0 {
		p.Limit = v
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("skip"), 10, 64); err == nil && v > 0 {
		p.Skip = v
	}
	return p
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), requestTimeout)
}

// currentProfile resolves the signed-in user's profile. It writes 401/403/500
// itself and returns nil on failure.
func currentProfile(ctx context.Context, w http.ResponseWriter, r *http.Request) *models.Profile {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return nil
	}
	p, err := services.GetProfileByUserID(ctx, userID.String())
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Profile not found for session")
		return nil
	}
	if err != nil {
		writeServiceError(w, r, err, "Failed to load profile")
		return nil
	}
	if p.IsSuspended {
		writeError(w, http.StatusForbidden, "Your account is suspended")
		return nil
	}
	return p
}

// viewerProfile is the optional form of currentProfile for public routes.
func viewerProfile(ctx context.Context, r *http.Request) *models.Profile {
	userID, ok := middleware.UserIDFrom(r.Context())
	if !ok {
		return nil
	}
	p, err := services.GetProfileByUserID(ctx, userID.String())
	if err != nil {
		return nil
	}
	return p
}
