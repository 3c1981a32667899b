package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ctxKey int

const (
	userIDKey ctxKey = iota
	adminIDKey
	serviceSubjectKey
)

// WithUserID stores the signed-in user's identity id on ctx.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFrom returns the signed-in user, if any.
func UserIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok
}

func WithAdminID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, adminIDKey, id)
}

func AdminIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(adminIDKey).(uuid.UUID)
	return id, ok
}

// ServiceSubjectFrom returns the subject of a verified service token.
func ServiceSubjectFrom(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(serviceSubjectKey).(string)
	return s, ok
}

// BearerToken extracts the token from an Authorization header, falling back
// to the token query parameter used by browser websocket clients.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func validate(r *http.Request, store services.SessionStore) (uuid.UUID, bool) {
	token := BearerToken(r)
	if token == "" {
		return uuid.Nil, false
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	id, ok, err := store.Validate(ctx, token)
	if err != nil {
		zap.L().Warn("session lookup failed", zap.Error(err))
		return uuid.Nil, false
	}
	if ok {
		if err := store.Refresh(ctx, token, id); err != nil {
			zap.L().Warn("session refresh failed", zap.Error(err))
		}
	}
	return id, ok
}

// Authenticate attaches the user behind a valid session token, if any.
// Requests without a valid token pass through anonymously.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFrom(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		if id, ok := validate(r, services.UserSessions); ok {
			r = r.WithContext(WithUserID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects anonymous requests. Mount after Authenticate.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFrom(r.Context()); !ok {
			writeJSONError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin validates an admin session token.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := AdminIDFrom(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}
		id, ok := validate(r, services.AdminSessions)
		if !ok {
			writeJSONError(w, http.StatusUnauthorized, "Admin authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAdminID(r.Context(), id)))
	})
}

// ServiceAudience is the audience claim service tokens must carry.
const ServiceAudience = "orchestration"

// ParseServiceToken verifies an HS256 service token and returns its subject.
func ParseServiceToken(raw string, secret []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(ServiceAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("service token has no subject")
	}
	return claims.Subject, nil
}

// RequireServiceToken guards service-to-service routes with a signed JWT.
func RequireServiceToken(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeJSONError(w, http.StatusUnauthorized, "Service token required")
				return
			}
			sub, err := ParseServiceToken(token, key)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "Invalid service token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), serviceSubjectKey, sub)))
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
