package handlers

import (
	"errors"
	"net/http"

	"github.com/AnshRaj112/agora-backend/internal/middleware"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/AnshRaj112/agora-backend/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SignupRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Username    string `json:"username" validate:"required"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	DisplayName string `json:"display_name" validate:"max=50"`
}

type SigninRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CheckUsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

// Signup creates the identity row and the public profile, then opens a session.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := utils.ValidateUsername(req.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	username := utils.NormalizeUsername(req.Username)

	ctx, cancel := requestContext(r)
	defer cancel()

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create account")
		return
	}
	user, err := services.CreateUser(ctx, req.Email, username, hash)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create account")
		return
	}
	profile, err := services.CreateProfile(ctx, user, services.SanitizeText(req.DisplayName))
	if err != nil {
		if derr := services.DeleteUser(ctx, user.ID); derr != nil {
			zap.L().Error("failed to roll back user after profile error", zap.Error(derr), zap.String("user_id", user.ID))
		}
		writeServiceError(w, r, err, "Failed to create account")
		return
	}

	token, err := services.UserSessions.Create(ctx, uuid.MustParse(user.ID))
	if err != nil {
		writeServiceError(w, r, err, "Account created but sign-in failed")
		return
	}
	writeJSON(w, http.StatusCreated, "Account created successfully", M{
		"user":    user,
		"profile": profile,
		"token":   token,
	})
}

// Signin accepts a username or email with a password.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	user, err := services.FindUserByLogin(ctx, req.Login)
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		writeServiceError(w, r, err, "Failed to sign in")
		return
	}
	if ok, err := utils.VerifyPassword(req.Password, user.PasswordHash); err != nil || !ok {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if !user.IsActive {
		writeError(w, http.StatusForbidden, "Account is inactive")
		return
	}

	token, err := services.UserSessions.Create(ctx, uuid.MustParse(user.ID))
	if err != nil {
		writeServiceError(w, r, err, "Failed to sign in")
		return
	}
	writeJSON(w, http.StatusOK, "Signed in successfully", M{"user": user, "token": token})
}

// Signout drops the bearer session.
func Signout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	if token := middleware.BearerToken(r); token != "" {
		if err := services.UserSessions.Invalidate(ctx, token); err != nil {
			writeServiceError(w, r, err, "Failed to sign out")
			return
		}
	}
	writeJSON(w, http.StatusOK, "Signed out", nil)
}

// Me returns the identity and profile behind the session.
func Me(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	userID, _ := middleware.UserIDFrom(r.Context())
	user, err := services.GetUserByID(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load account")
		return
	}
	profile := currentProfile(ctx, w, r)
	if profile == nil {
		return
	}
	writeJSON(w, http.StatusOK, "", M{"user": user, "profile": profile})
}

// CheckUsername reports whether a username can still be registered.
func CheckUsername(w http.ResponseWriter, r *http.Request) {
	var req CheckUsernameRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	if err := utils.ValidateUsername(req.Username); err != nil {
		writeJSON(w, http.StatusOK, err.Error(), M{"available": false})
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	taken, err := services.UsernameTaken(ctx, utils.NormalizeUsername(req.Username))
	if err != nil {
		writeServiceError(w, r, err, "Failed to check username")
		return
	}
	msg := "Username is available"
	if taken {
		msg = "Username is already taken"
	}
	writeJSON(w, http.StatusOK, msg, M{"available": !taken})
}

type AdminSigninRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AdminSignin opens an admin session.
func AdminSignin(w http.ResponseWriter, r *http.Request) {
	var req AdminSigninRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	admin, err := services.FindAdmin(ctx, req.Username)
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	if err != nil {
		writeServiceError(w, r, err, "Failed to sign in")
		return
	}
	if !admin.IsActive {
		writeError(w, http.StatusForbidden, "Admin account is inactive")
		return
	}
	if ok, err := utils.VerifyPassword(req.Password, admin.PasswordHash); err != nil || !ok {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := services.AdminSessions.Create(ctx, admin.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to sign in")
		return
	}
	writeJSON(w, http.StatusOK, "Admin signed in successfully", M{
		"admin": M{"id": admin.ID.String(), "username": admin.Username, "email": admin.Email},
		"token": token,
	})
}
