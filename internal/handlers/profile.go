package handlers

import (
	"net/http"

	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// GetProfile resolves {id} as a profile id or username.
func GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	profile, err := services.LookupProfile(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to load profile")
		return
	}
	postCount, err := services.CountActivePosts(ctx, profile.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load profile")
		return
	}

	payload := M{"profile": profile, "post_count": postCount}
	if viewer := viewerProfile(ctx, r); viewer != nil && viewer.ID != profile.ID {
		following, err := services.IsFollowing(ctx, viewer.ID, profile.ID)
		if err != nil {
			writeServiceError(w, r, err, "Failed to load profile")
			return
		}
		payload["is_following"] = following
	}
	writeJSON(w, http.StatusOK, "", payload)
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=50"`
	Bio         *string `json:"bio" validate:"omitempty,max=300"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,http_url,max=500"`
}

// UpdateProfile edits the signed-in user's own profile.
func UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	update := services.ProfileUpdate{AvatarURL: req.AvatarURL}
	if req.DisplayName != nil {
		v := services.SanitizeText(*req.DisplayName)
		update.DisplayName = &v
	}
	if req.Bio != nil {
		v := services.SanitizeText(*req.Bio)
		update.Bio = &v
	}

	profile, err := services.UpdateProfile(ctx, me.ID, update)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, "Profile updated", M{"profile": profile})
}

// GetFollowers lists profiles following {id}.
func GetFollowers(w http.ResponseWriter, r *http.Request) {
	listFollows(w, r, true)
}

// GetFollowing lists profiles {id} follows.
func GetFollowing(w http.ResponseWriter, r *http.Request) {
	listFollows(w, r, false)
}

func listFollows(w http.ResponseWriter, r *http.Request, followers bool) {
	ctx, cancel := requestContext(r)
	defer cancel()

	profile, err := services.LookupProfile(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to load profiles")
		return
	}
	p := pagination(r)
	ids, total, err := services.FollowIDs(ctx, profile.ID, followers, p.Skip, p.Limit)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load profiles")
		return
	}
	profiles, err := services.ProfilesByIDs(ctx, ids)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load profiles")
		return
	}
	writeJSON(w, http.StatusOK, "", M{
		"profiles": profiles,
		"total":    total,
		"has_more": p.Skip+int64(len(ids)) < total,
	})
}

// GetProfilePosts lists a profile's active posts.
func GetProfilePosts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	profile, err := services.LookupProfile(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "Failed to load posts")
		return
	}
	p := pagination(r)
	posts, total, err := services.ListPosts(ctx, services.PostQuery{Author: &profile.ID, Skip: p.Skip, Limit: p.Limit})
	if err != nil {
		writeServiceError(w, r, err, "Failed to load posts")
		return
	}
	writeJSON(w, http.StatusOK, "", M{
		"posts":    posts,
		"total":    total,
		"has_more": p.Skip+int64(len(posts)) < total,
	})
}

type FollowRequest struct {
	ProfileID string `json:"profile_id" validate:"required,mongodb"`
}

// ToggleFollow follows or unfollows profile_id.
func ToggleFollow(w http.ResponseWriter, r *http.Request) {
	var req FollowRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	target, _ := parseObjectID(req.ProfileID)

	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	res, err := services.ToggleFollow(ctx, me.ID, target)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update follow")
		return
	}
	msg := "Unfollowed"
	if res.Following {
		msg = "Followed"
	}
	writeJSON(w, http.StatusOK, msg, M{"following": res.Following, "follower_count": res.FollowerCount})
}
