package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type CreatePostRequest struct {
	Content string   `json:"content" validate:"required"`
	Media   []string `json:"media" validate:"max=4,dive,http_url"`
	Tags    []string `json:"tags" validate:"max=10,dive,max=32"`
}

// CreatePost publishes a post for the signed-in profile.
func CreatePost(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	post, err := services.CreatePost(ctx, me.ID, req.Content, req.Media, req.Tags)
	if err != nil {
		writeServiceError(w, r, err, "Failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, "Post created", M{"post": post})
}

// GetPost returns an active post, its widget and the viewer's flags.
func GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	post, err := services.GetActivePost(ctx, id)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load post")
		return
	}
	payload := M{"post": post}

	if post.Widget != nil {
		widget, err := services.GetWidget(ctx, *post.Widget)
		if err != nil {
			writeServiceError(w, r, err, "Failed to load post")
			return
		}
		payload["widget"] = widget
	}
	if viewer := viewerProfile(ctx, r); viewer != nil {
		payload["upvoted"] = post.UpvotedBy(viewer.ID)
		payload["reposted"] = post.RepostedBy(viewer.ID)
		payload["bookmarked"] = viewer.HasBookmarked(post.ID)
	}
	writeJSON(w, http.StatusOK, "", payload)
}

// ListPosts pages through active posts, optionally by author or tag.
func ListPosts(w http.ResponseWriter, r *http.Request) {
	p := pagination(r)
	q := services.PostQuery{
		Tag:   strings.ToLower(strings.TrimSpace(r.URL.Query().Get("tag"))),
		Skip:  p.Skip,
		Limit: p.Limit,
	}
	if a := r.URL.Query().Get("author"); a != "" {
		author, ok := parseObjectID(a)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid author id")
			return
		}
		q.Author = &author
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	posts, total, err := services.ListPosts(ctx, q)
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

// GetFeed returns posts from the viewer and the profiles they follow.
func GetFeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	p := pagination(r)
	posts, err := services.Feed(ctx, me.ID, p.Skip, p.Limit)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load feed")
		return
	}
	writeJSON(w, http.StatusOK, "", M{"posts": posts, "has_more": int64(len(posts)) == p.Limit})
}

type UpdatePostRequest struct {
	Content *string  `json:"content" validate:"omitempty,min=1"`
	Tags    []string `json:"tags" validate:"omitempty,max=10,dive,max=32"`
}

// UpdatePost lets the author edit content and tags.
func UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return
	}
	var req UpdatePostRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	post, err := services.UpdatePost(ctx, id, me.ID, req.Content, req.Tags)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update post")
		return
	}
	writeJSON(w, http.StatusOK, "Post updated", M{"post": post})
}

// DeletePost soft-deletes the author's post.
func DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	if err := services.DeletePost(ctx, id, me.ID); err != nil {
		writeServiceError(w, r, err, "Failed to delete post")
		return
	}
	writeJSON(w, http.StatusOK, "Post deleted", M{"status": models.StatusDeleted})
}
