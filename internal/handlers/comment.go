package handlers

import (
	"net/http"

	"github.com/AnshRaj112/agora-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

type CreateCommentRequest struct {
	PostID  string `json:"post_id" validate:"required,mongodb"`
	Content string `json:"content" validate:"required"`
}

type CreateReplyRequest struct {
	CommentID string `json:"comment_id" validate:"required,mongodb"`
	Content   string `json:"content" validate:"required"`
}

func CreateComment(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	postID, _ := parseObjectID(req.PostID)

	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	c, err := services.CreateComment(ctx, postID, me.ID, req.Content)
	if err != nil {
		writeServiceError(w, r, err, "Failed to add comment")
		return
	}
	writeJSON(w, http.StatusCreated, "Comment added", M{"comment": c})
}

func ListComments(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseObjectID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid post id")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	p := pagination(r)
	comments, total, err := services.ListComments(ctx, postID, p.Skip, p.Limit)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load comments")
		return
	}
	writeJSON(w, http.StatusOK, "", M{
		"comments": comments,
		"total":    total,
		"has_more": p.Skip+int64(len(comments)) < total,
	})
}

func DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid comment id")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	if err := services.DeleteComment(ctx, id, me.ID); err != nil {
		writeServiceError(w, r, err, "Failed to delete comment")
		return
	}
	writeJSON(w, http.StatusOK, "Comment deleted", nil)
}

func CreateReply(w http.ResponseWriter, r *http.Request) {
	var req CreateReplyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	commentID, _ := parseObjectID(req.CommentID)

	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	reply, err := services.CreateReply(ctx, commentID, me.ID, req.Content)
	if err != nil {
		writeServiceError(w, r, err, "Failed to add reply")
		return
	}
	writeJSON(w, http.StatusCreated, "Reply added", M{"reply": reply})
}

func ListReplies(w http.ResponseWriter, r *http.Request) {
	commentID, ok := parseObjectID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid comment id")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	p := pagination(r)
	replies, total, err := services.ListReplies(ctx, commentID, p.Skip, p.Limit)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load replies")
		return
	}
	writeJSON(w, http.StatusOK, "", M{
		"replies":  replies,
		"total":    total,
		"has_more": p.Skip+int64(len(replies)) < total,
	})
}

func DeleteReply(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid reply id")
		return
	}
	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	if err := services.DeleteReply(ctx, id, me.ID); err != nil {
		writeServiceError(w, r, err, "Failed to delete reply")
		return
	}
	writeJSON(w, http.StatusOK, "Reply deleted", nil)
}
