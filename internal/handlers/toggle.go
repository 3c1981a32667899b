package handlers

import (
	"net/http"

	"github.com/AnshRaj112/agora-backend/internal/database"
	"github.com/AnshRaj112/agora-backend/internal/models"
	"github.com/AnshRaj112/agora-backend/internal/services"
	"go.mongodb.org/mongo-driver/bson"
)

type PostTargetRequest struct {
	PostID string `json:"post_id" validate:"required,mongodb"`
}

// ToggleBookmark adds or removes post_id from the viewer's bookmarks.
func ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	var req PostTargetRequest
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
	// Removing a bookmark to a post that has since disappeared is still allowed.
	if !me.HasBookmarked(postID) {
		if _, err := services.GetActivePost(ctx, postID); err != nil {
			writeServiceError(w, r, err, "Failed to update bookmark")
			return
		}
	}

	res, err := services.MembershipToggle{
		Collection: database.DB.Collection(database.ProfilesCollection),
		ID:         me.ID,
		ArrayField: "bookmarks",
	}.Toggle(ctx, postID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update bookmark")
		return
	}
	msg := "Bookmark removed"
	if res.Added {
		msg = "Bookmarked"
	}
	writeJSON(w, http.StatusOK, msg, M{"bookmarked": res.Added})
}

// GetBookmarks lists the viewer's bookmarked posts, most recent first.
func GetBookmarks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	posts, err := services.BookmarkedPosts(ctx, me.Bookmarks)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load bookmarks")
		return
	}
	writeJSON(w, http.StatusOK, "", M{"posts": posts, "total": len(posts)})
}

// ToggleRepost flips the viewer's repost of an active post.
func ToggleRepost(w http.ResponseWriter, r *http.Request) {
	var req PostTargetRequest
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
	res, err := services.MembershipToggle{
		Collection: database.DB.Collection(database.PostsCollection),
		ID:         postID,
		ArrayField: "reposts",
		CountField: "repost_count",
		Extra:      bson.M{"status": models.StatusActive},
	}.Toggle(ctx, me.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update repost")
		return
	}
	writeJSON(w, http.StatusOK, "", M{"reposted": res.Added, "repost_count": res.Count})
}

type UpvoteRequest struct {
	TargetType string `json:"target_type" validate:"required,oneof=post comment"`
	TargetID   string `json:"target_id" validate:"required,mongodb"`
}

// ToggleUpvote flips the viewer's upvote on a post or comment.
func ToggleUpvote(w http.ResponseWriter, r *http.Request) {
	var req UpvoteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	targetID, _ := parseObjectID(req.TargetID)
	collection := database.PostsCollection
	if models.TargetType(req.TargetType) == models.TargetComment {
		collection = database.CommentsCollection
	}

	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	res, err := services.MembershipToggle{
		Collection: database.DB.Collection(collection),
		ID:         targetID,
		ArrayField: "upvotes",
		CountField: "upvote_count",
		Extra:      bson.M{"status": models.StatusActive},
	}.Toggle(ctx, me.ID)
	if err != nil {
		writeServiceError(w, r, err, "Failed to update vote")
		return
	}
	writeJSON(w, http.StatusOK, "", M{"upvoted": res.Added, "upvote_count": res.Count})
}
