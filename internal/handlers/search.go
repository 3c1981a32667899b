package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/agora-backend/internal/services"
)

// Search runs a text search over posts (default) or profiles.
func Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if services.RuneLen(q) < 2 || services.RuneLen(q) > 100 {
		writeError(w, http.StatusBadRequest, "q must be 2-100 characters")
		return
	}
	limit := pagination(r).Limit

	ctx, cancel := requestContext(r)
	defer cancel()

	switch r.URL.Query().Get("type") {
	case "", "posts":
		posts, err := services.SearchPosts(ctx, q, limit)
		if err != nil {
			writeServiceError(w, r, err, "Search failed")
			return
		}
		writeJSON(w, http.StatusOK, "", M{"posts": posts})
	case "profiles":
		profiles, err := services.SearchProfiles(ctx, q, limit)
		if err != nil {
			writeServiceError(w, r, err, "Search failed")
			return
		}
		writeJSON(w, http.StatusOK, "", M{"profiles": profiles})
	default:
		writeError(w, http.StatusBadRequest, "type must be posts or profiles")
	}
}
