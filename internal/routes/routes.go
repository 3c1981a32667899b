package routes

import (
	"github.com/AnshRaj112/agora-backend/internal/config"
	"github.com/AnshRaj112/agora-backend/internal/handlers"
	"github.com/AnshRaj112/agora-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r *chi.Mux, cfg *config.Config) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate)
		r.Use(middleware.WriteRateLimit)

		// Auth
		r.Post("/api/auth/signup", handlers.Signup)
		r.Post("/api/auth/signin", handlers.Signin)
		r.Post("/api/auth/signout", handlers.Signout)
		r.Post("/api/auth/check-username", handlers.CheckUsername)

		// Public reads; a session, when present, adds viewer flags
		r.Get("/api/profile/{id}", handlers.GetProfile)
		r.Get("/api/profile/{id}/followers", handlers.GetFollowers)
		r.Get("/api/profile/{id}/following", handlers.GetFollowing)
		r.Get("/api/profile/{id}/posts", handlers.GetProfilePosts)
		r.Get("/api/posts", handlers.ListPosts)
		r.Get("/api/post/{id}", handlers.GetPost)
		r.Get("/api/post/{id}/comments", handlers.ListComments)
		r.Get("/api/comment/{id}/replies", handlers.ListReplies)
		r.Get("/api/widget/{id}", handlers.GetWidget)
		r.Get("/api/policy/{kind}", handlers.GetPolicy)
		r.Get("/api/search", handlers.Search)
		r.Get("/api/ads", handlers.GetAds)
		r.Post("/api/feedback", handlers.SubmitFeedback)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RedisRateLimit(middleware.AdEventLimit))
			r.Post("/api/ads/{id}/impression", handlers.RecordImpression)
			r.Post("/api/ads/{id}/click", handlers.RecordClick)
		})

		// Live poll tallies
		r.Get("/ws/poll", handlers.PollSocket)

		// Signed-in users
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/api/auth/me", handlers.Me)
			r.Patch("/api/profile", handlers.UpdateProfile)
			r.Patch("/api/follow", handlers.ToggleFollow)
			r.Get("/api/feed", handlers.GetFeed)

			r.Post("/api/post", handlers.CreatePost)
			r.Patch("/api/post/{id}", handlers.UpdatePost)
			r.Delete("/api/post/{id}", handlers.DeletePost)
			r.Post("/api/comment", handlers.CreateComment)
			r.Delete("/api/comment/{id}", handlers.DeleteComment)
			r.Post("/api/reply", handlers.CreateReply)
			r.Delete("/api/reply/{id}", handlers.DeleteReply)

			r.Patch("/api/bookmark", handlers.ToggleBookmark)
			r.Get("/api/bookmarks", handlers.GetBookmarks)
			r.Patch("/api/repost", handlers.ToggleRepost)
			r.Patch("/api/upvote", handlers.ToggleUpvote)

			r.Post("/api/widget/poll", handlers.CreatePoll)
			r.Patch("/api/widget/poll", handlers.VotePoll)

			r.With(middleware.RedisRateLimit(middleware.ReportLimit)).Post("/api/report", handlers.CreateReport)

			r.Post("/api/partner/apply", handlers.ApplyPartner)
			r.Get("/api/partner/me", handlers.GetMyPartner)
			r.Get("/api/partner/stats", handlers.GetPartnerStats)

			r.Post("/api/upload", handlers.UploadMedia)
		})
	})

	// Admin (accounts are provisioned with cmd/create-admin)
	r.Post("/api/admin/signin", handlers.AdminSignin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Get("/api/admin/reports", handlers.ListReports)
		r.Patch("/api/admin/reports/{id}", handlers.CloseReport)
		r.Post("/api/admin/actions", handlers.CreateAdminAction)
		r.Get("/api/admin/actions", handlers.ListAdminActions)
		r.Get("/api/admin/feedbacks", handlers.GetFeedbacks)
		r.Delete("/api/admin/feedbacks", handlers.DeleteFeedback)
		r.Post("/api/admin/reconcile", handlers.ReconcileCounters)

		r.Put("/api/admin/orchestration", handlers.UpsertOrchestration)
		r.Get("/api/admin/orchestration", handlers.ListOrchestrations)
		r.Put("/api/admin/policy/{kind}", handlers.PutPolicy)

		r.Patch("/api/admin/partners/{id}", handlers.SetPartnerStatus)
		r.Post("/api/admin/ads", handlers.CreateAd)
	})

	// Service-to-service
	r.With(middleware.RequireServiceToken(cfg.ServiceJWTSecret)).
		Get("/api/orchestration/{name}", handlers.GetOrchestration)
}
