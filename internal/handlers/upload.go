package handlers

import (
	"net/http"

	"github.com/AnshRaj112/agora-backend/internal/config"
	"github.com/AnshRaj112/agora-backend/internal/services"
)

var mediaUploader *services.MediaUploader

func InitMediaUploader(cfg *config.Config) error {
	u, err := services.NewMediaUploader(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, "agora")
	if err != nil {
		return err
	}
	mediaUploader = u
	return nil
}

// UploadMedia stores a multipart "file" and returns its URL.
func UploadMedia(w http.ResponseWriter, r *http.Request) {
	if mediaUploader == nil {
		writeError(w, http.StatusServiceUnavailable, "Uploads are unavailable")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(services.MaxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	file.Close()

	ctx, cancel := requestContext(r)
	defer cancel()

	me := currentProfile(ctx, w, r)
	if me == nil {
		return
	}
	url, err := mediaUploader.Upload(ctx, me.ID.Hex(), header)
	if err != nil {
		writeServiceError(w, r, err, "Failed to upload file")
		return
	}
	writeJSON(w, http.StatusCreated, "File uploaded successfully", M{"url": url})
}
