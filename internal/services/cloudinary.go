package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MaxUploadSize bounds a single media upload.
const MaxUploadSize = 10 << 20

var allowedMediaTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"video/mp4":  true,
}

// MediaUploader stores post and avatar media on Cloudinary.
type MediaUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewMediaUploader(cloudName, apiKey, apiSecret, folder string) (*MediaUploader, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	if folder == "" {
		folder = "agora"
	}
	return &MediaUploader{cld: cld, folder: folder}, nil
}

// AllowedMediaType reports whether a declared content type may be uploaded.
func AllowedMediaType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	return allowedMediaTypes[ct]
}

// Upload stores the file under <folder>/<owner> and returns its HTTPS URL.
func (u *MediaUploader) Upload(ctx context.Context, owner string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxUploadSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, MaxUploadSize)
	}
	if !AllowedMediaType(fh.Header.Get("Content-Type")) {
		return "", fmt.Errorf("%w: unsupported media type", ErrInvalidInput)
	}

	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	res, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:       path.Join(u.folder, owner),
		ResourceType: "auto",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to Cloudinary: %w", err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}
