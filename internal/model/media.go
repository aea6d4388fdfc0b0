package model

import "errors"

// Cover upload constraints. Uploads go straight from the client to object
// storage via a presigned URL; no image bytes pass through this service.
const (
	CoverFolder       = "covers"
	MaxCoverSizeBytes = 10 * 1024 * 1024
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ImageExtension returns the object key extension for an allowed content
// type, or false for unsupported types.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := allowedImageTypes[contentType]
	return ext, ok
}

// PresignCoverRequest asks for a one-shot upload URL for a post cover.
type PresignCoverRequest struct {
	ContentType string `json:"contentType"`
	FileSize    int64  `json:"fileSize"`
}

// PresignCoverResponse carries the upload URL and the public URL the client
// should store as the post's cover reference.
type PresignCoverResponse struct {
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
	Key       string `json:"key"`
}

var (
	ErrInvalidImageType = errors.New("unsupported image type")
	ErrFileTooLarge     = errors.New("file too large")
)
