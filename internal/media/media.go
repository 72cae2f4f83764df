package media

import (
	"context"
	"strings"

	"github.com/priyanshu3301/civic-report-backend/internal/domain"
)

// Upload is one file handed to the store. Folder namespaces the object keys,
// callers pass the allocated report id.
type Upload struct {
	Filename    string
	ContentType string
	Folder      string
	Data        []byte
}

// Asset is the stored result. ThumbnailURL is set for images and video.
type Asset struct {
	Type         domain.MediaType
	URL          string
	ThumbnailURL *string
	ProviderID   string
}

// Store uploads and deletes binary assets on an external object store.
// Delete is best-effort: it reports failure instead of returning an error so
// batch cleanup can continue past individual misses.
type Store interface {
	Upload(ctx context.Context, up Upload) (Asset, error)
	Delete(ctx context.Context, providerID string, mediaType domain.MediaType) bool
}

// TypeFromContentType maps a MIME type onto the supported media categories.
// Returns false for anything the pipeline does not accept.
func TypeFromContentType(contentType string) (domain.MediaType, bool) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return domain.MediaImage, true
	case strings.HasPrefix(contentType, "video/"):
		return domain.MediaVideo, true
	case strings.HasPrefix(contentType, "audio/"):
		return domain.MediaAudio, true
	}
	return "", false
}
