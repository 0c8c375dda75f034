// Package upload validates and executes the two-step media upload: blob
// first, metadata record second.
package upload

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"ricordi/internal/models"
	"ricordi/internal/observability"
	"ricordi/internal/store"

	"github.com/google/uuid"
)

// SubmitInput carries one upload attempt.
type SubmitInput struct {
	Username    string
	Filename    string
	ContentType string
	Content     []byte
}

// Coordinator uploads media to the storage bucket and inserts the photo
// metadata record.
type Coordinator struct {
	blobs  store.BlobStore
	photos store.PhotoRepository
	log    *slog.Logger
}

// NewCoordinator creates a Coordinator over the given blob store and photo repository.
func NewCoordinator(blobs store.BlobStore, photos store.PhotoRepository) *Coordinator {
	return &Coordinator{
		blobs:  blobs,
		photos: photos,
		log:    observability.Logger,
	}
}

// Submit validates the input, uploads the blob under a collision-resistant
// key, and inserts the metadata record with likes_count = 0. Validation
// failures make no store calls. A failed blob upload aborts before any
// metadata exists; a failed metadata insert leaves an orphan blob behind,
// which is logged and accepted rather than cleaned up.
func (co *Coordinator) Submit(ctx context.Context, in SubmitInput) (*models.Photo, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, models.NewMissingInputError("Please enter your name before uploading")
	}
	if len(in.Content) == 0 {
		return nil, models.NewMissingInputError("No file uploaded")
	}

	key := storageKey(in.Filename)
	fileType := classify(in.ContentType)

	if err := co.blobs.Upload(ctx, key, in.ContentType, in.Content); err != nil {
		co.log.ErrorContext(ctx, "media upload failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, models.NewStorageFailureError(err)
	}

	publicURL := co.blobs.PublicURL(key)

	inserted, err := co.photos.Insert(ctx, store.NewPhoto{
		URL:        publicURL,
		FileType:   fileType,
		UploadedBy: username,
		LikesCount: 0,
	})
	if err != nil {
		// The blob is now an orphan: stored but unreferenced. Accepted.
		co.log.ErrorContext(ctx, "photo metadata insert failed, blob orphaned",
			slog.String("key", key),
			slog.String("error", err.Error()))
		return nil, models.NewMetadataFailureError(err)
	}

	observability.UploadBytes.WithLabelValues(fileType).Add(float64(len(in.Content)))
	co.log.InfoContext(ctx, "media uploaded",
		slog.String("photo_id", inserted.ID),
		slog.String("file_type", fileType),
		slog.Int("bytes", len(in.Content)))

	return inserted, nil
}

// storageKey derives a collision-resistant key from the current time plus a
// random suffix, preserving the original file extension.
func storageKey(filename string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), suffix, path.Ext(filename))
}

// classify maps a MIME type to the stored file_type: video iff the type
// starts with "video/", image otherwise.
func classify(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return models.FileTypeVideo
	}
	return models.FileTypeImage
}
