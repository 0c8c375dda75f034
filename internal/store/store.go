// Package store abstracts the remote store of record: a hosted service
// exposing auto-generated REST access to the photos, comments and
// guestbook_entries tables plus one blob storage bucket. The service is a
// black box; this package only knows its capability set.
package store

import (
	"context"

	"ricordi/internal/models"
)

// NewPhoto is the client-supplied part of a Photo insert. The store assigns
// id and created_at.
type NewPhoto struct {
	URL        string `json:"url"`
	FileType   string `json:"file_type"`
	UploadedBy string `json:"uploaded_by"`
	LikesCount int    `json:"likes_count"`
}

// NewComment is the client-supplied part of a Comment insert.
type NewComment struct {
	PhotoID  string `json:"photo_id"`
	Username string `json:"username"`
	Comment  string `json:"comment"`
}

// NewGuestbookEntry is the client-supplied part of a GuestbookEntry insert.
type NewGuestbookEntry struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// PhotoRepository defines the photo operations the application consumes.
type PhotoRepository interface {
	// List returns all photos ordered by created_at descending.
	List(ctx context.Context) ([]models.Photo, error)
	// Insert creates a photo record and returns it with server-assigned fields.
	Insert(ctx context.Context, photo NewPhoto) (*models.Photo, error)
	// UpdateLikes writes a client-computed likes_count for the given photo.
	// Two concurrent writers can read the same count and lose an increment;
	// that race is part of the store contract, not something this layer hides.
	UpdateLikes(ctx context.Context, id string, likes int) error
}

// CommentRepository defines the comment operations the application consumes.
type CommentRepository interface {
	// ListByPhoto returns the photo's comments ordered by created_at ascending.
	ListByPhoto(ctx context.Context, photoID string) ([]models.Comment, error)
	Insert(ctx context.Context, comment NewComment) (*models.Comment, error)
}

// GuestbookRepository defines the guestbook operations the application consumes.
type GuestbookRepository interface {
	// List returns all entries ordered by created_at descending.
	List(ctx context.Context) ([]models.GuestbookEntry, error)
	Insert(ctx context.Context, entry NewGuestbookEntry) (*models.GuestbookEntry, error)
}

// BlobStore defines the storage bucket operations the application consumes.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	// PublicURL resolves the publicly fetchable URL for an uploaded key.
	// The resolution is deterministic; no network call is made.
	PublicURL(key string) string
}

// Store bundles the four capability sets of the remote store.
type Store interface {
	Photos() PhotoRepository
	Comments() CommentRepository
	Guestbook() GuestbookRepository
	Blobs() BlobStore
}
