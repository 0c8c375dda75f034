// Package testutil provides an in-memory store implementation for tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ricordi/internal/models"
	"ricordi/internal/store"

	"github.com/google/uuid"
)

// MemStore is an in-memory store.Store with per-method call counters and
// failure injection. Zero value is not usable; use NewMemStore.
type MemStore struct {
	mu sync.Mutex

	photos    []models.Photo
	comments  []models.Comment
	entries   []models.GuestbookEntry
	blobs     map[string][]byte
	urlPrefix string

	// Errors to inject, keyed by method name ("photos.list",
	// "photos.insert", "photos.update_likes", "comments.list",
	// "comments.insert", "guestbook.list", "guestbook.insert", "blobs.upload").
	Fail map[string]error

	// Calls counts invocations by the same keys.
	Calls map[string]int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		blobs:     make(map[string][]byte),
		urlPrefix: "https://example.test/media",
		Fail:      make(map[string]error),
		Calls:     make(map[string]int),
	}
}

func (m *MemStore) Photos() store.PhotoRepository        { return memPhotoRepo{m} }
func (m *MemStore) Comments() store.CommentRepository    { return memCommentRepo{m} }
func (m *MemStore) Guestbook() store.GuestbookRepository { return memGuestbookRepo{m} }
func (m *MemStore) Blobs() store.BlobStore               { return memBlobStore{m} }

// SeedPhotos installs photos directly, bypassing counters.
func (m *MemStore) SeedPhotos(photos ...models.Photo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.photos = append(m.photos, photos...)
}

// SeedEntries installs guestbook entries directly, bypassing counters.
func (m *MemStore) SeedEntries(entries ...models.GuestbookEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entries...)
}

// SeedComments installs comments directly, bypassing counters.
func (m *MemStore) SeedComments(comments ...models.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments = append(m.comments, comments...)
}

// Blob returns the stored blob for key, if any.
func (m *MemStore) Blob(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[key]
	return b, ok
}

// PhotoLikes returns the stored likes_count for the photo id.
func (m *MemStore) PhotoLikes(id string) (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.photos {
		if p.ID == id {
			return p.LikesCount, true
		}
	}
	return 0, false
}

func (m *MemStore) check(method string) error {
	m.Calls[method]++
	if err, ok := m.Fail[method]; ok && err != nil {
		return err
	}
	return nil
}

type memPhotoRepo struct{ m *MemStore }

func (r memPhotoRepo) List(ctx context.Context) ([]models.Photo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("photos.list"); err != nil {
		return nil, err
	}
	out := make([]models.Photo, len(r.m.photos))
	copy(out, r.m.photos)
	// Newest first, matching the remote store's default ordering.
	sortByCreatedAtDesc(out)
	return out, nil
}

func (r memPhotoRepo) Insert(ctx context.Context, photo store.NewPhoto) (*models.Photo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("photos.insert"); err != nil {
		return nil, err
	}
	record := models.Photo{
		ID:         uuid.NewString(),
		URL:        photo.URL,
		FileType:   photo.FileType,
		UploadedBy: photo.UploadedBy,
		CreatedAt:  time.Now().UTC(),
		LikesCount: photo.LikesCount,
	}
	r.m.photos = append(r.m.photos, record)
	return &record, nil
}

func (r memPhotoRepo) UpdateLikes(ctx context.Context, id string, likes int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("photos.update_likes"); err != nil {
		return err
	}
	for i := range r.m.photos {
		if r.m.photos[i].ID == id {
			r.m.photos[i].LikesCount = likes
			return nil
		}
	}
	return fmt.Errorf("photo %s not found", id)
}

type memCommentRepo struct{ m *MemStore }

func (r memCommentRepo) ListByPhoto(ctx context.Context, photoID string) ([]models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("comments.list"); err != nil {
		return nil, err
	}
	var out []models.Comment
	for _, c := range r.m.comments {
		if c.PhotoID == photoID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r memCommentRepo) Insert(ctx context.Context, comment store.NewComment) (*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("comments.insert"); err != nil {
		return nil, err
	}
	record := models.Comment{
		ID:        uuid.NewString(),
		PhotoID:   comment.PhotoID,
		Username:  comment.Username,
		Comment:   comment.Comment,
		CreatedAt: time.Now().UTC(),
	}
	r.m.comments = append(r.m.comments, record)
	return &record, nil
}

type memGuestbookRepo struct{ m *MemStore }

func (r memGuestbookRepo) List(ctx context.Context) ([]models.GuestbookEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("guestbook.list"); err != nil {
		return nil, err
	}
	out := make([]models.GuestbookEntry, len(r.m.entries))
	copy(out, r.m.entries)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r memGuestbookRepo) Insert(ctx context.Context, entry store.NewGuestbookEntry) (*models.GuestbookEntry, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.check("guestbook.insert"); err != nil {
		return nil, err
	}
	record := models.GuestbookEntry{
		ID:        uuid.NewString(),
		Username:  entry.Username,
		Message:   entry.Message,
		CreatedAt: time.Now().UTC(),
	}
	r.m.entries = append(r.m.entries, record)
	return &record, nil
}

type memBlobStore struct{ m *MemStore }

func (b memBlobStore) Upload(ctx context.Context, key, contentType string, data []byte) error {
	b.m.mu.Lock()
	defer b.m.mu.Unlock()
	if err := b.m.check("blobs.upload"); err != nil {
		return err
	}
	b.m.blobs[key] = data
	return nil
}

func (b memBlobStore) PublicURL(key string) string {
	return b.m.urlPrefix + "/" + key
}

func sortByCreatedAtDesc(photos []models.Photo) {
	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].CreatedAt.After(photos[j].CreatedAt)
	})
}
