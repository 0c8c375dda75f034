// Package gallery owns the session's authoritative photo list and the
// photo selection state.
package gallery

import (
	"context"
	"log/slog"
	"sync"

	"ricordi/internal/models"
	"ricordi/internal/observability"
	"ricordi/internal/store"
)

// Controller is the single owner of the in-memory photo list. Every mutation
// replaces the whole slice under the lock, so readers always see a complete
// snapshot and the three mutation sites (load, upload, like) never alias
// each other's data.
type Controller struct {
	repo store.PhotoRepository
	log  *slog.Logger

	mu           sync.RWMutex
	photos       []models.Photo
	selectedID   string
	hasSelection bool
}

// NewController creates a controller over the given photo repository.
func NewController(repo store.PhotoRepository) *Controller {
	return &Controller{
		repo: repo,
		log:  observability.Logger,
	}
}

// LoadAll fetches all photos ordered newest-first and replaces the local
// list. On failure the existing list is left untouched and the error is
// logged; callers get a FETCH_FAILED error but the session stays usable.
func (c *Controller) LoadAll(ctx context.Context) error {
	photos, err := c.repo.List(ctx)
	if err != nil {
		c.log.ErrorContext(ctx, "failed to fetch photos", slog.String("error", err.Error()))
		return models.NewFetchError("photos", err)
	}
	if ctx.Err() != nil {
		// The caller is gone; discard the result instead of mutating state.
		return ctx.Err()
	}

	c.mu.Lock()
	c.photos = photos
	c.mu.Unlock()
	return nil
}

// Photos returns a snapshot copy of the current list, newest first.
func (c *Controller) Photos() []models.Photo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Photo, len(c.photos))
	copy(out, c.photos)
	return out
}

// RecordUpload prepends a freshly inserted photo. The new photo is the
// newest record, so prepending preserves descending-creation order.
func (c *Controller) RecordUpload(photo models.Photo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]models.Photo, 0, len(c.photos)+1)
	next = append(next, photo)
	next = append(next, c.photos...)
	c.photos = next
}

// ApplyLike issues a remote likes_count = current+1 update for the photo and,
// on success, increments the local copy by exactly one. An unknown id is a
// no-op. On remote failure the local list is unchanged and the error is
// logged; there is nothing to roll back because the increment is only applied
// after the store confirms the write. The client-computed increment accepts a
// lost-update race between concurrent sessions.
func (c *Controller) ApplyLike(ctx context.Context, photoID string) (*models.Photo, error) {
	c.mu.RLock()
	current, found := findPhoto(c.photos, photoID)
	c.mu.RUnlock()
	if !found {
		return nil, nil
	}

	if err := c.repo.UpdateLikes(ctx, photoID, current.LikesCount+1); err != nil {
		c.log.ErrorContext(ctx, "failed to like photo",
			slog.String("photo_id", photoID),
			slog.String("error", err.Error()))
		return nil, models.NewFetchError("like update", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]models.Photo, len(c.photos))
	copy(next, c.photos)
	var updated *models.Photo
	for i := range next {
		if next[i].ID == photoID {
			next[i].LikesCount++
			p := next[i]
			updated = &p
			break
		}
	}
	c.photos = next
	return updated, nil
}

// Select marks the photo with the given id as the open detail view.
// Selecting is a pure local transition; it fails only if the id is unknown.
func (c *Controller) Select(photoID string) (*models.Photo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	photo, found := findPhoto(c.photos, photoID)
	if !found {
		return nil, false
	}
	c.selectedID = photoID
	c.hasSelection = true
	return &photo, true
}

// ClearSelection closes the detail view.
func (c *Controller) ClearSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedID = ""
	c.hasSelection = false
}

// Selected returns the currently selected photo, resolved against the live
// list so like updates are reflected immediately in the detail header.
func (c *Controller) Selected() (*models.Photo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasSelection {
		return nil, false
	}
	photo, found := findPhoto(c.photos, c.selectedID)
	if !found {
		return nil, false
	}
	return &photo, true
}

func findPhoto(photos []models.Photo, id string) (models.Photo, bool) {
	for _, p := range photos {
		if p.ID == id {
			return p, true
		}
	}
	return models.Photo{}, false
}
