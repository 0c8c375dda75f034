// Package topmoments ranks the most-liked photos and drives their carousel.
package topmoments

import (
	"sort"
	"sync"
	"time"

	"ricordi/internal/carousel"
	"ricordi/internal/models"
)

const (
	rotationInterval = 3 * time.Second
	maxMoments       = 6
	// Three cards are visible at once, so the index only needs to cover the
	// window start positions and rotation only helps past three entries.
	visibleCards = 3
)

// Top returns up to six photos ranked by like count, most liked first.
// The sort is stable: photos with equal likes keep their incoming
// (newest-first) order. The input slice is not modified.
func Top(photos []models.Photo) []models.Photo {
	ranked := make([]models.Photo, len(photos))
	copy(ranked, photos)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].LikesCount > ranked[j].LikesCount
	})
	if len(ranked) > maxMoments {
		ranked = ranked[:maxMoments]
	}
	return ranked
}

// Carousel holds the current top-moments ranking and rotates the visible
// window start index while more photos exist than fit on screen.
type Carousel struct {
	rot *carousel.Rotator

	mu      sync.RWMutex
	moments []models.Photo
}

// NewCarousel creates an empty top-moments carousel.
func NewCarousel() *Carousel {
	return &Carousel{
		rot: carousel.NewRotator("top_moments", rotationInterval, visibleCards, func(count int) int {
			p := count - (visibleCards - 1)
			if p < 1 {
				p = 1
			}
			return p
		}),
	}
}

// Refresh recomputes the ranking from the given photo list and re-arms the
// rotation timer for the new count. Call it after every load, upload or like.
func (c *Carousel) Refresh(photos []models.Photo) {
	ranked := Top(photos)

	c.mu.Lock()
	c.moments = ranked
	c.mu.Unlock()
	c.rot.Arm(len(ranked))
}

// Moments returns a snapshot copy of the ranking, most liked first.
func (c *Carousel) Moments() []models.Photo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Photo, len(c.moments))
	copy(out, c.moments)
	return out
}

// Index returns the current window start index.
func (c *Carousel) Index() int {
	return c.rot.Index()
}

// Seek jumps the window to the given start index.
func (c *Carousel) Seek(index int) {
	c.rot.Seek(index)
}

// Rotating reports whether the carousel timer is armed.
func (c *Carousel) Rotating() bool {
	return c.rot.Rotating()
}

// Close stops the rotation timer.
func (c *Carousel) Close() {
	c.rot.Stop()
}
