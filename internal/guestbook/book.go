// Package guestbook owns the guestbook entry list and its rotating carousel.
package guestbook

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ricordi/internal/carousel"
	"ricordi/internal/models"
	"ricordi/internal/observability"
	"ricordi/internal/store"
)

const rotationInterval = 4 * time.Second

// Book holds the guestbook entries newest-first and rotates the carousel
// index through every entry while at least one exists.
type Book struct {
	repo store.GuestbookRepository
	log  *slog.Logger
	rot  *carousel.Rotator

	mu      sync.RWMutex
	entries []models.GuestbookEntry
}

// NewBook creates a guestbook over the given repository.
func NewBook(repo store.GuestbookRepository) *Book {
	return &Book{
		repo: repo,
		log:  observability.Logger,
		rot: carousel.NewRotator("guestbook", rotationInterval, 0, func(count int) int {
			return count
		}),
	}
}

// Load fetches all entries newest-first and re-arms the rotation timer for
// the new count. On failure the existing entries are kept.
func (b *Book) Load(ctx context.Context) error {
	entries, err := b.repo.List(ctx)
	if err != nil {
		b.log.ErrorContext(ctx, "failed to fetch guestbook entries",
			slog.String("error", err.Error()))
		return models.NewFetchError("guestbook", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	b.mu.Lock()
	b.entries = entries
	b.mu.Unlock()
	b.rot.Arm(len(entries))
	return nil
}

// Entries returns a snapshot copy, newest first.
func (b *Book) Entries() []models.GuestbookEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.GuestbookEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Submit trims and validates the inputs, inserts the entry, and prepends the
// server-echoed record so it is visible immediately. Empty inputs are
// rejected locally with no store call. The carousel timer is re-armed for
// the new count.
func (b *Book) Submit(ctx context.Context, username, message string) (*models.GuestbookEntry, error) {
	username = strings.TrimSpace(username)
	message = strings.TrimSpace(message)
	if username == "" || message == "" {
		return nil, models.NewEmptySubmitError()
	}

	inserted, err := b.repo.Insert(ctx, store.NewGuestbookEntry{
		Username: username,
		Message:  message,
	})
	if err != nil {
		b.log.ErrorContext(ctx, "failed to sign guestbook",
			slog.String("error", err.Error()))
		return nil, models.NewFetchError("guestbook insert", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	b.mu.Lock()
	next := make([]models.GuestbookEntry, 0, len(b.entries)+1)
	next = append(next, *inserted)
	next = append(next, b.entries...)
	b.entries = next
	count := len(next)
	b.mu.Unlock()

	b.rot.Arm(count)
	return inserted, nil
}

// Index returns the current carousel index.
func (b *Book) Index() int {
	return b.rot.Index()
}

// Seek jumps the carousel to the given entry.
func (b *Book) Seek(index int) {
	b.rot.Seek(index)
}

// Rotating reports whether the carousel timer is armed.
func (b *Book) Rotating() bool {
	return b.rot.Rotating()
}

// Close stops the rotation timer.
func (b *Book) Close() {
	b.rot.Stop()
}
