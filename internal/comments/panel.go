// Package comments holds the per-photo comment panel state.
package comments

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"ricordi/internal/models"
	"ricordi/internal/observability"
	"ricordi/internal/store"
)

// Panel is the ephemeral comment state for one open photo. Panels are
// independent of each other; there is no cross-photo cache.
type Panel struct {
	photoID string
	repo    store.CommentRepository
	log     *slog.Logger

	mu       sync.RWMutex
	comments []models.Comment

	// submitting serializes Add calls: a second submit while one is in
	// flight is rejected rather than queued.
	submitting atomic.Bool
}

// NewPanel creates a panel for the given photo.
func NewPanel(photoID string, repo store.CommentRepository) *Panel {
	return &Panel{
		photoID: photoID,
		repo:    repo,
		log:     observability.Logger,
	}
}

// Load fetches the photo's comments in ascending creation order. On failure
// the existing list is kept and the error is logged.
func (p *Panel) Load(ctx context.Context) error {
	comments, err := p.repo.ListByPhoto(ctx, p.photoID)
	if err != nil {
		p.log.ErrorContext(ctx, "failed to fetch comments",
			slog.String("photo_id", p.photoID),
			slog.String("error", err.Error()))
		return models.NewFetchError("comments", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	p.mu.Lock()
	p.comments = comments
	p.mu.Unlock()
	return nil
}

// Comments returns a snapshot copy of the list, oldest first.
func (p *Panel) Comments() []models.Comment {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Comment, len(p.comments))
	copy(out, p.comments)
	return out
}

// Submitting reports whether an Add call is currently in flight.
func (p *Panel) Submitting() bool {
	return p.submitting.Load()
}

// Add trims and validates the inputs, inserts the comment, and appends the
// server-echoed record to the end of the list (new comments are
// chronologically last, so ascending order is preserved). Empty inputs are
// rejected locally with no store call.
func (p *Panel) Add(ctx context.Context, username, text string) (*models.Comment, error) {
	username = strings.TrimSpace(username)
	text = strings.TrimSpace(text)
	if username == "" || text == "" {
		return nil, models.NewEmptySubmitError()
	}

	if !p.submitting.CompareAndSwap(false, true) {
		return nil, models.NewSubmitInFlightError()
	}
	defer p.submitting.Store(false)

	inserted, err := p.repo.Insert(ctx, store.NewComment{
		PhotoID:  p.photoID,
		Username: username,
		Comment:  text,
	})
	if err != nil {
		p.log.ErrorContext(ctx, "failed to add comment",
			slog.String("photo_id", p.photoID),
			slog.String("error", err.Error()))
		return nil, models.NewFetchError("comment insert", err)
	}
	if ctx.Err() != nil {
		// The record exists remotely but the caller is gone; do not touch
		// the local list.
		return nil, ctx.Err()
	}

	p.mu.Lock()
	next := make([]models.Comment, len(p.comments), len(p.comments)+1)
	copy(next, p.comments)
	next = append(next, *inserted)
	p.comments = next
	p.mu.Unlock()

	return inserted, nil
}

// Manager hands out one panel per photo id for the HTTP layer.
type Manager struct {
	repo store.CommentRepository

	mu     sync.Mutex
	panels map[string]*Panel
}

// NewManager creates an empty panel manager.
func NewManager(repo store.CommentRepository) *Manager {
	return &Manager{
		repo:   repo,
		panels: make(map[string]*Panel),
	}
}

// Panel returns the panel for the photo, creating it on first use.
func (m *Manager) Panel(photoID string) *Panel {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.panels[photoID]; ok {
		return p
	}
	p := NewPanel(photoID, m.repo)
	m.panels[photoID] = p
	return p
}
