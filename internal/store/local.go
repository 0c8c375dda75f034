package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ricordi/internal/models"
	"ricordi/internal/observability"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// LocalConfig holds settings for the development/test store.
type LocalConfig struct {
	Driver   string // "sqlite" or "postgres"
	DSN      string
	MediaDir string
	// PublicPrefix is the URL path the server mounts MediaDir at.
	PublicPrefix string
}

// localStore implements Store on an embedded database plus an on-disk blob
// directory. It stands in for the hosted service during development, seeding
// and integration tests; the capability set is identical.
type localStore struct {
	db           *gorm.DB
	mediaDir     string
	publicPrefix string
}

// NewLocal opens the configured database, migrates the three tables and
// ensures the media directory exists.
func NewLocal(cfg LocalConfig) (Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported local store driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	if err := db.AutoMigrate(&models.Photo{}, &models.Comment{}, &models.GuestbookEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate local store: %w", err)
	}

	if err := os.MkdirAll(cfg.MediaDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create media dir: %w", err)
	}

	prefix := cfg.PublicPrefix
	if prefix == "" {
		prefix = "/media"
	}

	return &localStore{
		db:           db,
		mediaDir:     cfg.MediaDir,
		publicPrefix: strings.TrimRight(prefix, "/"),
	}, nil
}

func (s *localStore) Photos() PhotoRepository        { return localPhotoRepository{s} }
func (s *localStore) Comments() CommentRepository    { return localCommentRepository{s} }
func (s *localStore) Guestbook() GuestbookRepository { return localGuestbookRepository{s} }
func (s *localStore) Blobs() BlobStore               { return localBlobStore{s} }

type localPhotoRepository struct{ s *localStore }

func (r localPhotoRepository) List(ctx context.Context) ([]models.Photo, error) {
	start := time.Now()
	var photos []models.Photo
	err := r.s.db.WithContext(ctx).Order("created_at desc").Find(&photos).Error
	observability.ObserveStoreOp("select", tablePhotos, start, err)
	return photos, err
}

func (r localPhotoRepository) Insert(ctx context.Context, photo NewPhoto) (*models.Photo, error) {
	start := time.Now()
	record := models.Photo{
		ID:         uuid.NewString(),
		URL:        photo.URL,
		FileType:   photo.FileType,
		UploadedBy: photo.UploadedBy,
		CreatedAt:  time.Now().UTC(),
		LikesCount: photo.LikesCount,
	}
	err := r.s.db.WithContext(ctx).Create(&record).Error
	observability.ObserveStoreOp("insert", tablePhotos, start, err)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r localPhotoRepository) UpdateLikes(ctx context.Context, id string, likes int) error {
	start := time.Now()
	res := r.s.db.WithContext(ctx).
		Model(&models.Photo{}).
		Where("id = ?", id).
		Update("likes_count", likes)
	err := res.Error
	if err == nil && res.RowsAffected == 0 {
		err = gorm.ErrRecordNotFound
	}
	observability.ObserveStoreOp("update", tablePhotos, start, err)
	return err
}

type localCommentRepository struct{ s *localStore }

func (r localCommentRepository) ListByPhoto(ctx context.Context, photoID string) ([]models.Comment, error) {
	start := time.Now()
	var comments []models.Comment
	err := r.s.db.WithContext(ctx).
		Where("photo_id = ?", photoID).
		Order("created_at asc").
		Find(&comments).Error
	observability.ObserveStoreOp("select", tableComments, start, err)
	return comments, err
}

func (r localCommentRepository) Insert(ctx context.Context, comment NewComment) (*models.Comment, error) {
	start := time.Now()
	record := models.Comment{
		ID:        uuid.NewString(),
		PhotoID:   comment.PhotoID,
		Username:  comment.Username,
		Comment:   comment.Comment,
		CreatedAt: time.Now().UTC(),
	}
	err := r.s.db.WithContext(ctx).Create(&record).Error
	observability.ObserveStoreOp("insert", tableComments, start, err)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

type localGuestbookRepository struct{ s *localStore }

func (r localGuestbookRepository) List(ctx context.Context) ([]models.GuestbookEntry, error) {
	start := time.Now()
	var entries []models.GuestbookEntry
	err := r.s.db.WithContext(ctx).Order("created_at desc").Find(&entries).Error
	observability.ObserveStoreOp("select", tableGuestbook, start, err)
	return entries, err
}

func (r localGuestbookRepository) Insert(ctx context.Context, entry NewGuestbookEntry) (*models.GuestbookEntry, error) {
	start := time.Now()
	record := models.GuestbookEntry{
		ID:        uuid.NewString(),
		Username:  entry.Username,
		Message:   entry.Message,
		CreatedAt: time.Now().UTC(),
	}
	err := r.s.db.WithContext(ctx).Create(&record).Error
	observability.ObserveStoreOp("insert", tableGuestbook, start, err)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

type localBlobStore struct{ s *localStore }

func (b localBlobStore) Upload(ctx context.Context, key, contentType string, data []byte) error {
	start := time.Now()
	err := b.write(key, data)
	observability.ObserveStoreOp("upload", "media", start, err)
	return err
}

func (b localBlobStore) write(key string, data []byte) error {
	if !isSafeKey(key) {
		return errors.New("invalid storage key")
	}
	return os.WriteFile(filepath.Join(b.s.mediaDir, key), data, 0o600)
}

func (b localBlobStore) PublicURL(key string) string {
	return b.s.publicPrefix + "/" + key
}

// MediaDir returns the directory the server should mount at the public prefix.
func (s *localStore) MediaDir() string {
	return s.mediaDir
}

// isSafeKey rejects keys that could escape the media directory.
func isSafeKey(key string) bool {
	if key == "" || strings.ContainsAny(key, "/\\") {
		return false
	}
	return !strings.Contains(key, "..")
}
