// Package models defines the domain records and the application error types.
package models

import "time"

// File type values stored on a Photo.
const (
	FileTypeImage = "image"
	FileTypeVideo = "video"
)

// Photo is a single uploaded image or video. The id and created_at are
// assigned by the remote store on insert; likes_count only ever grows.
type Photo struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	URL        string    `json:"url"`
	FileType   string    `json:"file_type"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
	LikesCount int       `json:"likes_count"`
}

// Comment belongs to exactly one photo and is immutable after insert.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	PhotoID   string    `json:"photo_id" gorm:"index"`
	Username  string    `json:"username"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// GuestbookEntry is a standalone message, unrelated to any photo.
type GuestbookEntry struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
