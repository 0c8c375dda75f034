// Package seed populates the store with demo data for development.
package seed

import (
	"context"
	"fmt"
	"log"

	"ricordi/internal/store"

	"github.com/brianvoe/gofakeit/v6"
)

// Options configuration for the seeder
type Options struct {
	NumPhotos           int
	CommentsPerPhoto    int
	NumGuestbookEntries int
}

var messages = []string{
	"Che bella giornata, auguri!",
	"Tanti auguri! Grazie per la splendida festa.",
	"Una giornata indimenticabile, complimenti!",
	"Auguri di cuore a tutti e due!",
	"Bellissima festa, grazie dell'invito!",
	"Momenti stupendi, che emozione!",
}

var comments = []string{
	"Che bella foto!",
	"Bellissimi!",
	"Momento stupendo",
	"Da incorniciare!",
	"Fantastico!",
}

// Seed populates the store with demo photos, comments and guestbook entries.
func Seed(ctx context.Context, st store.Store, opts Options) error {
	log.Printf("Seeding %d photos, %d comments each, %d guestbook entries...",
		opts.NumPhotos, opts.CommentsPerPhoto, opts.NumGuestbookEntries)

	for i := 0; i < opts.NumPhotos; i++ {
		fileType := "image"
		ext := "jpg"
		if gofakeit.Number(0, 9) == 0 {
			fileType = "video"
			ext = "mp4"
		}

		photo, err := st.Photos().Insert(ctx, store.NewPhoto{
			URL:        fmt.Sprintf("https://picsum.photos/seed/%s/800/600.%s", gofakeit.LetterN(8), ext),
			FileType:   fileType,
			UploadedBy: gofakeit.FirstName(),
			LikesCount: gofakeit.Number(0, 40),
		})
		if err != nil {
			return fmt.Errorf("failed to seed photo: %w", err)
		}

		for j := 0; j < opts.CommentsPerPhoto; j++ {
			_, err := st.Comments().Insert(ctx, store.NewComment{
				PhotoID:  photo.ID,
				Username: gofakeit.FirstName(),
				Comment:  gofakeit.RandomString(comments),
			})
			if err != nil {
				return fmt.Errorf("failed to seed comment: %w", err)
			}
		}
	}

	for i := 0; i < opts.NumGuestbookEntries; i++ {
		_, err := st.Guestbook().Insert(ctx, store.NewGuestbookEntry{
			Username: gofakeit.FirstName(),
			Message:  gofakeit.RandomString(messages),
		})
		if err != nil {
			return fmt.Errorf("failed to seed guestbook entry: %w", err)
		}
	}

	log.Println("Seeding complete")
	return nil
}
