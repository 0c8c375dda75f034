package server

import (
	"io"

	"ricordi/internal/models"
	"ricordi/internal/upload"

	"github.com/gofiber/fiber/v2"
)

// GetPhotos returns the photo list, newest first. With ?refresh=true the
// list is re-fetched from the store first; a failed refresh serves the
// existing snapshot rather than an error page.
func (s *Server) GetPhotos(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if c.QueryBool("refresh") {
		if err := s.gallery.LoadAll(ctx); err == nil {
			s.topMoments.Refresh(s.gallery.Photos())
		}
	}

	return c.JSON(s.gallery.Photos())
}

// UploadPhoto accepts a multipart upload (fields: username, file), stores the
// blob, inserts the metadata record and prepends the photo to the gallery.
func (s *Server) UploadPhoto(c *fiber.Ctx) error {
	ctx := c.UserContext()

	username := c.FormValue("username")

	var (
		filename    string
		contentType string
		content     []byte
	)
	if fh, err := c.FormFile("file"); err == nil {
		f, openErr := fh.Open()
		if openErr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read uploaded file"))
		}
		defer f.Close()

		content, err = io.ReadAll(f)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read uploaded file"))
		}
		filename = fh.Filename
		contentType = fh.Header.Get("Content-Type")
	}

	photo, err := s.uploader.Submit(ctx, upload.SubmitInput{
		Username:    username,
		Filename:    filename,
		ContentType: contentType,
		Content:     content,
	})
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}

	s.gallery.RecordUpload(*photo)
	s.topMoments.Refresh(s.gallery.Photos())

	return c.Status(fiber.StatusCreated).JSON(photo)
}

// LikePhoto increments the photo's like count. Unknown ids return 404;
// the local count only changes after the store confirms the write.
func (s *Server) LikePhoto(c *fiber.Ctx) error {
	ctx := c.UserContext()
	photoID := c.Params("id")

	updated, err := s.gallery.ApplyLike(ctx, photoID)
	if err != nil {
		return models.RespondWithError(c, statusForError(err), err)
	}
	if updated == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Photo", photoID))
	}

	s.topMoments.Refresh(s.gallery.Photos())

	return c.JSON(updated)
}

// SelectPhoto opens the photo's detail view and loads its comments.
func (s *Server) SelectPhoto(c *fiber.Ctx) error {
	ctx := c.UserContext()
	photoID := c.Params("id")

	photo, ok := s.gallery.Select(photoID)
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Photo", photoID))
	}

	// A failed comment fetch still opens the detail view; the list is just stale.
	panel := s.comments.Panel(photoID)
	_ = panel.Load(ctx)

	return c.JSON(fiber.Map{
		"photo":    photo,
		"comments": panel.Comments(),
	})
}

// GetSelection returns the currently open photo, or 404 when none is open.
func (s *Server) GetSelection(c *fiber.Ctx) error {
	photo, ok := s.gallery.Selected()
	if !ok {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Selection", "current"))
	}
	return c.JSON(photo)
}

// ClearSelection closes the photo detail view.
func (s *Server) ClearSelection(c *fiber.Ctx) error {
	s.gallery.ClearSelection()
	return c.SendStatus(fiber.StatusNoContent)
}
