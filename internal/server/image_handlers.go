package server

import (
	"io"

	"eventhub/internal/models"
	"eventhub/internal/observability"
	"eventhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UploadEventImage handles POST /api/events/:id/image
// @Summary Attach event image
// @Description Uploads a .jpg or .png (max 2MB) in the "image" form field and replaces the event's previous image.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Event ID"
// @Param image formData file true "Image file"
// @Success 200 {object} service.AttachImageResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /events/{id}/image [post]
func (s *Server) UploadEventImage(c *fiber.Ctx) error {
	id, err := service.ParseEventID(c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	file, err := c.FormFile("image")
	if err != nil {
		return models.RespondWithError(c, models.NewInvalidArgumentError("No image file uploaded"))
	}

	src, err := file.Open()
	if err != nil {
		return models.RespondWithError(c, models.NewInvalidArgumentError("Unable to read uploaded file"))
	}
	defer func() { _ = src.Close() }()

	content, err := io.ReadAll(src)
	if err != nil {
		return models.RespondWithError(c, models.NewInvalidArgumentError("Unable to read uploaded file"))
	}

	stored, err := s.images.Save(c.UserContext(), service.UploadImageInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Content:     content,
	})
	if err != nil {
		observability.ImageUploads.WithLabelValues(observability.UploadRejected).Inc()
		return models.RespondWithError(c, err)
	}

	result, err := s.eventService.AttachImage(c.UserContext(), id, stored)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(result)
}
