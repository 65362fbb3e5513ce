package server

import (
	"eventhub/internal/models"
	"eventhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateEventRequest is the body of POST /api/events.
type CreateEventRequest struct {
	Title       string  `json:"title" example:"Go meetup"`
	Description *string `json:"description" example:"Talks and pizza"`
	Date        string  `json:"date" example:"2030-05-01T18:00:00Z"`
	CreatedBy   uint    `json:"createdBy" example:"1"`
}

// UpdateEventRequest is the body of PUT /api/events/:id. Empty fields keep their stored value.
type UpdateEventRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Date        string  `json:"date"`
}

// ListEvents handles GET /api/events
// @Summary List events
// @Description All events with their creator's id, name and email.
// @Tags events
// @Produce json
// @Success 200 {array} models.Event
// @Failure 500 {object} models.ErrorResponse
// @Router /events [get]
func (s *Server) ListEvents(c *fiber.Ctx) error {
	events, err := s.eventService.ListEvents(c.UserContext())
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(events)
}

// GetEvent handles GET /api/events/:id
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} models.Event
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /events/{id} [get]
func (s *Server) GetEvent(c *fiber.Ctx) error {
	event, err := s.eventService.GetEvent(c.UserContext(), c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(event)
}

// CreateEvent handles POST /api/events
// @Summary Create event
// @Description Creates an event for an existing user. Each user may create a limited number of events per 24 hours.
// @Tags events
// @Accept json
// @Produce json
// @Param request body CreateEventRequest true "Event"
// @Success 201 {object} service.CreateEventResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.RateLimitResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /events [post]
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	var req CreateEventRequest
	if err := bindJSON(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	date, err := parseEventDate(req.Date)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	result, err := s.eventService.CreateEvent(c.UserContext(), service.CreateEventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// UpdateEvent handles PUT /api/events/:id
// @Summary Update event
// @Description Empty fields keep their stored value. A provided date must be in the future.
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body UpdateEventRequest true "Fields to change"
// @Success 200 {object} models.Event
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /events/{id} [put]
func (s *Server) UpdateEvent(c *fiber.Ctx) error {
	id, err := service.ParseEventID(c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	var req UpdateEventRequest
	if err := bindJSON(c, &req); err != nil {
		return models.RespondWithError(c, err)
	}

	date, err := parseEventDate(req.Date)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	event, err := s.eventService.UpdateEvent(c.UserContext(), service.UpdateEventInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(event)
}

// DeleteEvent handles DELETE /api/events/:id
// @Summary Delete event
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /events/{id} [delete]
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	id, err := service.ParseEventID(c.Params("id"))
	if err != nil {
		return models.RespondWithError(c, err)
	}

	msg, err := s.eventService.DeleteEvent(c.UserContext(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(MessageResponse{Message: msg})
}
