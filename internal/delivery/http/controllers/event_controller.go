package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"compassevent/internal/delivery/http/helpers"
	"compassevent/internal/domain"
)

// CreateEventForm holds the text fields of the POST /events multipart form.
type CreateEventForm struct {
	Name        string `form:"name" validate:"required"`
	Description string `form:"description" validate:"required"`
	Date        string `form:"date" validate:"required"`
}

// UpdateEventRequest is the request body for PATCH /events/{id}. Omitted fields are unchanged.
// organizer_id is only honored for admins.
type UpdateEventRequest struct {
	Name        *string    `json:"name" validate:"omitempty,min=1"`
	Description *string    `json:"description"`
	Date        *time.Time `json:"date"`
	OrganizerID *string    `json:"organizer_id" validate:"omitempty,min=1"`
}

func (u UpdateEventRequest) patch() domain.EventPatch {
	p := domain.EventPatch{
		Name:        u.Name,
		Description: u.Description,
		Date:        u.Date,
		OrganizerID: u.OrganizerID,
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	return p
}

// EventSuccessResponse is the success envelope carrying one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventPageSuccessResponse is the success envelope for GET /events.
type EventPageSuccessResponse struct {
	Data  *domain.Page[*domain.Event] `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

type EventController struct {
	Logger         *slog.Logger
	Service        domain.EventService
	MaxUploadBytes int64
}

func NewEventController(logger *slog.Logger, svc domain.EventService, maxUploadBytes int64) *EventController {
	return &EventController{
		Logger:         logger,
		Service:        svc,
		MaxUploadBytes: uploadLimit(maxUploadBytes),
	}
}

// Create godoc
// @Summary Create a new event
// @Description Publishes an event owned by the caller. The image is mandatory and the name must be unique. Every confirmed participant is notified.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param name formData string true "Event name"
// @Param description formData string true "Description"
// @Param date formData string true "RFC 3339 date"
// @Param image formData file true "Event image"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := helpers.ParseMultipart(w, r, c.MaxUploadBytes); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	form := CreateEventForm{
		Name:        formValue(r, "name"),
		Description: formValue(r, "description"),
		Date:        formValue(r, "date"),
	}
	if err := helpers.Validate(&form); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	date, err := time.Parse(time.RFC3339, form.Date)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "date must be an RFC 3339 timestamp")
		return
	}
	image, err := helpers.FormFile(r, helpers.ImageField)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	event, err := c.Service.Create(r.Context(), domain.CreateEventInput{
		Name:        form.Name,
		Description: form.Description,
		Date:        date,
	}, image, p.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// FindAll godoc
// @Summary List events
// @Description Filters by name substring, date (strictly before or after, default after) and status.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name contains"
// @Param date query string false "RFC 3339 reference date"
// @Param date_direction query string false "before or after"
// @Param status query string false "active or inactive"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} controllers.EventPageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events [get]
func (c *EventController) FindAll(w http.ResponseWriter, r *http.Request) {
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	q := r.URL.Query()
	filter := domain.EventFilter{
		Name:             strings.TrimSpace(q.Get("name")),
		PaginationParams: params,
	}
	if s := strings.TrimSpace(q.Get("date")); s != "" {
		date, err := time.Parse(time.RFC3339, s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "date must be an RFC 3339 timestamp")
			return
		}
		filter.Date = &date
	}
	switch dir := domain.DateDirection(strings.ToLower(q.Get("date_direction"))); dir {
	case "", domain.DateBefore, domain.DateAfter:
		filter.Direction = dir
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "date_direction must be before or after")
		return
	}
	switch status := domain.EventStatus(strings.ToLower(strings.TrimSpace(q.Get("status")))); status {
	case "", domain.EventStatusActive, domain.EventStatusInactive:
		filter.Status = status
	default:
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "status must be active or inactive")
		return
	}
	page, err := c.Service.FindAll(r.Context(), filter)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// FindOne godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [get]
func (c *EventController) FindOne(w http.ResponseWriter, r *http.Request) {
	event, err := c.Service.FindOne(r.Context(), r.PathValue("id"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Update godoc
// @Summary Update an event
// @Description Owner or admin only. Renames must stay unique; organizer_id is only applied for admins.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Param event body UpdateEventRequest true "Fields to change"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [patch]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Update(r.Context(), r.PathValue("id"), req.patch(), p.UserID, p.IsAdmin())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Delete godoc
// @Summary Cancel an event
// @Description Soft delete. Owner or admin only. The organizer and every confirmed participant are notified.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{id} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	event, err := c.Service.SoftDelete(r.Context(), r.PathValue("id"), p.UserID, p.Role)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
