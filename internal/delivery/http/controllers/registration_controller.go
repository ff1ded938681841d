package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"compassevent/internal/delivery/http/helpers"
	"compassevent/internal/domain"
)

// CreateRegistrationRequest is the request body for POST /registrations.
type CreateRegistrationRequest struct {
	EventID string `json:"event_id" validate:"required"`
}

// RegistrationSuccessResponse is the success envelope carrying one registration.
type RegistrationSuccessResponse struct {
	Data  *domain.Registration `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// RegistrationPageSuccessResponse is the success envelope for GET /registrations.
type RegistrationPageSuccessResponse struct {
	Data  *domain.Page[*domain.Registration] `json:"data"`
	Error *helpers.APIError                  `json:"error"`
}

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
	}
}

// Create godoc
// @Summary Subscribe to an event
// @Description Registers the caller for an active, future event. A confirmation email with a calendar invite is sent.
// @Tags registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param registration body CreateRegistrationRequest true "Event to join"
// @Success 201 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations [post]
func (c *RegistrationController) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req CreateRegistrationRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reg, err := c.Service.Create(r.Context(), p.UserID, domain.CreateRegistrationInput{EventID: strings.TrimSpace(req.EventID)})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, reg)
}

// List godoc
// @Summary List my registrations
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} controllers.RegistrationPageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /registrations [get]
func (c *RegistrationController) List(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	page, err := c.Service.List(r.Context(), p.UserID, params)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// Cancel godoc
// @Summary Cancel a registration
// @Description Only the participant who owns the registration may cancel it. Canceling is final.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Registration ID"
// @Success 200 {object} controllers.RegistrationSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /registrations/{id} [delete]
func (c *RegistrationController) Cancel(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	reg, err := c.Service.Cancel(r.Context(), r.PathValue("id"), p.UserID)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, reg)
}
