package controllers

import (
	"log/slog"
	"net/http"

	"compassevent/internal/delivery/http/helpers"
	"compassevent/internal/domain"
)

// CreateUserForm holds the text fields of the POST /users multipart form.
type CreateUserForm struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,strongpwd"`
	Phone    string `form:"phone" validate:"required,e164"`
	Role     string `form:"role" validate:"omitempty,selfrole"`
}

// UpdateUserRequest is the request body for PATCH /users/me. Omitted fields are unchanged.
type UpdateUserRequest struct {
	Name     *string      `json:"name" validate:"omitempty,min=1"`
	Email    *string      `json:"email" validate:"omitempty,email"`
	Password *string      `json:"password" validate:"omitempty,strongpwd"`
	Phone    *string      `json:"phone" validate:"omitempty,e164"`
	Role     *domain.Role `json:"role" validate:"omitempty,selfrole"`
}

func (u UpdateUserRequest) patch() domain.UserPatch {
	return domain.UserPatch{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.Password,
		Phone:    u.Phone,
		Role:     u.Role,
	}
}

// UserSuccessResponse is the success envelope carrying one user.
type UserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UserPageSuccessResponse is the success envelope for GET /users.
type UserPageSuccessResponse struct {
	Data  *domain.Page[*domain.User] `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

type UserController struct {
	Logger         *slog.Logger
	Service        domain.UserService
	MaxUploadBytes int64
}

func NewUserController(logger *slog.Logger, svc domain.UserService, maxUploadBytes int64) *UserController {
	return &UserController{
		Logger:         logger,
		Service:        svc,
		MaxUploadBytes: uploadLimit(maxUploadBytes),
	}
}

// Create godoc
// @Summary Sign up
// @Description Creates a participant, organizer, or admin account. The profile image is mandatory. A confirmation link is emailed to the new address.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Full name"
// @Param email formData string true "Email"
// @Param password formData string true "Strong password"
// @Param phone formData string true "Phone in E.164 format"
// @Param role formData string false "organizer, participant or admin"
// @Param image formData file true "Profile image"
// @Success 201 {object} controllers.UserSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users [post]
func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	if err := helpers.ParseMultipart(w, r, c.MaxUploadBytes); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	form := CreateUserForm{
		Name:     formValue(r, "name"),
		Email:    formValue(r, "email"),
		Password: r.FormValue("password"),
		Phone:    formValue(r, "phone"),
		Role:     formValue(r, "role"),
	}
	if err := helpers.Validate(&form); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	image, err := helpers.FormFile(r, helpers.ImageField)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	user, err := c.Service.Create(r.Context(), image, domain.CreateUserInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
		Phone:    form.Phone,
		Role:     domain.Role(form.Role),
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user.WithoutPassword())
}

// UpdateMe godoc
// @Summary Update the authenticated user
// @Description Partially updates the caller's own account. An empty body is rejected.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body UpdateUserRequest true "Fields to change"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /users/me [patch]
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	user, err := c.Service.Update(r.Context(), p.UserID, req.patch())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// FindAll godoc
// @Summary List users
// @Description Admin only. Filters by case-insensitive name/email substring and exact role.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name contains"
// @Param email query string false "Email contains"
// @Param role query string false "Exact role"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Success 200 {object} controllers.UserPageSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /users [get]
func (c *UserController) FindAll(w http.ResponseWriter, r *http.Request) {
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	q := r.URL.Query()
	role := domain.Role(q.Get("role"))
	if role != "" && !role.Valid() {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "role must be one of: organizer, participant, admin")
		return
	}
	page, err := c.Service.FindAll(r.Context(), domain.UserFilter{
		Name:             q.Get("name"),
		Email:            q.Get("email"),
		Role:             role,
		PaginationParams: params,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, page)
}

// FindByID godoc
// @Summary Get a user
// @Description Available to the user themself and to admins.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{id} [get]
func (c *UserController) FindByID(w http.ResponseWriter, r *http.Request) {
	user, err := c.Service.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}

// Delete godoc
// @Summary Deactivate a user
// @Description Soft delete. Available to the user themself and to admins.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} controllers.UserSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /users/{id} [delete]
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	user, err := c.Service.SoftDelete(r.Context(), r.PathValue("id"), p)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, user)
}
