package handlers

import (
	"strings"

	"sehatku-paylater/internal/core/domain"
	"sehatku-paylater/internal/core/services"
	"sehatku-paylater/internal/pkg/response"
	"sehatku-paylater/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
	bpjsService *services.BPJSService
	authService *services.AuthService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService, bpjsService *services.BPJSService, authService *services.AuthService) *UserHandler {
	return &UserHandler{
		userService: userService,
		bpjsService: bpjsService,
		authService: authService,
	}
}

// UpdateBPJSRequest is the body of PUT /users/:id/bpjs
type UpdateBPJSRequest struct {
	BPJSNumber      *string `json:"bpjsNumber" validate:"omitempty,max=20"`
	LastPaymentDate *string `json:"lastPaymentDate"`
}

// ListUsers handles listing all users (Admin only)
// @Summary List all users
// @Description Get a paginated list of all users (Admin only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	result, err := h.userService.ListUsers(c.UserContext(), listInput(c))
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Users retrieved successfully", result)
}

// CreateUser handles creating a patient account (Admin only)
// @Summary Create user
// @Description Create a patient account. The role is derived from the BPJS number and last payment date, never taken from the body.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.RegisterInput true "User data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	adminID, _ := actor(c)
	user, err := h.authService.CreateUser(c.UserContext(), &req, adminID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Created(c, "User created successfully", user)
}

// GetUser handles getting a user by ID
// @Summary Get user by ID
// @Description Admins may read any user, patients only themselves
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if !canAccessUser(c, id) {
		return response.Forbidden(c, "You can only access your own account")
	}

	user, err := h.userService.GetUserByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "User retrieved successfully", user)
}

// UpdateUser handles partial user updates
// @Summary Update user
// @Description Update profile fields. Role and BPJS data are not changed here.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body services.UpdateUserInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /users/{id} [patch]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if !canAccessUser(c, id) {
		return response.Forbidden(c, "You can only update your own account")
	}

	req, err := bindUserUpdate(c)
	if err != nil {
		return response.FromError(c, err)
	}

	user, err := h.userService.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "User updated successfully", user)
}

// DeleteUser handles deleting a user (Admin only)
// @Summary Delete user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	actorID, _ := actor(c)
	if err := h.userService.DeleteUser(c.UserContext(), id, actorID); err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "User deleted successfully", nil)
}

// UpdateBPJS handles BPJS data submission and reclassification
// @Summary Update BPJS status
// @Description Store the BPJS number and last payment date, then recompute the role
// @Tags BPJS
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param body body UpdateBPJSRequest true "BPJS data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/bpjs [put]
func (h *UserHandler) UpdateBPJS(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if !canAccessUser(c, id) {
		return response.Forbidden(c, "You can only update your own BPJS data")
	}

	var req UpdateBPJSRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	input := &services.UpdateBPJSInput{BPJSNumber: req.BPJSNumber}
	if req.LastPaymentDate != nil && strings.TrimSpace(*req.LastPaymentDate) != "" {
		date, err := domain.ParseDate(*req.LastPaymentDate)
		if err != nil {
			return response.FromError(c, err)
		}
		input.LastPaymentDate = &date
	}

	result, err := h.bpjsService.UpdateStatus(c.UserContext(), id, input)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "BPJS status updated successfully", result)
}

// BPJSStatus reports whether a user's BPJS membership is active
// @Summary Check BPJS status
// @Tags BPJS
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id}/bpjs-status [get]
func (h *UserHandler) BPJSStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}
	if !canAccessUser(c, id) {
		return response.Forbidden(c, "You can only access your own BPJS status")
	}

	status, err := h.bpjsService.CheckStatus(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "BPJS status retrieved successfully", status)
}

// GetProfile returns the current user's profile
// @Summary Get my profile
// @Tags Profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /profile [get]
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	userID, _ := actor(c)
	if userID == 0 {
		return response.Unauthorized(c, "Unauthorized")
	}

	user, err := h.userService.GetProfile(c.UserContext(), userID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Profile retrieved successfully", user)
}

// UpdateProfile updates the current user's profile
// @Summary Update my profile
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpdateUserInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /profile [patch]
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	userID, _ := actor(c)
	if userID == 0 {
		return response.Unauthorized(c, "Unauthorized")
	}

	req, err := bindUserUpdate(c)
	if err != nil {
		return response.FromError(c, err)
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), userID, req)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Profile updated successfully", user)
}

// ChangePassword changes the current user's password
// @Summary Change password
// @Tags Profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.ChangePasswordInput true "Old and new password"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /profile/password [put]
func (h *UserHandler) ChangePassword(c *fiber.Ctx) error {
	userID, _ := actor(c)
	if userID == 0 {
		return response.Unauthorized(c, "Unauthorized")
	}

	var req services.ChangePasswordInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	if err := h.userService.ChangePassword(c.UserContext(), userID, &req); err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Password changed successfully", nil)
}

func bindUserUpdate(c *fiber.Ctx) (*services.UpdateUserInput, error) {
	var req services.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return nil, domain.InvalidRequest("Invalid request body")
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		req.Email = &email
	}
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}
