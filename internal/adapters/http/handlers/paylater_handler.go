package handlers

import (
	"context"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/core/services"
	"sehatku-paylater/internal/pkg/response"
	"sehatku-paylater/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// PayLaterHandler handles PayLater financing endpoints
type PayLaterHandler struct {
	payLaterService *services.PayLaterService
}

// NewPayLaterHandler creates a new PayLater handler
func NewPayLaterHandler(payLaterService *services.PayLaterService) *PayLaterHandler {
	return &PayLaterHandler{payLaterService: payLaterService}
}

// List returns PayLater records
// @Summary List PayLaters
// @Tags PayLater
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Router /paylaters [get]
func (h *PayLaterHandler) List(c *fiber.Ctx) error {
	result, err := h.payLaterService.List(c.UserContext(), listInput(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "PayLaters retrieved successfully", result)
}

// Get returns a single PayLater
// @Summary Get PayLater
// @Tags PayLater
// @Produce json
// @Security BearerAuth
// @Param id path int true "PayLater ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /paylaters/{id} [get]
func (h *PayLaterHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	payLater, err := h.payLaterService.GetByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if !canAccessUser(c, payLater.UserID) {
		return response.Forbidden(c, "You can only access your own PayLater")
	}
	return response.Success(c, "PayLater retrieved successfully", payLater)
}

// Create applies for PayLater financing
// @Summary Apply for PayLater
// @Description Patients always apply for themselves. Interest is derived from the amount and tenor.
// @Tags PayLater
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreatePayLaterInput true "Application"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /paylaters [post]
func (h *PayLaterHandler) Create(c *fiber.Ctx) error {
	var req services.CreatePayLaterInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !isAdmin(c) {
		req.UserID, _ = actor(c)
	}
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	payLater, err := h.payLaterService.Create(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "PayLater created successfully", payLater)
}

// Update modifies a PayLater (Admin only)
// @Summary Update PayLater
// @Description Terms change only while PENDING. Status moves follow the approval state machine.
// @Tags PayLater
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "PayLater ID"
// @Param body body services.UpdatePayLaterInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /paylaters/{id} [patch]
func (h *PayLaterHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.UpdatePayLaterInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	payLater, err := h.payLaterService.Update(c.UserContext(), id, &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "PayLater updated successfully", payLater)
}

// Delete removes a PayLater (Admin only)
// @Summary Delete PayLater
// @Tags PayLater
// @Produce json
// @Security BearerAuth
// @Param id path int true "PayLater ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /paylaters/{id} [delete]
func (h *PayLaterHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.payLaterService.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "PayLater deleted successfully", nil)
}

// Approve approves a pending PayLater (Admin only)
// @Summary Approve PayLater
// @Tags PayLater
// @Produce json
// @Security BearerAuth
// @Param id path int true "PayLater ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /paylaters/{id}/approve [patch]
func (h *PayLaterHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.payLaterService.Approve, "PayLater approved successfully")
}

// Reject rejects a pending PayLater (Admin only)
// @Summary Reject PayLater
// @Tags PayLater
// @Produce json
// @Security BearerAuth
// @Param id path int true "PayLater ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /paylaters/{id}/reject [patch]
func (h *PayLaterHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, h.payLaterService.Reject, "PayLater rejected successfully")
}

// MarkPaid settles an approved PayLater (Admin only)
// @Summary Mark PayLater as paid
// @Tags PayLater
// @Produce json
// @Security BearerAuth
// @Param id path int true "PayLater ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /paylaters/{id}/paid [patch]
func (h *PayLaterHandler) MarkPaid(c *fiber.Ctx) error {
	return h.transition(c, h.payLaterService.MarkPaid, "PayLater marked as paid")
}

func (h *PayLaterHandler) transition(
	c *fiber.Ctx,
	apply func(ctx context.Context, id uint) (*models.PayLaterResponse, error),
	message string,
) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	payLater, err := apply(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, message, payLater)
}
