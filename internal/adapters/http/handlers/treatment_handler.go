package handlers

import (
	"sehatku-paylater/internal/core/services"
	"sehatku-paylater/internal/pkg/response"
	"sehatku-paylater/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// TreatmentHandler handles treatment booking endpoints
type TreatmentHandler struct {
	treatmentService *services.TreatmentService
}

// NewTreatmentHandler creates a new treatment handler
func NewTreatmentHandler(treatmentService *services.TreatmentService) *TreatmentHandler {
	return &TreatmentHandler{treatmentService: treatmentService}
}

// CostEstimate prices a disease at a hospital, optionally with PayLater terms
// @Summary Estimate treatment cost
// @Tags Treatments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.EstimateInput true "Disease, hospital and optional PayLater"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /treatments/cost-estimate [post]
func (h *TreatmentHandler) CostEstimate(c *fiber.Ctx) error {
	var req services.EstimateInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	estimate, err := h.treatmentService.EstimateCost(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Cost estimate calculated successfully", estimate)
}

// Create books a treatment
// @Summary Book treatment
// @Description Patients always book for themselves. A PayLater, when given, must be APPROVED and owned by the patient.
// @Tags Treatments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateTreatmentInput true "Booking"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /treatments [post]
func (h *TreatmentHandler) Create(c *fiber.Ctx) error {
	var req services.CreateTreatmentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if !isAdmin(c) {
		req.UserID, _ = actor(c)
	}
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	treatment, err := h.treatmentService.Create(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Treatment created successfully", treatment)
}

// List returns treatments, most recent first
// @Summary List treatments
// @Tags Treatments
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Router /treatments [get]
func (h *TreatmentHandler) List(c *fiber.Ctx) error {
	result, err := h.treatmentService.List(c.UserContext(), listInput(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Treatments retrieved successfully", result)
}

// Get returns a single treatment
// @Summary Get treatment
// @Tags Treatments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Treatment ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /treatments/{id} [get]
func (h *TreatmentHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	treatment, err := h.treatmentService.GetByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if !canAccessUser(c, treatment.UserID) {
		return response.Forbidden(c, "You can only access your own treatments")
	}
	return response.Success(c, "Treatment retrieved successfully", treatment)
}

// Update reschedules a treatment or moves its status
// @Summary Update treatment
// @Description APPROVED can only be reached through the approve endpoint
// @Tags Treatments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Treatment ID"
// @Param body body services.UpdateTreatmentInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /treatments/{id} [put]
func (h *TreatmentHandler) Update(c *fiber.Ctx) error {
	var req services.UpdateTreatmentInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Status != nil && !isAdmin(c) {
		return response.Forbidden(c, "Only hospital admins can change treatment status")
	}
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	id, ok, err := h.ownedTreatmentID(c)
	if !ok {
		return err
	}

	treatment, err := h.treatmentService.Update(c.UserContext(), id, &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Treatment updated successfully", treatment)
}

// Delete cancels a treatment that has not started
// @Summary Delete treatment
// @Tags Treatments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Treatment ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /treatments/{id} [delete]
func (h *TreatmentHandler) Delete(c *fiber.Ctx) error {
	id, ok, err := h.ownedTreatmentID(c)
	if !ok {
		return err
	}

	if err := h.treatmentService.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Treatment deleted successfully", nil)
}

// Approve approves a pending treatment (Admin only)
// @Summary Approve treatment
// @Tags Treatments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Treatment ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /treatments/{id}/approve [patch]
func (h *TreatmentHandler) Approve(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	treatment, err := h.treatmentService.Approve(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Treatment approved successfully", treatment)
}

// ownedTreatmentID resolves :id and checks the caller may modify it.
// When ok is false the response has already been written.
func (h *TreatmentHandler) ownedTreatmentID(c *fiber.Ctx) (uint, bool, error) {
	id, err := paramID(c)
	if err != nil {
		return 0, false, response.FromError(c, err)
	}
	if isAdmin(c) {
		return id, true, nil
	}

	treatment, err := h.treatmentService.GetByID(c.UserContext(), id)
	if err != nil {
		return 0, false, response.FromError(c, err)
	}
	if !canAccessUser(c, treatment.UserID) {
		return 0, false, response.Forbidden(c, "You can only modify your own treatments")
	}
	return id, true, nil
}
