package handlers

import (
	"sehatku-paylater/internal/core/services"
	"sehatku-paylater/internal/pkg/response"
	"sehatku-paylater/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// HospitalHandler handles hospital endpoints
type HospitalHandler struct {
	hospitalService *services.HospitalService
}

// NewHospitalHandler creates a new hospital handler
func NewHospitalHandler(hospitalService *services.HospitalService) *HospitalHandler {
	return &HospitalHandler{hospitalService: hospitalService}
}

// List returns hospitals
// @Summary List hospitals
// @Tags Hospitals
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Router /hospitals [get]
func (h *HospitalHandler) List(c *fiber.Ctx) error {
	result, err := h.hospitalService.List(c.UserContext(), listInput(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Hospitals retrieved successfully", result)
}

// Get returns a single hospital
// @Summary Get hospital
// @Tags Hospitals
// @Produce json
// @Param id path int true "Hospital ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /hospitals/{id} [get]
func (h *HospitalHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	hospital, err := h.hospitalService.GetByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Hospital retrieved successfully", hospital)
}

// Create registers a hospital (Admin only)
// @Summary Create hospital
// @Tags Hospitals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateHospitalInput true "Hospital data"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /hospitals [post]
func (h *HospitalHandler) Create(c *fiber.Ctx) error {
	var req services.CreateHospitalInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	hospital, err := h.hospitalService.Create(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Hospital created successfully", hospital)
}

// Update modifies a hospital (Admin only)
// @Summary Update hospital
// @Tags Hospitals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Hospital ID"
// @Param body body services.UpdateHospitalInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /hospitals/{id} [patch]
func (h *HospitalHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.UpdateHospitalInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	hospital, err := h.hospitalService.Update(c.UserContext(), id, &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Hospital updated successfully", hospital)
}

// Delete removes a hospital (Admin only)
// @Summary Delete hospital
// @Tags Hospitals
// @Produce json
// @Security BearerAuth
// @Param id path int true "Hospital ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /hospitals/{id} [delete]
func (h *HospitalHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.hospitalService.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Hospital deleted successfully", nil)
}
