package handlers

import (
	"sehatku-paylater/internal/core/services"
	"sehatku-paylater/internal/pkg/response"
	"sehatku-paylater/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
)

// DiseaseHandler handles disease catalogue endpoints
type DiseaseHandler struct {
	diseaseService *services.DiseaseService
}

// NewDiseaseHandler creates a new disease handler
func NewDiseaseHandler(diseaseService *services.DiseaseService) *DiseaseHandler {
	return &DiseaseHandler{diseaseService: diseaseService}
}

// List returns diseases
// @Summary List diseases
// @Tags Diseases
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Router /diseases [get]
func (h *DiseaseHandler) List(c *fiber.Ctx) error {
	result, err := h.diseaseService.List(c.UserContext(), listInput(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Diseases retrieved successfully", result)
}

// Get returns a single disease
// @Summary Get disease
// @Tags Diseases
// @Produce json
// @Param id path int true "Disease ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /diseases/{id} [get]
func (h *DiseaseHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	disease, err := h.diseaseService.GetByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Disease retrieved successfully", disease)
}

// Create adds a disease to a hospital's catalogue (Admin only)
// @Summary Create disease
// @Tags Diseases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateDiseaseInput true "Disease data"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /diseases [post]
func (h *DiseaseHandler) Create(c *fiber.Ctx) error {
	var req services.CreateDiseaseInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	disease, err := h.diseaseService.Create(c.UserContext(), &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Disease created successfully", disease)
}

// Update modifies a disease (Admin only)
// @Summary Update disease
// @Tags Diseases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Disease ID"
// @Param body body services.UpdateDiseaseInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /diseases/{id} [patch]
func (h *DiseaseHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.UpdateDiseaseInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return response.FromError(c, err)
	}

	disease, err := h.diseaseService.Update(c.UserContext(), id, &req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Disease updated successfully", disease)
}

// Delete removes a disease (Admin only)
// @Summary Delete disease
// @Tags Diseases
// @Produce json
// @Security BearerAuth
// @Param id path int true "Disease ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /diseases/{id} [delete]
func (h *DiseaseHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.diseaseService.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Disease deleted successfully", nil)
}
