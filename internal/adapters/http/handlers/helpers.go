package handlers

import (
	"strconv"

	"sehatku-paylater/internal/core/domain"
	"sehatku-paylater/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

var errInvalidID = domain.InvalidRequest("Invalid ID")

// paramID parses the :id route parameter
func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

// listInput reads page and limit query parameters
func listInput(c *fiber.Ctx) *services.ListInput {
	return &services.ListInput{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 10),
	}
}

// actor returns the authenticated user id and role set by the auth middleware.
// A role outside the known set is treated as anonymous.
func actor(c *fiber.Ctx) (uint, domain.Role) {
	userID, _ := c.Locals("userID").(uint)
	role, _ := c.Locals("role").(string)
	if r := domain.Role(role); r.IsValid() {
		return userID, r
	}
	return 0, ""
}

// isAdmin reports whether the caller is a hospital admin
func isAdmin(c *fiber.Ctx) bool {
	_, role := actor(c)
	return role == domain.RoleHospitalAdmin
}

// canAccessUser allows hospital admins, or the user acting on their own record
func canAccessUser(c *fiber.Ctx, userID uint) bool {
	id, role := actor(c)
	return role == domain.RoleHospitalAdmin || (id != 0 && id == userID)
}
