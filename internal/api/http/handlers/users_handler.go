package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/cloudblitz/enquiry-service/internal/api/dto"
	"github.com/cloudblitz/enquiry-service/internal/domain"
	"github.com/cloudblitz/enquiry-service/internal/policy"
	"github.com/cloudblitz/enquiry-service/internal/repository"
	"github.com/cloudblitz/enquiry-service/internal/service"
	apperrors "github.com/cloudblitz/enquiry-service/pkg/util"
)

// UsersHandler exposes user management endpoints.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// List GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	filter := repository.UserFilter{
		Limit:  parseInt(c.Query("page_size"), 50),
		Offset: (parseInt(c.Query("page"), 1) - 1) * parseInt(c.Query("page_size"), 50),
	}
	if roleStr := strings.TrimSpace(c.Query("role")); roleStr != "" {
		role := domain.Role(roleStr)
		filter.Role = &role
	}

	users, err := h.service.ListUsers(c.Context(), actorFromContext(c), filter)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"status": "success", "data": items})
}

// Create POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateRequest(&req); err != nil {
		return err
	}

	user, err := h.service.CreateUser(c.Context(), actorFromContext(c), service.UserCreateInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"status": "success", "data": userResponse(user)})
}

// Get GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"), "user id")
	if err != nil {
		return err
	}
	user, err := h.service.GetUser(c.Context(), actorFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": userResponse(user)})
}

// Update PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"), "user id")
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateRequest(&req); err != nil {
		return err
	}

	user, err := h.service.UpdateUser(c.Context(), actorFromContext(c), id, policy.UserChanges{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		Role:            req.Role,
		IsActive:        req.IsActive,
		HasSeenTutorial: req.HasSeenTutorial,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": userResponse(user)})
}

// Delete DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"), "user id")
	if err != nil {
		return err
	}
	if err := h.service.DeleteUser(c.Context(), actorFromContext(c), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "success", "data": fiber.Map{"deleted": true}})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		Role:            user.Role,
		IsActive:        user.IsActive,
		HasSeenTutorial: user.HasSeenTutorial,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}
