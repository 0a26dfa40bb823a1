package handlers

import (
	"stockman/internal/apperror"
	"stockman/internal/models"
	"stockman/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	service *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// RegisterRoutes registers the user routes. The /id/:id routes come first so
// they are not swallowed by /:username.
func (h *UserHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/", h.HandleCreate)
	router.Get("/", h.HandleList)
	router.Get("/id/:id", h.HandleGetByUserID)
	router.Put("/id/:id", h.HandleUpdateByUserID)
	router.Delete("/id/:id", h.HandleDeleteByUserID)
	router.Get("/:username", h.HandleGetByUsername)
	router.Delete("/:username", h.HandleDeleteByUsername)
}

// HandleCreate creates a new user.
func (h *UserHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Wrap(apperror.Validation, "Invalid request body", err)
	}

	user, err := h.service.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleList returns every user without passwords.
func (h *UserHandler) HandleList(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// HandleGetByUsername returns the first user with the given username.
func (h *UserHandler) HandleGetByUsername(c *fiber.Ctx) error {
	user, err := h.service.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleGetByUserID returns the user with the given numeric userID.
func (h *UserHandler) HandleGetByUserID(c *fiber.Ctx) error {
	id, err := services.ParseUserID(c.Params("id"))
	if err != nil {
		return err
	}
	user, err := h.service.GetByUserID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleUpdateByUserID applies allow-listed fields to a user.
func (h *UserHandler) HandleUpdateByUserID(c *fiber.Ctx) error {
	id, err := services.ParseUserID(c.Params("id"))
	if err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.Wrap(apperror.Validation, "Invalid request body", err)
	}

	user, err := h.service.UpdateByUserID(c.UserContext(), id, req)
	if err != nil {
		return err
	}
	return c.JSON(user)
}

// HandleDeleteByUsername deletes the first user with the given username.
func (h *UserHandler) HandleDeleteByUsername(c *fiber.Ctx) error {
	user, err := h.service.DeleteByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
		"user":    user,
	})
}

// HandleDeleteByUserID deletes the user with the given userID.
func (h *UserHandler) HandleDeleteByUserID(c *fiber.Ctx) error {
	id, err := services.ParseUserID(c.Params("id"))
	if err != nil {
		return err
	}
	user, err := h.service.DeleteByUserID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "User deleted successfully",
		"user":    user,
	})
}
