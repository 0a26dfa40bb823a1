package handlers

import (
	"errors"
	"log/slog"

	"stockman/internal/apperror"
	"stockman/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// AvatarField is the multipart field carrying the uploaded file.
const AvatarField = "avatar"

// ImagesPrefix is the URL prefix avatars are served from.
const ImagesPrefix = "/images"

// UploadHandler handles avatar uploads and, for non-local stores, downloads.
type UploadHandler struct {
	store storage.AvatarStore
	log   *slog.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(store storage.AvatarStore, log *slog.Logger) *UploadHandler {
	return &UploadHandler{
		store: store,
		log:   log,
	}
}

// RegisterRoutes registers the upload route.
func (h *UploadHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/upload-avatar", h.HandleUploadAvatar)
}

// HandleUploadAvatar stores the file sent in the "avatar" field and returns
// the path it can be fetched from.
func (h *UploadHandler) HandleUploadAvatar(c *fiber.Ctx) error {
	header, err := c.FormFile(AvatarField)
	if err != nil {
		return apperror.Wrap(apperror.BadRequest, "No file uploaded", err)
	}

	file, err := header.Open()
	if err != nil {
		return apperror.Wrap(apperror.BadRequest, "Could not read uploaded file", err)
	}
	defer file.Close()

	name, err := h.store.Save(c.UserContext(), file, storage.Extension(header.Filename))
	if err != nil {
		return apperror.Wrap(apperror.Internal, "Could not store avatar", err)
	}

	h.log.Info("avatar uploaded", "name", name, "size", header.Size)
	return c.JSON(fiber.Map{"url": ImagesPrefix + "/" + name})
}

// HandleServeAvatar streams a stored avatar.
func (h *UploadHandler) HandleServeAvatar(c *fiber.Ctx) error {
	body, contentType, err := h.store.Open(c.UserContext(), c.Params("*"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperror.Wrap(apperror.NotFound, "Image not found", err)
		}
		return apperror.Wrap(apperror.Internal, "Could not read avatar", err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.SendStream(body)
}
