package handlers

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"todo-collab/internal/middleware"
	"todo-collab/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxAvatarSize = 5 << 20

var avatarExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// Validasi ukuran, ekstensi dan tipe konten avatar
func validateAvatar(file *multipart.FileHeader) error {
	if file.Size > maxAvatarSize {
		return fiber.NewError(fiber.StatusBadRequest, "File size exceeds the limit of 5MB")
	}
	if !avatarExts[strings.ToLower(filepath.Ext(file.Filename))] {
		return fiber.NewError(fiber.StatusBadRequest, "File type not allowed")
	}
	if !strings.HasPrefix(file.Header.Get(fiber.HeaderContentType), "image/") {
		return fiber.NewError(fiber.StatusBadRequest, "File must be an image")
	}
	return nil
}

// UploadAvatar stores the "image" form file and makes it the caller's
// profile picture.
func (h *Handler) UploadAvatar(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "Image file is required")
	}
	if err := validateAvatar(file); err != nil {
		return err
	}

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		logger.ErrorLogger.Error("Error creating upload directory", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload image"})
	}

	// nama file unik agar tidak bentrok
	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	if err := c.SaveFile(file, filepath.Join(h.UploadDir, name)); err != nil {
		logger.ErrorLogger.Error("Error saving file", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload image"})
	}

	url := "/api/uploads/" + name
	user, err := h.Services.Users.UpdateProfile(c.UserContext(), middleware.CurrentUserID(c), nil, &url)
	if err != nil {
		_ = os.Remove(filepath.Join(h.UploadDir, name))
		return fail(c, err, "Failed to upload image")
	}

	logger.AuditLogger.Info("Avatar uploaded", zap.String("user_id", user.ID), zap.String("filename", name))
	return c.JSON(user)
}

// GetUpload serves a previously uploaded file. Only the base name of the
// parameter is used, so paths cannot leave the upload directory.
func (h *Handler) GetUpload(c *fiber.Ctx) error {
	name := filepath.Base(c.Params("filename"))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
	}

	path := filepath.Join(h.UploadDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "File not found"})
	}
	return c.SendFile(path)
}
