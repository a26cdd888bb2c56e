package validation

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Config struct {
	MaxUploadSize     int64
	AllowedExtensions []string
	Logger            *zap.Logger
}

// Middleware rejects analysis uploads before any file hits the scratch
// store: wrong content type, missing file field, oversized or non-CSV
// uploads all fail fast with a 4xx.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = 50 * 1024 * 1024
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = []string{".csv", ".txt"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return c.Next()
		}

		contentType := c.Get("Content-Type")
		if !strings.Contains(contentType, "multipart/form-data") {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
				"error": "Uploads must be multipart/form-data",
			})
		}

		file, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "No file uploaded",
			})
		}

		if file.Size > cfg.MaxUploadSize {
			cfg.Logger.Warn("upload rejected: too large",
				zap.String("filename", file.Filename),
				zap.Int64("size", file.Size),
			)
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": "Uploaded file exceeds maximum size",
			})
		}

		ext := strings.ToLower(filepath.Ext(file.Filename))
		allowed := false
		for _, e := range cfg.AllowedExtensions {
			if ext == e {
				allowed = true
				break
			}
		}
		if !allowed {
			cfg.Logger.Warn("upload rejected: extension not allowed",
				zap.String("filename", file.Filename),
				zap.String("ext", ext),
			)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Only CSV uploads are supported",
			})
		}

		return c.Next()
	}
}
