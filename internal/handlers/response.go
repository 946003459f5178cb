package handlers

import (
	"tokoorder/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respond writes {success:true, message, ...payload}.
func respond(c *fiber.Ctx, status int, message string, payload fiber.Map) error {
	body := fiber.Map{
		"success": true,
		"message": message,
	}
	for k, v := range payload {
		body[k] = v
	}
	return c.Status(status).JSON(body)
}

// respondError maps err to {success:false, message, code}. Causes of server
// errors are logged, never returned.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal(err)
	}

	status := appErr.HTTPStatus()
	message := appErr.Message
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
		"code":    appErr.Code,
	})
}

// parseBody decodes the JSON body into dst.
func parseBody(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperror.Wrap(err, apperror.CodeValidation, "invalid request body")
	}
	return nil
}
