package results

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		deviceID, _ := c.Locals("device_id").(string)
		runs, err := svc.List(c.Context(), deviceID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(runs)
	})

	r.Get("/stats", authMiddleware, func(c *fiber.Ctx) error {
		deviceID, _ := c.Locals("device_id").(string)
		stats, err := svc.Stats(c.Context(), deviceID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(stats)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		run, err := svc.Get(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.JSON(run)
	})
}
