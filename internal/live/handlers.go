package live

import (
	"errors"
	"time"

	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/fusion"
	"github.com/HealthNoteLabs/RUNSTR-PWA/internal/session"

	"github.com/gofiber/fiber/v2"
)

type startRequest struct {
	Unit       string  `json:"unit"`
	FilterMode string  `json:"filter_mode"`
	Activity   string  `json:"activity"`
	GoalMeters float64 `json:"goal_m"`
}

type restoreRequest struct {
	Snapshot session.Snapshot `json:"snapshot"`
	Paused   bool             `json:"paused"`
}

type motionSample struct {
	AX float64   `json:"ax"`
	AY float64   `json:"ay"`
	AZ float64   `json:"az"`
	RX float64   `json:"rx"`
	RY float64   `json:"ry"`
	RZ float64   `json:"rz"`
	At time.Time `json:"at"`
}

type signalsRequest struct {
	BatteryLevel *float64 `json:"battery_level"`
	Backgrounded bool     `json:"backgrounded"`
}

type goalRequest struct {
	Meters float64 `json:"meters"`
}

func RegisterRoutes(r fiber.Router, mgr *Manager, authMiddleware fiber.Handler) {
	r.Use(authMiddleware)

	r.Post("/", func(c *fiber.Ctx) error {
		var req startRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		run, err := mgr.StartRun(deviceID(c), session.Config{
			Unit:       req.Unit,
			FilterMode: req.FilterMode,
			Activity:   req.Activity,
			GoalMeters: req.GoalMeters,
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": run.ID, "state": run.Session.State()})
	})

	r.Post("/restore", func(c *fiber.Ctx) error {
		var req restoreRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		run, err := mgr.RestoreRun(deviceID(c), req.Snapshot, req.Paused)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": run.ID, "state": run.Session.State()})
	})

	r.Get("/:id", func(c *fiber.Ctx) error {
		status, err := mgr.StatusOf(c.Params("id"), deviceID(c))
		if err != nil {
			return lookupError(err)
		}
		return c.JSON(status)
	})

	r.Post("/:id/pause", func(c *fiber.Ctx) error {
		if err := mgr.Pause(c.Params("id"), deviceID(c)); err != nil {
			return transitionError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/resume", func(c *fiber.Ctx) error {
		if err := mgr.Resume(c.Params("id"), deviceID(c)); err != nil {
			return transitionError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/stop", func(c *fiber.Ctx) error {
		saved, err := mgr.Stop(c.Context(), c.Params("id"), deviceID(c))
		if err != nil {
			if errors.Is(err, ErrRunNotFound) || errors.Is(err, ErrNotOwner) {
				return lookupError(err)
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(saved)
	})

	r.Post("/:id/fixes", func(c *fiber.Ctx) error {
		var fixes []session.RawFix
		if err := c.BodyParser(&fixes); err != nil {
			var single session.RawFix
			if err := c.BodyParser(&single); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
			}
			fixes = []session.RawFix{single}
		}
		for _, f := range fixes {
			if err := mgr.IngestFix(c.Params("id"), deviceID(c), f); err != nil {
				return lookupError(err)
			}
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/:id/motion", func(c *fiber.Ctx) error {
		var body []motionSample
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		samples := make([]fusion.MotionSample, len(body))
		for i, s := range body {
			samples[i] = fusion.MotionSample{AX: s.AX, AY: s.AY, AZ: s.AZ, RX: s.RX, RY: s.RY, RZ: s.RZ, At: s.At}
		}
		if err := mgr.IngestMotion(c.Params("id"), deviceID(c), samples); err != nil {
			return lookupError(err)
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/:id/signals", func(c *fiber.Ctx) error {
		var req signalsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		battery := -1.0
		if req.BatteryLevel != nil {
			battery = *req.BatteryLevel
		}
		if err := mgr.ReportSignals(c.Params("id"), deviceID(c), battery, req.Backgrounded); err != nil {
			return lookupError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/:id/location-error", func(c *fiber.Ctx) error {
		if err := mgr.ReportLocationFailure(c.Params("id"), deviceID(c)); err != nil {
			return lookupError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Put("/:id/goal", func(c *fiber.Ctx) error {
		var req goalRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		if err := mgr.SetGoal(c.Params("id"), deviceID(c), req.Meters); err != nil {
			return lookupError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Delete("/:id/goal", func(c *fiber.Ctx) error {
		if err := mgr.SetGoal(c.Params("id"), deviceID(c), 0); err != nil {
			return lookupError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func deviceID(c *fiber.Ctx) string {
	id, _ := c.Locals("device_id").(string)
	return id
}

func lookupError(err error) error {
	switch {
	case errors.Is(err, ErrRunNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

func transitionError(err error) error {
	switch {
	case errors.Is(err, ErrRunNotFound), errors.Is(err, ErrNotOwner):
		return lookupError(err)
	default:
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
}
