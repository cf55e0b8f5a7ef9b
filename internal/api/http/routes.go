package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/city-weather/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
// The handlers are a thin collaborator over the coordinator: they translate
// requests into coordinator operations and render its state.
func RegisterRoutes(app *fiber.App, coord *weather.Coordinator) {
	v1 := app.Group("/api/v1")

	v1.Get("/state", func(c *fiber.Ctx) error {
		state := coord.Snapshot()
		current, _ := state.CurrentView()
		return c.JSON(fiber.Map{
			"cities":      state.Views(),
			"selected":    state.Selected,
			"current":     current,
			"loading":     state.Loading,
			"error":       state.Error,
			"preferences": state.Preferences,
		})
	})

	v1.Get("/cities", func(c *fiber.Ctx) error {
		return c.JSON(coord.Snapshot().Views())
	})

	v1.Post("/cities", func(c *fiber.Ctx) error {
		var req addCityRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := req.check(); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := coord.AddCity(req.Name); err != nil {
			return mapError(err)
		}
		state := coord.Snapshot()
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"cities":   state.Cities,
			"selected": state.Selected,
		})
	})

	v1.Delete("/cities/:index", func(c *fiber.Ctx) error {
		index, err := c.ParamsInt("index")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
		}
		if err := coord.RemoveCity(index); err != nil {
			return mapError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Post("/cities/:index/select", func(c *fiber.Ctx) error {
		index, err := c.ParamsInt("index")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "index must be an integer")
		}
		if err := coord.SelectCity(index); err != nil {
			return mapError(err)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"selected": index})
	})

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		view, ok := coord.Snapshot().CurrentView()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no city selected")
		}
		return c.JSON(view)
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		coord.RefreshCurrent()
		return c.SendStatus(fiber.StatusAccepted)
	})

	v1.Post("/weather/load-all", func(c *fiber.Ctx) error {
		coord.LoadAll()
		return c.SendStatus(fiber.StatusAccepted)
	})

	v1.Put("/preferences", func(c *fiber.Ctx) error {
		var req preferencesRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if req.Celsius != nil {
			coord.SetTemperatureUnit(*req.Celsius)
		}
		if req.ShowWindDirection != nil {
			coord.SetShowWindDirection(*req.ShowWindDirection)
		}
		return c.JSON(coord.Snapshot().Preferences)
	})
}

// addCityRequest is the body of POST /cities.
type addCityRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

func (r *addCityRequest) check() error {
	r.Name = strings.TrimSpace(r.Name)
	return validate.Struct(r)
}

// preferencesRequest holds optional preference toggles; absent fields are left unchanged.
type preferencesRequest struct {
	Celsius           *bool `json:"celsius"`
	ShowWindDirection *bool `json:"showWindDirection" validate:"required_without=Celsius"`
}

func mapError(err error) error {
	switch {
	case errors.Is(err, weather.ErrDuplicateCity), errors.Is(err, weather.ErrLastCityProtected):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, weather.ErrIndexOutOfRange):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
