package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/power-demand-snapshot/internal/power"
	"github.com/i474232898/power-demand-snapshot/internal/store"
)

var validate = newValidator()

// RegionSource lists the configured regions and their page URLs.
type RegionSource interface {
	Regions() []power.Region
	PageURL(region power.Region) string
}

// RegisterRoutes wires the read-only snapshot handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, regions RegionSource, sink store.Sink) {
	v1 := app.Group("/api/v1")

	v1.Get("/regions", func(c *fiber.Ctx) error {
		list := regions.Regions()
		out := make([]regionView, 0, len(list))
		for _, r := range list {
			out = append(out, regionView{
				Name: r.Name,
				Slug: r.Slug(),
				URL:  regions.PageURL(r),
			})
		}
		return c.JSON(out)
	})

	v1.Get("/snapshots", func(c *fiber.Ctx) error {
		names, err := sink.List(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to list snapshots")
		}
		if names == nil {
			names = []string{}
		}
		return c.JSON(fiber.Map{
			"latest":    store.LatestName,
			"snapshots": names,
		})
	})

	v1.Get("/snapshots/latest", func(c *fiber.Ctx) error {
		return sendArtifact(c, sink, store.LatestName)
	})

	v1.Get("/snapshots/:name", func(c *fiber.Ctx) error {
		q := artifactQuery{Name: c.Params("name")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid snapshot name")
		}
		return sendArtifact(c, sink, q.Name)
	})
}

type regionView struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// artifactQuery holds the path parameter for a single artifact.
type artifactQuery struct {
	Name string `validate:"required,snapshot_name"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("snapshot_name", func(fl validator.FieldLevel) bool {
		return store.IsHistoryName(fl.Field().String())
	})
	return v
}

// sendArtifact streams stored bytes unchanged so clients see exactly what was persisted.
func sendArtifact(c *fiber.Ctx, sink store.Sink, name string) error {
	data, err := sink.Get(c.UserContext(), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "no snapshot "+name)
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to read snapshot")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.Send(data)
}
