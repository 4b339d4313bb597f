package handlers

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"citoyens/internal/metrics"
	"citoyens/internal/models"
	"citoyens/internal/services"
	"citoyens/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CitizenHandler handles HTTP requests for citizens.
type CitizenHandler struct {
	service      *services.CitizenService
	validate     *validator.Validate
	log          logrus.FieldLogger
	metrics      *metrics.Metrics
	defaultLimit int
}

// NewCitizenHandler creates a new CitizenHandler. m may be nil.
func NewCitizenHandler(service *services.CitizenService, log logrus.FieldLogger, m *metrics.Metrics, defaultLimit int) *CitizenHandler {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &CitizenHandler{
		service:      service,
		validate:     validator.New(),
		log:          log,
		metrics:      m,
		defaultLimit: defaultLimit,
	}
}

// RegisterRoutes registers the citizen routes.
func (h *CitizenHandler) RegisterRoutes(router fiber.Router) {
	citizenRoutes := router.Group("/citoyens")
	citizenRoutes.Get("/", h.HandleListCitizens)
	citizenRoutes.Get("/:nci", h.HandleGetCitizenByNCI)
	citizenRoutes.Post("/", h.HandleCreateCitizen)
	citizenRoutes.Put("/:id", h.HandleUpdateCitizen)
	citizenRoutes.Delete("/:id", h.HandleDeleteCitizen)
}

// respondError maps service errors onto status codes. Unexpected errors are logged, not returned.
func (h *CitizenHandler) respondError(c *fiber.Ctx, err error, action string) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid data",
			"message": err.Error(),
			"errors":  validationErr.Errors,
		})
	case errors.Is(err, services.ErrDuplicateNCI), errors.Is(err, services.ErrMissingID):
		return errorResponse(c, fiber.StatusBadRequest, "Invalid data", err.Error())
	case errors.Is(err, services.ErrNotFound):
		return errorResponse(c, fiber.StatusNotFound, "Citizen not found",
			fmt.Sprintf("No citizen found with ID: %s", c.Params("id")))
	}

	h.log.WithError(err).WithField("action", action).Error("citizen request failed")
	return errorResponse(c, fiber.StatusInternalServerError, "Internal server error", "Could not "+action)
}

// HandleGetCitizenByNCI returns the citizen holding the NCI in the path.
func (h *CitizenHandler) HandleGetCitizenByNCI(c *fiber.Ctx) error {
	nci := c.Params("nci")
	if !validation.ValidateNCI(nci) {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid NCI format", "The NCI must contain exactly 13 digits")
	}

	citizen, err := h.service.FindByNCI(c.UserContext(), nci)
	if err != nil {
		return h.respondError(c, err, "retrieve the citizen")
	}
	if citizen == nil {
		return errorResponse(c, fiber.StatusNotFound, "Citizen not found",
			fmt.Sprintf("No citizen found with NCI: %s", strings.TrimSpace(nci)))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    citizen.Public(),
	})
}

// HandleCreateCitizen registers a new citizen.
func (h *CitizenHandler) HandleCreateCitizen(c *fiber.Ctx) error {
	var input models.CitizenInput
	if err := c.BodyParser(&input); err != nil {
		h.log.WithError(err).Debug("error parsing create citizen body")
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}

	citizen, err := h.service.Save(c.UserContext(), input)
	if err != nil {
		return h.respondError(c, err, "create the citizen")
	}
	h.metrics.IncrementCitizensCreated()

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Citizen created successfully",
		"data":    citizen.Public(),
	})
}

// HandleUpdateCitizen merges the body into an existing citizen.
// Only the keys of models.PatchFields are accepted.
func (h *CitizenHandler) HandleUpdateCitizen(c *fiber.Ctx) error {
	var raw map[string]interface{}
	if err := c.BodyParser(&raw); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	var unknown []string
	for key := range raw {
		if !models.PatchFields[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errorResponse(c, fiber.StatusBadRequest, "Invalid data",
			"Unknown fields: "+strings.Join(unknown, ", "))
	}

	var patch models.CitizenPatch
	if err := c.BodyParser(&patch); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}

	citizen, err := h.service.Update(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return h.respondError(c, err, "update the citizen")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Citizen updated successfully",
		"data":    citizen.Public(),
	})
}

type listQuery struct {
	Limit  int `validate:"gte=0"`
	Offset int `validate:"gte=0"`
}

// HandleListCitizens returns a page of citizens, newest first.
func (h *CitizenHandler) HandleListCitizens(c *fiber.Ctx) error {
	q := listQuery{
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	if err := h.validate.Struct(q); err != nil {
		return invalidRequest(c, err)
	}
	if q.Limit == 0 {
		q.Limit = h.defaultLimit
	}

	citizens, err := h.service.FindAll(c.UserContext(), q.Limit, q.Offset)
	if err != nil {
		return h.respondError(c, err, "retrieve the citizen list")
	}

	data := make([]models.CitizenResponse, 0, len(citizens))
	for i := range citizens {
		data = append(data, citizens[i].Public())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
		"pagination": fiber.Map{
			"limit":  q.Limit,
			"offset": q.Offset,
			"count":  len(data),
		},
	})
}

// HandleDeleteCitizen removes a citizen after checking it exists.
func (h *CitizenHandler) HandleDeleteCitizen(c *fiber.Ctx) error {
	id := c.Params("id")

	existing, err := h.service.FindByID(c.UserContext(), id)
	if err != nil {
		return h.respondError(c, err, "delete the citizen")
	}
	if existing == nil {
		return h.respondError(c, services.ErrNotFound, "delete the citizen")
	}

	if err := h.service.DeleteByID(c.UserContext(), id); err != nil {
		return h.respondError(c, err, "delete the citizen")
	}
	h.metrics.IncrementCitizensDeleted()

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Citizen deleted successfully",
	})
}
