package handler

import (
	"context"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/dto"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/repository"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/service"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/util"
	"github.com/gofiber/fiber/v2"
)

type ApiKeyHandler struct {
	repo   *repository.ApiKeyRepository
	health *service.KeyHealthService
}

func NewApiKeyHandler(repo *repository.ApiKeyRepository, health *service.KeyHealthService) *ApiKeyHandler {
	return &ApiKeyHandler{repo: repo, health: health}
}

func (h *ApiKeyHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/api-keys", h.List)
	app.Post("/api-keys", h.Create)
	app.Post("/api-keys/health-check", h.HealthCheck)
}

func (h *ApiKeyHandler) List(c *fiber.Ctx) error {
	keys, err := h.repo.GetAll()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list API keys",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get API keys",
		Data:    keys,
	})
}

func (h *ApiKeyHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateApiKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if req.Provider == "" || req.Secret == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "provider and secret are required",
		})
	}

	key := model.ApiKey{
		Provider:   req.Provider,
		Secret:     req.Secret,
		Model:      req.Model,
		BaseURL:    req.BaseURL,
		Priority:   req.Priority,
		Status:     model.KeyStatusActive,
		DailyQuota: req.DailyQuota,
	}
	if err := h.repo.Create(&key); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to create API key",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "API key created",
		Data:    key,
	})
}

// HealthCheck kicks off a sweep in the background; provider round-trips can
// take a while and the caller only needs the acknowledgement.
func (h *ApiKeyHandler) HealthCheck(c *fiber.Ctx) error {
	var req dto.HealthCheckRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	go h.health.Sweep(context.Background(), req.DegradedOnly)

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Health check sweep started",
		Data:    fiber.Map{"degraded_only": req.DegradedOnly},
	})
}
