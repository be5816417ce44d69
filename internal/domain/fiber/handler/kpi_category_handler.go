package handler

import (
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/dto"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/repository"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/util"
	"github.com/gofiber/fiber/v2"
)

type KpiCategoryHandler struct {
	repo *repository.KpiCategoryRepository
}

func NewKpiCategoryHandler(repo *repository.KpiCategoryRepository) *KpiCategoryHandler {
	return &KpiCategoryHandler{repo: repo}
}

func (h *KpiCategoryHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/kpi-categories", h.List)
	app.Post("/kpi-categories", h.Create)
}

func (h *KpiCategoryHandler) List(c *fiber.Ctx) error {
	categories, err := h.repo.GetAll()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list KPI categories",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get KPI categories",
		Data:    categories,
	})
}

func (h *KpiCategoryHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateKpiCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if req.Name == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "name is required",
		})
	}

	category := model.KpiCategory{Name: req.Name, Weight: req.Weight, Unit: req.Unit}
	if category.Weight <= 0 {
		category.Weight = 1
	}
	if err := h.repo.Create(&category); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to create KPI category",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "KPI category created",
		Data:    category,
	})
}
