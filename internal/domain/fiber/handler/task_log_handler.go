package handler

import (
	"errors"
	"math"
	"time"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/dto"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/response"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/usecase"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskLogHandler struct {
	uc *usecase.TaskLogUsecase
}

func NewTaskLogHandler(uc *usecase.TaskLogUsecase) *TaskLogHandler {
	return &TaskLogHandler{uc: uc}
}

func (h *TaskLogHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/task-logs", h.Create)
	app.Get("/task-logs", h.List)
	app.Post("/task-logs/:id/approve", h.Approve)
	app.Post("/task-logs/:id/reject", h.Reject)
}

func (h *TaskLogHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTaskLogRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if req.UserID == uuid.Nil || req.DurationHours <= 0 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "user_id and a positive duration_hours are required",
		})
	}
	logDate, err := time.Parse("2006-01-02", req.LogDate)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "log_date must be formatted as YYYY-MM-DD",
		}, err)
	}

	log := model.TaskLog{
		UserID:        req.UserID,
		TaskID:        req.TaskID,
		LogDate:       logDate,
		DurationHours: req.DurationHours,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Description:   req.Description,
		KpiCategoryID: req.KpiCategoryID,
		Metadata:      string(req.Metadata),
	}
	if err := h.uc.Submit(c.UserContext(), &log); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to submit task log",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Task log submitted",
		Data:    log,
	})
}

func (h *TaskLogHandler) List(c *fiber.Ctx) error {
	var userID *uuid.UUID
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusBadRequest,
				Message: "invalid user_id",
			}, err)
		}
		userID = &id
	}
	year := c.QueryInt("year")
	month := c.QueryInt("month")
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 20)

	logs, total, err := h.uc.List(userID, year, month, page, pageSize)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list task logs",
		}, err)
	}

	totalPages := int64(math.Ceil(float64(total) / float64(pageSize)))
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get task logs",
		Data:    logs,
		Pagination: &response.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalPages: totalPages,
			TotalItems: total,
			HasMore:    int64(page) < totalPages,
			From:       (page-1)*pageSize + 1,
			To:         (page-1)*pageSize + len(logs),
		},
	})
}

func (h *TaskLogHandler) Approve(c *fiber.Ctx) error {
	return h.review(c, true)
}

func (h *TaskLogHandler) Reject(c *fiber.Ctx) error {
	return h.review(c, false)
}

func (h *TaskLogHandler) review(c *fiber.Ctx, approve bool) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid task log id",
		}, err)
	}
	var req dto.ReviewTaskLogRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	var log *model.TaskLog
	if approve {
		log, err = h.uc.Approve(c.UserContext(), id, req.ReviewerID)
	} else {
		log, err = h.uc.Reject(id, req.ReviewerID)
	}
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusNotFound,
				Message: "task log not found",
			}, err)
		case errors.Is(err, usecase.ErrLogAlreadyReviewed):
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusConflict,
				Message: "task log was already reviewed",
			}, err)
		default:
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Message: "failed to review task log",
			}, err)
		}
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Task log reviewed",
		Data:    log,
	})
}
