package handler

import (
	"errors"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/dto"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/queue"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/usecase"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/util"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EvaluationQueue decouples the handler from the broker; generation runs on
// a worker, one job per user-month.
type EvaluationQueue interface {
	PublishEvaluationJob(job queue.EvaluationJob) error
}

type EvaluationHandler struct {
	uc   *usecase.EvaluationUsecase
	jobs EvaluationQueue
}

func NewEvaluationHandler(uc *usecase.EvaluationUsecase, jobs EvaluationQueue) *EvaluationHandler {
	return &EvaluationHandler{uc: uc, jobs: jobs}
}

func (h *EvaluationHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/evaluations/generate", h.Generate)
	app.Get("/evaluations", h.List)
	app.Get("/evaluations/:id", h.Get)
	app.Get("/evaluations/:id/history", h.History)
	app.Post("/evaluations/:id/supervisor-score", h.SupervisorScore)
	app.Post("/evaluations/:id/approve", h.Approve)
	app.Post("/evaluations/:id/publish", h.Publish)
}

func (h *EvaluationHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateEvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}
	if req.UserID == uuid.Nil || req.Year < 2000 || req.Month < 1 || req.Month > 12 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "user_id, year and month (1-12) are required",
		})
	}

	job := queue.EvaluationJob{UserID: req.UserID, Year: req.Year, Month: req.Month}
	if err := h.jobs.PublishEvaluationJob(job); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to queue evaluation generation",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Evaluation generation queued",
		Data:    job,
	})
}

func (h *EvaluationHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid evaluation id",
		}, err)
	}

	eval, err := h.uc.Get(id)
	if err != nil {
		return h.evalError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get evaluation",
		Data:    eval,
	})
}

func (h *EvaluationHandler) List(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "user_id query parameter is required",
		}, err)
	}

	evals, err := h.uc.ListForUser(userID)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list evaluations",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get evaluations",
		Data:    evals,
	})
}

func (h *EvaluationHandler) History(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid evaluation id",
		}, err)
	}

	audits, err := h.uc.History(id)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to load evaluation history",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get evaluation history",
		Data:    audits,
	})
}

func (h *EvaluationHandler) SupervisorScore(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid evaluation id",
		}, err)
	}
	var req dto.SupervisorScoreRequest
	if err := c.BodyParser(&req); err != nil || len(req.Scores) == 0 {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "scores map is required",
		}, err)
	}

	eval, err := h.uc.SupervisorScore(id, req.ActorID, req.Scores, req.Comments)
	if err != nil {
		return h.evalError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Supervisor scores recorded",
		Data:    eval,
	})
}

func (h *EvaluationHandler) Approve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid evaluation id",
		}, err)
	}
	var req dto.ApproveEvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	eval, err := h.uc.Approve(id, req.ActorID, req.Comments)
	if err != nil {
		return h.evalError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Evaluation approved",
		Data:    eval,
	})
}

func (h *EvaluationHandler) Publish(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid evaluation id",
		}, err)
	}
	var req dto.PublishEvaluationRequest
	if err := c.BodyParser(&req); err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "invalid request body",
		}, err)
	}

	eval, err := h.uc.Publish(id, req.ActorID)
	if err != nil {
		return h.evalError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Evaluation published",
		Data:    eval,
	})
}

func (h *EvaluationHandler) evalError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "evaluation not found",
		}, err)
	case errors.Is(err, usecase.ErrInvalidTransition):
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusConflict,
			Message: "evaluation is not in a state that allows this action",
		}, err)
	default:
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "evaluation operation failed",
		}, err)
	}
}
