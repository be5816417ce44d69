package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/service"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
)

var ErrLogAlreadyReviewed = errors.New("task log was already reviewed")

const fewShotLimit = 5

type TaskLogStore interface {
	Create(log *model.TaskLog) error
	Update(log *model.TaskLog) error
	FindByID(id uuid.UUID) (*model.TaskLog, error)
	List(userID *uuid.UUID, year, month, page, pageSize int) ([]model.TaskLog, int64, error)
	SearchSimilar(embedding pgvector.Vector, topK int) ([]model.TaskLog, error)
}

// LogClassifier is the provider-backed classification pass, consulted only
// when the rule classifier finds nothing.
type LogClassifier interface {
	Classify(ctx context.Context, logs []service.LogInput, categories []model.KpiCategory, examples []service.FewShot) []service.Suggestion
}

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type TaskLogUsecase struct {
	logs       TaskLogStore
	categories CategoryStore
	llm        LogClassifier
	embedder   Embedder
	log        *logrus.Logger
}

func NewTaskLogUsecase(logs TaskLogStore, categories CategoryStore, llm LogClassifier, embedder Embedder, log *logrus.Logger) *TaskLogUsecase {
	return &TaskLogUsecase{logs: logs, categories: categories, llm: llm, embedder: embedder, log: log}
}

// Submit stores a new pending log with a category suggestion attached. The
// rule classifier runs first; the LLM client is only consulted when it
// yields nothing, to keep provider traffic down.
func (uc *TaskLogUsecase) Submit(ctx context.Context, log *model.TaskLog) error {
	log.Status = model.LogStatusPending
	if log.Metadata == "" {
		log.Metadata = "{}"
	}

	categories, err := uc.categories.GetAll()
	if err != nil {
		return err
	}

	var suggestion service.Suggestion
	if match := service.ClassifyByRules(log.Description, categories); match != nil {
		suggestion = service.Suggestion{Category: match.Category, Confidence: match.Confidence}
	} else {
		input := []service.LogInput{{ID: log.ID, Description: log.Description}}
		examples := uc.fewShotExamples(ctx, log.Description, categories)
		if results := uc.llm.Classify(ctx, input, categories, examples); len(results) == 1 {
			suggestion = results[0]
		}
	}
	if suggestion.Category != "" {
		data, _ := json.Marshal(suggestion)
		log.LLMSuggestion = string(data)
	}

	return uc.logs.Create(log)
}

// fewShotExamples fetches previously categorized logs similar to the given
// description for use as prompt context. Best-effort: any failure just
// means an example-free prompt.
func (uc *TaskLogUsecase) fewShotExamples(ctx context.Context, description string, categories []model.KpiCategory) []service.FewShot {
	emb, err := uc.embedder.Embed(ctx, description)
	if err != nil {
		uc.log.Debugf("embedding for few-shot lookup failed: %v", err)
		return nil
	}
	similar, err := uc.logs.SearchSimilar(pgvector.NewVector(emb), fewShotLimit)
	if err != nil {
		uc.log.Warnf("similar-log lookup failed: %v", err)
		return nil
	}

	names := map[uint]string{}
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	var examples []service.FewShot
	for _, s := range similar {
		if s.KpiCategoryID == nil {
			continue
		}
		name := names[*s.KpiCategoryID]
		if name == "" {
			continue
		}
		examples = append(examples, service.FewShot{Description: s.Description, Category: name})
	}
	return examples
}

// Approve marks a pending log approved and stores its description
// embedding so future classifications can use it as an example.
func (uc *TaskLogUsecase) Approve(ctx context.Context, id uuid.UUID, approverID uuid.UUID) (*model.TaskLog, error) {
	log, err := uc.logs.FindByID(id)
	if err != nil {
		return nil, err
	}
	if log.Status != model.LogStatusPending {
		return nil, ErrLogAlreadyReviewed
	}

	now := time.Now()
	log.Status = model.LogStatusApproved
	log.ApprovedByID = &approverID
	log.ApprovedAt = &now

	if emb, err := uc.embedder.Embed(ctx, log.Description); err == nil {
		log.Embedding = pgvector.NewVector(emb)
	} else {
		uc.log.Debugf("embedding approved log %s failed: %v", log.ID, err)
	}

	return log, uc.logs.Update(log)
}

func (uc *TaskLogUsecase) Reject(id uuid.UUID, reviewerID uuid.UUID) (*model.TaskLog, error) {
	log, err := uc.logs.FindByID(id)
	if err != nil {
		return nil, err
	}
	if log.Status != model.LogStatusPending {
		return nil, ErrLogAlreadyReviewed
	}

	now := time.Now()
	log.Status = model.LogStatusRejected
	log.ApprovedByID = &reviewerID
	log.ApprovedAt = &now
	return log, uc.logs.Update(log)
}

func (uc *TaskLogUsecase) List(userID *uuid.UUID, year, month, page, pageSize int) ([]model.TaskLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return uc.logs.List(userID, year, month, page, pageSize)
}
