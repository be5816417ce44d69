package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

var (
	// ErrAlreadyGenerated reports that an evaluation for the (user, year,
	// month) tuple exists. Callers treat this as done, not as a retryable
	// failure.
	ErrAlreadyGenerated = errors.New("evaluation already generated for this month")

	ErrInvalidTransition = errors.New("invalid evaluation status transition")
)

// baselineMonthlyHours is assumed when a category has neither completion
// data nor planned hours to score against.
const baselineMonthlyHours = 160.0

type EvaluationTaskLogStore interface {
	FindForUserMonth(userID uuid.UUID, year, month int) ([]model.TaskLog, error)
}

type CategoryStore interface {
	GetAll() ([]model.KpiCategory, error)
}

type EvaluationStore interface {
	Create(eval *model.MonthlyEvaluation) error
	Update(eval *model.MonthlyEvaluation) error
	FindByID(id uuid.UUID) (*model.MonthlyEvaluation, error)
	FindForUser(userID uuid.UUID) ([]model.MonthlyEvaluation, error)
	AddAudit(audit *model.EvaluationAudit) error
	ListAudits(evaluationID uuid.UUID) ([]model.EvaluationAudit, error)
}

// EvaluationScorer is the LLM scoring pass. It is best-effort: an empty map
// means no category gets an llm_score.
type EvaluationScorer interface {
	ScoreEvaluation(ctx context.Context, userID uuid.UUID, year, month int, breakdown model.Breakdown) map[uint]float64
}

type EvaluationUsecase struct {
	logs       EvaluationTaskLogStore
	categories CategoryStore
	evals      EvaluationStore
	scorer     EvaluationScorer
	log        *logrus.Logger
}

func NewEvaluationUsecase(logs EvaluationTaskLogStore, categories CategoryStore, evals EvaluationStore, scorer EvaluationScorer, log *logrus.Logger) *EvaluationUsecase {
	return &EvaluationUsecase{logs: logs, categories: categories, evals: evals, scorer: scorer, log: log}
}

// GenerateForUserMonth aggregates the user's task logs into a per-category
// breakdown, computes rule scores, merges the LLM scoring pass and persists
// a pending evaluation. The final score stays nil until approval.
func (uc *EvaluationUsecase) GenerateForUserMonth(ctx context.Context, userID uuid.UUID, year, month int) (*model.MonthlyEvaluation, error) {
	logs, err := uc.logs.FindForUserMonth(userID, year, month)
	if err != nil {
		return nil, fmt.Errorf("loading task logs: %w", err)
	}
	categories, err := uc.categories.GetAll()
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}

	breakdown := buildBreakdown(logs, categories)

	for id, score := range uc.scorer.ScoreEvaluation(ctx, userID, year, month, breakdown) {
		entry, ok := breakdown[id]
		if !ok {
			continue
		}
		s := score
		entry.LLMScore = &s
		breakdown[id] = entry
	}

	eval := &model.MonthlyEvaluation{
		UserID:    userID,
		Year:      year,
		Month:     month,
		Breakdown: breakdown,
		Status:    model.EvaluationStatusPending,
	}
	if err := uc.evals.Create(eval); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyGenerated
		}
		return nil, fmt.Errorf("creating evaluation: %w", err)
	}

	uc.audit(eval.ID, model.AuditActionGenerated, nil, fmt.Sprintf("generated from %d task logs", len(logs)))
	return eval, nil
}

// SupervisorScore writes per-category supervisor scores into the breakdown.
// Score keys with no matching breakdown entry are dropped; entries are
// never created for unscored categories.
func (uc *EvaluationUsecase) SupervisorScore(evalID uuid.UUID, actorID *uuid.UUID, scores map[uint]float64, comments string) (*model.MonthlyEvaluation, error) {
	eval, err := uc.evals.FindByID(evalID)
	if err != nil {
		return nil, err
	}
	if eval.Status == model.EvaluationStatusPublished {
		return nil, ErrInvalidTransition
	}

	for id, score := range scores {
		entry, ok := eval.Breakdown[id]
		if !ok {
			continue
		}
		s := score
		entry.SupervisorScore = &s
		eval.Breakdown[id] = entry
	}

	if err := uc.evals.Update(eval); err != nil {
		return nil, err
	}
	uc.audit(eval.ID, model.AuditActionSupervisorScored, actorID, comments)
	return eval, nil
}

// Approve finalizes a pending evaluation: the overall score becomes the
// category-weight-weighted average of the most authoritative score per
// entry (supervisor, then LLM, then rule).
func (uc *EvaluationUsecase) Approve(evalID uuid.UUID, actorID *uuid.UUID, comments string) (*model.MonthlyEvaluation, error) {
	eval, err := uc.evals.FindByID(evalID)
	if err != nil {
		return nil, err
	}
	if eval.Status != model.EvaluationStatusPending {
		return nil, ErrInvalidTransition
	}
	categories, err := uc.categories.GetAll()
	if err != nil {
		return nil, fmt.Errorf("loading categories: %w", err)
	}

	score := finalScore(eval.Breakdown, categories)
	now := time.Now()
	eval.Score = &score
	eval.Status = model.EvaluationStatusApproved
	eval.ApprovedByID = actorID
	eval.ApprovedAt = &now

	if err := uc.evals.Update(eval); err != nil {
		return nil, err
	}
	uc.audit(eval.ID, model.AuditActionApproved, actorID, comments)
	return eval, nil
}

func (uc *EvaluationUsecase) Publish(evalID uuid.UUID, actorID *uuid.UUID) (*model.MonthlyEvaluation, error) {
	eval, err := uc.evals.FindByID(evalID)
	if err != nil {
		return nil, err
	}
	if eval.Status != model.EvaluationStatusApproved {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	eval.Status = model.EvaluationStatusPublished
	eval.PublishedAt = &now

	if err := uc.evals.Update(eval); err != nil {
		return nil, err
	}
	uc.audit(eval.ID, model.AuditActionPublished, actorID, "")
	return eval, nil
}

func (uc *EvaluationUsecase) Get(evalID uuid.UUID) (*model.MonthlyEvaluation, error) {
	return uc.evals.FindByID(evalID)
}

func (uc *EvaluationUsecase) ListForUser(userID uuid.UUID) ([]model.MonthlyEvaluation, error) {
	return uc.evals.FindForUser(userID)
}

func (uc *EvaluationUsecase) History(evalID uuid.UUID) ([]model.EvaluationAudit, error) {
	return uc.evals.ListAudits(evalID)
}

func (uc *EvaluationUsecase) audit(evalID uuid.UUID, action string, actorID *uuid.UUID, comments string) {
	err := uc.evals.AddAudit(&model.EvaluationAudit{
		EvaluationID: evalID,
		Action:       action,
		ActorID:      actorID,
		Comments:     comments,
	})
	if err != nil {
		uc.log.Errorf("recording %s audit for evaluation %s failed: %v", action, evalID, err)
	}
}

type bucket struct {
	name               string
	logged             float64
	planned            float64
	weightedCompletion float64
	weightFactor       float64
	completions        []float64
}

// buildBreakdown groups logs by category (nil category goes to the
// synthetic Uncategorized bucket) and computes the deterministic rule score
// per bucket. Categories with no logs are omitted, not zero-filled.
func buildBreakdown(logs []model.TaskLog, categories []model.KpiCategory) model.Breakdown {
	names := map[uint]string{}
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	buckets := map[uint]*bucket{}
	for _, l := range logs {
		id := model.UncategorizedID
		if l.KpiCategoryID != nil {
			id = *l.KpiCategoryID
		}
		b := buckets[id]
		if b == nil {
			name := names[id]
			if name == "" {
				name = "Uncategorized"
			}
			b = &bucket{name: name}
			buckets[id] = b
		}

		b.logged += l.DurationHours
		if l.Task != nil {
			b.planned += l.Task.PlannedHours
		}
		if completion, ok := completionPercent(l.Metadata); ok {
			w := priorityWeight(l.Metadata)
			b.weightedCompletion += completion * l.DurationHours * w
			b.weightFactor += l.DurationHours * w
			b.completions = append(b.completions, completion)
		}
	}

	breakdown := model.Breakdown{}
	for id, b := range buckets {
		breakdown[id] = model.CategoryScore{
			CategoryName: b.name,
			LoggedHours:  round2(b.logged),
			PlannedHours: round2(b.planned),
			RuleScore:    ruleScore(b),
		}
	}
	return breakdown
}

// ruleScore maps a bucket to a 0-10 score. Completion data wins over hour
// ratios; without planned hours the 160h monthly baseline applies.
func ruleScore(b *bucket) float64 {
	switch {
	case b.weightFactor > 0:
		return round2(math.Min(10, (b.weightedCompletion/b.weightFactor)/10))
	case len(b.completions) > 0:
		var sum float64
		for _, c := range b.completions {
			sum += c
		}
		return round2(math.Min(10, sum/float64(len(b.completions))/10))
	case b.planned > 0:
		return round2(math.Min(1, b.logged/b.planned) * 10)
	default:
		return round2(math.Min(1, b.logged/baselineMonthlyHours) * 10)
	}
}

// completionPercent extracts the recorded completion from log metadata.
// A present but non-numeric value counts as fully complete; an absent key
// means the log carries no completion data at all.
func completionPercent(meta string) (float64, bool) {
	for _, k := range []string{"completion_percent", "completion"} {
		v := gjson.Get(meta, k)
		if v.Exists() {
			if v.Type == gjson.Number {
				return v.Float(), true
			}
			return 100, true
		}
	}
	return 0, false
}

func priorityWeight(meta string) float64 {
	switch strings.ToLower(gjson.Get(meta, "priority").String()) {
	case "high":
		return 3
	case "low":
		return 1
	default:
		return 2
	}
}

func finalScore(breakdown model.Breakdown, categories []model.KpiCategory) float64 {
	weights := map[uint]float64{}
	for _, c := range categories {
		weights[c.ID] = c.Weight
	}

	var num, den float64
	for id, entry := range breakdown {
		w := weights[id]
		if w <= 0 {
			w = 1
		}
		eff := entry.RuleScore
		if entry.LLMScore != nil {
			eff = *entry.LLMScore
		}
		if entry.SupervisorScore != nil {
			eff = *entry.SupervisorScore
		}
		num += w * eff
		den += w
	}
	if den == 0 {
		return 0
	}
	return round2(num / den)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
