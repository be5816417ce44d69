package repository

import (
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EvaluationRepository struct {
	db *gorm.DB
}

func NewEvaluationRepository(db *gorm.DB) *EvaluationRepository {
	return &EvaluationRepository{db}
}

// Create inserts a new evaluation. The unique index on (user, year, month)
// makes a concurrent duplicate surface as gorm.ErrDuplicatedKey.
func (r *EvaluationRepository) Create(eval *model.MonthlyEvaluation) error {
	return r.db.Create(eval).Error
}

func (r *EvaluationRepository) Update(eval *model.MonthlyEvaluation) error {
	return r.db.Save(eval).Error
}

func (r *EvaluationRepository) FindByID(id uuid.UUID) (*model.MonthlyEvaluation, error) {
	var eval model.MonthlyEvaluation
	err := r.db.First(&eval, "id = ?", id).Error
	return &eval, err
}

func (r *EvaluationRepository) FindForUser(userID uuid.UUID) ([]model.MonthlyEvaluation, error) {
	var evals []model.MonthlyEvaluation
	err := r.db.Where("user_id = ?", userID).
		Order("year DESC, month DESC").
		Find(&evals).Error
	return evals, err
}

func (r *EvaluationRepository) AddAudit(audit *model.EvaluationAudit) error {
	return r.db.Create(audit).Error
}

func (r *EvaluationRepository) ListAudits(evaluationID uuid.UUID) ([]model.EvaluationAudit, error) {
	var audits []model.EvaluationAudit
	err := r.db.Where("evaluation_id = ?", evaluationID).
		Order("created_at").
		Find(&audits).Error
	return audits, err
}
