package repository

import (
	"time"

	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type TaskLogRepository struct {
	db *gorm.DB
}

func NewTaskLogRepository(db *gorm.DB) *TaskLogRepository {
	return &TaskLogRepository{db}
}

func (r *TaskLogRepository) Create(log *model.TaskLog) error {
	return r.db.Create(log).Error
}

func (r *TaskLogRepository) Update(log *model.TaskLog) error {
	return r.db.Save(log).Error
}

func (r *TaskLogRepository) FindByID(id uuid.UUID) (*model.TaskLog, error) {
	var log model.TaskLog
	err := r.db.Preload("Task").First(&log, "id = ?", id).Error
	return &log, err
}

// FindForUserMonth returns every log the user recorded inside the given
// calendar month, with the task preloaded for planned-hours lookup.
func (r *TaskLogRepository) FindForUserMonth(userID uuid.UUID, year, month int) ([]model.TaskLog, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var logs []model.TaskLog
	err := r.db.Preload("Task").
		Where("user_id = ? AND log_date >= ? AND log_date < ?", userID, start, end).
		Order("log_date, created_at").
		Find(&logs).Error
	return logs, err
}

func (r *TaskLogRepository) List(userID *uuid.UUID, year, month, page, pageSize int) ([]model.TaskLog, int64, error) {
	q := r.db.Model(&model.TaskLog{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if year > 0 && month > 0 {
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		q = q.Where("log_date >= ? AND log_date < ?", start, start.AddDate(0, 1, 0))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.TaskLog
	err := q.Preload("Task").
		Order("log_date DESC, created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&logs).Error
	return logs, total, err
}

// SearchSimilar returns approved, categorized logs nearest to the given
// description embedding.
func (r *TaskLogRepository) SearchSimilar(embedding pgvector.Vector, topK int) ([]model.TaskLog, error) {
	var logs []model.TaskLog
	err := r.db.Raw(`
        SELECT * FROM task_logs
        WHERE status = ? AND kpi_category_id IS NOT NULL AND embedding IS NOT NULL
        ORDER BY embedding <-> ?
        LIMIT ?
    `, model.LogStatusApproved, embedding, topK).Scan(&logs).Error
	return logs, err
}
