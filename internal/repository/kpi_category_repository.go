package repository

import (
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"gorm.io/gorm"
)

type KpiCategoryRepository struct {
	db *gorm.DB
}

func NewKpiCategoryRepository(db *gorm.DB) *KpiCategoryRepository {
	return &KpiCategoryRepository{db}
}

// GetAll returns categories in insertion order. The rule classifier's
// first-match-wins behavior depends on this ordering.
func (r *KpiCategoryRepository) GetAll() ([]model.KpiCategory, error) {
	var categories []model.KpiCategory
	err := r.db.Order("id").Find(&categories).Error
	return categories, err
}

func (r *KpiCategoryRepository) FindByID(id uint) (*model.KpiCategory, error) {
	var c model.KpiCategory
	err := r.db.First(&c, "id = ?", id).Error
	return &c, err
}

func (r *KpiCategoryRepository) Create(c *model.KpiCategory) error {
	return r.db.Create(c).Error
}
