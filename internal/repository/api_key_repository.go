package repository

import (
	"github.com/ChathuraAt1/kpi-platform-sub001/internal/model"
	"gorm.io/gorm"
)

type ApiKeyRepository struct {
	db *gorm.DB
}

func NewApiKeyRepository(db *gorm.DB) *ApiKeyRepository {
	return &ApiKeyRepository{db}
}

func (r *ApiKeyRepository) Create(key *model.ApiKey) error {
	return r.db.Create(key).Error
}

func (r *ApiKeyRepository) Save(key *model.ApiKey) error {
	return r.db.Save(key).Error
}

func (r *ApiKeyRepository) GetAll() ([]model.ApiKey, error) {
	var keys []model.ApiKey
	err := r.db.Order("priority, id").Find(&keys).Error
	return keys, err
}

// ActiveKeys returns usable credentials in failover order.
func (r *ApiKeyRepository) ActiveKeys() ([]model.ApiKey, error) {
	var keys []model.ApiKey
	err := r.db.Where("status = ?", model.KeyStatusActive).
		Order("priority, id").
		Find(&keys).Error
	return keys, err
}

// CheckableKeys returns keys eligible for the health sweep. Revoked keys
// are excluded from all automated flows.
func (r *ApiKeyRepository) CheckableKeys(degradedOnly bool) ([]model.ApiKey, error) {
	q := r.db.Where("status <> ?", model.KeyStatusRevoked)
	if degradedOnly {
		q = q.Where("status = ?", model.KeyStatusDegraded)
	}

	var keys []model.ApiKey
	err := q.Order("priority, id").Find(&keys).Error
	return keys, err
}
