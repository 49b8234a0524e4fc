package policies

import (
	"errors"

	"logwarden/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PolicyRepository struct{}

func (r *PolicyRepository) GetByTenantID(tenantID string) (*ModulePolicy, error) {
	var policy ModulePolicy

	err := storage.GetDb().Where("tenant_id = ?", tenantID).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &policy, nil
}

func (r *PolicyRepository) Upsert(policy *ModulePolicy) error {
	return storage.GetDb().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant_id"}},
		UpdateAll: true,
	}).Create(policy).Error
}

func (r *PolicyRepository) ListTenantIDs() ([]string, error) {
	var tenantIDs []string

	err := storage.GetDb().
		Model(&ModulePolicy{}).
		Order("tenant_id ASC").
		Pluck("tenant_id", &tenantIDs).Error

	return tenantIDs, err
}
