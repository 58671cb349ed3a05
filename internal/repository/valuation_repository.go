package repository

import (
	"valuate_backend/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ValuationRepository struct {
	DB *gorm.DB
}

func NewValuationRepository(db *gorm.DB) *ValuationRepository {
	return &ValuationRepository{DB: db}
}

func (r *ValuationRepository) Create(v *model.Valuation) error {
	return r.DB.Create(v).Error
}

func (r *ValuationRepository) FindByID(id uint) (*model.Valuation, error) {
	var v model.Valuation
	err := r.DB.First(&v, id).Error
	return &v, err
}

// ListByValuator returns a valuator's valuations in storage order (oldest
// first). The marksheet relies on this order for stable tie-breaking;
// display endpoints reverse it themselves.
func (r *ValuationRepository) ListByValuator(valuatorID uint) ([]model.Valuation, error) {
	var vs []model.Valuation
	err := r.DB.Where("valuator_id = ?", valuatorID).Order("id asc").Find(&vs).Error
	return vs, err
}

// UpdateData overwrites the stored grading payload in place, leaving the
// record's identity and answer sheet reference untouched.
func (r *ValuationRepository) UpdateData(id uint, data datatypes.JSON) error {
	return r.DB.Model(&model.Valuation{}).Where("id = ?", id).Update("data", data).Error
}

func (r *ValuationRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Valuation{}).Count(&count).Error
	return count, err
}
