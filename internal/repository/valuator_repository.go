package repository

import (
	"valuate_backend/internal/model"

	"gorm.io/gorm"
)

type ValuatorRepository struct {
	DB *gorm.DB
}

func NewValuatorRepository(db *gorm.DB) *ValuatorRepository {
	return &ValuatorRepository{DB: db}
}

func (r *ValuatorRepository) Create(v *model.Valuator) error {
	return r.DB.Create(v).Error
}

func (r *ValuatorRepository) FindByID(id uint) (*model.Valuator, error) {
	var v model.Valuator
	err := r.DB.First(&v, id).Error
	return &v, err
}

func (r *ValuatorRepository) Count() (int64, error) {
	var count int64
	err := r.DB.Model(&model.Valuator{}).Count(&count).Error
	return count, err
}

func (r *ValuatorRepository) ListByUser(userID uint) ([]model.Valuator, error) {
	var vs []model.Valuator
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&vs).Error
	return vs, err
}

// CountValuations returns valuation counts grouped by valuator, one query
// for the whole list instead of one per valuator.
func (r *ValuatorRepository) CountValuations(valuatorIDs []uint) (map[uint]int64, error) {
	type row struct {
		ValuatorID uint
		Count      int64
	}
	var rows []row
	err := r.DB.Model(&model.Valuation{}).
		Select("valuator_id, count(*) as count").
		Where("valuator_id IN ?", valuatorIDs).
		Group("valuator_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ValuatorID] = r.Count
	}
	return counts, nil
}

// UpdateOrganizationLinks re-links a valuator inside the school hierarchy.
// The valuator itself stays read-only otherwise.
func (r *ValuatorRepository) UpdateOrganizationLinks(id uint, schoolID, gradeID, classID, subjectID *uint) error {
	return r.DB.Model(&model.Valuator{}).Where("id = ?", id).Updates(map[string]interface{}{
		"school_id":  schoolID,
		"grade_id":   gradeID,
		"class_id":   classID,
		"subject_id": subjectID,
	}).Error
}

// Delete removes the valuator only. Its valuations are kept on purpose as
// an append-only audit trail.
func (r *ValuatorRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Valuator{}, id).Error
}

func (r *ValuatorRepository) ClearOrganizationLinks(column string, orgID uint) error {
	return r.DB.Model(&model.Valuator{}).Where(column+" = ?", orgID).Update(column, nil).Error
}
