package repository

import (
	"valuate_backend/internal/model"

	"gorm.io/gorm"
)

// OrganizationRepository manages the school/grade/class/subject hierarchy.
// All queries are scoped to the owning teacher.
type OrganizationRepository struct {
	DB *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{DB: db}
}

// Schools

func (r *OrganizationRepository) CreateSchool(s *model.School) error {
	return r.DB.Create(s).Error
}

func (r *OrganizationRepository) FindSchool(id, userID uint) (*model.School, error) {
	var s model.School
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&s).Error
	return &s, err
}

func (r *OrganizationRepository) ListSchools(userID uint) ([]model.School, error) {
	var ss []model.School
	err := r.DB.Where("user_id = ?", userID).Order("created_at desc").Find(&ss).Error
	return ss, err
}

func (r *OrganizationRepository) SaveSchool(s *model.School) error {
	return r.DB.Save(s).Error
}

// DeleteSchool removes the school and everything beneath it in one
// transaction; valuator links to removed nodes are nulled, the valuators
// themselves survive.
func (r *OrganizationRepository) DeleteSchool(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Valuator{}).Where("school_id = ?", id).Updates(map[string]interface{}{
			"school_id": nil, "grade_id": nil, "class_id": nil, "subject_id": nil,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&model.Subject{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&model.Class{}).Error; err != nil {
			return err
		}
		if err := tx.Where("school_id = ?", id).Delete(&model.Grade{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.School{}, id).Error
	})
}

// Grades

func (r *OrganizationRepository) CreateGrade(g *model.Grade) error {
	return r.DB.Create(g).Error
}

func (r *OrganizationRepository) FindGrade(id, userID uint) (*model.Grade, error) {
	var g model.Grade
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&g).Error
	return &g, err
}

func (r *OrganizationRepository) ListGrades(schoolID uint) ([]model.Grade, error) {
	var gs []model.Grade
	err := r.DB.Where("school_id = ?", schoolID).Order("created_at desc").Find(&gs).Error
	return gs, err
}

func (r *OrganizationRepository) SaveGrade(g *model.Grade) error {
	return r.DB.Save(g).Error
}

func (r *OrganizationRepository) DeleteGrade(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Valuator{}).Where("grade_id = ?", id).Updates(map[string]interface{}{
			"grade_id": nil, "class_id": nil, "subject_id": nil,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("grade_id = ?", id).Delete(&model.Subject{}).Error; err != nil {
			return err
		}
		if err := tx.Where("grade_id = ?", id).Delete(&model.Class{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Grade{}, id).Error
	})
}

// Classes

func (r *OrganizationRepository) CreateClass(c *model.Class) error {
	return r.DB.Create(c).Error
}

func (r *OrganizationRepository) FindClass(id, userID uint) (*model.Class, error) {
	var c model.Class
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&c).Error
	return &c, err
}

func (r *OrganizationRepository) ListClasses(gradeID uint) ([]model.Class, error) {
	var cs []model.Class
	err := r.DB.Where("grade_id = ?", gradeID).Order("created_at desc").Find(&cs).Error
	return cs, err
}

func (r *OrganizationRepository) SaveClass(c *model.Class) error {
	return r.DB.Save(c).Error
}

func (r *OrganizationRepository) DeleteClass(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Valuator{}).Where("class_id = ?", id).Updates(map[string]interface{}{
			"class_id": nil, "subject_id": nil,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("class_id = ?", id).Delete(&model.Subject{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Class{}, id).Error
	})
}

// Subjects

func (r *OrganizationRepository) CreateSubject(s *model.Subject) error {
	return r.DB.Create(s).Error
}

func (r *OrganizationRepository) FindSubject(id, userID uint) (*model.Subject, error) {
	var s model.Subject
	err := r.DB.Where("id = ? AND user_id = ?", id, userID).First(&s).Error
	return &s, err
}

func (r *OrganizationRepository) ListSubjects(classID uint) ([]model.Subject, error) {
	var ss []model.Subject
	err := r.DB.Where("class_id = ?", classID).Order("created_at desc").Find(&ss).Error
	return ss, err
}

func (r *OrganizationRepository) SaveSubject(s *model.Subject) error {
	return r.DB.Save(s).Error
}

func (r *OrganizationRepository) DeleteSubject(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Valuator{}).Where("subject_id = ?", id).Update("subject_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Subject{}, id).Error
	})
}
