package service

import (
	"errors"

	"valuate_backend/internal/model"
	"valuate_backend/internal/repository"
	"valuate_backend/internal/util"

	"gorm.io/gorm"
)

// OrganizationService manages the school > grade > class > subject hierarchy
// teachers use to organize their valuators.
type OrganizationService struct {
	Orgs *repository.OrganizationRepository
}

func NewOrganizationService(orgs *repository.OrganizationRepository) *OrganizationService {
	return &OrganizationService{Orgs: orgs}
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// Schools

func (s *OrganizationService) CreateSchool(userID uint, name string) (*model.School, error) {
	school := &model.School{Name: name, UserID: userID}
	if err := s.Orgs.CreateSchool(school); err != nil {
		return nil, err
	}
	return school, nil
}

func (s *OrganizationService) ListSchools(userID uint) ([]model.School, error) {
	return s.Orgs.ListSchools(userID)
}

func (s *OrganizationService) RenameSchool(id, userID uint, name string) (*model.School, error) {
	school, err := s.Orgs.FindSchool(id, userID)
	if err != nil {
		return nil, notFound(err, util.ErrSchoolNotFound)
	}
	school.Name = name
	if err := s.Orgs.SaveSchool(school); err != nil {
		return nil, err
	}
	return school, nil
}

func (s *OrganizationService) DeleteSchool(id, userID uint) error {
	if _, err := s.Orgs.FindSchool(id, userID); err != nil {
		return notFound(err, util.ErrSchoolNotFound)
	}
	return s.Orgs.DeleteSchool(id)
}

// Grades

func (s *OrganizationService) CreateGrade(userID, schoolID uint, name string) (*model.Grade, error) {
	if _, err := s.Orgs.FindSchool(schoolID, userID); err != nil {
		return nil, notFound(err, util.ErrSchoolNotFound)
	}
	grade := &model.Grade{Name: name, SchoolID: schoolID, UserID: userID}
	if err := s.Orgs.CreateGrade(grade); err != nil {
		return nil, err
	}
	return grade, nil
}

func (s *OrganizationService) ListGrades(userID, schoolID uint) ([]model.Grade, error) {
	if _, err := s.Orgs.FindSchool(schoolID, userID); err != nil {
		return nil, notFound(err, util.ErrSchoolNotFound)
	}
	return s.Orgs.ListGrades(schoolID)
}

func (s *OrganizationService) RenameGrade(id, userID uint, name string) (*model.Grade, error) {
	grade, err := s.Orgs.FindGrade(id, userID)
	if err != nil {
		return nil, notFound(err, util.ErrGradeNotFound)
	}
	grade.Name = name
	if err := s.Orgs.SaveGrade(grade); err != nil {
		return nil, err
	}
	return grade, nil
}

func (s *OrganizationService) DeleteGrade(id, userID uint) error {
	if _, err := s.Orgs.FindGrade(id, userID); err != nil {
		return notFound(err, util.ErrGradeNotFound)
	}
	return s.Orgs.DeleteGrade(id)
}

// Classes

func (s *OrganizationService) CreateClass(userID, gradeID uint, name, description string) (*model.Class, error) {
	grade, err := s.Orgs.FindGrade(gradeID, userID)
	if err != nil {
		return nil, notFound(err, util.ErrGradeNotFound)
	}
	class := &model.Class{Name: name, Description: description, GradeID: grade.ID, SchoolID: grade.SchoolID, UserID: userID}
	if err := s.Orgs.CreateClass(class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *OrganizationService) ListClasses(userID, gradeID uint) ([]model.Class, error) {
	if _, err := s.Orgs.FindGrade(gradeID, userID); err != nil {
		return nil, notFound(err, util.ErrGradeNotFound)
	}
	return s.Orgs.ListClasses(gradeID)
}

func (s *OrganizationService) RenameClass(id, userID uint, name, description string) (*model.Class, error) {
	class, err := s.Orgs.FindClass(id, userID)
	if err != nil {
		return nil, notFound(err, util.ErrClassNotFound)
	}
	class.Name = name
	class.Description = description
	if err := s.Orgs.SaveClass(class); err != nil {
		return nil, err
	}
	return class, nil
}

func (s *OrganizationService) DeleteClass(id, userID uint) error {
	if _, err := s.Orgs.FindClass(id, userID); err != nil {
		return notFound(err, util.ErrClassNotFound)
	}
	return s.Orgs.DeleteClass(id)
}

// Subjects

func (s *OrganizationService) CreateSubject(userID, classID uint, name string) (*model.Subject, error) {
	class, err := s.Orgs.FindClass(classID, userID)
	if err != nil {
		return nil, notFound(err, util.ErrClassNotFound)
	}
	subject := &model.Subject{Name: name, ClassID: class.ID, GradeID: class.GradeID, SchoolID: class.SchoolID, UserID: userID}
	if err := s.Orgs.CreateSubject(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *OrganizationService) ListSubjects(userID, classID uint) ([]model.Subject, error) {
	if _, err := s.Orgs.FindClass(classID, userID); err != nil {
		return nil, notFound(err, util.ErrClassNotFound)
	}
	return s.Orgs.ListSubjects(classID)
}

func (s *OrganizationService) RenameSubject(id, userID uint, name string) (*model.Subject, error) {
	subject, err := s.Orgs.FindSubject(id, userID)
	if err != nil {
		return nil, notFound(err, util.ErrSubjectNotFound)
	}
	subject.Name = name
	if err := s.Orgs.SaveSubject(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

func (s *OrganizationService) DeleteSubject(id, userID uint) error {
	if _, err := s.Orgs.FindSubject(id, userID); err != nil {
		return notFound(err, util.ErrSubjectNotFound)
	}
	return s.Orgs.DeleteSubject(id)
}
