package service

import (
	"errors"

	"valuate_backend/internal/model"
	"valuate_backend/internal/repository"
	"valuate_backend/internal/util"

	"gorm.io/gorm"
)

// ValuatorService manages valuators: the stored question paper + answer key
// pairs that gradings run against.
type ValuatorService struct {
	Valuators  *repository.ValuatorRepository
	Valuations *repository.ValuationRepository
}

func NewValuatorService(valuators *repository.ValuatorRepository, valuations *repository.ValuationRepository) *ValuatorService {
	return &ValuatorService{Valuators: valuators, Valuations: valuations}
}

// ValuatorSummary is a valuator plus its valuation count, the shape the
// dashboard lists.
type ValuatorSummary struct {
	model.Valuator
	Valuations int64 `json:"valuations"`
}

func (s *ValuatorService) Create(userID uint, title, questionPaper, answerKey string) (*model.Valuator, error) {
	valuator := &model.Valuator{
		Title:         title,
		QuestionPaper: questionPaper,
		AnswerKey:     answerKey,
		UserID:        userID,
	}
	if err := s.Valuators.Create(valuator); err != nil {
		return nil, err
	}
	return valuator, nil
}

// Get loads a valuator and checks it belongs to the requesting user.
func (s *ValuatorService) Get(id, userID uint) (*model.Valuator, error) {
	valuator, err := s.Valuators.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrValuatorNotFound
		}
		return nil, err
	}
	if valuator.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return valuator, nil
}

// List returns the user's valuators newest first, each with its valuation
// count.
func (s *ValuatorService) List(userID uint) ([]ValuatorSummary, error) {
	valuators, err := s.Valuators.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(valuators))
	for i := range valuators {
		ids[i] = valuators[i].ID
	}

	counts := map[uint]int64{}
	if len(ids) > 0 {
		counts, err = s.Valuators.CountValuations(ids)
		if err != nil {
			return nil, err
		}
	}

	summaries := make([]ValuatorSummary, len(valuators))
	for i := range valuators {
		summaries[i] = ValuatorSummary{
			Valuator:   valuators[i],
			Valuations: counts[valuators[i].ID],
		}
	}
	return summaries, nil
}

// LinkOrganization attaches the valuator to a node in the school hierarchy.
// Nil IDs clear the corresponding link.
func (s *ValuatorService) LinkOrganization(id, userID uint, schoolID, gradeID, classID, subjectID *uint) error {
	if _, err := s.Get(id, userID); err != nil {
		return err
	}
	return s.Valuators.UpdateOrganizationLinks(id, schoolID, gradeID, classID, subjectID)
}

// Delete removes the valuator. Its valuations stay behind as an audit trail.
func (s *ValuatorService) Delete(id, userID uint) error {
	if _, err := s.Get(id, userID); err != nil {
		return err
	}
	return s.Valuators.Delete(id)
}
